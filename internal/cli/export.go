// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/huddle-tui/internal/export"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

type exportFlags struct {
	workspace    string
	format       string
	outDir       string
	open         bool
	noTimestamps bool
	noMetadata   bool
	jsonOut      bool
}

func newExportCmd(opts *options) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export <channel>",
		Short: "Export a channel's history to HTML, Markdown or JSON",
		Example: `  huddle export general
  huddle export '#design' --format markdown --out ~/notes --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, f, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.workspace, "workspace", "w", "", "workspace name or id (default: active workspace)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "html", "output format: "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringVarP(&f.outDir, "out", "o", ".", "directory the file is written to")
	cmd.Flags().BoolVar(&f.open, "open", false, "open the file after exporting")
	cmd.Flags().BoolVar(&f.noTimestamps, "no-timestamps", false, "omit per-message timestamps")
	cmd.Flags().BoolVar(&f.noMetadata, "no-metadata", false, "omit the workspace and channel header")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "output JSON")
	return cmd
}

func runExport(cmd *cobra.Command, opts *options, f *exportFlags, channel string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	configureColor(out)

	fail := func(err error) error {
		if f.jsonOut {
			_ = NewJSONErrorResponse("export", err).Write(out)
		}
		return err
	}

	cfg, err := opts.loadConfig(errOut)
	if err != nil {
		return fail(err)
	}

	exportOpts := export.DefaultOptions()
	exportOpts.OutputDir = f.outDir
	exportOpts.OpenAfterExport = f.open
	exportOpts.IncludeTimestamps = !f.noTimestamps
	exportOpts.IncludeMetadata = !f.noMetadata
	if cfg.UI.Theme == "light" {
		exportOpts.Theme = "light"
	}

	exporter, err := export.New(f.format, exportOpts)
	if err != nil {
		return fail(err)
	}

	s, err := openSession(cfg, errOut)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	conv, ws, ch, err := s.openChannel(ctx, f.workspace, channel)
	if err != nil {
		return fail(err)
	}

	transcript := &export.Transcript{
		Workspace:  *ws,
		Channel:    *ch,
		Messages:   conv.Messages(),
		Viewer:     conv.Viewer(),
		ExportedAt: time.Now(),
	}
	path, err := export.ExportToFile(transcript, exporter, exportOpts)
	if err != nil {
		return fail(err)
	}

	count := len(transcript.Confirmed())
	if f.jsonOut {
		return NewJSONResponse("export", ExportData{
			Path:     path,
			Format:   strings.TrimPrefix(exporter.FileExtension(), "."),
			Messages: count,
		}).Write(out)
	}
	fmt.Fprintln(out, styles.RenderSuccess(fmt.Sprintf("Exported %d messages from %s to %s", count, ch.DisplayName(), path)))
	return nil
}
