// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

func newChannelsCmd(opts *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "channels",
		Aliases: []string{"ls"},
		Short:   "List your workspaces and their channels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChannels(cmd, opts, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func runChannels(cmd *cobra.Command, opts *options, jsonOut bool) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	configureColor(out)

	cfg, err := opts.loadConfig(errOut)
	if err != nil {
		return err
	}
	s, err := openSession(cfg, errOut)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	data, err := listChannels(ctx, s)
	if err != nil {
		if jsonOut {
			_ = NewJSONErrorResponse("channels", err).Write(out)
		}
		return err
	}
	if jsonOut {
		return NewJSONResponse("channels", data).Write(out)
	}
	printChannels(out, data)
	return nil
}

// listChannels signs in and loads the channels of every workspace. The
// originally active workspace is selected again afterwards.
func listChannels(ctx context.Context, s *session) ([]WorkspaceData, error) {
	if _, err := s.signIn(ctx); err != nil {
		return nil, err
	}
	active, _ := s.nav.Active()

	var data []WorkspaceData
	for _, ws := range s.nav.Workspaces() {
		if err := s.nav.SelectWorkspace(ctx, ws.ID); err != nil {
			return nil, fmt.Errorf("load channels of %s: %w", ws.Name, err)
		}
		wd := WorkspaceData{
			ID:          ws.ID,
			Name:        ws.Name,
			Description: ws.Description,
			Active:      active != nil && active.ID == ws.ID,
			Channels:    []ChannelData{},
		}
		for _, ch := range s.nav.Channels() {
			wd.Channels = append(wd.Channels, channelData(ch))
		}
		data = append(data, wd)
	}
	if active != nil {
		_ = s.nav.SelectWorkspace(ctx, active.ID)
	}
	return data, nil
}

func channelData(ch model.Channel) ChannelData {
	return ChannelData{
		ID:          ch.ID,
		Name:        ch.Name,
		Description: ch.Description,
		Private:     ch.Private,
	}
}

func printChannels(w io.Writer, data []WorkspaceData) {
	if len(data) == 0 {
		fmt.Fprintln(w, "No workspaces.")
		return
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	dim := lipgloss.NewStyle().Foreground(styles.TextMuted)

	for i, ws := range data {
		if i > 0 {
			fmt.Fprintln(w)
		}
		name := ws.Name
		if ws.Active {
			name += " *"
		}
		fmt.Fprintln(w, title.Render(name))
		if len(ws.Channels) == 0 {
			fmt.Fprintln(w, dim.Render("  (no channels)"))
			continue
		}
		for _, ch := range ws.Channels {
			label := model.Channel{Name: ch.Name, Private: ch.Private}.DisplayName()
			if ch.Description != "" {
				fmt.Fprintf(w, "  %-20s %s\n", label, dim.Render(ch.Description))
				continue
			}
			fmt.Fprintf(w, "  %s\n", label)
		}
	}
}
