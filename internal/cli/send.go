// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// maxStdinBody caps a message body read from a pipe.
const maxStdinBody = 1 << 20

func newSendCmd(opts *options) *cobra.Command {
	var (
		workspace string
		jsonOut   bool
	)
	cmd := &cobra.Command{
		Use:   "send <channel> [message...]",
		Short: "Post a message to a channel",
		Long: `Post a message to a channel of the active workspace, or of the workspace
named with --workspace. Without message arguments the body is read from
standard input, so the output of another command can be piped in.`,
		Example: `  huddle send general "deploy finished"
  git log -1 --format=%s | huddle send '#releases'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := strings.Join(args[1:], " ")
			if len(args) == 1 {
				b, err := readBody(cmd.InOrStdin())
				if err != nil {
					return err
				}
				body = b
			}
			return runSend(cmd, opts, workspace, args[0], body, jsonOut)
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace name or id (default: active workspace)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

// readBody reads a message body from r. An interactive stdin is refused so
// the command does not silently wait for input.
func readBody(r io.Reader) (string, error) {
	if isTerminalReader(r) {
		return "", fmt.Errorf("no message given: pass it as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxStdinBody))
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}
	return string(data), nil
}

func runSend(cmd *cobra.Command, opts *options, workspace, channel, body string, jsonOut bool) error {
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

	fail := func(err error) error {
		if jsonOut {
			_ = NewJSONErrorResponse("send", err).Write(out)
		}
		return err
	}

	conv, ws, ch, err := s.openChannel(ctx, workspace, channel)
	if err != nil {
		return fail(err)
	}
	msg, err := conv.Send(ctx, body)
	if err != nil {
		return fail(err)
	}

	if jsonOut {
		return NewJSONResponse("send", SentData{
			ID:        msg.ID,
			Channel:   ch.Name,
			Workspace: ws.Name,
			CreatedAt: msg.CreatedAt.Time.UTC().Format(time.RFC3339),
		}).Write(out)
	}
	fmt.Fprintln(out, styles.RenderSuccess(fmt.Sprintf("Sent to %s in %s", ch.DisplayName(), ws.Name)))
	return nil
}
