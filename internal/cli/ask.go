// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeranaias/huddle-tui/internal/assistant"
)

// ErrAssistantDisabled is returned by ask when assistant.enabled is false.
var ErrAssistantDisabled = errors.New("the assistant is disabled (set assistant.enabled = true)")

func newAskCmd(opts *options) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask the assistant a one-off question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "), raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply as markdown source")
	return cmd
}

func runAsk(cmd *cobra.Command, opts *options, question string, raw bool) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := opts.loadConfig(errOut)
	if err != nil {
		return err
	}
	gen := newGenerator(cfg)
	if gen == nil {
		return ErrAssistantDisabled
	}

	logger, closer, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "warning: %v\n", err)
	}
	defer closer.Close()

	sess := assistant.NewSession(gen,
		assistant.WithMaxTokens(cfg.Assistant.MaxTokens),
		assistant.WithRateLimit(cfg.Assistant.RequestsPerMinute),
		assistant.WithLogger(logger),
	)

	// Inference has its own timeout from the assistant settings.
	reply, err := sess.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}
	if err := printReply(out, reply.Content, raw || !isTerminalWriter(out)); err != nil {
		return err
	}
	if reply.Synthetic {
		return errors.New("no reply from " + cfg.Assistant.Model)
	}
	return nil
}

// printReply writes content, rendered for the terminal unless raw.
func printReply(w io.Writer, content string, raw bool) error {
	if raw {
		_, err := fmt.Fprintln(w, content)
		return err
	}
	width := DefaultTerminalWidth
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		_, err = fmt.Fprintln(w, content)
		return err
	}
	rendered, err := r.Render(content)
	if err != nil {
		rendered = content + "\n"
	}
	_, err = io.WriteString(w, rendered)
	return err
}
