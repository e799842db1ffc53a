// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/huddle-tui/internal/config"
	"github.com/jeranaias/huddle-tui/internal/ui/chat"
)

// ErrNotTerminal is returned when the interactive client is started without
// a terminal.
var ErrNotTerminal = errors.New("huddle needs an interactive terminal; see 'huddle --help' for scripting commands")

// runTUI starts the interactive client and blocks until it exits.
func runTUI(cmd *cobra.Command, opts *options) error {
	if !IsTTY() || !IsStdoutTTY() {
		return ErrNotTerminal
	}
	errOut := cmd.ErrOrStderr()

	cfg, err := opts.loadConfig(errOut)
	if err != nil {
		return err
	}
	s, err := openSession(cfg, errOut)
	if err != nil {
		return err
	}
	defer s.Close()

	s.logger.Info("huddle_start", "version", Version, "store", cfg.Store.Driver)

	m := chat.New(chat.Options{
		Store:     s.store,
		Auth:      s.provider,
		Generator: newGenerator(cfg),
		Config:    cfg,
		Logger:    s.logger,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Config edits reach the running client as messages. The watch is on
	// the file's directory, so a file created later is picked up too.
	if path, err := opts.configFile(); err == nil {
		w, err := config.Watch(path, config.DefaultWatchDebounce, func(c *config.Config, err error) {
			p.Send(chat.ConfigChangedMsg{Config: c, Err: err})
		})
		if err != nil {
			s.logger.Warn("config_watch_failed", "path", path, "error", err)
		} else {
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run client: %w", err)
	}
	s.logger.Info("huddle_exit")
	return nil
}
