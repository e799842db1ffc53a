// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the huddle CLI.
//
// The interactive client needs a real terminal on both ends; subcommands
// read message bodies from stdin when it is piped and drop colors when
// stdout is not a terminal or NO_COLOR is set.

package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// isTerminalWriter reports whether w is a file attached to a terminal.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// isTerminalReader reports whether r is a file attached to a terminal.
func isTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// DefaultTerminalWidth is the fallback width when detection fails.
const DefaultTerminalWidth = 80

// =============================================================================
// COLOR OUTPUT
// =============================================================================

// ShouldUseColor reports whether output written to w may carry ANSI colors.
// See https://no-color.org/
func ShouldUseColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminalWriter(w)
}

// configureColor drops lipgloss output to plain text when w cannot show
// colors, so styled status lines stay readable in pipes and logs.
func configureColor(w io.Writer) {
	if !ShouldUseColor(w) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
