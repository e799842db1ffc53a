// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging sets up the slog logger used by every huddle component.
//
// The terminal UI owns stdout, so logs always go to a file. When the file
// cannot be opened the logger discards output rather than corrupting the
// screen.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// maxLogSize is the size at which the log file is rotated on open.
const maxLogSize = 10 * 1024 * 1024

// ParseLevel maps a config level name onto a slog level. Unknown names are
// treated as info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenFile creates the log file's directory, rotates an oversized file and
// returns a logger appending to it. The returned closer closes the file.
func OpenFile(path, level string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Discard(), io.NopCloser(nil), fmt.Errorf("create log directory: %w", err)
	}
	var rotateErr error
	if fi, err := os.Stat(path); err == nil && fi.Size() > maxLogSize {
		rotateErr = os.Rename(path, path+".1")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return Discard(), io.NopCloser(nil), fmt.Errorf("open log file: %w", err)
	}
	logger := New(f, level)
	// A failed rotation keeps appending to the old file.
	if rotateErr != nil {
		logger.Warn("log_rotate_failed", "path", path, "error", rotateErr)
	}
	return logger, f, nil
}
