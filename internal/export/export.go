// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/render"
	"github.com/jeranaias/huddle-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNilTranscript is returned when Export receives no transcript.
	ErrNilTranscript = errors.New("transcript is nil")

	// ErrNoChannel is returned when the transcript's channel has no ID.
	ErrNoChannel = errors.New("transcript has no channel")

	// ErrUnknownFormat is returned by New for unsupported format names.
	ErrUnknownFormat = errors.New("unknown export format")
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a channel's history prepared for export. Messages are in
// ascending creation order, the same order the conversation controller keeps.
type Transcript struct {
	Workspace model.Workspace
	Channel   model.Channel
	Messages  []model.Message

	// Viewer names the exporting user's own messages; other authors get
	// placeholder labels.
	Viewer *model.User

	ExportedAt time.Time
}

// Confirmed returns the messages the store actually holds. Pending and failed
// messages exist only on the sending client and are never exported.
func (t *Transcript) Confirmed() []model.Message {
	out := make([]model.Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		if m.Status == model.StatusConfirmed {
			out = append(out, m)
		}
	}
	return out
}

func (t *Transcript) validate() error {
	if t == nil {
		return ErrNilTranscript
	}
	if t.Channel.ID == "" {
		return ErrNoChannel
	}
	return nil
}

func (t *Transcript) title() string {
	if t.Workspace.Name == "" {
		return t.Channel.DisplayName()
	}
	return t.Workspace.Name + " " + t.Channel.DisplayName()
}

func (t *Transcript) author(m model.Message) string {
	return render.AuthorLabel(m.AuthorID, t.Viewer)
}

func (t *Transcript) exportedAt() time.Time {
	if t.ExportedAt.IsZero() {
		return time.Now()
	}
	return t.ExportedAt
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts a transcript to the target format and returns the content.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md", ".html").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Formats lists the names accepted by New.
var Formats = []string{"html", "markdown", "json"}

// New returns the exporter for a format name. "md" is accepted for markdown.
func New(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata includes the workspace/channel header.
	IncludeMetadata bool

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a transcript to a file using the specified exporter.
// The file is written atomically and its path returned.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, Filename(t, exporter.FileExtension()))
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// Non-fatal: the file was still created.
		_ = openFile(outputPath)
	}
	return outputPath, nil
}

// Filename builds "<workspace>_<channel>_<timestamp><ext>" with characters
// that are invalid on common filesystems replaced.
func Filename(t *Transcript, ext string) string {
	parts := make([]string, 0, 3)
	if t.Workspace.Name != "" {
		parts = append(parts, sanitizeFilename(t.Workspace.Name))
	}
	parts = append(parts, sanitizeFilename(t.Channel.Name))
	parts = append(parts, t.exportedAt().Format("20060102_150405"))
	return strings.Join(parts, "_") + ext
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	const maxLen = 50
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "channel"
	}
	return b.String()
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("Jan 2 15:04")
}
