// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/huddle-tui/internal/render"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown. Message bodies are already
// markdown and are written as authored.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	messages := t.Confirmed()

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "channel: %s\n", escapeYAML(t.Channel.Name))
		if t.Workspace.Name != "" {
			fmt.Fprintf(&sb, "workspace: %s\n", escapeYAML(t.Workspace.Name))
		}
		fmt.Fprintf(&sb, "messages: %d\n", len(messages))
		fmt.Fprintf(&sb, "exported: %s\n", t.exportedAt().Format(time.RFC3339))
		sb.WriteString("generator: huddle\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(t.Channel.DisplayName()))
	if e.options.IncludeMetadata && t.Channel.Description != "" {
		fmt.Fprintf(&sb, "> %s\n\n", strings.ReplaceAll(t.Channel.Description, "\n", " "))
	}

	if len(messages) == 0 {
		sb.WriteString("*No messages yet.*\n")
	}

	lastAuthor := ""
	for i, msg := range messages {
		if i == 0 || msg.AuthorID != lastAuthor {
			if i > 0 {
				sb.WriteString("---\n\n")
			}
			label := escapeMarkdown(t.author(msg))
			if e.options.IncludeTimestamps {
				fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.CreatedAt.Time))
			} else {
				fmt.Fprintf(&sb, "### %s\n\n", label)
			}
		}
		lastAuthor = msg.AuthorID

		body := msg.Body
		if !msg.IsText() {
			body = "*" + render.UnsupportedText(msg.Type) + "*"
		}
		sb.WriteString(strings.TrimRight(body, "\n"))
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "*Exported from huddle on %s*\n",
		t.exportedAt().Format("January 2, 2006 at 3:04 PM"))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// ESCAPING
// =============================================================================

// escapeMarkdown escapes characters that would break formatting in headings.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("#", "\\#", "*", "\\*", "_", "\\_", "[", "\\[", "]", "\\]")
	return r.Replace(s)
}

// escapeYAML quotes a frontmatter value when it contains YAML syntax.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return "\"" + s + "\""
	}
	return s
}
