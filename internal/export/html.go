// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page with embedded CSS.
// Message bodies go through the same markdown renderer as the terminal feed
// and are sanitized before they are written.
type HTMLExporter struct {
	options  *Options
	renderer *render.Renderer
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts, renderer: render.NewRenderer()}
}

// Export converts a transcript to HTML.
func (e *HTMLExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	esc := html.EscapeString

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", esc(t.title()))
	sb.WriteString("    <meta name=\"generator\" content=\"huddle\">\n")
	fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", t.exportedAt().Format(time.RFC3339))
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	messages := t.Confirmed()
	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(t, len(messages)))
	}

	sb.WriteString("        <main class=\"feed\">\n")
	if len(messages) == 0 {
		sb.WriteString("            <p class=\"empty\">No messages yet.</p>\n")
	}
	for i, msg := range messages {
		var prev *model.Message
		if i > 0 {
			prev = &messages[i-1]
		}
		sb.WriteString(e.renderMessage(t, msg, prev))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "            <p>Exported from <strong>huddle</strong> on %s</p>\n",
		t.exportedAt().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(t *Transcript, count int) string {
	esc := html.EscapeString
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(&sb, "            <h1>%s</h1>\n", esc(t.Channel.DisplayName()))
	if t.Channel.Description != "" {
		fmt.Fprintf(&sb, "            <p class=\"description\">%s</p>\n", esc(t.Channel.Description))
	}
	sb.WriteString("            <div class=\"metadata\">\n")
	if t.Workspace.Name != "" {
		fmt.Fprintf(&sb, "                <span class=\"meta-item\">Workspace: %s</span>\n", esc(t.Workspace.Name))
	}
	fmt.Fprintf(&sb, "                <span class=\"meta-item\">Messages: %d</span>\n", count)
	if !t.Channel.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "                <span class=\"meta-item\">Created: %s</span>\n", formatTimestamp(t.Channel.CreatedAt.Time))
	}
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

// renderMessage writes one message. Consecutive messages from the same author
// share the first one's header, as in the terminal feed.
func (e *HTMLExporter) renderMessage(t *Transcript, msg model.Message, prev *model.Message) string {
	esc := html.EscapeString
	grouped := prev != nil && prev.AuthorID == msg.AuthorID

	var sb strings.Builder
	class := "message"
	if grouped {
		class += " continued"
	}
	fmt.Fprintf(&sb, "            <div class=\"%s\" id=\"m-%s\">\n", class, esc(msg.ID))

	if !grouped {
		label := t.author(msg)
		sb.WriteString("                <div class=\"message-header\">\n")
		fmt.Fprintf(&sb, "                    <span class=\"avatar\">%s</span>\n", esc(render.Initial(label)))
		fmt.Fprintf(&sb, "                    <span class=\"author\">%s</span>\n", esc(label))
		if e.options.IncludeTimestamps {
			fmt.Fprintf(&sb, "                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.CreatedAt.Time))
		}
		sb.WriteString("                </div>\n")
	}

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(render.HTML(e.renderer.Render(msg, "")))
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --text-primary: #c0caf5;
            --text-muted: #565f89;
            --border-color: #414868;
            --accent: #7aa2f7;
            --mark-bg: #e0af68;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f4f5f7;
            --text-primary: #1d1c1d;
            --text-muted: #616061;
            --border-color: #dddddd;
            --accent: #1264a3;
            --mark-bg: #fff3b0;
        }

        body {
            font-family: var(--font-sans);
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }

        .container { max-width: 860px; margin: 0 auto; padding: 32px 24px; }
        .header { border-bottom: 1px solid var(--border-color); padding-bottom: 16px; margin-bottom: 16px; }
        .header h1 { font-size: 1.5rem; }
        .description, .metadata, .timestamp, .footer, .empty { color: var(--text-muted); font-size: 0.85rem; }
        .meta-item { margin-right: 16px; }

        .message { padding: 6px 0 2px 44px; position: relative; }
        .message.continued { padding-top: 0; }
        .message-header { display: flex; align-items: baseline; gap: 8px; }
        .avatar {
            position: absolute; left: 0; top: 8px;
            width: 32px; height: 32px; border-radius: 6px;
            background: var(--accent); color: var(--bg-primary);
            display: flex; align-items: center; justify-content: center; font-weight: 700;
        }
        .author { font-weight: 700; }

        .message-content p { margin: 2px 0; }
        .message-content pre, .message-content code { font-family: var(--font-mono); background: var(--bg-secondary); }
        .message-content pre { padding: 8px 12px; border-radius: 4px; overflow-x: auto; margin: 4px 0; }
        .message-content code { padding: 1px 4px; border-radius: 3px; }
        .message-content pre code { padding: 0; }
        .message-content blockquote { border-left: 3px solid var(--border-color); padding-left: 10px; color: var(--text-muted); }
        .message-content table { border-collapse: collapse; margin: 4px 0; }
        .message-content th, .message-content td { border: 1px solid var(--border-color); padding: 4px 8px; }
        .message-content a { color: var(--accent); }
        .message-content mark { background: var(--mark-bg); color: inherit; }
        .message-content ul, .message-content ol { padding-left: 20px; }

        .footer { margin-top: 32px; padding-top: 16px; border-top: 1px solid var(--border-color); text-align: center; }
    </style>
`
