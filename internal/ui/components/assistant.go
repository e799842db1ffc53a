// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// =============================================================================
// ASSISTANT PANEL
// =============================================================================

// AssistantPanel draws the AI side-panel transcript. Replies are markdown
// and go through glamour; the user's prompts are shown as typed.
type AssistantPanel struct {
	theme *styles.Theme
	width int

	// renderer is rebuilt when the width or theme changes. glamour bakes
	// both into the renderer.
	renderer      *glamour.TermRenderer
	rendererWidth int
	rendererDark  bool

	cache map[string]string
}

// NewAssistantPanel creates an assistant panel.
func NewAssistantPanel(theme *styles.Theme) *AssistantPanel {
	return &AssistantPanel{theme: theme, width: 40, cache: make(map[string]string)}
}

// SetTheme swaps the theme.
func (p *AssistantPanel) SetTheme(theme *styles.Theme) {
	p.theme = theme
	p.cache = make(map[string]string)
}

// SetWidth sets the outer width.
func (p *AssistantPanel) SetWidth(width int) { p.width = width }

// Width returns the outer width.
func (p *AssistantPanel) Width() int { return p.width }

// Transcript renders msgs for the panel's scrolling area.
func (p *AssistantPanel) Transcript(msgs []model.AIMessage, busy bool, spinner string) string {
	t := p.theme
	inner := p.innerWidth()

	if len(msgs) == 0 && !busy {
		return t.Placeholder.Width(inner).Render("Ask the assistant anything. Replies are generated locally and are not posted to the channel.")
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, m := range msgs {
		switch {
		case m.Role == model.AIRoleUser:
			blocks = append(blocks, t.AssistantUser.Render(m.Role.DisplayName())+"\n"+wrap(m.Content, inner))
		case m.Synthetic:
			blocks = append(blocks, t.AssistantTitle.Render(m.Role.DisplayName())+"\n"+
				t.AssistantSynthetic.Render(wrap(m.Content, inner)))
		default:
			blocks = append(blocks, t.AssistantTitle.Render(m.Role.DisplayName())+"\n"+p.markdown(m.ID, m.Content, inner))
		}
	}
	if busy {
		blocks = append(blocks, t.Spinner.Render(spinner)+" "+t.ShortcutDesc.Render("thinking…"))
	}
	return strings.Join(blocks, "\n\n")
}

// Frame wraps the panel's title, transcript and input in the panel border.
func (p *AssistantPanel) Frame(transcript, input string, height int) string {
	t := p.theme
	title := t.AssistantTitle.Render("Assistant") + "  " + t.ShortcutDesc.Render("ctrl+a close · ctrl+x clear")
	body := title + "\n" + transcript + "\n" + input
	style := t.AssistantPanel.Width(p.width - 1)
	if height > 0 {
		style = style.Height(height)
	}
	return style.Render(body)
}

func (p *AssistantPanel) innerWidth() int {
	// Left border and padding take three cells.
	if w := p.width - 3; w > 10 {
		return w
	}
	return 10
}

func (p *AssistantPanel) markdown(id, content string, width int) string {
	if out, ok := p.cache[id]; ok && p.rendererWidth == width {
		return out
	}
	r := p.termRenderer(width)
	if r == nil {
		return wrap(content, width)
	}
	out, err := r.Render(content)
	if err != nil {
		return wrap(content, width)
	}
	out = strings.Trim(out, "\n")
	p.cache[id] = out
	return out
}

func (p *AssistantPanel) termRenderer(width int) *glamour.TermRenderer {
	dark := p.theme.IsDark
	if p.renderer != nil && p.rendererWidth == width && p.rendererDark == dark {
		return p.renderer
	}
	style := "dark"
	if !dark {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	p.renderer = r
	p.rendererWidth = width
	p.rendererDark = dark
	p.cache = make(map[string]string)
	return r
}
