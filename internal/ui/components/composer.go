// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/huddle-tui/internal/composer"
	"github.com/jeranaias/huddle-tui/internal/render"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
	"github.com/jeranaias/huddle-tui/internal/util"
)

// =============================================================================
// COMPOSER VIEW - Draft editor with toolbar, character counter and preview
// =============================================================================

// maxDraftLines is how many draft lines the expanded editor shows.
const maxDraftLines = 8

// ComposerView draws a composer.Composer. It holds no draft state of its own.
type ComposerView struct {
	theme       *styles.Theme
	painter     *Painter
	renderer    *render.Renderer
	width       int
	focused     bool
	placeholder string
}

// NewComposerView creates a composer view.
func NewComposerView(theme *styles.Theme, renderer *render.Renderer) *ComposerView {
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	return &ComposerView{
		theme:       theme,
		painter:     NewPainter(theme),
		renderer:    renderer,
		width:       80,
		placeholder: "Write a message…",
	}
}

// SetTheme swaps the theme.
func (v *ComposerView) SetTheme(theme *styles.Theme) {
	v.theme = theme
	v.painter = NewPainter(theme)
}

// SetWidth sets the outer width.
func (v *ComposerView) SetWidth(width int) { v.width = width }

// SetFocused toggles the cursor and focus border.
func (v *ComposerView) SetFocused(focused bool) { v.focused = focused }

// SetPlaceholder sets the hint shown for an empty draft.
func (v *ComposerView) SetPlaceholder(placeholder string) { v.placeholder = placeholder }

// View renders c.
func (v *ComposerView) View(c *composer.Composer) string {
	t := v.theme
	// Border and padding take four cells.
	inner := v.width - 4
	if inner < 10 {
		inner = 10
	}

	var body string
	switch c.State() {
	case composer.StatePreview:
		body = v.preview(c, inner)
	case composer.StateExpanded:
		body = v.toolbar(inner) + "\n" + v.editor(c, inner) + "\n" + v.counter(c, inner)
	default:
		body = v.collapsed(c, inner)
	}

	style := t.Composer
	if v.focused {
		style = t.ComposerFocused
	}
	return style.Width(v.width - 2).Render(body)
}

// Height returns the rendered height of View(c) in lines.
func (v *ComposerView) Height(c *composer.Composer) int {
	return strings.Count(v.View(c), "\n") + 1
}

func (v *ComposerView) collapsed(c *composer.Composer, width int) string {
	if c.Len() == 0 {
		hint := v.placeholder
		if v.focused {
			return v.theme.ComposerCursor.Render(" ") + v.theme.ComposerPlaceholder.Render(util.TruncateWidth(hint, width-1))
		}
		return v.theme.ComposerPlaceholder.Render(util.TruncateWidth(hint, width))
	}
	return util.TruncateWidth(util.FirstLine(c.Draft()), width)
}

func (v *ComposerView) toolbar(width int) string {
	t := v.theme
	items := []struct{ key, desc string }{
		{"^b", "bold"}, {"^t", "italic"}, {"^k", "code"}, {"^l", "list"}, {"^p", "preview"}, {"alt+⏎", "newline"},
	}
	parts := make([]string, 0, len(items))
	used := 0
	for _, it := range items {
		w := runewidth.StringWidth(it.key) + 1 + runewidth.StringWidth(it.desc) + 2
		if used+w > width {
			break
		}
		used += w
		parts = append(parts, t.ShortcutKey.Render(it.key)+" "+t.ComposerToolbar.Render(it.desc))
	}
	return strings.Join(parts, "  ")
}

func (v *ComposerView) counter(c *composer.Composer, width int) string {
	t := v.theme
	limit := c.MaxChars()
	n := c.Len()
	if limit <= 0 {
		return t.CharCount.Width(width).Render(strconv.Itoa(n))
	}
	text := strconv.Itoa(n) + "/" + strconv.Itoa(limit)
	switch {
	case n >= limit:
		return t.CharCountDanger.Width(width).Render(text)
	case n*10 >= limit*9:
		return t.CharCountWarning.Width(width).Render(text)
	default:
		return t.CharCount.Width(width).Render(text)
	}
}

func (v *ComposerView) preview(c *composer.Composer, width int) string {
	t := v.theme
	badge := t.PreviewBadge.Render("PREVIEW") + " " + t.ShortcutDesc.Render("^p to edit")
	if !c.CanSubmit() {
		return badge + "\n" + t.ComposerPlaceholder.Render("Nothing to preview")
	}
	return badge + "\n" + v.painter.Paint(v.renderer.Markdown(c.Draft()), width)
}

// editor draws the draft with the selection and cursor, hard-wrapped to
// width. Only the window of lines around the cursor is shown.
func (v *ComposerView) editor(c *composer.Composer, width int) string {
	t := v.theme
	runes := []rune(c.Draft())
	cursor := c.Cursor()
	selStart, selEnd := c.Selection()

	var lines []string
	var b strings.Builder
	lineWidth := 0
	cursorLine := 0
	flush := func() {
		lines = append(lines, b.String())
		b.Reset()
		lineWidth = 0
	}

	for i := 0; i <= len(runes); i++ {
		atCursor := i == cursor && v.focused
		if atCursor {
			cursorLine = len(lines)
		}
		if i == len(runes) {
			if atCursor {
				b.WriteString(t.ComposerCursor.Render(" "))
			}
			break
		}

		r := runes[i]
		if r == '\n' {
			if atCursor {
				b.WriteString(t.ComposerCursor.Render(" "))
			}
			flush()
			continue
		}

		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width {
			flush()
			if atCursor {
				cursorLine = len(lines)
			}
		}
		ch := string(r)
		switch {
		case atCursor:
			ch = t.ComposerCursor.Render(ch)
		case i >= selStart && i < selEnd:
			ch = t.ComposerSelection.Render(ch)
		}
		b.WriteString(ch)
		lineWidth += rw
	}
	flush()

	if len(runes) == 0 && !v.focused {
		return t.ComposerPlaceholder.Render(util.TruncateWidth(v.placeholder, width))
	}

	if len(lines) > maxDraftLines {
		start := cursorLine - maxDraftLines + 1
		if start < 0 {
			start = 0
		}
		lines = lines[start : start+maxDraftLines]
	}
	return strings.Join(lines, "\n")
}
