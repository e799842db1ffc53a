// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/huddle-tui/internal/render"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN PAINTER
// =============================================================================

// Painter draws render display trees as styled terminal text.
type Painter struct {
	theme *styles.Theme
}

// NewPainter creates a painter for theme.
func NewPainter(theme *styles.Theme) *Painter {
	return &Painter{theme: theme}
}

// Paint renders doc wrapped to width cells.
func (p *Painter) Paint(doc render.Node, width int) string {
	if width < 10 {
		width = 10
	}
	return p.block(doc, width)
}

func (p *Painter) block(n render.Node, width int) string {
	t := p.theme
	switch n.Kind {
	case render.KindDocument, render.KindListItem:
		return p.blocks(n.Children, width)

	case render.KindParagraph:
		return wrap(p.inline(n.Children, lipgloss.NewStyle()), width)

	case render.KindHeading:
		return wrap(p.inline(n.Children, t.Heading), width)

	case render.KindBlockquote:
		bar := lipgloss.NewStyle().Foreground(styles.Overlay).Render("│") + " "
		return prefixLines(p.blocks(n.Children, width-2), bar, bar)

	case render.KindList:
		return p.list(n, width)

	case render.KindCodeBlock:
		cb := NewCodeBlock(n.Language, n.Text)
		cb.MaxWidth = width
		cb.Highlights = n.Highlights
		return cb.Render(t)

	case render.KindThematicBreak:
		return lipgloss.NewStyle().Foreground(styles.Overlay).Render(strings.Repeat("─", width))

	case render.KindTable:
		return p.table(n)

	case render.KindPlaceholder:
		return t.Placeholder.Render(n.Text)

	default:
		return wrap(p.inline([]render.Node{n}, lipgloss.NewStyle()), width)
	}
}

func (p *Painter) blocks(nodes []render.Node, width int) string {
	out := make([]string, 0, len(nodes))
	for _, child := range nodes {
		out = append(out, p.block(child, width))
	}
	return strings.Join(out, "\n")
}

func (p *Painter) list(n render.Node, width int) string {
	out := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		marker := "• "
		if n.Ordered {
			marker = strconv.Itoa(n.Start+i) + ". "
		}
		indent := strings.Repeat(" ", lipgloss.Width(marker))
		body := p.block(item, width-len(indent))
		out = append(out, prefixLines(body, p.theme.ShortcutDesc.Render(marker), indent))
	}
	return strings.Join(out, "\n")
}

// table lays cells out in aligned columns. Wide tables are not wrapped; the
// viewport clips them.
func (p *Painter) table(n render.Node) string {
	rows := make([][]string, len(n.Children))
	var widths []int
	for r, row := range n.Children {
		for c, cell := range row.Children {
			base := lipgloss.NewStyle()
			if cell.Header {
				base = p.theme.Bold
			}
			s := p.inline(cell.Children, base)
			rows[r] = append(rows[r], s)
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			if w := lipgloss.Width(s); w > widths[c] {
				widths[c] = w
			}
		}
	}

	sep := p.theme.TableBorder.Render(" │ ")
	var lines []string
	for r, row := range n.Children {
		cells := make([]string, len(widths))
		for c := range widths {
			var s, align string
			if c < len(rows[r]) {
				s = rows[r][c]
				align = row.Children[c].Align
			}
			cells[c] = pad(s, widths[c], align)
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, sep), " "))
		if row.Header {
			rule := make([]string, len(widths))
			for c, w := range widths {
				rule[c] = strings.Repeat("─", w)
			}
			lines = append(lines, p.theme.TableBorder.Render(strings.Join(rule, "─┼─")))
		}
	}
	return strings.Join(lines, "\n")
}

// inline renders inline nodes, layering each container's style over base.
func (p *Painter) inline(nodes []render.Node, base lipgloss.Style) string {
	t := p.theme
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case render.KindText:
			b.WriteString(styleLines(base, n.Text))
		case render.KindStrong:
			b.WriteString(p.inline(n.Children, base.Bold(true)))
		case render.KindEmphasis:
			b.WriteString(p.inline(n.Children, base.Italic(true)))
		case render.KindStrikethrough:
			b.WriteString(p.inline(n.Children, base.Strikethrough(true)))
		case render.KindCode:
			b.WriteString(markRanges(n.Text, n.Highlights, t.InlineCode, t.Mark))
		case render.KindLink:
			label := p.inline(n.Children, base.Inherit(t.Link))
			b.WriteString(label)
			if plain := render.PlainText(n); plain != n.Href && "mailto:"+plain != n.Href {
				b.WriteString(t.Timestamp.Render(" (" + n.Href + ")"))
			}
		case render.KindHighlight:
			b.WriteString(t.Mark.Inherit(base).Render(n.Text))
		case render.KindLineBreak:
			b.WriteByte('\n')
		case render.KindTaskCheck:
			if n.Checked {
				b.WriteString(t.Link.UnsetUnderline().Render("[x]"))
			} else {
				b.WriteString(t.Timestamp.Render("[ ]"))
			}
		case render.KindPlaceholder:
			b.WriteString(t.Placeholder.Render(n.Text))
		default:
			b.WriteString(p.inline(n.Children, base))
		}
	}
	return b.String()
}

// =============================================================================
// HELPERS
// =============================================================================

// wrap word-wraps styled text to width and drops the padding lipgloss adds.
func wrap(s string, width int) string {
	if s == "" {
		return ""
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(s)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

// styleLines applies style to each line of s separately.
func styleLines(style lipgloss.Style, s string) string {
	if !strings.Contains(s, "\n") {
		return style.Render(s)
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

// prefixLines puts first before the first line of s and rest before the others.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = first + line
		} else {
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

// pad fills s to width cells according to align ("left", "right", "center").
func pad(s string, width int, align string) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case "right":
		return strings.Repeat(" ", gap) + s
	case "center":
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
