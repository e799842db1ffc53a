// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/huddle-tui/internal/render"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a fenced code block from a message body.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int

	// Highlights are search matches in Code. When present, syntax colors are
	// dropped so the matches stand out.
	Highlights []render.Range

	// LineNumbers prefixes each line with its number.
	LineNumbers bool
}

// NewCodeBlock creates a new code block.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
	}
}

// Render renders the code block with the theme's container style.
func (c CodeBlock) Render(theme *styles.Theme) string {
	code := strings.TrimRight(c.Code, "\n")

	var body string
	if len(c.Highlights) > 0 {
		body = markRanges(code, c.Highlights, lipgloss.NewStyle(), theme.Mark)
	} else {
		body = highlightCode(code, c.Language, theme.IsDark)
	}

	lines := strings.Split(body, "\n")
	if c.LineNumbers {
		lineNum := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(4).
			Align(lipgloss.Right).
			MarginRight(1)
		for i, line := range lines {
			lines[i] = lineNum.Render(strconv.Itoa(i+1)) + line
		}
	}

	content := strings.Join(lines, "\n")
	if c.Language != "" {
		content = theme.CodeLangBadge.Render(c.Language) + "\n" + content
	}

	maxWidth := c.MaxWidth
	if maxWidth < 20 {
		maxWidth = 20
	}
	return theme.CodeBlock.MaxWidth(maxWidth).Render(content)
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting for terminal output. Unknown
// languages and formatter errors fall back to the plain code.
func highlightCode(code, language string, dark bool) string {
	if language == "" {
		return code
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)

	name := "monokai"
	if !dark {
		name = "github"
	}
	style := chromaStyles.Get(name)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// markRanges styles s with base, painting each range with mark. Ranges are
// byte offsets, ascending and non-overlapping.
func markRanges(s string, ranges []render.Range, base, mark lipgloss.Style) string {
	var b strings.Builder
	pos := 0
	paint := func(style lipgloss.Style, text string) {
		// Styles are applied per line so borders and padding never see an
		// escape sequence spanning a newline.
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	for _, r := range ranges {
		if r.Start < pos || r.End > len(s) || r.Start >= r.End {
			continue
		}
		paint(base, s[pos:r.Start])
		paint(mark, s[r.Start:r.End])
		pos = r.End
	}
	paint(base, s[pos:])
	return b.String()
}
