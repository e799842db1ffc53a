// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// =============================================================================
// HTML OUTPUT
// =============================================================================

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// sanitizer returns the shared output policy: user-generated content rules,
// <mark> for highlights, and links opened in a new context with no opener or
// referrer. target="_blank" is the only target kept, and bluemonday adds
// noopener to every link that carries it, relative and mailto included.
func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("mark")
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w.+-]+$`)).OnElements("code")
		p.AllowAttrs("align").Matching(regexp.MustCompile(`^(left|right|center)$`)).OnElements("td", "th")
		p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		p.AddTargetBlankToFullyQualifiedLinks(true)
		p.RequireNoReferrerOnLinks(true)
		policy = p
	})
	return policy
}

// HTML renders n as sanitized HTML.
func HTML(n Node) string {
	var b strings.Builder
	writeHTML(&b, n)
	return sanitizer().Sanitize(b.String())
}

func writeHTML(b *strings.Builder, n Node) {
	esc := html.EscapeString

	switch n.Kind {
	case KindDocument:
		writeChildren(b, n)
	case KindParagraph:
		wrap(b, "p", n)
	case KindHeading:
		level := n.Level
		if level < 1 || level > 6 {
			level = 1
		}
		wrap(b, fmt.Sprintf("h%d", level), n)
	case KindBlockquote:
		wrap(b, "blockquote", n)
	case KindList:
		if n.Ordered {
			if n.Start > 1 {
				fmt.Fprintf(b, `<ol start="%d">`, n.Start)
			} else {
				b.WriteString("<ol>")
			}
			writeChildren(b, n)
			b.WriteString("</ol>")
			return
		}
		wrap(b, "ul", n)
	case KindListItem:
		wrap(b, "li", n)
	case KindCodeBlock:
		b.WriteString("<pre><code")
		if n.Language != "" {
			fmt.Fprintf(b, ` class="language-%s"`, esc(n.Language))
		}
		b.WriteString(">")
		writeMarked(b, n.Text, n.Highlights)
		b.WriteString("</code></pre>")
	case KindThematicBreak:
		b.WriteString("<hr>")
	case KindTable:
		wrap(b, "table", n)
	case KindTableRow:
		wrap(b, "tr", n)
	case KindTableCell:
		tag := "td"
		if n.Header {
			tag = "th"
		}
		if n.Align != "" {
			fmt.Fprintf(b, `<%s align="%s">`, tag, esc(n.Align))
		} else {
			fmt.Fprintf(b, "<%s>", tag)
		}
		writeChildren(b, n)
		fmt.Fprintf(b, "</%s>", tag)
	case KindText:
		b.WriteString(esc(n.Text))
	case KindStrong:
		wrap(b, "strong", n)
	case KindEmphasis:
		wrap(b, "em", n)
	case KindStrikethrough:
		wrap(b, "del", n)
	case KindCode:
		b.WriteString("<code>")
		writeMarked(b, n.Text, n.Highlights)
		b.WriteString("</code>")
	case KindLink:
		fmt.Fprintf(b, `<a href="%s" target="%s" rel="%s">`, esc(n.Href), esc(n.Target), esc(n.Rel))
		writeChildren(b, n)
		b.WriteString("</a>")
	case KindHighlight:
		b.WriteString("<mark>" + esc(n.Text) + "</mark>")
	case KindLineBreak:
		b.WriteString("<br>")
	case KindTaskCheck:
		if n.Checked {
			b.WriteString("[x]")
		} else {
			b.WriteString("[ ]")
		}
	case KindPlaceholder:
		b.WriteString("<p><em>" + esc(n.Text) + "</em></p>")
	default:
		writeChildren(b, n)
	}
}

func wrap(b *strings.Builder, tag string, n Node) {
	b.WriteString("<" + tag + ">")
	writeChildren(b, n)
	b.WriteString("</" + tag + ">")
}

func writeChildren(b *strings.Builder, n Node) {
	for _, child := range n.Children {
		writeHTML(b, child)
	}
}

// writeMarked escapes s and wraps each range in <mark>.
func writeMarked(b *strings.Builder, s string, ranges []Range) {
	pos := 0
	for _, r := range ranges {
		if r.Start < pos || r.End > len(s) || r.Start >= r.End {
			continue
		}
		b.WriteString(html.EscapeString(s[pos:r.Start]))
		b.WriteString("<mark>" + html.EscapeString(s[r.Start:r.End]) + "</mark>")
		pos = r.End
	}
	b.WriteString(html.EscapeString(s[pos:]))
}
