// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jeranaias/huddle-tui/internal/model"
)

// UnsupportedText returns the placeholder shown for a non-text message.
func UnsupportedText(tag string) string {
	return "Unsupported message type: " + tag
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer parses markdown with GitHub extensions (tables, strikethrough,
// autolinks, task lists). A Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a markdown renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render converts a message into a display tree and highlights every
// case-insensitive occurrence of highlight. Messages that are not text
// render as a single placeholder node.
func (r *Renderer) Render(msg model.Message, highlight string) Node {
	if !msg.IsText() {
		return Node{
			Kind:     KindDocument,
			Children: []Node{{Kind: KindPlaceholder, Text: UnsupportedText(msg.Type)}},
		}
	}
	return Highlight(r.Markdown(msg.Body), highlight)
}

// Markdown converts a markdown source into a display tree.
func (r *Renderer) Markdown(body string) Node {
	source := []byte(body)
	root := r.md.Parser().Parse(text.NewReader(source))

	b := &builder{source: source}
	doc := Node{Kind: KindDocument}
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		doc.Children = append(doc.Children, b.block(child)...)
	}
	return doc
}

// builder walks a goldmark AST. Raw HTML is never passed through: it becomes
// literal text.
type builder struct {
	source []byte
}

func (b *builder) block(node ast.Node) []Node {
	switch n := node.(type) {
	case *ast.Paragraph:
		return []Node{{Kind: KindParagraph, Children: b.inlines(n)}}

	case *ast.TextBlock:
		// Tight list items hold their text in a TextBlock.
		return []Node{{Kind: KindParagraph, Children: b.inlines(n)}}

	case *ast.Heading:
		return []Node{{Kind: KindHeading, Level: n.Level, Children: b.inlines(n)}}

	case *ast.Blockquote:
		return []Node{{Kind: KindBlockquote, Children: b.blocks(n)}}

	case *ast.List:
		list := Node{Kind: KindList, Ordered: n.IsOrdered(), Start: n.Start, Tight: n.IsTight}
		if list.Ordered && list.Start == 0 {
			list.Start = 1
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			list.Children = append(list.Children, Node{Kind: KindListItem, Children: b.blocks(item)})
		}
		return []Node{list}

	case *ast.FencedCodeBlock:
		return []Node{{
			Kind:     KindCodeBlock,
			Language: strings.TrimSpace(string(n.Language(b.source))),
			Text:     b.lines(n),
		}}

	case *ast.CodeBlock:
		return []Node{{Kind: KindCodeBlock, Text: b.lines(n)}}

	case *ast.HTMLBlock:
		raw := b.lines(n)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(b.source))
		}
		raw = strings.TrimRight(raw, "\n")
		return []Node{{Kind: KindParagraph, Children: []Node{{Kind: KindText, Text: raw}}}}

	case *ast.ThematicBreak:
		return []Node{{Kind: KindThematicBreak}}

	case *extast.Table:
		return []Node{b.table(n)}

	default:
		return b.blocks(node)
	}
}

func (b *builder) blocks(parent ast.Node) []Node {
	var out []Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, b.block(child)...)
	}
	return out
}

func (b *builder) lines(node ast.Node) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(b.source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *builder) table(t *extast.Table) Node {
	table := Node{Kind: KindTable}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		_, isHeader := row.(*extast.TableHeader)
		r := Node{Kind: KindTableRow, Header: isHeader}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			c := Node{Kind: KindTableCell, Header: isHeader, Children: b.inlines(cell)}
			if tc, ok := cell.(*extast.TableCell); ok && tc.Alignment != extast.AlignNone {
				c.Align = tc.Alignment.String()
			}
			r.Children = append(r.Children, c)
		}
		table.Children = append(table.Children, r)
	}
	return table
}

func (b *builder) inlines(parent ast.Node) []Node {
	var out []Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = appendInline(out, b.inline(child)...)
	}
	return out
}

// appendInline merges adjacent text nodes.
func appendInline(out []Node, nodes ...Node) []Node {
	for _, n := range nodes {
		if n.Kind == KindText && n.Text == "" {
			continue
		}
		if n.Kind == KindText && len(out) > 0 && out[len(out)-1].Kind == KindText {
			out[len(out)-1].Text += n.Text
			continue
		}
		out = append(out, n)
	}
	return out
}

func (b *builder) inline(node ast.Node) []Node {
	switch n := node.(type) {
	case *ast.Text:
		out := []Node{{Kind: KindText, Text: string(n.Segment.Value(b.source))}}
		if n.HardLineBreak() {
			out = append(out, Node{Kind: KindLineBreak})
		} else if n.SoftLineBreak() {
			out = append(out, Node{Kind: KindText, Text: " "})
		}
		return out

	case *ast.String:
		return []Node{{Kind: KindText, Text: string(n.Value)}}

	case *ast.CodeSpan:
		return []Node{{Kind: KindCode, Text: collectText(n, b.source)}}

	case *ast.Emphasis:
		kind := KindEmphasis
		if n.Level >= 2 {
			kind = KindStrong
		}
		return []Node{{Kind: kind, Children: b.inlines(n)}}

	case *extast.Strikethrough:
		return []Node{{Kind: KindStrikethrough, Children: b.inlines(n)}}

	case *ast.Link:
		children := b.inlines(n)
		href := safeHref(string(n.Destination))
		if href == "" {
			return children
		}
		return []Node{newLink(href, children)}

	case *ast.AutoLink:
		raw := string(n.URL(b.source))
		label := []Node{{Kind: KindText, Text: string(n.Label(b.source))}}
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(raw), "mailto:") {
			raw = "mailto:" + raw
		}
		href := safeHref(raw)
		if href == "" {
			return label
		}
		return []Node{newLink(href, label)}

	case *ast.Image:
		// Attachments are out of scope; show the alt text and the address.
		out := b.inlines(n)
		if dest := safeHref(string(n.Destination)); dest != "" {
			out = append(out, Node{Kind: KindText, Text: " (" + dest + ")"})
		}
		return out

	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(b.source))
		}
		return []Node{{Kind: KindText, Text: sb.String()}}

	case *extast.TaskCheckBox:
		return []Node{{Kind: KindTaskCheck, Checked: n.IsChecked}}

	default:
		return b.inlines(node)
	}
}

func newLink(href string, children []Node) Node {
	return Node{
		Kind:     KindLink,
		Href:     href,
		Target:   LinkTarget,
		Rel:      LinkRel,
		Children: children,
	}
}

// safeHref returns dest if it uses an allowed scheme, otherwise "".
// Relative references are kept.
func safeHref(dest string) string {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return ""
	}
	u, err := url.Parse(dest)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return dest
	default:
		return ""
	}
}

func collectText(node ast.Node, source []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}
