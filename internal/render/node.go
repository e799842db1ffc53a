// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message bodies into display nodes.
package render

import "strings"

// =============================================================================
// NODE KINDS
// =============================================================================

// Kind identifies a display node.
type Kind int

const (
	KindDocument Kind = iota
	KindParagraph
	KindHeading
	KindBlockquote
	KindList
	KindListItem
	KindCodeBlock
	KindThematicBreak
	KindTable
	KindTableRow
	KindTableCell
	KindText
	KindStrong
	KindEmphasis
	KindStrikethrough
	KindCode
	KindLink
	KindHighlight
	KindLineBreak
	KindTaskCheck
	KindPlaceholder
)

var kindNames = map[Kind]string{
	KindDocument:      "document",
	KindParagraph:     "paragraph",
	KindHeading:       "heading",
	KindBlockquote:    "blockquote",
	KindList:          "list",
	KindListItem:      "list_item",
	KindCodeBlock:     "code_block",
	KindThematicBreak: "thematic_break",
	KindTable:         "table",
	KindTableRow:      "table_row",
	KindTableCell:     "table_cell",
	KindText:          "text",
	KindStrong:        "strong",
	KindEmphasis:      "emphasis",
	KindStrikethrough: "strikethrough",
	KindCode:          "code",
	KindLink:          "link",
	KindHighlight:     "highlight",
	KindLineBreak:     "line_break",
	KindTaskCheck:     "task_check",
	KindPlaceholder:   "placeholder",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsBlock reports whether nodes of this kind start on their own line.
func (k Kind) IsBlock() bool {
	switch k {
	case KindDocument, KindParagraph, KindHeading, KindBlockquote, KindList,
		KindListItem, KindCodeBlock, KindThematicBreak, KindTable, KindTableRow,
		KindPlaceholder:
		return true
	}
	return false
}

// =============================================================================
// NODE
// =============================================================================

// Range is a half-open byte range [Start, End) into a node's Text.
type Range struct {
	Start int
	End   int
}

// Node is one element of the display tree. Leaf kinds carry Text; container
// kinds carry Children.
type Node struct {
	Kind Kind
	Text string

	// Heading level (1-6)
	Level int

	// Lists
	Ordered bool
	Start   int
	Tight   bool

	// Code blocks
	Language string

	// Highlights marks search matches inside KindCode and KindCodeBlock text,
	// which are never split into children.
	Highlights []Range

	// Links open in a new context without an opener reference.
	Href   string
	Target string
	Rel    string

	// Tables
	Header bool
	Align  string

	// Task list items
	Checked bool

	Children []Node
}

// Link attribute values applied to every rendered link.
const (
	LinkTarget = "_blank"
	LinkRel    = "noopener noreferrer"
)

// PlainText concatenates the visible text of n.
func PlainText(n Node) string {
	var b strings.Builder
	writePlain(&b, n)
	return strings.TrimRight(b.String(), "\n")
}

func writePlain(b *strings.Builder, n Node) {
	switch n.Kind {
	case KindLineBreak:
		b.WriteByte('\n')
		return
	case KindThematicBreak:
		b.WriteString("---\n")
		return
	case KindTaskCheck:
		if n.Checked {
			b.WriteString("[x]")
		} else {
			b.WriteString("[ ]")
		}
		return
	}

	b.WriteString(n.Text)
	for i, child := range n.Children {
		writePlain(b, child)
		if n.Kind == KindTableRow && i < len(n.Children)-1 {
			b.WriteString(" | ")
		}
	}
	if n.Kind.IsBlock() && n.Kind != KindDocument && n.Kind != KindListItem {
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
}

// Walk calls fn for n and each descendant in document order. Returning false
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Find returns every node of kind k under n.
func Find(n Node, k Kind) []Node {
	var out []Node
	Walk(n, func(c Node) bool {
		if c.Kind == k {
			out = append(out, c)
		}
		return true
	})
	return out
}
