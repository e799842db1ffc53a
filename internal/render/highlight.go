// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// SEARCH HIGHLIGHTING
// =============================================================================

// Highlight returns a copy of n in which every case-insensitive occurrence of
// term inside text is wrapped in a KindHighlight node. Code text is not split;
// its matches are recorded in Highlights instead. Matches never span node
// boundaries. A blank term returns n unchanged.
func Highlight(n Node, term string) Node {
	term = strings.TrimSpace(term)
	if term == "" {
		return n
	}
	return highlightNode(n, lowerRunes(term))
}

func highlightNode(n Node, needle []rune) Node {
	switch n.Kind {
	case KindCode, KindCodeBlock:
		n.Highlights = findMatches(n.Text, needle)
		return n
	case KindPlaceholder:
		return n
	}

	if len(n.Children) == 0 {
		return n
	}

	children := make([]Node, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Kind == KindText {
			children = append(children, splitText(child.Text, needle)...)
			continue
		}
		children = append(children, highlightNode(child, needle))
	}
	n.Children = children
	return n
}

// splitText breaks s into text and highlight nodes around matches.
func splitText(s string, needle []rune) []Node {
	matches := findMatches(s, needle)
	if len(matches) == 0 {
		return []Node{{Kind: KindText, Text: s}}
	}

	var out []Node
	pos := 0
	for _, m := range matches {
		if m.Start > pos {
			out = append(out, Node{Kind: KindText, Text: s[pos:m.Start]})
		}
		out = append(out, Node{Kind: KindHighlight, Text: s[m.Start:m.End]})
		pos = m.End
	}
	if pos < len(s) {
		out = append(out, Node{Kind: KindText, Text: s[pos:]})
	}
	return out
}

// FindMatches returns the non-overlapping byte ranges of term in s, compared
// rune by rune with simple lowercasing.
func FindMatches(s, term string) []Range {
	if term == "" {
		return nil
	}
	return findMatches(s, lowerRunes(term))
}

func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func findMatches(s string, needle []rune) []Range {
	if len(needle) == 0 || s == "" {
		return nil
	}
	var out []Range
	for i := 0; i < len(s); {
		if end, ok := matchAt(s, i, needle); ok {
			out = append(out, Range{Start: i, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return out
}

// matchAt reports whether needle matches s starting at byte offset i and
// returns the byte offset just past the match.
func matchAt(s string, i int, needle []rune) (int, bool) {
	pos := i
	for _, want := range needle {
		if pos >= len(s) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s[pos:])
		if unicode.ToLower(r) != want {
			return 0, false
		}
		pos += size
	}
	return pos, true
}
