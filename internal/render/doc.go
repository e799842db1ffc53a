// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message bodies into display nodes.
//
// Bodies are parsed with goldmark (GitHub extensions) into a small tree of
// Node values that the terminal view paints and the exporter serializes.
// Only the "text" type tag is parsed; any other tag yields a placeholder.
// Raw HTML in a body is kept as literal text.
//
// Search highlighting runs after parsing, over text nodes only, so markup and
// link destinations are never altered by a search term.
//
// # Key Types
//
//   - Renderer: goldmark wrapper producing Node trees
//   - Node: Display element (paragraph, list, code block, link, highlight, ...)
//   - Range: Byte range of a match inside code text
//
// # Usage
//
//	r := render.NewRenderer()
//	doc := r.Render(msg, filter)
//	label := render.AuthorLabel(msg.AuthorID, viewer)
//	html := render.HTML(doc) // sanitized, links open in a new tab
package render
