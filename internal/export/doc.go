// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes channel transcripts to files.
//
// # Key Types
//
//   - Transcript: a channel with its messages and the exporting user
//   - Exporter: Main export interface
//   - Options: Export configuration options
//
// # Supported Formats
//
//   - HTML: standalone page, bodies rendered and sanitized like the feed
//   - Markdown: bodies as authored, grouped under author headings
//   - JSON: store record encoding
//
// Only confirmed messages are exported.
//
// # Usage
//
//	exp, err := export.New("html", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(transcript, exp, opts)
package export
