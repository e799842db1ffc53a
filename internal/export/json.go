// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/huddle-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts as JSON using the store's record encoding
// (timestamps as Unix milliseconds). Display options do not apply.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonTranscript struct {
	Workspace  *model.Workspace `json:"workspace,omitempty"`
	Channel    model.Channel    `json:"channel"`
	Messages   []model.Message  `json:"messages"`
	ExportedAt model.Timestamp  `json:"exported_at"`
}

// Export converts a transcript to indented JSON. Only confirmed messages are
// included.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	out := jsonTranscript{
		Channel:    t.Channel,
		Messages:   t.Confirmed(),
		ExportedAt: model.At(t.exportedAt()),
	}
	if t.Workspace.ID != "" {
		ws := t.Workspace
		out.Workspace = &ws
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
