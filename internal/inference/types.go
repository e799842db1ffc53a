// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package inference

import "time"

// =============================================================================
// WIRE TYPES
// =============================================================================

// generateRequest is the request body for /api/generate.
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	System  string           `json:"system,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

// generateOptions contains the model parameters huddle sets.
type generateOptions struct {
	NumPredict int `json:"num_predict,omitempty"` // Max tokens to generate
}

// generateResponse is the non-streaming response from /api/generate.
type generateResponse struct {
	Model      string `json:"model"`
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`
	EvalCount  int    `json:"eval_count,omitempty"`
}

// apiError is the error body Ollama returns on failure.
type apiError struct {
	Error string `json:"error"`
}

// ModelInfo describes a locally available model.
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

// listModelsResponse is the response from /api/tags.
type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}
