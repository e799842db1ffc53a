// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package inference provides the text-generation collaborator used by the
// assistant side panel.
//
// # Key Types
//
//   - Generator: GenerateText(ctx, Request{Prompt, MaxTokens}) -> Response{Text}
//   - GeneratorFunc: Function adapter, handy in tests
//   - Client: Ollama implementation over /api/generate
//   - ClientError: Typed error with sentinels ErrNotRunning, ErrTimeout, ErrModelNotFound
//
// # Usage
//
//	client := inference.NewClientWithConfig(&inference.ClientConfig{
//	    BaseURL: cfg.Assistant.OllamaURL,
//	    Model:   cfg.Assistant.Model,
//	})
//	resp, err := client.GenerateText(ctx, inference.Request{Prompt: "Summarize #general", MaxTokens: 512})
package inference
