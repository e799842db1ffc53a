// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for huddle.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - StoreConfig: Document store driver and limits
//   - AssistantConfig: Inference endpoint for the AI side panel
//   - UIConfig: Display preferences (hot-reloaded)
//   - Watcher: fsnotify-based config file watcher
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (HUDDLE_*)
//   - ~/.huddle/config.toml
//   - ~/.huddle/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Follow edits:
//
//	w, err := config.Watch(path, 0, func(cfg *config.Config, err error) {
//	    program.Send(configChangedMsg{cfg, err})
//	})
//	defer w.Close()
package config
