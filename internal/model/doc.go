// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the domain types for workspaces, channels and messages.
//
// These are the records exchanged with the document store and the types the
// feed, renderer and controllers operate on. Every persisted type round-trips
// through JSON with snake_case field names; timestamps serialize as Unix
// milliseconds so stores can order them numerically.
//
// # Key Types
//
//   - Workspace: Top-level grouping that owns channels
//   - Membership: Links a user to a workspace with an informational role
//   - Channel: Named conversation inside a workspace
//   - Message: Single chat message with a type tag and local delivery status
//   - User: Identity supplied by the auth provider
//   - AIMessage: Side-panel assistant exchange, never persisted
//
// # Usage
//
//	msg := model.NewMessage(channelID, viewer.ID, "hello")
//	msg.Status = model.StatusPending
//
//	name := model.NormalizeChannelName("Release Planning") // "release-planning"
package model
