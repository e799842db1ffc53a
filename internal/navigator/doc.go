// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigator tracks the signed-in user's workspaces and channels.
//
// It reacts to auth state changes, loads memberships and workspaces, picks
// the active workspace and channel, and creates the default "General"
// workspace for a user who has none. Creating a workspace or channel refreshes
// the lists in place and selects the new entry.
package navigator
