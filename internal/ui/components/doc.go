// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the huddle TUI.
//
// Components draw state owned elsewhere; none of them talk to the store.
//
// # Components
//
//   - Painter: render display trees as styled terminal text
//   - CodeBlock: fenced code with chroma syntax highlighting
//   - Feed: author-grouped message list with delivery status badges
//   - ChannelHeader: title bar above the feed
//   - Sidebar: workspaces and channels with a cursor
//   - ComposerView: composer draft, toolbar, counter and preview
//   - AssistantPanel: AI side panel, replies rendered with glamour
//   - ToastManager: auto-dismissing notifications
//   - StatusBar and Dialog
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	f := components.NewFeed(theme, render.NewRenderer())
//	content, offsets := f.Render(view, selected, width, time.Now())
package components
