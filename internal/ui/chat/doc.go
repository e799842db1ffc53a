// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the root Bubble Tea model of the huddle client.

The model lays out a workspace and channel sidebar, the message feed, the
composer and an optional assistant panel, with toasts and a status bar on
top. It owns no domain state of its own: the conversation controller, the
navigator and the assistant session hold it, and every store or inference
call runs as a tea.Cmd whose result message triggers a re-render.

# Key Components

## Model (model.go)

Construction from Options, message dispatch, feed assembly and the
hot-reloadable UI settings.

## Update Loop (update.go)

Key handling per focused pane, focus cycling, dialogs for new channels and
workspaces and the delete confirmation.

## Messages (messages.go)

Result messages and the tea.Cmd constructors that call into the controller,
navigator and assistant.

## View Rendering (view.go)

Responsive layout, the status bar and the toast overlay.

# Usage

	m := chat.New(chat.Options{
	    Store:     store,
	    Auth:      provider,
	    Generator: ollama,
	    Config:    cfg,
	    Logger:    logger,
	})
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

Config watcher callbacks forward edits with p.Send(chat.ConfigChangedMsg{...}).
*/
package chat
