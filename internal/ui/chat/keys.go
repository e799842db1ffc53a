// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the client.
type KeyMap struct {
	// Global
	Quit          key.Binding
	NextFocus     key.Binding
	PrevFocus     key.Binding
	Filter        key.Binding
	Assistant     key.Binding
	ClearAI       key.Binding
	NewChannel    key.Binding
	NewWorkspace  key.Binding
	Dismiss       key.Binding
	DeleteMessage key.Binding
	RetryMessage  key.Binding

	// Lists
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Select   key.Binding

	// Composer
	Send    key.Binding
	Newline key.Binding
	Preview key.Binding
	Bold    key.Binding
	Italic  key.Binding
	Code    key.Binding
	List    key.Binding

	// Confirmation
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		NextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
		PrevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "focus back"),
		),
		Filter: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "filter"),
		),
		Assistant: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "assistant"),
		),
		ClearAI: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "clear assistant"),
		),
		NewChannel: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new channel"),
		),
		NewWorkspace: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "new workspace"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		DeleteMessage: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete"),
		),
		RetryMessage: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "retry"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "oldest"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "newest"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),

		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		Preview: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "preview"),
		),
		Bold: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "bold"),
		),
		Italic: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "italic"),
		),
		Code: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "code"),
		),
		List: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "list"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the status bar for a focus.
func (k KeyMap) ShortHelp(f Focus) []key.Binding {
	switch f {
	case FocusSidebar:
		return []key.Binding{k.Select, k.NewChannel, k.NewWorkspace, k.NextFocus, k.Quit}
	case FocusFeed:
		return []key.Binding{k.DeleteMessage, k.RetryMessage, k.Filter, k.NextFocus, k.Assistant, k.Quit}
	case FocusAssistant:
		return []key.Binding{k.Send, k.ClearAI, k.Assistant, k.NextFocus, k.Quit}
	default:
		return []key.Binding{k.Send, k.Newline, k.Preview, k.Filter, k.NextFocus, k.Assistant, k.Quit}
	}
}

// FullHelp returns the bindings grouped for a help listing.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextFocus, k.PrevFocus, k.Filter, k.Assistant, k.Dismiss, k.Quit},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End, k.Select},
		{k.Send, k.Newline, k.Preview, k.Bold, k.Italic, k.Code, k.List},
		{k.DeleteMessage, k.RetryMessage, k.NewChannel, k.NewWorkspace, k.ClearAI},
	}
}
