// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
	"github.com/jeranaias/huddle-tui/internal/util"
)

// =============================================================================
// SIDEBAR COMPONENT
// =============================================================================

// EntryKind distinguishes sidebar rows.
type EntryKind int

const (
	EntryWorkspace EntryKind = iota
	EntryChannel
)

// SidebarEntry is one selectable sidebar row.
type SidebarEntry struct {
	Kind   EntryKind
	ID     string
	Label  string
	Active bool
}

// Sidebar lists the user's workspaces and the active workspace's channels.
type Sidebar struct {
	theme   *styles.Theme
	width   int
	height  int
	focused bool
	loading bool

	workspaces []SidebarEntry
	channels   []SidebarEntry
	cursor     int
}

// NewSidebar creates a sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme, width: 24}
}

// SetTheme swaps the theme.
func (s *Sidebar) SetTheme(theme *styles.Theme) { s.theme = theme }

// SetSize sets the outer size.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the outer width.
func (s *Sidebar) Width() int { return s.width }

// SetFocused toggles the focus border.
func (s *Sidebar) SetFocused(focused bool) { s.focused = focused }

// Focused reports whether the sidebar has focus.
func (s *Sidebar) Focused() bool { return s.focused }

// SetLoading shows a loading hint while the navigator refreshes.
func (s *Sidebar) SetLoading(loading bool) { s.loading = loading }

// SetData replaces the rows. The cursor stays on the same entry when it still
// exists, otherwise it moves to the active channel.
func (s *Sidebar) SetData(workspaces []model.Workspace, activeWS string, channels []model.Channel, activeCh string) {
	prev, hadPrev := s.Selected()

	s.workspaces = s.workspaces[:0]
	for _, ws := range workspaces {
		s.workspaces = append(s.workspaces, SidebarEntry{
			Kind: EntryWorkspace, ID: ws.ID, Label: ws.Name, Active: ws.ID == activeWS,
		})
	}
	s.channels = s.channels[:0]
	for _, ch := range channels {
		s.channels = append(s.channels, SidebarEntry{
			Kind: EntryChannel, ID: ch.ID, Label: ch.DisplayName(), Active: ch.ID == activeCh,
		})
	}

	s.cursor = -1
	for i, e := range s.entries() {
		if hadPrev && e.Kind == prev.Kind && e.ID == prev.ID {
			s.cursor = i
			break
		}
	}
	if s.cursor < 0 {
		s.cursor = 0
		for i, e := range s.entries() {
			if e.Kind == EntryChannel && e.Active {
				s.cursor = i
				break
			}
		}
	}
}

func (s *Sidebar) entries() []SidebarEntry {
	out := make([]SidebarEntry, 0, len(s.workspaces)+len(s.channels))
	out = append(out, s.workspaces...)
	return append(out, s.channels...)
}

// MoveUp moves the cursor up one row.
func (s *Sidebar) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// MoveDown moves the cursor down one row.
func (s *Sidebar) MoveDown() {
	if s.cursor < len(s.workspaces)+len(s.channels)-1 {
		s.cursor++
	}
}

// Selected returns the row under the cursor.
func (s *Sidebar) Selected() (SidebarEntry, bool) {
	entries := s.entries()
	if s.cursor < 0 || s.cursor >= len(entries) {
		return SidebarEntry{}, false
	}
	return entries[s.cursor], true
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	t := s.theme
	// Border and padding take three cells.
	inner := s.width - 3
	if inner < 4 {
		inner = 4
	}

	var lines []string
	heading := func(text string) {
		lines = append(lines, t.SidebarHeading.Render(util.TruncateWidth(text, inner)))
	}
	row := func(i int, e SidebarEntry, prefix string) {
		label := util.PadWidth(util.TruncateWidth(prefix+e.Label, inner), inner)
		switch {
		case i == s.cursor && s.focused:
			lines = append(lines, t.SidebarItemSelected.Render(label))
		case e.Active:
			lines = append(lines, t.SidebarItemActive.Render(label))
		default:
			lines = append(lines, t.SidebarItem.Render(label))
		}
	}

	heading("WORKSPACES")
	for i, e := range s.workspaces {
		prefix := "  "
		if e.Active {
			prefix = "◆ "
		}
		row(i, e, prefix)
	}

	heading("CHANNELS")
	if len(s.channels) == 0 {
		hint := "no channels"
		if s.loading {
			hint = "loading…"
		}
		lines = append(lines, t.ShortcutDesc.Render(hint))
	}
	for i, e := range s.channels {
		row(len(s.workspaces)+i, e, "")
	}

	lines = append(lines, "", t.ShortcutDesc.Render(util.TruncateWidth("ctrl+n channel", inner)))
	lines = append(lines, t.ShortcutDesc.Render(util.TruncateWidth("ctrl+w workspace", inner)))

	style := t.Sidebar
	if s.focused {
		style = t.SidebarFocused
	}
	if s.height > 0 {
		style = style.Height(s.height)
		if len(lines) > s.height {
			lines = lines[:s.height]
		}
	}
	return style.Width(s.width - 1).Render(strings.Join(lines, "\n"))
}
