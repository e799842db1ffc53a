// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/huddle-tui/internal/ui/styles"
	"github.com/jeranaias/huddle-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line: identity and state on the left, key hints
// on the right. Hints are dropped from the end until the bar fits.
type StatusBar struct {
	User      string
	Workspace string
	State     string
	Shortcuts []Shortcut
}

// View renders the bar at width.
func (s StatusBar) View(theme *styles.Theme, width int) string {
	left := theme.ShortcutKey.Render(util.TruncateWidth(s.User, 24))
	if s.Workspace != "" {
		left += theme.ShortcutDesc.Render(" @ ") + util.TruncateWidth(s.Workspace, 24)
	}
	if s.State != "" {
		left += "  " + theme.ShortcutDesc.Render(s.State)
	}

	// Padding takes two cells.
	room := width - 2 - lipgloss.Width(left) - 2
	var hints []string
	used := 0
	for _, sc := range s.Shortcuts {
		hint := theme.ShortcutKey.Render(sc.Key) + " " + theme.ShortcutDesc.Render(sc.Desc)
		w := lipgloss.Width(hint) + 2
		if used+w > room {
			break
		}
		used += w
		hints = append(hints, hint)
	}
	right := strings.Join(hints, "  ")

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// DIALOGS
// =============================================================================

// Dialog is a centered modal box.
type Dialog struct {
	Title string
	Body  string
	Hint  string
}

// View renders the dialog centered in a width x height area.
func (d Dialog) View(theme *styles.Theme, width, height int) string {
	boxWidth := 56
	if width-4 < boxWidth {
		boxWidth = width - 4
	}
	if boxWidth < 24 {
		boxWidth = 24
	}
	inner := boxWidth - 6

	content := theme.DialogTitle.Render(d.Title)
	if d.Body != "" {
		content += "\n\n" + wrap(d.Body, inner)
	}
	if d.Hint != "" {
		content += "\n\n" + theme.ShortcutDesc.Render(d.Hint)
	}
	box := theme.Dialog.Width(boxWidth - 2).Render(content)
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
