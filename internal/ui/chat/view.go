// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/huddle-tui/internal/ui/components"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
	"github.com/jeranaias/huddle-tui/internal/util"
)

// statusBarHeight is the number of lines below the panes.
const statusBarHeight = 1

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) sidebarWidth() int {
	if m.width <= 0 || m.theme.GetLayoutMode() == styles.LayoutNarrow {
		return 0
	}
	w := m.cfg.UI.SidebarWidth
	if w <= 0 {
		w = 24
	}
	if limit := m.width / 3; w > limit {
		w = limit
	}
	return w
}

// assistantWidth returns the panel width. On narrow terminals the open
// panel takes the whole body.
func (m *Model) assistantWidth() int {
	if !m.showAI || m.width <= 0 {
		return 0
	}
	if m.theme.GetLayoutMode() == styles.LayoutNarrow {
		return m.width
	}
	w := m.width / 3
	if w < 30 {
		w = 30
	}
	if w > 50 {
		w = 50
	}
	return w
}

func (m *Model) mainWidth() int {
	w := m.width - m.sidebarWidth() - m.assistantWidth()
	if w < 0 {
		return 0
	}
	return w
}

func (m *Model) bodyHeight() int {
	if h := m.height - statusBarHeight; h > 0 {
		return h
	}
	return 0
}

// layout sizes every pane for the current terminal and composer height.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.theme.SetSize(m.width, m.height)

	sideW, aiW, mainW := m.sidebarWidth(), m.assistantWidth(), m.mainWidth()
	bodyH := m.bodyHeight()

	m.sidebar.SetSize(sideW, bodyH)
	m.aiPanel.SetWidth(aiW)
	m.aiInput.Width = max(aiW-8, 10)
	m.composerView.SetWidth(mainW)
	m.filter.Width = max(mainW-12, 10)

	used := lipgloss.Height(m.headerView(mainW)) + m.composerView.Height(m.draft)
	if m.filtering {
		used++
	}
	m.viewport.Width = mainW
	m.viewport.Height = max(bodyH-used, 1)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the client.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= 0 || m.height <= 0 {
		return "Loading…"
	}

	bodyH := m.bodyHeight()
	var cols []string
	if m.sidebarWidth() > 0 {
		cols = append(cols, m.sidebar.View())
	}
	if w := m.mainWidth(); w > 0 {
		cols = append(cols, m.mainView(w))
	}
	if w := m.assistantWidth(); w > 0 {
		cols = append(cols, m.assistantView(bodyH))
	}
	body := lipgloss.NewStyle().
		Width(m.width).
		Height(bodyH).
		MaxHeight(bodyH).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, cols...))

	screen := lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar().View(m.theme, m.width))

	if m.dialog != dialogNone {
		screen = m.dialogView().View(m.theme, m.width, m.height)
	}
	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.theme, m.toasts.Toasts(), m.width, 0, time.Now())
		screen = m.overlayToasts(screen, stack)
	}
	return screen
}

func (m *Model) headerView(width int) string {
	ch := m.conv.Channel()
	if ch == nil {
		_, ch = m.nav.Active()
	}
	return components.ChannelHeader(m.theme, ch, m.view.Len(), m.filterText(), width)
}

func (m Model) mainView(width int) string {
	parts := []string{m.headerView(width)}
	if m.filtering {
		parts = append(parts, m.theme.SearchBox.Width(width).Render(m.filter.View()))
	}
	parts = append(parts, m.viewport.View(), m.composerView.View(m.draft))
	return lipgloss.NewStyle().Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) assistantView(height int) string {
	msgs := m.assistant.Messages()
	transcript := m.aiPanel.Transcript(msgs, m.assistant.Busy(), m.spinner.View())
	// Title and input take a line each.
	transcript = tailLines(transcript, height-3)
	return m.aiPanel.Frame(transcript, m.aiInput.View(), height)
}

func (m Model) statusBar() components.StatusBar {
	bar := components.StatusBar{}
	switch {
	case m.authState.Loading:
		bar.User = "signing in…"
	case m.authState.User != nil:
		bar.User = m.authState.User.Label()
	default:
		bar.User = "signed out"
	}
	if ws, _ := m.nav.Active(); ws != nil {
		bar.Workspace = ws.Name
	}
	if m.busy() {
		bar.State = m.spinner.View() + " syncing"
	}
	for _, b := range m.keyMap.ShortHelp(m.focus) {
		h := b.Help()
		bar.Shortcuts = append(bar.Shortcuts, components.Shortcut{Key: h.Key, Desc: h.Desc})
	}
	return bar
}

func (m Model) dialogView() components.Dialog {
	switch m.dialog {
	case dialogDelete:
		d := components.Dialog{
			Title: "Delete message?",
			Hint:  "y delete · any other key cancel",
		}
		if msg, ok := m.conv.Message(m.deleteID); ok {
			d.Body = util.TruncateRunes(util.FirstLine(msg.Body), 120)
		}
		return d
	case dialogNewChannel:
		title := "New channel"
		if ws, _ := m.nav.Active(); ws != nil {
			title += " in " + ws.Name
		}
		return components.Dialog{Title: title, Body: m.dialogInput.View(), Hint: "enter create · esc cancel"}
	default:
		return components.Dialog{Title: "New workspace", Body: m.dialogInput.View(), Hint: "enter create · esc cancel"}
	}
}

// =============================================================================
// OVERLAYS
// =============================================================================

// overlayToasts draws the toast stack over the bottom-right corner of the
// base view, above the status bar.
func (m Model) overlayToasts(baseView, toastView string) string {
	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(toastView, "\n")

	startRow := len(baseLines) - len(toastLines) - statusBarHeight
	if startRow < 0 {
		startRow = 0
	}

	for i, toastLine := range toastLines {
		row := startRow + i
		if row >= len(baseLines) {
			break
		}
		toastWidth := lipgloss.Width(toastLine)
		if toastWidth == 0 {
			continue
		}
		cut := m.width - toastWidth - 1
		if cut < 0 {
			cut = 0
		}
		base := ansi.Truncate(baseLines[row], cut, "")
		if w := lipgloss.Width(base); w < cut {
			base += strings.Repeat(" ", cut-w)
		}
		baseLines[row] = base + toastLine
	}
	return strings.Join(baseLines, "\n")
}

// tailLines keeps the last n lines of s.
func tailLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
