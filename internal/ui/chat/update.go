// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/huddle-tui/internal/composer"
	"github.com/jeranaias/huddle-tui/internal/conversation"
	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/navigator"
	"github.com/jeranaias/huddle-tui/internal/ui/components"
)

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keyMap

	if key.Matches(msg, k.Quit) {
		m.quitting = true
		m.Close()
		return m, tea.Quit
	}
	if m.dialog != dialogNone {
		return m.handleDialogKey(msg)
	}

	switch {
	case key.Matches(msg, k.Dismiss):
		return m.handleEscape()
	case key.Matches(msg, k.NextFocus):
		m.cycleFocus(1)
		return m, nil
	case key.Matches(msg, k.PrevFocus):
		m.cycleFocus(-1)
		return m, nil
	case key.Matches(msg, k.Filter):
		return m.openFilter()
	case key.Matches(msg, k.Assistant):
		return m.toggleAssistant()
	case key.Matches(msg, k.ClearAI):
		if m.showAI && m.assistant != nil {
			m.assistant.Clear()
		}
		return m, nil
	case key.Matches(msg, k.NewChannel):
		return m.openDialog(dialogNewChannel)
	case key.Matches(msg, k.NewWorkspace):
		return m.openDialog(dialogNewWorkspace)
	case key.Matches(msg, k.DeleteMessage):
		return m.deleteSelected()
	case key.Matches(msg, k.RetryMessage):
		return m.retrySelected()
	}

	if m.filter.Focused() {
		return m.handleFilterKey(msg)
	}

	switch m.focus {
	case FocusSidebar:
		return m.handleSidebarKey(msg)
	case FocusFeed:
		return m.handleFeedKey(msg)
	case FocusAssistant:
		return m.handleAssistantKey(msg)
	default:
		return m.handleComposerKey(msg)
	}
}

// handleEscape peels back one layer: toast, filter, assistant focus,
// preview, composer focus.
func (m Model) handleEscape() (Model, tea.Cmd) {
	switch {
	case m.toasts.HasToasts():
		m.toasts.DismissNewest()
	case m.filtering:
		m.closeFilter()
	case m.focus == FocusAssistant:
		m.setFocus(FocusComposer)
	case m.focus == FocusComposer && m.draft.Previewing():
		m.draft.TogglePreview()
		m.layout()
	case m.focus == FocusComposer:
		m.setFocus(FocusFeed)
	}
	return m, nil
}

// =============================================================================
// FOCUS
// =============================================================================

// focusOrder lists the panes reachable with tab in the current layout.
func (m *Model) focusOrder() []Focus {
	order := make([]Focus, 0, 4)
	if m.sidebarWidth() > 0 {
		order = append(order, FocusSidebar)
	}
	order = append(order, FocusFeed, FocusComposer)
	if m.showAI {
		order = append(order, FocusAssistant)
	}
	return order
}

func (m *Model) cycleFocus(step int) {
	order := m.focusOrder()
	i := 0
	for j, f := range order {
		if f == m.focus {
			i = j
			break
		}
	}
	i = (i + step + len(order)) % len(order)
	m.setFocus(order[i])
}

// setFocus moves key input to f. Leaving the composer blurs it, which
// collapses an empty draft; entering it expands it.
func (m *Model) setFocus(f Focus) {
	if f == FocusAssistant && !m.showAI {
		f = FocusComposer
	}
	prev := m.focus
	m.focus = f

	if prev == FocusComposer && f != FocusComposer {
		m.draft.Blur()
	}
	if f == FocusComposer && prev != FocusComposer {
		m.draft.Focus()
	}
	m.sidebar.SetFocused(f == FocusSidebar)
	m.composerView.SetFocused(f == FocusComposer)
	if f == FocusAssistant {
		m.aiInput.Focus()
	} else {
		m.aiInput.Blur()
	}
	if f == FocusFeed && m.selectedIndex() < 0 && len(m.view.Items) > 0 {
		m.selectedID = m.view.Items[len(m.view.Items)-1].Message.ID
	}
	m.layout()
	m.refreshFeed()
}

// =============================================================================
// COMPOSER
// =============================================================================

func (m Model) handleComposerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keyMap
	d := m.draft
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, k.Preview):
		d.TogglePreview()
	case key.Matches(msg, k.Bold):
		d.Focus()
		d.Apply(composer.FormatBold)
	case key.Matches(msg, k.Italic):
		d.Focus()
		d.Apply(composer.FormatItalic)
	case key.Matches(msg, k.Code):
		d.Focus()
		d.Apply(composer.FormatCode)
	case key.Matches(msg, k.List):
		d.Focus()
		d.Apply(composer.FormatList)
	case key.Matches(msg, k.Newline):
		d.Confirm(true)
	case key.Matches(msg, k.Send):
		cmd = m.submitDraft()
	default:
		editDraft(d, msg)
	}

	m.layout()
	m.refreshFeed()
	return m, cmd
}

// submitDraft sends the draft. Without an open channel or a signed-in user
// the draft is kept.
func (m *Model) submitDraft() tea.Cmd {
	if !m.draft.CanSubmit() {
		return nil
	}
	if !m.authState.Authenticated() {
		m.toasts.AddWarning("Sign in to send messages")
		return nil
	}
	if m.conv.ChannelID() == "" {
		m.toasts.AddWarning("Open a channel first")
		return nil
	}
	if !m.draft.Confirm(false) {
		return nil
	}
	var cmds []tea.Cmd
	for _, text := range m.outbox.drain() {
		m.inflight++
		cmds = append(cmds, m.sendCmd(text))
	}
	return tea.Batch(cmds...)
}

// editDraft applies an editing key to the draft buffer.
func editDraft(d *composer.Composer, msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return
		}
		d.Focus()
		d.Insert(string(msg.Runes))
	case tea.KeySpace:
		d.Focus()
		d.Insert(" ")
	case tea.KeyBackspace:
		d.Backspace()
	case tea.KeyDelete:
		d.Delete()
	case tea.KeyLeft:
		d.MoveLeft(false)
	case tea.KeyRight:
		d.MoveRight(false)
	case tea.KeyShiftLeft:
		d.MoveLeft(true)
	case tea.KeyShiftRight:
		d.MoveRight(true)
	case tea.KeyHome:
		d.MoveHome(false)
	case tea.KeyEnd:
		d.MoveEnd(false)
	case tea.KeyShiftHome:
		d.MoveHome(true)
	case tea.KeyShiftEnd:
		d.MoveEnd(true)
	}
}

// =============================================================================
// FEED
// =============================================================================

func (m Model) handleFeedKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keyMap
	last := len(m.view.Items) - 1

	switch {
	case key.Matches(msg, k.Up):
		if i := m.selectedIndex(); i < 0 {
			m.selectIndex(last)
		} else {
			m.selectIndex(i - 1)
		}
	case key.Matches(msg, k.Down):
		if i := m.selectedIndex(); i >= 0 {
			m.selectIndex(i + 1)
		}
	case key.Matches(msg, k.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, k.PageDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, k.Home):
		m.selectIndex(0)
	case key.Matches(msg, k.End):
		m.selectIndex(last)
	case key.Matches(msg, k.Select):
		m.setFocus(FocusComposer)
	default:
		// Typing in the feed starts a message.
		if msg.Type == tea.KeyRunes && !msg.Alt {
			m.setFocus(FocusComposer)
			return m.handleComposerKey(msg)
		}
	}
	return m, nil
}

// selectedMessage returns the selected message, if any.
func (m *Model) selectedMessage() (model.Message, bool) {
	if m.selectedID == "" {
		return model.Message{}, false
	}
	return m.conv.Message(m.selectedID)
}

func (m Model) deleteSelected() (Model, tea.Cmd) {
	msg, ok := m.selectedMessage()
	if !ok {
		m.toasts.AddStatus("Select a message in the feed first")
		return m, nil
	}
	switch {
	case msg.IsPending():
		m.toasts.AddWarning("Message is still sending")
	case msg.IsFailed():
		if err := m.conv.Discard(msg.ID); err != nil {
			m.toasts.AddWarning(notificationText(err))
		}
		m.selectedID = ""
		m.refreshFeed()
	case m.authState.User == nil || msg.AuthorID != m.authState.User.ID:
		m.toasts.AddWarning("You can only delete your own messages")
	default:
		m.dialog = dialogDelete
		m.deleteID = msg.ID
	}
	return m, nil
}

// retrySelected re-sends the selected failed message, or the newest failed
// one when nothing is selected.
func (m Model) retrySelected() (Model, tea.Cmd) {
	msg, ok := m.selectedMessage()
	if !ok {
		for i := len(m.view.Items) - 1; i >= 0; i-- {
			if item := m.view.Items[i].Message; item.IsFailed() {
				msg, ok = item, true
				break
			}
		}
	}
	if !ok || !msg.IsFailed() {
		m.toasts.AddStatus("No failed message to retry")
		return m, nil
	}
	m.inflight++
	return m, m.retryCmd(msg.ID)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keyMap
	switch {
	case key.Matches(msg, k.Up):
		m.sidebar.MoveUp()
	case key.Matches(msg, k.Down):
		m.sidebar.MoveDown()
	case key.Matches(msg, k.Select):
		entry, ok := m.sidebar.Selected()
		if !ok {
			return m, nil
		}
		if entry.Kind == components.EntryWorkspace {
			return m, m.selectWorkspaceCmd(entry.ID)
		}
		if err := m.nav.SelectChannel(entry.ID); err != nil {
			m.toasts.AddWarning("Could not open channel: " + err.Error())
			return m, nil
		}
		cmd := m.syncNavigation()
		m.setFocus(FocusComposer)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// FILTER
// =============================================================================

func (m Model) openFilter() (Model, tea.Cmd) {
	m.filtering = true
	cmd := m.filter.Focus()
	m.layout()
	m.refreshFeed()
	return m, tea.Batch(cmd, textinput.Blink)
}

func (m *Model) closeFilter() {
	m.filtering = false
	m.filter.Reset()
	m.filter.Blur()
	m.layout()
	m.refreshFeed()
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Select) {
		m.filter.Blur()
		m.setFocus(FocusFeed)
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refreshFeed()
	return m, cmd
}

// =============================================================================
// ASSISTANT
// =============================================================================

func (m Model) toggleAssistant() (Model, tea.Cmd) {
	if m.assistant == nil {
		m.toasts.AddStatus("Assistant is disabled")
		return m, nil
	}
	m.showAI = !m.showAI
	if m.showAI {
		m.setFocus(FocusAssistant)
		return m, textinput.Blink
	}
	if m.focus == FocusAssistant {
		m.setFocus(FocusComposer)
	} else {
		m.layout()
		m.refreshFeed()
	}
	return m, nil
}

func (m Model) handleAssistantKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Send) {
		prompt := strings.TrimSpace(m.aiInput.Value())
		if prompt == "" || m.assistant == nil {
			return m, nil
		}
		m.aiInput.Reset()
		return m, m.askCmd(prompt)
	}
	var cmd tea.Cmd
	m.aiInput, cmd = m.aiInput.Update(msg)
	return m, cmd
}

// =============================================================================
// DIALOGS
// =============================================================================

func (m Model) openDialog(kind dialogKind) (Model, tea.Cmd) {
	if !m.authState.Authenticated() {
		m.toasts.AddWarning("Sign in first")
		return m, nil
	}
	if kind == dialogNewChannel {
		if ws, _ := m.nav.Active(); ws == nil {
			m.toasts.AddWarning("Open a workspace first")
			return m, nil
		}
		m.dialogInput.Placeholder = "channel-name"
	} else {
		m.dialogInput.Placeholder = "Workspace name"
	}
	m.dialog = kind
	m.dialogInput.Reset()
	return m, tea.Batch(m.dialogInput.Focus(), textinput.Blink)
}

func (m *Model) closeDialog() {
	m.dialog = dialogNone
	m.deleteID = ""
	m.dialogInput.Blur()
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keyMap

	if m.dialog == dialogDelete {
		id := m.deleteID
		m.closeDialog()
		if key.Matches(msg, k.Confirm) {
			return m, m.deleteCmd(id)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Dismiss):
		m.closeDialog()
		return m, nil
	case key.Matches(msg, k.Select):
		name := strings.TrimSpace(m.dialogInput.Value())
		kind := m.dialog
		if name == "" {
			return m, nil
		}
		m.closeDialog()
		if kind == dialogNewChannel {
			return m, m.createChannelCmd(name)
		}
		return m, m.createWorkspaceCmd(name)
	}

	var cmd tea.Cmd
	m.dialogInput, cmd = m.dialogInput.Update(msg)
	return m, cmd
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func isStale(err error) bool {
	return errors.Is(err, conversation.ErrStale) || errors.Is(err, navigator.ErrStale)
}

// isReported reports whether the controller notifier already surfaced a
// delete error.
func isReported(err error) bool {
	return !errors.Is(err, conversation.ErrPending) &&
		!errors.Is(err, conversation.ErrUnknownMessage) &&
		!errors.Is(err, context.Canceled)
}

// notificationText phrases a conversation error for a toast.
func notificationText(err error) string {
	switch {
	case errors.Is(err, conversation.ErrNotOwner):
		return "You can only delete your own messages"
	case errors.Is(err, conversation.ErrPending):
		return "Message is still sending"
	case errors.Is(err, conversation.ErrUnknownMessage):
		return "Message is no longer in this channel"
	case errors.Is(err, conversation.ErrNotFailed):
		return "Message was already delivered"
	default:
		return "Could not delete message: " + err.Error()
	}
}
