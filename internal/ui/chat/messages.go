// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/huddle-tui/internal/auth"
	"github.com/jeranaias/huddle-tui/internal/config"
	"github.com/jeranaias/huddle-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// authStateMsg carries an auth provider notification.
type authStateMsg struct {
	State auth.State
}

// loginDoneMsg reports the initial sign-in attempt.
type loginDoneMsg struct {
	Err error
}

// navigatedMsg is sent after any navigator call that may change the active
// workspace or channel.
type navigatedMsg struct {
	Action string
	Err    error
}

// channelLoadedMsg reports a channel switch.
type channelLoadedMsg struct {
	ChannelID string
	Err       error
}

// reloadedMsg reports a poll refresh.
type reloadedMsg struct {
	Err error
}

// sentMsg reports a send or retry.
type sentMsg struct {
	Message model.Message
	Err     error
}

// deletedMsg reports a delete.
type deletedMsg struct {
	ID  string
	Err error
}

// assistantReplyMsg carries an assistant reply. Failures arrive as
// synthetic replies, so there is no error field.
type assistantReplyMsg struct {
	Reply model.AIMessage
}

// pollTickMsg triggers a refresh of the active channel.
type pollTickMsg struct {
	Time time.Time
}

// ConfigChangedMsg is sent by the config watcher when the file changes.
// Err is set when the new contents could not be loaded.
type ConfigChangedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForAuth blocks on the next auth notification.
func waitForAuth(ctx context.Context, ch <-chan auth.State) tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-ch:
			return authStateMsg{State: st}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) loginCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loginDoneMsg{Err: m.auth.Login(ctx)}
	}
}

func (m Model) handleAuthCmd(st auth.State) tea.Cmd {
	ctx := m.ctx
	nav := m.nav
	return func() tea.Msg {
		return navigatedMsg{Action: "sign in", Err: nav.HandleAuth(ctx, st)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx := m.ctx
	nav := m.nav
	return func() tea.Msg {
		return navigatedMsg{Action: "refresh", Err: nav.Refresh(ctx)}
	}
}

func (m Model) selectWorkspaceCmd(id string) tea.Cmd {
	ctx := m.ctx
	nav := m.nav
	return func() tea.Msg {
		return navigatedMsg{Action: "open workspace", Err: nav.SelectWorkspace(ctx, id)}
	}
}

func (m Model) createChannelCmd(name string) tea.Cmd {
	ctx := m.ctx
	nav := m.nav
	return func() tea.Msg {
		_, err := nav.CreateChannel(ctx, name, "", false)
		return navigatedMsg{Action: "create channel", Err: err}
	}
}

func (m Model) createWorkspaceCmd(name string) tea.Cmd {
	ctx := m.ctx
	nav := m.nav
	return func() tea.Msg {
		_, err := nav.CreateWorkspace(ctx, name, "")
		return navigatedMsg{Action: "create workspace", Err: err}
	}
}

func (m Model) switchChannelCmd(id string) tea.Cmd {
	ctx := m.ctx
	conv := m.conv
	return func() tea.Msg {
		return channelLoadedMsg{ChannelID: id, Err: conv.SwitchChannel(ctx, id)}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	ctx := m.ctx
	conv := m.conv
	return func() tea.Msg {
		return reloadedMsg{Err: conv.Reload(ctx)}
	}
}

// outbox holds drafts the composer handed to OnSubmit until the model turns
// them into send commands.
type outbox struct {
	texts []string
}

func (o *outbox) push(text string) { o.texts = append(o.texts, text) }

func (o *outbox) drain() []string {
	texts := o.texts
	o.texts = nil
	return texts
}

func (m Model) sendCmd(body string) tea.Cmd {
	ctx := m.ctx
	conv := m.conv
	return func() tea.Msg {
		msg, err := conv.Send(ctx, body)
		return sentMsg{Message: msg, Err: err}
	}
}

func (m Model) retryCmd(id string) tea.Cmd {
	ctx := m.ctx
	conv := m.conv
	return func() tea.Msg {
		msg, err := conv.Retry(ctx, id)
		return sentMsg{Message: msg, Err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	ctx := m.ctx
	conv := m.conv
	return func() tea.Msg {
		return deletedMsg{ID: id, Err: conv.Delete(ctx, id)}
	}
}

func (m Model) askCmd(prompt string) tea.Cmd {
	ctx := m.ctx
	session := m.assistant
	return func() tea.Msg {
		reply, err := session.Ask(ctx, prompt)
		if err != nil {
			return nil
		}
		return assistantReplyMsg{Reply: reply}
	}
}

// pollCmd schedules the next refresh, or nothing when interval is zero.
func pollCmd(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg{Time: t}
	})
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// quiet reports errors that need no user-facing toast.
func quiet(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
