// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/huddle-tui/internal/feed"
	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/render"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// =============================================================================
// FEED COMPONENT
// =============================================================================

// bodyIndent is the column at which message bodies start, leaving room for
// the avatar and the selection gutter.
const bodyIndent = 5

// maxCacheEntries bounds the painted-body cache.
const maxCacheEntries = 2048

// Feed draws an assembled feed view. Painted bodies are cached by message,
// filter and width, so redrawing on every key stays cheap.
type Feed struct {
	theme    *styles.Theme
	painter  *Painter
	renderer *render.Renderer

	Viewer         *model.User
	ShowTimestamps bool
	Compact        bool

	cache map[bodyKey]string
}

type bodyKey struct {
	id      string
	updated int64
	body    string
	filter  string
	width   int
}

// NewFeed creates a feed component.
func NewFeed(theme *styles.Theme, renderer *render.Renderer) *Feed {
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	return &Feed{
		theme:          theme,
		painter:        NewPainter(theme),
		renderer:       renderer,
		ShowTimestamps: true,
		cache:          make(map[bodyKey]string),
	}
}

// SetTheme swaps the theme and drops cached bodies.
func (f *Feed) SetTheme(theme *styles.Theme) {
	f.theme = theme
	f.painter = NewPainter(theme)
	f.cache = make(map[bodyKey]string)
}

// Render draws view at width. selected is an index into view.Items, or -1.
// The returned offsets hold the first line of each item.
func (f *Feed) Render(view feed.View, selected, width int, now time.Time) (string, []int) {
	if len(view.Items) == 0 {
		return f.emptyState(view, width), nil
	}

	var lines []string
	offsets := make([]int, len(view.Items))
	for i, item := range view.Items {
		if item.ShowAvatar && i > 0 && !f.Compact {
			lines = append(lines, "")
		}
		offsets[i] = len(lines)
		block := f.renderItem(item, view.Filter, i == selected, width, now)
		lines = append(lines, strings.Split(block, "\n")...)
	}
	return strings.Join(lines, "\n"), offsets
}

func (f *Feed) emptyState(view feed.View, width int) string {
	var text string
	switch view.Empty {
	case feed.EmptyNoResults:
		text = "No messages match \"" + view.Filter + "\"."
	default:
		text = "No messages yet. Start the conversation!"
	}
	return f.theme.EmptyState.Width(width).Render(text)
}

func (f *Feed) renderItem(item feed.Item, filter string, selected bool, width int, now time.Time) string {
	t := f.theme
	msg := item.Message

	var lines []string
	if item.ShowAvatar {
		lines = append(lines, f.header(msg, now))
	}

	body := f.body(msg, filter, width-bodyIndent)
	indent := strings.Repeat(" ", bodyIndent-1)
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, indent+line)
	}

	switch msg.Status {
	case model.StatusPending:
		lines = append(lines, indent+t.Pending.Render(styles.StatusIndicators.Pending+" sending…"))
	case model.StatusFailed:
		lines = append(lines, indent+t.Failed.Render(styles.StatusIndicators.Error+" not sent")+
			"  "+t.ShortcutKey.Render("ctrl+r")+" "+t.ShortcutDesc.Render("retry")+
			"  "+t.ShortcutKey.Render("ctrl+d")+" "+t.ShortcutDesc.Render("discard"))
	}

	gutter := " "
	if selected {
		gutter = lipgloss.NewStyle().Foreground(styles.Purple).Render("▌")
	}
	return prefixLines(strings.Join(lines, "\n"), gutter, gutter)
}

func (f *Feed) header(msg model.Message, now time.Time) string {
	t := f.theme
	label := render.AuthorLabel(msg.AuthorID, f.Viewer)

	avatar := t.Avatar.
		Background(styles.AvatarColor(msg.AuthorID)).
		Render(render.Initial(label))

	name := t.Author.Render(label)
	if f.Viewer != nil && msg.AuthorID == f.Viewer.ID {
		name = t.AuthorSelf.Render(label)
	}

	out := avatar + " " + name
	if f.ShowTimestamps {
		out += "  " + t.Timestamp.Render(render.FormatTime(msg.CreatedAt.Time, now))
	}
	return out
}

func (f *Feed) body(msg model.Message, filter string, width int) string {
	key := bodyKey{
		id:      msg.ID,
		updated: msg.UpdatedAt.Millis(),
		body:    msg.Body,
		filter:  filter,
		width:   width,
	}
	if s, ok := f.cache[key]; ok {
		return s
	}
	s := f.painter.Paint(f.renderer.Render(msg, filter), width)
	if len(f.cache) >= maxCacheEntries {
		f.cache = make(map[bodyKey]string)
	}
	f.cache[key] = s
	return s
}

// =============================================================================
// CHANNEL HEADER
// =============================================================================

// ChannelHeader renders the title bar above the feed.
func ChannelHeader(theme *styles.Theme, ch *model.Channel, count int, filter string, width int) string {
	if ch == nil {
		return theme.ChannelHeader.Width(width).Render(theme.ChannelTopic.Render("No channel selected"))
	}
	title := ch.DisplayName()
	if ch.Description != "" {
		title += "  " + theme.ChannelTopic.Render(ch.Description)
	}
	meta := strconv.Itoa(count) + " messages"
	if count == 1 {
		meta = "1 message"
	}
	if filter != "" {
		meta = "filter: " + filter + " · " + meta
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(meta) - 2
	if gap < 1 {
		gap = 1
	}
	return theme.ChannelHeader.Width(width).Render(title + strings.Repeat(" ", gap) + theme.Timestamp.Render(meta))
}
