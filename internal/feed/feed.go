// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feed assembles the visible message list of a channel.
package feed

import (
	"strings"
	"time"

	"github.com/jeranaias/huddle-tui/internal/model"
)

// GroupingWindow is the largest gap, exclusive, at which consecutive messages
// from one author share an author header.
const GroupingWindow = 5 * time.Minute

// =============================================================================
// VIEW TYPES
// =============================================================================

// EmptyState explains why a view has no items.
type EmptyState int

const (
	// EmptyNone means the view has items.
	EmptyNone EmptyState = iota
	// EmptyConversation means the channel has no messages yet.
	EmptyConversation
	// EmptyNoResults means a filter is active and nothing matched.
	EmptyNoResults
)

// String returns the string representation of the empty state.
func (e EmptyState) String() string {
	switch e {
	case EmptyConversation:
		return "empty conversation"
	case EmptyNoResults:
		return "no results for query"
	default:
		return "none"
	}
}

// Item is one visible message.
type Item struct {
	Message model.Message

	// ShowAvatar is true when the item starts a new author group.
	ShowAvatar bool

	// Index is the message's position in the unfiltered input.
	Index int
}

// View is the derived, read-only feed.
type View struct {
	Items  []Item
	Filter string
	Empty  EmptyState
}

// Options tune assembly.
type Options struct {
	// GroupFullHistory compares each message with its predecessor in the
	// unfiltered list instead of the previous visible item.
	GroupFullHistory bool

	// Window overrides GroupingWindow when positive.
	Window time.Duration
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// Assemble filters messages by a case-insensitive substring of the body and
// marks which items begin an author group. The input is not modified and its
// order is kept. An empty or whitespace-only filter keeps every message.
func Assemble(messages []model.Message, filter string, opts Options) View {
	window := opts.Window
	if window <= 0 {
		window = GroupingWindow
	}

	needle := strings.ToLower(strings.TrimSpace(filter))
	view := View{Filter: needle}

	for i, msg := range messages {
		if !contains(msg.Body, needle) {
			continue
		}

		var prev *model.Message
		switch {
		case opts.GroupFullHistory && i > 0:
			prev = &messages[i-1]
		case !opts.GroupFullHistory && len(view.Items) > 0:
			prev = &view.Items[len(view.Items)-1].Message
		}

		view.Items = append(view.Items, Item{
			Message:    msg,
			ShowAvatar: startsGroup(msg, prev, window),
			Index:      i,
		})
	}

	if len(view.Items) == 0 {
		if needle != "" {
			view.Empty = EmptyNoResults
		} else {
			view.Empty = EmptyConversation
		}
	}
	return view
}

// Matches reports whether body contains filter, ignoring case.
func Matches(body, filter string) bool {
	return contains(body, strings.ToLower(strings.TrimSpace(filter)))
}

func contains(body, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(body), needle)
}

// startsGroup applies the grouping rule: the first item, an author change, or
// a gap of at least window starts a new group.
func startsGroup(msg model.Message, prev *model.Message, window time.Duration) bool {
	if prev == nil {
		return true
	}
	if prev.AuthorID != msg.AuthorID {
		return true
	}
	return msg.Gap(*prev) >= window
}

// =============================================================================
// VIEW HELPERS
// =============================================================================

// Len returns the number of visible items.
func (v View) Len() int {
	return len(v.Items)
}

// Filtered reports whether a filter was applied.
func (v View) Filtered() bool {
	return v.Filter != ""
}

// Groups returns the number of author groups in the view.
func (v View) Groups() int {
	n := 0
	for _, item := range v.Items {
		if item.ShowAvatar {
			n++
		}
	}
	return n
}
