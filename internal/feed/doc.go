// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feed assembles the visible message list of a channel.
//
// Assemble is a pure function over the controller's message slice: it filters
// by a case-insensitive body substring and marks which items start an author
// group. By default grouping compares each item with the previous visible
// item, so filtering can merge groups that were split in the full history.
// Options.GroupFullHistory compares against the unfiltered predecessor.
//
// # Key Types
//
//   - View: Visible items, normalized filter and empty state
//   - Item: Message plus ShowAvatar and its index in the input
//   - EmptyState: EmptyConversation or EmptyNoResults when nothing is visible
//
// # Usage
//
//	view := feed.Assemble(ctrl.Messages(), filter, feed.Options{})
//	if view.Empty != feed.EmptyNone {
//	    return view.Empty.String()
//	}
package feed
