// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation manages the message list of the active channel.
//
// The Controller fetches channel metadata and the newest messages on every
// channel switch, sends messages optimistically and deletes them only after
// the store confirms. Each local message carries a delivery status:
//
//	pending   -> create request in flight
//	confirmed -> stored (all fetched messages)
//	failed    -> create failed; kept for Retry or Discard
//
// # Usage
//
//	ctrl := conversation.New(client, user,
//	    conversation.WithLimit(cfg.Store.MessageLimit),
//	    conversation.WithNotifier(toasts.Error))
//	if err := ctrl.SwitchChannel(ctx, channelID); errors.Is(err, conversation.ErrStale) {
//	    return // superseded by a newer switch
//	}
//	msg, err := ctrl.Send(ctx, draft)
package conversation
