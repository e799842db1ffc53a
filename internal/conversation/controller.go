// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/storage"
)

// DefaultLimit is the maximum number of messages fetched per channel.
const DefaultLimit = 100

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStale is returned when a fetch finished after a newer channel switch.
	// The result has been discarded.
	ErrStale = errors.New("stale channel fetch discarded")

	// ErrNoChannel is returned by operations that need an active channel.
	ErrNoChannel = errors.New("no active channel")

	// ErrNoViewer is returned when sending without a signed-in user.
	ErrNoViewer = errors.New("not signed in")

	// ErrEmptyMessage is returned when the trimmed body is empty.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnknownMessage is returned for ids not in the current list.
	ErrUnknownMessage = errors.New("message not in conversation")

	// ErrNotOwner is returned when deleting another user's message.
	ErrNotOwner = errors.New("only the author can delete a message")

	// ErrNotFailed is returned when retrying or discarding a delivered message.
	ErrNotFailed = errors.New("message has not failed")

	// ErrPending is returned when deleting a message still being delivered.
	ErrPending = errors.New("message is still sending")
)

// =============================================================================
// OPTIONS
// =============================================================================

// Notifier receives user-facing errors, such as a failed delete.
type Notifier func(err error)

// Option configures a Controller.
type Option func(*Controller)

// WithLimit sets the per-channel fetch limit.
func WithLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNotifier sets the error notification sink.
func WithNotifier(fn Notifier) Option {
	return func(c *Controller) {
		c.notify = fn
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the message list of the active channel.
//
// Every channel switch bumps a generation counter. A fetch that completes
// under an older generation is dropped, so a slow response for a channel the
// user already left never overwrites the current one.
//
// Local mutations (confirmed sends, deletes) are stamped with a revision so a
// poll that raced them cannot resurrect a deleted message or hide a message
// confirmed after the poll's query ran.
type Controller struct {
	client storage.Client
	logger *slog.Logger
	notify Notifier
	limit  int

	mu        sync.Mutex
	viewer    *model.User
	channelID string
	channel   *model.Channel
	messages  []model.Message
	loading   bool
	gen       uint64

	rev       uint64
	confirmed map[string]uint64
	deleted   map[string]uint64
}

// New creates a controller reading and writing through client. viewer may be
// nil until a user signs in.
func New(client storage.Client, viewer *model.User, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		logger:    slog.Default(),
		limit:     DefaultLimit,
		viewer:    cloneUser(viewer),
		confirmed: make(map[string]uint64),
		deleted:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetViewer changes the signed-in user.
func (c *Controller) SetViewer(u *model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewer = cloneUser(u)
}

// Viewer returns the signed-in user, or nil.
func (c *Controller) Viewer() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneUser(c.viewer)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the message list, oldest first.
func (c *Controller) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Message returns the message with the given id.
func (c *Controller) Message(id string) (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.messages[i], true
	}
	return model.Message{}, false
}

// Channel returns the active channel metadata, or nil before it loads.
func (c *Controller) Channel() *model.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return nil
	}
	ch := *c.channel
	return &ch
}

// ChannelID returns the active channel id.
func (c *Controller) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

// Loading reports whether a channel switch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Generation returns the current channel generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// =============================================================================
// FETCHING
// =============================================================================

// SwitchChannel makes channelID active and loads its metadata and messages,
// replacing the whole list. The list is cleared immediately so the previous
// channel is never shown under the new one. An empty id deactivates.
// Messages sent while the load is in flight are merged into the result.
//
// Fetch failures are logged and leave only those local messages. ErrStale
// means a newer switch superseded this one.
func (c *Controller) SwitchChannel(ctx context.Context, channelID string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	rev := c.rev
	c.channelID = channelID
	c.channel = nil
	c.messages = nil
	c.loading = channelID != ""
	c.confirmed = make(map[string]uint64)
	c.deleted = make(map[string]uint64)
	c.mu.Unlock()

	if channelID == "" {
		return nil
	}

	ch, msgs, err := c.fetch(ctx, channelID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		c.logger.Debug("stale_fetch_discarded", "channel_id", channelID, "generation", gen)
		return ErrStale
	}
	c.loading = false
	if err != nil {
		c.logger.Warn("fetch_messages_failed", "channel_id", channelID, "error", err)
		return err
	}
	c.channel = &ch
	c.messages = c.merge(msgs, rev)
	c.logger.Debug("channel_loaded", "channel_id", channelID, "count", len(msgs))
	return nil
}

// Reload re-fetches the active channel without clearing it first. Messages
// that are pending or failed locally are kept after the fetched ones.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	channelID := c.channelID
	gen := c.gen
	rev := c.rev
	c.mu.Unlock()

	if channelID == "" {
		return ErrNoChannel
	}

	ch, msgs, err := c.fetch(ctx, channelID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return ErrStale
	}
	if err != nil {
		c.logger.Warn("reload_messages_failed", "channel_id", channelID, "error", err)
		return err
	}
	c.channel = &ch
	c.messages = c.merge(msgs, rev)
	return nil
}

// merge combines a fetched list with local state. rev is the local revision
// captured before the fetch was issued. Called with mu held.
func (c *Controller) merge(fetched []model.Message, rev uint64) []model.Message {
	seen := make(map[string]bool, len(fetched))
	out := make([]model.Message, 0, len(fetched)+len(c.messages))
	for _, m := range fetched {
		if at, ok := c.deleted[m.ID]; ok && at > rev {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	for _, m := range c.messages {
		if seen[m.ID] {
			continue
		}
		keep := m.Status != model.StatusConfirmed
		if at, ok := c.confirmed[m.ID]; ok && at > rev {
			keep = true
		}
		if keep {
			out = append(out, m)
		}
	}

	for id, at := range c.confirmed {
		if at <= rev {
			delete(c.confirmed, id)
		}
	}
	for id, at := range c.deleted {
		if at <= rev {
			delete(c.deleted, id)
		}
	}
	return out
}

// fetch loads channel metadata and its newest messages concurrently. The
// store is asked for the newest records first so the limit keeps the recent
// end of the history; the result is returned oldest first.
func (c *Controller) fetch(ctx context.Context, channelID string) (model.Channel, []model.Message, error) {
	var (
		ch   model.Channel
		msgs []model.Message
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ch, err = storage.GetAs[model.Channel](gctx, c.client, storage.CollectionChannels, channelID)
		if err != nil {
			return fmt.Errorf("load channel: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		msgs, err = storage.ListAs[model.Message](gctx, c.client, storage.CollectionMessages, storage.Query{
			Where:   []storage.Filter{storage.Where("channel_id", channelID)},
			OrderBy: "created_at",
			Desc:    true,
			Limit:   c.limit,
		})
		if err != nil {
			return fmt.Errorf("load messages: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Channel{}, nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return ch, msgs, nil
}

// =============================================================================
// SENDING
// =============================================================================

// Send appends a pending message with a client-generated id and creates it
// in the store. The message becomes confirmed on success or failed on error;
// a failed message stays in the list for Retry or Discard.
func (c *Controller) Send(ctx context.Context, body string) (model.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return model.Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.channelID == "" {
		c.mu.Unlock()
		return model.Message{}, ErrNoChannel
	}
	if c.viewer == nil || c.viewer.ID == "" {
		c.mu.Unlock()
		return model.Message{}, ErrNoViewer
	}
	msg := model.NewMessage(c.channelID, c.viewer.ID, body)
	msg.Status = model.StatusPending
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	return c.deliver(ctx, msg)
}

// Retry re-sends a failed message under its original id.
func (c *Controller) Retry(ctx context.Context, id string) (model.Message, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return model.Message{}, ErrUnknownMessage
	}
	if !c.messages[i].IsFailed() {
		c.mu.Unlock()
		return c.messages[i], ErrNotFailed
	}
	c.messages[i].Status = model.StatusPending
	msg := c.messages[i]
	c.mu.Unlock()

	return c.deliver(ctx, msg)
}

// deliver creates msg remotely and records the outcome.
func (c *Controller) deliver(ctx context.Context, msg model.Message) (model.Message, error) {
	stored, err := storage.CreateAs(ctx, c.client, storage.CollectionMessages, msg)
	// A conflict on our own id means an earlier attempt reached the store.
	if errors.Is(err, storage.ErrConflict) {
		stored, err = msg, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(msg.ID)
	if err != nil {
		c.logger.Warn("send_message_failed", "channel_id", msg.ChannelID, "message_id", msg.ID, "error", err)
		msg.Status = model.StatusFailed
		if i >= 0 {
			c.messages[i].Status = model.StatusFailed
		}
		return msg, fmt.Errorf("send message: %w", err)
	}

	stored.Status = model.StatusConfirmed
	if i >= 0 {
		c.messages[i] = stored
		c.rev++
		c.confirmed[stored.ID] = c.rev
	}
	c.logger.Debug("message_sent", "channel_id", stored.ChannelID, "message_id", stored.ID)
	return stored, nil
}

// Discard drops a failed message from the list without touching the store.
func (c *Controller) Discard(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return ErrUnknownMessage
	}
	if !c.messages[i].IsFailed() {
		return ErrNotFailed
	}
	c.removeAt(i)
	return nil
}

// =============================================================================
// DELETING
// =============================================================================

// Delete removes one of the viewer's messages. The store is updated first
// and the message leaves the list only once that succeeds. On failure the
// message is kept, the notifier is called and the error is returned.
// A failed message never reached the store and is simply discarded.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrUnknownMessage
	}
	msg := c.messages[i]
	if c.viewer == nil || msg.AuthorID != c.viewer.ID {
		c.mu.Unlock()
		c.report(ErrNotOwner)
		return ErrNotOwner
	}
	switch msg.Status {
	case model.StatusPending:
		c.mu.Unlock()
		return ErrPending
	case model.StatusFailed:
		c.removeAt(i)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.client.Delete(ctx, storage.CollectionMessages, id); err != nil {
		c.logger.Warn("delete_message_failed", "message_id", id, "error", err)
		err = fmt.Errorf("delete message: %w", err)
		c.report(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.removeAt(i)
	}
	c.rev++
	c.deleted[id] = c.rev
	c.logger.Debug("message_deleted", "message_id", id)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Controller) report(err error) {
	if c.notify != nil {
		c.notify(err)
	}
}

// indexOf finds a message by id. Called with mu held.
func (c *Controller) indexOf(id string) int {
	for i := range c.messages {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// removeAt deletes the message at i. Called with mu held.
func (c *Controller) removeAt(i int) {
	c.messages = append(c.messages[:i:i], c.messages[i+1:]...)
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
