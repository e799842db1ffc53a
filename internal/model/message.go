// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE TYPE TAGS
// =============================================================================

// TypeText is the only message type that receives rich rendering.
const TypeText = "text"

// =============================================================================
// DELIVERY STATUS
// =============================================================================

// Status tracks the local delivery state of a message. It is never persisted.
type Status int

const (
	// StatusConfirmed means the store holds the record. Fetched messages are
	// always confirmed.
	StatusConfirmed Status = iota
	// StatusPending means the create request is in flight.
	StatusPending
	// StatusFailed means the create request returned an error.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	default:
		return "confirmed"
	}
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single chat message in a channel.
type Message struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	Type       string    `json:"type"`
	ThreadID   string    `json:"thread_id,omitempty"`
	ReplyCount int       `json:"reply_count"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`

	// Status is local state layered over the persisted record.
	Status Status `json:"-"`
}

// NewMessage creates a text message with a client-generated ID.
func NewMessage(channelID, authorID, body string) Message {
	now := Now()
	return Message{
		ID:        NewID(),
		ChannelID: channelID,
		AuthorID:  authorID,
		Body:      body,
		Type:      TypeText,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsText reports whether the message is rendered as markdown. An empty type
// tag is treated as text for records written before the tag existed.
func (m Message) IsText() bool {
	return m.Type == "" || m.Type == TypeText
}

// IsPending reports whether the message is still being delivered.
func (m Message) IsPending() bool { return m.Status == StatusPending }

// IsFailed reports whether delivery failed.
func (m Message) IsFailed() bool { return m.Status == StatusFailed }

// Gap returns the time elapsed between prev and m.
func (m Message) Gap(prev Message) time.Duration {
	return m.CreatedAt.Sub(prev.CreatedAt.Time)
}

// =============================================================================
// AI MESSAGES
// =============================================================================

// AIRole is the sender of a side-panel message.
type AIRole string

const (
	AIRoleUser      AIRole = "user"
	AIRoleAssistant AIRole = "assistant"
)

// DisplayName returns a human-readable name for the role.
func (r AIRole) DisplayName() string {
	switch r {
	case AIRoleUser:
		return "You"
	case AIRoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// AIMessage is one exchange in the assistant side panel.
type AIMessage struct {
	ID        string
	Role      AIRole
	Content   string
	Timestamp time.Time

	// Synthetic marks replies produced locally because inference failed.
	Synthetic bool
}

// NewAIMessage creates a side-panel message with a generated ID.
func NewAIMessage(role AIRole, content string) AIMessage {
	return AIMessage{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// =============================================================================
// IDS
// =============================================================================

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the last n runes of id, or the whole id if it is shorter.
func ShortID(id string, n int) string {
	id = strings.TrimSpace(id)
	runes := []rune(id)
	if n <= 0 || len(runes) <= n {
		return id
	}
	return string(runes[len(runes)-n:])
}
