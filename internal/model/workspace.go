// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Membership roles. Roles are informational only.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Bootstrap names used for a first-time user.
const (
	DefaultWorkspaceName        = "General"
	DefaultWorkspaceDescription = "Default workspace"
	DefaultChannelName          = "general"
	DefaultChannelDescription   = "General discussion"
)

// User is an authenticated identity. It is supplied by the auth provider and
// never written to the document store.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Label returns the display name, falling back to the email address.
func (u User) Label() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	return u.Email
}

// Workspace owns channels and has members through Membership records.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   Timestamp `json:"created_at"`
}

// NewWorkspace creates a workspace record with a generated ID.
func NewWorkspace(name, description, creatorID string) Workspace {
	return Workspace{
		ID:          NewID(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedBy:   creatorID,
		CreatedAt:   Now(),
	}
}

// Membership links a user to a workspace.
type Membership struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	WorkspaceID string    `json:"workspace_id"`
	Role        string    `json:"role"`
	CreatedAt   Timestamp `json:"created_at"`
}

// NewMembership creates a membership record with a generated ID.
func NewMembership(userID, workspaceID, role string) Membership {
	return Membership{
		ID:          NewID(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        role,
		CreatedAt:   Now(),
	}
}

// Channel is a named conversation inside a workspace.
type Channel struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Private     bool      `json:"is_private"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   Timestamp `json:"created_at"`
}

// NewChannel creates a channel record with a generated ID and a normalized name.
func NewChannel(workspaceID, name, description string, private bool, creatorID string) Channel {
	return Channel{
		ID:          NewID(),
		WorkspaceID: workspaceID,
		Name:        NormalizeChannelName(name),
		Description: strings.TrimSpace(description),
		Private:     private,
		CreatedBy:   creatorID,
		CreatedAt:   Now(),
	}
}

// DisplayName returns the channel name prefixed the way it is shown in lists.
func (c Channel) DisplayName() string {
	if c.Private {
		return "🔒" + c.Name
	}
	return "#" + c.Name
}

// NormalizeChannelName lowercases name and replaces each run of whitespace
// with a single hyphen. Leading and trailing whitespace is dropped.
func NormalizeChannelName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	// Casers are stateful, so one is built per call.
	name = cases.Lower(language.Und).String(name)

	var b strings.Builder
	b.Grow(len(name))
	inSpace := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
