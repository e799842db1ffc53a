// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the document store client used by huddle.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// =============================================================================
// COLLECTIONS
// =============================================================================

// Collection names understood by the application.
const (
	CollectionWorkspaces  = "workspaces"
	CollectionMemberships = "workspace_memberships"
	CollectionChannels    = "channels"
	CollectionMessages    = "messages"
)

// =============================================================================
// RECORDS AND QUERIES
// =============================================================================

// Record is a schemaless document. Every stored record has a string "id".
type Record map[string]any

// ID returns the record identifier, or "" when unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Filter matches records whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Where builds an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Query selects records from a collection. All filters must match.
// Results are ordered by OrderBy with insertion order as the tie-breaker,
// then cut to Limit when Limit > 0. Desc reverses both, so a descending
// result is exactly the ascending one backwards.
type Query struct {
	Where   []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// validate rejects field names that cannot be used as a JSON path segment.
func (q Query) validate() error {
	for _, f := range q.Where {
		if !validField(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
	}
	if q.OrderBy != "" && !validField(q.OrderBy) {
		return fmt.Errorf("invalid order field %q", q.OrderBy)
	}
	if q.Limit < 0 {
		return fmt.Errorf("invalid limit %d", q.Limit)
	}
	return nil
}

func validField(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}

// =============================================================================
// CLIENT INTERFACE
// =============================================================================

// Client is the narrow data-access interface every controller depends on.
// Implementations must be safe for concurrent use.
type Client interface {
	// List returns the records of collection matching q.
	List(ctx context.Context, collection string, q Query) ([]Record, error)

	// Create stores rec and returns the stored copy. A missing id is generated.
	Create(ctx context.Context, collection string, rec Record) (Record, error)

	// Delete removes the record with the given id.
	Delete(ctx context.Context, collection, id string) error

	// Close releases resources held by the client.
	Close() error
}

// Op identifies a client operation. Used by error values and fault injection.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpDelete Op = "delete"
)
