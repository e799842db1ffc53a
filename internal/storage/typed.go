// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// =============================================================================
// TYPED HELPERS
// =============================================================================

// Encode converts a JSON-tagged value into a Record.
func Encode(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("encode record: %w", ErrInvalidRecord)
	}
	return rec, nil
}

// Decode converts a Record into a JSON-tagged value.
func Decode[T any](rec Record) (T, error) {
	var out T
	data, err := json.Marshal(rec)
	if err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode record %q: %w", rec.ID(), err)
	}
	return out, nil
}

// ListAs lists a collection and decodes each record into T.
func ListAs[T any](ctx context.Context, c Client, collection string, q Query) ([]T, error) {
	recs, err := c.List(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateAs encodes v, stores it and decodes the stored copy.
func CreateAs[T any](ctx context.Context, c Client, collection string, v T) (T, error) {
	rec, err := Encode(v)
	if err != nil {
		var zero T
		return zero, err
	}
	stored, err := c.Create(ctx, collection, rec)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](stored)
}

// GetAs returns the single record with the given id.
func GetAs[T any](ctx context.Context, c Client, collection, id string) (T, error) {
	items, err := ListAs[T](ctx, c, collection, Query{Where: []Filter{Where("id", id)}, Limit: 1})
	if err != nil {
		var zero T
		return zero, err
	}
	if len(items) == 0 {
		var zero T
		return zero, newError(KindNotFound, OpList, collection, id, "record not found", nil)
	}
	return items[0], nil
}

// =============================================================================
// VALUE COMPARISON
// =============================================================================

// normalize maps Go values onto the JSON value space (string, float64, bool,
// nil, map, slice) so values from callers compare equal to decoded ones.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, string, float64, bool:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case float32:
		return float64(x)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// compareValues orders nil before bools before numbers before strings.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
