// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore is an in-process Client. It backs tests and the "memory" driver.
// Faults can be injected per operation with FailNext.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]Record
	faults      map[Op][]error
	calls       map[Op]map[string]int
	hook        func(ctx context.Context, op Op, collection string)
	closed      bool
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Record),
		faults:      make(map[Op][]error),
		calls:       make(map[Op]map[string]int),
	}
}

// FailNext makes the next call of op return err. Calls queue in order.
func (s *MemoryStore) FailNext(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], err)
}

// SetHook installs a function run at the start of every operation, before
// locks are taken. Tests use it to hold a request open.
func (s *MemoryStore) SetHook(hook func(ctx context.Context, op Op, collection string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Calls returns how many times op ran against collection, failed or not.
func (s *MemoryStore) Calls(op Op, collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op][collection]
}

// Len returns the number of records in collection.
func (s *MemoryStore) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

// begin runs the hook and consumes an injected fault for op.
func (s *MemoryStore) begin(ctx context.Context, op Op, collection string) error {
	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook(ctx, op, collection)
	}

	if err := ctx.Err(); err != nil {
		return newError(KindBackend, op, collection, "", "context done", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls[op] == nil {
		s.calls[op] = make(map[string]int)
	}
	s.calls[op][collection]++

	if s.closed {
		return ErrClosed
	}
	if queue := s.faults[op]; len(queue) > 0 {
		s.faults[op] = queue[1:]
		return queue[0]
	}
	return nil
}

// List implements Client.
func (s *MemoryStore) List(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := q.validate(); err != nil {
		return nil, newError(KindInvalid, OpList, collection, "", "invalid query", err)
	}
	if err := s.begin(ctx, OpList, collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, rec := range s.collections[collection] {
		if matches(rec, q.Where) {
			out = append(out, cloneRecord(rec))
		}
	}

	if q.OrderBy != "" {
		if q.Desc {
			slices.Reverse(out)
		}
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(normalize(out[i][q.OrderBy]), normalize(out[j][q.OrderBy]))
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Create implements Client.
func (s *MemoryStore) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	if rec == nil {
		return nil, newError(KindInvalid, OpCreate, collection, "", "nil record", nil)
	}
	if err := s.begin(ctx, OpCreate, collection); err != nil {
		return nil, err
	}

	stored, err := Encode(rec)
	if err != nil {
		return nil, newError(KindInvalid, OpCreate, collection, "", "record is not JSON", err)
	}
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.collections[collection] {
		if existing.ID() == stored.ID() {
			return nil, newError(KindConflict, OpCreate, collection, stored.ID(), "record already exists", nil)
		}
	}
	s.collections[collection] = append(s.collections[collection], stored)
	return cloneRecord(stored), nil
}

// Delete implements Client.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.begin(ctx, OpDelete, collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.collections[collection]
	for i, rec := range recs {
		if rec.ID() == id {
			s.collections[collection] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return newError(KindNotFound, OpDelete, collection, id, "record not found", nil)
}

// Close implements Client. Later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func matches(rec Record, filters []Filter) bool {
	for _, f := range filters {
		if !reflect.DeepEqual(normalize(rec[f.Field]), normalize(f.Value)) {
			return false
		}
	}
	return true
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
