// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID      string `json:"id"`
	Channel string `json:"channel_id"`
	Body    string `json:"body"`
	At      int64  `json:"created_at"`
	Pinned  bool   `json:"pinned"`
}

// backends returns a fresh instance of every Client implementation.
func backends(t *testing.T) map[string]Client {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	clients := map[string]Client{
		"memory": NewMemoryStore(),
		"sqlite": db,
	}
	t.Cleanup(func() {
		for _, c := range clients {
			c.Close()
		}
	})
	return clients
}

func seed(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()
	notes := []note{
		{ID: "n3", Channel: "a", Body: "third", At: 3000},
		{ID: "n1", Channel: "a", Body: "first", At: 1000, Pinned: true},
		{ID: "n2", Channel: "a", Body: "second", At: 2000},
		{ID: "x1", Channel: "b", Body: "other", At: 1500},
	}
	for _, n := range notes {
		_, err := CreateAs(ctx, c, "notes", n)
		require.NoError(t, err)
	}
}

// =============================================================================
// CLIENT CONFORMANCE
// =============================================================================

func TestClient_ListFiltersAndOrders(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, c)

			got, err := ListAs[note](context.Background(), c, "notes", Query{
				Where:   []Filter{Where("channel_id", "a")},
				OrderBy: "created_at",
			})
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, []string{"n1", "n2", "n3"}, []string{got[0].ID, got[1].ID, got[2].ID})
		})
	}
}

func TestClient_ListDescendingWithLimit(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, c)

			got, err := ListAs[note](context.Background(), c, "notes", Query{
				Where:   []Filter{Where("channel_id", "a")},
				OrderBy: "created_at",
				Desc:    true,
				Limit:   2,
			})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "n3", got[0].ID)
			assert.Equal(t, "n2", got[1].ID)
		})
	}
}

func TestClient_ListTiesFollowInsertionOrder(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"t1", "t2", "t3"} {
				_, err := CreateAs(ctx, c, "notes", note{ID: id, Channel: "a", At: 5000})
				require.NoError(t, err)
			}

			ids := func(q Query) []string {
				got, err := ListAs[note](ctx, c, "notes", q)
				require.NoError(t, err)
				out := make([]string, len(got))
				for i, n := range got {
					out[i] = n.ID
				}
				return out
			}

			assert.Equal(t, []string{"t1", "t2", "t3"}, ids(Query{OrderBy: "created_at"}))
			assert.Equal(t, []string{"t3", "t2", "t1"}, ids(Query{OrderBy: "created_at", Desc: true}))
			assert.Equal(t, []string{"t3", "t2"}, ids(Query{OrderBy: "created_at", Desc: true, Limit: 2}))
		})
	}
}

func TestClient_ListFiltersOnBool(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, c)

			got, err := ListAs[note](context.Background(), c, "notes", Query{
				Where: []Filter{Where("pinned", true)},
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "n1", got[0].ID)
		})
	}
}

func TestClient_ListFiltersOnNumber(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, c)

			got, err := ListAs[note](context.Background(), c, "notes", Query{
				Where: []Filter{Where("created_at", 1500)},
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "x1", got[0].ID)
		})
	}
}

func TestClient_CreateGeneratesID(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec, err := c.Create(context.Background(), "notes", Record{"body": "no id"})
			require.NoError(t, err)
			assert.NotEmpty(t, rec.ID())
		})
	}
}

func TestClient_CreateConflict(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := c.Create(ctx, "notes", Record{"id": "dup"})
			require.NoError(t, err)

			_, err = c.Create(ctx, "notes", Record{"id": "dup"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConflict), "err = %v, want ErrConflict", err)
		})
	}
}

func TestClient_Delete(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, c)

			require.NoError(t, c.Delete(ctx, "notes", "n2"))

			got, err := ListAs[note](ctx, c, "notes", Query{Where: []Filter{Where("channel_id", "a")}})
			require.NoError(t, err)
			assert.Len(t, got, 2)

			err = c.Delete(ctx, "notes", "n2")
			assert.True(t, errors.Is(err, ErrNotFound), "err = %v, want ErrNotFound", err)
		})
	}
}

func TestClient_Closed(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Close())

			_, err := c.List(context.Background(), "notes", Query{})
			assert.True(t, errors.Is(err, ErrClosed), "err = %v, want ErrClosed", err)
		})
	}
}

func TestClient_InvalidQuery(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.List(context.Background(), "notes", Query{OrderBy: "created_at; DROP TABLE documents"})
			assert.True(t, errors.Is(err, ErrInvalidRecord), "err = %v, want invalid", err)
		})
	}
}

func TestGetAs(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, c)

			n, err := GetAs[note](ctx, c, "notes", "n2")
			require.NoError(t, err)
			assert.Equal(t, "second", n.Body)

			_, err = GetAs[note](ctx, c, "notes", "missing")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

// =============================================================================
// MEMORY STORE FAULTS
// =============================================================================

func TestMemoryStore_FailNext(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailNext(OpCreate, boom)

	_, err := s.Create(ctx, "notes", Record{"id": "a"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len("notes"))

	_, err = s.Create(ctx, "notes", Record{"id": "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len("notes"))
	assert.Equal(t, 2, s.Calls(OpCreate, "notes"))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec, err := s.Create(ctx, "notes", Record{"id": "a", "body": "orig"})
	require.NoError(t, err)
	rec["body"] = "mutated"

	got, err := s.List(ctx, "notes", Query{})
	require.NoError(t, err)
	assert.Equal(t, "orig", got[0]["body"])
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.List(ctx, "notes", Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestStoreError_Message(t *testing.T) {
	err := newError(KindNotFound, OpDelete, "messages", "m1", "record not found", nil)
	assert.Equal(t, "delete messages/m1: record not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}
