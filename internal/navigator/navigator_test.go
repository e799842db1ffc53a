// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/huddle-tui/internal/auth"
	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/storage"
)

func signedIn(id, email string) auth.State {
	return auth.State{User: &model.User{ID: id, Email: email}}
}

func counts(s *storage.MemoryStore) (ws, mem, ch int) {
	return s.Len(storage.CollectionWorkspaces), s.Len(storage.CollectionMemberships), s.Len(storage.CollectionChannels)
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

func TestHandleAuth_BootstrapsFirstLogin(t *testing.T) {
	store := storage.NewMemoryStore()
	nav := New(store, nil)
	ctx := context.Background()

	require.NoError(t, nav.HandleAuth(ctx, auth.State{Loading: true}))
	assert.True(t, nav.Loading())

	require.NoError(t, nav.HandleAuth(ctx, signedIn("u1", "a@example.com")))

	ws, mem, ch := counts(store)
	assert.Equal(t, 1, ws)
	assert.Equal(t, 1, mem)
	assert.Equal(t, 1, ch)

	active, channel := nav.Active()
	require.NotNil(t, active)
	require.NotNil(t, channel)
	assert.Equal(t, model.DefaultWorkspaceName, active.Name)
	assert.Equal(t, "u1", active.CreatedBy)
	assert.Equal(t, model.DefaultChannelName, channel.Name)
	assert.Equal(t, active.ID, channel.WorkspaceID)
	assert.False(t, nav.Loading())

	members, err := storage.ListAs[model.Membership](ctx, store, storage.CollectionMemberships, storage.Query{})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, model.RoleAdmin, members[0].Role)
	assert.Equal(t, "u1", members[0].UserID)
	assert.Equal(t, active.ID, members[0].WorkspaceID)
}

func TestHandleAuth_BootstrapRunsOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	nav := New(store, nil)
	ctx := context.Background()
	st := signedIn("u1", "a@example.com")

	require.NoError(t, nav.HandleAuth(ctx, st))
	require.NoError(t, nav.HandleAuth(ctx, st))
	require.NoError(t, nav.Refresh(ctx))

	ws, mem, ch := counts(store)
	assert.Equal(t, 1, ws)
	assert.Equal(t, 1, mem)
	assert.Equal(t, 1, ch)
}

func TestHandleAuth_ConcurrentRefreshBootstrapsOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	nav := New(store, nil)
	ctx := context.Background()

	// Sign in without triggering a refresh by arming the user directly.
	nav.mu.Lock()
	nav.user = &model.User{ID: "u1", Email: "a@example.com"}
	nav.epoch++
	nav.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := nav.Refresh(ctx)
			if err != nil && !errors.Is(err, ErrStale) {
				t.Errorf("Refresh() error = %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len(storage.CollectionWorkspaces))
	assert.Equal(t, 1, store.Len(storage.CollectionMemberships))
}

func TestHandleAuth_ExistingMembershipSkipsBootstrap(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	ws, err := storage.CreateAs(ctx, store, storage.CollectionWorkspaces, model.NewWorkspace("Team", "", "u1"))
	require.NoError(t, err)
	_, err = storage.CreateAs(ctx, store, storage.CollectionMemberships, model.NewMembership("u1", ws.ID, model.RoleMember))
	require.NoError(t, err)
	_, err = storage.CreateAs(ctx, store, storage.CollectionChannels, model.NewChannel(ws.ID, "dev", "", false, "u1"))
	require.NoError(t, err)

	nav := New(store, nil)
	require.NoError(t, nav.HandleAuth(ctx, signedIn("u1", "a@example.com")))

	assert.Equal(t, 1, store.Len(storage.CollectionWorkspaces))
	active, ch := nav.Active()
	require.NotNil(t, active)
	assert.Equal(t, "Team", active.Name)
	require.NotNil(t, ch)
	assert.Equal(t, "dev", ch.Name)
}

func TestHandleAuth_LogoutResetsGuard(t *testing.T) {
	store := storage.NewMemoryStore()
	nav := New(store, nil)
	ctx := context.Background()

	require.NoError(t, nav.HandleAuth(ctx, signedIn("u1", "a@example.com")))
	require.NoError(t, nav.HandleAuth(ctx, auth.State{}))

	snap := nav.Snapshot()
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Workspaces)
	assert.Nil(t, snap.Workspace)

	// Same user again: memberships exist, so nothing new is created.
	require.NoError(t, nav.HandleAuth(ctx, signedIn("u1", "a@example.com")))
	assert.Equal(t, 1, store.Len(storage.CollectionWorkspaces))

	// A new user gets their own bootstrap.
	require.NoError(t, nav.HandleAuth(ctx, auth.State{}))
	require.NoError(t, nav.HandleAuth(ctx, signedIn("u2", "b@example.com")))
	assert.Equal(t, 2, store.Len(storage.CollectionWorkspaces))
	active, _ := nav.Active()
	require.NotNil(t, active)
	assert.Equal(t, "u2", active.CreatedBy)
}

func TestHandleAuth_BootstrapFailureIsNotRepeated(t *testing.T) {
	store := storage.NewMemoryStore()
	nav := New(store, nil)
	ctx := context.Background()
	store.FailNext(storage.OpCreate, errors.New("write rejected"))

	err := nav.HandleAuth(ctx, signedIn("u1", "a@example.com"))
	require.Error(t, err)

	require.NoError(t, nav.Refresh(ctx))
	assert.Zero(t, store.Len(storage.CollectionWorkspaces), "bootstrap must not rerun within the same sign-in")
}

func TestHandleAuth_LoadFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	nav := New(store, nil)
	store.FailNext(storage.OpList, errors.New("network down"))

	err := nav.HandleAuth(context.Background(), signedIn("u1", "a@example.com"))

	require.Error(t, err)
	assert.False(t, nav.Loading())
	assert.Zero(t, store.Len(storage.CollectionWorkspaces), "no bootstrap when memberships could not be read")
}

// =============================================================================
// SELECTION AND CREATION
// =============================================================================

func setup(t *testing.T) (*storage.MemoryStore, *Navigator) {
	t.Helper()
	store := storage.NewMemoryStore()
	nav := New(store, nil)
	require.NoError(t, nav.HandleAuth(context.Background(), signedIn("u1", "a@example.com")))
	return store, nav
}

func TestCreateChannel_SelectsWithoutReload(t *testing.T) {
	_, nav := setup(t)
	ctx := context.Background()
	before, _ := nav.Active()

	ch, err := nav.CreateChannel(ctx, "  Release Planning ", "ship it", true)
	require.NoError(t, err)

	assert.Equal(t, "release-planning", ch.Name)
	assert.True(t, ch.Private)
	ws, active := nav.Active()
	require.NotNil(t, active)
	assert.Equal(t, ch.ID, active.ID)
	assert.Equal(t, before.ID, ws.ID)
	assert.Len(t, nav.Channels(), 2)
}

func TestCreateChannel_Validation(t *testing.T) {
	_, nav := setup(t)
	ctx := context.Background()

	_, err := nav.CreateChannel(ctx, "   ", "", false)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = nav.CreateChannel(ctx, "General", "", false)
	assert.ErrorIs(t, err, ErrDuplicateChannel)
}

func TestCreateWorkspace_SelectsNew(t *testing.T) {
	store, nav := setup(t)
	ctx := context.Background()

	ws, err := nav.CreateWorkspace(ctx, "Design", "")
	require.NoError(t, err)

	active, ch := nav.Active()
	require.NotNil(t, active)
	assert.Equal(t, ws.ID, active.ID)
	require.NotNil(t, ch)
	assert.Equal(t, model.DefaultChannelName, ch.Name)
	assert.Len(t, nav.Workspaces(), 2)
	assert.Equal(t, 2, store.Len(storage.CollectionMemberships))

	_, err = nav.CreateWorkspace(ctx, " ", "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestSelectWorkspaceAndChannel(t *testing.T) {
	_, nav := setup(t)
	ctx := context.Background()
	first, _ := nav.Active()
	second, err := nav.CreateWorkspace(ctx, "Design", "")
	require.NoError(t, err)

	require.NoError(t, nav.SelectWorkspace(ctx, first.ID))
	active, ch := nav.Active()
	assert.Equal(t, first.ID, active.ID)
	assert.Equal(t, first.ID, ch.WorkspaceID)

	assert.ErrorIs(t, nav.SelectWorkspace(ctx, "nope"), ErrUnknownWorkspace)
	assert.ErrorIs(t, nav.SelectChannel("nope"), ErrUnknownChannel)

	require.NoError(t, nav.SelectWorkspace(ctx, second.ID))
	for _, c := range nav.Channels() {
		assert.Equal(t, second.ID, c.WorkspaceID)
	}
}

func TestSignedOutOperations(t *testing.T) {
	nav := New(storage.NewMemoryStore(), nil)
	ctx := context.Background()

	assert.ErrorIs(t, nav.Refresh(ctx), ErrNotAuthenticated)
	_, err := nav.CreateWorkspace(ctx, "x", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = nav.CreateChannel(ctx, "x", "", false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestPickChannel(t *testing.T) {
	chs := []model.Channel{
		{ID: "a", Name: "alpha"},
		{ID: "g", Name: "general"},
	}
	tests := []struct {
		want string
		got  string
	}{
		{"a", "a"},
		{"", "g"},
		{"missing", "g"},
	}
	for _, tt := range tests {
		if got := pickChannel(chs, tt.want); got != tt.got {
			t.Errorf("pickChannel(%q) = %q, want %q", tt.want, got, tt.got)
		}
	}
	if got := pickChannel(chs[:1], ""); got != "a" {
		t.Errorf("pickChannel without general = %q, want a", got)
	}
}
