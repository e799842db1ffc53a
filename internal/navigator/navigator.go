// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/huddle-tui/internal/auth"
	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/storage"
)

// maxParallelLoads bounds concurrent workspace lookups during a refresh.
const maxParallelLoads = 4

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrNoWorkspace      = errors.New("no active workspace")
	ErrUnknownWorkspace = errors.New("workspace not found")
	ErrUnknownChannel   = errors.New("channel not found")
	ErrEmptyName        = errors.New("name is required")
	ErrDuplicateChannel = errors.New("channel already exists")
	ErrStale            = errors.New("navigation result discarded")
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a consistent copy of the navigator state.
type Snapshot struct {
	User       *model.User
	Workspaces []model.Workspace
	Channels   []model.Channel
	Workspace  *model.Workspace
	Channel    *model.Channel
	Loading    bool
}

// loaded is the result of one store round trip.
type loaded struct {
	workspaces []model.Workspace
	channels   []model.Channel
	workspace  string
	channel    string
}

// =============================================================================
// NAVIGATOR
// =============================================================================

// Navigator resolves the active workspace and channel for the signed-in user.
//
// The first time a user is seen with no memberships it creates a "General"
// workspace, an admin membership and a "general" channel. That bootstrap runs
// at most once per sign-in: the guard is tied to an auth epoch that only
// moves when the user signs out or changes.
type Navigator struct {
	client storage.Client
	logger *slog.Logger

	mu         sync.Mutex
	user       *model.User
	epoch      uint64
	bootEpoch  uint64
	seq        uint64
	applied    uint64
	loading    bool
	workspaces []model.Workspace
	channels   []model.Channel
	activeWS   string
	activeCh   string
}

// New creates a navigator over client. A nil logger uses slog.Default.
func New(client storage.Client, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{client: client, logger: logger}
}

// =============================================================================
// AUTH
// =============================================================================

// HandleAuth applies an auth state change. Signing in loads the user's
// workspaces and bootstraps a first-time user; repeating the same signed-in
// state is a no-op. Signing out clears everything and re-arms the bootstrap.
func (n *Navigator) HandleAuth(ctx context.Context, st auth.State) error {
	n.mu.Lock()
	if st.Loading {
		n.loading = true
		n.mu.Unlock()
		return nil
	}

	if !st.Authenticated() {
		n.epoch++
		n.user = nil
		n.loading = false
		n.clearLocked()
		n.mu.Unlock()
		n.logger.Debug("navigator_signed_out")
		return nil
	}

	if n.user != nil && n.user.ID == st.User.ID {
		n.loading = false
		n.mu.Unlock()
		return nil
	}
	n.epoch++
	u := *st.User
	n.user = &u
	n.clearLocked()
	n.mu.Unlock()

	return n.Refresh(ctx)
}

func (n *Navigator) clearLocked() {
	n.workspaces = nil
	n.channels = nil
	n.activeWS = ""
	n.activeCh = ""
}

// =============================================================================
// LOADING
// =============================================================================

// Refresh reloads workspaces and the active workspace's channels in place,
// keeping the current selection when it still exists.
func (n *Navigator) Refresh(ctx context.Context) error {
	n.mu.Lock()
	if n.user == nil {
		n.mu.Unlock()
		return ErrNotAuthenticated
	}
	user := *n.user
	epoch := n.epoch
	wantWS, wantCh := n.activeWS, n.activeCh
	n.loading = true
	n.mu.Unlock()

	seq := n.nextSeq()
	res, err := n.load(ctx, user.ID, wantWS, wantCh)

	if err == nil && len(res.workspaces) == 0 && n.claimBootstrap(epoch) {
		if err = n.bootstrap(ctx, user); err == nil {
			seq = n.nextSeq()
			res, err = n.load(ctx, user.ID, "", "")
		}
	}

	return n.apply(seq, epoch, res, err)
}

func (n *Navigator) nextSeq() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	return n.seq
}

// claimBootstrap reports whether the caller may bootstrap for epoch. Only
// the first caller per epoch wins.
func (n *Navigator) claimBootstrap(epoch uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.epoch != epoch || n.bootEpoch == epoch {
		return false
	}
	n.bootEpoch = epoch
	return true
}

// apply installs a load result unless a newer one or an auth change got
// there first.
func (n *Navigator) apply(seq, epoch uint64, res loaded, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.epoch != epoch || seq < n.applied {
		return ErrStale
	}
	n.applied = seq
	n.loading = false
	if err != nil {
		n.logger.Warn("navigator_refresh_failed", "error", err)
		return err
	}
	n.workspaces = res.workspaces
	n.channels = res.channels
	n.activeWS = res.workspace
	n.activeCh = res.channel
	return nil
}

// load reads the user's workspaces and the channels of the chosen one.
func (n *Navigator) load(ctx context.Context, userID, wantWS, wantCh string) (loaded, error) {
	memberships, err := storage.ListAs[model.Membership](ctx, n.client, storage.CollectionMemberships, storage.Query{
		Where:   []storage.Filter{storage.Where("user_id", userID)},
		OrderBy: "created_at",
	})
	if err != nil {
		return loaded{}, fmt.Errorf("load memberships: %w", err)
	}

	found := make([]*model.Workspace, len(memberships))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, m := range memberships {
		g.Go(func() error {
			ws, err := storage.GetAs[model.Workspace](gctx, n.client, storage.CollectionWorkspaces, m.WorkspaceID)
			if errors.Is(err, storage.ErrNotFound) {
				n.logger.Warn("membership_workspace_missing", "membership_id", m.ID, "workspace_id", m.WorkspaceID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("load workspace %s: %w", m.WorkspaceID, err)
			}
			found[i] = &ws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return loaded{}, err
	}

	var res loaded
	seen := make(map[string]bool, len(found))
	for _, ws := range found {
		if ws == nil || seen[ws.ID] {
			continue
		}
		seen[ws.ID] = true
		res.workspaces = append(res.workspaces, *ws)
	}
	if len(res.workspaces) == 0 {
		return res, nil
	}

	res.workspace = res.workspaces[0].ID
	if seen[wantWS] {
		res.workspace = wantWS
	}

	res.channels, err = n.listChannels(ctx, res.workspace)
	if err != nil {
		return loaded{}, err
	}
	res.channel = pickChannel(res.channels, wantCh)
	return res, nil
}

func (n *Navigator) listChannels(ctx context.Context, workspaceID string) ([]model.Channel, error) {
	chs, err := storage.ListAs[model.Channel](ctx, n.client, storage.CollectionChannels, storage.Query{
		Where:   []storage.Filter{storage.Where("workspace_id", workspaceID)},
		OrderBy: "created_at",
	})
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	return chs, nil
}

// pickChannel keeps want when present, then prefers the default channel,
// then the oldest one.
func pickChannel(chs []model.Channel, want string) string {
	if len(chs) == 0 {
		return ""
	}
	for _, ch := range chs {
		if ch.ID == want {
			return want
		}
	}
	for _, ch := range chs {
		if ch.Name == model.DefaultChannelName {
			return ch.ID
		}
	}
	return chs[0].ID
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

// bootstrap creates the default workspace, admin membership and channel.
func (n *Navigator) bootstrap(ctx context.Context, user model.User) error {
	ws, err := n.createWorkspace(ctx, user.ID, model.DefaultWorkspaceName, model.DefaultWorkspaceDescription)
	if err != nil {
		n.logger.Warn("bootstrap_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("bootstrap: %w", err)
	}
	n.logger.Info("bootstrap_workspace_created", "user_id", user.ID, "workspace_id", ws.ID)
	return nil
}

// createWorkspace stores a workspace, the creator's admin membership and the
// default channel.
func (n *Navigator) createWorkspace(ctx context.Context, userID, name, description string) (model.Workspace, error) {
	ws, err := storage.CreateAs(ctx, n.client, storage.CollectionWorkspaces, model.NewWorkspace(name, description, userID))
	if err != nil {
		return model.Workspace{}, fmt.Errorf("create workspace: %w", err)
	}
	if _, err := storage.CreateAs(ctx, n.client, storage.CollectionMemberships, model.NewMembership(userID, ws.ID, model.RoleAdmin)); err != nil {
		return ws, fmt.Errorf("create membership: %w", err)
	}
	ch := model.NewChannel(ws.ID, model.DefaultChannelName, model.DefaultChannelDescription, false, userID)
	if _, err := storage.CreateAs(ctx, n.client, storage.CollectionChannels, ch); err != nil {
		return ws, fmt.Errorf("create channel: %w", err)
	}
	return ws, nil
}

// =============================================================================
// SELECTION AND CREATION
// =============================================================================

// SelectWorkspace activates a workspace the user belongs to and loads its
// channels.
func (n *Navigator) SelectWorkspace(ctx context.Context, id string) error {
	n.mu.Lock()
	if n.user == nil {
		n.mu.Unlock()
		return ErrNotAuthenticated
	}
	if indexWorkspace(n.workspaces, id) < 0 {
		n.mu.Unlock()
		return ErrUnknownWorkspace
	}
	if n.activeWS == id {
		n.mu.Unlock()
		return nil
	}
	n.activeWS = id
	n.activeCh = ""
	n.mu.Unlock()
	return n.Refresh(ctx)
}

// SelectChannel activates a channel of the active workspace.
func (n *Navigator) SelectChannel(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if indexChannel(n.channels, id) < 0 {
		return ErrUnknownChannel
	}
	n.activeCh = id
	return nil
}

// CreateWorkspace creates a workspace with the caller as admin and a default
// channel, then selects it.
func (n *Navigator) CreateWorkspace(ctx context.Context, name, description string) (model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Workspace{}, ErrEmptyName
	}
	n.mu.Lock()
	if n.user == nil {
		n.mu.Unlock()
		return model.Workspace{}, ErrNotAuthenticated
	}
	userID := n.user.ID
	n.mu.Unlock()

	ws, err := n.createWorkspace(ctx, userID, name, description)
	if err != nil {
		n.logger.Warn("create_workspace_failed", "name", name, "error", err)
		return model.Workspace{}, err
	}
	n.logger.Info("workspace_created", "workspace_id", ws.ID)

	n.mu.Lock()
	n.activeWS = ws.ID
	n.activeCh = ""
	n.mu.Unlock()
	return ws, n.Refresh(ctx)
}

// CreateChannel creates a channel in the active workspace and selects it.
// The name is normalized; names must be unique within a workspace.
func (n *Navigator) CreateChannel(ctx context.Context, name, description string, private bool) (model.Channel, error) {
	normalized := model.NormalizeChannelName(name)
	if normalized == "" {
		return model.Channel{}, ErrEmptyName
	}

	n.mu.Lock()
	if n.user == nil {
		n.mu.Unlock()
		return model.Channel{}, ErrNotAuthenticated
	}
	if n.activeWS == "" {
		n.mu.Unlock()
		return model.Channel{}, ErrNoWorkspace
	}
	for _, ch := range n.channels {
		if ch.Name == normalized {
			n.mu.Unlock()
			return model.Channel{}, fmt.Errorf("%w: %s", ErrDuplicateChannel, normalized)
		}
	}
	userID, wsID := n.user.ID, n.activeWS
	n.mu.Unlock()

	ch, err := storage.CreateAs(ctx, n.client, storage.CollectionChannels,
		model.NewChannel(wsID, normalized, description, private, userID))
	if err != nil {
		n.logger.Warn("create_channel_failed", "name", normalized, "error", err)
		return model.Channel{}, fmt.Errorf("create channel: %w", err)
	}
	n.logger.Info("channel_created", "channel_id", ch.ID, "workspace_id", wsID)

	n.mu.Lock()
	if n.activeWS == wsID {
		n.activeCh = ch.ID
	}
	n.mu.Unlock()
	return ch, n.Refresh(ctx)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Active returns copies of the active workspace and channel. Either may be nil.
func (n *Navigator) Active() (*model.Workspace, *model.Channel) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.activeLocked()
}

func (n *Navigator) activeLocked() (*model.Workspace, *model.Channel) {
	var (
		ws *model.Workspace
		ch *model.Channel
	)
	if i := indexWorkspace(n.workspaces, n.activeWS); i >= 0 {
		w := n.workspaces[i]
		ws = &w
	}
	if i := indexChannel(n.channels, n.activeCh); i >= 0 {
		c := n.channels[i]
		ch = &c
	}
	return ws, ch
}

// Workspaces returns the user's workspaces.
func (n *Navigator) Workspaces() []model.Workspace {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Workspace(nil), n.workspaces...)
}

// Channels returns the channels of the active workspace.
func (n *Navigator) Channels() []model.Channel {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Channel(nil), n.channels...)
}

// Loading reports whether auth or a refresh is pending.
func (n *Navigator) Loading() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loading
}

// Snapshot returns the full state at once.
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := Snapshot{
		Workspaces: append([]model.Workspace(nil), n.workspaces...),
		Channels:   append([]model.Channel(nil), n.channels...),
		Loading:    n.loading,
	}
	if n.user != nil {
		u := *n.user
		s.User = &u
	}
	s.Workspace, s.Channel = n.activeLocked()
	return s
}

func indexWorkspace(list []model.Workspace, id string) int {
	if id == "" {
		return -1
	}
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexChannel(list []model.Channel, id string) int {
	if id == "" {
		return -1
	}
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
