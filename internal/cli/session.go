// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jeranaias/huddle-tui/internal/auth"
	"github.com/jeranaias/huddle-tui/internal/config"
	"github.com/jeranaias/huddle-tui/internal/conversation"
	"github.com/jeranaias/huddle-tui/internal/inference"
	"github.com/jeranaias/huddle-tui/internal/logging"
	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/navigator"
	"github.com/jeranaias/huddle-tui/internal/storage"
)

// commandTimeout bounds a headless command's store round trips.
const commandTimeout = 30 * time.Second

var (
	ErrNoChannelArg     = errors.New("channel name is required")
	ErrWorkspaceMissing = errors.New("workspace not found")
	ErrChannelMissing   = errors.New("channel not found")
)

// =============================================================================
// SESSION
// =============================================================================

// session holds the collaborators one command run needs.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Client
	provider *auth.LocalProvider
	nav      *navigator.Navigator
	closers  []io.Closer
}

// openSession opens the log file and the store named by cfg. A log file
// that cannot be opened is reported on warn and logging is discarded.
func openSession(cfg *config.Config, warn io.Writer) (*session, error) {
	s := &session{cfg: cfg}

	logger, closer, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(warn, "warning: %v\n", err)
	}
	s.logger = logger
	s.closers = append(s.closers, closer)

	store, err := openStore(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = store
	s.closers = append(s.closers, store)

	s.provider = auth.NewLocalProvider(cfg.User.Email, cfg.User.DisplayName)
	s.nav = navigator.New(store, logger)
	return s, nil
}

func openLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if strings.TrimSpace(cfg.Log.Path) == "" {
		return logging.Discard(), io.NopCloser(nil), nil
	}
	return logging.OpenFile(config.ExpandPath(cfg.Log.Path), cfg.Log.Level)
}

// openStore opens the configured document store.
func openStore(cfg *config.Config) (storage.Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store.Driver)) {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "", "sqlite":
		store, err := storage.OpenSQLite(config.ExpandPath(cfg.Store.Path))
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newGenerator builds the inference client from the assistant settings, or
// nil when the assistant is disabled.
func newGenerator(cfg *config.Config) inference.Generator {
	if !cfg.Assistant.Enabled {
		return nil
	}
	return inference.NewClientWithConfig(&inference.ClientConfig{
		BaseURL: cfg.Assistant.OllamaURL,
		Timeout: time.Duration(cfg.Assistant.TimeoutSecs) * time.Second,
		Model:   cfg.Assistant.Model,
		System:  cfg.Assistant.SystemPrompt,
	})
}

// Close releases the store and the log file.
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// =============================================================================
// SIGN IN AND RESOLUTION
// =============================================================================

// signIn resolves the configured identity and loads its workspaces, which
// bootstraps "General" for a first-time user.
func (s *session) signIn(ctx context.Context) (*model.User, error) {
	if err := s.provider.Login(ctx); err != nil {
		return nil, err
	}
	st := s.provider.Current()
	if err := s.nav.HandleAuth(ctx, st); err != nil {
		return nil, fmt.Errorf("load workspaces: %w", err)
	}
	return st.User, nil
}

// resolve selects the workspace named ws (the active one when empty) and,
// when ch is non-empty, the channel with that name in it.
func (s *session) resolve(ctx context.Context, ws, ch string) (*model.Workspace, *model.Channel, error) {
	if ws = strings.TrimSpace(ws); ws != "" {
		w := findWorkspace(s.nav.Workspaces(), ws)
		if w == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrWorkspaceMissing, ws)
		}
		if err := s.nav.SelectWorkspace(ctx, w.ID); err != nil {
			return nil, nil, err
		}
	}
	active, _ := s.nav.Active()
	if active == nil {
		return nil, nil, navigator.ErrNoWorkspace
	}
	if strings.TrimSpace(ch) == "" {
		return active, nil, nil
	}
	c := findChannel(s.nav.Channels(), ch)
	if c == nil {
		return nil, nil, fmt.Errorf("%w: #%s in %s", ErrChannelMissing, channelName(ch), active.Name)
	}
	return active, c, nil
}

// openChannel signs in, resolves the channel and loads its history.
func (s *session) openChannel(ctx context.Context, ws, ch string) (*conversation.Controller, *model.Workspace, *model.Channel, error) {
	if strings.TrimSpace(ch) == "" {
		return nil, nil, nil, ErrNoChannelArg
	}
	user, err := s.signIn(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	w, c, err := s.resolve(ctx, ws, ch)
	if err != nil {
		return nil, nil, nil, err
	}
	conv := conversation.New(s.store, user,
		conversation.WithLimit(s.cfg.Store.MessageLimit),
		conversation.WithLogger(s.logger),
	)
	if err := conv.SwitchChannel(ctx, c.ID); err != nil {
		return nil, nil, nil, err
	}
	return conv, w, c, nil
}

// findWorkspace matches an ID or a case-insensitive name.
func findWorkspace(list []model.Workspace, key string) *model.Workspace {
	for i := range list {
		if list[i].ID == key || strings.EqualFold(list[i].Name, key) {
			return &list[i]
		}
	}
	return nil
}

// findChannel matches an ID or a name with or without the leading "#".
func findChannel(list []model.Channel, key string) *model.Channel {
	name := channelName(key)
	for i := range list {
		if list[i].ID == key || list[i].Name == name {
			return &list[i]
		}
	}
	return nil
}

// channelName normalizes a channel argument such as "#General" to "general".
func channelName(key string) string {
	return model.NormalizeChannelName(strings.TrimPrefix(strings.TrimSpace(key), "#"))
}
