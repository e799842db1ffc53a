// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the identity collaborator consumed by huddle.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/huddle-tui/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State is what subscribers observe: the current user, if any, and whether
// the provider is still resolving it.
type State struct {
	User    *model.User
	Loading bool
}

// Authenticated reports whether a user is signed in and resolution finished.
func (s State) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// UserID returns the signed-in user's ID, or "".
func (s State) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// =============================================================================
// PROVIDER INTERFACE
// =============================================================================

// Provider is the auth collaborator. Subscribe delivers the current state
// immediately and then every change, until the returned function is called.
type Provider interface {
	Subscribe(fn func(State)) (unsubscribe func())
	Current() State
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}

// ErrNoIdentity is returned by Login when no email is configured.
var ErrNoIdentity = errors.New("no identity configured: set user.email or HUDDLE_EMAIL")

// =============================================================================
// LOCAL PROVIDER
// =============================================================================

// LocalProvider signs in the identity configured on this machine. User IDs are
// derived from the email so they are stable across runs.
type LocalProvider struct {
	mu          sync.Mutex
	email       string
	displayName string
	state       State
	subs        map[int]func(State)
	nextSub     int
}

// NewLocalProvider creates a provider for the given identity. The provider
// starts in the loading state until Login or Logout resolves it.
func NewLocalProvider(email, displayName string) *LocalProvider {
	return &LocalProvider{
		email:       strings.TrimSpace(email),
		displayName: strings.TrimSpace(displayName),
		state:       State{Loading: true},
		subs:        make(map[int]func(State)),
	}
}

// UserIDFor derives the stable user ID for an email address.
func UserIDFor(email string) string {
	key := "mailto:" + strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Subscribe implements Provider.
func (p *LocalProvider) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	current := p.state
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Current implements Provider.
func (p *LocalProvider) Current() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Login implements Provider. Without a configured email the provider settles
// into the signed-out state and ErrNoIdentity is returned.
func (p *LocalProvider) Login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.email == "" {
		p.set(State{})
		return ErrNoIdentity
	}

	p.set(State{Loading: true})
	user := &model.User{
		ID:          UserIDFor(p.email),
		Email:       p.email,
		DisplayName: p.displayName,
	}
	p.set(State{User: user})
	return nil
}

// Logout implements Provider.
func (p *LocalProvider) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.set(State{})
	return nil
}

// SetIdentity changes the identity used by the next Login.
func (p *LocalProvider) SetIdentity(email, displayName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.email = strings.TrimSpace(email)
	p.displayName = strings.TrimSpace(displayName)
}

// set stores state and notifies subscribers outside the lock.
func (p *LocalProvider) set(s State) {
	p.mu.Lock()
	p.state = s
	subs := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
