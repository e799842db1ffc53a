// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the identity collaborator consumed by huddle.
//
// The application never manages sessions itself. It subscribes to a Provider
// and reacts to {user, loading} transitions; the navigator bootstraps a
// first-time user when the state becomes authenticated.
//
// # Key Types
//
//   - Provider: Subscribe, Current, Login and Logout
//   - State: Current user (or nil) and a loading flag
//   - LocalProvider: Signs in the identity from the local configuration
//
// # Usage
//
//	p := auth.NewLocalProvider(cfg.User.Email, cfg.User.DisplayName)
//	unsubscribe := p.Subscribe(func(s auth.State) {
//	    if s.Authenticated() {
//	        nav.HandleAuth(ctx, s)
//	    }
//	})
//	defer unsubscribe()
//	err := p.Login(ctx)
package auth
