// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the huddle command tree.
//
// The root command starts the interactive client; the subcommands reuse the
// same config, store, auth provider and navigator headlessly.
//
// # Commands
//
//   - (none): interactive client
//   - channels: list workspaces and channels
//   - send: post a message, from arguments or stdin
//   - export: write a channel's history as HTML, Markdown or JSON
//   - ask: one-off assistant question
//   - config: path, list, get, set and init
//   - version: build information
//
// Commands that print data accept --json and wrap the result in a
// JSONResponse envelope.
//
// # Usage
//
//	func main() {
//	    cli.Execute()
//	}
package cli
