// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the document store client used by huddle.
//
// Controllers depend only on the Client interface: list with equality
// filters, ordering and a limit; create; delete by id. Two implementations
// ship with the application.
//
// # Key Types
//
//   - Client: Narrow data-access interface injected into controllers
//   - Record: Schemaless JSON document with a string "id"
//   - Query: Equality filters, one order field and a limit
//   - MemoryStore: In-process store with fault injection for tests
//   - SQLiteStore: Local database file holding all collections
//   - StoreError: Typed error with sentinels ErrNotFound, ErrConflict, ErrClosed
//
// # Usage
//
//	db, err := storage.OpenSQLite(filepath.Join(dir, "huddle.db"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	msgs, err := storage.ListAs[model.Message](ctx, db, storage.CollectionMessages, storage.Query{
//	    Where:   []storage.Filter{storage.Where("channel_id", channelID)},
//	    OrderBy: "created_at",
//	    Limit:   100,
//	})
package storage
