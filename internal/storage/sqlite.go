// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SCHEMA
// =============================================================================

// sqliteSchema stores every collection in one table of JSON documents.
// seq preserves insertion order for ties in ORDER BY.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection);
`

// =============================================================================
// SQLITE STORE
// =============================================================================

// SQLiteStore is a Client backed by a local SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// OpenSQLite opens (or creates) the database at path.
// The special path ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// exists per connection, so a single connection is used.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// List implements Client.
func (s *SQLiteStore) List(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := q.validate(); err != nil {
		return nil, newError(KindInvalid, OpList, collection, "", "invalid query", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	query, args := buildListQuery(collection, q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newError(KindBackend, OpList, collection, "", "query failed", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, newError(KindBackend, OpList, collection, "", "scan failed", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, newError(KindInvalid, OpList, collection, "", "corrupt document", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindBackend, OpList, collection, "", "query failed", err)
	}
	return out, nil
}

// buildListQuery renders q as SQL. Field names were validated by q.validate,
// and are still bound as parameters.
func buildListQuery(collection string, q Query) (string, []any) {
	var sb strings.Builder
	args := []any{collection}

	sb.WriteString("SELECT body FROM documents WHERE collection = ?")
	for _, f := range q.Where {
		v := sqlValue(normalize(f.Value))
		if v == nil {
			sb.WriteString(" AND json_extract(body, ?) IS NULL")
			args = append(args, "$."+f.Field)
			continue
		}
		sb.WriteString(" AND json_extract(body, ?) = ?")
		args = append(args, "$."+f.Field, v)
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		sb.WriteString(" ORDER BY json_extract(body, ?) " + dir + ", seq " + dir)
		args = append(args, "$."+q.OrderBy)
	} else {
		sb.WriteString(" ORDER BY seq ASC")
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return sb.String(), args
}

// sqlValue maps a normalized JSON value to what json_extract returns for it.
func sqlValue(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		if x == float64(int64(x)) {
			return int64(x)
		}
		return x
	case nil, string:
		return x
	}
	data, _ := json.Marshal(v)
	return string(data)
}

// Create implements Client.
func (s *SQLiteStore) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	if rec == nil {
		return nil, newError(KindInvalid, OpCreate, collection, "", "nil record", nil)
	}
	stored, err := Encode(rec)
	if err != nil {
		return nil, newError(KindInvalid, OpCreate, collection, "", "record is not JSON", err)
	}
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}
	body, err := json.Marshal(stored)
	if err != nil {
		return nil, newError(KindInvalid, OpCreate, collection, stored.ID(), "record is not JSON", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body) VALUES (?, ?, ?) ON CONFLICT (collection, id) DO NOTHING",
		collection, stored.ID(), string(body))
	if err != nil {
		return nil, newError(KindBackend, OpCreate, collection, stored.ID(), "insert failed", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, newError(KindConflict, OpCreate, collection, stored.ID(), "record already exists", nil)
	}
	return stored, nil
}

// Delete implements Client.
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return newError(KindBackend, OpDelete, collection, id, "delete failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return newError(KindBackend, OpDelete, collection, id, "delete failed", err)
	}
	if n == 0 {
		return newError(KindNotFound, OpDelete, collection, id, "record not found", nil)
	}
	return nil
}

// Count returns the number of documents in collection.
func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, newError(KindBackend, OpList, collection, "", "count failed", err)
	}
	return n, nil
}

// Close implements Client.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
