// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// =============================================================================
// ERRORS
// =============================================================================

// ErrorKind categorizes store errors for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindConflict
	KindInvalid
	KindClosed
	KindBackend
)

// Sentinel errors. Use errors.Is(err, ErrNotFound) to check.
var (
	ErrNotFound      = &StoreError{Kind: KindNotFound, Message: "record not found"}
	ErrConflict      = &StoreError{Kind: KindConflict, Message: "record already exists"}
	ErrInvalidRecord = &StoreError{Kind: KindInvalid, Message: "invalid record"}
	ErrClosed        = &StoreError{Kind: KindClosed, Message: "store is closed"}
)

// StoreError describes a failed store operation.
type StoreError struct {
	Kind       ErrorKind
	Op         Op
	Collection string
	ID         string
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := e.Message
	if e.Op != "" {
		target := e.Collection
		if e.ID != "" {
			target += "/" + e.ID
		}
		msg = string(e.Op) + " " + target + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is matches store errors of the same kind, so a detailed error compares
// equal to its sentinel.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return t.Kind != KindUnknown && e.Kind == t.Kind
}

func newError(kind ErrorKind, op Op, collection, id, message string, cause error) *StoreError {
	return &StoreError{
		Kind:       kind,
		Op:         op,
		Collection: collection,
		ID:         id,
		Message:    message,
		Cause:      cause,
	}
}
