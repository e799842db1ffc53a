// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Timestamp is a time.Time that encodes as Unix milliseconds in JSON.
// A zero Timestamp encodes as 0 and decodes back to the zero time.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp truncated to millisecond precision.
func At(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{Time: t.Truncate(time.Millisecond)}
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return At(time.Now())
}

// Millis returns the timestamp as Unix milliseconds, or 0 when unset.
func (t Timestamp) Millis() int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, t.Millis(), 10), nil
}

// UnmarshalJSON accepts Unix milliseconds or an RFC 3339 string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*t = At(parsed)
		return nil
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	if ms == 0 {
		*t = Timestamp{}
		return nil
	}
	*t = Timestamp{Time: time.UnixMilli(int64(ms))}
	return nil
}
