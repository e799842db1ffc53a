// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"time"
	"unicode"

	"github.com/jeranaias/huddle-tui/internal/model"
)

// authorSuffixLen is how many trailing ID characters name an unknown author.
const authorSuffixLen = 4

// AuthorLabel names a message author. The viewer is shown by display name or
// email; anyone else by a placeholder built from the last four characters of
// their ID, since other users' profiles are not available to the client.
func AuthorLabel(authorID string, viewer *model.User) string {
	if viewer != nil && viewer.ID != "" && viewer.ID == authorID {
		return viewer.Label()
	}
	short := model.ShortID(authorID, authorSuffixLen)
	if short == "" {
		return "Unknown"
	}
	return "User " + short
}

// Initial returns the uppercase first letter or digit of label for avatars.
func Initial(label string) string {
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "?"
}

// FormatTime renders a message time relative to now: clock time for today,
// weekday for the last week, and a date otherwise.
func FormatTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	switch {
	case y1 == y2 && m1 == m2 && d1 == d2:
		return t.Format("15:04")
	case now.Sub(t) < 7*24*time.Hour && t.Before(now):
		return t.Format("Mon 15:04")
	case y1 == y2:
		return t.Format("Jan 2 15:04")
	default:
		return t.Format("Jan 2 2006")
	}
}
