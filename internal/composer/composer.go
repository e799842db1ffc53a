// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer implements the message composer state machine.
package composer

import (
	"strings"
)

// DefaultMaxChars caps the draft length.
const DefaultMaxChars = 8192

// =============================================================================
// STATE
// =============================================================================

// Mode is the composer's layout.
type Mode int

const (
	// ModeCollapsed shows a single-line input.
	ModeCollapsed Mode = iota
	// ModeExpanded shows the multi-line editor and formatting toolbar.
	ModeExpanded
)

// State names the three observable composer states.
type State string

const (
	StateCollapsed State = "collapsed"
	StateExpanded  State = "expanded"
	StatePreview   State = "expanded+preview"
)

// Format is a formatting command.
type Format int

const (
	FormatBold Format = iota
	FormatItalic
	FormatCode
	FormatList
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatBold:
		return "bold"
	case FormatItalic:
		return "italic"
	case FormatCode:
		return "code"
	case FormatList:
		return "list"
	default:
		return "unknown"
	}
}

// placeholders are inserted when a format is applied without a selection.
var placeholders = map[Format]string{
	FormatBold:   "bold text",
	FormatItalic: "italic text",
	FormatCode:   "code",
	FormatList:   "list item",
}

// =============================================================================
// COMPOSER
// =============================================================================

// Composer holds a draft with a cursor and selection and drives the
// collapsed / expanded / preview transitions. It never talks to the store:
// a successful submit hands the trimmed draft to the OnSubmit callback.
//
// Offsets are rune indexes into the draft. The selection runs between the
// anchor and the cursor; they are equal when nothing is selected.
type Composer struct {
	buf      []rune
	cursor   int
	anchor   int
	mode     Mode
	preview  bool
	maxChars int

	// OnSubmit receives the trimmed draft of every successful submit.
	OnSubmit func(text string)
}

// New creates a collapsed, empty composer.
func New() *Composer {
	return &Composer{maxChars: DefaultMaxChars}
}

// SetMaxChars changes the draft length cap. Zero or less removes the cap.
func (c *Composer) SetMaxChars(n int) {
	c.maxChars = n
}

// MaxChars returns the draft length cap, or zero when uncapped.
func (c *Composer) MaxChars() int {
	if c.maxChars < 0 {
		return 0
	}
	return c.maxChars
}

// Mode returns the current layout.
func (c *Composer) Mode() Mode { return c.mode }

// Previewing reports whether the preview pane is shown.
func (c *Composer) Previewing() bool { return c.preview }

// State returns the observable state.
func (c *Composer) State() State {
	switch {
	case c.preview:
		return StatePreview
	case c.mode == ModeExpanded:
		return StateExpanded
	default:
		return StateCollapsed
	}
}

// Draft returns the current draft text.
func (c *Composer) Draft() string { return string(c.buf) }

// Len returns the draft length in runes.
func (c *Composer) Len() int { return len(c.buf) }

// Cursor returns the cursor offset.
func (c *Composer) Cursor() int { return c.cursor }

// Selection returns the ordered selection bounds.
func (c *Composer) Selection() (start, end int) {
	if c.anchor < c.cursor {
		return c.anchor, c.cursor
	}
	return c.cursor, c.anchor
}

// HasSelection reports whether any text is selected.
func (c *Composer) HasSelection() bool { return c.anchor != c.cursor }

// SelectedText returns the selected text.
func (c *Composer) SelectedText() string {
	start, end := c.Selection()
	return string(c.buf[start:end])
}

// CanSubmit reports whether Confirm(false) would submit.
func (c *Composer) CanSubmit() bool {
	return strings.TrimSpace(string(c.buf)) != ""
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Focus expands a collapsed composer.
func (c *Composer) Focus() {
	c.mode = ModeExpanded
}

// Blur collapses the composer when the draft is empty and no preview is open.
func (c *Composer) Blur() {
	if len(c.buf) == 0 && !c.preview {
		c.mode = ModeCollapsed
	}
}

// TogglePreview switches the preview pane. The draft is kept; opening the
// preview also expands the composer.
func (c *Composer) TogglePreview() {
	c.preview = !c.preview
	if c.preview {
		c.mode = ModeExpanded
	}
}

// Confirm handles the confirm key. With lineBreak it inserts a newline and
// forces the expanded layout; otherwise it submits. It returns true only when
// a message was submitted.
func (c *Composer) Confirm(lineBreak bool) bool {
	if lineBreak {
		if c.preview {
			return false
		}
		c.mode = ModeExpanded
		c.replaceSelection([]rune("\n"))
		return false
	}
	return c.Submit()
}

// Submit sends the trimmed draft to OnSubmit and resets the composer.
// A whitespace-only draft is a no-op and leaves every field unchanged.
func (c *Composer) Submit() bool {
	text := strings.TrimSpace(string(c.buf))
	if text == "" {
		return false
	}
	if c.OnSubmit != nil {
		c.OnSubmit(text)
	}
	c.Collapse()
	return true
}

// Collapse clears the draft, closes the preview and collapses the layout.
func (c *Composer) Collapse() {
	c.buf = c.buf[:0]
	c.cursor = 0
	c.anchor = 0
	c.preview = false
	c.mode = ModeCollapsed
}

// =============================================================================
// EDITING
// =============================================================================

// editable reports whether the draft accepts edits. Previewed drafts are
// read-only.
func (c *Composer) editable() bool {
	return !c.preview
}

// SetDraft replaces the draft and places the cursor at the end.
func (c *Composer) SetDraft(s string) {
	c.buf = []rune(s)
	if c.maxChars > 0 && len(c.buf) > c.maxChars {
		c.buf = c.buf[:c.maxChars]
	}
	c.cursor = len(c.buf)
	c.anchor = c.cursor
	if strings.Contains(s, "\n") {
		c.mode = ModeExpanded
	}
}

// Insert types s at the cursor, replacing any selection. Text containing a
// newline expands the composer.
func (c *Composer) Insert(s string) {
	if !c.editable() || s == "" {
		return
	}
	if strings.Contains(s, "\n") {
		c.mode = ModeExpanded
	}
	c.replaceSelection([]rune(s))
}

// Backspace deletes the selection or the rune before the cursor.
func (c *Composer) Backspace() {
	if !c.editable() {
		return
	}
	if c.HasSelection() {
		c.replaceSelection(nil)
		return
	}
	if c.cursor == 0 {
		return
	}
	c.buf = append(c.buf[:c.cursor-1], c.buf[c.cursor:]...)
	c.cursor--
	c.anchor = c.cursor
}

// Delete deletes the selection or the rune after the cursor.
func (c *Composer) Delete() {
	if !c.editable() {
		return
	}
	if c.HasSelection() {
		c.replaceSelection(nil)
		return
	}
	if c.cursor >= len(c.buf) {
		return
	}
	c.buf = append(c.buf[:c.cursor], c.buf[c.cursor+1:]...)
}

// Select sets the selection to [start, end) with the cursor at end.
func (c *Composer) Select(start, end int) {
	c.anchor = c.clamp(start)
	c.cursor = c.clamp(end)
}

// SelectAll selects the whole draft.
func (c *Composer) SelectAll() {
	c.Select(0, len(c.buf))
}

// MoveLeft moves the cursor one rune left. With extend the selection grows;
// otherwise an existing selection collapses to its start.
func (c *Composer) MoveLeft(extend bool) {
	if !extend && c.HasSelection() {
		start, _ := c.Selection()
		c.moveTo(start, false)
		return
	}
	c.moveTo(c.cursor-1, extend)
}

// MoveRight moves the cursor one rune right.
func (c *Composer) MoveRight(extend bool) {
	if !extend && c.HasSelection() {
		_, end := c.Selection()
		c.moveTo(end, false)
		return
	}
	c.moveTo(c.cursor+1, extend)
}

// MoveHome moves to the start of the current line.
func (c *Composer) MoveHome(extend bool) {
	c.moveTo(c.lineStart(c.cursor), extend)
}

// MoveEnd moves to the end of the current line.
func (c *Composer) MoveEnd(extend bool) {
	c.moveTo(c.lineEnd(c.cursor), extend)
}

// CursorPosition returns the zero-based line and column of the cursor.
func (c *Composer) CursorPosition() (line, col int) {
	for i := 0; i < c.cursor; i++ {
		if c.buf[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}

func (c *Composer) moveTo(pos int, extend bool) {
	c.cursor = c.clamp(pos)
	if !extend {
		c.anchor = c.cursor
	}
}

func (c *Composer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(c.buf) {
		return len(c.buf)
	}
	return pos
}

func (c *Composer) lineStart(pos int) int {
	for pos > 0 && c.buf[pos-1] != '\n' {
		pos--
	}
	return pos
}

func (c *Composer) lineEnd(pos int) int {
	for pos < len(c.buf) && c.buf[pos] != '\n' {
		pos++
	}
	return pos
}

// replaceSelection swaps the selection for r, honoring the length cap, and
// leaves the cursor after the inserted text. It returns the offset at which
// r was placed and how many runes were kept.
func (c *Composer) replaceSelection(r []rune) (at, n int) {
	start, end := c.Selection()
	if c.maxChars > 0 {
		room := c.maxChars - (len(c.buf) - (end - start))
		if room < 0 {
			room = 0
		}
		if len(r) > room {
			r = r[:room]
		}
	}

	out := make([]rune, 0, len(c.buf)-(end-start)+len(r))
	out = append(out, c.buf[:start]...)
	out = append(out, r...)
	out = append(out, c.buf[end:]...)
	c.buf = out
	c.cursor = start + len(r)
	c.anchor = c.cursor
	return start, len(r)
}

// =============================================================================
// FORMATTING
// =============================================================================

// Apply runs a formatting command. With a selection the selected text is
// wrapped in the markup and stays selected. Without one a placeholder is
// inserted inside the markup and selected, so typing replaces it. A code
// selection that spans lines becomes a fenced block. Apply expands the
// composer and is ignored while previewing.
func (c *Composer) Apply(f Format) {
	if !c.editable() {
		return
	}
	c.mode = ModeExpanded

	inner := c.SelectedText()
	selected := inner != ""
	if !selected {
		inner = placeholders[f]
	}

	var prefix, suffix, body string
	switch f {
	case FormatBold:
		prefix, suffix, body = "**", "**", inner
	case FormatItalic:
		prefix, suffix, body = "_", "_", inner
	case FormatCode:
		if strings.Contains(inner, "\n") {
			prefix, suffix, body = "```\n", "\n```", strings.Trim(inner, "\n")
		} else {
			prefix, suffix, body = "`", "`", inner
		}
	case FormatList:
		if selected {
			body = listify(inner)
		} else {
			prefix, body = "- ", inner
		}
	default:
		return
	}

	// Fenced blocks must start on their own line.
	if f == FormatCode && strings.HasPrefix(prefix, "```") {
		start, _ := c.Selection()
		if start > 0 && c.buf[start-1] != '\n' {
			prefix = "\n" + prefix
		}
	}

	at, n := c.replaceSelection([]rune(prefix + body + suffix))
	bodyStart := at + len([]rune(prefix))
	bodyEnd := bodyStart + len([]rune(body))
	if bodyEnd > at+n {
		bodyEnd = at + n
	}
	if bodyStart > bodyEnd {
		bodyStart = bodyEnd
	}
	c.Select(bodyStart, bodyEnd)
}

// listify prefixes each line with a bullet. Lines that already carry one are
// left alone.
func listify(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "- ") {
			continue
		}
		lines[i] = "- " + line
	}
	return strings.Join(lines, "\n")
}
