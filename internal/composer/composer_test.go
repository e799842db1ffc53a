// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"strings"
	"testing"
)

// =============================================================================
// STATE TRANSITION TESTS
// =============================================================================

func TestComposer_InitialState(t *testing.T) {
	c := New()
	if c.State() != StateCollapsed {
		t.Errorf("State = %q, want %q", c.State(), StateCollapsed)
	}
	if c.Draft() != "" {
		t.Errorf("Draft = %q, want empty", c.Draft())
	}
}

func TestComposer_FocusExpands(t *testing.T) {
	c := New()
	c.Focus()
	if c.State() != StateExpanded {
		t.Errorf("State = %q, want %q", c.State(), StateExpanded)
	}
}

func TestComposer_LineBreakWhileCollapsedExpands(t *testing.T) {
	c := New()
	c.Insert("first")

	if submitted := c.Confirm(true); submitted {
		t.Fatal("line break must not submit")
	}
	if c.State() != StateExpanded {
		t.Errorf("State = %q, want %q", c.State(), StateExpanded)
	}
	if c.Draft() != "first\n" {
		t.Errorf("Draft = %q, want %q", c.Draft(), "first\n")
	}
}

func TestComposer_PreviewKeepsDraft(t *testing.T) {
	c := New()
	c.Focus()
	c.Insert("**hello**")

	c.TogglePreview()
	if c.State() != StatePreview {
		t.Fatalf("State = %q, want %q", c.State(), StatePreview)
	}
	if c.Draft() != "**hello**" {
		t.Errorf("Draft = %q after preview on", c.Draft())
	}

	c.TogglePreview()
	if c.State() != StateExpanded {
		t.Errorf("State = %q, want %q", c.State(), StateExpanded)
	}
	if c.Draft() != "**hello**" {
		t.Errorf("Draft = %q after preview off", c.Draft())
	}
}

func TestComposer_PreviewFromCollapsedExpands(t *testing.T) {
	c := New()
	c.TogglePreview()
	if c.Mode() != ModeExpanded || !c.Previewing() {
		t.Errorf("mode = %v preview = %v, want expanded preview", c.Mode(), c.Previewing())
	}
}

func TestComposer_PreviewIsReadOnly(t *testing.T) {
	c := New()
	c.Insert("keep")
	c.TogglePreview()

	c.Insert("x")
	c.Backspace()
	c.Apply(FormatBold)
	c.Confirm(true)

	if c.Draft() != "keep" {
		t.Errorf("Draft = %q, want unchanged while previewing", c.Draft())
	}
}

func TestComposer_BlurCollapsesOnlyWhenEmpty(t *testing.T) {
	c := New()
	c.Focus()
	c.Blur()
	if c.State() != StateCollapsed {
		t.Errorf("empty blur State = %q, want collapsed", c.State())
	}

	c.Focus()
	c.Insert("draft")
	c.Blur()
	if c.State() != StateExpanded {
		t.Errorf("non-empty blur State = %q, want expanded", c.State())
	}
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestComposer_SubmitTrims(t *testing.T) {
	c := New()
	var got []string
	c.OnSubmit = func(text string) { got = append(got, text) }

	c.Focus()
	c.Insert("  hi  ")
	c.TogglePreview()

	if !c.Confirm(false) {
		t.Fatal("Confirm(false) should submit")
	}
	if len(got) != 1 || got[0] != "hi" {
		t.Fatalf("submitted = %q, want [\"hi\"]", got)
	}
	if c.State() != StateCollapsed {
		t.Errorf("State = %q, want collapsed after submit", c.State())
	}
	if c.Draft() != "" || c.Previewing() {
		t.Errorf("draft = %q preview = %v, want cleared", c.Draft(), c.Previewing())
	}
}

func TestComposer_WhitespaceSubmitIsNoop(t *testing.T) {
	tests := []string{"", " ", "\n\n", " \t \n "}

	for _, draft := range tests {
		t.Run("", func(t *testing.T) {
			c := New()
			calls := 0
			c.OnSubmit = func(string) { calls++ }

			c.Focus()
			c.SetDraft(draft)
			before := c.State()

			if c.Confirm(false) {
				t.Error("whitespace-only draft submitted")
			}
			if calls != 0 {
				t.Errorf("OnSubmit called %d times", calls)
			}
			if c.Draft() != draft {
				t.Errorf("Draft = %q, want %q unchanged", c.Draft(), draft)
			}
			if c.State() != before {
				t.Errorf("State = %q, want %q unchanged", c.State(), before)
			}
		})
	}
}

func TestComposer_MultilineSubmit(t *testing.T) {
	c := New()
	var got string
	c.OnSubmit = func(text string) { got = text }

	c.Insert("line one")
	c.Confirm(true)
	c.Insert("line two")
	c.Confirm(false)

	if got != "line one\nline two" {
		t.Errorf("submitted = %q", got)
	}
}

// =============================================================================
// EDITING TESTS
// =============================================================================

func TestComposer_Editing(t *testing.T) {
	c := New()
	c.Insert("helo")
	c.MoveLeft(false)
	c.Insert("l")
	if c.Draft() != "hello" {
		t.Fatalf("Draft = %q, want hello", c.Draft())
	}

	c.MoveEnd(false)
	c.Backspace()
	if c.Draft() != "hell" {
		t.Errorf("Draft = %q after backspace", c.Draft())
	}

	c.MoveHome(false)
	c.Delete()
	if c.Draft() != "ell" {
		t.Errorf("Draft = %q after delete", c.Draft())
	}
}

func TestComposer_SelectionReplace(t *testing.T) {
	c := New()
	c.Insert("hello world")
	c.Select(6, 11)
	if c.SelectedText() != "world" {
		t.Fatalf("SelectedText = %q", c.SelectedText())
	}

	c.Insert("there")
	if c.Draft() != "hello there" {
		t.Errorf("Draft = %q", c.Draft())
	}
	if c.HasSelection() {
		t.Error("selection should collapse after typing")
	}
}

func TestComposer_ExtendSelection(t *testing.T) {
	c := New()
	c.Insert("abc")
	c.MoveLeft(true)
	c.MoveLeft(true)

	if c.SelectedText() != "bc" {
		t.Errorf("SelectedText = %q, want bc", c.SelectedText())
	}

	c.MoveLeft(false)
	if c.HasSelection() || c.Cursor() != 1 {
		t.Errorf("cursor = %d selection = %v, want collapsed at 1", c.Cursor(), c.HasSelection())
	}
}

func TestComposer_HomeEndPerLine(t *testing.T) {
	c := New()
	c.SetDraft("one\ntwo")
	c.MoveHome(false)
	if c.Cursor() != 4 {
		t.Errorf("Home cursor = %d, want 4", c.Cursor())
	}
	line, col := c.CursorPosition()
	if line != 1 || col != 0 {
		t.Errorf("position = %d:%d, want 1:0", line, col)
	}
}

func TestComposer_MaxChars(t *testing.T) {
	c := New()
	c.SetMaxChars(5)
	c.Insert("abcdefgh")
	if c.Draft() != "abcde" {
		t.Errorf("Draft = %q, want capped", c.Draft())
	}
	c.Insert("z")
	if c.Draft() != "abcde" {
		t.Errorf("Draft = %q, want no growth past cap", c.Draft())
	}
}

func TestComposer_Unicode(t *testing.T) {
	c := New()
	c.Insert("héllo 世界")
	c.Backspace()
	if c.Draft() != "héllo 世" {
		t.Errorf("Draft = %q", c.Draft())
	}
	if c.Len() != 7 {
		t.Errorf("Len = %d, want 7", c.Len())
	}
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestComposer_ApplyWrapsSelection(t *testing.T) {
	tests := []struct {
		format    Format
		draft     string
		start     int
		end       int
		want      string
		wantInner string
	}{
		{FormatBold, "make this bold", 10, 14, "make this **bold**", "bold"},
		{FormatItalic, "so very", 3, 7, "so _very_", "very"},
		{FormatCode, "run go test", 4, 11, "run `go test`", "go test"},
		{FormatCode, "a\nb", 0, 3, "```\na\nb\n```", "a\nb"},
		{FormatList, "milk\neggs", 0, 9, "- milk\n- eggs", "- milk\n- eggs"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			c := New()
			c.SetDraft(tt.draft)
			c.Select(tt.start, tt.end)
			c.Apply(tt.format)

			if c.Draft() != tt.want {
				t.Errorf("Draft = %q, want %q", c.Draft(), tt.want)
			}
			if c.SelectedText() != tt.wantInner {
				t.Errorf("SelectedText = %q, want %q", c.SelectedText(), tt.wantInner)
			}
			if c.Mode() != ModeExpanded {
				t.Error("formatting should expand the composer")
			}
		})
	}
}

func TestComposer_ApplyInsertsPlaceholder(t *testing.T) {
	tests := []struct {
		format Format
		want   string
		inner  string
	}{
		{FormatBold, "**bold text**", "bold text"},
		{FormatItalic, "_italic text_", "italic text"},
		{FormatCode, "`code`", "code"},
		{FormatList, "- list item", "list item"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			c := New()
			c.Apply(tt.format)

			if c.Draft() != tt.want {
				t.Errorf("Draft = %q, want %q", c.Draft(), tt.want)
			}
			if c.SelectedText() != tt.inner {
				t.Errorf("SelectedText = %q, want placeholder %q", c.SelectedText(), tt.inner)
			}

			// Typing replaces the placeholder inside the markup.
			c.Insert("x")
			if !strings.Contains(c.Draft(), "x") || strings.Contains(c.Draft(), tt.inner) {
				t.Errorf("Draft = %q after typing over placeholder", c.Draft())
			}
		})
	}
}

func TestComposer_FencedBlockStartsOnNewLine(t *testing.T) {
	c := New()
	c.SetDraft("see: one\ntwo")
	c.Select(5, 12)
	c.Apply(FormatCode)

	if c.Draft() != "see: \n```\none\ntwo\n```" {
		t.Errorf("Draft = %q", c.Draft())
	}
}
