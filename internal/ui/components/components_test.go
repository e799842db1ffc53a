// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/huddle-tui/internal/composer"
	"github.com/jeranaias/huddle-tui/internal/feed"
	"github.com/jeranaias/huddle-tui/internal/model"
	"github.com/jeranaias/huddle-tui/internal/render"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// Styles render as plain text under the ASCII profile, so output can be
// compared directly.
func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ThemeDark)
}

// =============================================================================
// PAINTER TESTS
// =============================================================================

func TestPainter_Paint(t *testing.T) {
	r := render.NewRenderer()
	p := NewPainter(testTheme())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph", "hello **world**", "hello world"},
		{"bullets", "- a\n- b", "• a\n• b"},
		{"ordered", "3. x\n4. y", "3. x\n4. y"},
		{"blockquote", "> quoted", "│ quoted"},
		{"link", "[site](https://x.io)", "site (https://x.io)"},
		{"autolink", "https://x.io", "https://x.io"},
		{"inline code", "run `make`", "run make"},
		{"task", "- [x] done", "• [x] done"},
		{"table", "| a | b |\n|---|---|\n| 1 | 22 |", "a │ b\n──┼───\n1 │ 22"},
		{"raw html", "<b>hi</b>", "<b>hi</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Paint(r.Markdown(tt.in), 40); got != tt.want {
				t.Errorf("Paint(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPainter_Wraps(t *testing.T) {
	p := NewPainter(testTheme())
	doc := render.NewRenderer().Markdown("the quick brown fox jumps over the lazy dog")

	out := p.Paint(doc, 12)
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 12 {
			t.Errorf("line %q is %d cells wide, want <= 12", line, w)
		}
	}
	if strings.Count(out, "\n") < 2 {
		t.Errorf("Paint() = %q, want several lines", out)
	}
}

func TestPainter_HighlightKeepsText(t *testing.T) {
	r := render.NewRenderer()
	p := NewPainter(testTheme())
	msg := model.Message{Body: "Deploy at **noon**", Type: model.TypeText}

	if got := p.Paint(r.Render(msg, "NOON"), 40); got != "Deploy at noon" {
		t.Errorf("Paint() = %q", got)
	}
}

func TestPainter_Placeholder(t *testing.T) {
	r := render.NewRenderer()
	p := NewPainter(testTheme())
	got := p.Paint(r.Render(model.Message{Body: "x", Type: "file"}, ""), 40)
	if got != render.UnsupportedText("file") {
		t.Errorf("Paint() = %q, want placeholder", got)
	}
}

func TestCodeBlock_Render(t *testing.T) {
	cb := NewCodeBlock("go", "fmt.Println(1)")
	out := cb.Render(testTheme())
	if !strings.Contains(out, "go") || !strings.Contains(out, "Println") {
		t.Errorf("Render() = %q", out)
	}

	cb = NewCodeBlock("", "a\nb")
	cb.LineNumbers = true
	out = cb.Render(testTheme())
	if !strings.Contains(out, "1 a") || !strings.Contains(out, "2 b") {
		t.Errorf("Render() with line numbers = %q", out)
	}
}

// =============================================================================
// FEED TESTS
// =============================================================================

func feedMessages() []model.Message {
	base := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	at := func(min int) model.Timestamp { return model.At(base.Add(time.Duration(min) * time.Minute)) }
	return []model.Message{
		{ID: "1", AuthorID: "user-aaaa", Body: "first", Type: model.TypeText, CreatedAt: at(0)},
		{ID: "2", AuthorID: "user-aaaa", Body: "second", Type: model.TypeText, CreatedAt: at(1)},
		{ID: "3", AuthorID: "user-b7c9", Body: "reply", Type: model.TypeText, CreatedAt: at(2)},
		{ID: "4", AuthorID: "user-aaaa", Body: "sending", Type: model.TypeText, CreatedAt: at(3), Status: model.StatusPending},
		{ID: "5", AuthorID: "user-aaaa", Body: "broken", Type: model.TypeText, CreatedAt: at(3), Status: model.StatusFailed},
	}
}

func TestFeed_Render(t *testing.T) {
	f := NewFeed(testTheme(), nil)
	f.Viewer = &model.User{ID: "user-aaaa", Email: "ada@example.com", DisplayName: "Ada"}

	view := feed.Assemble(feedMessages(), "", feed.Options{})
	out, offsets := f.Render(view, 2, 60, time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC))

	if len(offsets) != len(view.Items) {
		t.Fatalf("len(offsets) = %d, want %d", len(offsets), len(view.Items))
	}
	if offsets[0] != 0 {
		t.Errorf("offsets[0] = %d, want 0", offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			t.Errorf("offsets not increasing: %v", offsets)
		}
	}

	// Ada's first two messages share one header; her later run after the
	// reply starts a new one.
	if n := strings.Count(out, "Ada"); n != 2 {
		t.Errorf("Ada header count = %d, want 2\n%s", n, out)
	}
	for _, want := range []string{"User b7c9", "10:00", "sending…", "not sent", "ctrl+r", "▌"} {
		if !strings.Contains(out, want) {
			t.Errorf("feed missing %q\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[offsets[2]], "▌") {
		t.Errorf("selected item line = %q, want gutter", lines[offsets[2]])
	}
}

func TestFeed_EmptyStates(t *testing.T) {
	f := NewFeed(testTheme(), nil)

	out, offsets := f.Render(feed.Assemble(nil, "", feed.Options{}), -1, 60, time.Now())
	if offsets != nil || !strings.Contains(out, "No messages yet") {
		t.Errorf("empty conversation = %q", out)
	}

	out, _ = f.Render(feed.Assemble(feedMessages(), "zebra", feed.Options{}), -1, 60, time.Now())
	if !strings.Contains(out, `No messages match "zebra"`) {
		t.Errorf("no results = %q", out)
	}
}

func TestFeed_CachesBodies(t *testing.T) {
	f := NewFeed(testTheme(), nil)
	view := feed.Assemble(feedMessages(), "", feed.Options{})

	f.Render(view, -1, 60, time.Now())
	n := len(f.cache)
	f.Render(view, -1, 60, time.Now())
	if len(f.cache) != n {
		t.Errorf("cache grew on identical render: %d -> %d", n, len(f.cache))
	}
	f.Render(view, -1, 50, time.Now())
	if len(f.cache) != 2*n {
		t.Errorf("cache = %d entries after width change, want %d", len(f.cache), 2*n)
	}
}

func TestChannelHeader(t *testing.T) {
	th := testTheme()
	ch := &model.Channel{Name: "general", Description: "General discussion"}

	out := ChannelHeader(th, ch, 3, "", 60)
	if !strings.Contains(out, "#general") || !strings.Contains(out, "3 messages") {
		t.Errorf("ChannelHeader() = %q", out)
	}
	if out := ChannelHeader(th, ch, 1, "bug", 60); !strings.Contains(out, "filter: bug · 1 message") {
		t.Errorf("ChannelHeader() with filter = %q", out)
	}
	if out := ChannelHeader(th, nil, 0, "", 60); !strings.Contains(out, "No channel selected") {
		t.Errorf("ChannelHeader(nil) = %q", out)
	}
}

// =============================================================================
// SIDEBAR TESTS
// =============================================================================

func TestSidebar(t *testing.T) {
	s := NewSidebar(testTheme())
	s.SetSize(24, 20)
	s.SetFocused(true)

	workspaces := []model.Workspace{{ID: "w1", Name: "Acme"}, {ID: "w2", Name: "Side"}}
	channels := []model.Channel{{ID: "c1", Name: "general"}, {ID: "c2", Name: "random"}}
	s.SetData(workspaces, "w1", channels, "c2")

	sel, ok := s.Selected()
	if !ok || sel.ID != "c2" || sel.Kind != EntryChannel {
		t.Fatalf("Selected() = %+v, want the active channel", sel)
	}

	s.MoveDown()
	if sel, _ := s.Selected(); sel.ID != "c2" {
		t.Errorf("MoveDown past end moved to %q", sel.ID)
	}
	s.MoveUp()
	s.MoveUp()
	if sel, _ := s.Selected(); sel.ID != "w2" || sel.Kind != EntryWorkspace {
		t.Errorf("Selected() = %+v, want workspace w2", sel)
	}

	// The cursor follows its entry across refreshes.
	s.SetData(append([]model.Workspace{{ID: "w0", Name: "New"}}, workspaces...), "w1", channels, "c2")
	if sel, _ := s.Selected(); sel.ID != "w2" {
		t.Errorf("after SetData Selected() = %q, want w2", sel.ID)
	}

	view := s.View()
	for _, want := range []string{"WORKSPACES", "◆ Acme", "#general", "#random"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q\n%s", want, view)
		}
	}
	for _, line := range strings.Split(view, "\n") {
		if w := lipgloss.Width(line); w > 24 {
			t.Errorf("line %q is %d wide, want <= 24", line, w)
		}
	}
}

func TestSidebar_TruncatesWideNames(t *testing.T) {
	s := NewSidebar(testTheme())
	s.SetSize(16, 0)
	s.SetData([]model.Workspace{{ID: "w", Name: "非常に長いワークスペース名"}}, "w", nil, "")
	for _, line := range strings.Split(s.View(), "\n") {
		if w := lipgloss.Width(line); w > 16 {
			t.Errorf("line %q is %d wide, want <= 16", line, w)
		}
	}
}

// =============================================================================
// COMPOSER VIEW TESTS
// =============================================================================

func TestComposerView_States(t *testing.T) {
	v := NewComposerView(testTheme(), nil)
	v.SetWidth(60)
	v.SetPlaceholder("Message #general")
	c := composer.New()

	if out := v.View(c); !strings.Contains(out, "Message #general") {
		t.Errorf("collapsed view = %q", out)
	}

	c.Focus()
	c.Insert("hello")
	v.SetFocused(true)
	out := v.View(c)
	for _, want := range []string{"hello", "5/8192", "bold"} {
		if !strings.Contains(out, want) {
			t.Errorf("expanded view missing %q\n%s", want, out)
		}
	}

	c.SetDraft("**loud**")
	c.TogglePreview()
	out = v.View(c)
	if !strings.Contains(out, "PREVIEW") || !strings.Contains(out, "loud") || strings.Contains(out, "**") {
		t.Errorf("preview view = %q", out)
	}
}

func TestComposerView_LongDraftWindow(t *testing.T) {
	v := NewComposerView(testTheme(), nil)
	v.SetWidth(40)
	v.SetFocused(true)
	c := composer.New()
	c.Focus()
	c.SetDraft(strings.Repeat("row\n", 20) + "last")

	out := v.View(c)
	if !strings.Contains(out, "last") {
		t.Errorf("window should follow the cursor to the last line\n%s", out)
	}
	if n := strings.Count(out, "row"); n > maxDraftLines {
		t.Errorf("showed %d draft lines, want <= %d", n, maxDraftLines)
	}
}

// =============================================================================
// ASSISTANT PANEL TESTS
// =============================================================================

func TestAssistantPanel_Transcript(t *testing.T) {
	p := NewAssistantPanel(testTheme())
	p.SetWidth(50)

	if out := p.Transcript(nil, false, ""); !strings.Contains(out, "Ask the assistant") {
		t.Errorf("empty transcript = %q", out)
	}

	msgs := []model.AIMessage{
		{ID: "1", Role: model.AIRoleUser, Content: "capital of France?"},
		{ID: "2", Role: model.AIRoleAssistant, Content: "**Paris**"},
		{ID: "3", Role: model.AIRoleAssistant, Content: "Assistant unavailable", Synthetic: true},
	}
	out := p.Transcript(msgs, true, "*")
	for _, want := range []string{"You", "capital of France?", "Paris", "Assistant unavailable", "thinking"} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "**Paris**") {
		t.Error("assistant markdown was not rendered")
	}
}

// =============================================================================
// TOAST TESTS
// =============================================================================

func TestToastManager(t *testing.T) {
	m := NewToastManager()
	if m.HasToasts() {
		t.Error("new manager should have no toasts")
	}

	first := m.AddError("first")
	m.AddStatus("second")
	toasts := m.Toasts()
	if len(toasts) != 2 || toasts[0].Message != "second" {
		t.Fatalf("Toasts() = %+v, want newest first", toasts)
	}

	m.Remove(first)
	if toasts := m.Toasts(); len(toasts) != 1 || toasts[0].Message != "second" {
		t.Errorf("after Remove: %+v", toasts)
	}

	m.DismissNewest()
	if m.HasToasts() {
		t.Error("DismissNewest should remove the last toast")
	}

	for i := 0; i < maxToasts+3; i++ {
		m.AddWarning("w")
	}
	if n := len(m.Toasts()); n != maxToasts {
		t.Errorf("len(Toasts) = %d, want %d", n, maxToasts)
	}
}

func TestToastManager_Tick(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("short")
	m.AddError("long")

	now := time.Now()
	if !m.Tick(now.Add(DefaultToastDuration + time.Second)) {
		t.Fatal("error toast should outlive the status toast")
	}
	if toasts := m.Toasts(); len(toasts) != 1 || toasts[0].Kind != ToastKindError {
		t.Errorf("after Tick: %+v", toasts)
	}
	if m.Tick(now.Add(ErrorToastDuration + time.Second)) {
		t.Error("all toasts should have expired")
	}
}

func TestRenderToast(t *testing.T) {
	toast := NewErrorToast("Could not delete message: store unavailable")
	out := RenderToast(testTheme(), toast, 40, toast.CreatedAt)
	if !strings.Contains(out, styles.StatusIndicators.Error) || !strings.Contains(out, "[esc] dismiss") {
		t.Errorf("RenderToast() = %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 36 {
			t.Errorf("line %q is %d wide, want <= 36", line, w)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"a b c", 10, "a b c"},
		{"aaa bbb ccc", 7, "aaa bbb\nccc"},
		{"abcdefghij", 5, "abcd…"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := wrapText(tt.in, tt.width); got != tt.want {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar(t *testing.T) {
	bar := StatusBar{
		User:      "Ada",
		Workspace: "Acme",
		Shortcuts: []Shortcut{{"tab", "focus"}, {"ctrl+f", "filter"}, {"ctrl+a", "assistant"}},
	}
	th := testTheme()

	wide := bar.View(th, 100)
	if !strings.Contains(wide, "Ada @ Acme") || !strings.Contains(wide, "ctrl+a assistant") {
		t.Errorf("wide bar = %q", wide)
	}
	narrow := bar.View(th, 30)
	if strings.Contains(narrow, "assistant") {
		t.Errorf("narrow bar should drop hints: %q", narrow)
	}
	if w := lipgloss.Width(narrow); w != 30 {
		t.Errorf("narrow bar width = %d, want 30", w)
	}
}
