// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan color)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose/red color)
	ToastKindError
	// ToastKindWarning is a warning toast (amber color)
	ToastKindWarning
	// ToastKindSuccess is a success toast (emerald color)
	ToastKindSuccess
)

// DefaultToastDuration is the default auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts (longer to read).
const ErrorToastDuration = 8 * time.Second

// WarningToastDuration is the auto-dismiss duration for warning toasts.
const WarningToastDuration = 6 * time.Second

// maxToasts is how many toasts are visible at once.
const maxToasts = 4

// =============================================================================
// TOAST
// =============================================================================

// Toast is a non-blocking notification shown in the bottom-right corner.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

func newToast(kind ToastKind, message string, d time.Duration) Toast {
	return Toast{
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// NewErrorToast creates a new error toast with default 8-second duration.
func NewErrorToast(message string) Toast {
	return newToast(ToastKindError, message, ErrorToastDuration)
}

// NewWarningToast creates a new warning toast with default 6-second duration.
func NewWarningToast(message string) Toast {
	return newToast(ToastKindWarning, message, WarningToastDuration)
}

// NewStatusToast creates a new status/info toast with default 4-second duration.
func NewStatusToast(message string) Toast {
	return newToast(ToastKindStatus, message, DefaultToastDuration)
}

// NewSuccessToast creates a new success toast with default 4-second duration.
func NewSuccessToast(message string) Toast {
	return newToast(ToastKindSuccess, message, DefaultToastDuration)
}

// ExpiredAt reports whether the toast should be dismissed at now.
func (t Toast) ExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the visible toasts, newest first. It is safe for
// concurrent use so background callbacks can add toasts.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1}
}

// Add adds a toast and returns its ID. The oldest toast is dropped once the
// stack is full.
func (m *ToastManager) Add(toast Toast) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	toast.ID = m.nextID
	m.nextID++
	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	return toast.ID
}

// AddError adds an error toast.
func (m *ToastManager) AddError(message string) int {
	return m.Add(NewErrorToast(message))
}

// AddWarning adds a warning toast.
func (m *ToastManager) AddWarning(message string) int {
	return m.Add(NewWarningToast(message))
}

// AddStatus adds a status toast.
func (m *ToastManager) AddStatus(message string) int {
	return m.Add(NewStatusToast(message))
}

// AddSuccess adds a success toast.
func (m *ToastManager) AddSuccess(message string) int {
	return m.Add(NewSuccessToast(message))
}

// Remove removes a toast by ID.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissNewest removes the most recent toast.
func (m *ToastManager) DismissNewest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Tick removes toasts expired at now and reports whether any remain.
func (m *ToastManager) Tick(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.ExpiredAt(now) {
			active = append(active, toast)
		}
	}
	m.toasts = active
	return len(m.toasts) > 0
}

// Toasts returns a copy of the current toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// HasToasts returns true if there are any active toasts.
func (m *ToastManager) HasToasts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd returns a command that ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast no wider than width cells.
func RenderToast(theme *styles.Theme, toast Toast, width int, now time.Time) string {
	maxWidth := 50
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	var style lipgloss.Style
	var icon string
	switch toast.Kind {
	case ToastKindError:
		style, icon = theme.ToastError, styles.StatusIndicators.Error
	case ToastKindWarning:
		style, icon = theme.ToastWarning, styles.StatusIndicators.Warning
	case ToastKindSuccess:
		style, icon = theme.ToastSuccess, styles.StatusIndicators.Success
	default:
		style, icon = theme.ToastInfo, styles.StatusIndicators.Info
	}

	// Border and padding take four cells.
	textWidth := maxWidth - 4
	body := wrapText(icon+" "+toast.Message, textWidth)

	hint := "[esc] dismiss"
	if secs := int((toast.Duration - now.Sub(toast.CreatedAt)).Seconds()); secs > 0 {
		hint += "  " + strconv.Itoa(secs) + "s"
	}
	body += "\n" + theme.ShortcutDesc.Render(hint)

	return style.Render(body)
}

// RenderToastStack renders toasts stacked in the bottom-right corner of a
// width x height area.
func RenderToastStack(theme *styles.Theme, toasts []Toast, width, height int, now time.Time) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(theme, toasts[i], width, now))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, stack)
	}
	return stack
}

// wrapText word-wraps plain text by display width. Words wider than width
// are truncated.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range words {
		w := runewidth.StringWidth(word)
		if w > width {
			word = runewidth.Truncate(word, width, "…")
			w = runewidth.StringWidth(word)
		}
		switch {
		case lineWidth == 0:
			line.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= width:
			line.WriteByte(' ')
			line.WriteString(word)
			lineWidth += 1 + w
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineWidth = w
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
