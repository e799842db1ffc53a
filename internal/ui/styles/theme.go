// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Name is the configured theme; IsDark is what it resolved to.
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	App lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarFocused      lipgloss.Style
	SidebarHeading      lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemActive   lipgloss.Style
	SidebarItemSelected lipgloss.Style

	// ==========================================================================
	// FEED STYLES
	// ==========================================================================

	ChannelHeader   lipgloss.Style
	ChannelTopic    lipgloss.Style
	Author          lipgloss.Style
	AuthorSelf      lipgloss.Style
	Avatar          lipgloss.Style
	Timestamp       lipgloss.Style
	MessageBody     lipgloss.Style
	MessageSelected lipgloss.Style
	Pending         lipgloss.Style
	Failed          lipgloss.Style
	EmptyState      lipgloss.Style

	// ==========================================================================
	// MARKDOWN STYLES
	// ==========================================================================

	Bold          lipgloss.Style
	Italic        lipgloss.Style
	Strike        lipgloss.Style
	InlineCode    lipgloss.Style
	Mark          lipgloss.Style
	Link          lipgloss.Style
	Heading       lipgloss.Style
	Blockquote    lipgloss.Style
	Placeholder   lipgloss.Style
	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	TableBorder   lipgloss.Style

	// ==========================================================================
	// COMPOSER STYLES
	// ==========================================================================

	Composer            lipgloss.Style
	ComposerFocused     lipgloss.Style
	ComposerPlaceholder lipgloss.Style
	ComposerCursor      lipgloss.Style
	ComposerSelection   lipgloss.Style
	ComposerToolbar     lipgloss.Style
	CharCount           lipgloss.Style
	CharCountWarning    lipgloss.Style
	CharCountDanger     lipgloss.Style
	PreviewBadge        lipgloss.Style

	// ==========================================================================
	// ASSISTANT PANEL STYLES
	// ==========================================================================

	AssistantPanel     lipgloss.Style
	AssistantTitle     lipgloss.Style
	AssistantUser      lipgloss.Style
	AssistantReply     lipgloss.Style
	AssistantSynthetic lipgloss.Style

	// ==========================================================================
	// STATUS BAR, DIALOG AND SEARCH STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
	SearchBox    lipgloss.Style
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
}

// NewTheme creates a theme. "light" and "dark" force the background used to
// resolve adaptive colors; anything else asks the terminal.
func NewTheme(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	isDark := true
	switch name {
	case ThemeLight:
		isDark = false
	case ThemeDark:
	default:
		name = ThemeAuto
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarFocused = t.Sidebar.
		BorderForeground(Cyan)

	t.SidebarHeading = lipgloss.NewStyle().
		Foreground(TextMuted).
		Bold(true).
		MarginTop(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarItemActive = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.SidebarItemSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true)

	// Feed
	t.ChannelHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.ChannelTopic = lipgloss.NewStyle().
		Foreground(TextMuted).
		Bold(false)

	t.Author = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.AuthorSelf = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Avatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.MessageBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.MessageSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Purple)

	t.Pending = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Failed = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Markdown
	t.Bold = lipgloss.NewStyle().Bold(true)
	t.Italic = lipgloss.NewStyle().Italic(true)
	t.Strike = lipgloss.NewStyle().Strikethrough(true)

	t.InlineCode = lipgloss.NewStyle().
		Foreground(Rose).
		Background(SurfaceDim)

	t.Mark = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(AmberDeep).
		Bold(true)

	t.Link = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.Heading = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Blockquote = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 1).
		Bold(true)

	t.TableBorder = lipgloss.NewStyle().
		Foreground(Overlay)

	// Composer
	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.ComposerFocused = t.Composer.
		BorderForeground(Cyan)

	t.ComposerPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ComposerCursor = lipgloss.NewStyle().
		Reverse(true)

	t.ComposerSelection = lipgloss.NewStyle().
		Background(SelectionBg)

	t.ComposerToolbar = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.CharCount = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Right)

	t.CharCountWarning = lipgloss.NewStyle().
		Foreground(Amber).
		Align(lipgloss.Right)

	t.CharCountDanger = lipgloss.NewStyle().
		Foreground(Rose).
		Align(lipgloss.Right)

	t.PreviewBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1).
		Bold(true)

	// Assistant panel
	t.AssistantPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Purple).
		Padding(0, 1)

	t.AssistantTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.AssistantUser = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.AssistantReply = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.AssistantSynthetic = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.SearchBox = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Amber)

	t.Dialog = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.DialogTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	// Toasts
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)

	t.ToastError = toast.
		Foreground(Rose).
		BorderForeground(Rose)

	t.ToastWarning = toast.
		Foreground(Amber).
		BorderForeground(Amber)

	t.ToastInfo = toast.
		Foreground(Cyan).
		BorderForeground(Cyan)

	t.ToastSuccess = toast.
		Foreground(Emerald).
		BorderForeground(Emerald)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns: feed only
	LayoutMedium                   // 60-100 columns: sidebar + feed
	LayoutWide                     // > 100 columns: room for the assistant panel
)
