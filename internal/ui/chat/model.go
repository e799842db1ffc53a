// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/huddle-tui/internal/assistant"
	"github.com/jeranaias/huddle-tui/internal/auth"
	"github.com/jeranaias/huddle-tui/internal/composer"
	"github.com/jeranaias/huddle-tui/internal/config"
	"github.com/jeranaias/huddle-tui/internal/conversation"
	"github.com/jeranaias/huddle-tui/internal/feed"
	"github.com/jeranaias/huddle-tui/internal/inference"
	"github.com/jeranaias/huddle-tui/internal/navigator"
	"github.com/jeranaias/huddle-tui/internal/render"
	"github.com/jeranaias/huddle-tui/internal/storage"
	"github.com/jeranaias/huddle-tui/internal/ui/components"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus names the pane receiving keys.
type Focus int

const (
	FocusComposer Focus = iota
	FocusFeed
	FocusSidebar
	FocusAssistant
)

// String returns the string representation of the focus.
func (f Focus) String() string {
	switch f {
	case FocusComposer:
		return "composer"
	case FocusFeed:
		return "feed"
	case FocusSidebar:
		return "sidebar"
	case FocusAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// dialogKind names the modal currently shown.
type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogDelete
	dialogNewChannel
	dialogNewWorkspace
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options holds the collaborators of the chat model.
type Options struct {
	// Store is the data client. Required.
	Store storage.Client

	// Auth delivers sign-in state. Required.
	Auth auth.Provider

	// Generator backs the assistant panel. Nil disables the panel.
	Generator inference.Generator

	// Config supplies UI and assistant settings. Nil uses config.Default.
	Config *config.Config

	// Logger receives diagnostics. Nil uses slog.Default.
	Logger *slog.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea root model: sidebar, feed, composer and the
// optional assistant panel.
//
// Store and inference calls run as tea.Cmds; the controller and navigator
// guard their own state, so the model only reads them when rendering.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
	cfg    *config.Config

	// Collaborators
	auth        auth.Provider
	authCh      chan auth.State
	unsubscribe func()
	authState   auth.State
	nav         *navigator.Navigator
	conv        *conversation.Controller
	assistant   *assistant.Session
	draft       *composer.Composer
	outbox      *outbox

	// Styling
	theme    *styles.Theme
	renderer *render.Renderer
	keyMap   KeyMap

	// Dimensions
	width  int
	height int

	// UI Components
	viewport    viewport.Model
	filter      textinput.Model
	aiInput     textinput.Model
	dialogInput textinput.Model
	spinner     spinner.Model

	sidebar      *components.Sidebar
	feedView     *components.Feed
	composerView *components.ComposerView
	aiPanel      *components.AssistantPanel
	toasts       *components.ToastManager

	// Feed state
	view       feed.View
	offsets    []int
	selectedID string

	// Mode flags
	focus        Focus
	filtering    bool
	showAI       bool
	dialog       dialogKind
	deleteID     string
	reloading    bool
	inflight     int
	toastTicking bool
	quitting     bool
}

// New creates the root model and subscribes to auth changes. Call Close
// when the program exits.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	theme := styles.NewTheme(cfg.UI.Theme)
	renderer := render.NewRenderer()
	toasts := components.NewToastManager()

	conv := conversation.New(opts.Store, nil,
		conversation.WithLimit(cfg.Store.MessageLimit),
		conversation.WithLogger(logger),
		conversation.WithNotifier(func(err error) {
			toasts.AddError(notificationText(err))
		}),
	)

	var session *assistant.Session
	if opts.Generator != nil && cfg.Assistant.Enabled {
		session = assistant.NewSession(opts.Generator,
			assistant.WithMaxTokens(cfg.Assistant.MaxTokens),
			assistant.WithHistory(cfg.Assistant.HistoryTurns),
			assistant.WithRateLimit(cfg.Assistant.RequestsPerMinute),
			assistant.WithLogger(logger),
		)
	}

	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.Placeholder = "text to match"
	filter.CharLimit = 200

	aiInput := textinput.New()
	aiInput.Prompt = "> "
	aiInput.Placeholder = "Ask the assistant…"
	aiInput.CharLimit = 4096

	dialogInput := textinput.New()
	dialogInput.Prompt = "> "
	dialogInput.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.Spinner

	feedView := components.NewFeed(theme, renderer)
	feedView.ShowTimestamps = cfg.UI.ShowTimestamps
	feedView.Compact = cfg.UI.CompactMode

	sidebar := components.NewSidebar(theme)
	sidebar.SetLoading(true)

	draft := composer.New()
	out := &outbox{}
	draft.OnSubmit = out.push

	m := Model{
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
		cfg:          cfg,
		auth:         opts.Auth,
		authCh:       make(chan auth.State, 16),
		authState:    auth.State{Loading: true},
		nav:          navigator.New(opts.Store, logger),
		conv:         conv,
		assistant:    session,
		draft:        draft,
		outbox:       out,
		theme:        theme,
		renderer:     renderer,
		keyMap:       DefaultKeyMap(),
		viewport:     viewport.New(0, 0),
		filter:       filter,
		aiInput:      aiInput,
		dialogInput:  dialogInput,
		spinner:      sp,
		sidebar:      sidebar,
		feedView:     feedView,
		composerView: components.NewComposerView(theme, renderer),
		aiPanel:      components.NewAssistantPanel(theme),
		toasts:       toasts,
		focus:        FocusComposer,
	}

	m.composerView.SetFocused(true)

	authCh := m.authCh
	m.unsubscribe = opts.Auth.Subscribe(func(st auth.State) {
		select {
		case authCh <- st:
		case <-ctx.Done():
		}
	})
	return m
}

// Init starts the auth listener, the login attempt and the poll timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForAuth(m.ctx, m.authCh),
		m.loginCmd(),
		m.spinner.Tick,
		pollCmd(m.pollInterval()),
	)
}

// Close cancels in-flight work and stops listening for auth changes.
func (m Model) Close() {
	m.cancel()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if next.toasts.HasToasts() && !next.toastTicking {
		next.toastTicking = true
		cmd = tea.Batch(cmd, components.ToastTickCmd())
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refreshFeed()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case authStateMsg:
		return m.handleAuthState(msg)

	case loginDoneMsg:
		if !quiet(msg.Err) {
			m.logger.Warn("login_failed", "error", msg.Err)
			m.toasts.AddWarning("Not signed in: " + msg.Err.Error())
		}
		return m, nil

	case navigatedMsg:
		return m.handleNavigated(msg)

	case channelLoadedMsg:
		return m.handleChannelLoaded(msg)

	case reloadedMsg:
		m.reloading = false
		if !quiet(msg.Err) && !isStale(msg.Err) {
			m.logger.Warn("reload_failed", "channel_id", m.conv.ChannelID(), "error", msg.Err)
		}
		m.refreshFeed()
		return m, nil

	case sentMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		if !quiet(msg.Err) {
			m.logger.Warn("send_failed", "message_id", msg.Message.ID, "error", msg.Err)
		}
		m.refreshFeed()
		return m, nil

	case deletedMsg:
		return m.handleDeleted(msg)

	case assistantReplyMsg:
		return m, nil

	case pollTickMsg:
		return m.handlePoll()

	case ConfigChangedMsg:
		return m.handleConfigChanged(msg)

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return m, components.ToastTickCmd()
		}
		m.toastTicking = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.refreshFeed()
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleAuthState(msg authStateMsg) (Model, tea.Cmd) {
	m.authState = msg.State
	m.conv.SetViewer(msg.State.User)
	m.feedView.Viewer = msg.State.User
	m.sidebar.SetLoading(msg.State.Loading)
	m.logger.Debug("auth_state_changed",
		"authenticated", msg.State.Authenticated(),
		"loading", msg.State.Loading)

	return m, tea.Batch(
		m.handleAuthCmd(msg.State),
		waitForAuth(m.ctx, m.authCh),
	)
}

func (m Model) handleNavigated(msg navigatedMsg) (Model, tea.Cmd) {
	if !quiet(msg.Err) && !isStale(msg.Err) {
		m.logger.Warn("navigation_failed", "action", msg.Action, "error", msg.Err)
		m.toasts.AddWarning("Could not " + msg.Action + ": " + msg.Err.Error())
	}
	return m, m.syncNavigation()
}

// syncNavigation copies the navigator state into the sidebar and switches
// the conversation when the active channel moved.
func (m *Model) syncNavigation() tea.Cmd {
	snap := m.nav.Snapshot()

	var wsID, chID string
	if snap.Workspace != nil {
		wsID = snap.Workspace.ID
	}
	if snap.Channel != nil {
		chID = snap.Channel.ID
		m.composerView.SetPlaceholder("Message " + snap.Channel.DisplayName())
	} else {
		m.composerView.SetPlaceholder("Write a message…")
	}
	m.sidebar.SetLoading(snap.Loading || m.authState.Loading)
	m.sidebar.SetData(snap.Workspaces, wsID, snap.Channels, chID)

	if chID == m.conv.ChannelID() {
		return nil
	}
	m.selectedID = ""
	m.reloading = false
	return m.switchChannelCmd(chID)
}

func (m Model) handleChannelLoaded(msg channelLoadedMsg) (Model, tea.Cmd) {
	if isStale(msg.Err) {
		return m, nil
	}
	if !quiet(msg.Err) {
		m.logger.Warn("channel_load_failed", "channel_id", msg.ChannelID, "error", msg.Err)
	}
	m.layout()
	m.refreshFeed()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleDeleted(msg deletedMsg) (Model, tea.Cmd) {
	switch {
	case msg.Err == nil:
		if m.selectedID == msg.ID {
			m.selectedID = ""
		}
		m.toasts.AddStatus("Message deleted")
	case isReported(msg.Err):
		// The controller's notifier already raised a toast.
	default:
		m.toasts.AddWarning(notificationText(msg.Err))
	}
	m.refreshFeed()
	return m, nil
}

func (m Model) handlePoll() (Model, tea.Cmd) {
	cmds := []tea.Cmd{pollCmd(m.pollInterval())}
	if m.authState.Authenticated() && !m.nav.Loading() {
		cmds = append(cmds, m.refreshCmd())
	}
	if m.conv.ChannelID() != "" && !m.reloading && !m.conv.Loading() {
		m.reloading = true
		cmds = append(cmds, m.reloadCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleConfigChanged(msg ConfigChangedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("config_reload_failed", "error", msg.Err)
		m.toasts.AddWarning("Config not reloaded: " + msg.Err.Error())
		return m, nil
	}
	if msg.Config == nil {
		return m, nil
	}
	wasPolling := m.pollInterval() > 0
	m.applyUIConfig(msg.Config)
	m.logger.Info("config_reloaded")
	m.toasts.AddStatus("Settings reloaded")

	// A running timer picks up the new interval on its next tick.
	if !wasPolling {
		return m, pollCmd(m.pollInterval())
	}
	return m, nil
}

// applyUIConfig applies the hot-reloadable settings. Store, identity and
// assistant settings take effect on the next start.
func (m *Model) applyUIConfig(cfg *config.Config) {
	prev := m.cfg
	m.cfg = cfg
	if prev == nil || prev.UI.Theme != cfg.UI.Theme {
		m.setTheme(styles.NewTheme(cfg.UI.Theme))
	}
	m.feedView.ShowTimestamps = cfg.UI.ShowTimestamps
	m.feedView.Compact = cfg.UI.CompactMode
	m.layout()
	m.refreshFeed()
}

func (m *Model) setTheme(theme *styles.Theme) {
	theme.SetSize(m.width, m.height)
	m.theme = theme
	m.spinner.Style = theme.Spinner
	m.feedView.SetTheme(theme)
	m.sidebar.SetTheme(theme)
	m.composerView.SetTheme(theme)
	m.aiPanel.SetTheme(theme)
}

// =============================================================================
// FEED
// =============================================================================

// refreshFeed re-assembles and re-renders the feed from the controller,
// keeping the selection on the same message and following new messages
// when the viewport was at the bottom.
func (m *Model) refreshFeed() {
	m.view = feed.Assemble(m.conv.Messages(), m.filterText(), feed.Options{
		GroupFullHistory: m.cfg.UI.GroupFullHistory,
	})

	selected := -1
	if m.focus == FocusFeed {
		selected = m.selectedIndex()
	}
	if m.viewport.Width <= 0 {
		return
	}

	atBottom := m.viewport.AtBottom()
	content, offsets := m.feedView.Render(m.view, selected, m.viewport.Width, time.Now())
	m.offsets = offsets
	m.viewport.SetContent(content)
	if selected >= 0 {
		m.scrollToSelected()
	} else if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) filterText() string {
	if !m.filtering {
		return ""
	}
	return m.filter.Value()
}

// selectedIndex maps the selected message to its item index, or -1.
func (m *Model) selectedIndex() int {
	if m.selectedID == "" {
		return -1
	}
	for i, item := range m.view.Items {
		if item.Message.ID == m.selectedID {
			return i
		}
	}
	return -1
}

func (m *Model) selectIndex(i int) {
	if len(m.view.Items) == 0 {
		m.selectedID = ""
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.view.Items) {
		i = len(m.view.Items) - 1
	}
	m.selectedID = m.view.Items[i].Message.ID
	m.refreshFeed()
}

// scrollToSelected moves the viewport so the selected item is visible.
func (m *Model) scrollToSelected() {
	i := m.selectedIndex()
	if i < 0 || i >= len(m.offsets) {
		return
	}
	top := m.offsets[i]
	bottom := m.viewport.TotalLineCount()
	if i+1 < len(m.offsets) {
		bottom = m.offsets[i+1]
	}
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

// busy reports whether background work is in flight and the view should
// keep refreshing on spinner ticks.
func (m *Model) busy() bool {
	if m.inflight > 0 || m.conv.Loading() || m.nav.Loading() {
		return true
	}
	return m.assistant != nil && m.assistant.Busy()
}

// pollInterval returns the reload period. Zero disables polling.
func (m *Model) pollInterval() time.Duration {
	if m.cfg.UI.PollIntervalSecs <= 0 {
		return 0
	}
	return time.Duration(m.cfg.UI.PollIntervalSecs) * time.Second
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Focus returns the focused pane.
func (m Model) Focus() Focus { return m.focus }

// Composer returns the draft state machine.
func (m Model) Composer() *composer.Composer { return m.draft }

// Conversation returns the conversation controller.
func (m Model) Conversation() *conversation.Controller { return m.conv }

// Navigator returns the workspace navigator.
func (m Model) Navigator() *navigator.Navigator { return m.nav }

// Toasts returns the visible toasts, newest first.
func (m Model) Toasts() []components.Toast { return m.toasts.Toasts() }

// FeedView returns the assembled feed.
func (m Model) FeedView() feed.View { return m.view }

// AssistantOpen reports whether the assistant panel is shown.
func (m Model) AssistantOpen() bool { return m.showAI }
