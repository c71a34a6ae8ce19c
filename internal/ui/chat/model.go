// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversational view for the buddy TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/audio"
	"github.com/jeranaias/buddy-tui/internal/commands"
	"github.com/jeranaias/buddy-tui/internal/config"
	"github.com/jeranaias/buddy-tui/internal/history"
	"github.com/jeranaias/buddy-tui/internal/model"
	"github.com/jeranaias/buddy-tui/internal/registry"
	"github.com/jeranaias/buddy-tui/internal/teach"
	"github.com/jeranaias/buddy-tui/internal/ui/styles"
)

// greeting opens every fresh transcript. It is the single system message the
// log resets to on /new and after deleting the active session.
const greeting = "Hi! I'm your student. Teach me something, or just chat. Type /help to see what I can do."

// sidebarWidth is the fixed column width of the session list.
const sidebarWidth = 28

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateIdle    State = iota // Ready for input
	StateSending              // A chat turn is in flight
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options carries the constructed dependencies for the chat model. Nothing
// here is a global; main builds everything once and hands it over.
type Options struct {
	Client  *api.Client
	Config  *config.Config
	Theme   *styles.Theme
	Audio   *audio.Controller
	History *history.Store
}

// Model is the Bubble Tea model for the chat view. It owns the transcript
// and the active-session pointer; every mutation happens in the update loop.
type Model struct {
	// State
	state State

	// uploading gates document uploads; at most one batch is in flight, and
	// uploads are refused while a chat turn is sending.
	uploading bool

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Dependencies
	client *api.Client
	cfg    *config.Config

	// Conversation
	transcript *model.Transcript
	sessions   *registry.Registry
	teach      *teach.Controller
	audio      *audio.Controller

	// Slash commands
	cmdRegistry *commands.Registry
	parser      *commands.Parser
	cmdCtx      *commands.Context

	// Prompt history recall. recall[0] is the newest stored prompt;
	// recallIdx is -1 while not browsing.
	historyStore *history.Store
	recall       []string
	recallIdx    int
	draft        string

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering for assistant replies. Rebuilt on resize.
	mdRenderer *glamour.TermRenderer

	// Sidebar
	showSidebar bool

	// Command palette (suggestions while typing a slash command)
	paletteVisible bool
	paletteItems   []*commands.Command
	paletteIdx     int

	// Transient status bar message
	statusMsg string
}

// New creates a new chat model from constructed dependencies.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Teach me something... (/help for commands)"
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII spinner frames keep the indicator readable on plain terminals.
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	transcript := model.NewTranscript(model.NewSystemMessage(greeting))
	sessions := registry.New()
	teachCtl := teach.NewController()

	cmdRegistry := commands.NewRegistry()
	parser := commands.NewParser(cmdRegistry)
	cmdCtx := commands.NewContext(opts.Client, opts.Config, sessions, teachCtl, opts.Audio, transcript)

	showSidebar := true
	if opts.Config != nil {
		showSidebar = opts.Config.UI.ShowSidebar
	}

	return Model{
		state:        StateIdle,
		theme:        opts.Theme,
		client:       opts.Client,
		cfg:          opts.Config,
		transcript:   transcript,
		sessions:     sessions,
		teach:        teachCtl,
		audio:        opts.Audio,
		cmdRegistry:  cmdRegistry,
		parser:       parser,
		cmdCtx:       cmdCtx,
		historyStore: opts.History,
		recallIdx:    -1,
		viewport:     vp,
		input:        ti,
		spinner:      sp,
		showSidebar:  showSidebar,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init loads the session list, syncs the teach-mode flag, and warms the
// prompt recall buffer. All three are best-effort; the view is usable before
// any of them answer.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		registry.ListCmd(m.client),
		teach.RefreshCmd(m.client),
	}
	if cmd := LoadHistoryCmd(m.historyStore); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model. Dispatch only; the handlers
// live in update.go.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state == StateSending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.updateViewport()
			return m, cmd
		}
		return m, nil

	case ChatResultMsg:
		return m.handleChatResult(msg)

	case HistoryLoadedMsg:
		m.recall = msg.Prompts
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	// Slash command outcomes
	case commands.SystemNoticeMsg:
		m.appendSystem(msg.Content)
		return m, nil

	case commands.NewChatMsg:
		return m.handleNewChat()

	case commands.StartRecordingMsg:
		return m.handleStartRecording(msg)

	case commands.UploadRequestMsg:
		return m.handleUploadRequest(msg)

	case commands.DocumentsUploadedMsg:
		return m.handleDocumentsUploaded(msg)

	case commands.TopicSetMsg:
		return m.handleTopicSet(msg)

	case commands.SummaryMsg:
		return m.handleSummary(msg)

	case commands.SearchResultsMsg:
		return m.handleSearchResults(msg)

	case commands.MemoriesMsg:
		return m.handleMemories(msg)

	case commands.MemoryResetMsg:
		return m.handleMemoryReset(msg)

	// Session registry outcomes
	case registry.SessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)

	case registry.SessionCreatedMsg:
		return m.handleSessionCreated(msg)

	case registry.SessionSelectedMsg:
		return m.handleSessionSelected(msg)

	case registry.SessionRenamedMsg:
		return m.handleSessionRenamed(msg)

	case registry.SessionDeletedMsg:
		return m.handleSessionDeleted(msg)

	// Teach mode outcomes
	case teach.StateMsg:
		return m.handleTeachState(msg)

	case teach.ToggledMsg:
		return m.handleTeachToggled(msg)

	case teach.ExpireMsg:
		m.teach.Expire(msg)
		return m, nil

	// Audio outcomes
	case audio.TranscriptionMsg:
		return m.handleTranscription(msg)

	case audio.PlaybackDoneMsg:
		return m.handlePlaybackDone(msg)
	}

	return m, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// GetState returns the current chat state.
func (m *Model) GetState() State {
	return m.state
}

// GetTranscript returns the message log.
func (m *Model) GetTranscript() *model.Transcript {
	return m.transcript
}

// GetSessions returns the session registry.
func (m *Model) GetSessions() *registry.Registry {
	return m.sessions
}

// GetTeach returns the teach-mode controller.
func (m *Model) GetTeach() *teach.Controller {
	return m.teach
}

// InputValue returns the current input line.
func (m *Model) InputValue() string {
	return m.input.Value()
}
