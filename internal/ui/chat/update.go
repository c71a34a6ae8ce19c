// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversational view for the buddy TUI.
package chat

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/audio"
	"github.com/jeranaias/buddy-tui/internal/commands"
	"github.com/jeranaias/buddy-tui/internal/model"
	"github.com/jeranaias/buddy-tui/internal/registry"
	"github.com/jeranaias/buddy-tui/internal/teach"
)

// =============================================================================
// LAYOUT
// =============================================================================

// handleResize recomputes the layout and rebuilds the markdown renderer for
// the new wrap width.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	// header + input border box + status bar
	chromeHeight := 5
	m.viewport.Width = m.transcriptWidth()
	m.viewport.Height = m.height - chromeHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.Width = m.width - 6

	wrap := m.viewport.Width - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		slog.Warn("markdown renderer init failed", "error", err)
		m.mdRenderer = nil
	} else {
		m.mdRenderer = renderer
	}

	m.updateViewport()
	return m, nil
}

// transcriptWidth is the viewport width after the sidebar takes its column.
func (m Model) transcriptWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// sidebarVisible reports whether the sidebar is both enabled and fits.
func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.width >= sidebarWidth+40
}

// =============================================================================
// KEYBOARD INPUT
// =============================================================================

// handleKey processes one key press.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit

	case "ctrl+s":
		m.showSidebar = !m.showSidebar
		return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})

	case "esc":
		if m.paletteVisible {
			m.paletteVisible = false
			return m, nil
		}
		return m, nil

	case "tab":
		if m.paletteVisible && len(m.paletteItems) > 0 {
			m.completeFromPalette()
			return m, nil
		}
		return m, nil

	case "up":
		if m.paletteVisible {
			if m.paletteIdx > 0 {
				m.paletteIdx--
			}
			return m, nil
		}
		m.recallPrev()
		return m, nil

	case "down":
		if m.paletteVisible {
			if m.paletteIdx < len(m.paletteItems)-1 {
				m.paletteIdx++
			}
			return m, nil
		}
		m.recallNext()
		return m, nil

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil

	case "enter":
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.recallIdx = -1
	m.refreshPalette()
	return m, cmd
}

// handleSubmit routes one submitted line. Empty input is rejected, a leading
// slash goes to the command interpreter, anything else starts a chat turn.
// The submitted line is echoed into the transcript before dispatch either way.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	// A bare slash is a half-typed command, not input worth echoing; just
	// point at /help.
	if line == "/" {
		m.resetInput()
		m.appendSystem("Type a command after the slash, or /help to see them all.")
		return m, nil
	}

	if commands.IsCommand(line) {
		m.resetInput()
		m.transcript.Append(model.NewTeacherMessage(line))
		m.rememberPrompt(line)
		m.updateViewport()
		return m, commands.Execute(m.parser, m.cmdCtx, line)
	}

	// Send is disabled while a turn is in flight; the typed text stays put.
	if m.state == StateSending {
		m.statusMsg = "Still waiting on the last reply..."
		return m, nil
	}

	m.resetInput()
	m.transcript.Append(model.NewTeacherMessage(line))
	m.rememberPrompt(line)

	m.state = StateSending
	m.teach.ArmLearning()
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(
		m.spinner.Tick,
		SendChatCmd(m.client, line, m.sessions.ActiveID()),
	)
}

// resetInput clears the input line and any palette or recall state.
func (m *Model) resetInput() {
	m.input.Reset()
	m.paletteVisible = false
	m.paletteItems = nil
	m.paletteIdx = 0
	m.recallIdx = -1
	m.draft = ""
	m.statusMsg = ""
}

// =============================================================================
// CHAT TURN RESULT
// =============================================================================

// handleChatResult resolves one chat turn. State always returns to Idle here
// no matter how the turn ended; that reset is the whole contract.
func (m Model) handleChatResult(msg ChatResultMsg) (tea.Model, tea.Cmd) {
	m.state = StateIdle

	if msg.Err != nil {
		// The optimistic echo stays; only an error entry is added.
		m.appendSystem(msg.Err.Error())
		var cmds []tea.Cmd
		if settle := m.teach.OnTurnSettled(false); settle != nil {
			cmds = append(cmds, settle)
		}
		// A remote error means the server completed the turn and may have
		// touched the session list; a transport failure means it never saw it.
		if api.IsRemote(msg.Err) {
			cmds = append(cmds, registry.ListCmd(m.client))
		}
		return m, tea.Batch(cmds...)
	}

	// The server owns session identity: adopt its id every turn. This covers
	// auto-creation on the first prompt of a fresh chat.
	m.sessions.SetActive(msg.Result.SessionID)

	// A silent reply is suppressed from the transcript but the turn still
	// happened, so the list refresh below is unconditional.
	if !msg.Result.Silent {
		m.transcript.Append(model.NewAssistantMessage(msg.Result.Response))
	}
	m.updateViewport()

	cmds := []tea.Cmd{registry.ListCmd(m.client)}
	if settle := m.teach.OnTurnSettled(msg.Result.Silent); settle != nil {
		cmds = append(cmds, settle)
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMAND OUTCOMES
// =============================================================================

// handleNewChat wholesale-resets the local conversation state. No server
// traffic: the next prompt mints the session.
func (m Model) handleNewChat() (tea.Model, tea.Cmd) {
	m.transcript.Reset(model.NewSystemMessage(greeting))
	m.sessions.ClearActive()
	m.resetInput()
	m.updateViewport()
	return m, nil
}

func (m Model) handleStartRecording(msg commands.StartRecordingMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Could not start recording: %v", msg.Err))
	}
	return m, nil
}

// handleUploadRequest starts a document upload unless something conflicting
// is already in flight. Files are read and sent only once the gate is passed,
// so a refused upload touches neither the disk nor the server.
func (m Model) handleUploadRequest(msg commands.UploadRequestMsg) (tea.Model, tea.Cmd) {
	if m.state == StateSending || m.uploading {
		m.statusMsg = "Wait for the current activity to finish before uploading."
		return m, nil
	}
	m.uploading = true
	m.statusMsg = fmt.Sprintf("Uploading %d file(s)...", len(msg.Paths))
	return m, commands.UploadCmd(m.client, msg.Paths)
}

// handleDocumentsUploaded clears the upload gate and reports the outcome. A
// batch can partially succeed, so both lists are reported when present.
func (m Model) handleDocumentsUploaded(msg commands.DocumentsUploadedMsg) (tea.Model, tea.Cmd) {
	m.uploading = false
	m.statusMsg = ""
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Upload failed: %v", msg.Err))
		return m, nil
	}

	var b strings.Builder
	if len(msg.Uploaded) > 0 {
		fmt.Fprintf(&b, "Uploaded %d document(s):", len(msg.Uploaded))
		for _, doc := range msg.Uploaded {
			fmt.Fprintf(&b, "\n  %s (%d chunks)", doc.Filename, doc.Chunks)
		}
	}
	for _, failure := range msg.Errors {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Could not ingest %s: %s", failure.Filename, failure.Reason)
	}
	if b.Len() == 0 {
		b.WriteString("Nothing was uploaded.")
	}
	m.appendSystem(b.String())
	return m, nil
}

func (m Model) handleTopicSet(msg commands.TopicSetMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Topic change failed: %v", msg.Err))
		return m, nil
	}
	// A topic switch can mint a session server-side; adopt it only when no
	// session is bound so an active conversation is never hijacked.
	if msg.SessionID != "" && !m.sessions.HasActive() {
		m.sessions.SetActive(msg.SessionID)
	}
	text := msg.Message
	if text == "" {
		text = fmt.Sprintf("Topic set to %q.", msg.Topic)
	}
	m.appendSystem(text)
	return m, registry.ListCmd(m.client)
}

func (m Model) handleSummary(msg commands.SummaryMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Summary failed: %v", msg.Err))
		return m, nil
	}
	if strings.TrimSpace(msg.Summary) == "" {
		m.appendSystem("Nothing to summarize yet.")
		return m, nil
	}
	m.appendSystem("Session summary:\n" + msg.Summary)
	return m, nil
}

func (m Model) handleSearchResults(msg commands.SearchResultsMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Search failed: %v", msg.Err))
		return m, nil
	}
	if len(msg.Hits) == 0 {
		m.appendSystem(fmt.Sprintf("No matches for %q.", msg.Query))
		return m, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) for %q:", len(msg.Hits), msg.Query)
	for i, hit := range msg.Hits {
		fmt.Fprintf(&b, "\n  %d. (%.2f) %s", i+1, hit.Score, hit.Memory)
	}
	m.appendSystem(b.String())
	return m, nil
}

func (m Model) handleMemories(msg commands.MemoriesMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Could not list memories: %v", msg.Err))
		return m, nil
	}
	if len(msg.Hits) == 0 {
		m.appendSystem("No memories stored.")
		return m, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d stored memor(ies):", len(msg.Hits))
	for i, hit := range msg.Hits {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, hit.Memory)
	}
	m.appendSystem(b.String())
	return m, nil
}

func (m Model) handleMemoryReset(msg commands.MemoryResetMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Memory reset failed: %v", msg.Err))
		return m, nil
	}
	text := msg.Message
	if text == "" {
		text = "All memories erased."
	}
	m.appendSystem(text)
	return m, nil
}

// =============================================================================
// SESSION REGISTRY OUTCOMES
// =============================================================================

func (m Model) handleSessionsLoaded(msg registry.SessionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Could not load sessions: %v", msg.Err))
		return m, nil
	}
	m.sessions.Replace(msg.Sessions)
	return m, nil
}

func (m Model) handleSessionCreated(msg registry.SessionCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Could not create session: %v", msg.Err))
		return m, nil
	}
	m.sessions.Replace(msg.Sessions)
	m.sessions.SetActive(msg.SessionID)
	if msg.Topic != "" {
		m.appendSystem(fmt.Sprintf("Started a new session on %q.", msg.Topic))
	} else {
		m.appendSystem("Started a new session.")
	}
	return m, nil
}

// handleSessionSelected swaps in a loaded session. On failure the previous
// transcript and active pointer are left exactly as they were; the error is
// shown in the status bar so the log itself stays untouched.
func (m Model) handleSessionSelected(msg registry.SessionSelectedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusMsg = fmt.Sprintf("Could not load session: %v", msg.Err)
		return m, nil
	}
	m.sessions.SetActive(msg.SessionID)
	m.transcript.Replace(msg.Messages)
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleSessionRenamed(msg registry.SessionRenamedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Rename failed: %v", msg.Err))
		return m, nil
	}
	m.sessions.Replace(msg.Sessions)
	m.appendSystem(fmt.Sprintf("Session renamed to %q.", msg.NewTitle))
	return m, nil
}

// handleSessionDeleted removes a session. Deleting the active one clears the
// pointer and resets the transcript to a single system message; the refreshed
// list travels in the same message so the sidebar catches up immediately.
func (m Model) handleSessionDeleted(msg registry.SessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Delete failed: %v", msg.Err))
		return m, nil
	}
	if msg.WasActive {
		m.sessions.ClearActive()
		m.transcript.Reset(model.NewSystemMessage("Session deleted. Teach me something new."))
		m.updateViewport()
	} else {
		m.appendSystem("Session deleted.")
	}
	m.sessions.Replace(msg.Sessions)
	return m, nil
}

// =============================================================================
// TEACH MODE OUTCOMES
// =============================================================================

// handleTeachState applies a startup refresh. Failures keep the prior local
// value with no user-visible error; the sync is best-effort.
func (m Model) handleTeachState(msg teach.StateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, nil
	}
	m.teach.Adopt(msg.Enabled)
	return m, nil
}

func (m Model) handleTeachToggled(msg teach.ToggledMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Could not change teach mode: %v", msg.Err))
		return m, nil
	}
	m.teach.Adopt(msg.Enabled)
	if msg.Enabled {
		m.appendSystem("Teach mode is on. I'll learn quietly instead of replying.")
	} else {
		m.appendSystem("Teach mode is off.")
	}
	return m, nil
}

// =============================================================================
// AUDIO OUTCOMES
// =============================================================================

// handleTranscription feeds recognized speech back into the input line so
// the operator can edit before sending.
func (m Model) handleTranscription(msg audio.TranscriptionMsg) (tea.Model, tea.Cmd) {
	if m.audio != nil {
		m.audio.FinishTranscription()
	}
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Transcription failed: %v", msg.Err))
		return m, nil
	}

	// Recognized text replaces the input line verbatim, even when it is
	// empty; only a failed transcription leaves the buffer untouched.
	m.input.SetValue(msg.Text)
	m.input.CursorEnd()
	return m, nil
}

func (m Model) handlePlaybackDone(msg audio.PlaybackDoneMsg) (tea.Model, tea.Cmd) {
	if m.audio != nil {
		m.audio.FinishPlayback()
	}
	if msg.Err != nil {
		m.appendSystem(fmt.Sprintf("Playback failed: %v", msg.Err))
	}
	return m, nil
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// handleConfigReloaded adopts a config rewritten on disk, most usefully a
// token refreshed by `buddy login` in another terminal.
func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	m.cfg = msg.Config
	m.cmdCtx.Config = msg.Config
	m.client.SetToken(msg.Config.Server.Token)
	m.statusMsg = "Config reloaded"
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// appendSystem adds one system notice and scrolls it into view.
func (m *Model) appendSystem(content string) {
	m.transcript.Append(model.NewSystemMessage(content))
	m.updateViewport()
	m.viewport.GotoBottom()
}

// updateViewport re-renders the transcript into the viewport.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}

// rememberPrompt records a submitted line for up/down recall, persisting it
// when a history store is attached.
func (m *Model) rememberPrompt(line string) {
	if m.historyStore != nil {
		if err := m.historyStore.Append(line); err != nil {
			slog.Warn("prompt history append failed", "error", err)
		}
	}
	if len(m.recall) == 0 || m.recall[0] != line {
		m.recall = append([]string{line}, m.recall...)
	}
}

// recallPrev steps backward through stored prompts. The in-progress line is
// parked in draft so stepping all the way forward restores it.
func (m *Model) recallPrev() {
	if len(m.recall) == 0 || m.recallIdx >= len(m.recall)-1 {
		return
	}
	if m.recallIdx == -1 {
		m.draft = m.input.Value()
	}
	m.recallIdx++
	m.input.SetValue(m.recall[m.recallIdx])
	m.input.CursorEnd()
}

// recallNext steps forward, ending back at the parked draft.
func (m *Model) recallNext() {
	if m.recallIdx == -1 {
		return
	}
	m.recallIdx--
	if m.recallIdx == -1 {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.recall[m.recallIdx])
	}
	m.input.CursorEnd()
}

// refreshPalette recomputes command suggestions. The palette shows while the
// line is a bare slash token with no arguments yet.
func (m *Model) refreshPalette() {
	value := m.input.Value()
	if !strings.HasPrefix(value, "/") || strings.ContainsRune(value, ' ') {
		m.paletteVisible = false
		m.paletteItems = nil
		m.paletteIdx = 0
		return
	}

	m.paletteItems = m.cmdRegistry.Suggest(value)
	m.paletteVisible = len(m.paletteItems) > 0
	if m.paletteIdx >= len(m.paletteItems) {
		m.paletteIdx = 0
	}
}

// completeFromPalette replaces the input with the selected command.
func (m *Model) completeFromPalette() {
	selected := m.paletteItems[m.paletteIdx]
	m.input.SetValue(selected.Name + " ")
	m.input.CursorEnd()
	m.paletteVisible = false
	m.paletteItems = nil
	m.paletteIdx = 0
}
