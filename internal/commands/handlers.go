// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/audio"
	"github.com/jeranaias/buddy-tui/internal/registry"
	"github.com/jeranaias/buddy-tui/internal/teach"
)

// memoryOpTimeout bounds the topic, summary, search, and reset round trips.
const memoryOpTimeout = 60 * time.Second

// uploadTimeout bounds a document upload. Ingestion converts and chunks the
// files server-side, so this is generous.
const uploadTimeout = 2 * time.Minute

// searchLimit is how many memory hits /search asks for.
const searchLimit = 5

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// These messages are sent by command handlers to update the application state.

// SystemNoticeMsg adds a system notice to the transcript. Notices are local;
// they never round-trip to the server.
type SystemNoticeMsg struct {
	Content string
}

// NewChatMsg clears the transcript and drops the active session pointer.
type NewChatMsg struct{}

// StartRecordingMsg reports the outcome of opening the capture device.
type StartRecordingMsg struct {
	Err error
}

// TopicSetMsg reports a topic switch.
type TopicSetMsg struct {
	Topic     string
	SessionID string
	Message   string
	Err       error
}

// SummaryMsg carries a session summary.
type SummaryMsg struct {
	SessionID string
	Summary   string
	Err       error
}

// SearchResultsMsg carries scored memory matches.
type SearchResultsMsg struct {
	Query string
	Hits  []api.MemoryHit
	Err   error
}

// MemoriesMsg carries the full memory listing.
type MemoriesMsg struct {
	Hits []api.MemoryHit
	Err  error
}

// MemoryResetMsg reports a memory wipe.
type MemoryResetMsg struct {
	Message string
	Err     error
}

// UploadRequestMsg asks the orchestrator to start a document upload. The
// orchestrator owns the in-flight gate, so the handler only validates and
// forwards the paths.
type UploadRequestMsg struct {
	Paths []string
}

// DocumentsUploadedMsg reports an upload outcome. A request can partially
// succeed, so both lists may carry entries.
type DocumentsUploadedMsg struct {
	Uploaded []api.UploadedDocument
	Errors   []api.UploadError
	Err      error
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses and runs one line of slash-command input. Unknown commands
// and argument errors resolve locally into a system notice; nothing reaches
// the server.
func Execute(parser *Parser, ctx *Context, input string) tea.Cmd {
	result := parser.Parse(input)
	if !result.IsCommand {
		return nil
	}

	if result.Command == nil {
		return notice(fmt.Sprintf("Unknown command: %s. Try /help.", result.CommandName))
	}

	if err := ValidateArgs(result.Command, result.Args); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return notice(verr.Notice())
		}
		return notice(err.Error())
	}

	return result.Command.Handler(ctx, result.Args)
}

// notice wraps a string into a SystemNoticeMsg command.
func notice(content string) tea.Cmd {
	return func() tea.Msg {
		return SystemNoticeMsg{Content: content}
	}
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// HandleHelp shows help information. Rendered entirely from the local
// registry; /help never calls the server.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	reg := ctx.Commands
	if reg == nil {
		return notice("Help is unavailable.")
	}

	if len(args) > 0 {
		name := args[0]
		if !strings.HasPrefix(name, "/") {
			name = "/" + name
		}
		cmd := reg.Get(name)
		if cmd == nil {
			return notice(fmt.Sprintf("Unknown command: %s. Try /help.", name))
		}
		return notice(describeCommand(cmd))
	}

	return notice(renderHelp(reg))
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// describeCommand renders one command's full help.
func describeCommand(cmd *Command) string {
	var b strings.Builder
	b.WriteString(cmd.Name)
	if len(cmd.Aliases) > 0 {
		b.WriteString(" (" + strings.Join(cmd.Aliases, ", ") + ")")
	}
	b.WriteString("\n  " + cmd.Description)
	if cmd.Usage != "" {
		b.WriteString("\n  Usage: " + cmd.Usage)
	}
	for _, arg := range cmd.Args {
		b.WriteString(fmt.Sprintf("\n    %s - %s", arg.Name, arg.Description))
	}
	return b.String()
}

// renderHelp renders the full command listing grouped by category.
func renderHelp(reg *Registry) string {
	byCat := reg.ByCategory()
	categories := make([]string, 0, len(byCat))
	for cat := range byCat {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, cat := range categories {
		b.WriteString("\n" + cat + ":\n")
		for _, cmd := range byCat[cat] {
			label := cmd.Name
			if cmd.Usage != "" {
				label = cmd.Usage
			}
			b.WriteString(fmt.Sprintf("  %-28s %s\n", label, cmd.Description))
		}
	}
	b.WriteString("\nAnything that doesn't start with / is sent to the student.")
	return b.String()
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// HandleNew starts a fresh chat. With a topic it creates a server-side
// session immediately; without one it only clears local state and lets the
// next prompt mint the session.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	if len(args) > 0 {
		topic := strings.Join(args, " ")
		return tea.Sequence(
			func() tea.Msg { return NewChatMsg{} },
			registry.CreateCmd(ctx.API, topic),
		)
	}
	return func() tea.Msg {
		return NewChatMsg{}
	}
}

// HandleSessions refreshes the session list.
func HandleSessions(ctx *Context, args []string) tea.Cmd {
	return registry.ListCmd(ctx.API)
}

// HandleLoad loads a session's history. Local state is untouched until the
// server answers.
func HandleLoad(ctx *Context, args []string) tea.Cmd {
	return registry.SelectCmd(ctx.API, args[0])
}

// HandleRename renames the active session. A title that is empty once
// trimmed is rejected locally; the server never sees it.
func HandleRename(ctx *Context, args []string) tea.Cmd {
	if ctx.Sessions == nil || !ctx.Sessions.HasActive() {
		return notice("No active session to rename. Load one with /load first.")
	}
	newTitle := strings.TrimSpace(strings.Join(args, " "))
	if newTitle == "" {
		return notice("A session title can't be blank. Usage: /rename <new_name>")
	}
	return registry.RenameCmd(ctx.API, ctx.Sessions.ActiveID(), newTitle)
}

// HandleDelete deletes a session, defaulting to the active one.
func HandleDelete(ctx *Context, args []string) tea.Cmd {
	var sessionID string
	if len(args) > 0 {
		sessionID = args[0]
	} else {
		if ctx.Sessions == nil || !ctx.Sessions.HasActive() {
			return notice("No active session to delete. Pass a session ID or /load one first.")
		}
		sessionID = ctx.Sessions.ActiveID()
	}

	wasActive := ctx.Sessions != nil && ctx.Sessions.ActiveID() == sessionID
	return registry.DeleteCmd(ctx.API, sessionID, wasActive)
}

// =============================================================================
// MEMORY HANDLERS
// =============================================================================

// HandleTopic switches the study topic.
func HandleTopic(ctx *Context, args []string) tea.Cmd {
	topic := strings.Join(args, " ")
	client := ctx.API
	sessionID := ""
	if ctx.Sessions != nil {
		sessionID = ctx.Sessions.ActiveID()
	}
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), memoryOpTimeout)
		defer cancel()

		result, err := client.SetTopic(reqCtx, topic, sessionID)
		if err != nil {
			return TopicSetMsg{Topic: topic, Err: err}
		}
		return TopicSetMsg{
			Topic:     topic,
			SessionID: result.SessionID,
			Message:   result.Message,
		}
	}
}

// HandleSummary asks the server to summarize the active session.
func HandleSummary(ctx *Context, args []string) tea.Cmd {
	if ctx.Sessions == nil || !ctx.Sessions.HasActive() {
		return notice("No active session to summarize. Load one with /load first.")
	}
	client := ctx.API
	sessionID := ctx.Sessions.ActiveID()
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), memoryOpTimeout)
		defer cancel()

		result, err := client.Summary(reqCtx, sessionID)
		if err != nil {
			return SummaryMsg{SessionID: sessionID, Err: err}
		}
		return SummaryMsg{SessionID: result.SessionID, Summary: result.Summary}
	}
}

// HandleSearch searches stored memories.
func HandleSearch(ctx *Context, args []string) tea.Cmd {
	query := strings.Join(args, " ")
	client := ctx.API
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), memoryOpTimeout)
		defer cancel()

		hits, err := client.SearchTopic(reqCtx, query, searchLimit)
		if err != nil {
			return SearchResultsMsg{Query: query, Err: err}
		}
		return SearchResultsMsg{Query: query, Hits: hits}
	}
}

// HandleMemories lists everything the student has learned.
func HandleMemories(ctx *Context, args []string) tea.Cmd {
	client := ctx.API
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), memoryOpTimeout)
		defer cancel()

		hits, err := client.Memories(reqCtx)
		if err != nil {
			return MemoriesMsg{Err: err}
		}
		return MemoriesMsg{Hits: hits}
	}
}

// HandleReset erases all learned memories. The "confirm" argument is
// enforced by validation before this handler runs.
func HandleReset(ctx *Context, args []string) tea.Cmd {
	client := ctx.API
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(context.Background(), memoryOpTimeout)
		defer cancel()

		message, err := client.ResetMemory(reqCtx)
		if err != nil {
			return MemoryResetMsg{Err: err}
		}
		return MemoryResetMsg{Message: message}
	}
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// HandleUpload stages documents for ingestion. The file count is checked
// locally so an oversized batch never reaches the server; the orchestrator
// applies the in-flight gate before anything is read or sent.
func HandleUpload(ctx *Context, args []string) tea.Cmd {
	if len(args) > api.MaxUploadFiles {
		return notice(fmt.Sprintf("Upload up to %d files at a time.", api.MaxUploadFiles))
	}
	paths := args
	return func() tea.Msg {
		return UploadRequestMsg{Paths: paths}
	}
}

// UploadCmd reads the staged files and sends them for ingestion. An
// unreadable file fails the whole batch locally; nothing is sent.
func UploadCmd(client *api.Client, paths []string) tea.Cmd {
	return func() tea.Msg {
		files := make([]api.DocumentFile, 0, len(paths))
		for _, path := range paths {
			payload, err := os.ReadFile(path)
			if err != nil {
				return DocumentsUploadedMsg{Err: fmt.Errorf("could not read %s: %w", path, err)}
			}
			files = append(files, api.DocumentFile{Name: filepath.Base(path), Payload: payload})
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		result, err := client.UploadDocuments(reqCtx, files)
		if err != nil {
			return DocumentsUploadedMsg{Err: err}
		}
		return DocumentsUploadedMsg{Uploaded: result.Uploaded, Errors: result.Errors}
	}
}

// =============================================================================
// TEACH MODE HANDLER
// =============================================================================

// HandleTeach toggles teach mode, or sets it explicitly with on/off. The
// server confirms the final state; the local flag only changes when the
// confirmation arrives.
func HandleTeach(ctx *Context, args []string) tea.Cmd {
	var enable bool
	if len(args) > 0 {
		enable = strings.EqualFold(args[0], "on")
	} else {
		enable = ctx.Teach == nil || !ctx.Teach.Enabled()
	}
	return teach.ToggleCmd(ctx.API, enable)
}

// =============================================================================
// VOICE HANDLERS
// =============================================================================

// HandleRecord opens the capture device. A conflicting start is refused
// without disturbing whatever is running, and nothing is sent anywhere.
func HandleRecord(ctx *Context, args []string) tea.Cmd {
	if ctx.Audio == nil {
		return notice("Voice capture is not available.")
	}

	sampleRate := 16000
	if ctx.Config != nil && ctx.Config.Audio.SampleRate > 0 {
		sampleRate = ctx.Config.Audio.SampleRate
	}

	err := ctx.Audio.StartRecording(sampleRate)
	switch {
	case err == nil:
		return notice("Recording... use /stop when you're done.")
	case errors.Is(err, audio.ErrBusy):
		// Already recording or playing; leave it alone.
		return nil
	default:
		return func() tea.Msg {
			return StartRecordingMsg{Err: err}
		}
	}
}

// HandleStop ends the capture and sends it for transcription. An empty
// capture is resolved locally; the server never sees it.
func HandleStop(ctx *Context, args []string) tea.Cmd {
	if ctx.Audio == nil {
		return notice("Voice capture is not available.")
	}

	payload, contentType, err := ctx.Audio.StopRecording()
	switch {
	case errors.Is(err, audio.ErrNotRecording):
		return notice("Nothing is recording. Start with /record.")
	case errors.Is(err, audio.ErrEmptyCapture):
		return notice("The recording captured no audio, so nothing was sent.")
	case err != nil:
		return notice(fmt.Sprintf("Recording failed: %v", err))
	}

	return audio.TranscribeCmd(ctx.API, payload, contentType)
}

// HandlePlay reads the last assistant reply aloud.
func HandlePlay(ctx *Context, args []string) tea.Cmd {
	if ctx.Audio == nil {
		return notice("Voice playback is not available.")
	}
	if ctx.Transcript == nil {
		return notice("There is no reply to play yet.")
	}

	last, ok := ctx.Transcript.LastAssistant()
	if !ok {
		return notice("There is no reply to play yet.")
	}

	err := ctx.Audio.StartPlayback()
	switch {
	case errors.Is(err, audio.ErrBusy):
		return nil
	case err != nil:
		return notice(fmt.Sprintf("Playback unavailable: %v", err))
	}

	voiceID := ""
	if ctx.Config != nil {
		voiceID = ctx.Config.Audio.VoiceID
	}
	return audio.PlayCmd(ctx.API, ctx.Audio.Player(), last.Content, voiceID)
}
