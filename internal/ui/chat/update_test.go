// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversational view for the buddy TUI.
package chat

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/audio"
	"github.com/jeranaias/buddy-tui/internal/commands"
	"github.com/jeranaias/buddy-tui/internal/config"
	"github.com/jeranaias/buddy-tui/internal/model"
	"github.com/jeranaias/buddy-tui/internal/registry"
	"github.com/jeranaias/buddy-tui/internal/teach"
	"github.com/jeranaias/buddy-tui/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// countingServer records every request that reaches the backend so tests can
// assert which operations stayed local.
type countingServer struct {
	server   *httptest.Server
	requests int32
	paths    []string
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cs.requests, 1)
		cs.paths = append(cs.paths, r.URL.Path)
		handler(w, r)
	}))
	t.Cleanup(cs.server.Close)
	return cs
}

func (cs *countingServer) count() int32 {
	return atomic.LoadInt32(&cs.requests)
}

func (cs *countingServer) countPath(path string) int {
	n := 0
	for _, p := range cs.paths {
		if p == path {
			n++
		}
	}
	return n
}

// newTestModel builds a sized chat model pointed at the given backend.
func newTestModel(t *testing.T, baseURL string) Model {
	t.Helper()
	client := api.NewClient(&api.ClientConfig{
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	})
	m := New(Options{
		Client: client,
		Config: config.Default(),
		Theme:  styles.NewTheme(),
	})
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return sized.(Model)
}

// apply feeds messages through Update, returning the final model and the
// last command.
func apply(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var tm tea.Model
		tm, cmd = m.Update(msg)
		m = tm.(Model)
	}
	return m, cmd
}

// runCmd executes a command, flattening batches into the individual messages
// they produce.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// findChatResult picks the turn result out of a flattened message list.
func findChatResult(t *testing.T, msgs []tea.Msg) ChatResultMsg {
	t.Helper()
	for _, msg := range msgs {
		if result, ok := msg.(ChatResultMsg); ok {
			return result
		}
	}
	t.Fatal("no ChatResultMsg produced")
	return ChatResultMsg{}
}

// pressEnter submits the current input line.
func pressEnter(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	return apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func lastMessage(t *testing.T, m Model) model.Message {
	t.Helper()
	msgs := m.transcript.Messages()
	if len(msgs) == 0 {
		t.Fatal("transcript is empty")
	}
	return msgs[len(msgs)-1]
}

// =============================================================================
// SUBMIT ROUTING
// =============================================================================

func TestSubmitEmptyInputRejected(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	m := newTestModel(t, cs.server.URL)

	m.input.SetValue("   ")
	m, cmd := pressEnter(t, m)

	if cmd != nil {
		t.Error("empty input should produce no command")
	}
	if m.state != StateIdle {
		t.Errorf("state = %v, want StateIdle", m.state)
	}
	if m.transcript.Len() != 1 {
		t.Errorf("transcript len = %d, want just the greeting", m.transcript.Len())
	}
	if cs.count() != 0 {
		t.Errorf("server saw %d requests, want 0", cs.count())
	}
}

func TestSubmitUnknownCommandStaysLocal(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	m := newTestModel(t, cs.server.URL)

	m.input.SetValue("/bogus now")
	m, cmd := pressEnter(t, m)

	m, _ = apply(t, m, runCmd(t, cmd)[0])

	last := lastMessage(t, m)
	if last.Role != model.RoleSystem {
		t.Errorf("last role = %v, want system", last.Role)
	}
	if !strings.Contains(last.Content, "Unknown command: /bogus") ||
		!strings.Contains(last.Content, "Try /help") {
		t.Errorf("unexpected notice: %q", last.Content)
	}
	// Echo-before-dispatch: the typed line is in the log too.
	if m.transcript.Len() != 3 {
		t.Errorf("transcript len = %d, want greeting + echo + notice", m.transcript.Len())
	}
	if cs.count() != 0 {
		t.Errorf("server saw %d requests, want 0", cs.count())
	}
}

func TestSubmitWhileSendingRefused(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	m := newTestModel(t, cs.server.URL)
	m.state = StateSending

	m.input.SetValue("another question")
	m, cmd := pressEnter(t, m)

	if cmd != nil {
		t.Error("send should be disabled while Sending")
	}
	if m.input.Value() != "another question" {
		t.Errorf("typed text should be preserved, got %q", m.input.Value())
	}
	if cs.count() != 0 {
		t.Errorf("server saw %d requests, want 0", cs.count())
	}
}

func TestBareSlashPromptsHelpWithoutEcho(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	m := newTestModel(t, cs.server.URL)

	m.input.SetValue("/")
	m, cmd := pressEnter(t, m)

	if cmd != nil {
		t.Error("a bare slash should produce no command")
	}
	// One notice pointing at /help, and no operator echo of the blank command.
	if m.transcript.Len() != 2 {
		t.Fatalf("transcript len = %d, want greeting + notice only", m.transcript.Len())
	}
	last := lastMessage(t, m)
	if last.Role != model.RoleSystem {
		t.Errorf("last role = %v, want system", last.Role)
	}
	if !strings.Contains(last.Content, "/help") {
		t.Errorf("notice should point at /help, got %q", last.Content)
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.input.Value())
	}
	if cs.count() != 0 {
		t.Errorf("server saw %d requests, want 0", cs.count())
	}
}

// =============================================================================
// CHAT TURNS
// =============================================================================

func chatBackend(t *testing.T, response string, silent bool) *countingServer {
	t.Helper()
	return newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat":
			fmt.Fprintf(w, `{"response":%q,"session_id":"s1","context_count":0,"silent":%v}`, response, silent)
		case "/sidebar_sessions":
			fmt.Fprint(w, `{"sessions":[{"session_id":"s1","title":"t","last_message_time":"now","preview":"p"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func TestChatSendSuccess(t *testing.T) {
	cs := chatBackend(t, "2 + 2 = 4", false)
	m := newTestModel(t, cs.server.URL)

	m.input.SetValue("what is 2+2?")
	m, cmd := pressEnter(t, m)

	if m.state != StateSending {
		t.Fatalf("state = %v, want StateSending", m.state)
	}
	if last := lastMessage(t, m); last.Role != model.RoleTeacher {
		t.Errorf("optimistic echo missing, last role = %v", last.Role)
	}

	result := findChatResult(t, runCmd(t, cmd))
	m, next := apply(t, m, result)

	if m.state != StateIdle {
		t.Errorf("state = %v, want StateIdle after turn", m.state)
	}
	if m.sessions.ActiveID() != "s1" {
		t.Errorf("active = %q, want server-minted s1", m.sessions.ActiveID())
	}
	if last := lastMessage(t, m); last.Role != model.RoleAssistant || last.Content != "2 + 2 = 4" {
		t.Errorf("assistant append missing, got %+v", last)
	}

	// The completed turn triggers exactly one list refresh.
	m, _ = apply(t, m, runCmd(t, next)...)
	if got := cs.countPath("/sidebar_sessions"); got != 1 {
		t.Errorf("list refreshed %d times, want 1", got)
	}
	if m.sessions.Len() != 1 {
		t.Errorf("session list len = %d, want 1", m.sessions.Len())
	}
}

func TestChatSendSilentSuppressesAppendOnly(t *testing.T) {
	cs := chatBackend(t, "", true)
	m := newTestModel(t, cs.server.URL)
	m, _ = apply(t, m, teach.ToggledMsg{Enabled: true})

	m.input.SetValue("the capital of France is Paris")
	m, cmd := pressEnter(t, m)

	if m.teach.Status() != teach.StatusLearning {
		t.Fatalf("teach status = %v, want learning while in flight", m.teach.Status())
	}
	lenBefore := m.transcript.Len()

	result := findChatResult(t, runCmd(t, cmd))
	m, _ = apply(t, m, result)

	if m.state != StateIdle {
		t.Errorf("state = %v, want StateIdle", m.state)
	}
	if m.transcript.Len() != lenBefore {
		t.Errorf("suppressed reply must not append, len %d -> %d", lenBefore, m.transcript.Len())
	}
	if m.teach.Status() != teach.StatusLearned {
		t.Errorf("teach status = %v, want learned", m.teach.Status())
	}
	if m.sessions.ActiveID() != "s1" {
		t.Errorf("active = %q, silent turns still bind the session", m.sessions.ActiveID())
	}
}

func TestChatSendTransportErrorResetsState(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	m := newTestModel(t, cs.server.URL)
	cs.server.Close()

	m.input.SetValue("hello?")
	m, cmd := pressEnter(t, m)

	result := findChatResult(t, runCmd(t, cmd))
	if !api.IsTransport(result.Err) {
		t.Fatalf("err = %v, want transport error", result.Err)
	}

	m, next := apply(t, m, result)

	if m.state != StateIdle {
		t.Errorf("state = %v, want guaranteed StateIdle", m.state)
	}
	last := lastMessage(t, m)
	if last.Role != model.RoleSystem {
		t.Errorf("last role = %v, want one system error entry", last.Role)
	}
	// Echo retained, exactly one error entry added.
	if m.transcript.Len() != 3 {
		t.Errorf("transcript len = %d, want greeting + echo + error", m.transcript.Len())
	}
	// No response was obtained, so no refresh is scheduled.
	if next != nil {
		t.Error("transport failure must not schedule a list refresh")
	}
}

func TestChatSendRemoteErrorRefreshesList(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat":
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"detail":"model exploded"}`)
		case "/sidebar_sessions":
			fmt.Fprint(w, `{"sessions":[]}`)
		}
	})
	m := newTestModel(t, cs.server.URL)

	m.input.SetValue("hello")
	m, cmd := pressEnter(t, m)

	result := findChatResult(t, runCmd(t, cmd))
	m, next := apply(t, m, result)

	if m.state != StateIdle {
		t.Errorf("state = %v, want StateIdle", m.state)
	}
	if last := lastMessage(t, m); !strings.Contains(last.Content, "model exploded") {
		t.Errorf("server detail not surfaced verbatim: %q", last.Content)
	}

	// A response was obtained, so the turn completed and the list refreshes.
	apply(t, m, runCmd(t, next)...)
	if got := cs.countPath("/sidebar_sessions"); got != 1 {
		t.Errorf("list refreshed %d times, want 1", got)
	}
}

// =============================================================================
// DOCUMENT UPLOADS
// =============================================================================

func TestUploadRefusedWhileSending(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	m := newTestModel(t, cs.server.URL)
	m.state = StateSending

	m, cmd := apply(t, m, commands.UploadRequestMsg{Paths: []string{"notes.md"}})

	if cmd != nil {
		t.Error("upload must be disabled while a turn is sending")
	}
	if m.uploading {
		t.Error("a refused upload must not claim the gate")
	}
	if m.statusMsg == "" {
		t.Error("the refusal should surface in the status bar")
	}
	if cs.count() != 0 {
		t.Errorf("server saw %d requests, want 0", cs.count())
	}
}

func TestUploadRefusedWhileUploading(t *testing.T) {
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	m := newTestModel(t, cs.server.URL)

	m, first := apply(t, m, commands.UploadRequestMsg{Paths: []string{"a.md"}})
	if first == nil {
		t.Fatal("first upload request should start the upload")
	}
	if !m.uploading {
		t.Fatal("first upload request should claim the gate")
	}

	m, second := apply(t, m, commands.UploadRequestMsg{Paths: []string{"b.md"}})
	if second != nil {
		t.Error("a second upload must be refused while one is in flight")
	}
	if !m.uploading {
		t.Error("the running upload must keep the gate")
	}
}

func TestUploadOutcomeClearsGate(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m, _ = apply(t, m, commands.UploadRequestMsg{Paths: []string{"a.md"}})

	m, _ = apply(t, m, commands.DocumentsUploadedMsg{
		Uploaded: []api.UploadedDocument{{Filename: "a.md", DocID: "d1", Chunks: 4}},
		Errors:   []api.UploadError{{Filename: "b.md", Reason: "Empty file."}},
	})

	if m.uploading {
		t.Error("a settled upload must release the gate")
	}
	last := lastMessage(t, m)
	if last.Role != model.RoleSystem {
		t.Errorf("last role = %v, want a system summary", last.Role)
	}
	if !strings.Contains(last.Content, "a.md") || !strings.Contains(last.Content, "Empty file.") {
		t.Errorf("summary should report both outcomes, got %q", last.Content)
	}
}

func TestUploadFailureClearsGate(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m, _ = apply(t, m, commands.UploadRequestMsg{Paths: []string{"a.md"}})

	m, _ = apply(t, m, commands.DocumentsUploadedMsg{Err: errors.New("connection refused")})

	if m.uploading {
		t.Error("a failed upload must release the gate")
	}
	if last := lastMessage(t, m); !strings.Contains(last.Content, "Upload failed") {
		t.Errorf("failure should be reported, got %q", last.Content)
	}
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

func TestDeleteActiveSessionResetsTranscript(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.sessions.Replace([]model.SessionSummary{{SessionID: "a"}, {SessionID: "b"}})
	m.sessions.SetActive("a")
	m.transcript.Append(model.NewTeacherMessage("hi"))
	m.transcript.Append(model.NewAssistantMessage("hello"))

	m, _ = apply(t, m, registry.SessionDeletedMsg{
		SessionID: "a",
		WasActive: true,
		Sessions:  []model.SessionSummary{{SessionID: "b"}},
	})

	if m.sessions.HasActive() {
		t.Error("active pointer should be cleared")
	}
	if m.transcript.Len() != 1 {
		t.Fatalf("transcript len = %d, want exactly one system message", m.transcript.Len())
	}
	if m.transcript.Messages()[0].Role != model.RoleSystem {
		t.Errorf("remaining message role = %v, want system", m.transcript.Messages()[0].Role)
	}
	if m.sessions.Len() != 1 {
		t.Errorf("session list len = %d, want refreshed list applied", m.sessions.Len())
	}
}

func TestSelectFailureLeavesStateUntouched(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.sessions.Replace([]model.SessionSummary{{SessionID: "a"}})
	m.sessions.SetActive("a")
	m.transcript.Append(model.NewTeacherMessage("hi"))
	before := append([]model.Message(nil), m.transcript.Messages()...)

	m, _ = apply(t, m, registry.SessionSelectedMsg{
		SessionID: "b",
		Err:       errors.New("server error"),
	})

	if m.sessions.ActiveID() != "a" {
		t.Errorf("active = %q, want unchanged a", m.sessions.ActiveID())
	}
	after := m.transcript.Messages()
	if len(after) != len(before) {
		t.Fatalf("transcript len changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("message %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	if m.statusMsg == "" {
		t.Error("failure should surface in the status bar")
	}
}

func TestSelectSuccessReplacesTranscript(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.transcript.Append(model.NewTeacherMessage("old"))

	loaded := []model.Message{
		model.NewTeacherMessage("earlier question"),
		model.NewAssistantMessage("earlier answer"),
	}
	m, _ = apply(t, m, registry.SessionSelectedMsg{SessionID: "b", Messages: loaded})

	if m.sessions.ActiveID() != "b" {
		t.Errorf("active = %q, want b", m.sessions.ActiveID())
	}
	if m.transcript.Len() != 2 {
		t.Errorf("transcript len = %d, want wholesale replacement", m.transcript.Len())
	}
}

func TestNewChatResetsEverything(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.sessions.SetActive("a")
	m.transcript.Append(model.NewTeacherMessage("hi"))
	m.input.SetValue("/ne")
	m.refreshPalette()

	m, _ = apply(t, m, commands.NewChatMsg{})

	if m.sessions.HasActive() {
		t.Error("active pointer should be cleared")
	}
	if m.transcript.Len() != 1 || m.transcript.Messages()[0].Role != model.RoleSystem {
		t.Error("transcript should hold exactly the greeting")
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.input.Value())
	}
	if m.paletteVisible {
		t.Error("palette should be dismissed")
	}
}

// =============================================================================
// END TO END
// =============================================================================

// TestCreateSelectSendRefresh walks the full loop: create a session, select
// it, send one prompt, and see the refreshed list carry the new preview.
func TestCreateSelectSendRefresh(t *testing.T) {
	preview := "start"
	cs := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			fmt.Fprint(w, `{"session_id":"s9","message":"created"}`)
		case "/session_messages":
			fmt.Fprint(w, `{"messages":[{"role":"teacher","content":"hi","timestamp":"t"}]}`)
		case "/chat":
			preview = "what is photosynthesis?"
			fmt.Fprint(w, `{"response":"It is how plants eat light.","session_id":"s9","silent":false}`)
		case "/sidebar_sessions":
			fmt.Fprintf(w, `{"sessions":[{"session_id":"s9","title":"bio","last_message_time":"later","preview":%q}]}`, preview)
		}
	})
	m := newTestModel(t, cs.server.URL)

	created := runCmd(t, registry.CreateCmd(m.client, "bio"))
	m, _ = apply(t, m, created...)
	if m.sessions.ActiveID() != "s9" {
		t.Fatalf("active = %q after create, want s9", m.sessions.ActiveID())
	}

	selected := runCmd(t, registry.SelectCmd(m.client, "s9"))
	m, _ = apply(t, m, selected...)

	m.input.SetValue("what is photosynthesis?")
	m, cmd := pressEnter(t, m)
	result := findChatResult(t, runCmd(t, cmd))
	m, refresh := apply(t, m, result)
	m, _ = apply(t, m, runCmd(t, refresh)...)

	s, ok := m.sessions.Find("s9")
	if !ok {
		t.Fatal("session s9 missing from refreshed list")
	}
	if s.Preview != "what is photosynthesis?" {
		t.Errorf("preview = %q, want the new prompt reflected", s.Preview)
	}
	if s.LastMessageTime != "later" {
		t.Errorf("lastMessageTime = %q, want updated value", s.LastMessageTime)
	}
}

// =============================================================================
// INPUT CONVENIENCES
// =============================================================================

func TestPaletteSuggestsSlashCommands(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.input.SetValue("/te")
	m.refreshPalette()

	if !m.paletteVisible {
		t.Fatal("palette should be visible for a slash prefix")
	}
	found := false
	for _, cmd := range m.paletteItems {
		if cmd.Name == "/teach" {
			found = true
		}
	}
	if !found {
		t.Error("/teach should be suggested for /te")
	}

	m.completeFromPalette()
	if !strings.HasPrefix(m.input.Value(), "/") {
		t.Errorf("completion should fill the input, got %q", m.input.Value())
	}
	if m.paletteVisible {
		t.Error("palette should close after completion")
	}
}

func TestPaletteHidesOnceArgsStart(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.input.SetValue("/load abc")
	m.refreshPalette()
	if m.paletteVisible {
		t.Error("palette should hide once arguments begin")
	}
}

func TestHistoryRecallRoundTrip(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.recall = []string{"newest", "older", "oldest"}

	m.input.SetValue("draft in progress")
	m.recallPrev()
	if m.input.Value() != "newest" {
		t.Errorf("first recall = %q, want newest", m.input.Value())
	}
	m.recallPrev()
	if m.input.Value() != "older" {
		t.Errorf("second recall = %q, want older", m.input.Value())
	}
	m.recallNext()
	m.recallNext()
	if m.input.Value() != "draft in progress" {
		t.Errorf("stepping forward should restore the draft, got %q", m.input.Value())
	}
}

func TestTranscriptionReplacesInputVerbatim(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.input.SetValue("half-typed draft")

	m, _ = apply(t, m, audio.TranscriptionMsg{Text: "tell me about owls"})

	if m.input.Value() != "tell me about owls" {
		t.Errorf("input = %q, want the recognized text verbatim", m.input.Value())
	}
}

func TestEmptyTranscriptionClearsInput(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.input.SetValue("half-typed draft")
	lenBefore := m.transcript.Len()

	m, _ = apply(t, m, audio.TranscriptionMsg{Text: ""})

	if m.input.Value() != "" {
		t.Errorf("input = %q, want empty recognized text adopted as-is", m.input.Value())
	}
	if m.transcript.Len() != lenBefore {
		t.Error("an empty transcription is not an error and adds no notice")
	}
}

func TestFailedTranscriptionLeavesInput(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m.input.SetValue("half-typed draft")

	m, _ = apply(t, m, audio.TranscriptionMsg{Err: errors.New("stt down")})

	if m.input.Value() != "half-typed draft" {
		t.Errorf("input = %q, failure must leave the buffer untouched", m.input.Value())
	}
	if last := lastMessage(t, m); last.Role != model.RoleSystem {
		t.Error("transcription failure should be reported as a system notice")
	}
}

func TestTeachToggleFailureKeepsLocalFlag(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:0")
	m, _ = apply(t, m, teach.ToggledMsg{Enabled: true})

	m, _ = apply(t, m, teach.ToggledMsg{Err: errors.New("nope")})

	if !m.teach.Enabled() {
		t.Error("a failed toggle must not change the confirmed flag")
	}
	if last := lastMessage(t, m); last.Role != model.RoleSystem {
		t.Error("toggle failure should be reported as a system notice")
	}
}
