// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the memory server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/buddy-tui/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the server client.
type ClientConfig struct {
	// BaseURL is the memory server base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Token is the bearer credential. Empty is tolerated; deployments that
	// require auth answer 401 and that surfaces as an ordinary remote error.
	Token string

	// Timeout for requests (default: 60s; chat turns run an LLM server-side)
	Timeout time.Duration

	// RequestsPerSecond caps outbound calls (default: 5, burst 10).
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8000",
		Timeout:           60 * time.Second,
		RequestsPerSecond: 5,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the memory server. One Client is built at
// startup and threaded into every component; there is no package-level state.
//
// The Client is safe for concurrent use: independent user gestures (chat send,
// transcription, session mutation) may have calls in flight at the same time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.RWMutex
	token string
}

// NewClient creates a client with the given configuration, filling defaults
// for zero values.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 5
	}

	return &Client{
		baseURL: config.BaseURL,
		token:   config.Token,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 10),
	}
}

// SetToken replaces the bearer credential, e.g. after a config reload.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends one prompt and returns the completed turn. sessionID may be
// empty; the server then creates a session and reports its id in the result.
func (c *Client) Chat(ctx context.Context, prompt, sessionID string) (*ChatResult, error) {
	q := url.Values{}
	q.Set("prompt", prompt)
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}

	var result ChatResult
	if err := c.call(ctx, http.MethodPost, "/chat", q, nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// ListSessions fetches the sidebar session list.
func (c *Client) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	var result sessionListResponse
	if err := c.call(ctx, http.MethodGet, "/sidebar_sessions", nil, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Sessions, nil
}

// SessionMessages fetches the full stored history of one session.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]SessionMessage, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)

	var result sessionMessagesResponse
	if err := c.call(ctx, http.MethodGet, "/session_messages", q, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// CreateSession starts a new session under the given topic.
func (c *Client) CreateSession(ctx context.Context, topic string) (*CreateSessionResult, error) {
	q := url.Values{}
	if topic != "" {
		q.Set("topic", topic)
	}

	var result CreateSessionResult
	if err := c.call(ctx, http.MethodPost, "/session", q, nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSession removes a session and its history.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	q := url.Values{}
	q.Set("session_id", sessionID)

	var result messageResponse
	return c.call(ctx, http.MethodDelete, "/delete_session", q, nil, "", &result)
}

// RenameSession sets a session's title.
func (c *Client) RenameSession(ctx context.Context, sessionID, newTitle string) error {
	q := url.Values{}
	q.Set("session_id", sessionID)
	q.Set("new_name", newTitle)

	var result messageResponse
	return c.call(ctx, http.MethodPost, "/rename_session", q, nil, "", &result)
}

// =============================================================================
// TEACH MODE
// =============================================================================

// TeachMode reads the server-side teach-mode flag.
func (c *Client) TeachMode(ctx context.Context) (bool, error) {
	var result teachModeResponse
	if err := c.call(ctx, http.MethodGet, "/teach_mode", nil, nil, "", &result); err != nil {
		return false, err
	}
	return result.TeachMode, nil
}

// SetTeachMode flips the server-side teach-mode flag and returns the state
// the server confirmed, which is authoritative over the requested value.
func (c *Client) SetTeachMode(ctx context.Context, enabled bool) (bool, error) {
	q := url.Values{}
	q.Set("enabled", strconv.FormatBool(enabled))

	var result teachModeResponse
	if err := c.call(ctx, http.MethodPost, "/teach_mode", q, nil, "", &result); err != nil {
		return false, err
	}
	return result.TeachMode, nil
}

// =============================================================================
// AUDIO
// =============================================================================

// Transcribe uploads one recorded payload and returns the recognized text.
// The text may legitimately be empty.
func (c *Client) Transcribe(ctx context.Context, payload []byte, contentType string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="capture.wav"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", transportErr("transcribe", err)
	}
	if _, err := part.Write(payload); err != nil {
		return "", transportErr("transcribe", err)
	}
	if err := w.Close(); err != nil {
		return "", transportErr("transcribe", err)
	}

	var result transcriptionResponse
	if err := c.call(ctx, http.MethodPost, "/stt", nil, &buf, w.FormDataContentType(), &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// Synthesize requests speech audio for the given text. The caller owns the
// returned stream and must close it on every path.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	body := map[string]string{"text": text}
	if voiceID != "" {
		body["voice_id"] = voiceID
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, transportErr("synthesize", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/tts", nil, bytes.NewReader(encoded), "application/json")
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, "synthesize")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, remoteErr(resp)
	}
	return resp.Body, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// MaxUploadFiles is the server-side per-request cap on document uploads.
const MaxUploadFiles = 5

// UploadDocuments sends files for ingestion into the memory store. The
// server ingests what it can; per-file failures come back in the result
// rather than failing the whole request. The MaxUploadFiles cap is enforced
// by the caller and again by the server.
func (c *Client) UploadDocuments(ctx context.Context, files []DocumentFile) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := w.CreateFormFile("files", file.Name)
		if err != nil {
			return nil, transportErr("upload", err)
		}
		if _, err := part.Write(file.Payload); err != nil {
			return nil, transportErr("upload", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, transportErr("upload", err)
	}

	var result UploadResult
	if err := c.call(ctx, http.MethodPost, "/documents/upload", nil, &buf, w.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// MEMORY AND TOPICS
// =============================================================================

// SetTopic records a topic switch and retitles the session. sessionID may be
// empty; the server then allocates one and reports it back.
func (c *Client) SetTopic(ctx context.Context, newTopic, sessionID string) (*TopicResult, error) {
	q := url.Values{}
	q.Set("new_topic", newTopic)
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}

	var result TopicResult
	if err := c.call(ctx, http.MethodPost, "/topic", q, nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Summary asks the server to summarize one session.
func (c *Client) Summary(ctx context.Context, sessionID string) (*SummaryResult, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)

	var result SummaryResult
	if err := c.call(ctx, http.MethodGet, "/summary", q, nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchTopic runs a vector search over stored memories.
func (c *Client) SearchTopic(ctx context.Context, query string, limit int) ([]MemoryHit, error) {
	q := url.Values{}
	q.Set("query", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var result searchTopicResponse
	if err := c.call(ctx, http.MethodGet, "/search_topic", q, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// Memories lists everything the memory store holds for the operator.
func (c *Client) Memories(ctx context.Context) ([]MemoryHit, error) {
	var result memoriesResponse
	if err := c.call(ctx, http.MethodGet, "/all", nil, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Memories, nil
}

// ResetMemory wipes the memory store. Destructive; callers gate this behind
// a confirmation.
func (c *Client) ResetMemory(ctx context.Context) (string, error) {
	var result messageResponse
	if err := c.call(ctx, http.MethodPost, "/reset", nil, nil, "", &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a bearer token. The token is returned, not
// stored; the caller decides whether to adopt it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	encoded, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", transportErr("login", err)
	}

	var result loginResponse
	if err := c.call(ctx, http.MethodPost, "/login", nil, bytes.NewReader(encoded), "application/json", &result); err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// call performs one request/decode round trip. Non-2xx responses become
// RemoteError with the body detail preserved; network failures become
// TransportError.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.send(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remoteErr(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     "malformed response body: " + err.Error(),
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, transportErr(path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) send(req *http.Request, op string) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, transportErr(op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportErr(op, err)
	}
	return resp, nil
}

// remoteErr builds a RemoteError from a non-success response, extracting the
// FastAPI-style {"detail": ...} body when present and keeping the raw body
// otherwise.
func remoteErr(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	detail := string(bytes.TrimSpace(raw))
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			detail = s
		} else {
			detail = string(envelope.Detail)
		}
	}

	return &RemoteError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Detail:     detail,
	}
}
