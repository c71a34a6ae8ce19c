// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry tracks the remote session list and the active session.
package registry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

func TestRegistryState(t *testing.T) {
	r := New()

	assert.False(t, r.HasActive())
	assert.Empty(t, r.Sessions())

	r.Replace([]model.SessionSummary{
		{SessionID: "s1", Title: "Biology"},
		{SessionID: "s2", Title: "History"},
	})
	assert.Equal(t, 2, r.Len())

	r.SetActive("s2")
	assert.True(t, r.HasActive())

	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, "History", active.Title)

	// Replace keeps the active pointer even if the session dropped out.
	r.Replace([]model.SessionSummary{{SessionID: "s1", Title: "Biology"}})
	assert.Equal(t, "s2", r.ActiveID())
	_, ok = r.Active()
	assert.False(t, ok)

	r.ClearActive()
	assert.False(t, r.HasActive())
}

func TestFind(t *testing.T) {
	r := New()
	r.Replace([]model.SessionSummary{{SessionID: "s1", Title: "Biology"}})

	got, ok := r.Find("s1")
	require.True(t, ok)
	assert.Equal(t, "Biology", got.Title)

	_, ok = r.Find("missing")
	assert.False(t, ok)
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestListCmd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"sessions":[{"session_id":"s1","title":"Biology"}]}`)
	}))
	defer ts.Close()

	msg := ListCmd(testClient(ts))()
	loaded, ok := msg.(SessionsLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	require.Len(t, loaded.Sessions, 1)
	assert.Equal(t, "s1", loaded.Sessions[0].SessionID)
}

func TestCreateCmdRefreshesList(t *testing.T) {
	var listCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			assert.Equal(t, "cells", r.URL.Query().Get("topic"))
			io.WriteString(w, `{"session_id":"s-new","message":"created"}`)
		case "/sidebar_sessions":
			atomic.AddInt32(&listCalls, 1)
			io.WriteString(w, `{"sessions":[{"session_id":"s-new","title":"cells"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	msg := CreateCmd(testClient(ts), "cells")()
	created, ok := msg.(SessionCreatedMsg)
	require.True(t, ok)
	require.NoError(t, created.Err)
	assert.Equal(t, "s-new", created.SessionID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))
	require.Len(t, created.Sessions, 1)
}

func TestCreateCmdFailureSkipsRefresh(t *testing.T) {
	var listCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sidebar_sessions" {
			atomic.AddInt32(&listCalls, 1)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"boom"}`)
	}))
	defer ts.Close()

	msg := CreateCmd(testClient(ts), "cells")()
	created, ok := msg.(SessionCreatedMsg)
	require.True(t, ok)
	require.Error(t, created.Err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&listCalls), "failed mutation must not refresh")
}

func TestSelectCmdNormalizesRoles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s1", r.URL.Query().Get("session_id"))
		io.WriteString(w, `{"messages":[
			{"role":"user","content":"what is a cell","timestamp":"2025-01-01T10:00:00"},
			{"role":"assistant","content":"a cell is...","timestamp":"2025-01-01T10:00:05"}
		]}`)
	}))
	defer ts.Close()

	msg := SelectCmd(testClient(ts), "s1")()
	selected, ok := msg.(SessionSelectedMsg)
	require.True(t, ok)
	require.NoError(t, selected.Err)
	require.Len(t, selected.Messages, 2)
	assert.Equal(t, model.RoleTeacher, selected.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, selected.Messages[1].Role)
}

func TestSelectCmdFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Session not found"}`)
	}))
	defer ts.Close()

	msg := SelectCmd(testClient(ts), "ghost")()
	selected, ok := msg.(SessionSelectedMsg)
	require.True(t, ok)
	require.Error(t, selected.Err)
	assert.True(t, api.IsRemote(selected.Err))
	assert.Empty(t, selected.Messages)
}

func TestDeleteCmdCarriesWasActive(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delete_session":
			assert.Equal(t, http.MethodDelete, r.Method)
			io.WriteString(w, `{"message":"deleted"}`)
		case "/sidebar_sessions":
			io.WriteString(w, `{"sessions":[]}`)
		}
	}))
	defer ts.Close()

	msg := DeleteCmd(testClient(ts), "s1", true)()
	deleted, ok := msg.(SessionDeletedMsg)
	require.True(t, ok)
	require.NoError(t, deleted.Err)
	assert.True(t, deleted.WasActive)
	assert.Empty(t, deleted.Sessions)
}

func testClient(ts *httptest.Server) *api.Client {
	return api.NewClient(&api.ClientConfig{
		BaseURL:           ts.URL,
		RequestsPerSecond: 1000,
	})
}
