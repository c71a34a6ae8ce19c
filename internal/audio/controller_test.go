// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio coordinates voice capture, transcription, and reply playback.
package audio

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/buddy-tui/internal/api"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeRecorder struct {
	payload  []byte
	startErr error
	stopErr  error
	started  int
	stopped  int
}

func (f *fakeRecorder) Start(sampleRate int) error {
	f.started++
	return f.startErr
}

func (f *fakeRecorder) Stop() ([]byte, string, error) {
	f.stopped++
	if f.stopErr != nil {
		return nil, "", f.stopErr
	}
	return f.payload, "audio/wav", nil
}

type fakePlayer struct {
	played int
	err    error
}

func (f *fakePlayer) Play(stream io.ReadCloser) error {
	f.played++
	io.Copy(io.Discard, stream)
	stream.Close()
	return f.err
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestRecordingLifecycle(t *testing.T) {
	rec := &fakeRecorder{payload: []byte("RIFFdata")}
	c := NewController(rec, &fakePlayer{})

	require.NoError(t, c.StartRecording(16000))
	assert.Equal(t, StateRecording, c.State())

	payload, contentType, err := c.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFdata"), payload)
	assert.Equal(t, "audio/wav", contentType)
	assert.Equal(t, StateTranscribing, c.State())

	c.FinishTranscription()
	assert.Equal(t, StateIdle, c.State())
}

func TestSecondStartIsRefused(t *testing.T) {
	rec := &fakeRecorder{payload: []byte("x")}
	c := NewController(rec, &fakePlayer{})

	require.NoError(t, c.StartRecording(16000))
	err := c.StartRecording(16000)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, rec.started, "the running capture must not be disturbed")
	assert.Equal(t, StateRecording, c.State())
}

func TestEmptyCaptureReturnsToIdle(t *testing.T) {
	rec := &fakeRecorder{payload: nil}
	c := NewController(rec, &fakePlayer{})

	require.NoError(t, c.StartRecording(16000))
	_, _, err := c.StopRecording()
	assert.ErrorIs(t, err, ErrEmptyCapture)
	assert.Equal(t, StateIdle, c.State())
}

func TestStopWithoutRecording(t *testing.T) {
	c := NewController(&fakeRecorder{}, &fakePlayer{})
	_, _, err := c.StopRecording()
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestDeviceFailureLeavesIdle(t *testing.T) {
	rec := &fakeRecorder{startErr: errors.New("no such device")}
	c := NewController(rec, &fakePlayer{})

	err := c.StartRecording(16000)
	assert.ErrorIs(t, err, ErrCaptureUnavailable)
	assert.Equal(t, StateIdle, c.State())
}

func TestStopErrorReleasesState(t *testing.T) {
	rec := &fakeRecorder{stopErr: errors.New("device yanked")}
	c := NewController(rec, &fakePlayer{})

	require.NoError(t, c.StartRecording(16000))
	_, _, err := c.StopRecording()
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.State(), "failure must still release the device")
}

func TestNilRecorder(t *testing.T) {
	c := NewController(nil, &fakePlayer{})
	err := c.StartRecording(16000)
	assert.ErrorIs(t, err, ErrCaptureUnavailable)
}

func TestPlaybackExcludesRecording(t *testing.T) {
	c := NewController(&fakeRecorder{payload: []byte("x")}, &fakePlayer{})

	require.NoError(t, c.StartPlayback())
	assert.Equal(t, StatePlaying, c.State())

	assert.ErrorIs(t, c.StartRecording(16000), ErrBusy)
	assert.ErrorIs(t, c.StartPlayback(), ErrBusy)

	c.FinishPlayback()
	assert.Equal(t, StateIdle, c.State())
	require.NoError(t, c.StartRecording(16000))
}

func TestCloseReleasesRunningCapture(t *testing.T) {
	rec := &fakeRecorder{payload: []byte("half a lesson")}
	c := NewController(rec, &fakePlayer{})

	require.NoError(t, c.StartRecording(16000))
	require.NoError(t, c.Close())
	assert.Equal(t, 1, rec.stopped, "teardown must release the capture device")
	assert.Equal(t, StateIdle, c.State())
}

func TestCloseWhenIdleIsNoOp(t *testing.T) {
	rec := &fakeRecorder{}
	c := NewController(rec, &fakePlayer{})

	require.NoError(t, c.Close())
	assert.Equal(t, 0, rec.stopped)
	assert.Equal(t, StateIdle, c.State())
}

func TestCloseSurfacesStopError(t *testing.T) {
	rec := &fakeRecorder{stopErr: errors.New("device yanked")}
	c := NewController(rec, &fakePlayer{})

	require.NoError(t, c.StartRecording(16000))
	assert.Error(t, c.Close())
	assert.Equal(t, StateIdle, c.State(), "teardown failure must still land idle")
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestTranscribeCmd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"text":"hello"}`)
	}))
	defer ts.Close()

	msg := TranscribeCmd(testClient(ts), []byte("RIFF"), "audio/wav")()
	got, ok := msg.(TranscriptionMsg)
	require.True(t, ok)
	require.NoError(t, got.Err)
	assert.Equal(t, "hello", got.Text)
}

func TestTranscribeCmdRemoteFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"detail":"Speech-to-text failed"}`)
	}))
	defer ts.Close()

	msg := TranscribeCmd(testClient(ts), []byte("RIFF"), "audio/wav")()
	got, ok := msg.(TranscriptionMsg)
	require.True(t, ok)
	require.Error(t, got.Err)
	assert.True(t, api.IsRemote(got.Err))
}

func TestPlayCmd(t *testing.T) {
	var synthCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&synthCalls, 1)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte{0xFF, 0xFB})
	}))
	defer ts.Close()

	player := &fakePlayer{}
	msg := PlayCmd(testClient(ts), player, "read me", "voice-1")()
	done, ok := msg.(PlaybackDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.Equal(t, 1, player.played)
	assert.Equal(t, int32(1), atomic.LoadInt32(&synthCalls))
}

func TestPlayCmdSynthesisFailureSkipsPlayer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"detail":"TTS unavailable"}`)
	}))
	defer ts.Close()

	player := &fakePlayer{}
	msg := PlayCmd(testClient(ts), player, "read me", "")()
	done, ok := msg.(PlaybackDoneMsg)
	require.True(t, ok)
	require.Error(t, done.Err)
	assert.Equal(t, 0, player.played)
}

func testClient(ts *httptest.Server) *api.Client {
	return api.NewClient(&api.ClientConfig{
		BaseURL:           ts.URL,
		RequestsPerSecond: 1000,
	})
}
