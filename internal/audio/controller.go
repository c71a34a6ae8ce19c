// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio coordinates voice capture, transcription, and reply playback.
package audio

import (
	"errors"
	"fmt"
	"io"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy means another audio activity holds the device. Capture and
	// playback are mutually exclusive; a conflicting start is refused
	// without touching the current activity.
	ErrBusy = errors.New("audio is busy")

	// ErrNotRecording means stop was requested with no capture running.
	ErrNotRecording = errors.New("no recording in progress")

	// ErrEmptyCapture means the recording produced no usable audio.
	// Nothing is sent to the server.
	ErrEmptyCapture = errors.New("recording captured no audio")

	// ErrCaptureUnavailable means no capture device could be opened.
	ErrCaptureUnavailable = errors.New("no capture device available")

	// ErrPlaybackUnavailable means no output device could be opened.
	ErrPlaybackUnavailable = errors.New("no playback device available")

	// ErrNoReply means playback was requested before any assistant reply
	// existed in the transcript.
	ErrNoReply = errors.New("no reply to play yet")
)

// =============================================================================
// DEVICE INTERFACES
// =============================================================================

// Recorder captures microphone audio. Start opens the device and begins
// buffering; Stop releases the device and returns the captured payload as a
// WAV container. Implementations must release the device even when Stop
// returns an error.
type Recorder interface {
	Start(sampleRate int) error
	Stop() (payload []byte, contentType string, err error)
}

// Player renders one synthesized reply stream to the output device, blocking
// until playback finishes. The stream is closed by the player.
type Player interface {
	Play(stream io.ReadCloser) error
}

// =============================================================================
// STATE
// =============================================================================

// State is the audio activity. At most one activity runs at a time.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StatePlaying
)

// String returns the state label shown in the UI.
func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the audio state machine. Mutated only from the update
// loop; the blocking device and network work happens inside commands, and
// the controller transitions on dispatch and on the resulting message.
type Controller struct {
	state    State
	recorder Recorder
	player   Player
}

// NewController wires a controller to its devices. Either device may be nil
// when the platform has no audio support; starting the matching activity
// then fails with its unavailable error.
func NewController(recorder Recorder, player Player) *Controller {
	return &Controller{recorder: recorder, player: player}
}

// State returns the current activity.
func (c *Controller) State() State {
	return c.state
}

// Idle reports whether no audio activity is running.
func (c *Controller) Idle() bool {
	return c.state == StateIdle
}

// StartRecording opens the capture device. Refused with ErrBusy while any
// activity is running; a device failure leaves the controller idle.
func (c *Controller) StartRecording(sampleRate int) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if c.recorder == nil {
		return ErrCaptureUnavailable
	}
	if err := c.recorder.Start(sampleRate); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	c.state = StateRecording
	return nil
}

// StopRecording releases the capture device and returns the payload. An
// empty capture returns ErrEmptyCapture and the controller goes back to
// idle; a usable payload moves it to transcribing, and the caller must
// dispatch the transcription command.
func (c *Controller) StopRecording() (payload []byte, contentType string, err error) {
	if c.state != StateRecording {
		return nil, "", ErrNotRecording
	}

	payload, contentType, err = c.recorder.Stop()
	if err != nil {
		c.state = StateIdle
		return nil, "", err
	}
	if len(payload) == 0 {
		c.state = StateIdle
		return nil, "", ErrEmptyCapture
	}

	c.state = StateTranscribing
	return payload, contentType, nil
}

// FinishTranscription returns the controller to idle after the
// transcription command resolves, success or not.
func (c *Controller) FinishTranscription() {
	if c.state == StateTranscribing {
		c.state = StateIdle
	}
}

// StartPlayback claims the device for playback. Refused with ErrBusy while
// any activity is running.
func (c *Controller) StartPlayback() error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if c.player == nil {
		return ErrPlaybackUnavailable
	}
	c.state = StatePlaying
	return nil
}

// FinishPlayback returns the controller to idle after the playback command
// resolves, success or not.
func (c *Controller) FinishPlayback() {
	if c.state == StatePlaying {
		c.state = StateIdle
	}
}

// Player returns the wired output device for playback commands.
func (c *Controller) Player() Player {
	return c.player
}

// Close releases whatever the controller still holds. A capture left running
// at teardown is stopped and its payload discarded, so the input handle is
// released no matter how the program exits the update loop.
func (c *Controller) Close() error {
	if c.state == StateRecording && c.recorder != nil {
		_, _, err := c.recorder.Stop()
		c.state = StateIdle
		return err
	}
	c.state = StateIdle
	return nil
}
