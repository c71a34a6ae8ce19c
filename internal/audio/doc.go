// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio coordinates voice capture, transcription, and reply playback.
//
// A single state machine guards the device: idle, recording, transcribing,
// or playing, never two at once. Conflicting starts are refused without
// disturbing the running activity. The state always returns to idle when an
// activity resolves, including every failure path, so a failed upload or a
// dead device can never wedge the voice features.
//
// The Recorder and Player interfaces isolate the platform device code in
// the device subpackage; tests substitute in-memory fakes.
package audio
