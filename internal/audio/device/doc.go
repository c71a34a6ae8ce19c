// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package device implements audio capture and playback on real hardware.
//
// Recorder captures mono 16-bit PCM through miniaudio and wraps it in a WAV
// container for the transcription upload. Player decodes MP3 reply streams
// and renders them through the default output device. Both open their
// devices lazily so a machine without audio hardware fails only when a
// voice feature is actually used.
package device
