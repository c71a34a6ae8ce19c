// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package device implements audio capture and playback on real hardware.
package device

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// maxCaptureBytes caps a runaway recording. At 16 kHz mono s16 this is a
// little over ten minutes; the callback stops buffering past it.
const maxCaptureBytes = 20 << 20

// =============================================================================
// MICROPHONE RECORDER
// =============================================================================

// Recorder captures mono 16-bit PCM from the default input device and hands
// it back as a WAV container. One capture at a time; the controller above it
// enforces that, but the recorder also guards itself.
type Recorder struct {
	mu         sync.Mutex
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	buf        []byte
	sampleRate int
}

// NewRecorder returns an idle recorder. The device is opened lazily on
// Start so a machine without a microphone only fails when capture is
// actually requested.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start opens the default capture device and begins buffering.
func (r *Recorder) Start(sampleRate int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device != nil {
		return fmt.Errorf("capture already running")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(sampleRate)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			r.mu.Lock()
			if len(r.buf) < maxCaptureBytes {
				r.buf = append(r.buf, input...)
			}
			r.mu.Unlock()
		},
	}

	device, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to open capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to start capture: %w", err)
	}

	r.ctx = ctx
	r.device = device
	r.buf = nil
	r.sampleRate = sampleRate
	return nil
}

// Stop releases the device and returns the capture as a WAV payload. The
// device is released on every path.
//
// Uninit blocks until the data callback drains, and the callback takes the
// mutex, so the handles are detached under the lock and torn down outside it.
func (r *Recorder) Stop() ([]byte, string, error) {
	r.mu.Lock()
	device := r.device
	ctx := r.ctx
	r.device = nil
	r.ctx = nil
	r.mu.Unlock()

	if device == nil {
		return nil, "", fmt.Errorf("capture not running")
	}

	device.Uninit()
	ctx.Uninit()
	ctx.Free()

	r.mu.Lock()
	pcm := r.buf
	sampleRate := r.sampleRate
	r.buf = nil
	r.mu.Unlock()

	if len(pcm) == 0 {
		return nil, "", nil
	}
	return encodeWAV(pcm, sampleRate, 1), "audio/wav", nil
}
