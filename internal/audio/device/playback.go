// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package device implements audio capture and playback on real hardware.
package device

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// =============================================================================
// MP3 PLAYER
// =============================================================================

// Player renders synthesized MP3 replies to the default output device.
//
// The oto context can only be created once per process, so the first stream
// fixes the output sample rate. Synthesized replies all come from the same
// backend at the same rate, so in practice this never changes.
type Player struct {
	mu   sync.Mutex
	ctx  *oto.Context
	rate int
}

// NewPlayer returns an idle player. The output device is opened lazily on
// the first Play.
func NewPlayer() *Player {
	return &Player{}
}

// Play decodes the stream and blocks until playback finishes. The stream is
// always closed.
func (p *Player) Play(stream io.ReadCloser) error {
	defer stream.Close()

	decoder, err := mp3.NewDecoder(stream)
	if err != nil {
		return fmt.Errorf("failed to decode reply audio: %w", err)
	}

	ctx, err := p.context(decoder.SampleRate())
	if err != nil {
		return err
	}

	player := ctx.NewPlayer(decoder)
	defer player.Close()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(20 * time.Millisecond)
	}
	if err := player.Err(); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// context returns the process-wide output context, creating it on first use.
func (p *Player) context(sampleRate int) (*oto.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		if p.rate != sampleRate {
			return nil, fmt.Errorf("output device is fixed at %d Hz, stream is %d Hz", p.rate, sampleRate)
		}
		return p.ctx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2, // go-mp3 always decodes to stereo
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open output device: %w", err)
	}
	<-ready

	p.ctx = ctx
	p.rate = sampleRate
	return ctx, nil
}
