// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package device implements audio capture and playback on real hardware.
package device

import "encoding/binary"

// encodeWAV wraps raw 16-bit little-endian PCM in a RIFF/WAVE container.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := make([]byte, 0, 44+len(pcm))
	le := binary.LittleEndian

	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		le.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		le.PutUint16(b, v)
		return b
	}

	buf = append(buf, "RIFF"...)
	buf = append(buf, u32(uint32(36+len(pcm)))...)
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = append(buf, u32(16)...)                    // PCM chunk size
	buf = append(buf, u16(1)...)                     // PCM format
	buf = append(buf, u16(uint16(channels))...)
	buf = append(buf, u32(uint32(sampleRate))...)
	buf = append(buf, u32(uint32(byteRate))...)
	buf = append(buf, u16(uint16(blockAlign))...)
	buf = append(buf, u16(bitsPerSample)...)

	buf = append(buf, "data"...)
	buf = append(buf, u32(uint32(len(pcm)))...)
	buf = append(buf, pcm...)
	return buf
}
