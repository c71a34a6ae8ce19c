// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package device implements audio capture and playback on real hardware.
package device

import (
	"testing"
	"time"
)

// Real capture needs a microphone, so these tests exercise the recorder's
// bookkeeping paths only. Stop must detach the handles under the lock and
// tear them down outside it, because the miniaudio data callback takes the
// same lock while Uninit drains it.

func TestStopWithoutStartFails(t *testing.T) {
	r := NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, _, err := r.Stop(); err == nil {
			t.Error("stop without a running capture must fail")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an idle recorder")
	}
}

func TestStopTwiceFailsSecondTime(t *testing.T) {
	r := NewRecorder()
	if _, _, err := r.Stop(); err == nil {
		t.Fatal("first stop on an idle recorder must fail")
	}
	if _, _, err := r.Stop(); err == nil {
		t.Fatal("second stop must fail the same way")
	}
}
