// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package teach tracks the server-side teach-mode flag and the local
// learning indicator.
package teach

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buddy-tui/internal/api"
)

// learnedHold is how long the "learned" acknowledgement stays on screen
// before the indicator drops back to idle on its own.
const learnedHold = 2500 * time.Millisecond

// opTimeout bounds teach-mode round trips.
const opTimeout = 15 * time.Second

// =============================================================================
// STATUS
// =============================================================================

// Status is the local learning indicator. It is presentation state layered
// on top of the server's enabled flag: Learning while a teach-mode turn is
// in flight, Learned briefly after the server confirms capture.
type Status int

const (
	StatusIdle Status = iota
	StatusLearning
	StatusLearned
)

// String returns the status label shown in the UI.
func (s Status) String() string {
	switch s {
	case StatusLearning:
		return "learning"
	case StatusLearned:
		return "learned"
	default:
		return "idle"
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds teach-mode state. The server owns the enabled flag; the
// controller mirrors it and never invents a value the server did not
// confirm. Mutated only from the update loop.
type Controller struct {
	enabled bool
	status  Status

	// gen invalidates pending learned-expiry timers. Every transition
	// bumps it, so a tick minted before the transition matches nothing
	// and is dropped.
	gen uint64
}

// NewController returns a controller in the idle, disabled state.
func NewController() *Controller {
	return &Controller{}
}

// Enabled reports the last server-confirmed teach-mode flag.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// Status returns the current learning indicator.
func (c *Controller) Status() Status {
	return c.status
}

// Adopt records a server-confirmed enabled value. Disabling drops the
// indicator; enabling leaves it idle until a turn is actually submitted.
func (c *Controller) Adopt(enabled bool) {
	c.enabled = enabled
	if !enabled {
		c.forceIdle()
	}
}

// ArmLearning marks a teach-mode turn as in flight. No-op when teach mode
// is off.
func (c *Controller) ArmLearning() {
	if !c.enabled {
		return
	}
	c.gen++
	c.status = StatusLearning
}

// OnTurnSettled resolves the indicator after a turn completes. A silent
// reply means the server captured the lesson: show Learned and schedule its
// expiry. Anything else returns to idle immediately.
func (c *Controller) OnTurnSettled(silent bool) tea.Cmd {
	c.gen++
	if !silent || c.status != StatusLearning {
		c.status = StatusIdle
		return nil
	}

	c.status = StatusLearned
	gen := c.gen
	return tea.Tick(learnedHold, func(time.Time) tea.Msg {
		return ExpireMsg{Gen: gen}
	})
}

// Expire handles a learned-hold tick. Stale ticks, identified by a
// generation that no longer matches, are ignored.
func (c *Controller) Expire(msg ExpireMsg) {
	if msg.Gen != c.gen || c.status != StatusLearned {
		return
	}
	c.status = StatusIdle
}

// forceIdle drops the indicator and invalidates any pending expiry.
func (c *Controller) forceIdle() {
	c.gen++
	c.status = StatusIdle
}

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// StateMsg carries the server's teach-mode flag from a refresh.
type StateMsg struct {
	Enabled bool
	Err     error
}

// ToggledMsg carries the server-confirmed flag after a toggle request.
type ToggledMsg struct {
	Enabled bool
	Err     error
}

// ExpireMsg ends the learned hold. Gen ties it to the transition that
// scheduled it.
type ExpireMsg struct {
	Gen uint64
}

// =============================================================================
// COMMANDS
// =============================================================================

// RefreshCmd reads the server's teach-mode flag. Used at startup; a failure
// is reported but the UI treats it as non-fatal and keeps its last state.
func RefreshCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		enabled, err := client.TeachMode(ctx)
		if err != nil {
			slog.Warn("teach mode refresh failed", "error", err)
			return StateMsg{Err: err}
		}
		return StateMsg{Enabled: enabled}
	}
}

// ToggleCmd asks the server to set teach mode and reports what the server
// actually confirmed.
func ToggleCmd(client *api.Client, enable bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		confirmed, err := client.SetTeachMode(ctx, enable)
		if err != nil {
			return ToggledMsg{Err: err}
		}
		return ToggledMsg{Enabled: confirmed}
	}
}
