package client

import (
	"time"

	"github.com/banshee-data/tuio/internal/clock"
)

// restartThreshold is how far current_frame must be ahead of an incoming
// frame number before it is treated as a source restart rather than a
// stale duplicate (spec §4.5).
const restartThreshold = 100

// staleRefreshThreshold bounds how long current_time may lag real time
// while frames are being rejected as late, refreshed so a long run of
// late frames doesn't leave current_time arbitrarily stale.
const staleRefreshThreshold = 100 * time.Millisecond

// frameArbiter implements the global (not per-source) frame acceptance
// rule from spec §4.5: a monotonically increasing frame counter with
// restart detection, ported field-for-field from the original
// Client::update_frame.
type frameArbiter struct {
	clk          clock.Clock
	startInstant time.Time
	currentFrame int32
	currentTime  time.Duration
}

func newFrameArbiter(clk clock.Clock) *frameArbiter {
	return &frameArbiter{clk: clk, startInstant: clk.Now(), currentFrame: -1}
}

func (a *frameArbiter) elapsed() time.Duration {
	return a.clk.Since(a.startInstant)
}

// updateFrame reports whether frame should be accepted and processed. A
// negative frame number (as sent on a goodbye/shutdown bundle) is always
// rejected, matching the original implementation.
func (a *frameArbiter) updateFrame(frame int32) bool {
	if frame < 0 {
		return false
	}

	current := a.currentFrame
	if frame > current {
		a.currentTime = a.elapsed()
	}

	if frame >= current || current-frame > restartThreshold {
		a.currentFrame = frame
		return true
	}

	if a.elapsed()-a.currentTime > staleRefreshThreshold {
		a.currentTime = a.elapsed()
	}
	return false
}
