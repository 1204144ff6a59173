// Package alerting debounces anomaly statuses and produces violation
// snapshots so a 30fps stream cannot flood the backing store or the upload
// bucket.
package alerting

import "time"

// Gate is a debounce timer held as an optional timestamp. In seed mode the
// first observation only starts the window (a single noisy frame never
// fires); in fire-first mode the first observation fires immediately and
// later ones are suppressed until the window has passed.
type Gate struct {
	window    time.Duration
	fireFirst bool
	last      *time.Time
}

// NewGate creates a gate with the given cooldown window.
func NewGate(window time.Duration, fireFirst bool) *Gate {
	return &Gate{window: window, fireFirst: fireFirst}
}

// Observe records an event at now and reports whether it should fire.
func (g *Gate) Observe(now time.Time) bool {
	if g.last == nil {
		t := now
		g.last = &t
		return g.fireFirst
	}

	if now.Sub(*g.last) > g.window {
		if g.fireFirst {
			t := now
			g.last = &t
		} else {
			// After firing the timer is cleared, so the next
			// observation seeds a fresh window.
			g.last = nil
		}
		return true
	}

	return false
}

// Clear unsets the timer.
func (g *Gate) Clear() {
	g.last = nil
}

// Armed reports whether the gate currently holds a timestamp.
func (g *Gate) Armed() bool {
	return g.last != nil
}
