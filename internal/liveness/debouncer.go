// Package liveness converts noisy per-frame anti-spoofing classifications
// into a stable verdict by requiring runs of consecutive same-sign
// observations.
package liveness

// Verdict is the debounced liveness decision for the current frame.
type Verdict int

const (
	// Pending means neither counter has reached its threshold yet.
	Pending Verdict = iota
	// ConfirmedReal means enough consecutive real frames have been seen;
	// the caller should proceed to identity matching.
	ConfirmedReal
	// ConfirmedSpoof means enough consecutive spoof frames have been seen.
	ConfirmedSpoof
)

func (v Verdict) String() string {
	switch v {
	case ConfirmedReal:
		return "real"
	case ConfirmedSpoof:
		return "spoof"
	default:
		return "pending"
	}
}

// State holds the two run counters. At most one of the counters is non-zero
// at any time: incrementing one resets the other.
type State struct {
	ConsecutiveReal  int
	ConsecutiveSpoof int
}

// Debouncer applies threshold-based debouncing to a stream of per-frame
// real/spoof booleans. A single-frame classification is noisy; requiring N
// consecutive observations before acting trades N frames of latency for
// stability.
type Debouncer struct {
	state          State
	realThreshold  int
	spoofThreshold int
}

// NewDebouncer creates a debouncer with the given run-length thresholds.
// Thresholds below 1 are treated as 1 (every observation confirms).
func NewDebouncer(realThreshold, spoofThreshold int) *Debouncer {
	if realThreshold < 1 {
		realThreshold = 1
	}
	if spoofThreshold < 1 {
		spoofThreshold = 1
	}
	return &Debouncer{realThreshold: realThreshold, spoofThreshold: spoofThreshold}
}

// Observe feeds one frame's classification and returns the debounced verdict.
func (d *Debouncer) Observe(isReal bool) Verdict {
	d.state = Transition(d.state, isReal)

	switch {
	case d.state.ConsecutiveReal >= d.realThreshold:
		return ConfirmedReal
	case d.state.ConsecutiveSpoof >= d.spoofThreshold:
		return ConfirmedSpoof
	default:
		return Pending
	}
}

// Reset zeroes both counters. Called when no face is present in the frame.
func (d *Debouncer) Reset() {
	d.state = State{}
}

// State returns a copy of the current counters.
func (d *Debouncer) State() State {
	return d.state
}

// Transition is the pure counter update: an observation increments its own
// run counter and zeroes the opposing one.
func Transition(s State, isReal bool) State {
	if isReal {
		return State{ConsecutiveReal: s.ConsecutiveReal + 1}
	}
	return State{ConsecutiveSpoof: s.ConsecutiveSpoof + 1}
}
