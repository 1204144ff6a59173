package alerting

import (
	"time"

	"github.com/tranvd/attendance-kiosk/internal/pipeline"
)

// SnapshotRequest asks for a violation snapshot to be persisted and uploaded.
type SnapshotRequest struct {
	Status pipeline.Status // spoof or unknown
	At     time.Time
}

// Throttle rate-limits violation snapshots per anomaly kind. Both gates run
// in seed mode: the first spoof/unknown frame starts the cooldown window and
// only a repeat after the window fires, so at most one snapshot per window
// per kind is produced.
type Throttle struct {
	spoof   *Gate
	unknown *Gate
}

// NewThrottle creates a throttle with per-kind cooldown windows.
func NewThrottle(spoofCooldown, unknownCooldown time.Duration) *Throttle {
	return &Throttle{
		spoof:   NewGate(spoofCooldown, false),
		unknown: NewGate(unknownCooldown, false),
	}
}

// OnStatus feeds one frame's status. Any non-anomalous status clears both
// timers. Returns a snapshot request when a gate fires, nil otherwise.
func (t *Throttle) OnStatus(status pipeline.Status, now time.Time) *SnapshotRequest {
	switch status {
	case pipeline.StatusSpoof:
		if t.spoof.Observe(now) {
			return &SnapshotRequest{Status: status, At: now}
		}
	case pipeline.StatusUnknown:
		if t.unknown.Observe(now) {
			return &SnapshotRequest{Status: status, At: now}
		}
	default:
		t.spoof.Clear()
		t.unknown.Clear()
	}
	return nil
}
