package alerting

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestGate_SeedMode(t *testing.T) {
	g := NewGate(10*time.Second, false)

	if g.Observe(t0) {
		t.Error("first observation should seed, not fire")
	}

	if g.Observe(t0.Add(5 * time.Second)) {
		t.Error("observation inside the window should not fire")
	}

	if !g.Observe(t0.Add(11 * time.Second)) {
		t.Error("observation past the window should fire")
	}

	// Firing cleared the timer, so the next observation seeds again.
	if g.Observe(t0.Add(30 * time.Second)) {
		t.Error("observation after firing should seed a fresh window")
	}
}

func TestGate_FireFirstMode(t *testing.T) {
	g := NewGate(time.Minute, true)

	if !g.Observe(t0) {
		t.Error("first observation should fire in fire-first mode")
	}

	if g.Observe(t0.Add(30 * time.Second)) {
		t.Error("observation inside the window should not fire")
	}

	if !g.Observe(t0.Add(61 * time.Second)) {
		t.Error("observation past the window should fire")
	}

	// Fire-first keeps the timestamp, so the window restarts from the
	// last firing.
	if g.Observe(t0.Add(90 * time.Second)) {
		t.Error("observation inside the restarted window should not fire")
	}
}

func TestGate_ExactWindowBoundaryDoesNotFire(t *testing.T) {
	g := NewGate(10*time.Second, false)

	g.Observe(t0)
	if g.Observe(t0.Add(10 * time.Second)) {
		t.Error("gap equal to the window should not fire; it must exceed it")
	}
}

func TestGate_Clear(t *testing.T) {
	g := NewGate(10*time.Second, false)

	g.Observe(t0)
	if !g.Armed() {
		t.Fatal("expected gate to be armed after seeding")
	}

	g.Clear()
	if g.Armed() {
		t.Error("expected gate to be unset after clear")
	}

	// Post-clear the next observation seeds again.
	if g.Observe(t0.Add(time.Hour)) {
		t.Error("observation after clear should seed, not fire")
	}
}
