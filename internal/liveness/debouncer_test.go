package liveness

import "testing"

func TestObserve_ConfirmsRealAtThreshold(t *testing.T) {
	d := NewDebouncer(3, 2)

	if v := d.Observe(true); v != Pending {
		t.Errorf("frame 1: expected Pending, got %v", v)
	}

	if v := d.Observe(true); v != Pending {
		t.Errorf("frame 2: expected Pending, got %v", v)
	}

	if v := d.Observe(true); v != ConfirmedReal {
		t.Errorf("frame 3: expected ConfirmedReal, got %v", v)
	}
}

func TestObserve_ConfirmsSpoofAtThreshold(t *testing.T) {
	d := NewDebouncer(3, 2)

	if v := d.Observe(false); v != Pending {
		t.Errorf("frame 1: expected Pending, got %v", v)
	}

	if v := d.Observe(false); v != ConfirmedSpoof {
		t.Errorf("frame 2: expected ConfirmedSpoof, got %v", v)
	}
}

func TestObserve_SingleFlickerResetsRealRun(t *testing.T) {
	d := NewDebouncer(3, 5)

	d.Observe(true)
	d.Observe(true)
	d.Observe(false) // flicker

	s := d.State()
	if s.ConsecutiveReal != 0 {
		t.Errorf("expected real counter reset to 0, got %d", s.ConsecutiveReal)
	}
	if s.ConsecutiveSpoof != 1 {
		t.Errorf("expected spoof counter 1, got %d", s.ConsecutiveSpoof)
	}

	// The real run starts over from scratch.
	d.Observe(true)
	d.Observe(true)
	if v := d.Observe(true); v != ConfirmedReal {
		t.Errorf("expected ConfirmedReal after fresh run of 3, got %v", v)
	}
}

func TestObserve_CountersNeverBothNonZero(t *testing.T) {
	d := NewDebouncer(100, 100)

	pattern := []bool{true, true, false, true, false, false, true}
	for i, isReal := range pattern {
		d.Observe(isReal)
		s := d.State()
		if s.ConsecutiveReal != 0 && s.ConsecutiveSpoof != 0 {
			t.Fatalf("after observation %d: both counters non-zero (%+v)", i, s)
		}
	}
}

func TestObserve_StaysConfirmedPastThreshold(t *testing.T) {
	d := NewDebouncer(2, 2)

	d.Observe(true)
	d.Observe(true)

	// Further real frames keep confirming.
	if v := d.Observe(true); v != ConfirmedReal {
		t.Errorf("expected ConfirmedReal past threshold, got %v", v)
	}
}

func TestReset(t *testing.T) {
	d := NewDebouncer(3, 3)

	d.Observe(true)
	d.Observe(true)
	d.Reset()

	s := d.State()
	if s.ConsecutiveReal != 0 || s.ConsecutiveSpoof != 0 {
		t.Errorf("expected zeroed counters after reset, got %+v", s)
	}
}

func TestNewDebouncer_ClampsThresholds(t *testing.T) {
	d := NewDebouncer(0, -1)

	if v := d.Observe(true); v != ConfirmedReal {
		t.Errorf("expected immediate ConfirmedReal with clamped threshold, got %v", v)
	}

	d.Reset()
	if v := d.Observe(false); v != ConfirmedSpoof {
		t.Errorf("expected immediate ConfirmedSpoof with clamped threshold, got %v", v)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		isReal   bool
		expected State
	}{
		{
			name:     "real increments real and clears spoof",
			state:    State{ConsecutiveSpoof: 4},
			isReal:   true,
			expected: State{ConsecutiveReal: 1},
		},
		{
			name:     "spoof increments spoof and clears real",
			state:    State{ConsecutiveReal: 2},
			isReal:   false,
			expected: State{ConsecutiveSpoof: 1},
		},
		{
			name:     "real run extends",
			state:    State{ConsecutiveReal: 2},
			isReal:   true,
			expected: State{ConsecutiveReal: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transition(tt.state, tt.isReal); got != tt.expected {
				t.Errorf("Transition(%+v, %v) = %+v, want %+v", tt.state, tt.isReal, got, tt.expected)
			}
		})
	}
}

func TestVerdict_String(t *testing.T) {
	if Pending.String() != "pending" || ConfirmedReal.String() != "real" || ConfirmedSpoof.String() != "spoof" {
		t.Error("unexpected verdict string values")
	}
}
