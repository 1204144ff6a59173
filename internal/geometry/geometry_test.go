package geometry

import (
	"math"
	"testing"
)

func TestContains(t *testing.T) {
	target := Rect{X1: 42, Y1: 95, X2: 392, Y2: 445}

	tests := []struct {
		name     string
		face     Rect
		expected bool
	}{
		{
			name:     "fully inside",
			face:     Rect{X1: 100, Y1: 150, X2: 300, Y2: 400},
			expected: true,
		},
		{
			name:     "edges touching",
			face:     Rect{X1: 42, Y1: 95, X2: 392, Y2: 445},
			expected: true,
		},
		{
			name:     "clipped on the left",
			face:     Rect{X1: 20, Y1: 150, X2: 300, Y2: 400},
			expected: false,
		},
		{
			name:     "clipped on the bottom",
			face:     Rect{X1: 100, Y1: 150, X2: 300, Y2: 500},
			expected: false,
		},
		{
			name:     "completely outside",
			face:     Rect{X1: 0, Y1: 0, X2: 30, Y2: 30},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := target.Contains(tt.face); got != tt.expected {
				t.Errorf("Contains(%+v) = %v, want %v", tt.face, got, tt.expected)
			}
		})
	}
}

func TestCenteredSquare(t *testing.T) {
	r := CenteredSquare(434, 540, 350)

	if r.Width() != 350 || r.Height() != 350 {
		t.Errorf("expected 350x350 square, got %dx%d", r.Width(), r.Height())
	}

	if r.X1 != 42 || r.Y1 != 95 {
		t.Errorf("expected origin (42, 95), got (%d, %d)", r.X1, r.Y1)
	}
}

func TestCenteredSquare_LargerThanFrame(t *testing.T) {
	r := CenteredSquare(300, 540, 350)

	if r.X1 != 0 || r.X2 != 300 {
		t.Errorf("expected square clamped to frame width, got x1=%d x2=%d", r.X1, r.X2)
	}
}

func TestExpandByFraction(t *testing.T) {
	face := Rect{X1: 100, Y1: 100, X2: 200, Y2: 200}

	expanded := face.ExpandByFraction(0.4, 640, 480)

	if expanded.X1 != 60 || expanded.Y1 != 60 {
		t.Errorf("expected origin (60, 60), got (%d, %d)", expanded.X1, expanded.Y1)
	}

	if expanded.X2 != 240 || expanded.Y2 != 240 {
		t.Errorf("expected corner (240, 240), got (%d, %d)", expanded.X2, expanded.Y2)
	}
}

func TestExpandByFraction_ClampsToFrame(t *testing.T) {
	face := Rect{X1: 10, Y1: 10, X2: 630, Y2: 470}

	expanded := face.ExpandByFraction(0.4, 640, 480)

	if expanded.X1 != 0 || expanded.Y1 != 0 {
		t.Errorf("expected origin clamped to (0, 0), got (%d, %d)", expanded.X1, expanded.Y1)
	}

	if expanded.X2 != 640 || expanded.Y2 != 480 {
		t.Errorf("expected corner clamped to (640, 480), got (%d, %d)", expanded.X2, expanded.Y2)
	}
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name     string
		a        Rect
		b        Rect
		expected float64
	}{
		{
			name:     "identical boxes",
			a:        Rect{0, 0, 10, 10},
			b:        Rect{0, 0, 10, 10},
			expected: 1.0,
		},
		{
			name:     "no overlap",
			a:        Rect{0, 0, 10, 10},
			b:        Rect{20, 20, 30, 30},
			expected: 0.0,
		},
		{
			name:     "partial overlap",
			a:        Rect{0, 0, 10, 10},
			b:        Rect{5, 5, 15, 15},
			expected: 25.0 / 175.0, // intersection=25, union=100+100-25=175
		},
		{
			name:     "one inside other",
			a:        Rect{0, 0, 20, 20},
			b:        Rect{5, 5, 15, 15},
			expected: 100.0 / 400.0,
		},
		{
			name:     "empty box",
			a:        Rect{5, 5, 5, 5},
			b:        Rect{0, 0, 10, 10},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IoU(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("IoU(%+v, %+v) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}
