package recognition

import (
	"math"
	"testing"
)

const (
	testMargin = 0.5
	testScale  = 64.0
)

func TestScore_SelfMatchIsMaximum(t *testing.T) {
	a := Embedding{1, 0, 0}
	others := []Embedding{
		{0.9, 0.1, 0},
		{0.5, 0.5, 0},
		{0, 1, 0},
		{-1, 0, 0},
	}

	self := Score(a, a, testMargin, testScale)

	// cosine of a with itself is 1, so the score is scale*cos(margin)
	expected := testScale * math.Cos(testMargin)
	if math.Abs(self-expected) > 1e-9 {
		t.Errorf("Score(a,a) = %v, want %v", self, expected)
	}

	for _, b := range others {
		if s := Score(a, b, testMargin, testScale); s >= self {
			t.Errorf("Score(a,%v) = %v, expected below self score %v", b, s, self)
		}
	}
}

func TestScore_SymmetricUnderArgumentSwap(t *testing.T) {
	// The margin shifts the angle after the cosine is computed, and the
	// cosine itself is symmetric, so swapping arguments never changes the
	// score even with a nonzero margin.
	a := Embedding{0.6, 0.8, 0}
	b := Embedding{0, 0.6, 0.8}

	ab := Score(a, b, testMargin, testScale)
	ba := Score(b, a, testMargin, testScale)

	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Score(a,b) = %v, Score(b,a) = %v, expected equal", ab, ba)
	}
}

func TestScore_ZeroMarginIsScaledCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Embedding
		expected float64
	}{
		{
			name:     "identical",
			a:        Embedding{1, 0},
			b:        Embedding{1, 0},
			expected: testScale,
		},
		{
			name:     "orthogonal",
			a:        Embedding{1, 0},
			b:        Embedding{0, 1},
			expected: 0,
		},
		{
			name:     "opposite",
			a:        Embedding{1, 0},
			b:        Embedding{-1, 0},
			expected: -testScale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.a, tt.b, 0, testScale)
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("Score = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScore_MarginPenalizesScore(t *testing.T) {
	a := Embedding{0.8, 0.6, 0}
	b := Embedding{0.6, 0.8, 0}

	plain := Score(a, b, 0, testScale)
	withMargin := Score(a, b, testMargin, testScale)

	if withMargin >= plain {
		t.Errorf("expected margin to lower the score: plain=%v withMargin=%v", plain, withMargin)
	}
}

func TestScore_Deterministic(t *testing.T) {
	a := Embedding{0.1, 0.2, 0.3, 0.4}
	b := Embedding{0.4, 0.3, 0.2, 0.1}

	first := Score(a, b, testMargin, testScale)
	for i := 0; i < 10; i++ {
		if got := Score(a, b, testMargin, testScale); got != first {
			t.Fatalf("Score is not deterministic: %v != %v", got, first)
		}
	}
}

func TestScore_InvalidInput(t *testing.T) {
	if got := Score(Embedding{1, 0}, Embedding{1, 0, 0}, testMargin, testScale); got != -testScale {
		t.Errorf("expected -scale for mismatched dimensions, got %v", got)
	}

	if got := Score(Embedding{}, Embedding{}, testMargin, testScale); got != -testScale {
		t.Errorf("expected -scale for empty embeddings, got %v", got)
	}

	if got := Score(Embedding{0, 0}, Embedding{1, 0}, testMargin, testScale); got != -testScale {
		t.Errorf("expected -scale for zero vector, got %v", got)
	}
}

func TestScore_ClampGuardsOvershoot(t *testing.T) {
	// Vectors that are numerically identical can produce a cosine slightly
	// above 1; the clamp must keep acos from returning NaN.
	a := Embedding{0.57735027, 0.57735027, 0.57735027}

	got := Score(a, a, testMargin, testScale)
	if math.IsNaN(got) {
		t.Error("expected finite score for near-identical vectors, got NaN")
	}
}
