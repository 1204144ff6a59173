package recognition

import (
	"math"
	"testing"
)

func testGallery() []Identity {
	return []Identity{
		{UserID: "E1", Name: "An", Embedding: Embedding{1, 0, 0}},
		{UserID: "E2", Name: "Binh", Embedding: Embedding{0, 1, 0}},
		{UserID: "E3", Name: "Chi", Embedding: Embedding{0, 0, 1}},
	}
}

func TestMatch_KnownIdentity(t *testing.T) {
	m := NewMatcher(testGallery(), 25.0, testMargin, testScale)

	ident, score := m.Match(Embedding{1, 0, 0})

	if ident == nil {
		t.Fatal("expected a match, got nil")
	}

	if ident.UserID != "E1" {
		t.Errorf("expected user E1, got %s", ident.UserID)
	}

	expected := testScale * math.Cos(testMargin)
	if math.Abs(score-expected) > 1e-9 {
		t.Errorf("expected score %v, got %v", expected, score)
	}
}

func TestMatch_BelowThresholdReturnsBestScore(t *testing.T) {
	m := NewMatcher(testGallery(), 25.0, testMargin, testScale)

	// Equidistant from E1 and E2; cosine ~0.707, score well below threshold.
	ident, score := m.Match(Embedding{0.707, 0.707, 0})

	if ident != nil {
		t.Errorf("expected no match, got %s", ident.UserID)
	}

	// The best score is still reported for diagnostic display.
	expected := testScale * math.Cos(math.Acos(0.707106)+testMargin)
	if math.Abs(score-expected) > 0.01 {
		t.Errorf("expected diagnostic score near %v, got %v", expected, score)
	}
}

func TestMatch_TieKeepsFirstIdentity(t *testing.T) {
	gallery := []Identity{
		{UserID: "E1", Name: "An", Embedding: Embedding{1, 0, 0}},
		{UserID: "E2", Name: "Duplicate", Embedding: Embedding{1, 0, 0}},
	}
	m := NewMatcher(gallery, 25.0, testMargin, testScale)

	ident, _ := m.Match(Embedding{1, 0, 0})

	if ident == nil {
		t.Fatal("expected a match, got nil")
	}

	if ident.UserID != "E1" {
		t.Errorf("expected first identity E1 to win the tie, got %s", ident.UserID)
	}
}

func TestMatch_EmptyGallery(t *testing.T) {
	m := NewMatcher(nil, 25.0, testMargin, testScale)

	ident, score := m.Match(Embedding{1, 0, 0})

	if ident != nil {
		t.Errorf("expected no match from empty gallery, got %s", ident.UserID)
	}

	if score != 0 {
		t.Errorf("expected zero score from empty gallery, got %v", score)
	}
}

func TestMatch_PicksBestOfSeveral(t *testing.T) {
	m := NewMatcher(testGallery(), 25.0, testMargin, testScale)

	// Closest to E2 by a wide margin.
	ident, _ := m.Match(Embedding{0.1, 0.99, 0})

	if ident == nil {
		t.Fatal("expected a match, got nil")
	}

	if ident.UserID != "E2" {
		t.Errorf("expected user E2, got %s", ident.UserID)
	}
}
