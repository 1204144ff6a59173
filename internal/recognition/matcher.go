package recognition

import "math"

// Identity is one known person in the gallery.
type Identity struct {
	UserID    string
	Name      string
	Embedding Embedding
}

// Matcher matches query embeddings against a fixed gallery of identities.
// The gallery is read-only after construction and safe for concurrent reads.
type Matcher struct {
	gallery   []Identity
	threshold float64
	margin    float64
	scale     float64
}

// NewMatcher creates a matcher over the given gallery. The gallery slice is
// retained; callers must not mutate it afterwards.
func NewMatcher(gallery []Identity, threshold, margin, scale float64) *Matcher {
	return &Matcher{
		gallery:   gallery,
		threshold: threshold,
		margin:    margin,
		scale:     scale,
	}
}

// Size returns the number of identities in the gallery.
func (m *Matcher) Size() int {
	return len(m.gallery)
}

// Match scans the gallery linearly and returns the best-scoring identity if
// its score clears the similarity threshold, or nil otherwise. The best score
// found is returned either way so callers can display near misses. Ties keep
// the first identity encountered, so gallery order determines the winner.
func (m *Matcher) Match(query Embedding) (*Identity, float64) {
	if len(m.gallery) == 0 {
		return nil, 0
	}

	bestScore := math.Inf(-1)
	bestIndex := -1

	for i := range m.gallery {
		score := Score(query, m.gallery[i].Embedding, m.margin, m.scale)
		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestScore > m.threshold {
		return &m.gallery[bestIndex], bestScore
	}
	return nil, bestScore
}
