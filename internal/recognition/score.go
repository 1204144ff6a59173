// Package recognition implements identity matching against a known-face
// gallery using angular-margin similarity scoring.
package recognition

import "math"

// Embedding is a fixed-length face embedding vector, unit-normalized by the
// upstream detection model.
type Embedding []float32

// Score computes the angular-margin similarity between two embeddings
// (ArcFace-style scoring). The cosine similarity is clamped to [-1, 1] before
// the inverse cosine to guard against floating point overshoot, the margin is
// added to the angle, and the result is re-projected and scaled. Higher means
// more similar; the practical range is [-scale, scale].
func Score(a, b Embedding, margin, scale float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -scale // worst score for invalid input
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return -scale
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	theta := math.Acos(similarity)
	return scale * math.Cos(theta+margin)
}
