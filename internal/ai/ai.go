// Package ai talks to the language model behind the chapter notebook.
package ai

import (
	"context"
	"errors"
	"math"
)

// EmbeddingDimensions is the vector size stored for every note.
const EmbeddingDimensions = 768

var (
	// ErrRateLimited is returned when the upstream quota is exhausted.
	ErrRateLimited = errors.New("ai: rate limited")
	// ErrNotConfigured is returned by a generator with no API key.
	ErrNotConfigured = errors.New("ai: not configured")
)

// Generator produces text completions.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Embedder maps text to a fixed-size vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity returns 0 for mismatched or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
