// Package ai defines the embedding and text generation boundary used by the
// résumé pipeline and the chat advisor.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when two vectors of different length are compared.
var ErrDimensionMismatch = errors.New("vector dimensions do not match")

// Vector is a fixed-length feature vector produced by an Embedder.
type Vector []float32

// Dot returns the inner product of v and other.
func (v Vector) Dot(other Vector) (float64, error) {
	if len(v) != len(other) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(v), len(other))
	}

	var sum float64
	for i := range v {
		sum += float64(v[i]) * float64(other[i])
	}

	return sum, nil
}

// Similarity is the inner product of a and b.
func Similarity(a, b Vector) (float64, error) {
	return a.Dot(b)
}

// Embedder turns text into a Vector. Vectors from one Embedder are only
// comparable with vectors from the same Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// Generator produces a text continuation for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// GenerationParams are the decoding parameters of a single generation call.
type GenerationParams struct {
	MaxTokens         int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	// ReturnFullText asks the provider to echo the prompt before the continuation.
	ReturnFullText bool
}

// EmbedderSource hands out an Embedder once it is ready.
type EmbedderSource interface {
	Embedder() (Embedder, bool)
}
