package ai

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

type constEmbedder struct {
	vec Vector
}

func (c constEmbedder) Embed(context.Context, string) (Vector, error) {
	return c.vec, nil
}

func TestVectorDot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   Vector
		expect float64
	}{
		{name: "orthogonal", a: Vector{1, 0}, b: Vector{0, 1}, expect: 0},
		{name: "unit", a: Vector{0.6, 0.8}, b: Vector{0.6, 0.8}, expect: 1},
		{name: "mixed signs", a: Vector{1, -2, 3}, b: Vector{4, 5, -6}, expect: -24},
		{name: "empty", a: Vector{}, b: Vector{}, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Similarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expect) > 1e-6 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestVectorDotDimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := Vector{1, 2}.Dot(Vector{1})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}

func TestLoaderNotReadyUntilLoaded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	loader := Load(context.Background(), func(ctx context.Context) (Embedder, error) {
		<-release
		return constEmbedder{vec: Vector{1}}, nil
	}, nil)

	if _, ok := loader.Embedder(); ok {
		t.Fatalf("expected embedder to be unavailable while loading")
	}
	if !errors.Is(loader.Err(), ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", loader.Err())
	}

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := loader.Wait(ctx); err != nil {
		t.Fatalf("unexpected wait error: %v", err)
	}
	if _, ok := loader.Embedder(); !ok {
		t.Fatalf("expected embedder after load")
	}
	if loader.Err() != nil {
		t.Fatalf("expected nil error after load, got %v", loader.Err())
	}
}

func TestLoaderFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("download failed")
	loader := Load(context.Background(), func(context.Context) (Embedder, error) {
		return nil, boom
	}, nil)

	if _, err := loader.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if _, ok := loader.Embedder(); ok {
		t.Fatalf("did not expect embedder after failure")
	}
}

func TestReadyLoader(t *testing.T) {
	t.Parallel()

	loader := Ready(constEmbedder{vec: Vector{1, 2}})
	if _, ok := loader.Embedder(); !ok {
		t.Fatalf("expected ready embedder")
	}

	var nilLoader *Loader
	if _, ok := nilLoader.Embedder(); ok {
		t.Fatalf("nil loader must report not ready")
	}
}
