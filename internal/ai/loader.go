package ai

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNotLoaded is returned by Loader.Err while loading is still in progress.
var ErrNotLoaded = errors.New("embedding model is still loading")

// LoadFunc initializes an Embedder.
type LoadFunc func(ctx context.Context) (Embedder, error)

// Loader initializes an Embedder once in the background and shares it read-only afterwards.
type Loader struct {
	mu       sync.RWMutex
	embedder Embedder
	err      error
	done     chan struct{}
}

// Load starts loading in a new goroutine and returns immediately.
func Load(ctx context.Context, load LoadFunc, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Loader{done: make(chan struct{})}

	go func() {
		defer close(l.done)

		embedder, err := load(ctx)
		if err == nil && embedder == nil {
			err = errors.New("loader returned no embedder")
		}

		l.mu.Lock()
		l.embedder, l.err = embedder, err
		l.mu.Unlock()

		if err != nil {
			logger.Warn("embedding model failed to load", zap.Error(err))
			return
		}
		logger.Info("embedding model loaded")
	}()

	return l
}

// Ready wraps an already initialized Embedder.
func Ready(embedder Embedder) *Loader {
	l := &Loader{embedder: embedder, done: make(chan struct{})}
	close(l.done)
	return l
}

// Embedder returns the loaded Embedder without blocking.
func (l *Loader) Embedder() (Embedder, bool) {
	if l == nil {
		return nil, false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.embedder, l.embedder != nil
}

// Wait blocks until loading finished or ctx is done.
func (l *Loader) Wait(ctx context.Context) (Embedder, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.embedder, l.err
}

// Err returns the load error, ErrNotLoaded while loading or nil on success.
func (l *Loader) Err() error {
	select {
	case <-l.done:
	default:
		return ErrNotLoaded
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.err
}
