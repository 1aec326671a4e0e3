package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const semanticSimilarity = "SEMANTIC_SIMILARITY"

// Embedder implements ai.Embedder with the Gemini embedding endpoint.
type Embedder struct {
	models     models
	model      string
	maxRetries int
	timeout    time.Duration
	logger     *zap.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder returns an Embedder backed by client.
func NewEmbedder(client *genai.Client, opts Options, log *zap.Logger) (*Embedder, error) {
	if client == nil || client.Models == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	return newEmbedder(client.Models, opts, log), nil
}

func newEmbedder(m models, opts Options, log *zap.Logger) *Embedder {
	model := strings.TrimSpace(opts.EmbeddingModel)
	if model == "" {
		model = defaultEmbeddingModel
	}

	return &Embedder{
		models:     m,
		model:      model,
		maxRetries: opts.MaxRetries,
		timeout:    opts.Timeout,
		logger:     logger.WithModel(log, provider, model),
	}
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) (ai.Vector, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text to embed must not be empty")
	}

	config := &genai.EmbedContentConfig{TaskType: semanticSimilarity}

	var vec ai.Vector
	err := withRetry(ctx, e.maxRetries, e.logger, func(ctx context.Context) error {
		callCtx, cancel := withTimeout(ctx, e.timeout)
		defer cancel()

		resp, err := e.models.EmbedContent(callCtx, e.model, genai.Text(text), config)
		if err != nil {
			return fmt.Errorf("embed content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
			return errors.New("gemini api returned empty embedding")
		}

		vec = ai.Vector(resp.Embeddings[0].Values)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini embed content", zap.Int("text_length", len([]rune(text))), zap.Int("dimension", len(vec)))

	return vec, nil
}

// Probe embeds a short text to check the model is reachable. It is used as
// the model load step of a session.
func (e *Embedder) Probe(ctx context.Context) (ai.Embedder, error) {
	if _, err := e.Embed(ctx, "probe"); err != nil {
		return nil, fmt.Errorf("probe embedding model %s: %w", e.model, err)
	}
	return e, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}
