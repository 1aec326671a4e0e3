package resume

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/apperr"
	"github.com/spigell/job-scout/internal/keywords"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/store"
)

var errEmbedderNotReady = errors.New("embedding model is not loaded yet")

// Pipeline validates, extracts, and analyzes résumé uploads.
type Pipeline struct {
	Extractor Extractor
	MaxSize   int64

	embedders ai.EmbedderSource
	keywords  store.KeywordStore
	logger    *zap.Logger
}

// NewPipeline builds a pipeline with the default extractor and size ceiling.
// kw may be nil when keywords should not be persisted.
func NewPipeline(embedders ai.EmbedderSource, kw store.KeywordStore, log *zap.Logger) *Pipeline {
	return &Pipeline{
		Extractor: DocumentExtractor{},
		MaxSize:   DefaultMaxSize,
		embedders: embedders,
		keywords:  kw,
		logger:    logger.OrNop(log),
	}
}

// Validate checks an upload against the pipeline's size ceiling.
func (p *Pipeline) Validate(u Upload) error {
	return Validate(u, p.MaxSize)
}

// Analyze runs the whole pipeline. Validation failures return before any
// extraction is attempted. On success the keywords are persisted; a failure
// to persist is logged and does not fail the analysis.
func (p *Pipeline) Analyze(ctx context.Context, u Upload) (*Profile, error) {
	if err := p.Validate(u); err != nil {
		p.logger.Info("resume rejected", zap.String("name", u.Name), zap.Error(err))
		return nil, err
	}

	start := time.Now()
	text, err := p.Extractor.Extract(ctx, u)
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.New(apperr.Extraction, u.Name, err)
		}
		return nil, err
	}

	kws := keywords.Extract(text)

	embedder, ok := p.embedder()
	if !ok {
		return nil, apperr.New(apperr.ProviderUnavailable, "embed resume", errEmbedderNotReady)
	}

	vector, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, apperr.New(apperr.ProviderUnavailable, "embed resume", err)
	}

	profile := &Profile{
		RawText:   text,
		Keywords:  kws,
		Embedding: vector,
	}

	p.logger.Info("resume analyzed",
		zap.String("name", u.Name),
		zap.Int("text_length", len(text)),
		zap.Strings("keywords", kws),
		zap.Int("dimensions", len(vector)),
		zap.Duration("took", time.Since(start)),
	)

	if p.keywords != nil {
		if err := p.keywords.Save(ctx, kws); err != nil {
			p.logger.Warn("failed to persist resume keywords", zap.Error(err))
		}
	}

	return profile, nil
}

func (p *Pipeline) embedder() (ai.Embedder, bool) {
	if p.embedders == nil {
		return nil, false
	}
	return p.embedders.Embedder()
}
