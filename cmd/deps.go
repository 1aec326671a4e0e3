package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/adzuna"
	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/ai/gemini"
	"github.com/spigell/job-scout/internal/filtering"
	"github.com/spigell/job-scout/internal/search"
	"github.com/spigell/job-scout/internal/secrets"
	"github.com/spigell/job-scout/internal/store"
)

func newIndex(cfg *Config, logger *zap.Logger) (*adzuna.Client, error) {
	appKey, err := secrets.Load(secrets.Source{
		Name:  "adzuna app key",
		Value: cfg.Adzuna.AppKey,
		File:  cfg.Adzuna.AppKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set adzuna.app-key-file or ADZUNA_APP_KEY_FILE)", err)
	}

	appID := strings.TrimSpace(cfg.Adzuna.AppID)
	if appID == "" {
		return nil, errors.New("adzuna app id is not configured (set adzuna.app-id or ADZUNA_APP_ID)")
	}

	client := adzuna.New(appID, appKey, logger)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.Adzuna.Country != "" {
		client.Country = cfg.Adzuna.Country
	}
	if cfg.Adzuna.APIURL != "" {
		client.APIURL = cfg.Adzuna.APIURL
	}
	if cfg.Search.Location != "" {
		client.Location = cfg.Search.Location
	}

	return client, nil
}

func newGemini(ctx context.Context, cfg *GeminiConfig, logger *zap.Logger) (*gemini.Generator, *gemini.Embedder, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, nil, err
	}

	opts := gemini.Options{
		Model:          cfg.Model,
		EmbeddingModel: cfg.EmbeddingModel,
		MaxRetries:     cfg.MaxRetries,
		Timeout:        cfg.Timeout,
		MaxLogLength:   cfg.MaxLogLength,
	}

	generator, err := gemini.NewGenerator(client, opts, logger)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := gemini.NewEmbedder(client, opts, logger)
	if err != nil {
		return nil, nil, err
	}

	return generator, embedder, nil
}

// loadEmbedder starts loading the embedding model in the background.
func loadEmbedder(ctx context.Context, embedder *gemini.Embedder, logger *zap.Logger) *ai.Loader {
	return ai.Load(ctx, embedder.Probe, logger.With(zap.String("model", embedder.Model())))
}

// newKeywordStore returns the configured keyword store and a function releasing it.
func newKeywordStore(ctx context.Context, cfg *StoreConfig) (store.KeywordStore, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "file":
		path := strings.TrimSpace(cfg.Path)
		if path == "" {
			return nil, nil, errors.New("store.path is required for the file store")
		}
		return store.NewFile(path), func() {}, nil
	case "redis":
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		r := store.NewRedis(client, cfg.Prefix)
		return r, func() { r.Close() }, nil
	case "memory":
		return store.NewMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store kind: %s", cfg.Kind)
	}
}

func newFilter(cfg *SearchConfig, logger *zap.Logger) (*filtering.Chain, error) {
	steps := filtering.Defaults()

	known := make(map[string]bool, len(steps))
	for _, step := range steps {
		known[step.Name()] = true
	}
	for _, name := range cfg.DisabledFilters {
		name = strings.TrimSpace(name)
		if !known[name] {
			return nil, fmt.Errorf("unknown filter %q", name)
		}
		filtering.DisableByName(steps, name, "disabled by configuration")
	}

	chain, err := filtering.NewChain(&cfg.Config, logger, steps...)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		for _, status := range filtering.Describe(chain.Steps()) {
			logger.Info("filter status",
				zap.String("name", status.Name),
				zap.Bool("enabled", status.Enabled),
				zap.String("reason", status.Reason),
				zap.Any("details", status.Details),
			)
		}
	}

	return chain, nil
}

func searchOptions(cfg *SearchConfig, filter *filtering.Chain) search.Options {
	return search.Options{
		Location: cfg.Location,
		Filter:   filter,
	}
}
