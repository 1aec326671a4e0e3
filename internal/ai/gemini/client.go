package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel          = "gemini-2.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
	defaultMaxLogLength   = 200
	provider              = "gemini"
)

// models is the subset of *genai.Models used here.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Options configure both the Generator and the Embedder.
type Options struct {
	Model          string
	EmbeddingModel string
	MaxRetries     int
	Timeout        time.Duration
	MaxLogLength   int
}

// NewClient creates a Google GenAI client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

// Generator implements ai.Generator on top of Gemini models.
type Generator struct {
	models     models
	model      string
	maxRetries int
	timeout    time.Duration
	maxLogLen  int
	logger     *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator returns a Generator backed by client.
func NewGenerator(client *genai.Client, opts Options, log *zap.Logger) (*Generator, error) {
	if client == nil || client.Models == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	return newGenerator(client.Models, opts, log), nil
}

func newGenerator(m models, opts Options, log *zap.Logger) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Generator{
		models:     m,
		model:      model,
		maxRetries: opts.MaxRetries,
		timeout:    opts.Timeout,
		maxLogLen:  maxLogLen,
		logger:     logger.WithModel(log, provider, model),
	}
}

// Generate sends the prompt with the given decoding parameters and returns the continuation.
func (g *Generator) Generate(ctx context.Context, prompt string, params ai.GenerationParams) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := generationConfig(params)

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", len([]rune(prompt))),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	var output string
	err := withRetry(ctx, g.maxRetries, g.logger, func(ctx context.Context) error {
		callCtx, cancel := withTimeout(ctx, g.timeout)
		defer cancel()

		resp, err := g.models.GenerateContent(callCtx, g.model, genai.Text(prompt), config)
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}

		output, err = responseText(resp)
		return err
	})
	if err != nil {
		return "", err
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", len([]rune(output))),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	if params.ReturnFullText {
		output = prompt + " " + output
	}

	return output, nil
}

// Model returns the generation model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func generationConfig(params ai.GenerationParams) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{CandidateCount: 1}

	if params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxTokens)
	}
	if params.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(params.Temperature))
	}
	if params.TopP > 0 {
		config.TopP = genai.Ptr(float32(params.TopP))
	}
	// Gemini has no multiplicative repetition penalty; map the excess over 1 onto
	// the additive frequency penalty.
	if params.RepetitionPenalty > 1 {
		config.FrequencyPenalty = genai.Ptr(float32(params.RepetitionPenalty - 1))
	}

	return config
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned empty response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
