// Package advisor answers free-text job search questions in the context of
// the analyzed résumé.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/apperr"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

//go:embed fallback.md
var fallbackAdvice string

const defaultMaxLogLength = 200

var (
	errModelNotLoaded = errors.New("the embedding model is not loaded yet, please wait a moment")
	errNoResume       = errors.New("upload a resume first")
	errEmptyReply     = errors.New("empty reply")
)

// Params are the decoding parameters used for every reply.
var Params = ai.GenerationParams{
	MaxTokens:         150,
	Temperature:       0.7,
	TopP:              0.95,
	RepetitionPenalty: 1.2,
	ReturnFullText:    false,
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply carries details about how a message was produced.
type Reply struct {
	// Similarity is the inner product of the message and résumé embeddings.
	Similarity float64
	// Fallback is set when the canned advice was returned.
	Fallback bool
}

// FallbackAdvice is returned instead of a generated reply when a provider fails.
func FallbackAdvice() string {
	return strings.TrimSpace(fallbackAdvice)
}

// Advisor builds prompts and post-processes generated replies.
type Advisor struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func New(generator ai.Generator, log *zap.Logger) *Advisor {
	return &Advisor{
		generator: generator,
		logger:    logger.OrNop(log),
		maxLogLen: defaultMaxLogLength,
	}
}

// Respond answers message. A nil model fails with a model_unavailable error
// and an empty resume with resume_missing; no message is produced for either.
// Provider failures return the fallback advice together with a generation
// error.
func (a *Advisor) Respond(ctx context.Context, message string, model ai.Embedder, resume ai.Vector) (Message, Reply, error) {
	if model == nil {
		return Message{}, Reply{}, apperr.New(apperr.ModelUnavailable, "respond", errModelNotLoaded)
	}
	if len(resume) == 0 {
		return Message{}, Reply{}, apperr.New(apperr.ResumeMissing, "respond", errNoResume)
	}

	vector, err := model.Embed(ctx, message)
	if err != nil {
		return a.fallback(Reply{}, fmt.Errorf("embed message: %w", err))
	}

	similarity, err := ai.Similarity(vector, resume)
	if err != nil {
		return a.fallback(Reply{}, err)
	}
	reply := Reply{Similarity: similarity}

	prompt := BuildPrompt(message, similarity)

	a.logger.Debug("generate reply request",
		zap.Float64("similarity", similarity),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.Generate(ctx, prompt, Params)
	if err != nil {
		return a.fallback(reply, err)
	}

	text := Finish(raw, prompt)
	if text == "" {
		return a.fallback(reply, errEmptyReply)
	}

	a.logger.Debug("generate reply response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", utils.TruncateForLog(text, a.maxLogLen)),
	)

	return Message{Role: RoleAssistant, Content: text}, reply, nil
}

func (a *Advisor) fallback(reply Reply, err error) (Message, Reply, error) {
	a.logger.Warn("reply generation failed, using fallback advice", zap.Error(err))

	reply.Fallback = true
	return Message{Role: RoleAssistant, Content: FallbackAdvice()},
		reply,
		apperr.New(apperr.Generation, "respond", err)
}

// BuildPrompt renders the generation prompt.
func BuildPrompt(message string, similarity float64) string {
	prompt := strings.TrimSpace(promptTemplate)
	prompt = strings.ReplaceAll(prompt, "{{MESSAGE}}", message)
	prompt = strings.ReplaceAll(prompt, "{{SIMILARITY}}", fmt.Sprintf("%.2f", similarity))
	return prompt
}

// Finish strips an echoed prompt, trims the reply and marks a reply cut
// mid-sentence with an ellipsis.
func Finish(raw, prompt string) string {
	text := strings.TrimSpace(raw)
	if prompt != "" {
		text = strings.TrimSpace(strings.TrimPrefix(text, prompt))
	}
	if text == "" {
		return ""
	}

	// Closing brackets and quotes may follow the sentence end.
	tail := strings.TrimRight(text, closers)
	last, _ := utf8.DecodeLastRuneInString(tail)
	if strings.ContainsRune(terminators, last) {
		return text
	}
	return text + "..."
}

const (
	terminators = ".!?…。！？"
	closers     = ")]}\"'»”’」』）"
)
