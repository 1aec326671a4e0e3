package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/apperr"
	"github.com/spigell/job-scout/internal/logger"
)

// ErrBusy is returned by Submit while a previous turn is still running.
var ErrBusy = errors.New("still answering the previous message")

// Responder produces assistant replies.
type Responder interface {
	Respond(ctx context.Context, message string, model ai.Embedder, resume ai.Vector) (Message, Reply, error)
}

// Chat owns an append-only transcript and runs one turn at a time.
type Chat struct {
	responder Responder
	logger    *zap.Logger

	mu       sync.Mutex
	messages []Message
	loading  bool
	status   error
}

func NewChat(responder Responder, log *zap.Logger) *Chat {
	return &Chat{responder: responder, logger: logger.OrNop(log)}
}

// Submit appends the user message and the assistant reply. Blank input is
// ignored. Precondition failures leave only the user message in the
// transcript; provider failures add the fallback advice. The error of the
// turn is also kept in Status.
func (c *Chat) Submit(ctx context.Context, text string, model ai.Embedder, resume ai.Vector) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, nil
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return Reply{}, ErrBusy
	}
	c.loading = true
	c.status = nil
	c.messages = append(c.messages, Message{Role: RoleUser, Content: text})
	c.mu.Unlock()

	msg, reply, err := c.responder.Respond(ctx, text, model, resume)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = false
	c.status = err

	switch kind := apperr.KindOf(err); {
	case kind == apperr.ModelUnavailable, kind == apperr.ResumeMissing:
		c.logger.Info("chat precondition not met", zap.Error(err))
		return reply, err
	case err != nil:
		c.logger.Warn("chat turn failed", zap.Error(err))
	}

	if msg.Content != "" {
		c.messages = append(c.messages, msg)
	}

	return reply, err
}

// Notify appends an assistant message that was not produced by a chat turn.
func (c *Chat) Notify(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: content})
}

// Messages returns a copy of the transcript.
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Message(nil), c.messages...)
}

// Status is the error of the last turn, or nil.
func (c *Chat) Status() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}
