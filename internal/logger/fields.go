package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Keys shared across packages so one session can be followed from the query
// through the index calls to the Gemini requests it triggers.
const (
	// FieldProvider names the backend of a generation or embedding call ("gemini").
	FieldProvider = "ai_provider"
	// FieldModel is the Gemini model serving the call.
	FieldModel = "ai_model"
	// FieldSession identifies one interactive session.
	FieldSession = "session_id"
	// FieldQuery is the search term a log line refers to.
	FieldQuery = "query"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields turns the pairs into zap fields. Blank keys and values are
// skipped so that unset configuration does not show up as empty fields.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields is logger.With that accepts a nil logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ModelFields describes the Gemini model behind a client.
func ModelFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithModel scopes the logger of a generator or embedder to its model.
func WithModel(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, ModelFields(provider, model)...)
}

// WithSession scopes the logger to one session. The session's search
// controller, chat and resume pipeline inherit the field.
func WithSession(logger *zap.Logger, sessionID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldSession, Value: sessionID})...)
}
