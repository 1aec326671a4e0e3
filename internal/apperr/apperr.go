// Package apperr classifies the failures a search session can run into.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure.
type Kind string

const (
	// Validation is a rejected upload (type or size). It never reaches async state.
	Validation Kind = "validation"
	// Extraction is an unreadable or corrupt document.
	Extraction Kind = "extraction"
	// ProviderUnavailable is an embedding provider that is not ready or failed.
	ProviderUnavailable Kind = "provider_unavailable"
	// Fetch is a failed job index call.
	Fetch Kind = "fetch"
	// ModelUnavailable is a chat turn submitted before the embedding model loaded.
	ModelUnavailable Kind = "model_unavailable"
	// ResumeMissing is a chat turn submitted before a résumé was analyzed.
	ResumeMissing Kind = "resume_missing"
	// Generation is a failed text generation call.
	Generation Kind = "generation"
)

// Error carries a Kind together with the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf formats a message and wraps it into an error of the given kind.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in the chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
