package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := fmt.Errorf("page 2: %w", New(Fetch, "search", cause))

	if got := KindOf(err); got != Fetch {
		t.Fatalf("expected kind %q, got %q", Fetch, got)
	}
	if !Is(err, Fetch) {
		t.Fatalf("expected Is to match fetch kind")
	}
	if Is(err, Validation) {
		t.Fatalf("did not expect validation kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable through Unwrap")
	}
}

func TestKindOfPlainError(t *testing.T) {
	t.Parallel()

	if got := KindOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
	if Is(nil, Fetch) {
		t.Fatalf("nil error must not match any kind")
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expect string
	}{
		{name: "op and cause", err: New(Extraction, "pdf", errors.New("bad xref")), expect: "extraction: pdf: bad xref"},
		{name: "cause only", err: New(Generation, "", errors.New("quota")), expect: "generation: quota"},
		{name: "op only", err: New(ResumeMissing, "respond", nil), expect: "resume_missing: respond"},
		{name: "bare", err: New(ModelUnavailable, "", nil), expect: "model_unavailable"},
		{name: "formatted", err: Newf(Validation, "file is %d bytes", 42), expect: "validation: file is 42 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
