package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	t.Setenv("JOB_SCOUT_TEST_SECRET", "from-env")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "file wins", src: Source{File: file, Value: "inline", Env: "JOB_SCOUT_TEST_SECRET"}, expect: "from-file"},
		{name: "value over env", src: Source{Value: " inline ", Env: "JOB_SCOUT_TEST_SECRET"}, expect: "inline"},
		{name: "env fallback", src: Source{Env: "JOB_SCOUT_TEST_SECRET"}, expect: "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		message string
	}{
		{name: "missing file", src: Source{Name: "adzuna key", File: filepath.Join(dir, "nope")}, message: "reading adzuna key from file"},
		{name: "empty file", src: Source{Name: "adzuna key", File: empty}, message: "is empty"},
		{name: "unset env", src: Source{Name: "gemini api key", Env: "JOB_SCOUT_UNSET_SECRET"}, message: "set JOB_SCOUT_UNSET_SECRET"},
		{name: "nothing", src: Source{}, message: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected %q in %q", tt.message, err.Error())
			}
		})
	}
}
