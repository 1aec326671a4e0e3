package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-scout/internal/filtering"
	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/store"
)

func TestNewKeywordStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *StoreConfig
		check   func(store.KeywordStore) bool
		wantErr bool
	}{
		{
			name:  "file",
			cfg:   &StoreConfig{Kind: "file", Path: filepath.Join(t.TempDir(), "kw.json")},
			check: func(s store.KeywordStore) bool { _, ok := s.(*store.File); return ok },
		},
		{
			name:  "default kind is file",
			cfg:   &StoreConfig{Path: filepath.Join(t.TempDir(), "kw.json")},
			check: func(s store.KeywordStore) bool { _, ok := s.(*store.File); return ok },
		},
		{
			name:  "memory",
			cfg:   &StoreConfig{Kind: "Memory"},
			check: func(s store.KeywordStore) bool { _, ok := s.(*store.Memory); return ok },
		},
		{name: "file without path", cfg: &StoreConfig{Kind: "file"}, wantErr: true},
		{name: "bad redis url", cfg: &StoreConfig{Kind: "redis", RedisURL: "not-a-url"}, wantErr: true},
		{name: "unknown", cfg: &StoreConfig{Kind: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, release, err := newKeywordStore(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer release()

			if !tt.check(s) {
				t.Fatalf("unexpected store type %T", s)
			}
		})
	}
}

func TestNewIndex(t *testing.T) {
	t.Parallel()

	keyFile := filepath.Join(t.TempDir(), "adzuna.key")
	if err := os.WriteFile(keyFile, []byte("secret\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	cfg := &Config{
		Adzuna:    &AdzunaConfig{AppID: "app", AppKeyFile: keyFile, Country: "gb"},
		Search:    &SearchConfig{Location: "london"},
		UserAgent: "tester",
	}

	client, err := newIndex(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if client.Country != "gb" || client.Location != "london" || client.UserAgent != "tester" {
		t.Fatalf("config not applied: %+v", client)
	}

	cfg.Adzuna.AppID = ""
	if _, err := newIndex(cfg, zap.NewNop()); err == nil || !strings.Contains(err.Error(), "ADZUNA_APP_ID") {
		t.Fatalf("expected missing app id error, got %v", err)
	}

	cfg.Adzuna = &AdzunaConfig{AppID: "app"}
	if _, err := newIndex(cfg, zap.NewNop()); err == nil || !strings.Contains(err.Error(), "ADZUNA_APP_KEY_FILE") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestNewFilter(t *testing.T) {
	t.Parallel()

	chain, err := newFilter(&SearchConfig{Config: filtering.Config{MinimumSalary: 1000}}, nil)
	if err != nil {
		t.Fatalf("new filter: %v", err)
	}
	if len(chain.Steps()) != 3 {
		t.Fatalf("expected all default steps, got %d", len(chain.Steps()))
	}

	if _, err := newFilter(&SearchConfig{Config: filtering.Config{MinimumSalary: -5}}, nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewFilterDisabled(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)

	cfg := &SearchConfig{
		DisabledFilters: []string{"minimum_salary"},
		Config:          filtering.Config{MinimumSalary: 100000},
	}
	chain, err := newFilter(cfg, zap.New(core))
	if err != nil {
		t.Fatalf("new filter: %v", err)
	}

	low, high := 10.0, 200000.0
	page := []jobs.Posting{{ID: "low", SalaryMax: &low}, {ID: "high", SalaryMax: &high}}
	out, err := chain.Apply(context.Background(), page)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("disabled salary filter must keep every posting, got %d", len(out))
	}

	entries := logs.FilterMessage("filter status").All()
	if len(entries) != 3 {
		t.Fatalf("expected a status line per filter, got %d", len(entries))
	}
	salary := entries[1].ContextMap()
	if salary["name"] != "minimum_salary" || salary["enabled"] != false || salary["reason"] != "disabled by configuration" {
		t.Fatalf("unexpected salary status %v", salary)
	}

	if _, err := newFilter(&SearchConfig{DisabledFilters: []string{"nope"}}, nil); err == nil {
		t.Fatal("expected unknown filter error")
	}
}
