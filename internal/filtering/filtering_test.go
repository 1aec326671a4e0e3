package filtering

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-scout/internal/jobs"
)

func salary(v float64) *float64 { return &v }

func samplePage() []jobs.Posting {
	return []jobs.Posting{
		{ID: "1", Company: "Acme", SalaryMin: salary(90000), SalaryMax: salary(120000)},
		{ID: "2", Company: "Globex", SalaryMin: salary(40000)},
		{ID: "3", Company: "acme "},
		{ID: "4", Company: "Initech", SalaryMax: salary(70000)},
		{ID: "5", Company: "Umbrella"},
	}
}

func ids(postings []jobs.Posting) []string {
	out := make([]string, 0, len(postings))
	for _, p := range postings {
		out = append(out, p.ID)
	}
	return out
}

func TestChainApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *Config
		want []string
	}{
		{name: "no config", cfg: nil, want: []string{"1", "2", "3", "4", "5"}},
		{name: "companies", cfg: &Config{ExcludedCompanies: []string{"ACME", " "}}, want: []string{"2", "4", "5"}},
		{name: "salary", cfg: &Config{MinimumSalary: 80000}, want: []string{"1", "3", "5"}},
		{name: "combined", cfg: &Config{ExcludedCompanies: []string{"umbrella"}, MinimumSalary: 80000}, want: []string{"1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chain, err := NewChain(tt.cfg, zap.NewNop(), Defaults()...)
			if err != nil {
				t.Fatalf("new chain: %v", err)
			}

			page := samplePage()
			got, err := chain.Apply(context.Background(), page)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, ids(got))
			}
			if !reflect.DeepEqual(ids(page), []string{"1", "2", "3", "4", "5"}) {
				t.Fatalf("input page must not be modified, got %v", ids(page))
			}
		})
	}
}

func TestNewChainRejectsNegativeSalary(t *testing.T) {
	t.Parallel()

	if _, err := NewChain(&Config{MinimumSalary: -1}, nil, Defaults()...); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNilChainPassesThrough(t *testing.T) {
	t.Parallel()

	var chain *Chain
	page := samplePage()

	got, err := chain.Apply(context.Background(), page)
	if err != nil || len(got) != len(page) {
		t.Fatalf("expected page unchanged, got %v, %v", ids(got), err)
	}
}

func TestExcludeFile(t *testing.T) {
	t.Parallel()

	dumped := &jobs.Postings{Items: []jobs.Posting{{ID: "2"}, {ID: "5"}}}
	path, err := dumped.DumpToTmpFile()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })

	core, logs := observer.New(zapcore.InfoLevel)

	chain, err := NewChain(&Config{ExcludeFile: path}, zap.New(core), Defaults()...)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	out, err := chain.Apply(context.Background(), samplePage())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !reflect.DeepEqual(ids(out), []string{"1", "3", "4"}) {
		t.Fatalf("unexpected ids: %v", ids(out))
	}

	entries := logs.FilterMessage("filter step").All()
	if len(entries) != 1 {
		t.Fatalf("expected one step log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["name"] != "exclude_file" || fields["dropped"] != int64(2) {
		t.Fatalf("unexpected step log fields: %v", fields)
	}
}

func TestExcludeFileMissing(t *testing.T) {
	t.Parallel()

	cfg := &Config{ExcludeFile: filepath.Join(t.TempDir(), "absent.json")}
	chain, err := NewChain(cfg, nil, NewExcludeFile())
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}

	out, err := chain.Apply(context.Background(), samplePage())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("missing exclude file should exclude nothing, got %d left", len(out))
	}
}

func TestDisableByNameAndDescribe(t *testing.T) {
	t.Parallel()

	steps := Defaults()
	DisableByName(steps, "minimum_salary", "disabled via flag")

	cfg := &Config{ExcludedCompanies: []string{"Acme"}, MinimumSalary: 80000}
	chain, err := NewChain(cfg, nil, steps...)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}

	out, err := chain.Apply(context.Background(), samplePage())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !reflect.DeepEqual(ids(out), []string{"2", "4", "5"}) {
		t.Fatalf("disabled salary filter must not drop postings, got %v", ids(out))
	}

	statuses := Describe(steps)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Details["companies"] != "Acme" {
		t.Fatalf("unexpected companies status: %+v", statuses[0])
	}
	if statuses[1].Enabled || statuses[1].Reason != "disabled via flag" {
		t.Fatalf("unexpected salary status: %+v", statuses[1])
	}
}
