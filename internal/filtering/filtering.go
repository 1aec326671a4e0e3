// Package filtering drops unwanted postings from fetched pages.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/logger"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludedCompanies []string `mapstructure:"exclude-companies"`
	MinimumSalary     float64  `mapstructure:"minimum-salary"`
	ExcludeFile       string   `mapstructure:"exclude-file"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Defaults returns every available filter in execution order.
func Defaults() []Filter {
	return []Filter{
		NewExcludedCompanies(),
		NewMinimumSalary(),
		NewExcludeFile(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

func validate(cfg *Config, steps []Filter) error {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

func run(ctx context.Context, deps Deps, steps []Filter, p *jobs.Postings) (*jobs.Postings, error) {
	log := logger.OrNop(deps.Logger)

	for _, step := range steps {
		if !step.IsEnabled() {
			log.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if info.Dropped > 0 {
			log.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		p = next
	}

	return p, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// Chain is a validated set of filters applied to each fetched page.
type Chain struct {
	steps []Filter
	deps  Deps
}

// NewChain validates steps against cfg once so that pages can be filtered
// without re-reading configuration.
func NewChain(cfg *Config, log *zap.Logger, steps ...Filter) (*Chain, error) {
	if err := validate(cfg, steps); err != nil {
		return nil, err
	}
	return &Chain{steps: steps, deps: Deps{Logger: logger.OrNop(log)}}, nil
}

// Apply filters one page. The input slice is not modified.
func (c *Chain) Apply(ctx context.Context, page []jobs.Posting) ([]jobs.Posting, error) {
	if c == nil || len(c.steps) == 0 {
		return page, nil
	}

	p := &jobs.Postings{Items: append([]jobs.Posting(nil), page...)}

	out, err := run(ctx, c.deps, c.steps, p)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Steps returns the filters of the chain.
func (c *Chain) Steps() []Filter {
	return c.steps
}
