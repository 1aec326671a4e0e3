package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/jobs"
)

type minimumSalaryFilter struct {
	disabled bool
	reason   string
	minimum  float64
}

// NewMinimumSalary creates a filter that removes postings whose best known
// salary is below the configured minimum. Postings without salary are kept.
func NewMinimumSalary() Filter {
	return &minimumSalaryFilter{}
}

func (f *minimumSalaryFilter) Name() string { return "minimum_salary" }

func (f *minimumSalaryFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumSalaryFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumSalaryFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumSalary < 0 {
		return fmt.Errorf("minimum salary must not be negative, got %.0f", cfg.MinimumSalary)
	}
	f.minimum = cfg.MinimumSalary
	return nil
}

func (f *minimumSalaryFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if f.minimum == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	excluded := p.Exclude(func(posting jobs.Posting) bool {
		best := posting.SalaryMax
		if best == nil {
			best = posting.SalaryMin
		}
		return best != nil && *best < f.minimum
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding postings below minimum salary",
			zap.Float64("minimum_salary", f.minimum),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *minimumSalaryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum": strconv.FormatFloat(f.minimum, 'f', 0, 64)},
	}
}
