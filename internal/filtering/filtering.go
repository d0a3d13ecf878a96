package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/tender"
)

// Filter represents a single filtering step applied to candidate tenders.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, v *tender.Tenders) (*tender.Tenders, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// StepReport is a Step tagged with the filter that produced it.
type StepReport struct {
	Name string `json:"name"`
	Step
}

// Report summarizes a filtering run.
type Report struct {
	Steps []StepReport
	// EmptiedBy names the step that left no candidates, if any.
	EmptiedBy string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Filtering runs an ordered chain of filters.
type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{steps: steps, logger: logger}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// RunFilters executes the enabled filters sequentially on a copy of v. It stops
// at the first step that leaves the list empty and records that step's name.
func (f *Filtering) RunFilters(ctx context.Context, v *tender.Tenders) (*tender.Tenders, Report, error) {
	var report Report

	for _, step := range f.steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, report, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	v = v.Clone()
	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, v)
		if err != nil {
			return nil, report, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		report.Steps = append(report.Steps, StepReport{Name: step.Name(), Step: info})
		v = next

		if v.Len() == 0 {
			report.EmptiedBy = step.Name()
			break
		}
	}

	return v, report, nil
}

// Describe returns status entries for the configured filters.
func (f *Filtering) Describe() []Status {
	return Describe(f.steps)
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
