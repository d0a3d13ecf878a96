package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/tender"
)

// QualificationName is the name of the qualification step.
const QualificationName = "qualification"

// ScoreFunc computes the qualification scores of a tender.
type ScoreFunc func(*tender.Tender) *tender.Scores

type qualificationFilter struct {
	score  ScoreFunc
	logger *zap.Logger
}

// NewQualification attaches scores to every tender and drops those that do not qualify.
func NewQualification(score ScoreFunc, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &qualificationFilter{score: score, logger: logger}
}

func (f *qualificationFilter) Name() string { return QualificationName }

// Disable is a no-op: qualification always runs.
func (f *qualificationFilter) Disable(string) {}

func (f *qualificationFilter) IsEnabled() bool { return true }

func (f *qualificationFilter) Validate() error {
	if f.score == nil {
		return fmt.Errorf("score function is required")
	}
	return nil
}

func (f *qualificationFilter) Apply(_ context.Context, v *tender.Tenders) (*tender.Tenders, Step, error) {
	initial := v.Len()

	dropped := v.Keep(func(t *tender.Tender) bool {
		t.Scores = f.score(t)
		f.logger.Debug("qualification scored",
			zap.String("tender_id", t.ID),
			zap.Float64("score", t.Scores.Qualification),
			zap.Bool("qualified", t.Scores.Qualified),
		)
		return t.Scores.Qualified
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding tenders below the qualification threshold",
			zap.Strings("excluded_tenders", dropped),
			zap.Int("tenders_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}
