// Package qualifier filters and scores candidate tenders and selects exactly one
// for the rest of the pipeline.
package qualifier

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/filtering"
	"github.com/spigell/tender-bid/internal/logger"
	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/state"
	"github.com/spigell/tender-bid/internal/tender"
)

const (
	StatusSuccess     = "success"
	StatusNoTenders   = "no_tenders"
	StatusNoQualified = "no_qualified"

	stage = "qualifier"

	// DeadlineWindow is how far ahead a deadline may be.
	DeadlineWindow = 90 * 24 * time.Hour
)

// Result is returned for every run; Selected is nil unless Status is success.
type Result struct {
	Status   string             `json:"status"`
	Message  string             `json:"message,omitempty"`
	Selected *tender.RFPSummary `json:"rfp_summary,omitempty"`
	Tender   *tender.Tender     `json:"selected_rfp,omitempty"`
	Stats    Stats              `json:"stats"`
	Filters  []filtering.Status `json:"filters,omitempty"`
}

// Stats counts candidates through the run.
type Stats struct {
	Total     int                    `json:"total_tenders"`
	Steps     []filtering.StepReport `json:"steps,omitempty"`
	Qualified int                    `json:"qualified_count"`
	Ranked    []Ranked               `json:"ranked,omitempty"`
}

// Ranked is one candidate in final ranking order.
type Ranked struct {
	TenderID string  `json:"tender_id"`
	Combined float64 `json:"combined"`
}

// Options tune a Qualifier.
type Options struct {
	// IgnoreRotation disables the rotation step for this qualifier.
	IgnoreRotation bool
	Now            func() time.Time
}

type Qualifier struct {
	scorer *Scorer
	store  state.Store
	opts   Options
	logger *zap.Logger
}

func New(p *policy.Policy, exp *policy.Experience, store state.Store, opts Options, log *zap.Logger) *Qualifier {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Qualifier{
		scorer: NewScorer(p, exp),
		store:  store,
		opts:   opts,
		logger: logger.WithFields(log, zap.String(logger.FieldStage, stage)),
	}
}

// Qualify scores a single tender as of the qualifier's clock.
func (q *Qualifier) Qualify(t *tender.Tender) *tender.Scores {
	return q.scorer.Score(t, t.DaysUntilDue(q.opts.Now()))
}

func (q *Qualifier) filters() []filtering.Filter {
	steps := []filtering.Filter{
		filtering.NewDeadlineWindow(DeadlineWindow, q.opts.Now, q.logger),
		filtering.NewQualification(q.Qualify, q.logger),
		filtering.NewRotation(q.store, q.logger),
	}
	if q.opts.IgnoreRotation {
		filtering.DisableByName(steps, filtering.RotationName, "rotation disabled by option")
	}
	return steps
}

// Process filters, ranks and selects one tender. It never returns an error:
// exhaustion is reported through Status and persistence failures are logged.
func (q *Qualifier) Process(ctx context.Context, candidates *tender.Tenders) *Result {
	res := &Result{Stats: Stats{Total: candidates.Len()}}

	if candidates.Len() == 0 {
		q.logger.Warn("no candidate tenders")
		res.Status, res.Message = StatusNoTenders, "No tenders to evaluate"
		return res
	}

	steps := q.filters()
	left, report, err := filtering.New(steps, q.logger).RunFilters(ctx, candidates)
	res.Stats.Steps = report.Steps
	res.Filters = filtering.Describe(steps)
	if err != nil {
		q.logger.Error("filtering failed", zap.Error(err))
		res.Status, res.Message = StatusNoTenders, err.Error()
		return res
	}

	switch report.EmptiedBy {
	case filtering.DeadlineWindowName:
		res.Status, res.Message = StatusNoTenders, "No RFPs due in next 3 months"
		return res
	case filtering.QualificationName:
		res.Status, res.Message = StatusNoQualified, "No qualified cable RFPs found"
		return res
	}

	res.Stats.Qualified = qualifiedCount(report)

	ranked := slices.Clone(left.Items)
	slices.SortStableFunc(ranked, func(a, b *tender.Tender) int {
		return cmp.Compare(b.Scores.Combined, a.Scores.Combined)
	})
	for _, t := range ranked {
		res.Stats.Ranked = append(res.Stats.Ranked, Ranked{TenderID: t.ID, Combined: t.Scores.Combined})
	}

	winner := ranked[0]
	now := q.opts.Now()
	log := logger.WithFields(q.logger, zap.String(logger.FieldTenderID, winner.ID))

	if q.store != nil {
		if err := q.store.SetLastSelected(ctx, []string{winner.ID}); err != nil {
			log.Warn("saving rotation state failed", zap.Error(err))
		}
	}

	summary := tender.Summarize(winner, now)

	if q.store != nil {
		if err := q.store.AppendAudit(ctx, auditRecord(now, winner, summary)); err != nil {
			log.Warn("appending selection audit failed", zap.Error(err))
		}
	}

	log.Info("selected top RFP",
		zap.Float64("combined", winner.Scores.Combined),
		zap.Float64("priority", winner.Scores.Priority),
		zap.Float64("qualification", winner.Scores.Qualification),
	)

	res.Status = StatusSuccess
	res.Selected = summary
	res.Tender = winner
	return res
}

func qualifiedCount(report filtering.Report) int {
	for _, s := range report.Steps {
		if s.Name == filtering.QualificationName {
			return s.Left
		}
	}
	return 0
}

func auditRecord(now time.Time, t *tender.Tender, s *tender.RFPSummary) state.AuditRecord {
	reqs := s.ProductRequirements
	return state.AuditRecord{
		Timestamp:          now,
		TenderID:           t.ID,
		Title:              t.Title,
		Organization:       t.Organization,
		EstimatedValue:     t.EstimatedValue,
		Deadline:           t.Deadline,
		DaysUntilDue:       s.DaysUntilDue,
		PriorityScore:      t.Scores.Priority,
		QualificationScore: t.Scores.Qualification,
		CombinedScore:      t.Scores.Combined,
		CableType:          reqs.CableType,
		Voltage:            reqs.Voltage,
		LengthKM:           reqs.LengthKM,
		Cores:              reqs.Cores,
		Armoring:           reqs.Armoring,
		ConductorMaterial:  reqs.ConductorMaterial,
		InsulationType:     reqs.InsulationType,
		Standards:          reqs.Standards,
	}
}
