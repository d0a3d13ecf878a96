// Package pipeline coordinates qualification, matching, pricing and the final
// decision for one candidate pool. Stages run strictly in sequence.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/decision"
	"github.com/spigell/tender-bid/internal/logger"
	"github.com/spigell/tender-bid/internal/matching"
	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/pricing"
	"github.com/spigell/tender-bid/internal/qualifier"
	"github.com/spigell/tender-bid/internal/tender"
)

const stage = "pipeline"

// RequestSink receives new-product requests. Failures are logged and ignored.
type RequestSink interface {
	Write(ctx context.Context, req matching.NewProductRequest) error
}

// Deps are the stage implementations a Coordinator drives.
type Deps struct {
	Qualifier *qualifier.Qualifier
	Matcher   *matching.Matcher
	Pricing   *pricing.Engine
	Policy    *policy.Policy
	Requests  RequestSink
	Now       func() time.Time
}

// Coordinator runs the pipeline. Runs are serialized because the rotation
// record is read and then replaced within a run.
type Coordinator struct {
	deps   Deps
	mu     sync.Mutex
	logger *zap.Logger
}

func New(deps Deps, log *zap.Logger) *Coordinator {
	if deps.Policy == nil {
		deps.Policy = policy.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Coordinator{
		deps:   deps,
		logger: logger.WithFields(log, zap.String(logger.FieldStage, stage)),
	}
}

// Run evaluates candidates and always returns a record. When no tender is
// selected the record carries the qualifier status and a NO-BID recommendation.
func (c *Coordinator) Run(ctx context.Context, candidates *tender.Tenders) *Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := &Record{
		RunID:          uuid.NewString(),
		GeneratedAt:    c.deps.Now(),
		Recommendation: decision.NoBid,
	}
	log := c.logger.With(zap.String("run_id", rec.RunID))

	qual := c.deps.Qualifier.Process(ctx, candidates)
	rec.Qualification = qual
	rec.Status, rec.Message = qual.Status, qual.Message
	if qual.Status != qualifier.StatusSuccess || qual.Selected == nil {
		log.Info("no tender selected", zap.String("status", qual.Status), zap.String("reason", qual.Message))
		return rec
	}

	summary := qual.Selected
	log = logger.WithFields(log, zap.String(logger.FieldTenderID, summary.TenderID))
	rec.SelectedRFP = &SelectedRFP{
		TenderID:       summary.TenderID,
		Title:          summary.Title,
		Organization:   summary.Organization,
		Deadline:       summary.Deadline,
		EstimatedValue: summary.EstimatedValue,
	}

	tech := c.deps.Matcher.Process(TechnicalSummary(summary))

	requests := matching.NewProductRequests(summary.TenderID, tech, c.deps.Policy.Thresholds.MinMatchPercent)
	rec.NewProductRequests = requests
	rec.EngineeringActionRequired = len(requests) > 0
	c.writeRequests(ctx, log, requests)

	priceIn := PricingSummary(summary, tech)
	rec.Technical = &TechnicalOutput{
		Status:         tech.Status,
		Message:        tech.Message,
		ScopeSummary:   tech.ScopeSummary,
		Products:       tech.Products,
		FinalSelection: priceIn.Products,
	}

	priced := c.deps.Pricing.Process(priceIn.Tests, priceIn.Products, pricing.Context{
		EstimatedValue: priceIn.EstimatedValue,
		Organization:   priceIn.Organization,
	})
	rec.Pricing = &PricingOutput{Details: priced, Consolidated: pricing.Consolidate(priced)}
	rec.Overall = Consolidate(summary.TenderID, summary.Title, tech, priced)

	var scores []float64
	for _, item := range tech.Products {
		if item.Selected != nil {
			scores = append(scores, item.Selected.MatchScore)
		}
	}

	d := decision.Decide(decision.Input{
		EstimatedValue: summary.EstimatedValue,
		QuotedValue:    priced.FinalQuote,
		MatchScores:    scores,
		DaysUntilDue:   summary.DaysUntilDue,
	})
	rec.Decision = &Decision{
		Recommendation: d.Recommendation,
		WinProbability: d.WinProbability,
		QuotedValue:    priced.FinalQuote,
		EstimatedValue: summary.EstimatedValue,
		Factors:        d.Factors,
	}
	rec.Recommendation = d.Recommendation

	log.Info("decision made",
		zap.String("recommendation", d.Recommendation),
		zap.Float64("win_probability", d.WinProbability),
		zap.Float64("final_quote", priced.FinalQuote),
		zap.Bool("engineering_action_required", rec.EngineeringActionRequired),
	)
	return rec
}

func (c *Coordinator) writeRequests(ctx context.Context, log *zap.Logger, requests []matching.NewProductRequest) {
	if c.deps.Requests == nil {
		return
	}
	for _, r := range requests {
		if err := c.deps.Requests.Write(ctx, r); err != nil {
			log.Warn("writing new product request failed", zap.Int(logger.FieldItemNo, r.ItemNo), zap.Error(err))
		}
	}
}
