package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/decision"
	"github.com/spigell/tender-bid/internal/matching"
	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/pricing"
	"github.com/spigell/tender-bid/internal/qualifier"
	"github.com/spigell/tender-bid/internal/state"
	"github.com/spigell/tender-bid/internal/tender"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type recordingSink struct {
	mu   sync.Mutex
	reqs []matching.NewProductRequest
	err  error
}

func (s *recordingSink) Write(_ context.Context, r matching.NewProductRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, r)
	return s.err
}

func newCoordinator(t *testing.T, products []catalog.Product, sink RequestSink, log *zap.Logger) (*Coordinator, *state.Memory) {
	t.Helper()
	p := policy.Default()
	store := state.NewMemory()
	cat := catalog.New("test", products)

	return New(Deps{
		Qualifier: qualifier.New(p, &policy.Experience{}, store, qualifier.Options{Now: clock}, log),
		Matcher:   matching.New(cat, log),
		Pricing:   pricing.New(pricing.DefaultTables(), p, pricing.Options{ListPrices: cat.ListPrices()}, log),
		Policy:    p,
		Requests:  sink,
		Now:       clock,
	}, log), store
}

func elevenKVTender() *tender.Tender {
	length := 10.0
	return &tender.Tender{
		ID:             "T-100",
		Title:          "Supply of 11kV XLPE cable",
		Description:    "Armoured copper conductor. Routine tests required. Conforming to IS 7098.",
		Organization:   "Maharashtra State Electricity Distribution",
		EstimatedValue: 12_000_000,
		Deadline:       fixedNow.Add(20 * 24 * time.Hour).Format(time.RFC3339),
		VoltageClass:   "11 kV",
		CableType:      "XLPE",
		LengthKM:       &length,
	}
}

func TestRunEndToEnd(t *testing.T) {
	c, store := newCoordinator(t, catalog.Builtin(), nil, nil)

	rec := c.Run(context.Background(), tender.NewTenders(elevenKVTender()))

	require.Equal(t, StatusSuccess, rec.Status)
	require.NotNil(t, rec.SelectedRFP)
	assert.Equal(t, "T-100", rec.SelectedRFP.TenderID)
	assert.NotEmpty(t, rec.RunID)
	assert.Equal(t, fixedNow, rec.GeneratedAt)

	require.NotNil(t, rec.Technical)
	require.Len(t, rec.Technical.FinalSelection, 1)
	line := rec.Technical.FinalSelection[0]
	assert.Equal(t, "OEM-XLPE-11KV-3C-185", line.SKU)
	assert.Equal(t, 10.0, line.Quantity)

	details := rec.Pricing.Details
	assert.Equal(t, 8_500_000.0, details.TotalMaterialCost)
	assert.Equal(t, []string{
		"Routine tests as per applicable standards",
		"Visual inspection and dimensional check",
		"Mechanical tests (tensile, elongation)",
		"Tests as per IS 7098",
	}, testNames(details.Tests))
	assert.Equal(t, 18_000.0, details.TotalServicesCost)

	_, wantQuote := pricing.Assemble(8_518_000, policy.Default().Overheads)
	assert.Equal(t, wantQuote, details.FinalQuote)

	require.NotNil(t, rec.Overall)
	require.Len(t, rec.Overall.OEMProducts, 1)
	assert.Equal(t, 100.0, rec.Overall.OEMProducts[0].MatchScore)
	assert.Equal(t, 8_518_000.0, rec.Overall.GrandTotal)

	require.NotNil(t, rec.Decision)
	assert.Equal(t, 95.0, rec.Decision.WinProbability)
	assert.Equal(t, decision.Bid, rec.Recommendation)
	assert.False(t, rec.EngineeringActionRequired)
	assert.Empty(t, rec.NewProductRequests)

	last, err := store.LastSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"T-100"}, last)
	assert.Len(t, store.Audit(), 1)
}

func testNames(tests []pricing.PricedTest) []string {
	var out []string
	for _, t := range tests {
		out = append(out, t.TestName)
	}
	return out
}

func TestRunWithoutTenders(t *testing.T) {
	c, _ := newCoordinator(t, catalog.Builtin(), nil, nil)

	rec := c.Run(context.Background(), tender.NewTenders())
	assert.Equal(t, StatusNoTenders, rec.Status)
	assert.Equal(t, decision.NoBid, rec.Recommendation)
	assert.Nil(t, rec.Technical)
	assert.Nil(t, rec.Decision)
	require.NotNil(t, rec.Qualification)

	expired := elevenKVTender()
	expired.Deadline = fixedNow.Add(-24 * time.Hour).Format(time.RFC3339)
	rec = c.Run(context.Background(), tender.NewTenders(expired))
	assert.Equal(t, StatusNoTenders, rec.Status)
	assert.Equal(t, "No RFPs due in next 3 months", rec.Message)
}

func TestRunWithEmptyCatalog(t *testing.T) {
	c, _ := newCoordinator(t, nil, nil, nil)

	rec := c.Run(context.Background(), tender.NewTenders(elevenKVTender()))
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.Equal(t, matching.StatusNoCatalog, rec.Technical.Status)
	assert.Empty(t, rec.Technical.FinalSelection)
	assert.Equal(t, pricing.StatusNoProducts, rec.Pricing.Details.Status)
	assert.Zero(t, rec.Decision.QuotedValue)
	assert.Equal(t, decision.NoBid, rec.Recommendation)
}

func TestRunWritesNewProductRequests(t *testing.T) {
	products := []catalog.Product{{
		SKU:  "AL-33",
		Name: "33kV Aluminium",
		Spec: catalog.Spec{Voltage: "33 kV", CableType: "PVC", ConductorMaterial: "Aluminum", InsulationType: "PVC", Armoring: "Armored", Cores: "3-core", Standards: []string{"IS 7098"}},
	}}
	sink := &recordingSink{err: errors.New("disk full")}
	core, logs := observer.New(zapcore.WarnLevel)

	c, _ := newCoordinator(t, products, sink, zap.New(core))
	rec := c.Run(context.Background(), tender.NewTenders(elevenKVTender()))

	require.Equal(t, StatusSuccess, rec.Status)
	assert.True(t, rec.EngineeringActionRequired)
	require.Len(t, rec.NewProductRequests, 1)
	assert.Equal(t, "AL-33", rec.NewProductRequests[0].ClosestSKU)
	assert.Len(t, sink.reqs, 1)
	assert.Equal(t, 1, logs.FilterMessage("writing new product request failed").Len())
	assert.NotNil(t, rec.Decision, "sink failures never stop the run")
}

func TestPricingSummaryJoinsQuantities(t *testing.T) {
	summary := &tender.RFPSummary{
		TenderID:         "T-1",
		EstimatedValue:   5,
		Organization:     "NTPC",
		TestRequirements: []string{"Routine"},
		ScopeOfSupply: []tender.ScopeItem{
			{ItemNo: 1, Quantity: 4},
			{ItemNo: 2, Quantity: 7},
		},
	}
	tech := &matching.Result{FinalSelection: []matching.SelectionRow{
		{ItemNo: 2, SelectedSKU: "B", Description: "second"},
		{ItemNo: 9, SelectedSKU: "Z", Description: "orphan"},
	}}

	in := PricingSummary(summary, tech)
	assert.Equal(t, []pricing.ProductLine{
		{ItemNo: 2, SKU: "B", Description: "second", Quantity: 7},
		{ItemNo: 9, SKU: "Z", Description: "orphan", Quantity: 1},
	}, in.Products)
	assert.Equal(t, []string{"Routine"}, in.Tests)
	assert.Equal(t, "NTPC", in.Organization)
}

func TestRunsAreSerialized(t *testing.T) {
	c, store := newCoordinator(t, catalog.Builtin(), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Run(context.Background(), tender.NewTenders(elevenKVTender()))
		}()
	}
	wg.Wait()

	assert.Len(t, store.Audit(), 4)
}
