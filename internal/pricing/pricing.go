// Package pricing costs material and services for a selected tender and
// assembles the final quote with policy-driven overheads.
package pricing

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/logger"
	"github.com/spigell/tender-bid/internal/policy"
)

const (
	StatusSuccess    = "success"
	StatusNoProducts = "no_products"

	// metersPerKm converts per-meter table prices to per-km quantities.
	metersPerKm = 1000
	unitKm      = "km"
	stage       = "pricing"
)

// ProductLine is a selected product to price. Quantity is in kilometers.
type ProductLine struct {
	ItemNo      int     `json:"item_no"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
}

type PricedLine struct {
	ItemNo      int     `json:"item_no"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	TotalCost   float64 `json:"total_cost"`
}

type PricedTest struct {
	TestName string  `json:"test_name"`
	Cost     float64 `json:"cost"`
}

// Breakdown lists every rounded overhead amount and the percentages used.
type Breakdown struct {
	TransportCost       float64          `json:"transport_cost"`
	InstallationSupport float64          `json:"installation_support"`
	Contingency         float64          `json:"contingency"`
	ProfitMargin        float64          `json:"profit_margin"`
	GST                 float64          `json:"gst"`
	AppliedPcts         policy.Overheads `json:"applied_pcts"`
	Optimizer           *OptimizerInfo   `json:"optimizer,omitempty"`
}

type Result struct {
	Status            string       `json:"status"`
	Message           string       `json:"message,omitempty"`
	Products          []PricedLine `json:"products"`
	Tests             []PricedTest `json:"tests"`
	TotalMaterialCost float64      `json:"total_material_cost"`
	TotalServicesCost float64      `json:"total_services_cost"`
	GrandTotal        float64      `json:"grand_total"`
	Breakdown         Breakdown    `json:"breakdown"`
	FinalQuote        float64      `json:"final_quote"`
}

type Options struct {
	// OptimizeMargin enables the margin grid search when an estimate is known.
	OptimizeMargin bool
	// ListPrices are catalog per-meter prices used for SKUs absent from the table.
	ListPrices map[string]float64
}

// Engine prices quotes against read-only tables and policy.
type Engine struct {
	tables Tables
	policy *policy.Policy
	opts   Options
	logger *zap.Logger
}

func New(tables Tables, p *policy.Policy, opts Options, log *zap.Logger) *Engine {
	if p == nil {
		p = policy.Default()
	}
	if tables.Products == nil {
		tables.Products = DefaultProductPrices()
	}
	if tables.Tests == nil {
		tables.Tests = DefaultTestPrices()
	}
	return &Engine{
		tables: tables,
		policy: p,
		opts:   opts,
		logger: logger.WithFields(log, zap.String(logger.FieldStage, stage)),
	}
}

// Process prices products and tests and assembles the final quote. Without
// products nothing is priced and the status is no_products; the requested tests
// are not priced either, so the quote stays 0.
func (e *Engine) Process(tests []string, products []ProductLine, c Context) *Result {
	res := &Result{
		Status:   StatusSuccess,
		Products: []PricedLine{},
		Tests:    []PricedTest{},
	}

	if len(products) == 0 {
		e.logger.Warn("no selected products to price")
		res.Status, res.Message = StatusNoProducts, "No selected products to price"
		res.Breakdown.AppliedPcts = e.policy.Overheads
		return res
	}

	for _, p := range products {
		line := e.priceProduct(p)
		res.Products = append(res.Products, line)
		res.TotalMaterialCost += line.TotalCost
	}
	for _, t := range tests {
		test := PricedTest{TestName: t, Cost: e.tables.Tests.Lookup(t)}
		res.Tests = append(res.Tests, test)
		res.TotalServicesCost += test.Cost
	}
	res.GrandTotal = res.TotalMaterialCost + res.TotalServicesCost

	overheads := Apply(e.policy.Overheads, c, res.GrandTotal, Rules(e.policy.DynamicOverheads)...)

	var info *OptimizerInfo
	if e.opts.OptimizeMargin {
		if pm, ok := OptimizeMargin(overheads, res.GrandTotal, c.EstimatedValue, e.policy.DynamicOverheads); ok {
			overheads.ProfitMarginPct = pm
			info = &OptimizerInfo{TargetRatio: e.policy.DynamicOverheads.TargetRatio, ChosenMarginPct: pm}
			e.logger.Debug("margin optimized", zap.Float64("margin_pct", pm))
		}
	}

	res.Breakdown, res.FinalQuote = Assemble(res.GrandTotal, overheads)
	res.Breakdown.Optimizer = info

	e.logger.Info("pricing complete",
		zap.Float64("material", res.TotalMaterialCost),
		zap.Float64("services", res.TotalServicesCost),
		zap.Float64("final_quote", res.FinalQuote),
	)
	return res
}

// Assemble compounds overheads on grand: transport, installation and contingency
// on grand, margin on that subtotal, GST on the margin-inclusive amount. Every
// amount is rounded before it is added.
func Assemble(grand float64, o policy.Overheads) (Breakdown, float64) {
	b := Breakdown{AppliedPcts: o}
	b.TransportCost = math.RoundToEven(grand * o.TransportPct)
	b.InstallationSupport = math.RoundToEven(grand * o.InstallationSupportPct)
	b.Contingency = math.RoundToEven(grand * o.ContingencyPct)
	subtotal := grand + b.TransportCost + b.InstallationSupport + b.Contingency

	b.ProfitMargin = math.RoundToEven(subtotal * o.ProfitMarginPct)
	taxable := subtotal + b.ProfitMargin

	b.GST = math.RoundToEven(taxable * o.GSTPct)
	return b, taxable + b.GST
}

// UnitPrice resolves the per-meter price of sku: table entry, catalog list
// price, the table DEFAULT entry, then DefaultUnitPrice.
func (e *Engine) UnitPrice(sku string) float64 {
	if p, ok := e.tables.Products[sku]; ok {
		return p
	}
	if p, ok := e.opts.ListPrices[sku]; ok && p > 0 {
		return p
	}
	if p, ok := e.tables.Products[DefaultKey]; ok {
		return p
	}
	return DefaultUnitPrice
}

func (e *Engine) priceProduct(p ProductLine) PricedLine {
	unit := e.UnitPrice(p.SKU)

	desc := strings.ToLower(p.Description)
	switch {
	case strings.Contains(desc, "copper") && e.tables.Market.Loaded:
		unit = math.RoundToEven(unit * multiplier(e.tables.Market.CopperMultiplier))
	case strings.Contains(desc, "aluminum") || strings.Contains(desc, "aluminium"):
		unit = math.RoundToEven(unit * multiplier(e.tables.Market.AluminumMultiplier))
	}

	e.logger.Debug("product priced",
		zap.Int(logger.FieldItemNo, p.ItemNo),
		zap.String(logger.FieldSKU, p.SKU),
		zap.Float64("unit_price", unit),
	)

	return PricedLine{
		ItemNo:      p.ItemNo,
		SKU:         p.SKU,
		Description: p.Description,
		Quantity:    p.Quantity,
		Unit:        unitKm,
		UnitPrice:   unit,
		TotalCost:   unit * p.Quantity * metersPerKm,
	}
}

// multiplier treats an unset multiplier as neutral.
func multiplier(m float64) float64 {
	if m == 0 {
		return 1
	}
	return m
}
