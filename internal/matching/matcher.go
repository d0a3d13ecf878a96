// Package matching recommends catalog products for each scope item using
// equal-weight attribute matching.
package matching

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/logger"
	"github.com/spigell/tender-bid/internal/tender"
)

const (
	StatusSuccess   = "success"
	StatusNoScope   = "no_scope"
	StatusNoCatalog = "no_catalog"

	topN          = 3
	fallbackCount = 5
	stage         = "matching"
)

// Recommendation is one ranked candidate.
type Recommendation struct {
	Rank       int          `json:"rank"`
	SKU        string       `json:"sku"`
	Name       string       `json:"name"`
	MatchScore float64      `json:"match_score"`
	Specs      catalog.Spec `json:"specs"`
}

// SelectedProduct is the rank-1 recommendation of an item.
type SelectedProduct struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	MatchScore float64 `json:"match_score"`
}

// ItemResult is the match outcome of one scope item. Selected is nil when there
// is nothing to recommend; downstream stages treat that as no material to price.
type ItemResult struct {
	ItemNo      int              `json:"item_no"`
	Description string           `json:"description"`
	Quantity    float64          `json:"quantity"`
	Unit        string           `json:"unit"`
	RFPSpec     RFPSpec          `json:"rfp_specs"`
	Top         []Recommendation `json:"top_3_recommendations"`
	Compliance  []ComplianceItem `json:"compliance_items"`
	Selected    *SelectedProduct `json:"selected_product"`
}

// SelectionRow is one line of the final selection table.
type SelectionRow struct {
	ItemNo      int     `json:"item_no"`
	Description string  `json:"description"`
	SelectedSKU string  `json:"selected_sku"`
	ProductName string  `json:"selected_product"`
	MatchScore  float64 `json:"match_score"`
}

// Input is the technical view of the selected tender.
type Input struct {
	TenderID            string                     `json:"tender_id"`
	Title               string                     `json:"title"`
	Organization        string                     `json:"organization"`
	ProductRequirements tender.ProductRequirements `json:"product_requirements"`
	ScopeOfSupply       []tender.ScopeItem         `json:"scope_of_supply"`
}

type Result struct {
	Status         string         `json:"status"`
	Message        string         `json:"message,omitempty"`
	ScopeSummary   string         `json:"scope_summary"`
	Products       []ItemResult   `json:"products"`
	FinalSelection []SelectionRow `json:"final_selection_table"`
}

// Matcher holds a read-only catalog.
type Matcher struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func New(c *catalog.Catalog, log *zap.Logger) *Matcher {
	return &Matcher{
		catalog: c,
		logger:  logger.WithFields(log, zap.String(logger.FieldStage, stage)),
	}
}

// Process matches every scope item. Empty scope or catalog yields a result with
// a status and items without a selected product.
func (m *Matcher) Process(in Input) *Result {
	log := logger.WithFields(m.logger, zap.String(logger.FieldTenderID, in.TenderID))
	res := &Result{
		Status:       StatusSuccess,
		ScopeSummary: tender.ScopeSummary(in.ScopeOfSupply),
		Products:     []ItemResult{},
	}

	if len(in.ScopeOfSupply) == 0 {
		log.Warn("no scope items to match")
		res.Status, res.Message = StatusNoScope, "No items in scope of supply"
		return res
	}

	products := m.catalog.Products()
	if len(products) == 0 {
		log.Warn("catalog is empty, no products can be recommended")
		res.Status, res.Message = StatusNoCatalog, "Product catalog is empty"
	}

	for _, item := range in.ScopeOfSupply {
		result := matchItem(item, in.ProductRequirements, products)
		res.Products = append(res.Products, result)

		if result.Selected == nil {
			continue
		}
		log.Debug("item matched",
			zap.Int(logger.FieldItemNo, item.ItemNo),
			zap.String(logger.FieldSKU, result.Selected.SKU),
			zap.Float64("match_score", result.Selected.MatchScore),
		)
		res.FinalSelection = append(res.FinalSelection, SelectionRow{
			ItemNo:      result.ItemNo,
			Description: result.Description,
			SelectedSKU: result.Selected.SKU,
			ProductName: result.Selected.Name,
			MatchScore:  result.Selected.MatchScore,
		})
	}

	log.Info("technical matching done", zap.Int("items", len(in.ScopeOfSupply)), zap.Int("selected", len(res.FinalSelection)))
	return res
}

type scored struct {
	product catalog.Product
	score   float64
}

func matchItem(item tender.ScopeItem, reqs tender.ProductRequirements, products []catalog.Product) ItemResult {
	rfp := BuildRFPSpec(item, reqs).Normalized()
	result := ItemResult{
		ItemNo:      item.ItemNo,
		Description: item.Description,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		RFPSpec:     rfp,
		Top:         []Recommendation{},
	}
	if len(products) == 0 {
		return result
	}

	candidates := Candidates(rfp, products)
	ranked := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		ranked = append(ranked, scored{product: p, score: Score(rfp, p.Spec)})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	for i, r := range ranked {
		result.Top = append(result.Top, Recommendation{
			Rank:       i + 1,
			SKU:        r.product.SKU,
			Name:       r.product.Name,
			MatchScore: r.score,
			Specs:      r.product.Spec,
		})
	}

	best := ranked[0]
	result.Selected = &SelectedProduct{SKU: best.product.SKU, Name: best.product.Name, MatchScore: best.score}
	result.Compliance = Compliance(rfp, best.product)
	return result
}

// Candidates filters products by cable type or voltage proximity. When nothing
// passes, the first five catalog entries are used so matching never stalls.
func Candidates(rfp RFPSpec, products []catalog.Product) []catalog.Product {
	var out []catalog.Product
	for _, p := range products {
		if isCandidate(rfp, p.Spec) {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		return out
	}
	return products[:min(fallbackCount, len(products))]
}
