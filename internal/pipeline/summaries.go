package pipeline

import (
	"github.com/spigell/tender-bid/internal/matching"
	"github.com/spigell/tender-bid/internal/pricing"
	"github.com/spigell/tender-bid/internal/tender"
)

// PricingInput is what the pricing stage needs to know about the tender.
type PricingInput struct {
	TenderID       string                `json:"tender_id"`
	EstimatedValue float64               `json:"estimated_value"`
	Organization   string                `json:"organization"`
	Tests          []string              `json:"test_requirements"`
	Products       []pricing.ProductLine `json:"product_recommendations"`
}

// TechnicalSummary narrows the RFP summary to the specification view.
func TechnicalSummary(s *tender.RFPSummary) matching.Input {
	return matching.Input{
		TenderID:            s.TenderID,
		Title:               s.Title,
		Organization:        s.Organization,
		ProductRequirements: s.ProductRequirements,
		ScopeOfSupply:       s.ScopeOfSupply,
	}
}

// PricingSummary joins the final selection with scope quantities. Items missing
// from the scope are priced for one unit.
func PricingSummary(s *tender.RFPSummary, tech *matching.Result) PricingInput {
	in := PricingInput{
		TenderID:       s.TenderID,
		EstimatedValue: s.EstimatedValue,
		Organization:   s.Organization,
		Tests:          s.TestRequirements,
		Products:       []pricing.ProductLine{},
	}
	if tech == nil {
		return in
	}

	quantities := make(map[int]float64, len(s.ScopeOfSupply))
	for _, item := range s.ScopeOfSupply {
		if _, seen := quantities[item.ItemNo]; !seen {
			quantities[item.ItemNo] = item.Quantity
		}
	}

	for _, row := range tech.FinalSelection {
		qty, ok := quantities[row.ItemNo]
		if !ok {
			qty = 1
		}
		in.Products = append(in.Products, pricing.ProductLine{
			ItemNo:      row.ItemNo,
			SKU:         row.SelectedSKU,
			Description: row.Description,
			Quantity:    qty,
		})
	}
	return in
}
