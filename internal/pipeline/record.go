package pipeline

import (
	"time"

	"github.com/spigell/tender-bid/internal/decision"
	"github.com/spigell/tender-bid/internal/matching"
	"github.com/spigell/tender-bid/internal/pricing"
	"github.com/spigell/tender-bid/internal/qualifier"
)

const (
	StatusSuccess     = qualifier.StatusSuccess
	StatusNoTenders   = qualifier.StatusNoTenders
	StatusNoQualified = qualifier.StatusNoQualified
)

// Record is the consolidated decision record of one run. Sections after
// Qualification are nil when no tender was selected.
type Record struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
	Recommendation string    `json:"recommendation"`

	SelectedRFP               *SelectedRFP `json:"selected_rfp,omitempty"`
	EngineeringActionRequired bool         `json:"engineering_action_required"`

	Qualification      *qualifier.Result            `json:"sales_output"`
	Technical          *TechnicalOutput             `json:"technical_output,omitempty"`
	Pricing            *PricingOutput               `json:"pricing_output,omitempty"`
	Overall            *Overall                     `json:"overall_response,omitempty"`
	NewProductRequests []matching.NewProductRequest `json:"new_sku_requests,omitempty"`
	Decision           *Decision                    `json:"decision,omitempty"`

	// Brief is an optional narrative written after the decision.
	Brief string `json:"bid_brief,omitempty"`
}

type SelectedRFP struct {
	TenderID       string  `json:"tender_id"`
	Title          string  `json:"title"`
	Organization   string  `json:"organization"`
	Deadline       string  `json:"deadline"`
	EstimatedValue float64 `json:"estimated_value"`
}

type TechnicalOutput struct {
	Status         string                `json:"status"`
	Message        string                `json:"message,omitempty"`
	ScopeSummary   string                `json:"scope_summary"`
	Products       []matching.ItemResult `json:"products"`
	FinalSelection []pricing.ProductLine `json:"final_selection"`
}

type PricingOutput struct {
	Details      *pricing.Result      `json:"pricing_details"`
	Consolidated pricing.Consolidated `json:"consolidated_table"`
}

// OEMProduct is a priced line with the match score of its item.
type OEMProduct struct {
	ItemNo            int     `json:"item_no"`
	SKU               string  `json:"sku"`
	Description       string  `json:"description"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	UnitPrice         float64 `json:"unit_price"`
	TotalMaterialCost float64 `json:"total_material_cost"`
	MatchScore        float64 `json:"match_score"`
}

// Overall is the consolidated technical and commercial response.
type Overall struct {
	TenderID          string               `json:"tender_id"`
	TenderTitle       string               `json:"tender_title"`
	OEMProducts       []OEMProduct         `json:"oem_products"`
	TestsRequired     []pricing.PricedTest `json:"tests_required"`
	TotalMaterialCost float64              `json:"total_material_cost"`
	TotalServicesCost float64              `json:"total_services_cost"`
	GrandTotal        float64              `json:"grand_total"`
}

type Decision struct {
	Recommendation string           `json:"recommendation"`
	WinProbability float64          `json:"win_probability"`
	QuotedValue    float64          `json:"quoted_value"`
	EstimatedValue float64          `json:"estimated_value"`
	Factors        decision.Factors `json:"factors"`
}

// Consolidate merges technical and pricing results into the overall response.
func Consolidate(tenderID, title string, tech *matching.Result, price *pricing.Result) *Overall {
	out := &Overall{
		TenderID:      tenderID,
		TenderTitle:   title,
		OEMProducts:   []OEMProduct{},
		TestsRequired: []pricing.PricedTest{},
	}
	if price == nil {
		return out
	}

	scores := map[int]float64{}
	if tech != nil {
		for _, item := range tech.Products {
			if _, seen := scores[item.ItemNo]; seen {
				continue
			}
			if item.Selected != nil {
				scores[item.ItemNo] = item.Selected.MatchScore
			} else {
				scores[item.ItemNo] = 0
			}
		}
	}

	for _, p := range price.Products {
		out.OEMProducts = append(out.OEMProducts, OEMProduct{
			ItemNo:            p.ItemNo,
			SKU:               p.SKU,
			Description:       p.Description,
			Quantity:          p.Quantity,
			Unit:              p.Unit,
			UnitPrice:         p.UnitPrice,
			TotalMaterialCost: p.TotalCost,
			MatchScore:        scores[p.ItemNo],
		})
	}
	out.TestsRequired = append(out.TestsRequired, price.Tests...)
	out.TotalMaterialCost = price.TotalMaterialCost
	out.TotalServicesCost = price.TotalServicesCost
	out.GrandTotal = price.GrandTotal
	return out
}
