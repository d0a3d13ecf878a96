package matching

import "github.com/spigell/tender-bid/internal/catalog"

// RequestRecommendation is the action proposed in every new-product request.
const RequestRecommendation = "Create made-to-order SKU aligned with RFP specs or request OEM deviation approval."

// Gap is one parameter where the closest product differs from the request.
type Gap struct {
	Parameter Parameter `json:"parameter"`
	RFP       string    `json:"rfp"`
	Closest   string    `json:"closest"`
}

// NewProductRequest asks engineering for a SKU when the best match is too weak.
type NewProductRequest struct {
	TenderID          string       `json:"tender_id"`
	ItemNo            int          `json:"item_no"`
	Description       string       `json:"rfp_description"`
	ClosestSKU        string       `json:"closest_sku"`
	ClosestMatchScore float64      `json:"closest_match_score"`
	RFPSpec           RFPSpec      `json:"rfp_specs"`
	ClosestSpec       catalog.Spec `json:"closest_specs"`
	Gaps              []Gap        `json:"gaps"`
	Recommendation    string       `json:"recommendation"`
}

// NewProductRequests returns a request for every selected product scoring below
// minMatchPercent. Items without a selection are skipped.
func NewProductRequests(tenderID string, res *Result, minMatchPercent float64) []NewProductRequest {
	if res == nil {
		return nil
	}

	var requests []NewProductRequest
	for _, item := range res.Products {
		if item.Selected == nil || item.Selected.MatchScore >= minMatchPercent {
			continue
		}

		var closest catalog.Spec
		for _, rec := range item.Top {
			if rec.SKU == item.Selected.SKU {
				closest = rec.Specs
				break
			}
		}

		requests = append(requests, NewProductRequest{
			TenderID:          tenderID,
			ItemNo:            item.ItemNo,
			Description:       item.Description,
			ClosestSKU:        item.Selected.SKU,
			ClosestMatchScore: item.Selected.MatchScore,
			RFPSpec:           item.RFPSpec,
			ClosestSpec:       closest,
			Gaps:              gaps(item.RFPSpec, closest),
			Recommendation:    RequestRecommendation,
		})
	}
	return requests
}

func gaps(rfp RFPSpec, closest catalog.Spec) []Gap {
	out := []Gap{}
	for _, p := range Parameters {
		rv, pv := rfp.value(p), productValue(closest, p)
		if rv != "" && pv != "" && rv != pv {
			out = append(out, Gap{Parameter: p, RFP: rv, Closest: pv})
		}
	}
	return out
}
