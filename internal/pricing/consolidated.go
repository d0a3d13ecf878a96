package pricing

// LineItem is one material line carrying its share of services.
type LineItem struct {
	ItemNo       int     `json:"item_no"`
	SKU          string  `json:"sku"`
	Description  string  `json:"description"`
	MaterialCost float64 `json:"material_cost"`
	ServicesCost float64 `json:"services_cost"`
	TotalCost    float64 `json:"total_cost"`
}

type Summary struct {
	TotalMaterial float64 `json:"total_material"`
	TotalServices float64 `json:"total_services"`
	GrandTotal    float64 `json:"grand_total"`
}

type Consolidated struct {
	LineItems []LineItem `json:"line_items"`
	Summary   Summary    `json:"summary"`
}

// Consolidate spreads services cost over material lines by material share.
// When there is no material cost the first line carries all services.
func Consolidate(res *Result) Consolidated {
	out := Consolidated{LineItems: []LineItem{}}
	if res == nil {
		return out
	}

	for i, p := range res.Products {
		var services float64
		switch {
		case res.TotalMaterialCost > 0:
			services = res.TotalServicesCost * p.TotalCost / res.TotalMaterialCost
		case i == 0:
			services = res.TotalServicesCost
		}
		out.LineItems = append(out.LineItems, LineItem{
			ItemNo:       p.ItemNo,
			SKU:          p.SKU,
			Description:  p.Description,
			MaterialCost: p.TotalCost,
			ServicesCost: services,
			TotalCost:    p.TotalCost + services,
		})
	}

	out.Summary = Summary{
		TotalMaterial: res.TotalMaterialCost,
		TotalServices: res.TotalServicesCost,
		GrandTotal:    res.GrandTotal,
	}
	return out
}
