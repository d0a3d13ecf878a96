package matching

import (
	"strings"

	"github.com/spigell/tender-bid/internal/catalog"
)

const (
	StatusPass = "Pass"
	StatusGap  = "Gap"
)

// ComplianceItem compares one parameter of the request with the offered product.
type ComplianceItem struct {
	Parameter Parameter `json:"parameter"`
	RFP       string    `json:"rfp"`
	Offered   string    `json:"offered"`
	Status    string    `json:"status"`
	Evidence  string    `json:"evidence,omitempty"`
}

// Compliance builds the parameter-level pass/gap report for the selected product.
func Compliance(rfp RFPSpec, product catalog.Product) []ComplianceItem {
	items := make([]ComplianceItem, 0, len(Parameters))
	for _, p := range Parameters {
		rv, pv := rfp.value(p), productValue(product.Spec, p)

		status := StatusGap
		switch {
		case p == ParamStandards:
			if standardsIntersect(rfp.Standards, product.Spec.Standards) {
				status = StatusPass
			}
		case rv != "" && pv != "" && rv == pv:
			status = StatusPass
		}

		item := ComplianceItem{Parameter: p, RFP: rv, Offered: pv, Status: status}
		if p != ParamStandards {
			item.Evidence = evidence(product.RawText, rv, pv)
		}
		items = append(items, item)
	}
	return items
}

// evidence returns the first datasheet line mentioning either value.
func evidence(raw, rfpValue, productValue string) string {
	if raw == "" {
		return ""
	}
	rv, pv := strings.ToLower(rfpValue), strings.ToLower(productValue)
	for _, line := range strings.Split(raw, "\n") {
		l := strings.ToLower(line)
		if (rv != "" && strings.Contains(l, rv)) || (pv != "" && strings.Contains(l, pv)) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
