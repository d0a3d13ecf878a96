package matching

import (
	"math"
	"strings"

	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/specnorm"
)

const voltageTolerance = 1

// matches reports whether parameter p counts as matched. A value missing on
// either side never matches but still counts in the denominator.
func matches(rfp RFPSpec, product catalog.Spec, p Parameter) bool {
	if p == ParamStandards {
		return standardsIntersect(rfp.Standards, product.Standards)
	}

	rv, pv := rfp.value(p), productValue(product, p)
	if rv == "" || pv == "" {
		return false
	}

	switch p {
	case ParamVoltage:
		return specnorm.VoltageWithin(rv, pv, voltageTolerance)
	case ParamConductorMaterial:
		return strings.EqualFold(rv, pv)
	default:
		return rv == pv
	}
}

func standardsIntersect(rfp, product []string) bool {
	if len(rfp) == 0 || len(product) == 0 {
		return false
	}
	for _, want := range rfp {
		for _, have := range product {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Score is the equal-weight match percentage: 100*k/7 rounded to 2 decimals.
// A parameter missing on either side never matches but still counts in the
// denominator, so sparse RFP data caps the reachable score.
func Score(rfp RFPSpec, product catalog.Spec) float64 {
	matched := 0
	for _, p := range Parameters {
		if matches(rfp, product, p) {
			matched++
		}
	}
	pct := float64(matched) / float64(len(Parameters)) * 100
	return math.RoundToEven(pct*100) / 100
}

// isCandidate keeps products with the same cable type or a voltage within tolerance.
func isCandidate(rfp RFPSpec, product catalog.Spec) bool {
	if product.CableType == rfp.CableType {
		return true
	}
	return specnorm.VoltageWithin(rfp.Voltage, product.Voltage, voltageTolerance)
}
