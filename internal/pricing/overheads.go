package pricing

import (
	"math"
	"strings"

	"github.com/spigell/tender-bid/internal/policy"
)

const (
	largeTenderValue = 100_000_000 // 10 crore
	midTenderValue   = 50_000_000  // 5 crore

	marginStep = 0.005
)

// Context is the commercial context of a quote.
type Context struct {
	EstimatedValue float64 `json:"estimated_value"`
	Organization   string  `json:"organization"`
}

// Rule is one overhead adjustment. grand is the material plus services total.
type Rule func(o policy.Overheads, c Context, grand float64) policy.Overheads

// Rules returns the adjustments in the order they apply: tier caps, strategic
// accounts, high-ratio sharpening, then the final clamp.
func Rules(d policy.DynamicOverheads) []Rule {
	return []Rule{TierCap(d), StrategicAccount(d), SharpenHighRatio(d), Clamp(d)}
}

// Apply runs rules over base in order.
func Apply(base policy.Overheads, c Context, grand float64, rules ...Rule) policy.Overheads {
	out := base
	for _, r := range rules {
		out = r(out, c, grand)
	}
	return out
}

// TierCap lowers margin (and contingency for the largest tenders) by estimated value.
func TierCap(d policy.DynamicOverheads) Rule {
	return func(o policy.Overheads, c Context, _ float64) policy.Overheads {
		switch {
		case c.EstimatedValue >= largeTenderValue:
			o.ProfitMarginPct = math.Min(o.ProfitMarginPct, d.LargeTenderMarginCap)
			o.ContingencyPct = math.Min(o.ContingencyPct, d.LargeTenderContingencyCap)
		case c.EstimatedValue >= midTenderValue:
			o.ProfitMarginPct = math.Min(o.ProfitMarginPct, d.MidTenderMarginCap)
		}
		return o
	}
}

// StrategicAccount applies the strategic delta when the organization contains a
// configured account keyword.
func StrategicAccount(d policy.DynamicOverheads) Rule {
	return func(o policy.Overheads, c Context, _ float64) policy.Overheads {
		org := strings.ToLower(c.Organization)
		for _, account := range d.StrategicAccounts {
			account = strings.ToLower(strings.TrimSpace(account))
			if account != "" && strings.Contains(org, account) {
				o.ProfitMarginPct = math.Max(o.ProfitMarginPct+d.StrategicMarginDelta, d.ProfitMarginMin)
				break
			}
		}
		return o
	}
}

// SharpenHighRatio trims margin when the pre-overhead total already exceeds the
// estimate by more than the threshold.
func SharpenHighRatio(d policy.DynamicOverheads) Rule {
	return func(o policy.Overheads, c Context, grand float64) policy.Overheads {
		if c.EstimatedValue <= 0 {
			return o
		}
		if grand/c.EstimatedValue > d.HighRatioSharpenThreshold {
			o.ProfitMarginPct = math.Max(o.ProfitMarginPct+d.HighRatioMarginDelta, d.ProfitMarginMin)
		}
		return o
	}
}

// Clamp bounds margin and contingency.
func Clamp(d policy.DynamicOverheads) Rule {
	return func(o policy.Overheads, _ Context, _ float64) policy.Overheads {
		o.ProfitMarginPct = math.Max(d.ProfitMarginMin, math.Min(o.ProfitMarginPct, d.ProfitMarginMax))
		o.ContingencyPct = math.Max(d.ContingencyMin, math.Min(o.ContingencyPct, d.ContingencyMax))
		return o
	}
}

// OptimizerInfo records the margin chosen by the optimizer.
type OptimizerInfo struct {
	TargetRatio     float64 `json:"target_ratio"`
	ChosenMarginPct float64 `json:"chosen_margin_pct"`
}

// OptimizeMargin searches margins from min to max in 0.005 steps and returns the
// one whose quote/estimate ratio is closest to target. Ties keep the lower margin.
func OptimizeMargin(o policy.Overheads, grand, estimated float64, d policy.DynamicOverheads) (float64, bool) {
	if estimated <= 0 || d.ProfitMarginMax < d.ProfitMarginMin {
		return 0, false
	}

	base := grand * (1 + o.TransportPct + o.InstallationSupportPct + o.ContingencyPct)
	steps := int(math.Floor((d.ProfitMarginMax-d.ProfitMarginMin)/marginStep + 1e-9))

	best, bestScore := 0.0, math.Inf(1)
	for i := 0; i <= steps; i++ {
		pm := d.ProfitMarginMin + float64(i)*marginStep
		quote := base * (1 + pm) * (1 + o.GSTPct)
		score := math.Abs(quote/estimated - d.TargetRatio)
		if score < bestScore {
			best, bestScore = pm, score
		}
	}
	return best, true
}

// EnabledFlag reports whether a flag value such as ENABLE_MARGIN_OPT is on.
func EnabledFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
