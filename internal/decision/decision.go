// Package decision turns price competitiveness, technical fit and urgency into
// a win probability and a bid/no-bid recommendation.
package decision

const (
	Bid   = "BID"
	NoBid = "NO-BID"

	baseProbability = 50.0
)

// Input carries everything the decision needs. DaysUntilDue is nil when the
// deadline is unknown.
type Input struct {
	EstimatedValue float64   `json:"estimated_value"`
	QuotedValue    float64   `json:"quoted_value"`
	MatchScores    []float64 `json:"match_scores"`
	DaysUntilDue   *int      `json:"days_until_due"`
}

// Factors shows each adjustment applied to the base probability.
type Factors struct {
	PriceRatio        *float64 `json:"price_ratio,omitempty"`
	PriceAdjustment   float64  `json:"price_adjustment"`
	AverageMatch      *float64 `json:"average_match,omitempty"`
	MatchAdjustment   float64  `json:"match_adjustment"`
	UrgencyAdjustment float64  `json:"urgency_adjustment"`
}

type Result struct {
	WinProbability float64 `json:"win_probability"`
	Recommendation string  `json:"recommendation"`
	Factors        Factors `json:"factors"`
}

// Decide is deterministic: the same input always yields the same result.
func Decide(in Input) Result {
	var f Factors

	if in.EstimatedValue > 0 {
		ratio := in.QuotedValue / in.EstimatedValue
		f.PriceRatio = &ratio
		f.PriceAdjustment = priceAdjustment(ratio)
	}

	if len(in.MatchScores) > 0 {
		var sum float64
		for _, s := range in.MatchScores {
			sum += s
		}
		avg := sum / float64(len(in.MatchScores))
		f.AverageMatch = &avg
		f.MatchAdjustment = matchAdjustment(avg)
	}

	if in.DaysUntilDue != nil {
		f.UrgencyAdjustment = urgencyAdjustment(*in.DaysUntilDue)
	}

	wp := baseProbability + f.PriceAdjustment + f.MatchAdjustment + f.UrgencyAdjustment
	wp = max(0, min(100, wp))

	rec := NoBid
	if wp > 50 && in.QuotedValue > 0 {
		rec = Bid
	}

	return Result{WinProbability: wp, Recommendation: rec, Factors: f}
}

func priceAdjustment(ratio float64) float64 {
	switch {
	case ratio >= 0.85 && ratio <= 1.05:
		return 20
	case ratio > 1.05 && ratio <= 1.15:
		return 10
	case ratio < 0.85:
		return 5
	default:
		return -10
	}
}

func matchAdjustment(avg float64) float64 {
	switch {
	case avg >= 90:
		return 15
	case avg >= 80:
		return 10
	case avg >= 70:
		return 5
	default:
		return -5
	}
}

func urgencyAdjustment(days int) float64 {
	switch {
	case days < 30:
		return 10
	case days > 60:
		return -5
	}
	return 0
}
