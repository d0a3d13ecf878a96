package qualifier

import (
	"math"
	"strings"

	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/tender"
)

const (
	croreTen  = 100_000_000
	croreFive = 50_000_000
)

// Scorer computes qualification, priority and combined scores. For a fixed
// tender, policy and clock it is a pure function.
type Scorer struct {
	policy     *policy.Policy
	experience []string
	supported  map[string]struct{}
}

func NewScorer(p *policy.Policy, exp *policy.Experience) *Scorer {
	if p == nil {
		p = policy.Default()
	}
	supported := make(map[string]struct{}, len(p.Capabilities.VoltageClasses))
	for _, v := range p.Capabilities.VoltageClasses {
		supported[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	var names []string
	for _, n := range exp.Names() {
		names = append(names, strings.ToLower(n))
	}

	return &Scorer{policy: p, experience: names, supported: supported}
}

// Score returns every score for t as of now.
func (s *Scorer) Score(t *tender.Tender, days *int) *tender.Scores {
	b := tender.Breakdown{
		Deadline:   deadlineScore(days),
		Coverage:   s.coverageScore(t.VoltageClass),
		Experience: s.experienceScore(t.Organization),
		Value:      valueScore(t.EstimatedValue),
	}

	w := s.policy.Qualification.Weights
	total := w.Sum()
	if total == 0 {
		total = 1
	}
	raw := (w.Deadline*b.Deadline + w.ProductCoverage*b.Coverage + w.PastExperience*b.Experience + w.EstimatedValue*b.Value) / total

	qualification := round(raw, 3)
	priority := s.Priority(t, days)

	return &tender.Scores{
		Qualification: qualification,
		Breakdown:     b,
		Qualified:     raw >= s.policy.Qualification.MinScore,
		Priority:      priority,
		Combined:      math.Min(priority*0.6+qualification*0.4, 1.0),
	}
}

// deadlineScore prefers tenders due in 8 to 60 days. Unknown deadlines score 0.5.
func deadlineScore(days *int) float64 {
	if days == nil {
		return 0.5
	}
	switch d := *days; {
	case d <= 7:
		return 0.4
	case d <= 30:
		return 1.0
	case d <= 60:
		return 0.8
	case d <= 90:
		return 0.5
	default:
		return 0.2
	}
}

func (s *Scorer) coverageScore(voltage string) float64 {
	v := strings.ToLower(strings.TrimSpace(voltage))
	if v == "" {
		return 1.0
	}
	if _, ok := s.supported[v]; ok {
		return 1.0
	}
	return 0.5
}

func (s *Scorer) experienceScore(org string) float64 {
	org = strings.ToLower(org)
	for _, known := range s.experience {
		if strings.Contains(org, known) {
			return 1.0
		}
	}
	return 0.6
}

func valueScore(v float64) float64 {
	switch {
	case v >= croreTen:
		return 1.0
	case v >= croreFive:
		return 0.85
	case v > 0:
		return 0.7
	default:
		return 0.5
	}
}

// Priority is a ranking heuristic in [0,1]; it never affects qualification.
func (s *Scorer) Priority(t *tender.Tender, days *int) float64 {
	p := 0.5

	switch {
	case t.EstimatedValue > croreTen:
		p += 0.20
	case t.EstimatedValue > croreFive:
		p += 0.10
	}

	org := strings.ToLower(t.Organization)
	for _, kw := range s.policy.Priority.PrestigeKeywords {
		if kw != "" && strings.Contains(org, strings.ToLower(kw)) {
			p += s.policy.Priority.PrestigeBonus
			break
		}
	}

	if days != nil {
		switch {
		case *days < 30:
			p += 0.10
		case *days < 60:
			p += 0.05
		}
	}

	return math.Min(p, 1.0)
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.RoundToEven(v*pow) / pow
}
