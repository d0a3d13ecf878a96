// Package policy holds the client policy that drives qualification, matching
// thresholds and overheads. It is loaded once and shared read-only across runs.
package policy

// Policy mirrors config/client_policy.json.
type Policy struct {
	Qualification    Qualification    `mapstructure:"qualification" json:"qualification"`
	Capabilities     Capabilities     `mapstructure:"capabilities" json:"capabilities"`
	Priority         Priority         `mapstructure:"priority" json:"priority"`
	Overheads        Overheads        `mapstructure:"overheads" json:"overheads"`
	DynamicOverheads DynamicOverheads `mapstructure:"dynamic_overheads" json:"dynamic_overheads"`
	Thresholds       Thresholds       `mapstructure:"thresholds" json:"thresholds"`
}

type Qualification struct {
	Weights  Weights `mapstructure:"weights" json:"weights"`
	MinScore float64 `mapstructure:"min_score" json:"min_score"`
}

// Weights of the four qualification dimensions. They are normalized by their sum.
type Weights struct {
	Deadline        float64 `mapstructure:"deadline" json:"deadline"`
	ProductCoverage float64 `mapstructure:"product_coverage" json:"product_coverage"`
	PastExperience  float64 `mapstructure:"past_experience" json:"past_experience"`
	EstimatedValue  float64 `mapstructure:"estimated_value" json:"estimated_value"`
}

func (w Weights) Sum() float64 {
	return w.Deadline + w.ProductCoverage + w.PastExperience + w.EstimatedValue
}

type Capabilities struct {
	VoltageClasses []string `mapstructure:"voltage_classes" json:"voltage_classes"`
}

// Priority lists organization keywords that earn the prestige bonus.
type Priority struct {
	PrestigeKeywords []string `mapstructure:"prestige_keywords" json:"prestige_keywords"`
	PrestigeBonus    float64  `mapstructure:"prestige_bonus" json:"prestige_bonus"`
}

// Overheads are fractions (0.05 == 5%).
type Overheads struct {
	TransportPct           float64 `mapstructure:"transport_pct" json:"transport_pct"`
	InstallationSupportPct float64 `mapstructure:"installation_support_pct" json:"installation_support_pct"`
	ContingencyPct         float64 `mapstructure:"contingency_pct" json:"contingency_pct"`
	ProfitMarginPct        float64 `mapstructure:"profit_margin_pct" json:"profit_margin_pct"`
	GSTPct                 float64 `mapstructure:"gst_pct" json:"gst_pct"`
}

type DynamicOverheads struct {
	LargeTenderMarginCap      float64  `mapstructure:"large_tender_margin_cap" json:"large_tender_margin_cap"`
	LargeTenderContingencyCap float64  `mapstructure:"large_tender_contingency_cap" json:"large_tender_contingency_cap"`
	MidTenderMarginCap        float64  `mapstructure:"mid_tender_margin_cap" json:"mid_tender_margin_cap"`
	ProfitMarginMin           float64  `mapstructure:"profit_margin_min" json:"profit_margin_min"`
	ProfitMarginMax           float64  `mapstructure:"profit_margin_max" json:"profit_margin_max"`
	ContingencyMin            float64  `mapstructure:"contingency_min" json:"contingency_min"`
	ContingencyMax            float64  `mapstructure:"contingency_max" json:"contingency_max"`
	StrategicAccounts         []string `mapstructure:"strategic_accounts" json:"strategic_accounts"`
	StrategicMarginDelta      float64  `mapstructure:"strategic_margin_delta" json:"strategic_margin_delta"`
	HighRatioSharpenThreshold float64  `mapstructure:"high_ratio_sharpen_threshold" json:"high_ratio_sharpen_threshold"`
	HighRatioMarginDelta      float64  `mapstructure:"high_ratio_margin_delta" json:"high_ratio_margin_delta"`
	TargetRatio               float64  `mapstructure:"target_competitiveness_ratio" json:"target_competitiveness_ratio"`
}

type Thresholds struct {
	MinMatchPercent float64 `mapstructure:"min_match_percent" json:"min_match_percent"`
}

// Default returns the built-in policy used when no policy file can be read.
func Default() *Policy {
	return &Policy{
		Qualification: Qualification{
			Weights: Weights{
				Deadline:        0.30,
				ProductCoverage: 0.30,
				PastExperience:  0.25,
				EstimatedValue:  0.15,
			},
			MinScore: 0.6,
		},
		Capabilities: Capabilities{
			VoltageClasses: []string{"11 kV", "22 kV", "33 kV", "440V"},
		},
		Priority: Priority{
			PrestigeKeywords: []string{"powergrid", "power grid", "ntpc", "electricity", "power", "grid"},
			PrestigeBonus:    0.05,
		},
		Overheads: Overheads{
			TransportPct:           0.05,
			InstallationSupportPct: 0.03,
			ContingencyPct:         0.02,
			ProfitMarginPct:        0.10,
			GSTPct:                 0.18,
		},
		DynamicOverheads: DynamicOverheads{
			LargeTenderMarginCap:      0.08,
			LargeTenderContingencyCap: 0.015,
			MidTenderMarginCap:        0.09,
			ProfitMarginMin:           0.04,
			ProfitMarginMax:           0.18,
			ContingencyMin:            0.0,
			ContingencyMax:            0.03,
			StrategicAccounts:         []string{"powergrid", "pgcil", "ntpc", "railway", "ireps"},
			StrategicMarginDelta:      -0.01,
			HighRatioSharpenThreshold: 1.2,
			HighRatioMarginDelta:      -0.02,
			TargetRatio:               1.10,
		},
		Thresholds: Thresholds{
			MinMatchPercent: 80,
		},
	}
}

// Experience lists organizations the manufacturer has supplied before.
type Experience struct {
	Organizations []Organization `mapstructure:"organizations" json:"organizations"`
}

type Organization struct {
	Name     string `mapstructure:"name" json:"name"`
	Projects int    `mapstructure:"projects" json:"projects,omitempty"`
}

// Names returns the non-empty organization names.
func (e *Experience) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Organizations))
	for _, org := range e.Organizations {
		if org.Name != "" {
			names = append(names, org.Name)
		}
	}
	return names
}
