package tender

import (
	"fmt"
	"strings"
	"time"
)

const defaultUnit = "km"

// ScopeItem is one billable line of supply. ItemNo joins scope, match results and
// priced lines across stages.
type ScopeItem struct {
	ItemNo      int     `json:"item_no"`
	Description string  `json:"description"`
	CableType   string  `json:"cable_type,omitempty"`
	Voltage     string  `json:"voltage,omitempty"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
}

// ProductRequirements are the tender-level specification attributes.
type ProductRequirements struct {
	CableType         string   `json:"cable_type,omitempty"`
	Voltage           string   `json:"voltage,omitempty"`
	LengthKM          float64  `json:"length_km,omitempty"`
	ConductorMaterial string   `json:"conductor_material,omitempty"`
	InsulationType    string   `json:"insulation_type,omitempty"`
	Armoring          string   `json:"armoring,omitempty"`
	Cores             string   `json:"cores,omitempty"`
	Standards         []string `json:"standards,omitempty"`
}

// RFPSummary is built once per run from the selected tender and is read-only downstream.
type RFPSummary struct {
	TenderID            string              `json:"tender_id"`
	Title               string              `json:"title"`
	Organization        string              `json:"organization"`
	Location            string              `json:"location"`
	EstimatedValue      float64             `json:"estimated_value"`
	Deadline            string              `json:"deadline"`
	DaysUntilDue        *int                `json:"days_until_due"`
	CableType           string              `json:"cable_type"`
	VoltageClass        string              `json:"voltage_class"`
	ProductRequirements ProductRequirements `json:"product_requirements"`
	TestRequirements    []string            `json:"test_requirements"`
	ScopeOfSupply       []ScopeItem         `json:"scope_of_supply"`
}

// Summarize derives the RFP summary of a selected tender by pattern extraction.
func Summarize(t *Tender, now time.Time) *RFPSummary {
	text := t.Text()

	voltage := strings.TrimSpace(t.VoltageClass)
	if voltage == "" {
		voltage = ExtractVoltage(text)
	}

	cableType := strings.TrimSpace(t.CableType)
	if cableType == "" {
		cableType = ExtractCableType(text)
	}

	length := ExtractLength(text)
	if t.LengthKM != nil {
		length = *t.LengthKM
	}

	reqs := ProductRequirements{
		CableType:         cableType,
		Voltage:           voltage,
		LengthKM:          length,
		ConductorMaterial: ExtractConductorMaterial(text),
		InsulationType:    ExtractInsulationType(text),
		Armoring:          ExtractArmoring(text),
		Cores:             ExtractCores(text),
		Standards:         ExtractStandards(text),
	}

	deadline := t.Deadline
	if strings.TrimSpace(deadline) == "" {
		deadline = "Not specified"
	}

	organization := t.Organization
	if organization == "" {
		organization = "Unknown"
	}
	location := t.Location
	if location == "" {
		location = "Unknown"
	}

	return &RFPSummary{
		TenderID:            t.ID,
		Title:               t.Title,
		Organization:        organization,
		Location:            location,
		EstimatedValue:      t.EstimatedValue,
		Deadline:            deadline,
		DaysUntilDue:        t.DaysUntilDue(now),
		CableType:           cableType,
		VoltageClass:        voltage,
		ProductRequirements: reqs,
		TestRequirements:    ExtractTestRequirements(text),
		ScopeOfSupply:       scopeOf(t, reqs),
	}
}

func scopeOf(t *Tender, reqs ProductRequirements) []ScopeItem {
	if len(t.Scope) > 0 {
		items := make([]ScopeItem, len(t.Scope))
		copy(items, t.Scope)
		for i := range items {
			if items[i].Unit == "" {
				items[i].Unit = defaultUnit
			}
		}
		return items
	}

	quantity := reqs.LengthKM
	if quantity <= 0 {
		quantity = 1
	}

	description := t.Title
	if strings.TrimSpace(description) == "" {
		description = "Cable supply"
	}

	return []ScopeItem{{
		ItemNo:      1,
		Description: description,
		CableType:   reqs.CableType,
		Voltage:     reqs.Voltage,
		Quantity:    quantity,
		Unit:        defaultUnit,
	}}
}

// ScopeSummary renders one line per scope item.
func ScopeSummary(items []ScopeItem) string {
	if len(items) == 0 {
		return "No items in scope"
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("Item %d: %s - %g %s", item.ItemNo, item.Description, item.Quantity, item.Unit))
	}
	return strings.Join(lines, "\n")
}
