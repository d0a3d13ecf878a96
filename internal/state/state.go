// Package state persists the rotation record (last selected tenders) and the
// append-only selection audit trail.
package state

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Store is consulted and updated by the qualifier. Callers treat every failure as
// non-fatal.
type Store interface {
	LastSelected(ctx context.Context) ([]string, error)
	SetLastSelected(ctx context.Context, ids []string) error
	AppendAudit(ctx context.Context, rec AuditRecord) error
}

// AuditRecord is one selection with all derived fields.
type AuditRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	TenderID           string    `json:"tender_id"`
	Title              string    `json:"title"`
	Organization       string    `json:"organization"`
	EstimatedValue     float64   `json:"estimated_value"`
	Deadline           string    `json:"deadline"`
	DaysUntilDue       *int      `json:"days_until_due"`
	PriorityScore      float64   `json:"priority_score"`
	QualificationScore float64   `json:"qualification_score"`
	CombinedScore      float64   `json:"combined_score"`
	CableType          string    `json:"cable_type"`
	Voltage            string    `json:"voltage"`
	LengthKM           float64   `json:"length_km"`
	Cores              string    `json:"cores"`
	Armoring           string    `json:"armoring"`
	ConductorMaterial  string    `json:"conductor_material"`
	InsulationType     string    `json:"insulation_type"`
	Standards          []string  `json:"standards"`
}

// AuditHeader is the column order of the audit CSV and table.
var AuditHeader = []string{
	"timestamp", "tender_id", "title", "organization", "estimated_value", "deadline",
	"days_until_due", "priority_score", "qualification_score", "combined_score",
	"cable_type", "voltage", "length_km", "cores", "armoring", "conductor_material",
	"insulation_type", "standards",
}

// Row renders the record in AuditHeader order.
func (r AuditRecord) Row() []string {
	days := ""
	if r.DaysUntilDue != nil {
		days = strconv.Itoa(*r.DaysUntilDue)
	}
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.TenderID,
		r.Title,
		r.Organization,
		formatFloat(r.EstimatedValue),
		r.Deadline,
		days,
		formatFloat(r.PriorityScore),
		formatFloat(r.QualificationScore),
		formatFloat(r.CombinedScore),
		r.CableType,
		r.Voltage,
		formatFloat(r.LengthKM),
		r.Cores,
		r.Armoring,
		r.ConductorMaterial,
		r.InsulationType,
		strings.Join(r.Standards, "; "),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
