package tender

import (
	"strings"
	"time"
)

// Tender is a procurement opportunity handed over by a discovery collaborator.
// Only the qualifier writes to it, and only to attach Scores.
type Tender struct {
	ID             string      `json:"tender_id"`
	Source         string      `json:"source,omitempty"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Organization   string      `json:"organization,omitempty"`
	Location       string      `json:"location,omitempty"`
	EstimatedValue float64     `json:"estimated_value,omitempty"`
	Deadline       string      `json:"deadline,omitempty"`
	VoltageClass   string      `json:"voltage_class,omitempty"`
	CableType      string      `json:"cable_type,omitempty"`
	LengthKM       *float64    `json:"length_km,omitempty"`
	Scope          []ScopeItem `json:"scope_of_supply,omitempty"`
	DocumentURL    string      `json:"document_url,omitempty"`

	Scores *Scores `json:"scores,omitempty"`
}

// Scores are attached by the qualifier.
type Scores struct {
	Qualification float64   `json:"qualification"`
	Breakdown     Breakdown `json:"breakdown"`
	Qualified     bool      `json:"qualified"`
	Priority      float64   `json:"priority"`
	Combined      float64   `json:"combined"`
}

// Breakdown holds the four qualification dimensions, each in [0,1].
type Breakdown struct {
	Deadline   float64 `json:"deadline"`
	Coverage   float64 `json:"coverage"`
	Experience float64 `json:"experience"`
	Value      float64 `json:"value"`
}

// Text returns the lowercased title and description used for pattern extraction.
func (t *Tender) Text() string {
	return strings.ToLower(strings.TrimSpace(t.Title + " " + t.Description))
}

// DeadlineAt parses the deadline. ok is false when the tender has none.
func (t *Tender) DeadlineAt() (deadline time.Time, ok bool, err error) {
	raw := strings.TrimSpace(t.Deadline)
	if raw == "" {
		return time.Time{}, false, nil
	}

	deadline, err = ParseDeadline(raw)
	if err != nil {
		return time.Time{}, true, err
	}
	return deadline, true, nil
}

// DaysUntilDue returns the whole days left before the deadline, or nil when the
// deadline is missing or unparsable.
func (t *Tender) DaysUntilDue(now time.Time) *int {
	deadline, ok, err := t.DeadlineAt()
	if !ok || err != nil {
		return nil
	}
	days := DaysBetween(now, deadline)
	return &days
}

// Tenders is an ordered candidate list. Order is significant: it breaks ties.
type Tenders struct {
	Items []*Tender
}

// NewTenders wraps the given records.
func NewTenders(items ...*Tender) *Tenders {
	return &Tenders{Items: items}
}

func (v *Tenders) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

func (v *Tenders) FindByID(id string) *Tender {
	for _, t := range v.Items {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (v *Tenders) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, t := range v.Items {
		ids = append(ids, t.ID)
	}
	return ids
}

// Keep drops every tender for which keep returns false, preserving order.
// It returns the ids of the dropped tenders.
func (v *Tenders) Keep(keep func(*Tender) bool) []string {
	var dropped []string
	kept := v.Items[:0]
	for _, t := range v.Items {
		if keep(t) {
			kept = append(kept, t)
			continue
		}
		dropped = append(dropped, t.ID)
	}
	v.Items = kept
	return dropped
}

// Exclude removes tenders whose id is in targets, preserving order.
func (v *Tenders) Exclude(targets []string) []string {
	set := make(map[string]struct{}, len(targets))
	for _, id := range targets {
		set[id] = struct{}{}
	}
	return v.Keep(func(t *Tender) bool {
		_, found := set[t.ID]
		return !found
	})
}

// Clone returns a shallow copy of the list so filters can drop items without
// touching the caller's slice.
func (v *Tenders) Clone() *Tenders {
	if v == nil {
		return &Tenders{}
	}
	items := make([]*Tender, len(v.Items))
	copy(items, v.Items)
	return &Tenders{Items: items}
}
