package tender

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseDeadline(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{raw: "2026-04-01T10:00:00Z", want: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)},
		{raw: "2026-04-01T10:00:00+05:30", want: time.Date(2026, 4, 1, 4, 30, 0, 0, time.UTC)},
		{raw: "2026-04-01T10:00:00", want: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)},
		{raw: "2026-04-01", want: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := ParseDeadline(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.True(t, tc.want.Equal(got), "%s: expected %s, got %s", tc.raw, tc.want, got)
	}

	_, err := ParseDeadline("next tuesday")
	require.Error(t, err)
}

func TestDaysUntilDue(t *testing.T) {
	tn := &Tender{Deadline: now.Add(45 * 24 * time.Hour).Format(time.RFC3339)}
	days := tn.DaysUntilDue(now)
	require.NotNil(t, days)
	assert.Equal(t, 45, *days)

	past := &Tender{Deadline: now.Add(-12 * time.Hour).Format(time.RFC3339)}
	require.NotNil(t, past.DaysUntilDue(now))
	assert.Equal(t, -1, *past.DaysUntilDue(now))

	assert.Nil(t, (&Tender{}).DaysUntilDue(now))
	assert.Nil(t, (&Tender{Deadline: "soon"}).DaysUntilDue(now))
}

func TestTendersExcludePreservesOrder(t *testing.T) {
	list := NewTenders(&Tender{ID: "a"}, &Tender{ID: "b"}, &Tender{ID: "c"}, &Tender{ID: "d"})

	dropped := list.Exclude([]string{"c", "a", "missing"})

	assert.Equal(t, []string{"a", "c"}, dropped)
	assert.Equal(t, []string{"b", "d"}, list.IDs())
	assert.Nil(t, list.FindByID("a"))
	assert.NotNil(t, list.FindByID("d"))
}

func TestTendersCloneIsIndependent(t *testing.T) {
	list := NewTenders(&Tender{ID: "a"}, &Tender{ID: "b"})
	clone := list.Clone()

	clone.Exclude([]string{"a"})

	assert.Equal(t, 2, list.Len())
	assert.Equal(t, 1, clone.Len())
}

func TestSummarizeExtractsRequirements(t *testing.T) {
	tn := &Tender{
		ID:             "T-1",
		Title:          "Supply of 11kV XLPE armoured 3-core aluminium cable",
		Description:    "Length 25 km. Routine tests and partial discharge test as per IEC and IS 7098.",
		Organization:   "State Electricity Board",
		EstimatedValue: 60_000_000,
		Deadline:       now.Add(20 * 24 * time.Hour).Format(time.RFC3339),
	}

	summary := Summarize(tn, now)

	reqs := summary.ProductRequirements
	assert.Equal(t, "XLPE", reqs.CableType)
	assert.Equal(t, "11kv", reqs.Voltage)
	assert.Equal(t, 25.0, reqs.LengthKM)
	assert.Equal(t, "Aluminum", reqs.ConductorMaterial)
	assert.Equal(t, "XLPE", reqs.InsulationType)
	assert.Equal(t, "Armored", reqs.Armoring)
	assert.Equal(t, "3-core", reqs.Cores)
	assert.Equal(t, []string{"IS 7098", "IEC 60502"}, reqs.Standards)

	require.NotNil(t, summary.DaysUntilDue)
	assert.Equal(t, 20, *summary.DaysUntilDue)

	assert.Contains(t, summary.TestRequirements, "Routine tests as per applicable standards")
	assert.Contains(t, summary.TestRequirements, "Partial discharge test")
	assert.Equal(t, "Tests as per IS 7098", summary.TestRequirements[len(summary.TestRequirements)-1])

	require.Len(t, summary.ScopeOfSupply, 1)
	item := summary.ScopeOfSupply[0]
	assert.Equal(t, 1, item.ItemNo)
	assert.Equal(t, 25.0, item.Quantity)
	assert.Equal(t, "km", item.Unit)
	assert.Equal(t, tn.Title, item.Description)
}

func TestSummarizeDefaultsAndHints(t *testing.T) {
	length := 10.0
	tn := &Tender{
		ID:           "T-2",
		Title:        "Cable procurement",
		VoltageClass: "33 kV",
		LengthKM:     &length,
	}

	summary := Summarize(tn, now)

	assert.Equal(t, "33 kV", summary.VoltageClass)
	assert.Equal(t, "General", summary.CableType)
	assert.Equal(t, "Copper", summary.ProductRequirements.ConductorMaterial)
	assert.Equal(t, "Unarmored", summary.ProductRequirements.Armoring)
	assert.Equal(t, []string{DefaultStandard}, summary.ProductRequirements.Standards)
	assert.Equal(t, "Not specified", summary.Deadline)
	assert.Equal(t, "Unknown", summary.Organization)
	assert.Nil(t, summary.DaysUntilDue)
	assert.Equal(t, 10.0, summary.ScopeOfSupply[0].Quantity)
}

func TestSummarizeKeepsExplicitScope(t *testing.T) {
	tn := &Tender{
		ID:    "T-3",
		Title: "Two lot cable tender",
		Scope: []ScopeItem{
			{ItemNo: 1, Description: "11 kV feeder", Voltage: "11 kV", Quantity: 4},
			{ItemNo: 2, Description: "LV control", Voltage: "440V", CableType: "PVC", Quantity: 2, Unit: "km"},
		},
	}

	summary := Summarize(tn, now)

	require.Len(t, summary.ScopeOfSupply, 2)
	assert.Equal(t, "km", summary.ScopeOfSupply[0].Unit)
	assert.Equal(t, "PVC", summary.ScopeOfSupply[1].CableType)
	assert.Equal(t, "Item 1: 11 kV feeder - 4 km\nItem 2: LV control - 2 km", ScopeSummary(summary.ScopeOfSupply))
	assert.Equal(t, "No items in scope", ScopeSummary(nil))
}

func TestExtractLengthInMeters(t *testing.T) {
	assert.Equal(t, 0.5, ExtractLength("supply 500 meters of cable"))
	assert.Equal(t, 0.0, ExtractLength("no length given"))
	assert.Equal(t, 0.25, ExtractLength("250.0 meters armoured"))
}

func TestExtractLengthKeepsDecimals(t *testing.T) {
	assert.Equal(t, 10.5, ExtractLength("supply of 10.5 km 11kV cable"))
	assert.Equal(t, 7.0, ExtractLength("7 km"))
}

func TestExtractStandardsIgnoresEmbeddedWords(t *testing.T) {
	assert.Equal(t, []string{DefaultStandard}, ExtractStandards("this 5 jobs listing"))
	assert.Equal(t, []string{"BS 6622"}, ExtractStandards("as per bs 6622"))
}
