package qualifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/state"
	"github.com/spigell/tender-bid/internal/tender"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func inDays(d int) string {
	return fixedNow.Add(time.Duration(d) * 24 * time.Hour).Format(time.RFC3339)
}

var experience = &policy.Experience{Organizations: []policy.Organization{{Name: "Kerala State Electricity Board"}, {Name: ""}}}

func newQualifier(store state.Store, log *zap.Logger) *Qualifier {
	return New(policy.Default(), experience, store, Options{Now: clock}, log)
}

func strongTender(id string) *tender.Tender {
	return &tender.Tender{
		ID:             id,
		Title:          "Supply of 11kV XLPE armoured cable, 12 km",
		Organization:   "Kerala State Electricity Board",
		EstimatedValue: 200_000_000,
		Deadline:       inDays(20),
		VoltageClass:   "11 KV",
	}
}

func TestScoreStrongTender(t *testing.T) {
	q := newQualifier(nil, nil)
	s := q.Qualify(strongTender("T1"))

	assert.Equal(t, tender.Breakdown{Deadline: 1, Coverage: 1, Experience: 1, Value: 1}, s.Breakdown)
	assert.InDelta(t, 1.0, s.Qualification, 1e-9)
	assert.True(t, s.Qualified)
	assert.InDelta(t, 0.85, s.Priority, 1e-9)
	assert.InDelta(t, 0.91, s.Combined, 1e-9)
}

func TestScoreIsIdempotent(t *testing.T) {
	q := newQualifier(nil, nil)
	tr := strongTender("T1")
	tr.EstimatedValue = 75_000_000

	first := q.Qualify(tr)
	second := q.Qualify(tr)
	assert.Equal(t, first, second)
}

func TestScoreWeakTender(t *testing.T) {
	q := newQualifier(nil, nil)
	s := q.Qualify(&tender.Tender{
		ID:           "weak",
		Organization: "Unknown Mining Co",
		Deadline:     inDays(80),
		VoltageClass: "66 kV",
	})

	assert.Equal(t, tender.Breakdown{Deadline: 0.5, Coverage: 0.5, Experience: 0.6, Value: 0.5}, s.Breakdown)
	assert.InDelta(t, 0.525, s.Qualification, 1e-9)
	assert.False(t, s.Qualified)
	assert.InDelta(t, 0.5, s.Priority, 1e-9)
}

func TestDeadlineScoreBrackets(t *testing.T) {
	cases := []struct {
		days *int
		want float64
	}{
		{nil, 0.5},
		{intPtr(3), 0.4},
		{intPtr(7), 0.4},
		{intPtr(8), 1.0},
		{intPtr(30), 1.0},
		{intPtr(45), 0.8},
		{intPtr(90), 0.5},
		{intPtr(120), 0.2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, deadlineScore(c.days))
	}
}

func TestPriorityPrestigeCountsOnce(t *testing.T) {
	s := NewScorer(policy.Default(), nil)
	p := s.Priority(&tender.Tender{Organization: "Power Grid Corporation"}, intPtr(45))
	assert.InDelta(t, 0.6, p, 1e-9)
}

func TestProcessEmptyInputs(t *testing.T) {
	q := newQualifier(state.NewMemory(), nil)

	res := q.Process(context.Background(), tender.NewTenders())
	assert.Equal(t, StatusNoTenders, res.Status)
	assert.Nil(t, res.Selected)

	res = q.Process(context.Background(), nil)
	assert.Equal(t, StatusNoTenders, res.Status)

	late := strongTender("late")
	late.Deadline = inDays(120)
	res = q.Process(context.Background(), tender.NewTenders(late))
	assert.Equal(t, StatusNoTenders, res.Status)
	assert.Equal(t, "No RFPs due in next 3 months", res.Message)

	res = q.Process(context.Background(), tender.NewTenders(&tender.Tender{
		ID: "weak", Organization: "Unknown", Deadline: inDays(80), VoltageClass: "66 kV",
	}))
	assert.Equal(t, StatusNoQualified, res.Status)
	assert.Nil(t, res.Selected)
}

func TestProcessRotation(t *testing.T) {
	t1 := strongTender("T1")
	t2 := strongTender("T2")
	t2.EstimatedValue = 60_000_000

	fresh := newQualifier(state.NewMemory(), nil)
	res := fresh.Process(context.Background(), tender.NewTenders(t1, t2))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "T1", res.Selected.TenderID, "T1 ranks first without rotation")

	store := state.NewMemory("T1")
	q := newQualifier(store, nil)

	res = q.Process(context.Background(), tender.NewTenders(strongTender("T1"), t2))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "T2", res.Selected.TenderID)

	require.NoError(t, store.SetLastSelected(context.Background(), []string{"T1"}))
	res = q.Process(context.Background(), tender.NewTenders(strongTender("T1")))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "T1", res.Selected.TenderID)
}

func TestProcessPersistsSelection(t *testing.T) {
	store := state.NewMemory("OLD-1", "OLD-2")
	q := newQualifier(store, nil)

	res := q.Process(context.Background(), tender.NewTenders(strongTender("T1")))
	require.Equal(t, StatusSuccess, res.Status)

	ids, _ := store.LastSelected(context.Background())
	assert.Equal(t, []string{"T1"}, ids)

	audit := store.Audit()
	require.Len(t, audit, 1)
	assert.Equal(t, "T1", audit[0].TenderID)
	assert.Equal(t, fixedNow, audit[0].Timestamp)
	assert.InDelta(t, 0.91, audit[0].CombinedScore, 1e-9)
	assert.Equal(t, "Armored", audit[0].Armoring)
	require.NotNil(t, audit[0].DaysUntilDue)
	assert.Equal(t, 20, *audit[0].DaysUntilDue)

	assert.Equal(t, 1, res.Stats.Total)
	assert.Equal(t, 1, res.Stats.Qualified)
	assert.Len(t, res.Stats.Ranked, 1)
}

func TestProcessTieKeepsInputOrder(t *testing.T) {
	q := newQualifier(state.NewMemory(), nil)
	res := q.Process(context.Background(), tender.NewTenders(strongTender("A"), strongTender("B")))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "A", res.Selected.TenderID)
}

func TestProcessIgnoreRotationOption(t *testing.T) {
	q := New(policy.Default(), experience, state.NewMemory("T1"), Options{Now: clock, IgnoreRotation: true}, nil)
	t2 := strongTender("T2")
	t2.EstimatedValue = 60_000_000

	res := q.Process(context.Background(), tender.NewTenders(strongTender("T1"), t2))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "T1", res.Selected.TenderID)
}

type failingStore struct{}

func (failingStore) LastSelected(context.Context) ([]string, error) { return nil, errors.New("read") }
func (failingStore) SetLastSelected(context.Context, []string) error { return errors.New("write") }
func (failingStore) AppendAudit(context.Context, state.AuditRecord) error {
	return errors.New("audit")
}

func TestProcessSurvivesStoreFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	q := newQualifier(failingStore{}, zap.New(core))

	res := q.Process(context.Background(), tender.NewTenders(strongTender("T1")))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "T1", res.Selected.TenderID)
	assert.Equal(t, 1, logs.FilterMessage("saving rotation state failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("appending selection audit failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("reading rotation state failed, rotation skipped").Len())
}

func intPtr(v int) *int { return &v }
