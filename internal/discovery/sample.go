package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/spigell/tender-bid/internal/tender"
)

var (
	sampleBuyers = []string{
		"Power Grid Corporation of India",
		"NTPC Limited",
		"Maharashtra State Electricity Distribution",
		"Indian Railways (IREPS)",
		"Delhi Metro Rail Corporation",
		"Tamil Nadu Generation and Distribution",
	}
	sampleVoltages = []string{"11 kV", "22 kV", "33 kV", "440V", "66 kV"}
	sampleTypes    = []string{"XLPE", "PVC"}
	sampleNotes    = []string{
		"Routine tests and type test reports required.",
		"Partial discharge test and insulation resistance test at site.",
		"Conductor resistance and high voltage withstand tests as per IS 7098.",
		"Armoured aluminium conductor cable as per IEC 60502.",
		"Acceptance tests witnessed by the purchaser.",
	}
)

// Sample generates plausible cable tenders. The same seed and clock always
// produce the same pool.
type Sample struct {
	Count int
	Seed  int64
	Now   func() time.Time
}

func NewSample(count int, seed int64, now func() time.Time) *Sample {
	if now == nil {
		now = time.Now
	}
	return &Sample{Count: count, Seed: seed, Now: now}
}

func (s *Sample) Discover(_ context.Context) (*tender.Tenders, error) {
	return tender.NewTenders(s.Generate()...), nil
}

func (s *Sample) Generate() []*tender.Tender {
	f := gofakeit.New(s.Seed)
	now := s.Now()

	items := make([]*tender.Tender, 0, s.Count)
	for i := 0; i < s.Count; i++ {
		voltage := f.RandomString(sampleVoltages)
		cableType := f.RandomString(sampleTypes)
		length := float64(f.IntRange(1, 60))
		due := now.Add(time.Duration(f.IntRange(-10, 120)) * 24 * time.Hour)

		items = append(items, &tender.Tender{
			ID:     fmt.Sprintf("SAMPLE-%s-%03d", now.Format("20060102"), i+1),
			Source: KindSample,
			Title:  fmt.Sprintf("Supply of %s %s power cable, %g km", voltage, cableType, length),
			Description: fmt.Sprintf("%s %s Delivery to %s.",
				f.RandomString(sampleNotes), f.HipsterSentence(6), f.City()),
			Organization:   f.RandomString(sampleBuyers),
			Location:       f.City(),
			EstimatedValue: float64(f.IntRange(20, 1500)) * 100_000,
			Deadline:       due.Format(time.RFC3339),
			VoltageClass:   voltage,
			CableType:      cableType,
			LengthKM:       &length,
			DocumentURL:    f.URL(),
		})
	}
	return items
}
