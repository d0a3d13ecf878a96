package filtering

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/tender"
)

// DeadlineWindowName is the name of the deadline window step.
const DeadlineWindowName = "deadline_window"

type deadlineWindowFilter struct {
	window   time.Duration
	now      func() time.Time
	logger   *zap.Logger
	disabled bool
	reason   string
}

// NewDeadlineWindow keeps tenders due between now and now+window. Tenders with a
// missing or unparsable deadline are kept.
func NewDeadlineWindow(window time.Duration, now func() time.Time, logger *zap.Logger) Filter {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &deadlineWindowFilter{window: window, now: now, logger: logger}
}

func (f *deadlineWindowFilter) Name() string { return DeadlineWindowName }

func (f *deadlineWindowFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *deadlineWindowFilter) IsEnabled() bool { return !f.disabled }

func (f *deadlineWindowFilter) Validate() error {
	if f.window <= 0 {
		return fmt.Errorf("deadline window must be positive, got %s", f.window)
	}
	return nil
}

func (f *deadlineWindowFilter) Apply(_ context.Context, v *tender.Tenders) (*tender.Tenders, Step, error) {
	initial := v.Len()
	now := f.now()
	limit := now.Add(f.window)

	dropped := v.Keep(func(t *tender.Tender) bool {
		deadline, ok, err := t.DeadlineAt()
		if !ok {
			return true
		}
		if err != nil {
			f.logger.Warn("unparsable deadline, keeping tender",
				zap.String("tender_id", t.ID),
				zap.String("deadline", t.Deadline),
			)
			return true
		}
		return !deadline.Before(now) && !deadline.After(limit)
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding tenders outside the deadline window",
			zap.Strings("excluded_tenders", dropped),
			zap.Int("tenders_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *deadlineWindowFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"window_days": strconv.Itoa(int(f.window / (24 * time.Hour)))},
	}
}
