package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/state"
	"github.com/spigell/tender-bid/internal/tender"
)

// RotationName is the name of the rotation step.
const RotationName = "rotation"

type rotationFilter struct {
	store    state.Store
	logger   *zap.Logger
	disabled bool
	reason   string
	excluded []string
}

// NewRotation drops previously selected tenders unless that would leave none.
func NewRotation(store state.Store, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rotationFilter{store: store, logger: logger}
}

func (f *rotationFilter) Name() string { return RotationName }

func (f *rotationFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *rotationFilter) IsEnabled() bool { return !f.disabled }

func (f *rotationFilter) Validate() error { return nil }

func (f *rotationFilter) Apply(ctx context.Context, v *tender.Tenders) (*tender.Tenders, Step, error) {
	initial := v.Len()
	f.excluded = nil
	unchanged := Step{Initial: initial, Dropped: 0, Left: initial}

	if f.store == nil {
		return v, unchanged, nil
	}

	previous, err := f.store.LastSelected(ctx)
	if err != nil {
		f.logger.Warn("reading rotation state failed, rotation skipped", zap.Error(err))
		return v, unchanged, nil
	}
	if len(previous) == 0 {
		return v, unchanged, nil
	}

	rotated := v.Clone()
	removed := rotated.Exclude(previous)
	if len(removed) == 0 {
		return v, unchanged, nil
	}

	if rotated.Len() == 0 {
		f.logger.Info("rotation ignored, it would exclude every candidate",
			zap.Strings("previously_selected", previous),
		)
		return v, unchanged, nil
	}

	f.excluded = removed
	f.logger.Info("excluding previously selected tenders",
		zap.Strings("excluded_tenders", removed),
		zap.Int("tenders_left", rotated.Len()),
	)

	return rotated, Step{Initial: initial, Dropped: len(removed), Left: rotated.Len()}, nil
}

func (f *rotationFilter) Status() Status {
	details := map[string]string{}
	if len(f.excluded) > 0 {
		details["excluded"] = strings.Join(f.excluded, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
