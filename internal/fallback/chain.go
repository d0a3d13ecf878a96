// Package fallback runs an ordered list of loaders and keeps the first one that
// produces a result.
package fallback

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoResult is returned by a loader that ran fine but found nothing usable.
var ErrNoResult = errors.New("no result")

// Loader produces a value or an error. Returning ErrNoResult moves on silently.
type Loader[T any] struct {
	Name string
	Load func() (T, error)
}

// First runs loaders in order and returns the first success along with the name
// of the loader that produced it. The final loader is expected to be a built-in
// default that cannot fail.
func First[T any](logger *zap.Logger, loaders ...Loader[T]) (T, string, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var errs []error
	for _, l := range loaders {
		v, err := l.Load()
		if err == nil {
			logger.Debug("loader succeeded", zap.String("loader", l.Name))
			return v, l.Name, nil
		}
		if !errors.Is(err, ErrNoResult) {
			logger.Warn("loader failed, trying next", zap.String("loader", l.Name), zap.Error(err))
		}
		errs = append(errs, fmt.Errorf("%s: %w", l.Name, err))
	}

	return zero, "", errors.Join(errs...)
}

// Static wraps a constant value as a loader that always succeeds.
func Static[T any](name string, v T) Loader[T] {
	return Loader[T]{Name: name, Load: func() (T, error) { return v, nil }}
}
