package fallback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFirstReturnsFirstSuccess(t *testing.T) {
	calls := 0
	v, name, err := First(nil,
		Loader[int]{Name: "csv", Load: func() (int, error) { calls++; return 0, ErrNoResult }},
		Loader[int]{Name: "json", Load: func() (int, error) { calls++; return 7, nil }},
		Loader[int]{Name: "never", Load: func() (int, error) { calls++; return 9, nil }},
	)

	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "json", name)
	assert.Equal(t, 2, calls)
}

func TestFirstLogsRealFailuresOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	v, name, err := First(logger,
		Loader[string]{Name: "missing", Load: func() (string, error) { return "", ErrNoResult }},
		Loader[string]{Name: "broken", Load: func() (string, error) { return "", errors.New("bad json") }},
		Static("builtin", "defaults"),
	)

	require.NoError(t, err)
	assert.Equal(t, "defaults", v)
	assert.Equal(t, "builtin", name)
	assert.Equal(t, 1, logs.FilterMessage("loader failed, trying next").Len())
}

func TestFirstAllFail(t *testing.T) {
	_, name, err := First(nil,
		Loader[int]{Name: "a", Load: func() (int, error) { return 0, ErrNoResult }},
		Loader[int]{Name: "b", Load: func() (int, error) { return 0, errors.New("boom") }},
	)

	require.Error(t, err)
	assert.Empty(t, name)
	assert.ErrorIs(t, err, ErrNoResult)
	assert.Contains(t, err.Error(), "b: boom")
}
