package log

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationPredict)
	testLogger.Warn("warning message", MinVarianceKey, 0.01)
	testLogger.Error("error message", fmt.Errorf("boom"), ErrorCodeKey, ErrorShapeMismatch)

	require.NotEmpty(t, buffer.String())
	assert.True(t, testLogger.ContainsMessage("debug message"))
	assert.True(t, testLogger.ContainsMessage("error message"))
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "boom"))
	assert.True(t, testLogger.ContainsField(ErrorCodeKey, ErrorShapeMismatch))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "ExtraTreesRegressor",
		CriterionKey, "squared_error",
	)
	contextLogger.Info("contextual message", TreesKey, 3)

	assert.True(t, testLogger.ContainsField(ModelNameKey, "ExtraTreesRegressor"))
	assert.True(t, testLogger.ContainsField(CriterionKey, "squared_error"))
	assert.True(t, testLogger.ContainsField(TreesKey, 3.0))
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)
	ctx := context.Background()

	assert.False(t, testLogger.Enabled(ctx, LevelDebug))
	assert.False(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelWarn))

	testLogger.Info("dropped")
	testLogger.Warn("kept")
	assert.False(t, testLogger.ContainsMessage("dropped"))
	assert.True(t, testLogger.ContainsMessage("kept"))
}

func TestTestLoggerConcurrent(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	child := testLogger.With(ComponentKey, "ensemble")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child.Info("evaluated", IterationKey, i)
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 16)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.With(ModelNameKey, "RandomForestRegressor").Info("predicted", SamplesKey, 10)
	logger.Error("std failed", errors.NewIncompatibleCriterionError("PredictWithStd", "poisson"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"model.name":"RandomForestRegressor"`)
	assert.Contains(t, out, `"data.samples":10`)
	assert.Contains(t, out, `"criterion":"poisson"`)
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestProvider(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer func() {
		SetOutput(&bytes.Buffer{})
		SetLevel(LevelWarn)
	}()

	GetLoggerWithName("optimize").Debug("evaluated")
	assert.Contains(t, buf.String(), `"ml.component":"optimize"`)

	errors.Warn(errors.NewVarianceFloorWarning(2, 0.1))
	assert.Contains(t, buf.String(), "variance floor")
}

func TestSetupLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, "debug"))
	defer slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	slog.Error("predict failed", ErrAttr(errors.NewShapeMismatchError("Predict", 3, 2, 1)))

	out := buf.String()
	assert.Contains(t, out, `"severity":"ERROR"`)
	assert.Contains(t, out, `"message":"predict failed"`)
	assert.True(t, strings.Contains(out, "shape mismatch"))

	assert.Error(t, SetupLoggerTo(&buf, "verbose"))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": LevelDebug, "info": LevelInfo, "warn": LevelWarn, "error": LevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEqual(t, "UNKNOWN", got.String())
	}
}
