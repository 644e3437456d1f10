package logging_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	captured := logging.NewTestLogger(t)
	original := *logging.Default()
	logging.SetDefault(*captured.Logger)
	t.Cleanup(func() { logging.SetDefault(original) })

	logging.Info().Str("supplier", "ls").Msg("loaded staging rows")
	logging.Warn().Msg("supplier unavailable")

	captured.AssertContains(t, "loaded staging rows")
	captured.AssertContains(t, `"supplier":"ls"`)
	assert.Equal(t, 2, captured.Count())
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	ctx = logging.WithRun(ctx, "run-1")
	ctx = logging.WithSupplier(ctx, "alloy")
	ctx = logging.WithIdentity(ctx, "P1")
	ctx = logging.WithOperation(ctx, "sync")
	ctx = logging.WithTable(ctx, "alloy_products")

	logging.FromContext(ctx).Info().Msg("merged")

	assert.True(t, testLogger.ContainsAll(
		`"run_id":"run-1"`,
		`"supplier":"alloy"`,
		`"identity":"P1"`,
		`"operation":"sync"`,
		`"table":"alloy_products"`,
		"merged",
	))
	assert.Equal(t, "run-1", logging.RunID(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Empty(t, logging.RunID(context.Background()))
}

func TestWithField(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	ctx = logging.WithField(ctx, "rows", 3)
	ctx = logging.WithField(ctx, "truncate", true)
	ctx = logging.WithField(ctx, "error", errors.New("boom"))

	logging.FromContext(ctx).Info().Msg("import finished")

	testLogger.AssertContains(t, `"rows":3`)
	testLogger.AssertContains(t, `"truncate":true`)
	testLogger.AssertContains(t, `"error":"boom"`)
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("file output with level filter", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "supplymap.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
			Fields: map[string]any{"service": "supplymap"},
		})

		logger.Info().Msg("hidden")
		logger.Warn().Msg("visible")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), "visible")
		assert.Contains(t, string(data), `"service":"supplymap"`)
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "loud", Output: "discard"})
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("warning alias", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "warning", Output: "discard"})
		assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	})
}

func TestNewWritesToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(buf)
	logger.Error().Msg("store failed")
	assert.Contains(t, buf.String(), "store failed")
}

func TestDisableLoggingForTest(t *testing.T) {
	logging.DisableLoggingForTest(t)
	assert.Equal(t, zerolog.Disabled, logging.Default().GetLevel())
}
