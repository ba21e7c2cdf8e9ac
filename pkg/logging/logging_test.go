package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentstation/vercheck/pkg/logging"
)

func TestConfigFromEnv(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_TIME_FORMAT", "LOG_CALLER", "DEBUG"} {
			t.Setenv(k, "")
			t.Setenv("VERCHECK_"+k, "")
		}
		cfg := logging.ConfigFromEnv()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
		assert.False(t, cfg.AddCaller)
	})

	t.Run("prefixed environment wins", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "info")
		t.Setenv("VERCHECK_LOG_LEVEL", "error")
		t.Setenv("VERCHECK_LOG_OUTPUT", "discard")
		cfg := logging.ConfigFromEnv()
		assert.Equal(t, "error", cfg.Level)
		assert.Equal(t, "discard", cfg.Output)

		logging.NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	})

	t.Run("DEBUG selects debug", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("VERCHECK_LOG_LEVEL", "")
		t.Setenv("DEBUG", "1")
		assert.Equal(t, "debug", logging.ConfigFromEnv().Level)
	})
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	t.Run("filters below level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.txt")
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "warn", Format: "json", Output: path})

		logger.Info().Msg("info message")
		logger.Warn().Msg("warn message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "info message")
		assert.Contains(t, string(content), "warn message")
	})

	t.Run("console format uses short level names", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.txt")
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Format: "console", Output: path, NoColor: true})
		logger.Info().Str("key", "value").Msg("console test")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "console test")
		assert.Contains(t, string(content), "INF")
	})

	t.Run("off disables output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.txt")
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "off", Format: "json", Output: path})
		logger.Error().Msg("hidden")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Empty(t, content)
	})
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithModule(ctx, "github.com/rs/zerolog")
	ctx = logging.WithComponent(ctx, "imports")

	logging.FromContext(ctx).Info().Msg("test message")

	testLogger.AssertContains(t, "github.com/rs/zerolog")
	testLogger.AssertContains(t, `"component":"imports"`)
	testLogger.AssertContains(t, "test message")
}

func TestWithSpan(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	assert.Equal(t, ctx, logging.WithSpan(ctx))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx = logging.WithSpan(trace.ContextWithSpanContext(ctx, sc))
	logging.FromContext(ctx).Info().Msg("traced")

	testLogger.AssertContains(t, `"trace_id":"01000000000000000000000000000000"`)
	testLogger.AssertContains(t, `"span_id":"0200000000000000"`)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.Ctx(context.Background()))
}

func TestNoiseFilter(t *testing.T) {
	t.Run("persistent rules", func(t *testing.T) {
		f := logging.NewNoiseFilter()
		require.NoError(t, f.Ignore(zerolog.WarnLevel, `(?i)deprecated`))

		tl := logging.NewTestLogger(t, f)
		tl.Warn().Msg("Package is DEPRECATED")
		tl.Info().Msg("deprecated but informational")
		tl.Warn().Msg("kept warning")

		tl.AssertNotContains(t, "DEPRECATED")
		tl.AssertContains(t, "deprecated but informational")
		tl.AssertContains(t, "kept warning")
	})

	t.Run("scoped rules are popped", func(t *testing.T) {
		f := logging.NewNoiseFilter()
		require.NoError(t, f.Ignore(zerolog.WarnLevel, `^always`))

		pop, err := f.Push(zerolog.WarnLevel, `^noisy`)
		require.NoError(t, err)
		assert.True(t, f.Suppressed(zerolog.WarnLevel, "noisy module"))

		persistent, scoped := f.Len()
		assert.Equal(t, 1, persistent)
		assert.Equal(t, 1, scoped)

		pop()
		pop() // idempotent

		assert.False(t, f.Suppressed(zerolog.WarnLevel, "noisy module"))
		assert.True(t, f.Suppressed(zerolog.WarnLevel, "always quiet"))
	})

	t.Run("repeated persistent rules are kept once", func(t *testing.T) {
		f := logging.NewNoiseFilter()
		require.NoError(t, f.Ignore(zerolog.WarnLevel, `^dup`, `^dup`))
		require.NoError(t, f.Ignore(zerolog.WarnLevel, `^dup`))
		require.NoError(t, f.Ignore(zerolog.ErrorLevel, `^dup`))

		persistent, _ := f.Len()
		assert.Equal(t, 2, persistent)
	})

	t.Run("nested pushes pop in order", func(t *testing.T) {
		f := logging.NewNoiseFilter()
		popOuter, err := f.Push(zerolog.WarnLevel, `outer`)
		require.NoError(t, err)
		popInner, err := f.Push(zerolog.WarnLevel, `inner`)
		require.NoError(t, err)

		popInner()
		assert.True(t, f.Suppressed(zerolog.WarnLevel, "outer"))
		assert.False(t, f.Suppressed(zerolog.WarnLevel, "inner"))
		popOuter()
		assert.False(t, f.Suppressed(zerolog.WarnLevel, "outer"))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		f := logging.NewNoiseFilter()
		assert.Error(t, f.Ignore(zerolog.WarnLevel, `(`))
		pop, err := f.Push(zerolog.WarnLevel, `(`)
		assert.Error(t, err)
		pop()
	})
}

func TestNewAttachesProcessNoiseFilter(t *testing.T) {
	t.Cleanup(logging.Noise().Reset)
	require.NoError(t, logging.Noise().Ignore(zerolog.ErrorLevel, `^filtered`))

	var buf bytes.Buffer
	logger := logging.New(&buf).Level(zerolog.TraceLevel)
	logger.Error().Msg("filtered event")
	logger.Error().Msg("visible event")

	assert.NotContains(t, buf.String(), "filtered event")
	assert.Contains(t, buf.String(), "visible event")
}
