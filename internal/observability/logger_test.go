package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	t.Run("json output carries the service name", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := DefaultLoggingConfig()
		cfg.Writer = &buf

		logger := NewLogger(cfg)
		logger.Info().Msg("started")

		entry := decodeLine(t, &buf)
		assert.Equal(t, ServiceName, entry["service"])
		assert.Equal(t, "started", entry["message"])
		assert.Contains(t, entry, "time")
	})

	t.Run("entries below the level are dropped", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LoggingConfig{Level: "warn", Writer: &buf})

		logger.Info().Msg("hidden")
		assert.Zero(t, buf.Len())

		logger.Warn().Msg("shown")
		assert.Equal(t, "warn", decodeLine(t, &buf)["level"])
	})

	t.Run("console format is not json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LoggingConfig{Level: "info", Format: "pretty", Writer: &buf})
		logger.Info().Msg("hello")

		assert.Contains(t, buf.String(), "hello")
		assert.False(t, json.Valid(buf.Bytes()))
	})

	t.Run("source location", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LoggingConfig{Level: "info", AddSource: true, Writer: &buf})
		logger.Info().Msg("x")

		assert.Contains(t, decodeLine(t, &buf), zerolog.CallerFieldName)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"Warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"fatal":   zerolog.FatalLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, parseLevel(input), "level %q", input)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(zerolog.New(&buf), "repository")
	logger.Info().Msg("ready")

	assert.Equal(t, "repository", decodeLine(t, &buf)["component"])
}

func TestWithRequestContext(t *testing.T) {
	t.Run("adds the request id", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithRequestID(context.Background(), "req-123")
		logger := WithRequestContext(ctx, zerolog.New(&buf))
		logger.Info().Msg("handled")

		assert.Equal(t, "req-123", decodeLine(t, &buf)["request_id"])
	})

	t.Run("no request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithRequestContext(context.Background(), zerolog.New(&buf))
		logger.Info().Msg("handled")

		assert.NotContains(t, decodeLine(t, &buf), "request_id")
	})
}
