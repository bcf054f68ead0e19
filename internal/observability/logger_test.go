package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggingConfig(t *testing.T) {
	cfg := DefaultLoggingConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddSource)
}

func TestNewLogger(t *testing.T) {
	t.Run("creates logger with default config", func(t *testing.T) {
		cfg := DefaultLoggingConfig()
		logger := NewLogger(cfg)

		assert.NotEqual(t, zerolog.Logger{}, logger)
	})

	t.Run("creates logger with console format", func(t *testing.T) {
		cfg := LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		}
		logger := NewLogger(cfg)

		assert.NotEqual(t, zerolog.Logger{}, logger)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"WARN", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level))
		})
	}
}

func TestWithBatchContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger = WithBatchContext(logger, "batch-123", 7)
	logger.Info().Msg("batch started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "batch-123", entry["batch_id"])
	assert.Equal(t, float64(7), entry["citations"])
}

func TestWithCitationContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger = WithCitationContext(logger, 3)
	logger.Info().Msg("citation processed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(3), entry["line_number"])
}

func TestWithRegistryContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger = WithRegistryContext(logger, "crossref", "10.1000/x")
	logger.Info().Msg("lookup")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "crossref", entry["registry"])
	assert.Equal(t, "10.1000/x", entry["identifier"])
}
