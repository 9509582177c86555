package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyfocus/internal/platform/config"
	"studyfocus/internal/platform/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("bogus"))
}

func TestJSONFormatWritesStructuredRecords(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.New(config.LogConfig{Level: "info", Format: "json"}, &buf)
	logger.With("component", "timer").Info("phase changed", "phase", "WORK")
	logger.Debug("dropped")

	record := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "phase changed", record["msg"])
	assert.Equal(t, "timer", record["component"])
	assert.Equal(t, "WORK", record["phase"])
}

func TestTextFormatHonoursLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.New(config.LogConfig{Level: "warn", Format: "text"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "step", "finish_session")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "finish_session")
}
