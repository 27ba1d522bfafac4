package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("debug", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug("story optimized", zap.String("story_id", "s1"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "story optimized", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "s1", entry["story_id"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("warn", FormatConsole, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("", "", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_Invalid(t *testing.T) {
	_, err := NewWithWriter("loud", FormatJSON, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = NewWithWriter("info", "xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestNewObserved(t *testing.T) {
	logger, logs := NewObserved(zapcore.WarnLevel)

	logger.Info("ignored")
	logger.Warn("story optimization failed", zap.String("code", "timeout"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "story optimization failed", entry.Message)
	assert.Equal(t, "timeout", entry.ContextMap()["code"])
}
