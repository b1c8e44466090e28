package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewJSONWritesStructuredEntry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: FormatJSON}, &buf)
	require.NoError(t, err)

	logger.Debug("received response", zap.Int("status", 204))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "received response", entry["message"])
	assert.Equal(t, float64(204), entry["status"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewFiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: FormatConsole}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsUnknownLevelAndFormat(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "parse log level")

	_, err = New(Config{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported log format")
}

func TestOrNopNeverReturnsNil(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, OrNop(nil))
}
