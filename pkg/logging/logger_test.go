package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, &TextFormatter{DisableTimestamp: true})

	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger.SetLevel(DebugLevel)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
	assert.Equal(t, DebugLevel, logger.GetLevel())
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, &TextFormatter{DisableTimestamp: true})

	logger.Warn("something odd",
		String("session_id", "abc"),
		Int("attempt", 3),
		ErrorField(errors.New("boom")))

	line := buf.String()
	assert.Contains(t, line, "[WARN]")
	assert.Contains(t, line, "something odd")
	assert.Contains(t, line, "session_id=abc")
	assert.Contains(t, line, "attempt=3")
	assert.Contains(t, line, "error=boom")
}

func TestWithFieldsComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, &TextFormatter{DisableTimestamp: true})
	logger := base.WithFields(String("component", "sse"))

	logger.Info("session opened")
	assert.Contains(t, buf.String(), "sse: session opened")

	// Derived loggers do not mutate the parent.
	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "sse:")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewJSONFormatter())

	logger.Error("request failed",
		String("method", "tools/call"),
		ErrorField(errors.New("timeout")))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "request failed", record["message"])
	assert.Equal(t, "tools/call", record["method"])
	assert.Equal(t, "timeout", record["error"])
	assert.NotEmpty(t, record["time"])
}

func TestNopDiscards(t *testing.T) {
	// Must not panic or write anywhere observable.
	logger := Nop()
	logger.Info("into the void", Any("k", struct{ X int }{1}))
}
