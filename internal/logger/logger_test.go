package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerFormatsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	l := newSlog(&buf, SlogConfig{Level: "info", Format: "json"})

	l.Info("product created", "product_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "product created", entry["msg"])
	assert.EqualValues(t, 7, entry["product_id"])

	ts, ok := entry["time"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newSlog(&buf, SlogConfig{Level: "warn", Format: "text"})

	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("anything"))
}

func TestContextRoundTrip(t *testing.T) {
	fallback := Discard()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	reqLogger := Discard().With("request_id", "abc")
	ctx := IntoContext(context.Background(), reqLogger)
	assert.Same(t, reqLogger, FromContext(ctx, fallback))
}
