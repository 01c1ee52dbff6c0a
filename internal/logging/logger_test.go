package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/astronum/backend/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG":     slog.LevelDebug,
		" warning ": slog.LevelWarn,
		"warn":      slog.LevelWarn,
		"error":     slog.LevelError,
		"debug+2":   slog.LevelDebug + 2,
		"verbose":   slog.LevelInfo,
		"":          slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "component", "test")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, ServiceName, entry["service"])

	ts, ok := entry["time"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
}

func TestTextFormatIsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "logfmt"}, &buf)

	logger.Info("hello", "reading_id", "r-1")

	line := buf.String()
	assert.True(t, strings.Contains(line, "msg=hello"), line)
	assert.True(t, strings.Contains(line, "reading_id=r-1"), line)
	assert.True(t, strings.Contains(line, "service=astronum"), line)
}
