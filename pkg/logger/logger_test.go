package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Errorf(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLoggerWithWriter(&buf, slog.LevelInfo)

	log.Errorf(errors.New("boom"), "failed to post order %d", 42)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "failed to post order 42", rec["msg"])
	assert.Equal(t, "boom", rec["error"])
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLoggerWithWriter(&buf, slog.LevelWarn)

	log.Debugf("hidden")
	log.Infof("hidden")
	assert.Zero(t, buf.Len())

	log.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLoggerWithWriter(&buf, slog.LevelInfo).With("request_id", "abc")

	log.Infof("hello")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
