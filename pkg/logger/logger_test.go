package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, v := range tests {
		assert.Equal(t, v.expected, logger.ParseLevel(v.input), v.input)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(config.LogConfig{Format: "json", Level: "debug"}, &buf)
	l.Debug("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestNewTextDefault(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(config.LogConfig{Format: "weird", Level: "info"}, &buf)
	l.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
