package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/signalkit/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		require.NotNil(t, log)
		log.Info("hello")
		var entry map[string]any
		err := json.Unmarshal(buf.Bytes(), &entry)
		require.NoError(t, err)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithFormat(logger.FormatText),
		)
		log.Info("hello")
		out := buf.String()
		assert.Contains(t, out, "level=INFO")
		assert.Contains(t, out, "msg=hello")
	})

	t.Run("format name is case insensitive", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithFormat("TEXT"),
		)
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("includes static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithAttr(logger.Component("hub")),
		)
		log.Info("msg")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hub", entry["component"])
	})

	t.Run("level filters records", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithLevel(slog.LevelWarn),
		)
		log.Info("dropped")
		assert.Empty(t, buf.String())
		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestWithLevelName(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		enabled slog.Level
		blocked slog.Level
	}{
		{name: "debug", level: "debug", enabled: slog.LevelDebug, blocked: slog.LevelDebug - 4},
		{name: "upper case warn", level: "WARN", enabled: slog.LevelWarn, blocked: slog.LevelInfo},
		{name: "error", level: "error", enabled: slog.LevelError, blocked: slog.LevelWarn},
		{name: "unknown keeps info", level: "verbose", enabled: slog.LevelInfo, blocked: slog.LevelDebug},
		{name: "empty keeps info", level: "", enabled: slog.LevelInfo, blocked: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.New(logger.WithOutput(&bytes.Buffer{}), logger.WithLevelName(tt.level))
			assert.True(t, log.Enabled(t.Context(), tt.enabled))
			assert.False(t, log.Enabled(t.Context(), tt.blocked))
		})
	}
}

func TestWithEnvironment(t *testing.T) {
	t.Run("development uses text at debug", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment("dev", "signalkit"),
			logger.WithOutput(buf),
		)
		log.Debug("msg")
		out := buf.String()
		assert.Contains(t, out, "DEBUG")
		assert.Contains(t, out, "service=signalkit")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production uses json at info", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment("prod", "signalkit"),
			logger.WithOutput(buf),
		)
		log.Debug("hidden")
		assert.Empty(t, buf.String())

		log.Info("msg")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "production", entry["env"])
		assert.Equal(t, "signalkit", entry["service"])
	})

	t.Run("staging", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment(logger.Staging, ""), logger.WithOutput(buf))
		log.Info("msg")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "staging", entry["env"])
		assert.NotContains(t, entry, "service")
	})
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
	log.Error("nothing happens")

	assert.Same(t, log, logger.OrDiscard(log))
	assert.NotNil(t, logger.OrDiscard(nil))
}

func TestWithFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
