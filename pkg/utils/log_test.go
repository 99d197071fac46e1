package utils

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogHandler(t *testing.T) {
	t.Run("text_handler_filters_by_level", func(t *testing.T) {
		out := new(bytes.Buffer)
		logger := slog.New(newLogHandler(out, HandlerTypeText, LogLevelWarn))
		logger.Info("Dropped message.")
		logger.Warn("Kept message.", "size", 3)
		assert.NotContains(t, out.String(), "Dropped message.")
		assert.Contains(t, out.String(), "msg=\"Kept message.\" size=3")
	})

	t.Run("json_handler", func(t *testing.T) {
		out := new(bytes.Buffer)
		logger := slog.New(newLogHandler(out, HandlerTypeJSON, LogLevelDebug))
		logger.Debug("Debug message.", "op", "insert_at")
		assert.Contains(t, out.String(), `"msg":"Debug message."`)
		assert.Contains(t, out.String(), `"op":"insert_at"`)
	})

	t.Run("unknown_level_defaults_to_info", func(t *testing.T) {
		invariantsMetric.Reset()
		handler := newLogHandler(new(bytes.Buffer), HandlerTypeText, "verbose")
		assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
		assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
		assert.Equal(t, 1, GetMetricValue("log" /*module*/, "unsupported_log_level" /*invariantType*/))
	})
}
