package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "json", "info")
	log.Debug("hidden")
	log.Info("employee created", "employee_id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"employee created"`)
	assert.Contains(t, out, `"employee_id":"abc"`)
}

func TestPrettyHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("component", "upload").WithGroup("req")
	log.Warn("release failed", "error", errors.New("boom"), slog.Group("file", "ref", "uploads/a.png"))

	out := buf.String()
	require.Contains(t, out, "release failed")
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "req.error")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "req.file.ref")
	assert.Contains(t, out, "uploads/a.png")
}

func TestPrettyHandlerDefaultLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))
	log.Debug("not shown")
	assert.Empty(t, buf.String())
}
