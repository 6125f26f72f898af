package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()

	reconfigure()

	return buf, func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Run("InfoLevelFiltersDebug", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		Debug("debug message")
		Info("info message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.Contains(t, out, "info message")
	})

	t.Run("ErrorLevelShowsOnlyErrors", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("SetLevelIgnoresInvalidValues", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("BOGUS")
		Debug("debug message")
		Info("info message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.Contains(t, out, "info message")
	})
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	Info("surface created", "surface_id", uint32(7), "width", uint32(640))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "surface created", entry["msg"])
	assert.Equal(t, float64(7), entry["surface_id"])
}

func TestFormatSwitchingIgnoresInvalid(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")
	SetFormat("xml")
	Info("still text")

	assert.Contains(t, buf.String(), "[INFO]")
}

func TestContextLogging(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")

	lc := &LogContext{TraceID: "abc123", ClientID: 42, SurfaceID: 7}
	ctx := WithContext(context.Background(), lc)
	InfoCtx(ctx, "commit applied")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "abc123", entry["trace_id"])
	assert.Equal(t, float64(42), entry["client_id"])
	assert.Equal(t, float64(7), entry["surface_id"])
}

func TestContextLoggingHandlesNilContext(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	require.NotPanics(t, func() {
		InfoCtx(nil, "no context")
	})
	assert.Contains(t, buf.String(), "no context")
}

func TestLogContextClone(t *testing.T) {
	lc := &LogContext{ClientID: 1, SurfaceID: 2}
	clone := lc.WithSurface(3)
	assert.Equal(t, uint32(2), lc.SurfaceID)
	assert.Equal(t, uint32(3), clone.SurfaceID)
	assert.Equal(t, uint32(1), clone.ClientID)
}

func TestLogContextCloneNil(t *testing.T) {
	var lc *LogContext
	assert.Nil(t, lc.Clone())
}

func TestErrHandlesNil(t *testing.T) {
	attr := Err(nil)
	assert.Equal(t, "", attr.Key)
}

func TestInitWithWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	InitWithWriter(buf, "DEBUG", "text", false)
	Debug("debug via writer")
	assert.Contains(t, buf.String(), "debug via writer")

	mu.Lock()
	output = os.Stdout
	mu.Unlock()
	reconfigure()
}

func TestInitWithConfig(t *testing.T) {
	err := Init(Config{Level: "DEBUG", Format: "text", Output: "stdout"})
	require.NoError(t, err)

	mu.Lock()
	output = os.Stdout
	mu.Unlock()
	reconfigure()
}

func TestMessageFormattingIncludesTimestampAndLevel(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	Info("test message")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "["))
	assert.Contains(t, out, "[INFO]")
}
