package configwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, level, format string) {
	t.Helper()
	body := "logging:\n  level: " + level + "\n  format: " + format + "\n  output: stdout\n" +
		"output:\n  width: 1920\n  height: 1080\n  pixel_format: rgba8888\n  target_hz: 60\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadInitialCachesLoggingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "DEBUG", "text")

	w, err := New(path)
	require.NoError(t, err)
	defer w.fsw.Close()

	require.NoError(t, w.LoadInitial())
	assert.Equal(t, "DEBUG", w.Current().Level)
	assert.Equal(t, 1, w.Version())
}

func TestStartAppliesReloadedLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "INFO", "text")

	w, err := New(path)
	require.NoError(t, err)
	require.NoError(t, w.LoadInitial())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeConfig(t, path, "DEBUG", "text")

	require.Eventually(t, func() bool {
		return w.Current().Level == "DEBUG"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, w.Version())
}

func TestStopSafeAfterStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "INFO", "text")

	w, err := New(path)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
}
