package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("canvas:\n  width: 1000\n  height: 700\nlayout:\n  steps: 50\n"), 0644))

	opts, cfg, err := parseConfig([]string{
		"-config", path,
		"-mode", "stats",
		"-height", "500",
		"-drag-threshold", "20ms",
		"-debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "stats", opts.Mode)
	assert.Equal(t, 1000.0, cfg.Canvas.Width)
	assert.Equal(t, 500.0, cfg.Canvas.Height)
	assert.Equal(t, 50, cfg.Layout.Steps)
	assert.Equal(t, 20*time.Millisecond, cfg.Interaction.DragThreshold.Duration())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, cfg.Stats.HistogramBuckets, opts.Buckets)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	_, _, err := parseConfig([]string{"-config", path, "-layout", "spiral"})
	assert.Error(t, err)
}

func TestLoadStoreFailsOnMalformedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes":["a"],"edges":[["a","b"]]}`), 0644))

	_, cfg, err := parseConfig([]string{"-config", writeEmptyConfig(t), "-data", path})
	require.NoError(t, err)

	_, err = loadStore(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestRenderModeWritesOutput(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "g.yaml")
	require.NoError(t, os.WriteFile(data, []byte("nodes: [a, b]\nedges: [[a, b]]\nnodeDegrees: {a: 1, b: 1}\n"), 0644))
	out := filepath.Join(dir, "g.dot")

	opts, cfg, err := parseConfig([]string{
		"-config", writeEmptyConfig(t),
		"-mode", "dot",
		"-data", data,
		"-output", out,
		"-iterations", "10",
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, run(ctx, opts, cfg, zaptest.NewLogger(t)))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"a" -- "b";`)
}

func writeEmptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
	return path
}
