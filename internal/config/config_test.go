package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasEditor/internal/editor"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8888", cfg.Server.Addr)
	assert.Equal(t, 50, cfg.Canvas.HistoryDepth)
	assert.Equal(t, 100*time.Millisecond, cfg.ResizeDelay())
	assert.Equal(t, time.Second/30, cfg.FrameInterval())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Canvas, cfg.Canvas)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[canvas]
width = 1024
height = 768
color = "#ff0000"
tool = "circle"
stroke_width = 12

[input]
resize_debounce = "250ms"

[server]
addr = "127.0.0.1:9000"
advertise = false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	opts := cfg.EditorOptions()
	assert.Equal(t, 1024, opts.Width)
	assert.Equal(t, editor.ToolCircle, opts.Tool)
	assert.Equal(t, "#ff0000", opts.Color)
	assert.Equal(t, 12.0, opts.StrokeWidth)
	assert.Equal(t, "#ffffff", opts.Background)
	assert.Equal(t, 250*time.Millisecond, cfg.ResizeDelay())
	assert.False(t, cfg.Server.Advertise)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[canvas]\ntool = \"spray\"\ncolor = \"blue\"\n"), 0600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canvas.tool")
	assert.Contains(t, err.Error(), "canvas.color")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CANVAS_EDITOR_ADDR", ":7000")
	dir := t.TempDir()
	t.Setenv("CANVAS_EDITOR_DATA", dir)
	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, filepath.Join(dir, "canvas.db"), cfg.DatabasePath())
}

func TestHistoryDepthBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Canvas.HistoryDepth = 200
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canvas.history_depth")

	cfg.Canvas.HistoryDepth = 0
	assert.Error(t, cfg.Validate())

	cfg.Canvas.HistoryDepth = editor.DefaultHistoryDepth
	assert.NoError(t, cfg.Validate())
}
