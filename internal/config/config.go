// Package config loads the canvas editor configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"CanvasEditor/internal/editor"
)

// Config is the full application configuration.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Input   InputConfig   `toml:"input"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
}

type CanvasConfig struct {
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	Background   string  `toml:"background"`
	Color        string  `toml:"color"`
	StrokeWidth  float64 `toml:"stroke_width"`
	Tool         string  `toml:"tool"`
	HistoryDepth int     `toml:"history_depth"`
}

type InputConfig struct {
	// ResizeDebounce is a duration string such as "100ms".
	ResizeDebounce string `toml:"resize_debounce"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	Advertise bool   `toml:"advertise"`
	FrameRate int    `toml:"frame_rate"`
}

type StorageConfig struct {
	// Dir holds the local database. Empty disables persistence.
	Dir string `toml:"dir"`
}

func DefaultConfig() *Config {
	opts := editor.DefaultOptions()
	return &Config{
		Canvas: CanvasConfig{
			Width:        opts.Width,
			Height:       opts.Height,
			Background:   opts.Background,
			Color:        opts.Color,
			StrokeWidth:  opts.StrokeWidth,
			Tool:         opts.Tool.String(),
			HistoryDepth: opts.HistoryDepth,
		},
		Input: InputConfig{
			ResizeDebounce: "100ms",
		},
		Server: ServerConfig{
			Addr:      ":8888",
			Advertise: true,
			FrameRate: 30,
		},
		Storage: StorageConfig{
			Dir: DataDir(),
		},
	}
}

// DataDir returns the default data directory, honoring CANVAS_EDITOR_DATA.
func DataDir() string {
	if dir := os.Getenv("CANVAS_EDITOR_DATA"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "canvas-editor")
	}
	return ".canvas-editor"
}

// ConfigPath is where Load looks when given an empty path.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies CANVAS_EDITOR_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CANVAS_EDITOR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CANVAS_EDITOR_DATA"); v != "" {
		c.Storage.Dir = v
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if _, err := editor.ParseColor(c.Canvas.Background); err != nil {
		errs = append(errs, fmt.Errorf("canvas.background: %w", err))
	}
	if _, err := editor.ParseColor(c.Canvas.Color); err != nil {
		errs = append(errs, fmt.Errorf("canvas.color: %w", err))
	}
	if c.Canvas.StrokeWidth < editor.MinStrokeWidth || c.Canvas.StrokeWidth > editor.MaxStrokeWidth {
		errs = append(errs, fmt.Errorf("canvas.stroke_width %v outside [%d, %d]",
			c.Canvas.StrokeWidth, editor.MinStrokeWidth, editor.MaxStrokeWidth))
	}
	if _, err := editor.ParseTool(c.Canvas.Tool); err != nil {
		errs = append(errs, fmt.Errorf("canvas.tool: %w", err))
	}
	if c.Canvas.HistoryDepth < 1 || c.Canvas.HistoryDepth > editor.DefaultHistoryDepth {
		errs = append(errs, fmt.Errorf("canvas.history_depth %d outside [1, %d]",
			c.Canvas.HistoryDepth, editor.DefaultHistoryDepth))
	}
	if _, err := time.ParseDuration(c.Input.ResizeDebounce); err != nil {
		errs = append(errs, fmt.Errorf("input.resize_debounce: %w", err))
	}
	if c.Server.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("server.frame_rate %d must be positive", c.Server.FrameRate))
	}
	return errors.Join(errs...)
}

// EditorOptions converts the canvas section. Call after Validate.
func (c *Config) EditorOptions() editor.Options {
	tool, _ := editor.ParseTool(c.Canvas.Tool)
	return editor.Options{
		Width:        c.Canvas.Width,
		Height:       c.Canvas.Height,
		Background:   c.Canvas.Background,
		Color:        c.Canvas.Color,
		StrokeWidth:  c.Canvas.StrokeWidth,
		Tool:         tool,
		HistoryDepth: c.Canvas.HistoryDepth,
	}
}

// ResizeDelay returns the parsed debounce, falling back to 100ms.
func (c *Config) ResizeDelay() time.Duration {
	d, err := time.ParseDuration(c.Input.ResizeDebounce)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// FrameInterval is the delay between pushed frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Server.FrameRate)
}

// DatabasePath is the SQLite file, or "" when storage is disabled.
func (c *Config) DatabasePath() string {
	if c.Storage.Dir == "" {
		return ""
	}
	return filepath.Join(c.Storage.Dir, "canvas.db")
}
