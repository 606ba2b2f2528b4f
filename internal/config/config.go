// Package config loads the canvasd YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/deluxecanvas/internal/canvas"
	"github.com/ha1tch/deluxecanvas/internal/editor"
)

// Config holds the full canvasd configuration.
type Config struct {
	Listen             string        `yaml:"listen"`
	Canvas             CanvasConfig  `yaml:"canvas"`
	MaxUploadMB        int           `yaml:"max_upload_mb"`
	MaxImagePixels     int           `yaml:"max_image_pixels"`
	MaxBodyKB          int           `yaml:"max_body_kb"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	LogLevel           string        `yaml:"log_level"`
}

// CanvasConfig sizes and colors every new session's surface.
type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
	BrushColor string `yaml:"brush_color"`
}

// Default returns sane defaults.
func Default() *Config {
	ed := editor.DefaultConfig()
	return &Config{
		Listen: ":8080",
		Canvas: CanvasConfig{
			Width:      ed.Width,
			Height:     ed.Height,
			Background: ed.Background,
			BrushColor: ed.BrushColor,
		},
		MaxUploadMB:        10,
		MaxImagePixels:     ed.MaxImagePixels,
		MaxBodyKB:          1024,
		SessionIdleTimeout: 30 * time.Minute,
		ShutdownTimeout:    10 * time.Second,
		LogLevel:           "info",
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CANVASD_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CANVASD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be > 0, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if _, err := canvas.ParseColor(c.Canvas.Background); err != nil {
		return fmt.Errorf("canvas.background: %w", err)
	}
	if _, err := canvas.ParseColor(c.Canvas.BrushColor); err != nil {
		return fmt.Errorf("canvas.brush_color: %w", err)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be > 0")
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("max_image_pixels must be > 0")
	}
	if c.MaxBodyKB <= 0 {
		return fmt.Errorf("max_body_kb must be > 0")
	}
	if c.SessionIdleTimeout < 0 {
		return fmt.Errorf("session_idle_timeout must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be > 0")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) * 1024 * 1024 }

// MaxBodyBytes returns the limit for JSON request bodies in bytes.
func (c *Config) MaxBodyBytes() int64 { return int64(c.MaxBodyKB) * 1024 }

// Editor returns the editor settings for a new session.
func (c *Config) Editor(logger *slog.Logger) editor.Config {
	return editor.Config{
		Width:          c.Canvas.Width,
		Height:         c.Canvas.Height,
		Background:     c.Canvas.Background,
		BrushColor:     c.Canvas.BrushColor,
		MaxImagePixels: c.MaxImagePixels,
		Logger:         logger,
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q (use debug, info, warn or error)", s)
}
