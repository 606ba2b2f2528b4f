package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "canvasd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Canvas.Width)
	assert.Equal(t, 550, cfg.Canvas.Height)
	assert.Equal(t, "#f0f0f0", cfg.Canvas.Background)
	assert.Equal(t, "blue", cfg.Canvas.BrushColor)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, int64(1024*1024), cfg.MaxBodyBytes())
	assert.Equal(t, cfg.MaxImagePixels, cfg.Editor(nil).MaxImagePixels)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9999"
canvas:
  width: 640
  brush_color: "#00ff00"
session_idle_timeout: 5m
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, 640, cfg.Canvas.Width)
	assert.Equal(t, 550, cfg.Canvas.Height)
	assert.Equal(t, "#00ff00", cfg.Canvas.BrushColor)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)

	ed := cfg.Editor(nil)
	assert.Equal(t, 640, ed.Width)
	assert.Equal(t, "#00ff00", ed.BrushColor)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Canvas.Width)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CANVASD_LISTEN", "127.0.0.1:7000")
	t.Setenv("CANVASD_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "listen: [oops"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no listen", func(c *Config) { c.Listen = "" }},
		{"zero width", func(c *Config) { c.Canvas.Width = 0 }},
		{"bad background", func(c *Config) { c.Canvas.Background = "nope" }},
		{"bad brush", func(c *Config) { c.Canvas.BrushColor = "#12" }},
		{"no upload", func(c *Config) { c.MaxUploadMB = 0 }},
		{"no pixel limit", func(c *Config) { c.MaxImagePixels = 0 }},
		{"no body limit", func(c *Config) { c.MaxBodyKB = 0 }},
		{"negative idle", func(c *Config) { c.SessionIdleTimeout = -time.Second }},
		{"no shutdown", func(c *Config) { c.ShutdownTimeout = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}
