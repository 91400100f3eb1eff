package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[canvas]
width = 640
line_width = 4.5
line_cap = "square"
color = "#ff8800"
mirror = true
mode = "Rainbow"

[share]
port = 7777
advertise = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Canvas.Width)
	assert.Equal(t, Default().Canvas.Height, cfg.Canvas.Height)
	assert.Equal(t, 4.5, cfg.Canvas.LineWidth)
	assert.Equal(t, "square", cfg.Canvas.LineCap)
	assert.Equal(t, "#ff8800", cfg.Canvas.Color)
	assert.True(t, cfg.Canvas.Mirror)
	assert.Equal(t, "Rainbow", cfg.Canvas.Mode)
	assert.Equal(t, "myImage.png", cfg.Canvas.SaveFileName)
	assert.Equal(t, 7777, cfg.Share.Port)
	assert.False(t, cfg.Share.Advertise)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"zero width", "[canvas]\nwidth = 0", ErrInvalid},
		{"negative line width", "[canvas]\nline_width = -2", ErrInvalid},
		{"bad cap", "[canvas]\nline_cap = \"butt\"", ErrInvalid},
		{"bad color", "[canvas]\ncolor = \"#12345\"", ErrInvalid},
		{"bad mode", "[canvas]\nmode = \"sparkle\"", ErrInvalid},
		{"bad port", "[share]\nport = 70000", ErrInvalid},
		{"bad level", "log_level = \"loud\"", ErrInvalid},
		{"unknown key", "[canvas]\nbrush = 3", ErrUnknownKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadSyntaxError(t *testing.T) {
	_, err := Load(writeConfig(t, "[canvas\nwidth ="))
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.toml")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", p)
}

func TestLoadDefaultWithoutConfigDir(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("AppData", "")

	cfg, path, err := LoadDefault()
	if err == nil {
		t.Skip("platform config dir does not depend on HOME")
	}
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}
