// Package config loads user defaults for the board from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"FreehandBoard/internal/engine"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "FREEHAND_CONFIG"

var (
	ErrInvalid    = errors.New("config: invalid value")
	ErrUnknownKey = errors.New("config: unknown key")
)

type Canvas struct {
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	LineWidth    float64 `toml:"line_width"`
	LineCap      string  `toml:"line_cap"`
	Color        string  `toml:"color"`
	Mode         string  `toml:"mode"`
	Mirror       bool    `toml:"mirror"`
	SaveFileName string  `toml:"save_file_name"`
}

type Share struct {
	Port      int  `toml:"port"`
	Advertise bool `toml:"advertise"`
}

type Config struct {
	LogLevel string `toml:"log_level"`
	Canvas   Canvas `toml:"canvas"`
	Share    Share  `toml:"share"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Canvas: Canvas{
			Width:        1000,
			Height:       700,
			LineWidth:    1,
			LineCap:      "round",
			Color:        "#000000",
			Mode:         "solid",
			SaveFileName: "myImage.png",
		},
		Share: Share{
			Port:      9000,
			Advertise: true,
		},
	}
}

// Path returns $FREEHAND_CONFIG, or config.toml under the user config dir.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "freehand", "config.toml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDefault loads from Path(). When no config location can be found it
// returns the defaults together with the error, which callers may treat as a
// warning.
func LoadDefault() (Config, string, error) {
	path, err := Path()
	if err != nil {
		return Default(), "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0:
		return invalid("canvas.width", c.Canvas.Width)
	case c.Canvas.Height <= 0:
		return invalid("canvas.height", c.Canvas.Height)
	case c.Canvas.LineWidth <= 0:
		return invalid("canvas.line_width", c.Canvas.LineWidth)
	case c.Share.Port < 0 || c.Share.Port > 65535:
		return invalid("share.port", c.Share.Port)
	case strings.TrimSpace(c.Canvas.SaveFileName) == "":
		return invalid("canvas.save_file_name", c.Canvas.SaveFileName)
	}
	switch strings.ToLower(c.Canvas.LineCap) {
	case "round", "square":
	default:
		return invalid("canvas.line_cap", c.Canvas.LineCap)
	}
	if _, err := engine.ParseColorMode(c.Canvas.Mode); err != nil {
		return invalid("canvas.mode", c.Canvas.Mode)
	}
	if !validHex(c.Canvas.Color) {
		return invalid("canvas.color", c.Canvas.Color)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps log_level onto slog.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, invalid("log_level", c.LogLevel)
	}
	return lvl, nil
}

func validHex(s string) bool {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	return strings.Trim(strings.ToLower(hex), "0123456789abcdef") == ""
}

func invalid(key string, v any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalid, key, v)
}
