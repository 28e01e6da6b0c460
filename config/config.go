// Package config loads the viewer configuration and holds the live control
// panel state.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Assets   AssetsConfig   `toml:"assets" yaml:"assets"`
	Panel    PanelState     `toml:"panel" yaml:"panel"`
	LogLevel string         `toml:"log_level" yaml:"log_level"`
	Snapshot SnapshotConfig `toml:"snapshot" yaml:"snapshot"`
	Publish  PublishConfig  `toml:"publish" yaml:"publish"`
}

type WindowConfig struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

// AssetsConfig names the files bound to the texture slots. An empty path
// leaves the slot unset.
type AssetsConfig struct {
	BRDFLUT     string `toml:"brdf_lut" yaml:"brdf_lut"`
	DiffuseEnv  string `toml:"diffuse_env" yaml:"diffuse_env"`
	SpecularEnv string `toml:"specular_env" yaml:"specular_env"`
	// Mesh optionally replaces the spheres with an .obj, .gltf or .glb model.
	Mesh string `toml:"mesh" yaml:"mesh"`
}

// SnapshotConfig drives the headless renderer. Scale > 1 supersamples.
type SnapshotConfig struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Scale  int    `toml:"scale" yaml:"scale"`
	Out    string `toml:"out" yaml:"out"`
}

// PublishConfig is used when snapshots are uploaded to S3. An empty bucket
// disables publishing.
type PublishConfig struct {
	Bucket string `toml:"bucket" yaml:"bucket"`
	Prefix string `toml:"prefix" yaml:"prefix"`
	Region string `toml:"region" yaml:"region"`
}

// Default returns the configuration the demo ships with.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "PBR Viewer",
			VSync:  true,
		},
		Assets: AssetsConfig{
			BRDFLUT:     "assets/ggx-brdf-integrated.png",
			DiffuseEnv:  "assets/env/Alexs_Apt_2k-diffuse-RGBM.png",
			SpecularEnv: "assets/env/Alexs_Apt_2k-specular-RGBM.png",
		},
		Panel:    DefaultPanel(),
		LogLevel: "info",
		Snapshot: SnapshotConfig{
			Width:  640,
			Height: 360,
			Scale:  1,
			Out:    "snapshot.png",
		},
		Publish: PublishConfig{
			Region: "us-east-1",
		},
	}
}

// Load reads a .toml, .yaml or .yml file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decode(path, data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %q: %w", path, err)
		}
	default:
		return fmt.Errorf("%q: %w", path, ErrUnknownFormat)
	}
	return nil
}

// Validate rejects sizes the renderer cannot use.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Snapshot.Width <= 0 || c.Snapshot.Height <= 0 {
		return fmt.Errorf("snapshot size %dx%d must be positive", c.Snapshot.Width, c.Snapshot.Height)
	}
	if c.Snapshot.Scale < 1 {
		return fmt.Errorf("snapshot scale %d must be at least 1", c.Snapshot.Scale)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug, info, warn or error onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// Resolve loads path, or the defaults when path is empty, applies a
// non-empty level override and builds the logger for the result.
func Resolve(path, level string) (Config, *slog.Logger, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, nil, err
		}
	}
	if level != "" {
		cfg.LogLevel = level
	}
	lvl, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, NewLogger(lvl), nil
}

// NewLogger builds the text logger every command uses.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
