package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config in a TOML friendly shape. Pointer fields
// distinguish "unset" from a zero value.
type FileConfig struct {
	Width       int                     `toml:"width"`
	Height      int                     `toml:"height"`
	Title       string                  `toml:"title"`
	FPS         int                     `toml:"fps"`
	Assets      string                  `toml:"assets"`
	Movement    string                  `toml:"movement"`
	BallSpeed   float64                 `toml:"ball_speed"`
	WinScore    *int                    `toml:"win_score"`
	Autopilot   []string                `toml:"autopilot"`
	WatchAssets *bool                   `toml:"watch_assets"`
	Debug       *bool                   `toml:"debug"`
	LogLevel    string                  `toml:"log_level"`
	Keys        map[string]fileBindings `toml:"keys"`
}

type fileBindings struct {
	Up   string `toml:"up"`
	Down string `toml:"down"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.pong/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pong", "config.toml")
	}
	return ""
}

// FileExists reports whether a file exists at p.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ApplyFileConfig copies the set values of fc into cfg, skipping any flag
// named in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("width", fc.Width, &cfg.Window.Width)
	s.setInt("height", fc.Height, &cfg.Window.Height)
	s.setString("title", fc.Title, &cfg.Window.Title)
	s.setInt("fps", fc.FPS, &cfg.Window.FPS)
	s.setString("assets", fc.Assets, &cfg.AssetsDir)
	s.setString("movement", fc.Movement, &cfg.Movement)
	s.setFloat("ball-speed", fc.BallSpeed, &cfg.BallSpeed)
	s.setIntPtr("win-score", fc.WinScore, &cfg.WinScore)
	s.setStrings("autopilot", fc.Autopilot, &cfg.Autopilot)
	s.setBool("watch-assets", fc.WatchAssets, &cfg.WatchAssets)
	s.setBool("debug", fc.Debug, &cfg.Debug)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	cfg.Keys = maps.Clone(cfg.Keys)
	if cfg.Keys == nil {
		cfg.Keys = make(map[string]Bindings)
	}
	for player, b := range fc.Keys {
		if err := s.setKeys(player, b.Up, b.Down, cfg.Keys); err != nil {
			return err
		}
	}
	return nil
}
