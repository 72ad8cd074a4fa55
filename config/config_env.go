package config

import (
	"fmt"
	"maps"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the PONG_* variables.
type envConfig struct {
	Width       int      `env:"PONG_WIDTH"`
	Height      int      `env:"PONG_HEIGHT"`
	Title       string   `env:"PONG_TITLE"`
	FPS         int      `env:"PONG_FPS"`
	Assets      string   `env:"PONG_ASSETS"`
	Movement    string   `env:"PONG_MOVEMENT"`
	BallSpeed   float64  `env:"PONG_BALL_SPEED"`
	WinScore    *int     `env:"PONG_WIN_SCORE"`
	Autopilot   []string `env:"PONG_AUTOPILOT" envSeparator:","`
	WatchAssets *bool    `env:"PONG_WATCH_ASSETS"`
	Debug       *bool    `env:"PONG_DEBUG"`
	LogLevel    string   `env:"PONG_LOG_LEVEL"`
	BlueUp      string   `env:"PONG_BLUE_UP"`
	BlueDown    string   `env:"PONG_BLUE_DOWN"`
	GreenUp     string   `env:"PONG_GREEN_UP"`
	GreenDown   string   `env:"PONG_GREEN_DOWN"`
}

// ApplyEnvConfig applies PONG_* variables from environ, or from the process
// environment when environ is nil. Flags named in changed are kept.
func ApplyEnvConfig(cfg *Config, changed map[string]bool, environ map[string]string) error {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrInvalid, err)
	}

	s := newConfigSetter(changed)
	s.setInt("width", ec.Width, &cfg.Window.Width)
	s.setInt("height", ec.Height, &cfg.Window.Height)
	s.setString("title", ec.Title, &cfg.Window.Title)
	s.setInt("fps", ec.FPS, &cfg.Window.FPS)
	s.setString("assets", ec.Assets, &cfg.AssetsDir)
	s.setString("movement", ec.Movement, &cfg.Movement)
	s.setFloat("ball-speed", ec.BallSpeed, &cfg.BallSpeed)
	s.setIntPtr("win-score", ec.WinScore, &cfg.WinScore)
	s.setStrings("autopilot", ec.Autopilot, &cfg.Autopilot)
	s.setBool("watch-assets", ec.WatchAssets, &cfg.WatchAssets)
	s.setBool("debug", ec.Debug, &cfg.Debug)
	s.setString("log-level", ec.LogLevel, &cfg.LogLevel)

	cfg.Keys = maps.Clone(cfg.Keys)
	if cfg.Keys == nil {
		cfg.Keys = make(map[string]Bindings)
	}
	if err := s.setKeys("blue", ec.BlueUp, ec.BlueDown, cfg.Keys); err != nil {
		return err
	}
	return s.setKeys("green", ec.GreenUp, ec.GreenDown, cfg.Keys)
}
