// Package config holds the pong configuration and its loading from TOML
// files, PONG_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Movement modes.
const (
	MovementVelocity = "velocity"
	MovementNudge    = "nudge"
)

// Players are the configurable player names.
var Players = []string{"blue", "green"}

// Window holds the window settings.
type Window struct {
	Width      int
	Height     int
	Title      string
	FPS        int
	ClearColor color.RGBA
}

// Bindings maps the two paddle directions to keys.
type Bindings struct {
	Up   ebiten.Key
	Down ebiten.Key
}

// Config holds the full game configuration.
type Config struct {
	Window      Window
	AssetsDir   string
	Movement    string
	BallSpeed   float64
	WinScore    int
	Autopilot   []string
	WatchAssets bool
	Debug       bool
	LogLevel    string
	Keys        map[string]Bindings
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Window: Window{
			Width:      800,
			Height:     600,
			Title:      "Pong",
			FPS:        60,
			ClearColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		},
		AssetsDir: "./assets",
		Movement:  MovementVelocity,
		BallSpeed: 1,
		LogLevel:  "info",
		Keys: map[string]Bindings{
			"blue":  {Up: ebiten.KeyK, Down: ebiten.KeyJ},
			"green": {Up: ebiten.KeyArrowUp, Down: ebiten.KeyArrowDown},
		},
	}
}

// Validate checks the configuration and normalizes player names.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d must be positive", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Window.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalid)
	}
	if c.AssetsDir == "" {
		return fmt.Errorf("%w: assets directory is required", ErrInvalid)
	}
	switch c.Movement {
	case MovementVelocity, MovementNudge:
	default:
		return fmt.Errorf("%w: unknown movement mode %q", ErrInvalid, c.Movement)
	}
	if c.BallSpeed <= 0 {
		return fmt.Errorf("%w: ball speed must be positive", ErrInvalid)
	}
	if c.WinScore < 0 {
		return fmt.Errorf("%w: win score must not be negative", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalid, err)
	}

	for i, name := range c.Autopilot {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(Players, name) {
			return fmt.Errorf("%w: unknown autopilot player %q", ErrInvalid, name)
		}
		c.Autopilot[i] = name
	}
	for name, b := range c.Keys {
		if !slices.Contains(Players, name) {
			return fmt.Errorf("%w: key bindings for unknown player %q", ErrInvalid, name)
		}
		if b.Up == b.Down {
			return fmt.Errorf("%w: %s up and down keys are both %s", ErrInvalid, name, b.Up)
		}
	}
	for _, name := range Players {
		if _, ok := c.Keys[name]; !ok {
			return fmt.Errorf("%w: no key bindings for %s", ErrInvalid, name)
		}
	}
	return nil
}

// HasAutopilot reports whether player is driven by the autopilot.
func (c *Config) HasAutopilot(player string) bool {
	return slices.Contains(c.Autopilot, player)
}

// ParseKey parses an ebiten key name such as "K" or "ArrowUp".
func ParseKey(name string) (ebiten.Key, error) {
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return k, nil
}

// configSetter applies values while keeping explicitly set flags.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr accepts zero, which is meaningful for counters like win score.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = slices.Clone(value)
}

// setKeys rebinds one player's keys from key names. Empty names keep the
// current binding.
func (s *configSetter) setKeys(player, up, down string, dst map[string]Bindings) error {
	if up == "" && down == "" {
		return nil
	}
	player = strings.ToLower(player)
	b := dst[player]
	if up != "" {
		k, err := ParseKey(up)
		if err != nil {
			return fmt.Errorf("%s up key: %w", player, err)
		}
		b.Up = k
	}
	if down != "" {
		k, err := ParseKey(down)
		if err != nil {
			return fmt.Errorf("%s down key: %w", player, err)
		}
		b.Down = k
	}
	dst[player] = b
	return nil
}
