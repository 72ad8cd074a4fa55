package game

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/pong/config"
)

// ErrWindow is wrapped by window creation and run failures.
var ErrWindow = errors.New("could not create window")

// Window is the configured game window.
type Window struct {
	Width      int
	Height     int
	Title      string
	ClearColor color.RGBA
}

// NewWindow configures the ebiten window: fixed size, title, tick rate and
// a handled close button.
func NewWindow(cfg config.Window) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrWindow, cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("%w: frame rate %d", ErrWindow, cfg.FPS)
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetTPS(cfg.FPS)
	ebiten.SetWindowClosingHandled(true)

	return &Window{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Title:      cfg.Title,
		ClearColor: cfg.ClearColor,
	}, nil
}

// Arena returns the playable area for this window.
func (w *Window) Arena() Arena {
	return Arena{Width: float32(w.Width), Height: float32(w.Height)}
}

// Run blocks running g until it terminates.
func (w *Window) Run(g ebiten.Game) error {
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("%w: %w", ErrWindow, err)
	}
	return nil
}
