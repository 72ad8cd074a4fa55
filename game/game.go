package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// Game runs a World inside the ebiten loop. Each tick it drains the event
// source, runs the update systems and ends once the window is closed; each
// frame it runs the render systems and the optional debug overlay.
type Game struct {
	World   *World
	Window  *Window
	Events  EventSource
	Reloads <-chan PlayerId
	Overlay *Overlay

	log zerolog.Logger
}

// NewGame wires world to window using ebiten's input as the event source.
func NewGame(world *World, window *Window, log zerolog.Logger) *Game {
	return &Game{
		World:  world,
		Window: window,
		Events: &EbitenEvents{},
		log:    log,
	}
}

type refresher interface {
	Refresh()
}

func (g *Game) Update() error {
	g.drainReloads()

	if r, ok := g.Events.(refresher); ok {
		r.Refresh()
	}
	var input *FrameInput
	g.World.Storage.ReadSingleton(&input)
	input.Reset()
	DrainEvents(g.Events, input)

	if g.Overlay != nil {
		g.Overlay.Frame(func() { g.World.Update.Once(1) })
	} else {
		g.World.Update.Once(1)
	}

	if open, reason := g.World.Open(); !open {
		g.log.Info().Str("reason", reason).Msg("shutting down")
		return ebiten.Termination
	}
	return nil
}

func (g *Game) drainReloads() {
	for {
		select {
		case id, ok := <-g.Reloads:
			if !ok {
				g.Reloads = nil
				return
			}
			g.World.ReloadAsset(id)
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	var target *Screen
	g.World.Storage.ReadSingleton(&target)
	target.Image = screen
	g.World.Render.Once(0)
	target.Image = nil

	if g.Overlay != nil {
		g.Overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.Overlay != nil {
		g.Overlay.Layout(g.Window.Width, g.Window.Height)
	}
	return g.Window.Width, g.Window.Height
}
