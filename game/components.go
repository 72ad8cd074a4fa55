package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/pong/config"
	"github.com/plus3/pong/ecs"
)

// PlayerId names one of the two players.
type PlayerId uint8

const (
	Blue PlayerId = iota
	Green
)

// AllPlayers returns every player in PlayerId order.
func AllPlayers() []PlayerId {
	return []PlayerId{Blue, Green}
}

func (p PlayerId) Valid() bool {
	return p == Blue || p == Green
}

func (p PlayerId) String() string {
	switch p {
	case Blue:
		return "blue"
	case Green:
		return "green"
	}
	return fmt.Sprintf("player(%d)", uint8(p))
}

// Opponent returns the other player.
func (p PlayerId) Opponent() PlayerId {
	if p == Blue {
		return Green
	}
	return Blue
}

// ParsePlayerId parses "blue" or "green".
func ParsePlayerId(name string) (PlayerId, error) {
	for _, p := range AllPlayers() {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown player %q", name)
}

const (
	PaddleWidth        = 20
	PaddleHeight       = 50
	PaddlePadding      = 30
	PaddleAcceleration = 1.25
	MaxPaddleSpeed     = 5
	PaddleStep         = 5

	BallRadius           = 10
	BallOutlineThickness = 3
)

var (
	BallFillColor    = color.RGBA{R: 255, A: 255}
	BallOutlineColor = color.RGBA{R: 255, B: 255, A: 255}
)

// Vec is a 2D vector in pixels (per tick, for velocities).
type Vec struct {
	X, Y float32
}

// Position is the top-left corner of an entity.
type Position struct {
	X, Y float32
}

// Paddle is a player's bat.
type Paddle struct {
	Player   PlayerId
	Velocity Vec
	Width    float32
	Height   float32
}

// Bounds returns the paddle rectangle at pos.
func (p *Paddle) Bounds(pos Position) Rect {
	return Rect{X: pos.X, Y: pos.Y, W: p.Width, H: p.Height}
}

// Ball is the circle bouncing between the paddles. Position is the top-left
// corner of the circle without its outline.
type Ball struct {
	Velocity     Vec
	Radius       float32
	Outline      float32
	FillColor    color.RGBA
	OutlineColor color.RGBA
	LastHit      *ecs.EntityRef
}

// Bounds returns the ball rectangle at pos, outline included.
func (b *Ball) Bounds(pos Position) Rect {
	size := 2 * (b.Radius + b.Outline)
	return Rect{X: pos.X - b.Outline, Y: pos.Y - b.Outline, W: size, H: size}
}

// Sprite draws a borrowed texture. The texture is owned by the Assets
// singleton of the same storage.
type Sprite struct {
	Texture *Texture
	Width   float32
	Height  float32
}

// PlayerContext holds a player's bindings and the keys queued for the
// next state transition.
type PlayerContext struct {
	Player   PlayerId
	Bindings config.Bindings
	Keys     []ebiten.Key
}

// Autopilot marks a paddle driven by the computer.
type Autopilot struct {
	// Reaction scales how far the paddle moves toward its target each tick.
	Reaction float32
}

// Arena is the playable rectangle, equal to the window size.
type Arena struct {
	Width  float32
	Height float32
}

// Score tracks points and finished matches.
type Score struct {
	Points     [2]int
	Matches    [2]int
	LastScorer PlayerId
	Goals      int
}

// WindowState reports whether the window should stay open.
type WindowState struct {
	Open   bool
	Reason string
}

// Close marks the window for closing. The first reason wins.
func (w *WindowState) Close(reason string) {
	if !w.Open {
		return
	}
	w.Open = false
	w.Reason = reason
}

// FrameInput holds the events drained this tick.
type FrameInput struct {
	Keys           []ebiten.Key
	CloseRequested bool
}

// Reset empties the frame buffer.
func (f *FrameInput) Reset() {
	f.Keys = f.Keys[:0]
	f.CloseRequested = false
}

// Tuning holds the gameplay settings copied from config.
type Tuning struct {
	Movement  string
	BallSpeed float32
	WinScore  int
}

// Screen is the render target for the current Draw call.
type Screen struct {
	Image      *ebiten.Image
	ClearColor color.RGBA
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float32
}

func (r Rect) Right() float32  { return r.X + r.W }
func (r Rect) Bottom() float32 { return r.Y + r.H }

// Center returns the rectangle's midpoint.
func (r Rect) Center() Vec {
	return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Intersect returns the overlap of r and o and whether it is non-empty.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	left := max(r.X, o.X)
	top := max(r.Y, o.Y)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}, false
	}
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}, true
}

// NewRegistry registers every component the game spawns.
func NewRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Paddle](registry)
	ecs.RegisterComponent[Ball](registry)
	ecs.RegisterComponent[Sprite](registry)
	ecs.RegisterComponent[PlayerContext](registry)
	ecs.RegisterComponent[Autopilot](registry)
	return registry
}
