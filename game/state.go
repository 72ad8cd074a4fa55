package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/pong/config"
	"github.com/plus3/pong/ecs"
)

// PlayerView is a paddle driven by a player.
type PlayerView struct {
	ecs.EntityId
	*PlayerContext
	*Paddle
	*Position
}

// BallView is a ball in play.
type BallView struct {
	ecs.EntityId
	*Ball
	*Position
}

// PongGameState is the live view of a match: the player contexts with their
// paddles, the ball and the settings that drive the next transition.
type PongGameState struct {
	Players ecs.Query[PlayerView]
	Balls   ecs.Query[BallView]
	Tuning  ecs.Singleton[Tuning]
	Window  ecs.Singleton[WindowState]
}

// NewPongGameState binds a state view to storage.
func NewPongGameState(storage *ecs.Storage) *PongGameState {
	s := &PongGameState{}
	ecs.Bind(s, storage)
	return s
}

// Ball returns the ball in play, if any.
func (s *PongGameState) Ball() (BallView, bool) {
	return s.Balls.First()
}

// FromPrevious applies every queued key to its player's paddle and empties
// the queues. Escape from any player closes the window.
func (s *PongGameState) FromPrevious() {
	movement := config.MovementVelocity
	if t := s.Tuning.Get(); t != nil {
		movement = t.Movement
	}
	for p := range s.Players.Iter() {
		for _, key := range p.PlayerContext.Keys {
			if key == ebiten.KeyEscape {
				if w := s.Window.Get(); w != nil {
					w.Close("escape pressed by " + p.PlayerContext.Player.String())
				}
				continue
			}
			applyKey(movement, p.PlayerContext.Bindings, key, p.Paddle, p.Position)
		}
		p.PlayerContext.Keys = p.PlayerContext.Keys[:0]
	}
}

// applyKey moves the paddle for one key press. In velocity mode the key
// accelerates the paddle; in nudge mode it moves the paddle at once.
func applyKey(movement string, b config.Bindings, key ebiten.Key, paddle *Paddle, pos *Position) {
	var dir float32
	switch key {
	case b.Up:
		dir = -1
	case b.Down:
		dir = 1
	default:
		return
	}

	if movement == config.MovementNudge {
		pos.Y += dir * PaddleStep
		return
	}
	paddle.Velocity.Y = clamp(paddle.Velocity.Y+dir*PaddleAcceleration, -MaxPaddleSpeed, MaxPaddleSpeed)
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}

// ControlSystem advances the game state from the previous tick's input.
type ControlSystem struct {
	State PongGameState
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	s.State.FromPrevious()
}
