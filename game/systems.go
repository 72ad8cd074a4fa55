package game

import (
	"math/rand/v2"

	"github.com/plus3/pong/ecs"
	"github.com/rs/zerolog"
)

// AutopilotSystem steers autopilot paddles. The target blends the arena
// center with the ball's height, leaning on the ball as it gets closer.
// While the ball moves away the paddle drifts back toward the center.
type AutopilotSystem struct {
	Arena ecs.Singleton[Arena]
	Balls ecs.Query[BallView]
	Bots  ecs.Query[struct {
		*Paddle
		*Position
		*Autopilot
	}]
}

func (s *AutopilotSystem) Execute(frame *ecs.UpdateFrame) {
	ball, ok := s.Balls.First()
	if !ok {
		return
	}
	arena := s.Arena.Get()
	for bot := range s.Bots.Iter() {
		bot.Paddle.Velocity.Y = autopilotVelocity(arena, bot.Paddle, bot.Position, bot.Autopilot, ball.Ball, ball.Position)
	}
}

func autopilotVelocity(arena *Arena, paddle *Paddle, pos *Position, bot *Autopilot, ball *Ball, ballPos *Position) float32 {
	halfW, halfH := arena.Width/2, arena.Height/2
	paddleBounds := paddle.Bounds(*pos)
	center := paddleBounds.Center()
	ballCenter := ball.Bounds(*ballPos).Center()

	approaching := (ball.Velocity.X > 0 && center.X > halfW) || (ball.Velocity.X < 0 && center.X < halfW)

	var diff float32
	if approaching {
		far := min(1, abs(ballCenter.X-center.X)/halfW)
		target := far*halfH + (1-far)*ballCenter.Y
		diff = target - center.Y
	} else {
		diff = (halfH - center.Y) * 0.2
	}

	reaction := bot.Reaction
	if reaction <= 0 {
		reaction = 0.8
	}
	limit := MaxPaddleSpeed * reaction
	return clamp(diff, -limit, limit)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// PaddleMovementSystem moves paddles by their velocity and keeps them in the
// arena. A paddle stopped by an edge loses its velocity.
type PaddleMovementSystem struct {
	Arena   ecs.Singleton[Arena]
	Paddles ecs.Query[struct {
		*Paddle
		*Position
	}]
}

func (s *PaddleMovementSystem) Execute(frame *ecs.UpdateFrame) {
	arena := s.Arena.Get()
	for p := range s.Paddles.Iter() {
		p.Position.Y += p.Paddle.Velocity.Y
		maxY := arena.Height - p.Paddle.Height
		switch {
		case p.Position.Y < 0:
			p.Position.Y = 0
			p.Paddle.Velocity.Y = 0
		case p.Position.Y > maxY:
			p.Position.Y = maxY
			p.Paddle.Velocity.Y = 0
		}
	}
}

// BallMovementSystem moves every ball by its velocity.
type BallMovementSystem struct {
	Balls ecs.Query[BallView]
}

func (s *BallMovementSystem) Execute(frame *ecs.UpdateFrame) {
	for b := range s.Balls.Iter() {
		b.Position.X += b.Ball.Velocity.X
		b.Position.Y += b.Ball.Velocity.Y
	}
}

// CollisionSystem bounces balls off paddles. The overlap decides the axis: a
// wide overlap is a hit on the paddle's top or bottom, a tall one a hit on
// its face.
type CollisionSystem struct {
	Balls   ecs.Query[BallView]
	Paddles ecs.Query[struct {
		ecs.EntityId
		*Paddle
		*Position
	}]
}

func (s *CollisionSystem) Execute(frame *ecs.UpdateFrame) {
	for b := range s.Balls.Iter() {
		for p := range s.Paddles.Iter() {
			if bounce(b.Ball, b.Position, p.Paddle.Bounds(*p.Position)) {
				b.Ball.LastHit = frame.Storage.CreateEntityRef(p.EntityId)
			}
		}
	}
}

// bounce resolves one ball/paddle contact and reports whether they touched.
// The ball is pushed out of the paddle along the axis it bounced on.
func bounce(ball *Ball, pos *Position, paddle Rect) bool {
	bounds := ball.Bounds(*pos)
	overlap, ok := bounds.Intersect(paddle)
	if !ok {
		return false
	}

	// A square overlap is a corner hit and reverses both axes.
	ballCenter, paddleCenter := bounds.Center(), paddle.Center()
	if overlap.W >= overlap.H {
		ball.Velocity.Y = -ball.Velocity.Y
		if ballCenter.Y < paddleCenter.Y {
			pos.Y -= overlap.H
		} else {
			pos.Y += overlap.H
		}
	}
	if overlap.H >= overlap.W {
		ball.Velocity.X = -ball.Velocity.X
		if ballCenter.X < paddleCenter.X {
			pos.X -= overlap.W
		} else {
			pos.X += overlap.W
		}
	}
	return true
}

// WallSystem bounces balls off the top and bottom of the arena.
type WallSystem struct {
	Arena ecs.Singleton[Arena]
	Balls ecs.Query[BallView]
}

func (s *WallSystem) Execute(frame *ecs.UpdateFrame) {
	arena := s.Arena.Get()
	for b := range s.Balls.Iter() {
		bounds := b.Ball.Bounds(*b.Position)
		if bounds.Y <= 0 && b.Ball.Velocity.Y < 0 {
			b.Ball.Velocity.Y = -b.Ball.Velocity.Y
		}
		if bounds.Bottom() >= arena.Height && b.Ball.Velocity.Y > 0 {
			b.Ball.Velocity.Y = -b.Ball.Velocity.Y
		}
	}
}

// GoalSystem scores balls that leave the arena sideways and serves a new
// one. Blue defends the left edge, Green the right.
type GoalSystem struct {
	Arena  ecs.Singleton[Arena]
	Score  ecs.Singleton[Score]
	Tuning ecs.Singleton[Tuning]
	Balls  ecs.Query[BallView]

	Rand *rand.Rand
	Log  zerolog.Logger
}

func (s *GoalSystem) Execute(frame *ecs.UpdateFrame) {
	arena := s.Arena.Get()
	for b := range s.Balls.Iter() {
		bounds := b.Ball.Bounds(*b.Position)
		var scorer PlayerId
		switch {
		case bounds.X <= 0:
			scorer = Green
		case bounds.Right() >= arena.Width:
			scorer = Blue
		default:
			continue
		}

		s.goal(scorer)
		frame.Commands.Delete(b.EntityId)
		pos, ball := NewBall(s.Rand, *arena, s.Tuning.Get().BallSpeed)
		frame.Commands.Spawn(pos, ball)
	}
}

func (s *GoalSystem) goal(scorer PlayerId) {
	score := s.Score.Get()
	score.Points[scorer]++
	score.LastScorer = scorer
	score.Goals++
	s.Log.Info().
		Stringer("scorer", scorer).
		Int("blue", score.Points[Blue]).
		Int("green", score.Points[Green]).
		Msg("goal")

	win := s.Tuning.Get().WinScore
	if win > 0 && score.Points[scorer] >= win {
		score.Matches[scorer]++
		s.Log.Info().
			Stringer("winner", scorer).
			Int("matches", score.Matches[scorer]).
			Msg("match won")
		score.Points = [2]int{}
	}
}
