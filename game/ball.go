package game

import (
	"math/rand/v2"

	"github.com/plus3/pong/ecs"
)

var ballXVelocities = [...]float32{-1, -0.75, 0.75, 1}

// NewBall returns a ball at the arena center with a random velocity: x from
// a fixed set, y uniform in [-1, 1), both scaled by speed.
func NewBall(rng *rand.Rand, arena Arena, speed float32) (Position, Ball) {
	pos := Position{X: arena.Width / 2, Y: arena.Height / 2}
	ball := Ball{
		Velocity: Vec{
			X: ballXVelocities[rng.IntN(len(ballXVelocities))] * speed,
			Y: (rng.Float32()*2 - 1) * speed,
		},
		Radius:       BallRadius,
		Outline:      BallOutlineThickness,
		FillColor:    BallFillColor,
		OutlineColor: BallOutlineColor,
	}
	return pos, ball
}

// SpawnBall adds a new ball to storage.
func SpawnBall(storage *ecs.Storage, rng *rand.Rand, arena Arena, speed float32) ecs.EntityId {
	pos, ball := NewBall(rng, arena, speed)
	return storage.Spawn(pos, ball)
}
