package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/pong/ecs"
)

// RenderSystem clears the screen and draws paddles, balls and the score.
type RenderSystem struct {
	Screen  ecs.Singleton[Screen]
	Score   ecs.Singleton[Score]
	Arena   ecs.Singleton[Arena]
	Sprites ecs.Query[struct {
		*Sprite
		*Position
	}]
	Balls ecs.Query[BallView]
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil || screen.Image == nil {
		return
	}
	dst := screen.Image
	dst.Fill(screen.ClearColor)

	for item := range s.Sprites.Iter() {
		drawSprite(dst, item.Sprite, item.Position)
	}
	for b := range s.Balls.Iter() {
		drawBall(dst, b.Ball, b.Position)
	}

	if score := s.Score.Get(); score != nil {
		text := fmt.Sprintf("%d : %d", score.Points[Blue], score.Points[Green])
		ebitenutil.DebugPrintAt(dst, text, int(s.Arena.Get().Width/2)-len(text)*3, 8)
	}
}

func drawSprite(dst *ebiten.Image, sprite *Sprite, pos *Position) {
	img := sprite.Texture.Image()
	if img == nil {
		return
	}
	w, h := sprite.Texture.Size()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sprite.Width)/float64(w), float64(sprite.Height)/float64(h))
	op.GeoM.Translate(float64(pos.X), float64(pos.Y))
	dst.DrawImage(img, op)
}

// drawBall draws the outline outside the fill radius.
func drawBall(dst *ebiten.Image, ball *Ball, pos *Position) {
	cx, cy := pos.X+ball.Radius, pos.Y+ball.Radius
	vector.DrawFilledCircle(dst, cx, cy, ball.Radius, ball.FillColor, true)
	if ball.Outline > 0 {
		vector.StrokeCircle(dst, cx, cy, ball.Radius+ball.Outline/2, ball.Outline, ball.OutlineColor, true)
	}
}
