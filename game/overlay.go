package game

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/pong/ecs"
	"github.com/plus3/pong/ecs/debugui"
	debugui_ebiten "github.com/plus3/pong/ecs/debugui/ebiten"
)

// Overlay is the Dear ImGui debug layer drawn over the game.
type Overlay struct {
	backend debugui_ebiten.ImguiBackend
}

// NewOverlay creates the ImGui backend for window and adds the debug panels
// and the ImGui system to world.
func NewOverlay(world *World, window *Window) *Overlay {
	backend := debugui_ebiten.NewImguiBackend(window.Title, window.Width, window.Height)

	storage := world.Storage
	storage.AddSingleton(backend)
	storage.AddSingleton(debugui.ImguiInputState{})

	stats := debugui.NewStatsPanel(storage, world.Update, 120)
	browser := &debugui.EntityBrowser{Storage: storage}
	inspector := &debugui.ComponentInspector{Storage: storage, Browser: browser}
	match := &MatchPanel{}
	ecs.Bind(match, storage)

	storage.Spawn(stats.Item())
	storage.Spawn(browser.Item())
	storage.Spawn(inspector.Item())
	storage.Spawn(debugui.ImguiItem{Render: match.Render})

	world.Update.Register(&debugui.ImguiSystem{})
	return &Overlay{backend: backend}
}

// Frame runs fn inside an ImGui frame.
func (o *Overlay) Frame(fn func()) {
	o.backend.Frame(fn)
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	o.backend.Draw(screen)
}

func (o *Overlay) Layout(width, height int) {
	o.backend.Layout(width, height)
}

// MatchPanel shows the score, the ball and lets the ball speed be tuned live.
type MatchPanel struct {
	Score  ecs.Singleton[Score]
	Tuning ecs.Singleton[Tuning]
	Balls  ecs.Query[BallView]
}

func (p *MatchPanel) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(340, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(260, 160), imgui.CondOnce)
	if !imgui.BeginV("Match", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	score := p.Score.Get()
	imgui.Text(fmt.Sprintf("Blue %d : %d Green", score.Points[Blue], score.Points[Green]))
	imgui.Text(fmt.Sprintf("Matches %d : %d", score.Matches[Blue], score.Matches[Green]))
	imgui.Text(fmt.Sprintf("Goals: %d", score.Goals))

	imgui.Separator()
	for b := range p.Balls.Iter() {
		imgui.Text(fmt.Sprintf("Ball (%.0f, %.0f) v=(%.2f, %.2f)", b.Position.X, b.Position.Y, b.Ball.Velocity.X, b.Ball.Velocity.Y))
	}

	tuning := p.Tuning.Get()
	imgui.InputFloat("Ball speed", &tuning.BallSpeed)
	tuning.BallSpeed = max(tuning.BallSpeed, 0.1)
}
