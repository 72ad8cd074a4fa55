package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/plus3/pong/config"
	"github.com/plus3/pong/ecs"
	"github.com/plus3/pong/ecs/debugui"
	"github.com/rs/zerolog"
)

// World is the game without a window: one storage, an update scheduler for
// the simulation and a render scheduler for drawing.
type World struct {
	Storage *ecs.Storage
	Update  *ecs.Scheduler
	Render  *ecs.Scheduler
	Assets  *Assets
	Paddles map[PlayerId]ecs.EntityId

	log zerolog.Logger
}

// NewWorld builds the paddles, the ball and every system from cfg. assets is
// stored as a singleton and outlives the sprites borrowing from it.
func NewWorld(cfg config.Config, arena Arena, assets *Assets, rng *rand.Rand, log zerolog.Logger) (*World, error) {
	registry := NewRegistry()
	debugui.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	storage.AddSingleton(assets)
	storage.AddSingleton(arena)
	storage.AddSingleton(Score{})
	storage.AddSingleton(WindowState{Open: true})
	storage.AddSingleton(FrameInput{})
	storage.AddSingleton(Screen{ClearColor: cfg.Window.ClearColor})
	storage.AddSingleton(Tuning{
		Movement:  cfg.Movement,
		BallSpeed: float32(cfg.BallSpeed),
		WinScore:  cfg.WinScore,
	})

	sprites, err := CreateSprites(assets)
	if err != nil {
		return nil, err
	}

	bindings := make(map[PlayerId]config.Bindings, 2)
	for name, b := range cfg.Keys {
		player, err := ParsePlayerId(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		bindings[player] = b
	}

	w := &World{
		Storage: storage,
		Assets:  assets,
		Paddles: CreatePaddles(storage, sprites, arena, bindings),
		log:     log,
	}
	for _, name := range cfg.Autopilot {
		player, err := ParsePlayerId(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		if id, ok := w.Paddles[player]; ok {
			w.Paddles[player] = storage.AddComponent(id, Autopilot{})
		}
	}
	SpawnBall(storage, rng, arena, float32(cfg.BallSpeed))

	w.Update = ecs.NewScheduler(storage)
	w.Update.Register(&EventSystem{})
	w.Update.Register(&ControlSystem{})
	w.Update.Register(&AutopilotSystem{})
	w.Update.Register(&PaddleMovementSystem{})
	w.Update.Register(&BallMovementSystem{})
	w.Update.Register(&CollisionSystem{})
	w.Update.Register(&WallSystem{})
	w.Update.Register(&GoalSystem{Rand: rng, Log: log})

	w.Render = ecs.NewScheduler(storage)
	w.Render.Register(&RenderSystem{})

	return w, nil
}

// Step runs one simulation tick on input.
func (w *World) Step(input []Event) {
	var frame *FrameInput
	w.Storage.ReadSingleton(&frame)
	frame.Reset()

	queue := &EventQueue{}
	queue.Push(input...)
	DrainEvents(queue, frame)
	w.Update.Once(1)
}

// Open reports whether the window should stay open, and if not, why.
func (w *World) Open() (bool, string) {
	var state *WindowState
	w.Storage.ReadSingleton(&state)
	return state.Open, state.Reason
}

// Score returns the current score.
func (w *World) Score() Score {
	var score *Score
	w.Storage.ReadSingleton(&score)
	return *score
}

// ReloadAsset re-reads one paddle texture. Failures are logged and the old
// texture stays in use.
func (w *World) ReloadAsset(id PlayerId) {
	if err := w.Assets.Reload(id); err != nil {
		w.log.Error().Err(err).Stringer("player", id).Msg("asset reload failed")
		return
	}
	w.log.Info().Stringer("player", id).Str("path", AssetPath(w.Assets.Dir, id)).Msg("asset reloaded")
}
