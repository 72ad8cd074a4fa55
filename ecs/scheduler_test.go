package ecs_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/plus3/pong/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for item := range s.Entities.Iter() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type Counter struct {
	Frames int
}

type CountingSystem struct {
	Counter ecs.Singleton[Counter]
}

func (s *CountingSystem) Execute(frame *ecs.UpdateFrame) {
	s.Counter.Get().Frames++
}

type ReaperSystem struct {
	Dying ecs.Query[struct {
		ecs.EntityId
		*Health
	}]
}

func (s *ReaperSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Dying.Iter() {
		if item.Health.Current <= 0 {
			frame.Commands.Delete(item.EntityId)
			frame.Commands.Spawn(Name{Value: "grave"})
		}
	}
}

func TestSchedulerRunsSystemsInOrder(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.AddSingleton(Counter{})
	scheduler := ecs.NewScheduler(storage)

	movement := &MovementSystem{}
	scheduler.Register(movement)
	scheduler.Register(&CountingSystem{})

	id := storage.Spawn(Position{}, Velocity{DX: 2, DY: 4})
	scheduler.Once(0.5)
	scheduler.Once(0.5)

	assert.Equal(t, 2, movement.ExecuteCount)
	assert.Equal(t, Position{X: 2, Y: 4}, *ecs.ReadComponent[Position](storage, id))

	var counter *Counter
	require.True(t, storage.ReadSingleton(&counter))
	assert.Equal(t, 2, counter.Frames)
}

func TestSchedulerFlushesCommands(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&ReaperSystem{})

	alive := storage.Spawn(Health{Current: 5})
	dead := storage.Spawn(Health{Current: 0})

	scheduler.Once(1)

	assert.True(t, storage.Alive(alive))
	assert.False(t, storage.Alive(dead))

	graves := 0
	for range ecs.NewView[struct{ *Name }](storage).Iter() {
		graves++
	}
	assert.Equal(t, 1, graves)
}

func TestSchedulerQuerySeesNewEntities(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	movement := &MovementSystem{}
	scheduler.Register(movement)

	scheduler.Once(1)
	assert.Equal(t, 0, movement.Entities.Count())

	storage.Spawn(Position{}, Velocity{DX: 1})
	scheduler.Once(1)
	assert.Equal(t, 1, movement.Entities.Count())

	first, ok := movement.Entities.First()
	require.True(t, ok)
	assert.Equal(t, float32(1), first.Position.X)
}

func TestSchedulerStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{})
	scheduler.Register(&ReaperSystem{})

	empty := scheduler.GetStats()
	assert.Equal(t, 2, empty.SystemCount)
	assert.Equal(t, time.Duration(0), empty.Systems[0].MinDuration)

	for range 3 {
		scheduler.Once(1.0 / 60)
	}

	stats := scheduler.GetStats()
	assert.Equal(t, uint64(3), stats.Frames)
	assert.Equal(t, int64(6), stats.TotalExecutions)
	assert.Equal(t, "MovementSystem", stats.Systems[0].Name)
	assert.Equal(t, "ReaperSystem", stats.Systems[1].Name)
	for _, s := range stats.Systems {
		assert.Equal(t, int64(3), s.ExecutionCount)
		assert.LessOrEqual(t, s.MinDuration, s.MaxDuration)
		assert.Equal(t, s.TotalDuration/3, s.AvgDuration)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.AddSingleton(Counter{})
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&CountingSystem{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Positive(t, scheduler.GetStats().Frames)
}

func TestUnboundQueryPanics(t *testing.T) {
	var q ecs.Query[struct{ *Position }]
	assert.Panics(t, func() { q.Count() })
}

func TestCommandsFlushOrder(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	cmds := &ecs.Commands{}

	keep := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	drop := storage.Spawn(Position{X: 2})

	var sawSpawn bool
	cmds.Delete(drop)
	cmds.AddComponent(drop, Score(1))
	cmds.RemoveComponent(keep, reflect.TypeFor[Velocity]())
	cmds.AddComponent(keep, Tag("kept"))
	cmds.Spawn(Name{Value: "new"})
	cmds.Defer(func() {
		for range ecs.NewView[struct{ *Name }](storage).Iter() {
			sawSpawn = true
		}
	})
	require.True(t, cmds.Pending())

	cmds.Flush(storage)

	assert.False(t, cmds.Pending())
	assert.True(t, sawSpawn, "deferred functions run after spawns")
	assert.False(t, storage.Alive(drop))
	assert.False(t, storage.Alive(keep), "keep moved archetypes twice")

	var found int
	for item := range ecs.NewView[struct {
		Pos *Position
		Tag *Tag
		Vel *Velocity `ecs:"optional"`
	}](storage).Iter() {
		found++
		assert.Nil(t, item.Vel)
		assert.Equal(t, Tag("kept"), *item.Tag)
		assert.Equal(t, float32(1), item.Pos.X)
	}
	assert.Equal(t, 1, found)
	assert.Nil(t, ecs.ReadComponent[Score](storage, drop))
}

type nestedView struct {
	Movers ecs.Query[struct{ *Position }]
}

type NestingSystem struct {
	View  nestedView
	Inner struct {
		Counter ecs.Singleton[Counter]
	}
	seen int
}

func (s *NestingSystem) Execute(frame *ecs.UpdateFrame) {
	s.seen = s.View.Movers.Count()
	s.Inner.Counter.Get().Frames++
}

func TestBindDescendsIntoStructFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.AddSingleton(Counter{})
	storage.Spawn(Position{})
	storage.Spawn(Position{}, Velocity{})

	system := &NestingSystem{}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(system)
	scheduler.Once(1)

	assert.Equal(t, 2, system.seen)
	assert.Equal(t, 1, system.Inner.Counter.Get().Frames)
}
