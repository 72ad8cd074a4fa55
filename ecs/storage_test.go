package ecs_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/plus3/pong/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	tests := []struct {
		archetypeId uint32
		index       uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("archetype=%d,index=%d", tt.archetypeId, tt.index), func(t *testing.T) {
			id := ecs.NewEntityId(tt.archetypeId, tt.index)
			assert.Equal(t, tt.archetypeId, id.ArchetypeId())
			assert.Equal(t, tt.index, id.Index())
		})
	}
}

func TestSpawnAndGetComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 3, Y: 4}, Name{Value: "left"})
	assert.NotEqual(t, ecs.EntityId(0), id)
	assert.True(t, storage.Alive(id))

	pos := ecs.ReadComponent[Position](storage, id)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 3, Y: 4}, *pos)

	name := storage.GetComponent(id, reflect.TypeFor[Name]())
	require.NotNil(t, name)
	assert.Equal(t, "left", name.(*Name).Value)

	assert.Nil(t, storage.GetComponent(id, reflect.TypeFor[Velocity]()))
	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))
}

func TestSpawnPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(struct{ Unregistered int }{}) })
	assert.Panics(t, func() { storage.Spawn(map[string]int{}) })
}

func TestSameShapeSharesArchetype(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	b := storage.Spawn(Velocity{DX: 2}, Position{X: 2})
	c := storage.Spawn(Position{X: 3})

	assert.Equal(t, a.ArchetypeId(), b.ArchetypeId())
	assert.NotEqual(t, a.ArchetypeId(), c.ArchetypeId())
	assert.NotEqual(t, a.Index(), b.Index())
	assert.Len(t, storage.Archetypes(), 2)
}

func TestDelete(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1, Y: 1}, Health{Current: 100, Max: 100})
	storage.Delete(id)

	assert.False(t, storage.Alive(id))
	assert.Nil(t, ecs.ReadComponent[Position](storage, id))

	// deleting twice is a no-op
	storage.Delete(id)

	// the freed row is reused
	again := storage.Spawn(Position{X: 2, Y: 2}, Health{Current: 1, Max: 1})
	assert.Equal(t, id, again)
}

func TestArchetypeOf(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1, Y: 1}, Health{Current: 100, Max: 100})
	a, ok := storage.ArchetypeOf(id)
	require.True(t, ok)
	assert.Equal(t, id.ArchetypeId(), a.ID())
	assert.ElementsMatch(t, []reflect.Type{reflect.TypeFor[Position](), reflect.TypeFor[Health]()}, a.Types())

	storage.Delete(id)
	_, ok = storage.ArchetypeOf(id)
	assert.False(t, ok)
}

func TestComponentPointersStayValid(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	first := storage.Spawn(Position{X: 1})
	pos := ecs.ReadComponent[Position](storage, first)
	for i := range 200 {
		storage.Spawn(Position{X: float32(i)})
	}

	pos.X = 42
	assert.Equal(t, float32(42), ecs.ReadComponent[Position](storage, first).X)
}

func TestAddComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 5, Y: 6})
	moved := storage.AddComponent(id, Velocity{DX: 1, DY: -1})

	assert.NotEqual(t, id.ArchetypeId(), moved.ArchetypeId())
	assert.False(t, storage.Alive(id))
	assert.Equal(t, Position{X: 5, Y: 6}, *ecs.ReadComponent[Position](storage, moved))
	assert.Equal(t, Velocity{DX: 1, DY: -1}, *ecs.ReadComponent[Velocity](storage, moved))

	t.Run("existing type overwrites in place", func(t *testing.T) {
		same := storage.AddComponent(moved, &Velocity{DX: 9})
		assert.Equal(t, moved, same)
		assert.Equal(t, float32(9), ecs.ReadComponent[Velocity](storage, same).DX)
	})

	t.Run("dead entity", func(t *testing.T) {
		assert.Equal(t, ecs.EntityId(0), storage.AddComponent(id, Score(1)))
	})
}

func TestRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1}, Velocity{DX: 2}, Score(7))
	moved := storage.RemoveComponent(id, reflect.TypeFor[Velocity]())

	assert.True(t, storage.Alive(moved))
	assert.False(t, storage.HasComponent(moved, reflect.TypeFor[Velocity]()))
	assert.Equal(t, Score(7), *ecs.ReadComponent[Score](storage, moved))

	// absent type leaves the entity alone
	assert.Equal(t, moved, storage.RemoveComponent(moved, reflect.TypeFor[Health]()))

	moved = storage.RemoveComponent(moved, reflect.TypeFor[Score]())
	last := storage.RemoveComponent(moved, reflect.TypeFor[Position]())
	assert.Equal(t, ecs.EntityId(0), last)
	assert.False(t, storage.Alive(moved))
}

func TestSingletons(t *testing.T) {
	type Arena struct{ W, H int }
	storage := ecs.NewStorage(newTestRegistry())

	var arena *Arena
	assert.False(t, storage.ReadSingleton(&arena))

	storage.AddSingleton(Arena{W: 800, H: 600})
	require.True(t, storage.ReadSingleton(&arena))
	assert.Equal(t, 800, arena.W)

	// replacing writes through the slot already handed out
	storage.AddSingleton(&Arena{W: 640, H: 480})
	assert.Equal(t, 640, arena.W)

	assert.Panics(t, func() { storage.ReadSingleton(arena) })
}

func TestSingletonAccessor(t *testing.T) {
	type Tuning struct{ Speed float64 }
	storage := ecs.NewStorage(newTestRegistry())

	s := ecs.NewSingleton(storage, Tuning{Speed: 2})
	require.True(t, s.Exists())
	assert.Equal(t, 2.0, s.Get().Speed)

	s.Get().Speed = 3
	other := ecs.NewSingleton(storage, Tuning{Speed: 100})
	assert.Equal(t, 3.0, other.Get().Speed, "initializer only applies to a missing singleton")
}

func TestEntityRefFollowsMoves(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1})
	ref := storage.CreateEntityRef(id)
	require.NotNil(t, ref)
	assert.Same(t, ref, storage.CreateEntityRef(id))

	moved := storage.AddComponent(id, Velocity{DX: 1})
	resolved, ok := storage.ResolveEntityRef(ref)
	assert.True(t, ok)
	assert.Equal(t, moved, resolved)

	storage.Delete(moved)
	_, ok = storage.ResolveEntityRef(ref)
	assert.False(t, ok)
	assert.Equal(t, ecs.EntityId(0), ref.Id)

	assert.Nil(t, storage.CreateEntityRef(moved))
	_, ok = storage.ResolveEntityRef(nil)
	assert.False(t, ok)
}

func TestCollectStats(t *testing.T) {
	type Arena struct{ W, H int }
	storage := ecs.NewStorage(newTestRegistry())

	storage.Spawn(Position{}, Velocity{})
	storage.Spawn(Position{}, Velocity{})
	gone := storage.Spawn(Name{Value: "x"})
	storage.Delete(gone)
	storage.AddSingleton(Arena{})

	stats := storage.CollectStats()
	assert.Equal(t, 2, stats.ArchetypeCount)
	assert.Equal(t, 2, stats.TotalEntityCount)
	assert.Equal(t, 1, stats.SingletonCount)
	assert.Equal(t, []string{"ecs_test.Arena"}, stats.SingletonTypes)

	require.Len(t, stats.ArchetypeBreakdown, 2)
	assert.Equal(t, []string{"ecs_test.Position", "ecs_test.Velocity"}, stats.ArchetypeBreakdown[0].ComponentTypes)
	assert.Equal(t, 2, stats.ArchetypeBreakdown[0].EntityCount)
	assert.Equal(t, 0, stats.ArchetypeBreakdown[1].EntityCount)
}
