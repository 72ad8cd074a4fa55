package ecs_test

import (
	"slices"
	"testing"

	"github.com/plus3/pong/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mover struct {
	ecs.EntityId
	*Position
	*Velocity
}

func TestViewIter(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	b := storage.Spawn(Position{X: 2}, Velocity{DX: 2}, Score(3))
	storage.Spawn(Position{X: 3})

	view := ecs.NewView[mover](storage)
	var ids []ecs.EntityId
	for m := range view.Iter() {
		ids = append(ids, m.EntityId)
		m.Position.X += m.Velocity.DX
	}

	assert.ElementsMatch(t, []ecs.EntityId{a, b}, ids)
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](storage, a).X)
	assert.Equal(t, float32(4), ecs.ReadComponent[Position](storage, b).X)
}

func TestViewOptionalFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	type named struct {
		Pos  *Position
		Name *Name `ecs:"optional"`
	}

	storage.Spawn(Position{X: 1}, Name{Value: "blue"})
	storage.Spawn(Position{X: 2})

	view := ecs.NewView[named](storage)
	var withName, without int
	for n := range view.Iter() {
		if n.Name != nil {
			withName++
			assert.Equal(t, "blue", n.Name.Value)
		} else {
			without++
		}
	}
	assert.Equal(t, 1, withName)
	assert.Equal(t, 1, without)
}

func TestViewGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 7}, Velocity{DX: 1})
	lonely := storage.Spawn(Position{X: 8})

	view := ecs.NewView[mover](storage)
	got := view.Get(id)
	require.NotNil(t, got)
	assert.Equal(t, id, got.EntityId)
	assert.Equal(t, float32(7), got.Position.X)

	assert.Nil(t, view.Get(lonely))

	ref := storage.CreateEntityRef(id)
	assert.NotNil(t, view.GetRef(ref))
	storage.Delete(id)
	assert.Nil(t, view.GetRef(ref))
	assert.Nil(t, view.Get(id))
}

func TestViewEmbeddedOptional(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	type spawnable struct {
		*Position
		*Health `ecs:"optional"`
	}

	assert.Panics(t, func() { ecs.NewView[spawnable](storage) }, "embedded fields cannot be optional")
}

func TestViewSpawnOptional(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	type spawnable struct {
		Pos    *Position
		Health *Health `ecs:"optional"`
	}

	view := ecs.NewView[spawnable](storage)
	id := view.Spawn(spawnable{Pos: &Position{X: 1, Y: 2}})
	assert.True(t, storage.Alive(id))
	assert.Nil(t, ecs.ReadComponent[Health](storage, id))
	assert.Equal(t, Position{X: 1, Y: 2}, *ecs.ReadComponent[Position](storage, id))

	assert.Panics(t, func() { view.Spawn(spawnable{}) })
}

func TestViewShapePanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ Pos Position }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			Pos *Position `ecs:"sometimes"`
		}](storage)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			A ecs.EntityId
			B ecs.EntityId
		}](storage)
	})
}

func TestViewIterationOrderIsStable(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	for i := range 5 {
		storage.Spawn(Position{X: float32(i)})
		storage.Spawn(Position{X: float32(i)}, Tag("t"))
		storage.Spawn(Position{X: float32(i)}, Score(i))
	}

	collect := func() []float32 {
		var xs []float32
		for p := range ecs.NewView[struct{ *Position }](storage).Iter() {
			xs = append(xs, p.Position.X)
		}
		return xs
	}

	first := collect()
	assert.Len(t, first, 15)
	for range 10 {
		assert.True(t, slices.Equal(first, collect()))
	}
}
