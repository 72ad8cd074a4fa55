package ecs_test

import (
	"fmt"

	"github.com/plus3/pong/ecs"
)

type Gravity struct {
	G float32
}

type FallSystem struct {
	Bodies ecs.Query[struct {
		*Position
		*Velocity
	}]
	Gravity ecs.Singleton[Gravity]
}

func (s *FallSystem) Execute(frame *ecs.UpdateFrame) {
	g := s.Gravity.Get().G
	for body := range s.Bodies.Iter() {
		body.Velocity.DY += g * float32(frame.DeltaTime)
		body.Position.Y += body.Velocity.DY * float32(frame.DeltaTime)
	}
}

// ExampleScheduler builds a two-frame loop. Query and Singleton fields are
// bound when the system is registered.
func ExampleScheduler() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	storage := ecs.NewStorage(registry)
	storage.AddSingleton(Gravity{G: 10})

	id := storage.Spawn(Position{}, Velocity{})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&FallSystem{})
	scheduler.Once(1)
	scheduler.Once(1)

	fmt.Println(ecs.ReadComponent[Position](storage, id).Y)
	// Output: 30
}

// ExampleStorage_CreateEntityRef keeps track of an entity while it changes shape.
func ExampleStorage_CreateEntityRef() {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1})
	ref := storage.CreateEntityRef(id)

	storage.AddComponent(id, Name{Value: "paddle"})
	current, ok := storage.ResolveEntityRef(ref)
	fmt.Println(ok, ecs.ReadComponent[Name](storage, current).Value)

	storage.Delete(current)
	_, ok = storage.ResolveEntityRef(ref)
	fmt.Println(ok)
	// Output:
	// true paddle
	// false
}
