package ecs

import "reflect"

// Commands buffers structural changes made while systems run. The Scheduler
// flushes it after the last system of a frame: deletes first, then component
// removals and additions, then spawns, then deferred functions.
type Commands struct {
	spawns  [][]any
	deletes []EntityId
	adds    []componentChange
	removes []componentRemoval
	defers  []func()
}

type componentChange struct {
	entity    EntityId
	component any
}

type componentRemoval struct {
	entity EntityId
	typ    reflect.Type
}

func newCommands() *Commands {
	return &Commands{}
}

// Spawn queues a new entity.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues the removal of entity.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues adding component to entity.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, componentChange{entity: entity, component: component})
}

// RemoveComponent queues removing the component of type t from entity.
func (c *Commands) RemoveComponent(entity EntityId, t reflect.Type) {
	c.removes = append(c.removes, componentRemoval{entity: entity, typ: t})
}

// Defer queues fn to run after all structural changes of the frame.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Pending reports whether anything is queued.
func (c *Commands) Pending() bool {
	return len(c.spawns)+len(c.deletes)+len(c.adds)+len(c.removes)+len(c.defers) > 0
}

// Flush applies everything queued to storage and empties the buffer.
// Changes targeting an entity deleted in the same flush are dropped.
func (c *Commands) Flush(storage *Storage) {
	deleted := make(map[EntityId]struct{}, len(c.deletes))
	for _, id := range c.deletes {
		storage.Delete(id)
		deleted[id] = struct{}{}
	}

	// An entity changes id when it moves archetype. Queued ids are all
	// pre-flush ids, so track where each one currently lives.
	current := make(map[EntityId]EntityId)
	resolve := func(id EntityId) EntityId {
		if now, ok := current[id]; ok {
			return now
		}
		return id
	}

	for _, r := range c.removes {
		if _, gone := deleted[r.entity]; gone {
			continue
		}
		current[r.entity] = storage.RemoveComponent(resolve(r.entity), r.typ)
	}
	for _, a := range c.adds {
		if _, gone := deleted[a.entity]; gone {
			continue
		}
		current[a.entity] = storage.AddComponent(resolve(a.entity), a.component)
	}
	for _, components := range c.spawns {
		storage.Spawn(components...)
	}
	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
