package ecs

import "fmt"

// EntityId packs the owning archetype (upper 32 bits) and the row inside that
// archetype (lower 32 bits). An id changes when components are added or removed.
type EntityId uint64

// NewEntityId builds an EntityId from an archetype id and a row index.
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId returns the archetype half of the id.
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index returns the row half of the id.
func (e EntityId) Index() uint32 {
	return uint32(e)
}

func (e EntityId) String() string {
	return fmt.Sprintf("%08x:%d", e.ArchetypeId(), e.Index())
}

// EntityRef follows an entity across archetype moves. Id is zero once the
// entity has been deleted.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}

func (r *EntityRef) invalidate() {
	r.Id = 0
	r.Archetype = nil
}
