package ecs

import (
	"reflect"
	"unsafe"
	"weak"

	"github.com/kamstrup/intmap"
)

// Storage owns all archetypes and singletons of one world.
type Storage struct {
	registry   *ComponentRegistry
	archetypes *intmap.Map[uint32, *Archetype]
	ordered    []*Archetype

	singletons     map[reflect.Type]*singletonEntry
	singletonOrder []reflect.Type

	// version changes on every structural mutation so cached queries know
	// when to rebuild.
	version uint64
}

type singletonEntry struct {
	typ reflect.Type
	ptr unsafe.Pointer
}

// NewStorage creates an empty storage using registry for component columns.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		archetypes: intmap.New[uint32, *Archetype](16),
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the registry the storage was built with.
func (s *Storage) Registry() *ComponentRegistry { return s.registry }

// Archetypes returns all archetypes in creation order.
func (s *Storage) Archetypes() []*Archetype { return s.ordered }

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	types, id := canonicalTypes(types)
	if a, ok := s.archetypes.Get(id); ok {
		return a
	}
	a := newArchetype(id, types, s.registry)
	s.archetypes.Put(id, a)
	s.ordered = append(s.ordered, a)
	return a
}

func (s *Storage) lookup(id EntityId) (*Archetype, bool) {
	a, ok := s.archetypes.Get(id.ArchetypeId())
	if !ok || !a.alive(id.Index()) {
		return nil, false
	}
	return a, true
}

// Spawn creates an entity from the given component values (or pointers to
// them) and returns its id.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("ecs: cannot spawn an entity without components")
	}
	types := make([]reflect.Type, len(components))
	for i, c := range components {
		types[i] = componentType(c)
	}
	a := s.archetypeFor(types)
	row := a.spawn(components)
	s.version++
	return NewEntityId(a.id, row)
}

// Delete removes the entity. Unknown or already deleted ids are ignored.
func (s *Storage) Delete(id EntityId) {
	a, ok := s.lookup(id)
	if !ok {
		return
	}
	a.remove(id.Index())
	s.version++
}

// ArchetypeOf returns the archetype holding the live entity id.
func (s *Storage) ArchetypeOf(id EntityId) (*Archetype, bool) {
	return s.lookup(id)
}

// Alive reports whether id refers to a live entity.
func (s *Storage) Alive(id EntityId) bool {
	_, ok := s.lookup(id)
	return ok
}

// AddComponent moves the entity into the archetype that also holds
// component's type and returns the new id. Adding a type the entity already
// has overwrites the value in place.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	a, ok := s.lookup(id)
	if !ok {
		return 0
	}
	t := componentType(component)
	if idx := a.columnIndex(t); idx >= 0 {
		reflect.NewAt(t, a.columns[idx].pointer(int(id.Index()))).Elem().Set(reflect.ValueOf(valueOf(component)))
		return id
	}
	types := append(cloneTypes(a.types), t)
	return s.move(id, a, types, component)
}

// RemoveComponent moves the entity into the archetype without t and returns
// the new id. Removing the last component deletes the entity and returns 0.
func (s *Storage) RemoveComponent(id EntityId, t reflect.Type) EntityId {
	a, ok := s.lookup(id)
	if !ok || !a.HasComponent(t) {
		return id
	}
	types := make([]reflect.Type, 0, len(a.types)-1)
	for _, other := range a.types {
		if other != t {
			types = append(types, other)
		}
	}
	if len(types) == 0 {
		s.Delete(id)
		return 0
	}
	return s.move(id, a, types, nil)
}

func (s *Storage) move(id EntityId, from *Archetype, types []reflect.Type, extra any) EntityId {
	to := s.archetypeFor(types)
	components := make([]any, 0, len(to.types))
	for _, t := range to.types {
		if extra != nil && t == componentType(extra) {
			components = append(components, extra)
			continue
		}
		components = append(components, reflect.NewAt(t, from.columns[from.columnIndex(t)].pointer(int(id.Index()))).Elem().Interface())
	}
	newId := NewEntityId(to.id, to.spawn(components))

	// Detach the ref before removal so the old row does not invalidate it.
	if wp, ok := from.refs.Get(id); ok {
		from.refs.Del(id)
		if ref := wp.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = to
			to.refs.Put(newId, wp)
		}
	}
	from.remove(id.Index())
	s.version++
	return newId
}

// GetComponent returns a pointer (as any) to the component of type t, or nil.
func (s *Storage) GetComponent(id EntityId, t reflect.Type) any {
	a, ok := s.lookup(id)
	if !ok {
		return nil
	}
	return a.get(id.Index(), t)
}

// HasComponent reports whether the live entity id has a component of type t.
func (s *Storage) HasComponent(id EntityId, t reflect.Type) bool {
	a, ok := s.lookup(id)
	return ok && a.HasComponent(t)
}

// CreateEntityRef returns the shared ref for id, creating it on first use.
// Returns nil for dead ids.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	a, ok := s.lookup(id)
	if !ok {
		return nil
	}
	if wp, ok := a.refs.Get(id); ok {
		if ref := wp.Value(); ref != nil {
			return ref
		}
	}
	ref := &EntityRef{Id: id, Archetype: a}
	a.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the current id behind ref and whether it is still alive.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if ref == nil || ref.Id == 0 {
		return 0, false
	}
	return ref.Id, s.Alive(ref.Id)
}

// AddSingleton stores value as the singleton of its type. A pointer value is
// adopted as is; a plain value is copied. Replacing an existing singleton
// writes through the existing slot so cached Singleton accessors stay valid.
func (s *Storage) AddSingleton(value any) {
	t := reflect.TypeOf(value)
	if t == nil {
		panic("ecs: nil singleton")
	}
	var src reflect.Value
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		src = reflect.ValueOf(value)
	}

	if entry, ok := s.singletons[t]; ok {
		dst := reflect.NewAt(t, entry.ptr).Elem()
		if src.IsValid() {
			dst.Set(src.Elem())
		} else {
			dst.Set(reflect.ValueOf(value))
		}
		return
	}

	if !src.IsValid() {
		src = reflect.New(t)
		src.Elem().Set(reflect.ValueOf(value))
	}
	s.singletons[t] = &singletonEntry{typ: t, ptr: src.UnsafePointer()}
	s.singletonOrder = append(s.singletonOrder, t)
}

// ReadSingleton points *target at the singleton of the target's element type.
// target must be a **T. Returns false when no such singleton exists.
func (s *Storage) ReadSingleton(target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Pointer {
		panic("ecs: ReadSingleton needs a pointer to a pointer")
	}
	t := rv.Elem().Type().Elem()
	entry := s.getSingletonEntry(t)
	if entry == nil {
		return false
	}
	rv.Elem().Set(reflect.NewAt(t, entry.ptr))
	return true
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// ComponentReader is implemented by Storage.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the T component of the entity, or nil.
func ReadComponent[T any](reader ComponentReader, id EntityId) *T {
	c, _ := reader.GetComponent(id, reflect.TypeFor[T]()).(*T)
	return c
}

func valueOf(component any) any {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return component
}

func cloneTypes(types []reflect.Type) []reflect.Type {
	return append(make([]reflect.Type, 0, len(types)+1), types...)
}
