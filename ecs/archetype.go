package ecs

import (
	"iter"
	"reflect"
	"slices"
	"strings"
	"weak"

	"github.com/kamstrup/intmap"
)

// Archetype stores every entity that has exactly the same set of component
// types, one column per type.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []column
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

func newArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]column, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](8),
	}
	for i, t := range types {
		a.columns[i] = registry.newColumn(t)
	}
	return a
}

// ID returns the archetype id, a hash of its component types.
func (a *Archetype) ID() uint32 { return a.id }

// Types returns the component types in canonical order.
func (a *Archetype) Types() []reflect.Type { return a.types }

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.columns) == 0 {
		return 0
	}
	return a.columns[0].len()
}

// HasComponent reports whether t is one of the archetype's component types.
func (a *Archetype) HasComponent(t reflect.Type) bool {
	return a.columnIndex(t) >= 0
}

func (a *Archetype) columnIndex(t reflect.Type) int {
	return slices.Index(a.types, t)
}

// spawn inserts one row. components must hold exactly one value per type.
func (a *Archetype) spawn(components []any) uint32 {
	row := -1
	for _, c := range components {
		idx := a.columnIndex(componentType(c))
		if idx < 0 {
			panic("ecs: component " + componentType(c).String() + " does not belong to archetype " + a.String())
		}
		got := a.columns[idx].insert(c)
		if row >= 0 && got != row {
			panic("ecs: archetype columns out of step")
		}
		row = got
	}
	return uint32(row)
}

func (a *Archetype) get(row uint32, t reflect.Type) any {
	idx := a.columnIndex(t)
	if idx < 0 {
		return nil
	}
	return a.columns[idx].get(int(row))
}

func (a *Archetype) remove(row uint32) {
	id := NewEntityId(a.id, row)
	if wp, ok := a.refs.Get(id); ok {
		if ref := wp.Value(); ref != nil {
			ref.invalidate()
		}
		a.refs.Del(id)
	}
	for _, c := range a.columns {
		c.remove(int(row))
	}
}

func (a *Archetype) alive(row uint32) bool {
	return len(a.columns) > 0 && a.columns[0].pointer(int(row)) != nil
}

// Iter yields the ids of all live entities.
func (a *Archetype) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}
		for row := range a.columns[0].rows() {
			if !yield(NewEntityId(a.id, uint32(row))) {
				return
			}
		}
	}
}

func (a *Archetype) String() string {
	names := make([]string, len(a.types))
	for i, t := range a.types {
		names[i] = t.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

func componentType(c any) reflect.Type {
	t := reflect.TypeOf(c)
	if t == nil {
		panic("ecs: nil component")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func:
		panic("ecs: component " + t.String() + " must be a value type")
	}
	return t
}

// canonicalTypes sorts types by name and derives the archetype id from them.
func canonicalTypes(types []reflect.Type) ([]reflect.Type, uint32) {
	slices.SortFunc(types, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})
	return types, hashTypes(types)
}

// hashTypes is FNV-1a over the runtime type descriptors.
func hashTypes(types []reflect.Type) uint32 {
	const (
		offset uint32 = 2166136261
		prime  uint32 = 16777619
	)
	h := offset
	for _, t := range types {
		p := uint64(uintptr(dataPointer(t)))
		h ^= uint32(p) ^ uint32(p>>32)
		h *= prime
	}
	return h
}
