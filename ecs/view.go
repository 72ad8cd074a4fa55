package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// View matches entities against a struct shape. T must be a struct whose
// fields are pointers to component types, plus at most one EntityId field
// that receives the entity's id. Named pointer fields tagged `ecs:"optional"`
// may be nil; every other pointer field is required.
type View[T any] struct {
	storage  *Storage
	fields   []viewField
	idOffset uintptr
	hasId    bool
}

type viewField struct {
	typ      reflect.Type
	offset   uintptr
	optional bool
}

// NewView parses T and binds it to storage. It panics on malformed shapes.
func NewView[T any](storage *Storage) *View[T] {
	shape := reflect.TypeFor[T]()
	if shape.Kind() != reflect.Struct {
		panic("ecs: view type must be a struct, got " + shape.String())
	}

	v := &View[T]{storage: storage}
	for i := range shape.NumField() {
		f := shape.Field(i)
		if f.Type == entityIdType {
			if v.hasId {
				panic("ecs: view " + shape.String() + " has more than one EntityId field")
			}
			v.hasId, v.idOffset = true, f.Offset
			continue
		}
		if f.Type.Kind() != reflect.Pointer {
			panic("ecs: view field " + f.Name + " must be a pointer to a component")
		}

		optional := false
		switch tag := f.Tag.Get("ecs"); tag {
		case "":
		case "optional":
			if f.Anonymous {
				panic("ecs: embedded view field " + f.Name + " cannot be optional")
			}
			optional = true
		default:
			panic("ecs: unknown ecs tag " + tag + " on " + f.Name)
		}

		v.fields = append(v.fields, viewField{typ: f.Type.Elem(), offset: f.Offset, optional: optional})
	}
	return v
}

func (v *View[T]) matches(a *Archetype) bool {
	for _, f := range v.fields {
		if !f.optional && !a.HasComponent(f.typ) {
			return false
		}
	}
	return true
}

// columnsFor resolves, per view field, the archetype column index (-1 if absent).
func (v *View[T]) columnsFor(a *Archetype) []int {
	cols := make([]int, len(v.fields))
	for i, f := range v.fields {
		cols[i] = a.columnIndex(f.typ)
	}
	return cols
}

func (v *View[T]) fill(out *T, a *Archetype, cols []int, row uint32) bool {
	base := unsafe.Pointer(out)
	for i, f := range v.fields {
		var p unsafe.Pointer
		if cols[i] >= 0 {
			p = a.columns[cols[i]].pointer(int(row))
		}
		if p == nil && !f.optional {
			return false
		}
		*(*unsafe.Pointer)(unsafe.Add(base, f.offset)) = p
	}
	if v.hasId {
		*(*EntityId)(unsafe.Add(base, v.idOffset)) = NewEntityId(a.id, row)
	}
	return true
}

// Get returns the populated shape for id, or nil if the entity is dead or
// misses a required component.
func (v *View[T]) Get(id EntityId) *T {
	a, ok := v.storage.lookup(id)
	if !ok || !v.matches(a) {
		return nil
	}
	var out T
	if !v.fill(&out, a, v.columnsFor(a), id.Index()) {
		return nil
	}
	return &out
}

// GetRef is Get for an EntityRef.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	id, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(id)
}

// Iter walks every matching entity. Structural changes while iterating are
// not allowed; queue them on Commands instead.
func (v *View[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, a := range v.storage.ordered {
			if !v.matches(a) {
				continue
			}
			if !v.iterArchetype(a, yield) {
				return
			}
		}
	}
}

func (v *View[T]) iterArchetype(a *Archetype, yield func(T) bool) bool {
	if len(a.columns) == 0 {
		return true
	}
	cols := v.columnsFor(a)
	var out T
	for row := range a.columns[0].rows() {
		if !v.fill(&out, a, cols, uint32(row)) {
			continue
		}
		if !yield(out) {
			return false
		}
	}
	return true
}

// Spawn creates an entity from the non-nil component pointers in data.
func (v *View[T]) Spawn(data T) EntityId {
	base := unsafe.Pointer(&data)
	components := make([]any, 0, len(v.fields))
	for _, f := range v.fields {
		p := *(*unsafe.Pointer)(unsafe.Add(base, f.offset))
		if p == nil {
			if !f.optional {
				panic("ecs: required component " + f.typ.String() + " is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(f.typ, p).Elem().Interface())
	}
	return v.storage.Spawn(components...)
}
