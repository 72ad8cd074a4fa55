package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// ComponentRegistry maps component types to column constructors. Every type
// stored on an entity must be registered before it is spawned; singletons do
// not need registration.
type ComponentRegistry struct {
	columns map[reflect.Type]func() column
}

// NewComponentRegistry returns an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{columns: make(map[reflect.Type]func() column)}
}

// RegisterComponent makes T storable on entities of storages built from r.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.columns[reflect.TypeFor[T]()] = func() column { return &typedColumn[T]{} }
}

// Registered reports whether t has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.columns[t]
	return ok
}

func (r *ComponentRegistry) newColumn(t reflect.Type) column {
	ctor, ok := r.columns[t]
	if !ok {
		panic("ecs: component type " + t.String() + " is not registered")
	}
	return ctor()
}

// column is the type-erased storage for one component type of one archetype.
// Rows are never moved, so pointers handed out stay valid until the row is
// removed.
type column interface {
	insert(v any) int
	remove(row int)
	pointer(row int) unsafe.Pointer
	get(row int) any
	rows() iter.Seq[int]
	len() int
}

const pageSize = 64

type typedColumn[T any] struct {
	pages []*[pageSize]T
	used  []bool
	free  []int
	live  int
}

func (c *typedColumn[T]) insert(v any) int {
	var value T
	switch x := v.(type) {
	case T:
		value = x
	case *T:
		value = *x
	default:
		panic("ecs: cannot store " + reflect.TypeOf(v).String() + " in column of " + reflect.TypeFor[T]().String())
	}

	var row int
	if n := len(c.free); n > 0 {
		row = c.free[n-1]
		c.free = c.free[:n-1]
		c.used[row] = true
	} else {
		row = len(c.used)
		c.used = append(c.used, true)
		if row/pageSize >= len(c.pages) {
			c.pages = append(c.pages, new([pageSize]T))
		}
	}

	c.pages[row/pageSize][row%pageSize] = value
	c.live++
	return row
}

func (c *typedColumn[T]) remove(row int) {
	if !c.has(row) {
		return
	}
	var zero T
	c.pages[row/pageSize][row%pageSize] = zero
	c.used[row] = false
	c.free = append(c.free, row)
	c.live--
}

func (c *typedColumn[T]) has(row int) bool {
	return row >= 0 && row < len(c.used) && c.used[row]
}

func (c *typedColumn[T]) pointer(row int) unsafe.Pointer {
	if !c.has(row) {
		return nil
	}
	return unsafe.Pointer(&c.pages[row/pageSize][row%pageSize])
}

func (c *typedColumn[T]) get(row int) any {
	if !c.has(row) {
		return nil
	}
	return &c.pages[row/pageSize][row%pageSize]
}

func (c *typedColumn[T]) rows() iter.Seq[int] {
	return func(yield func(int) bool) {
		for row, ok := range c.used {
			if ok && !yield(row) {
				return
			}
		}
	}
}

func (c *typedColumn[T]) len() int {
	return c.live
}
