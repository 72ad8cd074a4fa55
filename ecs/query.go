package ecs

import "iter"

// Query is a View that caches its matches. The cache is rebuilt only after the
// storage changes structurally, so repeated iteration inside a frame is a
// slice walk. As a System field it is bound by the Scheduler on registration.
type Query[T any] struct {
	view    *View[T]
	version uint64
	valid   bool
	items   []T
}

// NewQuery returns a query over storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.bind(storage)
	return q
}

func (q *Query[T]) bind(storage *Storage) {
	q.view = NewView[T](storage)
	q.valid = false
	q.items = q.items[:0]
}

func (q *Query[T]) refresh() {
	if q.view == nil {
		panic("ecs: query used before it was bound to a storage")
	}
	if q.valid && q.version == q.view.storage.version {
		return
	}
	q.items = q.items[:0]
	for item := range q.view.Iter() {
		q.items = append(q.items, item)
	}
	q.version = q.view.storage.version
	q.valid = true
}

// Iter yields every matching entity.
func (q *Query[T]) Iter() iter.Seq[T] {
	q.refresh()
	items := q.items
	return func(yield func(T) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	q.refresh()
	return len(q.items)
}

// First returns the first match, if any.
func (q *Query[T]) First() (T, bool) {
	q.refresh()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}
