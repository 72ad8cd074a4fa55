package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported struct field.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
}

// ReflectionCache memoizes the exported fields of component types.
type ReflectionCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{fields: make(map[reflect.Type][]FieldInfo)}
}

// Fields returns the exported fields of t, or nil if t is not a struct.
func (rc *ReflectionCache) Fields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fields[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if cached, ok := rc.fields[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			ft := f.Type
			isPointer := ft.Kind() == reflect.Pointer
			if isPointer {
				ft = ft.Elem()
			}
			fields = append(fields, FieldInfo{Name: f.Name, Type: ft, Index: i, IsPointer: isPointer})
		}
	}
	rc.fields[t] = fields
	return fields
}

var fieldCache = NewReflectionCache()

// maxFieldDepth bounds the walk through nested and pointed-to structs.
const maxFieldDepth = 4

// Field is one leaf or nested struct reached by WalkFields. Value is
// settable when the component was passed by pointer.
type Field struct {
	Path  string
	Name  string
	Depth int
	Value reflect.Value
	Nil   bool
	// End marks the event sent after a descended struct's fields.
	End bool
}

// Nested reports whether the walk descends into f.
func (f Field) Nested() bool {
	return !f.Nil && f.Value.Kind() == reflect.Struct && f.Depth+1 < maxFieldDepth
}

// WalkFields visits the exported fields of component depth first, following
// non-nil pointers. Structs are visited before their fields; returning true
// descends into them, and fn then receives the struct again with End set.
func WalkFields(component any, fn func(Field) bool) {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	walkStruct(v, "", 0, fn)
}

func walkStruct(v reflect.Value, prefix string, depth int, fn func(Field) bool) {
	for _, info := range fieldCache.Fields(v.Type()) {
		fv := v.Field(info.Index)
		path := info.Name
		if prefix != "" {
			path = prefix + "." + info.Name
		}

		f := Field{Path: path, Name: info.Name, Depth: depth, Value: fv}
		if info.IsPointer {
			if fv.IsNil() {
				f.Nil = true
				fn(f)
				continue
			}
			f.Value = fv.Elem()
		}

		if fn(f) && f.Nested() {
			walkStruct(f.Value, path, depth+1, fn)
			f.End = true
			fn(f)
		}
	}
}
