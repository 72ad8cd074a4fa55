package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/pong/ecs"
)

var entityRefType = reflect.TypeFor[ecs.EntityRef]()

// ComponentView is one component of an inspected entity. Component is a
// pointer into storage, so fields reached through it can be set.
type ComponentView struct {
	Type      reflect.Type
	Component any
}

// Inspect returns the components of the live entity id in archetype order.
func Inspect(storage *ecs.Storage, id ecs.EntityId) []ComponentView {
	a, ok := storage.ArchetypeOf(id)
	if !ok {
		return nil
	}
	views := make([]ComponentView, 0, len(a.Types()))
	for _, t := range a.Types() {
		if c := storage.GetComponent(id, t); c != nil {
			views = append(views, ComponentView{Type: t, Component: c})
		}
	}
	return views
}

// SetNumber writes v into a numeric field. It reports false for
// non-numeric or unsettable fields and for values the field cannot hold.
func SetNumber(f Field, v float64) bool {
	if f.Nil || !f.Value.CanSet() {
		return false
	}
	switch f.Value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f.Value.OverflowInt(int64(v)) {
			return false
		}
		f.Value.SetInt(int64(v))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v < 0 || f.Value.OverflowUint(uint64(v)) {
			return false
		}
		f.Value.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		if f.Value.OverflowFloat(v) {
			return false
		}
		f.Value.SetFloat(v)
	default:
		return false
	}
	return true
}

// FormatField renders a field as read-only text. Entity refs are resolved
// against storage.
func FormatField(storage *ecs.Storage, f Field) string {
	if f.Nil {
		return "nil"
	}
	v := f.Value
	if v.Type() == entityRefType {
		ref := v.Addr().Interface().(*ecs.EntityRef)
		if id, ok := storage.ResolveEntityRef(ref); ok {
			return "-> " + id.String()
		}
		return "-> (deleted)"
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		return fmt.Sprintf("map[%d items]", v.Len())
	case reflect.Func:
		if v.IsNil() {
			return "nil"
		}
		return "func"
	case reflect.Interface:
		if v.IsNil() {
			return "nil"
		}
		return fmt.Sprintf("%T", v.Interface())
	}
	return fmt.Sprint(v.Interface())
}

// ComponentInspector shows and edits the components of the entity selected
// in Browser.
type ComponentInspector struct {
	Storage *ecs.Storage
	Browser *EntityBrowser
}

// Item wraps the inspector for spawning.
func (ci *ComponentInspector) Item() ImguiItem {
	return ImguiItem{Render: ci.Render}
}

func (ci *ComponentInspector) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(340, 180), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(300, 260), imgui.CondOnce)
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	id, ok := ci.Browser.Selected()
	if !ok {
		imgui.Text("No entity selected")
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", id))
	imgui.Text(fmt.Sprintf("Archetype: 0x%X", id.ArchetypeId()))
	imgui.Separator()

	for _, view := range Inspect(ci.Storage, id) {
		name := view.Type.String()
		if imgui.TreeNodeStr(name) {
			ci.renderFields(name, view.Component)
			imgui.TreePop()
		}
	}
}

func (ci *ComponentInspector) renderFields(scope string, component any) {
	WalkFields(component, func(f Field) bool {
		if f.End {
			imgui.TreePop()
			return false
		}
		label := "##" + scope + "." + f.Path
		if !f.Nil && f.Value.Type() == entityRefType {
			imgui.Text(fmt.Sprintf("%s: %s", f.Name, FormatField(ci.Storage, f)))
			return false
		}
		if f.Nested() {
			return imgui.TreeNodeStr(f.Name + label)
		}
		ci.renderLeaf(label, f)
		return false
	})
}

func (ci *ComponentInspector) renderLeaf(label string, f Field) {
	if f.Nil {
		imgui.Text(fmt.Sprintf("%s: nil", f.Name))
		return
	}

	v := f.Value
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := int32(v.Int())
		ci.fieldLabel(f.Name)
		if imgui.InputInt(label, &n) {
			SetNumber(f, float64(n))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := int32(v.Uint())
		ci.fieldLabel(f.Name)
		if imgui.InputInt(label, &n) {
			SetNumber(f, float64(n))
		}

	case reflect.Float32, reflect.Float64:
		x := float32(v.Float())
		ci.fieldLabel(f.Name)
		if imgui.InputFloat(label, &x) {
			SetNumber(f, float64(x))
		}

	case reflect.Bool:
		b := v.Bool()
		if imgui.Checkbox(f.Name+label, &b) && v.CanSet() {
			v.SetBool(b)
		}

	case reflect.String:
		s := v.String()
		ci.fieldLabel(f.Name)
		if imgui.InputTextWithHint(label, "", &s, imgui.InputTextFlagsNone, nil) && v.CanSet() {
			v.SetString(s)
		}

	default:
		imgui.Text(fmt.Sprintf("%s: %s", f.Name, FormatField(ci.Storage, f)))
	}
}

func (ci *ComponentInspector) fieldLabel(name string) {
	imgui.Text(name + ":")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
}
