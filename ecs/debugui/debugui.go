// Package debugui renders Dear ImGui windows from ECS entities. Any entity
// carrying an ImguiItem gets its Render function called once per frame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/pong/ecs"
)

// ImguiItem is a component holding a Dear ImGui render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState is a singleton mirroring whether ImGui wants the mouse or
// keyboard this frame. Game input systems should ignore keys while
// WantCaptureKeyboard is set.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// InputSource reports ImGui's capture flags. ImguiIO adapts the live ImGui
// context; tests substitute their own.
type InputSource interface {
	WantCaptureMouse() bool
	WantCaptureKeyboard() bool
}

// ImguiIO reads capture flags from the current ImGui context.
type ImguiIO struct{}

func (ImguiIO) WantCaptureMouse() bool    { return imgui.CurrentIO().WantCaptureMouse() }
func (ImguiIO) WantCaptureKeyboard() bool { return imgui.CurrentIO().WantCaptureKeyboard() }

// ImguiSystem copies the capture flags into ImguiInputState and queues every
// ImguiItem render function to run after the frame's structural changes.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]

	// Input defaults to ImguiIO.
	Input InputSource
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if i.Input == nil {
		i.Input = ImguiIO{}
	}
	if state := i.InputState.Get(); state != nil {
		state.WantCaptureMouse = i.Input.WantCaptureMouse()
		state.WantCaptureKeyboard = i.Input.WantCaptureKeyboard()
	}

	for item := range i.Items.Iter() {
		frame.Commands.Defer(item.ImguiItem.Render)
	}
}

// RegisterComponents registers the component types this package spawns.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
}
