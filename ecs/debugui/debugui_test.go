package debugui_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/plus3/pong/ecs"
	"github.com/plus3/pong/ecs/debugui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInput struct {
	mouse, keyboard bool
}

func (f fakeInput) WantCaptureMouse() bool    { return f.mouse }
func (f fakeInput) WantCaptureKeyboard() bool { return f.keyboard }

type Paddle struct{ Y float32 }

type Vec struct{ X, Y float32 }

type Ball struct {
	Velocity Vec
	Spin     *Vec
	LastHit  *ecs.EntityRef
	Hits     uint8
	Served   bool
	note     string
}

func newInspectorStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Paddle](registry)
	ecs.RegisterComponent[Ball](registry)
	debugui.RegisterComponents(registry)
	return ecs.NewStorage(registry)
}

func fieldAt(component any, path string) (debugui.Field, bool) {
	var found debugui.Field
	ok := false
	debugui.WalkFields(component, func(f debugui.Field) bool {
		if f.Path == path && !f.End {
			found, ok = f, true
		}
		return true
	})
	return found, ok
}

func TestImguiSystemDefersRenders(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	debugui.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)
	storage.AddSingleton(debugui.ImguiInputState{})

	var order []string
	storage.Spawn(debugui.ImguiItem{Render: func() { order = append(order, "a") }})
	storage.Spawn(debugui.ImguiItem{Render: func() { order = append(order, "b") }})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&debugui.ImguiSystem{Input: fakeInput{keyboard: true}})
	scheduler.Once(1.0 / 60)

	assert.Equal(t, []string{"a", "b"}, order)

	var state *debugui.ImguiInputState
	require.True(t, storage.ReadSingleton(&state))
	assert.True(t, state.WantCaptureKeyboard)
	assert.False(t, state.WantCaptureMouse)
}

func TestFrameHistory(t *testing.T) {
	h := debugui.NewFrameHistory(3)
	assert.Equal(t, float32(0), h.Average())

	h.Add(10 * time.Millisecond)
	assert.InDelta(t, 10, h.Average(), 0.001)

	h.Add(20 * time.Millisecond)
	h.Add(30 * time.Millisecond)
	h.Add(40 * time.Millisecond)
	assert.InDelta(t, 30, h.Average(), 0.001, "oldest sample is overwritten")
}

func TestArchetypeLines(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Paddle](registry)
	debugui.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	a := storage.Spawn(Paddle{Y: 1})
	b := storage.Spawn(Paddle{Y: 2})
	gone := storage.Spawn(debugui.ImguiItem{})
	storage.Delete(gone)

	lines := debugui.ArchetypeLines(storage)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0].Label, "Paddle (2)")
	assert.ElementsMatch(t, []ecs.EntityId{a, b}, lines[0].Entities)
}

func TestWalkFields(t *testing.T) {
	walk := func(component any, descend bool) []string {
		var events []string
		debugui.WalkFields(component, func(f debugui.Field) bool {
			switch {
			case f.End:
				events = append(events, f.Path+" end")
			case f.Nil:
				events = append(events, f.Path+" nil")
			default:
				events = append(events, f.Path)
			}
			return descend
		})
		return events
	}

	ball := &Ball{Velocity: Vec{X: 1, Y: 2}, note: "hidden"}
	assert.Equal(t, []string{
		"Velocity", "Velocity.X", "Velocity.Y", "Velocity end",
		"Spin nil",
		"LastHit nil",
		"Hits",
		"Served",
	}, walk(ball, true))

	ball.Spin = &Vec{X: 3}
	assert.Equal(t, []string{"Velocity", "Spin", "LastHit nil", "Hits", "Served"}, walk(ball, false))
	assert.Contains(t, walk(ball, true), "Spin.X")

	assert.Empty(t, walk((*Ball)(nil), true))
	assert.Empty(t, walk(3, true))
}

func TestInspectEditsComponents(t *testing.T) {
	storage := newInspectorStorage()
	id := storage.Spawn(Paddle{Y: 1}, Ball{Velocity: Vec{X: 1, Y: 2}})

	views := debugui.Inspect(storage, id)
	require.Len(t, views, 2)
	var ball any
	var types []reflect.Type
	for _, v := range views {
		types = append(types, v.Type)
		if v.Type == reflect.TypeFor[Ball]() {
			ball = v.Component
		}
	}
	assert.ElementsMatch(t, []reflect.Type{reflect.TypeFor[Paddle](), reflect.TypeFor[Ball]()}, types)
	require.NotNil(t, ball)

	f, ok := fieldAt(ball, "Velocity.X")
	require.True(t, ok)
	assert.True(t, debugui.SetNumber(f, 5))
	assert.Equal(t, float32(5), ecs.ReadComponent[Ball](storage, id).Velocity.X)

	hits, ok := fieldAt(ball, "Hits")
	require.True(t, ok)
	assert.False(t, debugui.SetNumber(hits, 300))
	assert.False(t, debugui.SetNumber(hits, -1))
	assert.True(t, debugui.SetNumber(hits, 3))
	assert.Equal(t, uint8(3), ecs.ReadComponent[Ball](storage, id).Hits)

	served, ok := fieldAt(ball, "Served")
	require.True(t, ok)
	assert.False(t, debugui.SetNumber(served, 1))

	spin, ok := fieldAt(ball, "Spin")
	require.True(t, ok)
	assert.False(t, debugui.SetNumber(spin, 1))

	storage.Delete(id)
	assert.Empty(t, debugui.Inspect(storage, id))
}

func TestFormatFieldResolvesRefs(t *testing.T) {
	storage := newInspectorStorage()
	paddle := storage.Spawn(Paddle{Y: 1})
	id := storage.Spawn(Ball{})
	ball := ecs.ReadComponent[Ball](storage, id)
	ball.LastHit = storage.CreateEntityRef(paddle)

	f, ok := fieldAt(ball, "LastHit")
	require.True(t, ok)
	assert.Equal(t, "-> "+paddle.String(), debugui.FormatField(storage, f))

	storage.Delete(paddle)
	assert.Equal(t, "-> (deleted)", debugui.FormatField(storage, f))

	ball.LastHit = nil
	f, ok = fieldAt(ball, "LastHit")
	require.True(t, ok)
	assert.Equal(t, "nil", debugui.FormatField(storage, f))

	f, ok = fieldAt(ball, "Served")
	require.True(t, ok)
	assert.Equal(t, "false", debugui.FormatField(storage, f))
}

func TestEntityBrowserFilter(t *testing.T) {
	storage := newInspectorStorage()
	a := storage.Spawn(Paddle{Y: 1})
	b := storage.Spawn(Paddle{Y: 2})
	item := storage.Spawn(debugui.ImguiItem{})

	browser := &debugui.EntityBrowser{Storage: storage}
	assert.Len(t, browser.Lines(), 2)

	browser.Filter = " PADDLE "
	lines := browser.Lines()
	require.Len(t, lines, 1)
	assert.ElementsMatch(t, []ecs.EntityId{a, b}, lines[0].Entities)

	browser.Filter = b.String()
	lines = browser.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, []ecs.EntityId{b}, lines[0].Entities)

	browser.Filter = item.String()
	lines = browser.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, []ecs.EntityId{item}, lines[0].Entities)

	browser.Filter = "nothing"
	assert.Empty(t, browser.Lines())
}

func TestEntityBrowserSelection(t *testing.T) {
	storage := newInspectorStorage()
	browser := &debugui.EntityBrowser{Storage: storage}

	_, ok := browser.Selected()
	assert.False(t, ok)

	id := storage.Spawn(Paddle{Y: 1})
	browser.Select(id)
	got, ok := browser.Selected()
	require.True(t, ok)
	assert.Equal(t, id, got)

	moved := storage.AddComponent(id, Ball{})
	require.NotEqual(t, id, moved)
	got, ok = browser.Selected()
	require.True(t, ok)
	assert.Equal(t, moved, got, "selection follows the entity into its new archetype")
	assert.Len(t, debugui.Inspect(storage, got), 2)

	storage.Delete(moved)
	_, ok = browser.Selected()
	assert.False(t, ok)

	browser.Select(moved)
	_, ok = browser.Selected()
	assert.False(t, ok)
}
