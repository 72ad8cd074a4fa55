package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/pong/ecs"
	"github.com/plus3/pong/ecs/debugui"
)

// EventKind classifies a polled event.
type EventKind int

const (
	// EventNone means the queue is empty.
	EventNone EventKind = iota
	EventClosed
	EventKeyPressed
	EventOther
)

// Event is one window or keyboard event.
type Event struct {
	Kind EventKind
	Key  ebiten.Key
}

// EventSource yields pending events one at a time.
type EventSource interface {
	PollEvent() Event
}

// DrainEvents polls src into input until it yields something other than a
// close or key press, and returns how many events were consumed.
func DrainEvents(src EventSource, input *FrameInput) int {
	n := 0
	for {
		ev := src.PollEvent()
		switch ev.Kind {
		case EventClosed:
			input.CloseRequested = true
		case EventKeyPressed:
			input.Keys = append(input.Keys, ev.Key)
		default:
			return n
		}
		n++
	}
}

// EventQueue is an in-memory EventSource.
type EventQueue struct {
	events []Event
}

// Push appends events to the queue.
func (q *EventQueue) Push(events ...Event) {
	q.events = append(q.events, events...)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int { return len(q.events) }

func (q *EventQueue) PollEvent() Event {
	if len(q.events) == 0 {
		return Event{Kind: EventNone}
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev
}

// EbitenEvents turns ebiten's polled input state into queued events.
// Refresh must be called once per tick before draining.
type EbitenEvents struct {
	EventQueue
	keys []ebiten.Key
}

// Refresh queues a close event if the window close button was pressed and a
// key event for every key pressed since the previous tick.
func (e *EbitenEvents) Refresh() {
	if ebiten.IsWindowBeingClosed() {
		e.Push(Event{Kind: EventClosed})
	}
	e.keys = inpututil.AppendJustPressedKeys(e.keys[:0])
	for _, k := range e.keys {
		e.Push(Event{Kind: EventKeyPressed, Key: k})
	}
}

// EventSystem closes the window on request and copies this tick's keys into
// every player's queue. Keys are withheld while the debug overlay has the
// keyboard.
type EventSystem struct {
	Input   ecs.Singleton[FrameInput]
	Window  ecs.Singleton[WindowState]
	Imgui   ecs.Singleton[debugui.ImguiInputState]
	Players ecs.Query[struct{ *PlayerContext }]
}

func (s *EventSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	if input.CloseRequested {
		s.Window.Get().Close("window closed")
	}
	if imgui := s.Imgui.Get(); imgui != nil && imgui.WantCaptureKeyboard {
		return
	}
	if len(input.Keys) == 0 {
		return
	}
	for p := range s.Players.Iter() {
		p.PlayerContext.Keys = append(p.PlayerContext.Keys, input.Keys...)
	}
}
