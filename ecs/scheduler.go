package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats summarizes scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	Frames          uint64
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats summarizes the executions of one system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type registeredSystem struct {
	system System
	stats  SystemStats
}

// Scheduler runs registered systems in registration order against one storage.
type Scheduler struct {
	storage  *Storage
	systems  []*registeredSystem
	commands *Commands
	frames   uint64
}

// NewScheduler returns a scheduler over storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{storage: storage, commands: newCommands()}
}

// Storage returns the storage the scheduler runs against.
func (s *Scheduler) Storage() *Storage { return s.storage }

// Register binds the system's Query and Singleton fields and appends it to
// the frame.
func (s *Scheduler) Register(system System) {
	Bind(system, s.storage)

	name := reflect.TypeOf(system).String()
	if t := reflect.TypeOf(system); t.Kind() == reflect.Pointer {
		name = t.Elem().Name()
	}
	s.systems = append(s.systems, &registeredSystem{
		system: system,
		stats:  SystemStats{Name: name, MinDuration: time.Duration(1<<63 - 1)},
	})
}

// Bind binds every Query and Singleton field of the struct target points to,
// descending into exported struct fields. Register calls it for systems.
func Bind(target any, storage *Storage) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	bindStruct(v.Elem(), storage)
}

func bindStruct(v reflect.Value, storage *Storage) {
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanAddr() || !field.Addr().CanInterface() {
			continue
		}
		if b, ok := field.Addr().Interface().(binder); ok {
			b.bind(storage)
			continue
		}
		if field.Kind() == reflect.Struct {
			bindStruct(field, storage)
		}
	}
}

// Once runs every system once with delta time dt and then flushes the
// commands they queued.
func (s *Scheduler) Once(dt float64) {
	s.frames++
	frame := &UpdateFrame{
		DeltaTime: dt,
		Tick:      s.frames,
		Commands:  s.commands,
		Storage:   s.storage,
	}

	for _, rs := range s.systems {
		start := time.Now()
		rs.system.Execute(frame)
		rs.record(time.Since(start))
	}

	s.commands.Flush(s.storage)
}

func (rs *registeredSystem) record(d time.Duration) {
	st := &rs.stats
	st.ExecutionCount++
	st.LastDuration = d
	st.TotalDuration += d
	st.MinDuration = min(st.MinDuration, d)
	st.MaxDuration = max(st.MaxDuration, d)
}

// Run calls Once at the given interval until ctx is done, passing the real
// elapsed time between ticks.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Once(now.Sub(last).Seconds())
			last = now
		}
	}
}

// GetStats returns a snapshot of the execution statistics.
func (s *Scheduler) GetStats() *SchedulerStats {
	out := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frames,
		Systems:     make([]SystemStats, len(s.systems)),
	}
	for i, rs := range s.systems {
		st := rs.stats
		if st.ExecutionCount > 0 {
			st.AvgDuration = st.TotalDuration / time.Duration(st.ExecutionCount)
		} else {
			st.MinDuration = 0
		}
		out.Systems[i] = st
		out.TotalExecutions += st.ExecutionCount
	}
	return out
}
