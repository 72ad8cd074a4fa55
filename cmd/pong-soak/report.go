package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/plus3/pong/ecs"
	"github.com/plus3/pong/game"
)

// Report is the summary printed after a soak run.
type Report struct {
	// Configuration
	Duration  time.Duration
	TPS       int
	BallSpeed float64
	WinScore  int
	Seed      uint64

	// Results
	Elapsed        time.Duration
	Score          game.Score
	Scheduler      *ecs.SchedulerStats
	Storage        *ecs.StorageStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// TicksPerSecond is the achieved simulation rate.
func (r *Report) TicksPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Scheduler.Frames) / r.Elapsed.Seconds()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Pong Soak Report

## Run Configuration
- **Run Duration:** {{.Duration}}
- **Target TPS:** {{if .TPS}}{{.TPS}}{{else}}unthrottled{{end}}
- **Ball Speed:** {{.BallSpeed}}
- **Win Score:** {{.WinScore}}
- **Seed:** {{.Seed}}

## Match
- **Goals:** {{.Score.Goals}}
- **Points:** blue {{index .Score.Points 0}} : {{index .Score.Points 1}} green
- **Matches:** blue {{index .Score.Matches 0}} : {{index .Score.Matches 1}} green

## Scheduler
- **Ticks:** {{.Scheduler.Frames}} in {{.Elapsed}} ({{printf "%.1f" .TicksPerSecond}}/s)
- **System Executions:** {{.Scheduler.TotalExecutions}}

| System | Runs | Avg | Min | Max |
|--------|------|-----|-----|-----|
{{- range .Scheduler.Systems}}
| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} |
{{- end}}

## Storage
- **Entities:** {{.Storage.TotalEntityCount}} in {{.Storage.ArchetypeCount}} archetypes
{{- range .Storage.ArchetypeBreakdown}}
  - {{.ID}}: {{join .ComponentTypes}} ({{.EntityCount}})
{{- end}}
- **Singletons:** {{join .Storage.SingletonTypes}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"join": func(names []string) string {
			if len(names) == 0 {
				return "none"
			}
			return strings.Join(names, ", ")
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	return tmpl.Execute(w, r)
}
