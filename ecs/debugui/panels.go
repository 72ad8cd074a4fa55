package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/pong/ecs"
)

// FrameHistory is a ring buffer of frame times in milliseconds.
type FrameHistory struct {
	samples []float32
	next    int
	filled  bool
}

// NewFrameHistory keeps the last n frames.
func NewFrameHistory(n int) *FrameHistory {
	return &FrameHistory{samples: make([]float32, max(n, 1))}
}

// Add records one frame.
func (h *FrameHistory) Add(dt time.Duration) {
	h.samples[h.next] = float32(dt.Seconds() * 1000)
	h.next = (h.next + 1) % len(h.samples)
	if h.next == 0 {
		h.filled = true
	}
}

// Average returns the mean frame time in milliseconds over the recorded frames.
func (h *FrameHistory) Average() float32 {
	n := h.next
	if h.filled {
		n = len(h.samples)
	}
	if n == 0 {
		return 0
	}
	var sum float32
	for _, s := range h.samples[:n] {
		sum += s
	}
	return sum / float32(n)
}

// StatsPanel shows storage counts, frame times and per-system timings.
type StatsPanel struct {
	Storage   *ecs.Storage
	Scheduler *ecs.Scheduler
	History   *FrameHistory

	last time.Time
}

// NewStatsPanel returns a panel sampling the last historyFrames frames.
func NewStatsPanel(storage *ecs.Storage, scheduler *ecs.Scheduler, historyFrames int) *StatsPanel {
	return &StatsPanel{
		Storage:   storage,
		Scheduler: scheduler,
		History:   NewFrameHistory(historyFrames),
	}
}

// Item wraps the panel for spawning.
func (p *StatsPanel) Item() ImguiItem {
	return ImguiItem{Render: p.Render}
}

func (p *StatsPanel) sample() {
	now := time.Now()
	if !p.last.IsZero() {
		p.History.Add(now.Sub(p.last))
	}
	p.last = now
}

func (p *StatsPanel) Render() {
	p.sample()

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 280), imgui.CondOnce)
	if !imgui.BeginV("Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	stats := p.Storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	avg := p.History.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Frame: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}
	imgui.PlotLinesFloatPtr("##frametime", &p.History.samples[0], int32(len(p.History.samples)))

	if p.Scheduler != nil && imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("Systems", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableHeadersRow()
			for _, s := range p.Scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(s.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.AvgDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}
}
