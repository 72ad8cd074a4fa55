package debugui

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/pong/ecs"
)

// EntityBrowser lists live entities grouped by archetype and keeps one of
// them selected. The selection is held as an EntityRef so it survives the
// entity moving between archetypes.
type EntityBrowser struct {
	Storage *ecs.Storage
	Filter  string

	selected *ecs.EntityRef
}

// Item wraps the browser for spawning.
func (b *EntityBrowser) Item() ImguiItem {
	return ImguiItem{Render: b.Render}
}

// Select makes id the selected entity. Dead ids clear the selection.
func (b *EntityBrowser) Select(id ecs.EntityId) {
	b.selected = b.Storage.CreateEntityRef(id)
}

// Selected returns the current id of the selected entity, if it is alive.
func (b *EntityBrowser) Selected() (ecs.EntityId, bool) {
	return b.Storage.ResolveEntityRef(b.selected)
}

// Lines returns the archetype lines matching Filter. An archetype whose
// component names match keeps all its entities; otherwise only entities
// whose id matches are kept.
func (b *EntityBrowser) Lines() []ArchetypeLine {
	lines := ArchetypeLines(b.Storage)
	filter := strings.ToLower(strings.TrimSpace(b.Filter))
	if filter == "" {
		return lines
	}

	out := lines[:0]
	for _, line := range lines {
		names, _, _ := strings.Cut(line.Label, " (")
		if strings.Contains(strings.ToLower(names), filter) {
			out = append(out, line)
			continue
		}
		var ids []ecs.EntityId
		for _, id := range line.Entities {
			if strings.Contains(id.String(), filter) {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			line.Entities = ids
			out = append(out, line)
		}
	}
	return out
}

func (b *EntityBrowser) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 300), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 220), imgui.CondOnce)
	if !imgui.BeginV("Entities", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	imgui.InputTextWithHint("##filter", "Filter...", &b.Filter, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear") {
		b.Filter = ""
	}

	current, hasSelection := b.Selected()
	total := 0
	for _, line := range b.Lines() {
		total += len(line.Entities)
		if !imgui.TreeNodeStr(line.Label) {
			continue
		}
		for _, id := range line.Entities {
			if imgui.SelectableBoolV(id.String(), hasSelection && id == current, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				b.Select(id)
			}
		}
		imgui.TreePop()
	}
	imgui.Text(fmt.Sprintf("Total: %d entities", total))
}

// ArchetypeLine is one archetype row of the entity browser.
type ArchetypeLine struct {
	Label    string
	Entities []ecs.EntityId
}

// ArchetypeLines groups the live entities of storage by archetype, skipping
// empty archetypes.
func ArchetypeLines(storage *ecs.Storage) []ArchetypeLine {
	var lines []ArchetypeLine
	for _, a := range storage.Archetypes() {
		if a.Len() == 0 {
			continue
		}
		names := make([]string, 0, len(a.Types()))
		for _, t := range a.Types() {
			names = append(names, t.Name())
		}
		line := ArchetypeLine{Label: fmt.Sprintf("%s (%d)##%x", strings.Join(names, ", "), a.Len(), a.ID())}
		for id := range a.Iter() {
			line.Entities = append(line.Entities, id)
		}
		lines = append(lines, line)
	}
	return lines
}
