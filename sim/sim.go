// Package sim is a self-contained host harness for the improvement
// engine: a flat grid world with placed objects, ground stacks, workers,
// and an exclusive-reservation table, driven by a cooperative tick
// scheduler. Pathfinding is not modelled; every stack is reachable and
// distance is manhattan.
package sim

import (
	"fmt"
	"sort"

	"github.com/kestran/refit/engine"
	"github.com/kestran/refit/engine/resolve"
	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// Stack is a ground stack of one material.
type Stack struct {
	ID        string
	Material  string
	Count     int
	Pos       types.Point
	Forbidden bool
}

// Worker is a simulated labourer implementing resolve.Worker.
type Worker struct {
	def      types.WorkerDef
	building string // entity ID of the current build job, "" when idle
}

func (w *Worker) ID() string   { return w.def.ID }
func (w *Worker) Name() string { return w.def.Name }
func (w *Worker) Skill() int   { return w.def.Skill }

func (w *Worker) Prop(name string) bool {
	return w.def.Props[name]
}

func (w *Worker) CategoryEnabled(category string) bool {
	for _, c := range w.def.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Building returns the entity the worker is currently building, if any.
func (w *Worker) Building() string { return w.building }

// SetProp toggles a worker prop (buffs consumed by quality modifiers).
func (w *Worker) SetProp(name string, v bool) {
	if w.def.Props == nil {
		w.def.Props = map[string]bool{}
	}
	w.def.Props[name] = v
}

// World holds all mutable host-side state and implements engine.Host.
type World struct {
	Defs *state.Defs

	qualities    map[string]types.QualityTier
	removed      map[string]bool
	flagged      map[string]bool
	stacks       map[string]*Stack
	reservations map[string]string // resource → holder
	designations map[string]bool
	workers      []*Worker

	nextStackID int
	tick        int
}

// NewWorld builds the world from scenario definitions.
func NewWorld(defs *state.Defs) *World {
	w := &World{
		Defs:         defs,
		qualities:    map[string]types.QualityTier{},
		removed:      map[string]bool{},
		flagged:      map[string]bool{},
		stacks:       map[string]*Stack{},
		reservations: map[string]string{},
		designations: map[string]bool{},
	}
	for id, obj := range defs.Objects {
		w.qualities[id] = obj.Quality
	}
	for _, def := range defs.Workers {
		w.workers = append(w.workers, &Worker{def: def})
	}
	sort.Slice(w.workers, func(i, j int) bool { return w.workers[i].def.ID < w.workers[j].def.ID })
	for _, sp := range defs.Stockpiles {
		w.addStack(sp.Material, sp.Count, sp.Pos)
	}
	return w
}

func (w *World) addStack(material string, count int, pos types.Point) *Stack {
	// Merge into an existing stack of the same material at the same spot.
	for _, s := range w.stacks {
		if s.Material == material && s.Pos == pos {
			s.Count += count
			return s
		}
	}
	w.nextStackID++
	s := &Stack{
		ID:       fmt.Sprintf("stack-%s-%d", material, w.nextStackID),
		Material: material,
		Count:    count,
		Pos:      pos,
	}
	w.stacks[s.ID] = s
	return s
}

// Tick returns the number of scheduler steps taken.
func (w *World) Tick() int { return w.tick }

// WorkerList returns the simulated workers, sorted by ID.
func (w *World) WorkerList() []*Worker { return w.workers }

// WorkerByID finds a worker by ID.
func (w *World) WorkerByID(id string) (*Worker, bool) {
	for _, wk := range w.workers {
		if wk.def.ID == id {
			return wk, true
		}
	}
	return nil, false
}

// Stacks returns all ground stacks, sorted by ID.
func (w *World) Stacks() []*Stack {
	ids := make([]string, 0, len(w.stacks))
	for id := range w.stacks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Stack, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.stacks[id])
	}
	return out
}

// Designated reports whether the host-visible improvement marker is set.
func (w *World) Designated(entityID string) bool {
	return w.designations[entityID]
}

// FlagRemoval sets or clears host-side deconstruct intent.
func (w *World) FlagRemoval(entityID string, v bool) {
	w.flagged[entityID] = v
}

// Destroy removes an entity from the world, disposing of improvement
// state through the engine first.
func (w *World) Destroy(eng *engine.Engine, entityID string, deconstructed bool) {
	eng.DestroyEntity(entityID, deconstructed)
	w.removed[entityID] = true
	delete(w.qualities, entityID)
}

// Qualities returns a copy of the runtime quality map, for saves.
func (w *World) Qualities() map[string]types.QualityTier {
	out := make(map[string]types.QualityTier, len(w.qualities))
	for id, q := range w.qualities {
		out[id] = q
	}
	return out
}

// Restore installs a loaded tick count and quality map. Qualities for
// entities that no longer exist are ignored.
func (w *World) Restore(tick int, qualities map[string]types.QualityTier) {
	w.tick = tick
	for id, q := range qualities {
		if w.Exists(id) {
			w.qualities[id] = q
		}
	}
}

// ---- engine.Host ----

// Exists reports whether the entity is present in the world.
func (w *World) Exists(entityID string) bool {
	_, ok := w.Defs.Objects[entityID]
	return ok && !w.removed[entityID]
}

// Quality returns the entity's current quality tier.
func (w *World) Quality(entityID string) (types.QualityTier, bool) {
	q, ok := w.qualities[entityID]
	return q, ok
}

// SetQuality commits a new tier.
func (w *World) SetQuality(entityID string, q types.QualityTier) {
	w.qualities[entityID] = q
}

// EntityPos returns the placed position of an entity.
func (w *World) EntityPos(entityID string) types.Point {
	if obj, ok := w.Defs.Objects[entityID]; ok {
		return obj.Pos
	}
	return types.Point{}
}

// FlaggedForRemoval reports host-side deconstruct/relocate intent.
func (w *World) FlaggedForRemoval(entityID string) bool {
	return w.flagged[entityID]
}

// NearestStack returns the closest unforbidden, unreserved stack of the
// material. Ties break on stack ID for determinism.
func (w *World) NearestStack(material string, near types.Point, worker resolve.Worker) (string, int, bool) {
	bestID := ""
	bestCount := 0
	bestDist := 0
	for _, s := range w.Stacks() {
		if s.Material != material || s.Count <= 0 || s.Forbidden {
			continue
		}
		if holder, reserved := w.reservations[s.ID]; reserved && holder != worker.ID() {
			continue
		}
		d := manhattan(s.Pos, near)
		if bestID == "" || d < bestDist {
			bestID, bestCount, bestDist = s.ID, s.Count, d
		}
	}
	return bestID, bestCount, bestID != ""
}

// TryReserve takes an exclusive reservation. Re-reserving a resource
// already held by the same holder succeeds.
func (w *World) TryReserve(resource, holder string) bool {
	if current, ok := w.reservations[resource]; ok {
		return current == holder
	}
	w.reservations[resource] = holder
	return true
}

// Release drops a reservation if held by the holder.
func (w *World) Release(resource, holder string) {
	if w.reservations[resource] == holder {
		delete(w.reservations, resource)
	}
}

// DropMaterials places a stack on the ground, merging with any stack of
// the same material at that position.
func (w *World) DropMaterials(pos types.Point, stack types.MaterialStack) {
	if stack.Count <= 0 {
		return
	}
	w.addStack(stack.Type, stack.Count, pos)
}

// InterruptWorkersOn force-stops any worker building the entity and
// releases their reservation. Recorded work stays; the cycle just never
// completes.
func (w *World) InterruptWorkersOn(entityID string) {
	for _, wk := range w.workers {
		if wk.building == entityID {
			wk.building = ""
			w.Release(entityID, wk.def.ID)
		}
	}
}

// AddDesignation sets the host-visible improvement marker.
func (w *World) AddDesignation(entityID string) {
	w.designations[entityID] = true
}

// RemoveDesignation clears the marker.
func (w *World) RemoveDesignation(entityID string) {
	delete(w.designations, entityID)
}

// Workers enumerates workers for the engine's advisory checks.
func (w *World) Workers() []resolve.Worker {
	out := make([]resolve.Worker, 0, len(w.workers))
	for _, wk := range w.workers {
		out = append(out, wk)
	}
	return out
}

func manhattan(a, b types.Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
