// Package ledger implements the material bookkeeping for in-progress
// improvements: required vs. stored materials, filtered acceptance into
// the per-target container, and consume/drain on completion or unmark.
package ledger

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// Bounds for the configurable material cost multiplier.
const (
	MinCostMultiplier = 0.05
	MaxCostMultiplier = 2.0
)

const requirementCacheSize = 256

// Ledger computes and tracks material needs per target.
type Ledger struct {
	defs     *state.Defs
	reg      *state.Registry
	settings *types.Settings

	// Requirement lists keyed by entity type and multiplier. Requirements
	// only depend on the type definition, so they are shared across
	// entities of the same type.
	cache *lru.Cache[string, []types.MaterialStack]
}

// New creates a ledger over the given definitions and state registry.
func New(defs *state.Defs, reg *state.Registry, settings *types.Settings) *Ledger {
	cache, err := lru.New[string, []types.MaterialStack](requirementCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &Ledger{defs: defs, reg: reg, settings: settings, cache: cache}
}

// Multiplier returns the configured cost multiplier clamped into its
// valid range.
func (l *Ledger) Multiplier() float64 {
	m := l.settings.MaterialCostMultiplier
	if m < MinCostMultiplier {
		return MinCostMultiplier
	}
	if m > MaxCostMultiplier {
		return MaxCostMultiplier
	}
	return m
}

// Required returns the full material requirement for one improvement
// attempt on the target: ceil(baseCost * multiplier) per type. Empty when
// materials are not required by configuration.
func (l *Ledger) Required(entityID string) []types.MaterialStack {
	if !l.settings.RequireMaterials {
		return nil
	}
	obj, ok := l.defs.Objects[entityID]
	if !ok {
		return nil
	}
	def, ok := l.defs.EntityTypes[obj.Type]
	if !ok {
		return nil
	}

	mult := l.Multiplier()
	key := fmt.Sprintf("%s|%.4f", def.ID, mult)
	if cached, ok := l.cache.Get(key); ok {
		return cached
	}

	req := make([]types.MaterialStack, 0, len(def.BuildCost))
	for _, cost := range def.BuildCost {
		count := int(math.Ceil(float64(cost.Count) * mult))
		if count > 0 {
			req = append(req, types.MaterialStack{Type: cost.Type, Count: count})
		}
	}
	l.cache.Add(key, req)
	return req
}

// Remaining returns required minus stored, filtered to positive counts.
// Empty when materials are not required, regardless of what is already
// stored: flipping require_materials off mid-improvement leaves stored
// stacks inspectable but no longer gating work.
func (l *Ledger) Remaining(entityID string) []types.MaterialStack {
	required := l.Required(entityID)
	if len(required) == 0 {
		return nil
	}
	st, ok := l.reg.Get(entityID)
	if !ok {
		return required
	}

	var remaining []types.MaterialStack
	for _, need := range required {
		have := storedCount(st.Stored, need.Type)
		if need.Count > have {
			remaining = append(remaining, types.MaterialStack{Type: need.Type, Count: need.Count - have})
		}
	}
	return remaining
}

// Accept offers count units of a material to the target's container and
// returns how many were taken: min(count, remaining need for that type).
// Returns 0, rejecting the whole transfer, when the target is unmarked or
// materials are not required. This is the filter that keeps unrelated
// goods out of improvement containers.
func (l *Ledger) Accept(entityID, material string, count int) int {
	if count <= 0 || !l.settings.RequireMaterials {
		return 0
	}
	st, ok := l.reg.Get(entityID)
	if !ok || !st.Marked {
		return 0
	}

	need := 0
	for _, rem := range l.Remaining(entityID) {
		if rem.Type == material {
			need = rem.Count
			break
		}
	}
	if need == 0 {
		return 0
	}

	accepted := count
	if accepted > need {
		accepted = need
	}
	st.Stored = addStack(st.Stored, material, accepted)
	return accepted
}

// AcceptDirect stores materials unconditionally, bypassing the marked and
// remaining-need filters. Container migration only; gameplay paths must
// go through Accept.
func (l *Ledger) AcceptDirect(st *types.ImprovementState, material string, count int) {
	if count <= 0 {
		return
	}
	st.Stored = addStack(st.Stored, material, count)
}

// Consume destroys all stored materials for the target. Used when an
// improvement attempt completes or fails; every attempt re-gathers.
func (l *Ledger) Consume(entityID string) {
	if st, ok := l.reg.Get(entityID); ok {
		st.Stored = nil
	}
}

// DrainTo empties the container through the sink, one stack at a time.
// Used on unmark and deconstruction to return materials to the world.
func (l *Ledger) DrainTo(entityID string, sink func(types.MaterialStack)) {
	st, ok := l.reg.Get(entityID)
	if !ok {
		return
	}
	for _, stack := range st.Stored {
		if stack.Count > 0 {
			sink(stack)
		}
	}
	st.Stored = nil
}

func storedCount(stored []types.MaterialStack, material string) int {
	for _, s := range stored {
		if s.Type == material {
			return s.Count
		}
	}
	return 0
}

func addStack(stored []types.MaterialStack, material string, count int) []types.MaterialStack {
	for i := range stored {
		if stored[i].Type == material {
			stored[i].Count += count
			return stored
		}
	}
	return append(stored, types.MaterialStack{Type: material, Count: count})
}
