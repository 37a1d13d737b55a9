// Package state holds the immutable scenario definitions loaded from Lua
// and the mutable per-entity improvement records, created lazily and
// pruned when their entity disappears.
package state

import (
	"sort"

	"github.com/kestran/refit/types"
)

// Defs holds the immutable scenario definitions.
type Defs struct {
	Scenario    types.ScenarioDef
	Materials   map[string]types.MaterialDef
	EntityTypes map[string]types.EntityTypeDef
	Objects     map[string]types.ObjectDef
	Workers     []types.WorkerDef
	Stockpiles  []types.StockpileDef
	Modifiers   []types.ModifierDef
}

// TypeOf returns the entity type definition for a placed object.
func (d *Defs) TypeOf(entityID string) (types.EntityTypeDef, bool) {
	obj, ok := d.Objects[entityID]
	if !ok {
		return types.EntityTypeDef{}, false
	}
	def, ok := d.EntityTypes[obj.Type]
	return def, ok
}

// Registry is the per-entity improvement state store, keyed by the
// stable entity ID. Records are created lazily and survive save/load.
type Registry struct {
	states map[string]*types.ImprovementState
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: map[string]*types.ImprovementState{}}
}

// Get returns the record for an entity without creating one.
func (r *Registry) Get(entityID string) (*types.ImprovementState, bool) {
	st, ok := r.states[entityID]
	return st, ok
}

// Obtain returns the record for an entity, creating an unmarked one with
// the given work requirement on first use.
func (r *Registry) Obtain(entityID string, workRequired float64) *types.ImprovementState {
	if st, ok := r.states[entityID]; ok {
		return st
	}
	st := &types.ImprovementState{WorkRequired: workRequired}
	r.states[entityID] = st
	return st
}

// Put installs a loaded record, replacing any existing one.
func (r *Registry) Put(entityID string, st types.ImprovementState) {
	copied := st
	r.states[entityID] = &copied
}

// Remove deletes the record for an entity.
func (r *Registry) Remove(entityID string) {
	delete(r.states, entityID)
}

// IDs returns all entity IDs with a record, sorted for determinism.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.states))
	for id := range r.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Marked returns the IDs of all currently marked entities, sorted.
func (r *Registry) Marked() []string {
	var ids []string
	for id, st := range r.states {
		if st.Marked {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Prune removes records whose entity no longer exists and returns the
// pruned IDs. Called after load; missing entities are never an error.
func (r *Registry) Prune(exists func(entityID string) bool) []string {
	var pruned []string
	for id := range r.states {
		if !exists(id) {
			delete(r.states, id)
			pruned = append(pruned, id)
		}
	}
	sort.Strings(pruned)
	return pruned
}

// Snapshot returns a deep copy of all records, for serialization.
func (r *Registry) Snapshot() map[string]types.ImprovementState {
	out := make(map[string]types.ImprovementState, len(r.states))
	for id, st := range r.states {
		copied := *st
		copied.Stored = append([]types.MaterialStack(nil), st.Stored...)
		if st.TargetQuality != nil {
			tq := *st.TargetQuality
			copied.TargetQuality = &tq
		}
		out[id] = copied
	}
	return out
}

// Capability is the explicit registry of entity-type predicates deciding
// which types can be improved. Populated once at startup; no runtime
// patching of host objects.
type Capability struct {
	preds []func(types.EntityTypeDef) bool
}

// NewCapability creates a capability table with the default predicate:
// the type carries a quality attribute and a positive work cost.
func NewCapability() *Capability {
	c := &Capability{}
	c.Register(func(def types.EntityTypeDef) bool {
		return def.HasQuality && def.WorkCost > 0
	})
	return c
}

// Register adds a predicate. An entity type is improvable when every
// registered predicate accepts it.
func (c *Capability) Register(pred func(types.EntityTypeDef) bool) {
	c.preds = append(c.preds, pred)
}

// Improvable reports whether the entity type passes all predicates.
func (c *Capability) Improvable(def types.EntityTypeDef) bool {
	for _, pred := range c.preds {
		if !pred(def) {
			return false
		}
	}
	return true
}
