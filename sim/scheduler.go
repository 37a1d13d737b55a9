package sim

import (
	"fmt"
	"sort"

	"github.com/kestran/refit/engine"
	"github.com/kestran/refit/types"
)

// Step runs one cooperative scheduler tick: every idle worker polls the
// engine for an action on some marked target; hauls complete within the
// tick, builds persist across ticks holding the target reservation until
// the cycle resolves or materials run short. Returns a per-tick activity
// log for the front ends.
func (w *World) Step(eng *engine.Engine) []string {
	w.tick++
	var log []string

	for _, wk := range w.workers {
		if wk.building != "" {
			log = append(log, w.continueBuild(eng, wk)...)
			continue
		}
		log = append(log, w.dispatch(eng, wk)...)
	}
	return log
}

// dispatch finds work for an idle worker across marked targets, in
// sorted target order.
func (w *World) dispatch(eng *engine.Engine, wk *Worker) []string {
	targets := eng.States.Marked()
	sort.Strings(targets)

	for _, entityID := range targets {
		act := eng.NextAction(wk, entityID)
		switch act.Kind {
		case types.ActionHaul:
			return w.executeHaul(eng, wk, entityID, act)
		case types.ActionBuild:
			wk.building = entityID
			return w.continueBuild(eng, wk)
		}
	}
	return nil
}

// executeHaul moves materials from the reserved stack into the target's
// container. Whatever the filter rejects is dropped next to the target.
// Movement is abstracted: a haul completes in one tick.
func (w *World) executeHaul(eng *engine.Engine, wk *Worker, entityID string, act types.Action) []string {
	stack, ok := w.stacks[act.Stack]
	if !ok {
		w.Release(act.Stack, wk.def.ID)
		return nil
	}

	carry := act.Count
	if carry > stack.Count {
		carry = stack.Count
	}
	stack.Count -= carry
	if stack.Count <= 0 {
		delete(w.stacks, stack.ID)
	}
	w.Release(act.Stack, wk.def.ID)

	accepted := eng.Accept(entityID, act.Material, carry)
	if leftover := carry - accepted; leftover > 0 {
		w.DropMaterials(w.EntityPos(entityID), types.MaterialStack{Type: act.Material, Count: leftover})
	}
	return []string{fmt.Sprintf("%s hauled %d %s to %s.", wk.Name(), accepted, act.Material, entityID)}
}

// continueBuild advances the worker's build job by one work chunk. The
// job ends when the target is no longer marked (resolved or unmarked) or
// when the next attempt needs materials again.
func (w *World) continueBuild(eng *engine.Engine, wk *Worker) []string {
	entityID := wk.building
	st, ok := eng.States.Get(entityID)
	if !ok || !st.Marked || w.flagged[entityID] {
		wk.building = ""
		w.Release(entityID, wk.def.ID)
		return nil
	}

	eng.RecordWork(wk, entityID, wk.def.WorkPerTick)
	log := []string{fmt.Sprintf("%s worked on %s.", wk.Name(), entityID)}

	st, ok = eng.States.Get(entityID)
	if !ok || !st.Marked || len(eng.Ledger.Remaining(entityID)) > 0 {
		wk.building = ""
		w.Release(entityID, wk.def.ID)
	}
	return log
}
