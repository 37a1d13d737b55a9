// Package engine provides the improvement-engine orchestrator that wires
// per-target state, material bookkeeping, work resolution, and outcome
// rolls into the host's scheduling loop.
package engine

import (
	"fmt"

	"github.com/kestran/refit/engine/ledger"
	"github.com/kestran/refit/engine/outcome"
	"github.com/kestran/refit/engine/resolve"
	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// Host is everything the engine consumes from the surrounding game:
// spatial queries and reservations (resolve.World), entity attributes,
// worker enumeration, and the side-effect surface for designations,
// dropped materials, and forced interrupts.
type Host interface {
	resolve.World

	// Exists reports whether the entity is still present in the world.
	Exists(entityID string) bool
	// SetQuality commits a new quality tier to the entity.
	SetQuality(entityID string, q types.QualityTier)
	// DropMaterials places a stack on the ground at a position.
	DropMaterials(pos types.Point, stack types.MaterialStack)
	// InterruptWorkersOn force-stops any worker acting on the entity and
	// releases their reservations. This is the "interrupted" outcome, not
	// a failure; recorded work is not rolled back.
	InterruptWorkersOn(entityID string)
	// AddDesignation and RemoveDesignation maintain the host-visible
	// marker for a queued improvement.
	AddDesignation(entityID string)
	RemoveDesignation(entityID string)
	// Workers enumerates current workers, for the one-time advisory check
	// at marking time.
	Workers() []resolve.Worker
}

// Notifier receives fire-and-forget user-visible notices.
type Notifier interface {
	Notify(n types.Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n types.Notice)

func (f NotifierFunc) Notify(n types.Notice) { f(n) }

// Engine holds the scenario definitions and all mutable improvement state.
type Engine struct {
	Defs     *state.Defs
	States   *state.Registry
	Ledger   *ledger.Ledger
	Resolver *resolve.Resolver
	Outcome  *outcome.Engine
	RNG      *RNG
	Settings *types.Settings
	Caps     *state.Capability

	host     Host
	notifier Notifier
}

// New creates an engine from definitions and settings, wired to a host.
func New(defs *state.Defs, settings *types.Settings, host Host, notifier Notifier) *Engine {
	reg := state.NewRegistry()
	led := ledger.New(defs, reg, settings)
	return &Engine{
		Defs:     defs,
		States:   reg,
		Ledger:   led,
		Resolver: resolve.New(defs, reg, led, settings),
		Outcome:  outcome.New(),
		RNG:      NewRNG(defs.Scenario.Seed),
		Settings: settings,
		Caps:     state.NewCapability(),
		host:     host,
		notifier: notifier,
	}
}

// RestoreRNG resumes the RNG from a saved seed and sequence position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = ResumeRNG(Checkpoint{Seed: seed, Position: position})
}

// Mark queues an entity for quality improvement. A nil target accepts any
// improvement; otherwise work continues until the target tier is reached.
// Ineligible targets are refused with a reason, never a panic: missing
// quality attribute, no work/cost definition, or already at the best tier.
// Marking an already-marked entity with the same target is a no-op;
// a different target updates it and re-evaluates.
func (e *Engine) Mark(entityID string, target *types.QualityTier) error {
	if !e.host.Exists(entityID) {
		return fmt.Errorf("mark %s: no such entity", entityID)
	}
	def, ok := e.Defs.TypeOf(entityID)
	if !ok {
		return fmt.Errorf("mark %s: no entity type definition", entityID)
	}
	if !e.Caps.Improvable(def) {
		return fmt.Errorf("mark %s: %s cannot be improved", entityID, def.Name)
	}
	current, ok := e.host.Quality(entityID)
	if !ok {
		return fmt.Errorf("mark %s: no quality attribute", entityID)
	}
	if current >= types.QualityLegendary {
		return fmt.Errorf("mark %s: already at the best quality", entityID)
	}
	if target != nil && current >= *target {
		return fmt.Errorf("mark %s: already %s, at or above the target", entityID, current)
	}

	st := e.States.Obtain(entityID, def.WorkCost)
	if st.Marked {
		if sameTarget(st.TargetQuality, target) {
			return nil
		}
		// Retargeting re-evaluates eligibility for the new tier.
		st.TargetQuality = copyTier(target)
		e.adviseIfUnattemptable(entityID, target)
		return nil
	}

	st.SetMarkedDirect(true)
	st.TargetQuality = copyTier(target)
	st.WorkDone = 0
	st.WorkRequired = def.WorkCost
	e.host.AddDesignation(entityID)
	e.adviseIfUnattemptable(entityID, target)
	return nil
}

// adviseIfUnattemptable emits the one-time advisory when no current
// worker passes the assignment and skill gates for the target tier.
func (e *Engine) adviseIfUnattemptable(entityID string, target *types.QualityTier) {
	if target == nil || e.anyEligibleWorker(*target) {
		return
	}
	e.notify(types.Notice{
		Level:    types.NoticeWarning,
		EntityID: entityID,
		Text:     fmt.Sprintf("No worker can currently attempt %s quality on %s.", *target, e.displayName(entityID)),
	})
}

// Unmark cancels a queued improvement: materials drain to the ground near
// the target, the designation is removed, and any worker acting on the
// target is force-interrupted. Safe to call on unmarked entities.
func (e *Engine) Unmark(entityID string) {
	st, ok := e.States.Get(entityID)
	if !ok || !st.Marked {
		return
	}
	e.host.InterruptWorkersOn(entityID)
	pos := e.host.EntityPos(entityID)
	e.Ledger.DrainTo(entityID, func(stack types.MaterialStack) {
		e.host.DropMaterials(pos, stack)
	})
	st.SetMarkedDirect(false)
	st.TargetQuality = nil
	e.host.RemoveDesignation(entityID)
}

// NextAction is polled by the host dispatcher each tick for a
// worker/target pair. A marked target whose quality already meets its
// goal — reached through an outcome roll or an external host effect —
// is unmarked here with the full cancel transition (drain, designation,
// interrupt) before the refusal is reported.
func (e *Engine) NextAction(w resolve.Worker, entityID string) types.Action {
	if st, ok := e.States.Get(entityID); ok && st.Marked && st.TargetQuality != nil {
		if current, ok := e.host.Quality(entityID); ok && current >= *st.TargetQuality {
			e.Unmark(entityID)
			return types.Action{Kind: types.ActionNone, Reason: types.ReasonAlreadySatisfied}
		}
	}
	return e.Resolver.NextAction(w, entityID, e.host)
}

// Accept delivers hauled materials into the target's container and
// returns how many units were taken.
func (e *Engine) Accept(entityID, material string, count int) int {
	return e.Ledger.Accept(entityID, material, count)
}

// RecordWork adds labour from a worker. When accumulated work reaches the
// requirement, exactly one outcome is resolved and work resets to zero.
func (e *Engine) RecordWork(w resolve.Worker, entityID string, amount float64) {
	st, ok := e.States.Get(entityID)
	if !ok || !st.Marked {
		return
	}
	st.WorkDone += amount
	if st.WorkDone < st.WorkRequired {
		return
	}
	st.WorkDone = 0

	current, _ := e.host.Quality(entityID)
	res := e.Outcome.Resolve(e.RNG, entityID, e.displayName(entityID),
		current, st.TargetQuality, w.Skill(), st.WorkRequired)

	// Materials are spent either way: an accident destroys them, and a
	// completed roll consumes them. Each further attempt re-gathers.
	e.Ledger.Consume(entityID)

	if res.Failed {
		e.notifyAll(res.Notices)
		return
	}
	if res.Improved {
		e.host.SetQuality(entityID, res.New)
	}
	if res.Finished {
		st.SetMarkedDirect(false)
		st.TargetQuality = nil
		e.host.RemoveDesignation(entityID)
	}
	e.notifyAll(res.Notices)
}

// Fail is the host-driven construction-accident path, independent of the
// quality roll: progress resets, stored materials are destroyed, and a
// failure notice is emitted. The target stays marked.
func (e *Engine) Fail(entityID string) {
	st, ok := e.States.Get(entityID)
	if !ok || !st.Marked {
		return
	}
	st.WorkDone = 0
	e.Ledger.Consume(entityID)
	e.notify(types.Notice{
		Level:    types.NoticeFailure,
		EntityID: entityID,
		Text:     fmt.Sprintf("%s: construction failed, materials lost.", e.displayName(entityID)),
	})
}

// DestroyEntity disposes of improvement state when an entity leaves the
// world. Deconstruction drains stored materials to the ground first;
// plain destruction discards them.
func (e *Engine) DestroyEntity(entityID string, deconstructed bool) {
	st, ok := e.States.Get(entityID)
	if !ok {
		return
	}
	if st.Marked {
		e.host.InterruptWorkersOn(entityID)
		e.host.RemoveDesignation(entityID)
	}
	if deconstructed {
		pos := e.host.EntityPos(entityID)
		e.Ledger.DrainTo(entityID, func(stack types.MaterialStack) {
			e.host.DropMaterials(pos, stack)
		})
	}
	e.States.Remove(entityID)
}

// Inspection is the read-only progress view for display. It never
// mutates state.
type Inspection struct {
	Marked         bool
	WorkDone       float64
	WorkRequired   float64
	CurrentQuality types.QualityTier
	TargetQuality  *types.QualityTier
	Stored         []types.MaterialStack
	Remaining      []types.MaterialStack
	// SkillRequirement is the base requirement for the target tier,
	// before worker bonuses. Zero when no target is set.
	SkillRequirement int
}

// Inspect returns the current improvement status of an entity.
func (e *Engine) Inspect(entityID string) (Inspection, bool) {
	if !e.host.Exists(entityID) {
		return Inspection{}, false
	}
	current, _ := e.host.Quality(entityID)
	insp := Inspection{CurrentQuality: current}

	st, ok := e.States.Get(entityID)
	if !ok {
		return insp, true
	}
	insp.Marked = st.Marked
	insp.WorkDone = st.WorkDone
	insp.WorkRequired = st.WorkRequired
	insp.TargetQuality = copyTier(st.TargetQuality)
	insp.Stored = append([]types.MaterialStack(nil), st.Stored...)
	insp.Remaining = e.Ledger.Remaining(entityID)
	if st.TargetQuality != nil {
		table := state.TableFromSettings(e.Settings)
		insp.SkillRequirement = state.ClampSkill(table[*st.TargetQuality])
	}
	return insp, true
}

// anyEligibleWorker reports whether some current worker passes both the
// assignment and skill gates for the target tier.
func (e *Engine) anyEligibleWorker(target types.QualityTier) bool {
	category := e.Resolver.WorkCategory()
	for _, w := range e.host.Workers() {
		if !w.CategoryEnabled(category) {
			continue
		}
		_, effective := e.Resolver.Requirement(w, target)
		if w.Skill() >= effective {
			return true
		}
	}
	return false
}

func (e *Engine) displayName(entityID string) string {
	if def, ok := e.Defs.TypeOf(entityID); ok && def.Name != "" {
		return def.Name
	}
	return entityID
}

func (e *Engine) notify(n types.Notice) {
	if e.notifier != nil {
		e.notifier.Notify(n)
	}
}

func (e *Engine) notifyAll(notices []types.Notice) {
	for _, n := range notices {
		e.notify(n)
	}
}

func sameTarget(a, b *types.QualityTier) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyTier(t *types.QualityTier) *types.QualityTier {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
