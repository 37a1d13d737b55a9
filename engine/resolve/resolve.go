// Package resolve decides, for a worker and a marked target, what action
// is available next: haul a needed material, build, or nothing — with a
// reason the host UI can show.
package resolve

import (
	"github.com/kestran/refit/engine/ledger"
	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// Worker is the host's view of a labourer. Skill is in the valid skill
// range; Prop exposes boolean worker state consumed by quality modifiers.
type Worker interface {
	ID() string
	Skill() int
	CategoryEnabled(category string) bool
	Prop(name string) bool
}

// World is the host's spatial and reservation surface.
type World interface {
	// FlaggedForRemoval reports host-side deconstruct/relocate intent.
	FlaggedForRemoval(entityID string) bool
	// Quality returns the entity's current quality tier.
	Quality(entityID string) (types.QualityTier, bool)
	// EntityPos returns the entity's position, used for nearest search.
	EntityPos(entityID string) types.Point
	// NearestStack returns the closest reachable unreserved stack of the
	// material the worker could haul from, or ok=false.
	NearestStack(material string, near types.Point, w Worker) (stackID string, count int, ok bool)
	// TryReserve and Release implement exclusive reservations.
	TryReserve(resource, holder string) bool
	Release(resource, holder string)
}

// Modifier is a named worker quality-requirement bonus. Bonuses are
// additive and commutative; order never matters.
type Modifier struct {
	Name  string
	Bonus func(w Worker) int
}

// Resolver implements the work-resolution policy.
type Resolver struct {
	defs      *state.Defs
	reg       *state.Registry
	ledger    *ledger.Ledger
	settings  *types.Settings
	table     state.SkillTable
	modifiers []Modifier
}

// New builds a resolver. Prop-gated modifiers from the scenario
// definitions are installed first; hosts may append their own with
// RegisterModifier.
func New(defs *state.Defs, reg *state.Registry, led *ledger.Ledger, settings *types.Settings) *Resolver {
	r := &Resolver{
		defs:     defs,
		reg:      reg,
		ledger:   led,
		settings: settings,
		table:    state.TableFromSettings(settings),
	}
	for _, def := range defs.Modifiers {
		prop, bonus := def.Prop, def.Bonus
		r.RegisterModifier(Modifier{
			Name: def.Name,
			Bonus: func(w Worker) int {
				if w.Prop(prop) {
					return bonus
				}
				return 0
			},
		})
	}
	return r
}

// RegisterModifier appends a host-supplied modifier.
func (r *Resolver) RegisterModifier(m Modifier) {
	r.modifiers = append(r.modifiers, m)
}

// BonusSum returns the worker's active modifier total.
func (r *Resolver) BonusSum(w Worker) int {
	sum := 0
	for _, m := range r.modifiers {
		sum += m.Bonus(w)
	}
	return sum
}

// potentialBonus is the best-case modifier total from scenario
// definitions, used only to phrase the skill-gate refusal.
func (r *Resolver) potentialBonus() int {
	sum := 0
	for _, def := range r.defs.Modifiers {
		sum += def.Bonus
	}
	return sum
}

// Requirement returns the base skill requirement for a target tier and
// the worker-effective requirement after active bonuses, clamped at 0.
func (r *Resolver) Requirement(w Worker, target types.QualityTier) (base, effective int) {
	base = state.ClampSkill(r.table[target])
	effective = base - r.BonusSum(w)
	if effective < 0 {
		effective = 0
	}
	return base, effective
}

// WorkCategory returns the category a worker must have enabled,
// honouring the merged-category configuration.
func (r *Resolver) WorkCategory() string {
	if r.settings.MergeWorkCategory {
		return types.WorkCategoryConstruct
	}
	return types.WorkCategoryImprove
}

// NextAction resolves the next action for worker w on the target.
//
// Order: marked and removal checks, material hauling, work-category
// assignment, skill gate, then build with an exclusive reservation on
// the target. Material search is nearest-reachable-first; beyond that,
// first match wins.
func (r *Resolver) NextAction(w Worker, entityID string, world World) types.Action {
	st, ok := r.reg.Get(entityID)
	if !ok || !st.Marked {
		return none(types.ReasonNotMarked)
	}
	if world.FlaggedForRemoval(entityID) {
		return none(types.ReasonFlaggedRemoval)
	}
	if st.TargetQuality != nil {
		if current, ok := world.Quality(entityID); ok && current >= *st.TargetQuality {
			return none(types.ReasonAlreadySatisfied)
		}
	}

	// Hauling comes before the assignment and skill gates: any hauler may
	// ferry materials even if someone else does the building.
	if remaining := r.ledger.Remaining(entityID); len(remaining) > 0 {
		near := world.EntityPos(entityID)
		for _, need := range remaining {
			stackID, count, found := world.NearestStack(need.Type, near, w)
			if !found {
				continue
			}
			if !world.TryReserve(stackID, w.ID()) {
				continue
			}
			haul := count
			if haul > need.Count {
				haul = need.Count
			}
			return types.Action{Kind: types.ActionHaul, Material: need.Type, Count: haul, Stack: stackID}
		}
		return none(types.ReasonMissingMaterials)
	}

	if !w.CategoryEnabled(r.WorkCategory()) {
		return none(types.ReasonNotAssigned)
	}

	if st.TargetQuality != nil {
		base, effective := r.Requirement(w, *st.TargetQuality)
		if w.Skill() < effective {
			reachable := base - r.potentialBonus()
			if reachable < 0 {
				reachable = 0
			}
			if w.Skill() >= reachable {
				return none(types.ReasonNeedsBonus)
			}
			return none(types.ReasonSkillTooLow)
		}
	}

	if !world.TryReserve(entityID, w.ID()) {
		return none(types.ReasonReserved)
	}
	return types.Action{Kind: types.ActionBuild}
}

func none(reason types.Reason) types.Action {
	return types.Action{Kind: types.ActionNone, Reason: reason}
}
