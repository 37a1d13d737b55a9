// Package outcome resolves a finished work cycle: the construction
// failure roll, the quality roll, and the continue/stop decision.
package outcome

import (
	"fmt"

	"github.com/kestran/refit/types"
)

// Roller is the deterministic random source used for outcome rolls.
// Satisfied by the engine RNG.
type Roller interface {
	Roll(sides int) int
	WeightedSelect(weights []int) int
}

// FailureChanceFunc computes the construction-accident probability from
// worker skill and the total work of the attempt.
type FailureChanceFunc func(skill int, workRequired float64) float64

// QualityRollFunc samples a new quality tier from worker skill. The host
// game's generator can be plugged in here; the default is a weighted
// distribution that never produces the best tier.
type QualityRollFunc func(r Roller, skill int) types.QualityTier

// Engine resolves outcomes. Zero-value fields fall back to the default
// formulas.
type Engine struct {
	FailureChance FailureChanceFunc
	RollQuality   QualityRollFunc
}

// New creates an outcome engine with the default formulas.
func New() *Engine {
	return &Engine{
		FailureChance: DefaultFailureChance,
		RollQuality:   DefaultQualityRoll,
	}
}

// Result is the decision for one completed work cycle.
type Result struct {
	// Failed is the construction-accident path: work reset, materials
	// destroyed, no quality roll attempted.
	Failed bool
	// Improved means New was strictly above the entity's current tier
	// and must be committed (quality is monotonically non-decreasing).
	Improved bool
	New      types.QualityTier
	// Finished clears the mark and removes the designation. When false
	// the target stays marked and the cycle restarts from hauling.
	Finished bool
	Notices  []types.Notice
}

// Resolve decides the outcome of a completed work cycle for the target.
// name is the entity's display name, used only in notices.
func (e *Engine) Resolve(r Roller, entityID, name string, current types.QualityTier,
	target *types.QualityTier, skill int, workRequired float64) Result {

	failChance := e.failureChance(skill, workRequired)
	if failChance > 0 && r.Roll(10000) <= int(failChance*10000) {
		return Result{
			Failed:   true,
			Finished: false,
			Notices: []types.Notice{{
				Level:    types.NoticeFailure,
				EntityID: entityID,
				Text:     fmt.Sprintf("%s: construction failed, materials lost.", name),
			}},
		}
	}

	rolled := e.rollQuality(r, skill)

	if rolled <= current {
		res := Result{New: current}
		if target != nil && current < *target {
			res.Finished = false
			res.Notices = append(res.Notices, types.Notice{
				Level:    types.NoticeWarning,
				EntityID: entityID,
				Text:     fmt.Sprintf("%s: no improvement (rolled %s). Trying again.", name, rolled),
			})
		} else {
			res.Finished = true
			res.Notices = append(res.Notices, types.Notice{
				Level:    types.NoticeWarning,
				EntityID: entityID,
				Text:     fmt.Sprintf("%s: no improvement (rolled %s).", name, rolled),
			})
		}
		return res
	}

	res := Result{Improved: true, New: rolled}
	if target != nil && rolled < *target {
		res.Finished = false
		res.Notices = append(res.Notices, types.Notice{
			Level:    types.NoticeSuccess,
			EntityID: entityID,
			Text:     fmt.Sprintf("%s improved to %s. Continuing toward %s.", name, rolled, *target),
		})
	} else {
		res.Finished = true
		res.Notices = append(res.Notices, types.Notice{
			Level:    types.NoticeSuccess,
			EntityID: entityID,
			Text:     fmt.Sprintf("%s improved to %s.", name, rolled),
		})
	}
	return res
}

func (e *Engine) failureChance(skill int, workRequired float64) float64 {
	fn := e.FailureChance
	if fn == nil {
		fn = DefaultFailureChance
	}
	return fn(skill, workRequired)
}

func (e *Engine) rollQuality(r Roller, skill int) types.QualityTier {
	fn := e.RollQuality
	if fn == nil {
		fn = DefaultQualityRoll
	}
	return fn(r, skill)
}

// DefaultFailureChance scales a base accident rate down with skill and
// up with the size of the job, clamped to [0, 0.35].
func DefaultFailureChance(skill int, workRequired float64) float64 {
	skillFactor := 1.0 - float64(skill)/24.0
	if skillFactor < 0 {
		skillFactor = 0
	}
	workFactor := workRequired / 300.0
	if workFactor > 1 {
		workFactor = 1
	}
	chance := 0.08 * skillFactor * workFactor
	if chance > 0.35 {
		chance = 0.35
	}
	return chance
}

// DefaultQualityRoll samples a tier from a triangular distribution
// centred by skill. The best tier always has weight zero here; it is
// reachable only through external modifiers.
func DefaultQualityRoll(r Roller, skill int) types.QualityTier {
	// Centre moves from awful at skill 0 to masterwork at skill 20.
	centre := skill / 4
	if centre > int(types.QualityMasterwork) {
		centre = int(types.QualityMasterwork)
	}

	weights := make([]int, types.QualityCount)
	for q := 0; q <= int(types.QualityMasterwork); q++ {
		dist := q - centre
		if dist < 0 {
			dist = -dist
		}
		w := 10 - 4*dist
		if w < 1 {
			w = 1
		}
		weights[q] = w
	}
	// weights[QualityLegendary] stays 0.
	return types.QualityTier(r.WeightedSelect(weights))
}
