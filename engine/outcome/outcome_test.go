package outcome

import (
	"testing"

	"github.com/kestran/refit/types"
)

// scriptRoller replays a fixed sequence of results for Roll and
// WeightedSelect, in call order.
type scriptRoller struct {
	script []int
	pos    int
}

func (r *scriptRoller) next() int {
	if r.pos >= len(r.script) {
		return 1
	}
	v := r.script[r.pos]
	r.pos++
	return v
}

func (r *scriptRoller) Roll(sides int) int { return r.next() }

func (r *scriptRoller) WeightedSelect(weights []int) int { return r.next() }

func fixedQuality(q types.QualityTier) QualityRollFunc {
	return func(Roller, int) types.QualityTier { return q }
}

func noFailure(int, float64) float64 { return 0 }

func TestResolve_FailureRoll(t *testing.T) {
	e := New()
	e.FailureChance = func(int, float64) float64 { return 0.10 }

	// Roll of 1000 on d10000 is exactly the 10% threshold: failed.
	r := &scriptRoller{script: []int{1000}}
	res := e.Resolve(r, "chair1", "Oak chair", types.QualityNormal, nil, 5, 100)
	if !res.Failed || res.Finished || res.Improved {
		t.Fatalf("expected a bare failure, got %+v", res)
	}
	if len(res.Notices) != 1 || res.Notices[0].Level != types.NoticeFailure {
		t.Errorf("expected one failure notice, got %v", res.Notices)
	}

	// Roll just above the threshold proceeds to the quality roll.
	e.RollQuality = fixedQuality(types.QualityGood)
	r = &scriptRoller{script: []int{1001}}
	res = e.Resolve(r, "chair1", "Oak chair", types.QualityNormal, nil, 5, 100)
	if res.Failed || !res.Improved {
		t.Errorf("expected improvement past the failure gate, got %+v", res)
	}
}

func TestResolve_NeverRegresses(t *testing.T) {
	e := New()
	e.FailureChance = noFailure
	e.RollQuality = fixedQuality(types.QualityPoor)

	res := e.Resolve(&scriptRoller{}, "chair1", "Oak chair", types.QualityGood, nil, 5, 100)
	if res.Improved {
		t.Error("a roll below current quality must not be committed")
	}
	if res.New != types.QualityGood {
		t.Errorf("result quality = %s, want unchanged good", res.New)
	}
	if !res.Finished {
		t.Error("untargeted improvement finishes after one attempt either way")
	}
}

func TestResolve_TargetedRetriesUntilReached(t *testing.T) {
	e := New()
	e.FailureChance = noFailure
	target := types.QualityExcellent

	// Rolled good, target excellent: commit and keep going.
	e.RollQuality = fixedQuality(types.QualityGood)
	res := e.Resolve(&scriptRoller{}, "chair1", "Oak chair", types.QualityNormal, &target, 5, 100)
	if !res.Improved || res.New != types.QualityGood {
		t.Fatalf("expected commit to good, got %+v", res)
	}
	if res.Finished {
		t.Error("target not reached, the mark must stay")
	}

	// Rolled at the target: commit and finish.
	e.RollQuality = fixedQuality(types.QualityExcellent)
	res = e.Resolve(&scriptRoller{}, "chair1", "Oak chair", types.QualityGood, &target, 5, 100)
	if !res.Improved || !res.Finished {
		t.Errorf("expected finished improvement at target, got %+v", res)
	}

	// No improvement below target: stay marked, try again.
	e.RollQuality = fixedQuality(types.QualityNormal)
	res = e.Resolve(&scriptRoller{}, "chair1", "Oak chair", types.QualityGood, &target, 5, 100)
	if res.Improved || res.Finished {
		t.Errorf("expected a retry without commit, got %+v", res)
	}
}

func TestDefaultFailureChance_Bounds(t *testing.T) {
	if got := DefaultFailureChance(0, 300); got <= 0 || got > 0.35 {
		t.Errorf("unskilled chance out of range: %v", got)
	}
	if got := DefaultFailureChance(24, 300); got != 0 {
		t.Errorf("skill at the ceiling should never fail, got %v", got)
	}
	low := DefaultFailureChance(15, 100)
	high := DefaultFailureChance(5, 100)
	if low >= high {
		t.Errorf("chance must fall with skill: skill15=%v skill5=%v", low, high)
	}
	small := DefaultFailureChance(5, 50)
	big := DefaultFailureChance(5, 300)
	if small >= big {
		t.Errorf("chance must rise with job size: small=%v big=%v", small, big)
	}
}

// sweepRoller records every positively-weighted index it is offered.
type sweepRoller struct{ picks []int }

func (r *sweepRoller) Roll(sides int) int { return sides }
func (r *sweepRoller) WeightedSelect(weights []int) int {
	for i, w := range weights {
		if w > 0 {
			r.picks = append(r.picks, i)
		}
	}
	// Return the highest positively-weighted index.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return 0
}

func TestDefaultQualityRoll_BestTierUnreachable(t *testing.T) {
	for skill := 0; skill <= 20; skill++ {
		r := &sweepRoller{}
		got := DefaultQualityRoll(r, skill)
		if got == types.QualityLegendary {
			t.Fatalf("skill %d: best tier must have zero weight", skill)
		}
		for _, idx := range r.picks {
			if types.QualityTier(idx) == types.QualityLegendary {
				t.Fatalf("skill %d: best tier carried positive weight", skill)
			}
		}
	}
}

func TestDefaultQualityRoll_CentreTracksSkill(t *testing.T) {
	// The highest positively-weighted tier is masterwork at every skill;
	// what moves with skill is the centre. Verify via weights directly.
	weightsAt := func(skill int) []int {
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
		return weights
	}

	low := weightsAt(0)
	high := weightsAt(20)
	if low[types.QualityAwful] <= low[types.QualityMasterwork] {
		t.Error("skill 0 should favour the bottom tier")
	}
	if high[types.QualityMasterwork] <= high[types.QualityAwful] {
		t.Error("skill 20 should favour the top rollable tier")
	}
}
