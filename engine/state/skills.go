package state

import "github.com/kestran/refit/types"

// Valid worker skill range. Requirement tables are clamped into it.
const (
	SkillMin = 0
	SkillMax = 20
)

// SkillTable maps a quality tier to the minimum worker skill needed to
// attempt an improvement targeting that tier.
type SkillTable map[types.QualityTier]int

// Built-in presets, lenient (tier1) to strict (tier5).
var presets = map[string][types.QualityCount]int{
	"tier1": {0, 0, 1, 3, 5, 8, 12},
	"tier2": {0, 0, 2, 4, 7, 10, 15},
	"tier3": {0, 0, 3, 6, 9, 13, 18},
	"tier4": {0, 0, 4, 8, 12, 16, 20},
	"tier5": {0, 0, 5, 10, 15, 20, 20},
}

// DefaultPreset is used when settings name no preset or an unknown one.
const DefaultPreset = "tier3"

// PresetTable returns the named built-in requirement table.
func PresetTable(name string) (SkillTable, bool) {
	row, ok := presets[name]
	if !ok {
		return nil, false
	}
	table := make(SkillTable, types.QualityCount)
	for q := 0; q < types.QualityCount; q++ {
		table[types.QualityTier(q)] = row[q]
	}
	return table, true
}

// ClampSkill clamps a value into the valid skill range.
func ClampSkill(v int) int {
	if v < SkillMin {
		return SkillMin
	}
	if v > SkillMax {
		return SkillMax
	}
	return v
}

// TableFromSettings resolves the requirement table for the configured
// preset, or the custom per-tier values when the preset is "custom".
// Missing custom keys fall back to the default preset; values are
// clamped into the valid skill range.
func TableFromSettings(s *types.Settings) SkillTable {
	if s.SkillPreset != "custom" {
		base, ok := PresetTable(s.SkillPreset)
		if !ok {
			base, _ = PresetTable(DefaultPreset)
		}
		return base
	}

	fallback, _ := PresetTable(DefaultPreset)
	table := make(SkillTable, types.QualityCount)
	for q := 0; q < types.QualityCount; q++ {
		table[types.QualityTier(q)] = fallback[types.QualityTier(q)]
	}
	for name, v := range s.CustomSkillTable {
		q, ok := types.ParseQuality(name)
		if !ok {
			continue
		}
		table[q] = ClampSkill(v)
	}
	return table
}
