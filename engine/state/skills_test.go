package state

import (
	"testing"

	"github.com/kestran/refit/types"
)

func TestPresetTable_KnownAndUnknown(t *testing.T) {
	table, ok := PresetTable("tier3")
	if !ok {
		t.Fatal("tier3 preset missing")
	}
	if table[types.QualityAwful] != 0 || table[types.QualityLegendary] != 18 {
		t.Errorf("unexpected tier3 bounds: %v", table)
	}

	if _, ok := PresetTable("tier99"); ok {
		t.Error("unknown preset should miss")
	}
}

func TestPresetTable_MonotoneNonDecreasing(t *testing.T) {
	for name := range presets {
		table, _ := PresetTable(name)
		for q := 1; q < types.QualityCount; q++ {
			if table[types.QualityTier(q)] < table[types.QualityTier(q-1)] {
				t.Errorf("%s: requirement decreases at tier %d", name, q)
			}
		}
	}
}

func TestClampSkill(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0}, {0, 0}, {7, 7}, {20, 20}, {31, 20},
	}
	for _, c := range cases {
		if got := ClampSkill(c.in); got != c.want {
			t.Errorf("ClampSkill(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestTableFromSettings_UnknownPresetFallsBack(t *testing.T) {
	s := &types.Settings{SkillPreset: "nonsense"}
	table := TableFromSettings(s)
	want, _ := PresetTable(DefaultPreset)
	for q := 0; q < types.QualityCount; q++ {
		tier := types.QualityTier(q)
		if table[tier] != want[tier] {
			t.Errorf("tier %d: got %d, want default %d", q, table[tier], want[tier])
		}
	}
}

func TestTableFromSettings_CustomOverridesAndClamps(t *testing.T) {
	s := &types.Settings{
		SkillPreset: "custom",
		CustomSkillTable: map[string]int{
			"good":      5,
			"legendary": 99, // clamped to 20
			"bogus":     3,  // unknown tier name, ignored
		},
	}
	table := TableFromSettings(s)

	if table[types.QualityGood] != 5 {
		t.Errorf("custom good = %d, want 5", table[types.QualityGood])
	}
	if table[types.QualityLegendary] != SkillMax {
		t.Errorf("out-of-range custom value not clamped: %d", table[types.QualityLegendary])
	}

	// Tiers without a custom entry use the default preset.
	fallback, _ := PresetTable(DefaultPreset)
	if table[types.QualityExcellent] != fallback[types.QualityExcellent] {
		t.Errorf("missing custom key should fall back to default preset")
	}
}
