// Package config loads and validates the engine settings YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kestran/refit/engine/ledger"
	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// Default returns the stock settings: materials required at full cost,
// the middle skill preset, separate improvement work category.
func Default() *types.Settings {
	return &types.Settings{
		RequireMaterials:       true,
		MaterialCostMultiplier: 1.0,
		SkillPreset:            state.DefaultPreset,
	}
}

// Load reads settings from a YAML file, applies defaults for absent
// fields, and clamps values into their valid ranges.
func Load(path string) (*types.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	Normalize(s)
	return s, nil
}

// Normalize clamps the cost multiplier, falls back to the default skill
// preset for unknown names, and clamps custom table values into the
// valid skill range. Unknown tier names in the custom table are dropped.
func Normalize(s *types.Settings) {
	if s.MaterialCostMultiplier < ledger.MinCostMultiplier {
		s.MaterialCostMultiplier = ledger.MinCostMultiplier
	}
	if s.MaterialCostMultiplier > ledger.MaxCostMultiplier {
		s.MaterialCostMultiplier = ledger.MaxCostMultiplier
	}

	if s.SkillPreset != "custom" {
		if _, ok := state.PresetTable(s.SkillPreset); !ok {
			s.SkillPreset = state.DefaultPreset
		}
	}

	for name, v := range s.CustomSkillTable {
		if _, ok := types.ParseQuality(name); !ok {
			delete(s.CustomSkillTable, name)
			continue
		}
		s.CustomSkillTable[name] = state.ClampSkill(v)
	}
}
