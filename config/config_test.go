package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestran/refit/engine/state"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaultsForAbsentFields(t *testing.T) {
	path := writeSettings(t, "material_cost_multiplier: 0.5\n")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MaterialCostMultiplier != 0.5 {
		t.Errorf("multiplier = %v, want 0.5", s.MaterialCostMultiplier)
	}
	if !s.RequireMaterials {
		t.Error("require_materials should default to true")
	}
	if s.SkillPreset != state.DefaultPreset {
		t.Errorf("preset = %q, want default", s.SkillPreset)
	}
}

func TestLoad_FullDocument(t *testing.T) {
	path := writeSettings(t, `
require_materials: false
material_cost_multiplier: 1.5
skill_preset: custom
custom_skill_table:
  good: 4
  excellent: 30
  bogus: 7
merge_work_category: true
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.RequireMaterials {
		t.Error("require_materials not read")
	}
	if !s.MergeWorkCategory {
		t.Error("merge_work_category not read")
	}
	if s.SkillPreset != "custom" {
		t.Errorf("preset = %q, want custom", s.SkillPreset)
	}
	if s.CustomSkillTable["good"] != 4 {
		t.Errorf("custom good = %d", s.CustomSkillTable["good"])
	}
	if s.CustomSkillTable["excellent"] != state.SkillMax {
		t.Errorf("out-of-range custom value not clamped: %d", s.CustomSkillTable["excellent"])
	}
	if _, ok := s.CustomSkillTable["bogus"]; ok {
		t.Error("unknown tier name survived normalization")
	}
}

func TestNormalize_ClampsMultiplier(t *testing.T) {
	s := Default()
	s.MaterialCostMultiplier = 0.001
	Normalize(s)
	if s.MaterialCostMultiplier != 0.05 {
		t.Errorf("low multiplier = %v, want clamp at 0.05", s.MaterialCostMultiplier)
	}

	s.MaterialCostMultiplier = 9.0
	Normalize(s)
	if s.MaterialCostMultiplier != 2.0 {
		t.Errorf("high multiplier = %v, want clamp at 2.0", s.MaterialCostMultiplier)
	}
}

func TestNormalize_UnknownPresetFallsBack(t *testing.T) {
	s := Default()
	s.SkillPreset = "tier9"
	Normalize(s)
	if s.SkillPreset != state.DefaultPreset {
		t.Errorf("preset = %q, want default fallback", s.SkillPreset)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := writeSettings(t, "material_cost_multiplier: [not, a, number]\n")
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
