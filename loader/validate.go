package loader

import (
	"fmt"
	"strings"

	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known worker categories.
var validCategories = map[string]bool{
	types.WorkCategoryImprove:   true,
	types.WorkCategoryConstruct: true,
	"haul":                      true,
}

// validate checks cross-references between definitions. It returns a
// *ValidationError when any hard error was found; warnings alone do not
// fail the load.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	for id, def := range defs.EntityTypes {
		for _, cost := range def.BuildCost {
			if _, ok := defs.Materials[cost.Type]; !ok {
				ve.Errors = append(ve.Errors,
					fmt.Sprintf("entity type %q: unknown cost material %q", id, cost.Type))
			}
		}
		if def.HasQuality && def.WorkCost <= 0 {
			ve.Warnings = append(ve.Warnings,
				fmt.Sprintf("entity type %q: has quality but no work cost; it will not be improvable", id))
		}
	}

	for id, obj := range defs.Objects {
		if _, ok := defs.EntityTypes[obj.Type]; !ok {
			ve.Errors = append(ve.Errors,
				fmt.Sprintf("object %q: unknown entity type %q", id, obj.Type))
		}
	}

	seenWorkers := map[string]bool{}
	for _, w := range defs.Workers {
		if seenWorkers[w.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate worker %q", w.ID))
		}
		seenWorkers[w.ID] = true
		for _, cat := range w.Categories {
			if !validCategories[cat] {
				ve.Warnings = append(ve.Warnings,
					fmt.Sprintf("worker %q: unknown work category %q", w.ID, cat))
			}
		}
	}

	for i, sp := range defs.Stockpiles {
		if _, ok := defs.Materials[sp.Material]; !ok {
			ve.Errors = append(ve.Errors,
				fmt.Sprintf("stockpile %d: unknown material %q", i, sp.Material))
		}
		if sp.Count <= 0 {
			ve.Warnings = append(ve.Warnings,
				fmt.Sprintf("stockpile %d: non-positive count", i))
		}
	}

	for _, m := range defs.Modifiers {
		if m.Prop == "" {
			ve.Errors = append(ve.Errors,
				fmt.Sprintf("modifier %q: missing prop", m.Name))
		}
		if m.Bonus < 0 || m.Bonus > state.SkillMax {
			ve.Errors = append(ve.Errors,
				fmt.Sprintf("modifier %q: bonus %d out of range", m.Name, m.Bonus))
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
