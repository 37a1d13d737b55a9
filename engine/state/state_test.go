package state

import (
	"testing"

	"github.com/kestran/refit/types"
)

func TestRegistry_ObtainCreatesLazily(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Get("chair1"); ok {
		t.Fatal("expected no record before Obtain")
	}

	st := reg.Obtain("chair1", 100)
	if st.Marked {
		t.Error("new record should be unmarked")
	}
	if st.WorkRequired != 100 {
		t.Errorf("expected work required 100, got %v", st.WorkRequired)
	}

	// Obtain again returns the same record.
	st.WorkDone = 40
	again := reg.Obtain("chair1", 200)
	if again.WorkDone != 40 {
		t.Error("Obtain should return the existing record")
	}
	if again.WorkRequired != 100 {
		t.Error("Obtain must not overwrite an existing record's requirement")
	}
}

func TestRegistry_Prune(t *testing.T) {
	reg := NewRegistry()
	reg.Obtain("chair1", 100)
	reg.Obtain("gone", 100)

	pruned := reg.Prune(func(id string) bool { return id == "chair1" })

	if len(pruned) != 1 || pruned[0] != "gone" {
		t.Fatalf("expected [gone] pruned, got %v", pruned)
	}
	if _, ok := reg.Get("gone"); ok {
		t.Error("pruned record still present")
	}
	if _, ok := reg.Get("chair1"); !ok {
		t.Error("surviving record was pruned")
	}
}

func TestRegistry_SnapshotIsDeepCopy(t *testing.T) {
	reg := NewRegistry()
	st := reg.Obtain("chair1", 100)
	st.Marked = true
	st.Stored = []types.MaterialStack{{Type: "wood", Count: 5}}
	target := types.QualityGood
	st.TargetQuality = &target

	snap := reg.Snapshot()
	snap["chair1"].Stored[0].Count = 99
	*snap["chair1"].TargetQuality = types.QualityAwful

	if st.Stored[0].Count != 5 {
		t.Error("snapshot shares the stored slice with the live record")
	}
	if *st.TargetQuality != types.QualityGood {
		t.Error("snapshot shares the target pointer with the live record")
	}
}

func TestRegistry_Marked(t *testing.T) {
	reg := NewRegistry()
	reg.Obtain("b", 10).Marked = true
	reg.Obtain("a", 10).Marked = true
	reg.Obtain("c", 10)

	marked := reg.Marked()
	if len(marked) != 2 || marked[0] != "a" || marked[1] != "b" {
		t.Fatalf("expected sorted [a b], got %v", marked)
	}
}

func TestCapability_Default(t *testing.T) {
	caps := NewCapability()

	improvable := types.EntityTypeDef{ID: "chair", HasQuality: true, WorkCost: 100}
	if !caps.Improvable(improvable) {
		t.Error("quality type with work cost should be improvable")
	}

	noQuality := types.EntityTypeDef{ID: "wall", WorkCost: 100}
	if caps.Improvable(noQuality) {
		t.Error("type without quality attribute should not be improvable")
	}

	noWork := types.EntityTypeDef{ID: "art", HasQuality: true}
	if caps.Improvable(noWork) {
		t.Error("type without work cost should not be improvable")
	}
}

func TestCapability_RegisteredPredicateNarrows(t *testing.T) {
	caps := NewCapability()
	caps.Register(func(def types.EntityTypeDef) bool { return def.ID != "banned" })

	ok := types.EntityTypeDef{ID: "chair", HasQuality: true, WorkCost: 10}
	banned := types.EntityTypeDef{ID: "banned", HasQuality: true, WorkCost: 10}

	if !caps.Improvable(ok) {
		t.Error("unbanned type rejected")
	}
	if caps.Improvable(banned) {
		t.Error("banned type accepted")
	}
}

func TestDefs_TypeOf(t *testing.T) {
	defs := &Defs{
		EntityTypes: map[string]types.EntityTypeDef{
			"oak_chair": {ID: "oak_chair", Name: "Oak chair"},
		},
		Objects: map[string]types.ObjectDef{
			"chair1": {ID: "chair1", Type: "oak_chair"},
		},
	}

	def, ok := defs.TypeOf("chair1")
	if !ok || def.Name != "Oak chair" {
		t.Fatalf("expected oak chair definition, got %v ok=%v", def, ok)
	}
	if _, ok := defs.TypeOf("missing"); ok {
		t.Error("expected miss for unknown object")
	}
}
