package ledger

import (
	"testing"

	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		EntityTypes: map[string]types.EntityTypeDef{
			"oak_chair": {
				ID:       "oak_chair",
				Name:     "Oak chair",
				WorkCost: 100,
				BuildCost: []types.MaterialStack{
					{Type: "cloth", Count: 2},
					{Type: "wood", Count: 5},
				},
				HasQuality: true,
			},
		},
		Objects: map[string]types.ObjectDef{
			"chair1": {ID: "chair1", Type: "oak_chair"},
		},
	}
}

func testSettings() *types.Settings {
	return &types.Settings{RequireMaterials: true, MaterialCostMultiplier: 1.0}
}

func newTestLedger(settings *types.Settings) (*Ledger, *state.Registry) {
	reg := state.NewRegistry()
	return New(testDefs(), reg, settings), reg
}

func TestRequired_ScalesAndRoundsUp(t *testing.T) {
	settings := testSettings()
	settings.MaterialCostMultiplier = 0.5
	led, _ := newTestLedger(settings)

	req := led.Required("chair1")
	want := map[string]int{"cloth": 1, "wood": 3} // ceil(2*0.5), ceil(5*0.5)
	if len(req) != len(want) {
		t.Fatalf("expected %d requirements, got %v", len(want), req)
	}
	for _, r := range req {
		if want[r.Type] != r.Count {
			t.Errorf("%s: got %d, want %d", r.Type, r.Count, want[r.Type])
		}
	}
}

func TestRequired_MultiplierClamped(t *testing.T) {
	settings := testSettings()
	settings.MaterialCostMultiplier = 50.0
	led, _ := newTestLedger(settings)

	for _, r := range led.Required("chair1") {
		base := 0
		for _, c := range testDefs().EntityTypes["oak_chair"].BuildCost {
			if c.Type == r.Type {
				base = c.Count
			}
		}
		if r.Count != base*2 { // clamped to MaxCostMultiplier
			t.Errorf("%s: got %d, want %d (x%.2f cap)", r.Type, r.Count, base*2, MaxCostMultiplier)
		}
	}
}

func TestRequired_DisabledByConfig(t *testing.T) {
	settings := testSettings()
	settings.RequireMaterials = false
	led, _ := newTestLedger(settings)

	if req := led.Required("chair1"); req != nil {
		t.Errorf("expected no requirement with materials disabled, got %v", req)
	}
}

func TestAccept_FilterAndPartial(t *testing.T) {
	led, reg := newTestLedger(testSettings())

	// Unmarked target rejects everything.
	reg.Obtain("chair1", 100)
	if got := led.Accept("chair1", "wood", 3); got != 0 {
		t.Errorf("unmarked target accepted %d units", got)
	}

	reg.Obtain("chair1", 100).SetMarkedDirect(true)

	// Material that is not required is rejected outright.
	if got := led.Accept("chair1", "gold", 3); got != 0 {
		t.Errorf("unrequired material accepted: %d", got)
	}

	// Partial delivery, then an over-delivery that is trimmed to need.
	if got := led.Accept("chair1", "wood", 3); got != 3 {
		t.Errorf("partial accept = %d, want 3", got)
	}
	if got := led.Accept("chair1", "wood", 10); got != 2 {
		t.Errorf("over-delivery accept = %d, want 2", got)
	}
	// Requirement met; further offers rejected.
	if got := led.Accept("chair1", "wood", 1); got != 0 {
		t.Errorf("satisfied material accepted more: %d", got)
	}

	st, _ := reg.Get("chair1")
	if n := storedCount(st.Stored, "wood"); n != 5 {
		t.Errorf("stored wood = %d, want 5", n)
	}
}

func TestRemaining_SubtractsStored(t *testing.T) {
	led, reg := newTestLedger(testSettings())
	reg.Obtain("chair1", 100).SetMarkedDirect(true)
	led.Accept("chair1", "wood", 5)

	rem := led.Remaining("chair1")
	if len(rem) != 1 || rem[0].Type != "cloth" || rem[0].Count != 2 {
		t.Fatalf("expected cloth x2 remaining, got %v", rem)
	}
}

func TestRemaining_ConfigFlipReleasesGate(t *testing.T) {
	settings := testSettings()
	led, reg := newTestLedger(settings)
	reg.Obtain("chair1", 100).SetMarkedDirect(true)
	led.Accept("chair1", "wood", 2)

	// Flipping materials off mid-improvement: stored stacks stay, but
	// nothing gates work any more.
	settings.RequireMaterials = false
	if rem := led.Remaining("chair1"); rem != nil {
		t.Errorf("expected no remaining need, got %v", rem)
	}
	st, _ := reg.Get("chair1")
	if storedCount(st.Stored, "wood") != 2 {
		t.Error("stored materials should survive the config flip")
	}
}

func TestAcceptDirect_BypassesFilters(t *testing.T) {
	led, reg := newTestLedger(testSettings())
	st := reg.Obtain("chair1", 100) // unmarked

	led.AcceptDirect(st, "gold", 4)
	if storedCount(st.Stored, "gold") != 4 {
		t.Error("direct store should bypass marked and requirement filters")
	}
}

func TestConsume_EmptiesContainer(t *testing.T) {
	led, reg := newTestLedger(testSettings())
	reg.Obtain("chair1", 100).SetMarkedDirect(true)
	led.Accept("chair1", "wood", 5)

	led.Consume("chair1")
	st, _ := reg.Get("chair1")
	if len(st.Stored) != 0 {
		t.Errorf("consume left %v stored", st.Stored)
	}
}

func TestDrainTo_ConservesMaterials(t *testing.T) {
	led, reg := newTestLedger(testSettings())
	reg.Obtain("chair1", 100).SetMarkedDirect(true)
	led.Accept("chair1", "wood", 5)
	led.Accept("chair1", "cloth", 2)

	drained := map[string]int{}
	led.DrainTo("chair1", func(s types.MaterialStack) {
		drained[s.Type] += s.Count
	})

	if drained["wood"] != 5 || drained["cloth"] != 2 {
		t.Errorf("drain lost materials: %v", drained)
	}
	st, _ := reg.Get("chair1")
	if len(st.Stored) != 0 {
		t.Error("container not emptied after drain")
	}
}
