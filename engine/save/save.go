// Package save implements persistence for improvement state: a JSON save
// format and a SQLite-backed per-entity blob store.
package save

import (
	"encoding/json"

	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string                            `json:"version"`
	Scenario    string                            `json:"scenario"`
	Tick        int                               `json:"tick"`
	States      map[string]types.ImprovementState `json:"states"`
	Qualities   map[string]types.QualityTier      `json:"qualities"`
	RNGSeed     int64                             `json:"rng_seed"`
	RNGPosition int64                             `json:"rng_position"`
}

// Save serializes improvement state, runtime entity qualities, and the
// RNG checkpoint to JSON bytes.
func Save(defs *state.Defs, reg *state.Registry, qualities map[string]types.QualityTier,
	tick int, rngSeed, rngPosition int64) ([]byte, error) {

	data := SaveData{
		Version:     defs.Scenario.Version,
		Scenario:    defs.Scenario.Title,
		Tick:        tick,
		States:      reg.Snapshot(),
		Qualities:   qualities,
		RNGSeed:     rngSeed,
		RNGPosition: rngPosition,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData. Missing maps come back
// non-nil; absent entries mean default/unmarked.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.States == nil {
		sd.States = map[string]types.ImprovementState{}
	}
	if sd.Qualities == nil {
		sd.Qualities = map[string]types.QualityTier{}
	}
	return &sd, nil
}

// Apply installs loaded save data into the registry, pruning records
// whose entity no longer exists. Load never fails on stale records; they
// are dropped and reported back.
func Apply(reg *state.Registry, sd *SaveData, exists func(entityID string) bool) (pruned []string) {
	for id, st := range sd.States {
		reg.Put(id, st)
	}
	return reg.Prune(exists)
}
