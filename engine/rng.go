package engine

import "math/rand"

// Checkpoint identifies an exact point in an RNG's roll sequence. Saves
// store it; ResumeRNG turns it back into a live source.
type Checkpoint struct {
	Seed     int64
	Position int64
}

// RNG is the deterministic random source for outcome rolls. Every call
// advances the checkpoint position, so resuming from the same
// checkpoint replays the same sequence.
type RNG struct {
	cp  Checkpoint
	src *rand.Rand
}

// NewRNG creates an RNG at the start of the sequence for a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		cp:  Checkpoint{Seed: seed},
		src: rand.New(rand.NewSource(seed)),
	}
}

// ResumeRNG rebuilds an RNG at a saved checkpoint by replaying the
// source up to its position.
func ResumeRNG(cp Checkpoint) *RNG {
	r := NewRNG(cp.Seed)
	for i := int64(0); i < cp.Position; i++ {
		r.src.Int63()
	}
	r.cp.Position = cp.Position
	return r
}

// Checkpoint returns the current sequence position for saving.
func (r *RNG) Checkpoint() Checkpoint {
	return r.cp
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	r.cp.Position++
	return r.src.Intn(sides) + 1
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with a positive total; zero-weight entries
// are never selected.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r.cp.Position++
	pick := r.src.Intn(total)
	for i, w := range weights {
		if pick < w {
			return i
		}
		pick -= w
	}
	return len(weights) - 1
}
