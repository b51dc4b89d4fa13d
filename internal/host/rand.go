package host

import "math/rand"

// NewSeededRand builds a deterministic random source for VM.SetRand, used
// by the CLI's -seed flag for reproducible playthroughs (SPEC_FULL §4).
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
