package gto

import (
	rand "math/rand/v2"
	"sync/atomic"
)

// SampleAction draws one action according to the entry's frequencies
// using the supplied generator. The caller owns the generator, so a
// seeded one replays the same action sequence. Actions are walked in
// sorted order to keep sampling deterministic for a given RNG state.
func (f Frequencies) SampleAction(rng *rand.Rand) (Action, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}

	actions := f.actions()
	target := rng.Float64()
	for _, action := range actions {
		target -= f[action]
		if target < 0 {
			return action, nil
		}
	}
	// Frequencies sum to 1 within tolerance; land any residual mass on
	// the last action.
	return actions[len(actions)-1], nil
}

// Store publishes a table to concurrent readers and lets a writer swap
// in a replacement atomically. Readers never see a partially updated
// table; a query observes either the old table or the new one.
type Store struct {
	table atomic.Pointer[Table]
}

// NewStore creates a store serving the given table.
func NewStore(t *Table) *Store {
	s := &Store{}
	s.table.Store(t)
	return s
}

// Current returns the table the store is presently serving.
func (s *Store) Current() *Table {
	return s.table.Load()
}

// Swap atomically replaces the served table and returns the previous one.
func (s *Store) Swap(t *Table) *Table {
	return s.table.Swap(t)
}

// Lookup queries the currently served table.
func (s *Store) Lookup(sit Situation) (Frequencies, error) {
	return s.Current().Lookup(sit)
}

// SampleAction looks up a situation in the current table and samples an
// action from its frequencies.
func (s *Store) SampleAction(sit Situation, rng *rand.Rand) (Action, error) {
	freqs, err := s.Current().Lookup(sit)
	if err != nil {
		return "", err
	}
	return freqs.SampleAction(rng)
}
