// Package gto stores precomputed action frequencies keyed by game
// situation and answers strategy queries against them. Tables are
// immutable once loaded; live services swap whole tables through a
// Store rather than mutating entries in place.
package gto

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/lox/pokertrainer/internal/fileutil"
)

const tableFileVersion = 1

// freqTolerance is how far a situation's frequencies may drift from
// summing to 1 before the table is rejected at load time.
const freqTolerance = 1e-3

// Action is a strategic option at a decision point.
type Action string

const (
	ActionFold  Action = "fold"
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionBet   Action = "bet"
	ActionRaise Action = "raise"
	ActionPush  Action = "push"
)

// Street names a betting round.
type Street string

const (
	Preflop Street = "preflop"
	Flop    Street = "flop"
	Turn    Street = "turn"
	River   Street = "river"
)

// Situation identifies a decision point: where we are in the hand, who
// is acting, the effective stack in big blinds, what action we face and
// the acting player's starting-hand class.
type Situation struct {
	Street    Street `json:"street"`
	Position  string `json:"position"`
	StackBB   int    `json:"stack_bb"`
	Facing    string `json:"facing"`
	HandClass string `json:"hand_class"`
}

// Key returns the canonical map key for the situation.
func (s Situation) Key() string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", s.Street, s.Position, s.StackBB, s.Facing, s.HandClass)
}

func (s Situation) String() string {
	return fmt.Sprintf("%s %s %dbb facing %s with %s", s.Street, s.Position, s.StackBB, s.Facing, s.HandClass)
}

// UnknownSituationError reports a lookup for a situation the table does
// not cover.
type UnknownSituationError struct {
	Situation Situation
}

func (e *UnknownSituationError) Error() string {
	return fmt.Sprintf("no frequencies for situation: %s", e.Situation)
}

// Frequencies maps each available action to the rate it should be
// taken. Entries sum to 1 within freqTolerance.
type Frequencies map[Action]float64

// Validate checks the entry is a probability distribution.
func (f Frequencies) Validate() error {
	if len(f) == 0 {
		return errors.New("no actions")
	}
	sum := 0.0
	for action, freq := range f {
		if freq < 0 || math.IsNaN(freq) {
			return fmt.Errorf("action %s has frequency %v", action, freq)
		}
		sum += freq
	}
	if math.Abs(sum-1.0) > freqTolerance {
		return fmt.Errorf("frequencies sum to %v, want 1", sum)
	}
	return nil
}

// actions returns the entry's actions in sorted order so that sampling
// walks them deterministically.
func (f Frequencies) actions() []Action {
	actions := make([]Action, 0, len(f))
	for a := range f {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// clone returns an independent copy so callers cannot reach back into
// the table.
func (f Frequencies) clone() Frequencies {
	out := make(Frequencies, len(f))
	for a, v := range f {
		out[a] = v
	}
	return out
}

// Table is an immutable set of situation frequencies.
type Table struct {
	name        string
	generatedAt time.Time
	entries     map[string]Frequencies
}

// tableFile is the on-disk representation.
type tableFile struct {
	Version     int                    `json:"version"`
	Name        string                 `json:"name"`
	GeneratedAt time.Time              `json:"generated_at"`
	Entries     map[string]Frequencies `json:"entries"`
}

// NewTable builds a validated table from situation entries. The input
// maps are copied; later mutation of the arguments does not affect the
// table.
func NewTable(name string, entries map[Situation]Frequencies) (*Table, error) {
	t := &Table{
		name:        name,
		generatedAt: time.Now().UTC(),
		entries:     make(map[string]Frequencies, len(entries)),
	}
	for sit, freqs := range entries {
		if err := freqs.Validate(); err != nil {
			return nil, fmt.Errorf("situation %s: %w", sit, err)
		}
		t.entries[sit.Key()] = freqs.clone()
	}
	return t, nil
}

// Name returns the table's label, e.g. "push-fold" or a solver run id.
func (t *Table) Name() string { return t.name }

// GeneratedAt returns when the table was built.
func (t *Table) GeneratedAt() time.Time { return t.generatedAt }

// Len returns the number of situations covered.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the frequencies for a situation. Missing situations
// produce an UnknownSituationError; an unknown situation is not an
// instruction to fold, so callers must distinguish it from a zero
// frequency.
func (t *Table) Lookup(s Situation) (Frequencies, error) {
	freqs, ok := t.entries[s.Key()]
	if !ok {
		return nil, &UnknownSituationError{Situation: s}
	}
	return freqs.clone(), nil
}

// Save writes the table as indented JSON. The write is atomic so a
// reader loading the path concurrently sees either the old file or the
// new one, never a torn write.
func (t *Table) Save(path string) error {
	file := tableFile{
		Version:     tableFileVersion,
		Name:        t.name,
		GeneratedAt: t.generatedAt,
		Entries:     t.entries,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// LoadTable reads and validates a table from disk.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file tableFile
	if err := json.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	if file.Version != tableFileVersion {
		return nil, fmt.Errorf("unsupported table version %d", file.Version)
	}
	for key, freqs := range file.Entries {
		if err := freqs.Validate(); err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
	}

	return &Table{
		name:        file.Name,
		generatedAt: file.GeneratedAt,
		entries:     file.Entries,
	}, nil
}
