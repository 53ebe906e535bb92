package analysis

import (
	"context"
	"fmt"

	"github.com/lox/pokertrainer/poker"
)

// maxPreflopOpponents bounds the opponent counts stored per class.
const maxPreflopOpponents = 9

// PreflopTable holds Monte Carlo equities for the 169 starting-hand
// classes against 1..9 random opponents. Used by the equity quiz.
type PreflopTable struct {
	// Equities[class][n-1] is the class's equity against n random opponents.
	Equities map[string][maxPreflopOpponents]float64 `json:"equities"`
}

// GeneratePreflopTable simulates every starting-hand class against random
// opponents. The seed makes the whole table reproducible; simulations is
// the per-matchup Monte Carlo budget.
func GeneratePreflopTable(ctx context.Context, simulations int, seed int64) (*PreflopTable, error) {
	table := &PreflopTable{
		Equities: make(map[string][maxPreflopOpponents]float64, 169),
	}

	for _, class := range AllClasses() {
		hero, err := classRepresentative(class)
		if err != nil {
			return nil, err
		}

		var equities [maxPreflopOpponents]float64
		for opponents := 1; opponents <= maxPreflopOpponents; opponents++ {
			participants := make([]*Range, 0, opponents+1)
			participants = append(participants, hero)
			for i := 0; i < opponents; i++ {
				participants = append(participants, RandomRange())
			}

			eq, err := ComputeEquity(ctx, participants, nil, nil, Options{
				Mode:       ModeMonteCarlo,
				Iterations: simulations,
				Seed:       seed,
			})
			if err != nil {
				return nil, fmt.Errorf("class %s vs %d: %w", class, opponents, err)
			}
			if eq.Partial {
				return nil, context.Cause(ctx)
			}
			equities[opponents-1] = eq.Results[0].Equity
		}
		table.Equities[class] = equities
	}

	return table, nil
}

// Equity returns the stored equity for a class against n opponents, or an
// error for unknown classes and out-of-range opponent counts.
func (t *PreflopTable) Equity(class string, opponents int) (float64, error) {
	equities, ok := t.Equities[class]
	if !ok {
		return 0, fmt.Errorf("unknown hand class %q", class)
	}
	if opponents < 1 || opponents > maxPreflopOpponents {
		return 0, fmt.Errorf("opponent count %d outside 1-%d", opponents, maxPreflopOpponents)
	}
	return equities[opponents-1], nil
}

// classRepresentative picks one concrete combination for a class. Suit
// choice does not matter preflop against random ranges.
func classRepresentative(class string) (*Range, error) {
	if len(class) < 2 || len(class) > 3 {
		return nil, fmt.Errorf("invalid hand class %q", class)
	}

	high := rankIndex(class[0])
	low := rankIndex(class[1])
	if high < 0 || low < 0 {
		return nil, fmt.Errorf("invalid hand class %q", class)
	}

	suited := len(class) == 3 && class[2] == 's'
	if suited {
		return RangeFromCards(
			poker.NewCard(uint8(high), poker.Spades),
			poker.NewCard(uint8(low), poker.Spades),
		)
	}
	return RangeFromCards(
		poker.NewCard(uint8(high), poker.Spades),
		poker.NewCard(uint8(low), poker.Hearts),
	)
}

func rankIndex(c byte) int {
	for i := 0; i < len(classRankChars); i++ {
		if classRankChars[i] == c {
			return i
		}
	}
	return -1
}
