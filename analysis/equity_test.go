package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lox/pokertrainer/poker"
)

func mustRange(t *testing.T, notation string) *Range {
	t.Helper()
	r, err := ParseRange(notation)
	if err != nil {
		t.Fatalf("ParseRange(%q): %v", notation, err)
	}
	return r
}

func TestAcesVersusKingsExact(t *testing.T) {
	t.Parallel()
	eq, err := ComputeEquity(context.Background(),
		[]*Range{mustRange(t, "AA"), mustRange(t, "KK")},
		nil, nil, Options{Mode: ModeExact})
	if err != nil {
		t.Fatal(err)
	}

	if eq.Mode != ModeExact {
		t.Fatalf("Mode = %v, want exact", eq.Mode)
	}
	if eq.Partial {
		t.Fatal("Exact enumeration should not be partial")
	}

	// AA vs KK is roughly 82/18 heads-up.
	if aa := eq.Results[0].Equity; math.Abs(aa-0.82) > 0.005 {
		t.Errorf("AA equity = %.4f, want 0.82 +/- 0.005", aa)
	}
	if kk := eq.Results[1].Equity; math.Abs(kk-0.18) > 0.005 {
		t.Errorf("KK equity = %.4f, want 0.18 +/- 0.005", kk)
	}
}

func TestBigSlickVersusQueensExact(t *testing.T) {
	t.Parallel()
	eq, err := ComputeEquity(context.Background(),
		[]*Range{mustRange(t, "AKo"), mustRange(t, "QQ")},
		nil, nil, Options{Mode: ModeExact})
	if err != nil {
		t.Fatal(err)
	}

	// AKo vs QQ is the classic ~43/57 race; suited ace-king picks up
	// roughly two extra points (~46/54).
	if ak := eq.Results[0].Equity; math.Abs(ak-0.432) > 0.01 {
		t.Errorf("AKo equity = %.4f, want 0.432 +/- 0.01", ak)
	}
	if qq := eq.Results[1].Equity; math.Abs(qq-0.568) > 0.01 {
		t.Errorf("QQ equity = %.4f, want 0.568 +/- 0.01", qq)
	}
}

func TestSuitedBigSlickVersusQueensExact(t *testing.T) {
	t.Parallel()
	eq, err := ComputeEquity(context.Background(),
		[]*Range{mustRange(t, "AKs"), mustRange(t, "QQ")},
		nil, nil, Options{Mode: ModeExact})
	if err != nil {
		t.Fatal(err)
	}

	if ak := eq.Results[0].Equity; math.Abs(ak-0.46) > 0.01 {
		t.Errorf("AKs equity = %.4f, want 0.46 +/- 0.01", ak)
	}
}

func TestEquityProbabilitiesSumToOne(t *testing.T) {
	t.Parallel()
	board := poker.MustParseCards("Ts7s2h")
	eq, err := ComputeEquity(context.Background(),
		[]*Range{mustRange(t, "AA,KQs"), mustRange(t, "TT+,AKo"), mustRange(t, "76s")},
		board, nil, Options{Mode: ModeMonteCarlo, Iterations: 20_000, Seed: 99, Workers: 4})
	if err != nil {
		t.Fatal(err)
	}

	equitySum := 0.0
	for i, r := range eq.Results {
		total := r.Win + r.Tie + r.Lose
		if math.Abs(total-1.0) > 1e-9 {
			t.Errorf("participant %d: win+tie+lose = %v, want 1.0", i, total)
		}
		equitySum += r.Equity
	}
	if math.Abs(equitySum-1.0) > 1e-9 {
		t.Errorf("Summed equity = %v, want 1.0", equitySum)
	}
}

func TestRiverEnumerationIsExact(t *testing.T) {
	t.Parallel()
	// Full board: one completion, winner is decided.
	board := poker.MustParseCards("AsKd9c4h2s")
	eq, err := ComputeEquity(context.Background(),
		[]*Range{mustRange(t, "AA"), mustRange(t, "KK")},
		board, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if eq.Mode != ModeExact {
		t.Errorf("River query should auto-select exact, got %v", eq.Mode)
	}
	// Trip aces beat trip kings on every live combination.
	if eq.Results[0].Equity != 1.0 {
		t.Errorf("AA equity on this river = %v, want 1.0", eq.Results[0].Equity)
	}
	if eq.Results[1].Equity != 0.0 {
		t.Errorf("KK equity on this river = %v, want 0.0", eq.Results[1].Equity)
	}
}

func TestSplitPotEquity(t *testing.T) {
	t.Parallel()
	// Board plays: both participants split every run-out.
	board := poker.MustParseCards("AsKsQdJc8h")
	r1, err := RangeFromCards(poker.MustParseCards("2h3d")[0], poker.MustParseCards("2h3d")[1])
	if err != nil {
		t.Fatal(err)
	}
	r2, err := RangeFromCards(poker.MustParseCards("2c3s")[0], poker.MustParseCards("2c3s")[1])
	if err != nil {
		t.Fatal(err)
	}

	eq, err := ComputeEquity(context.Background(), []*Range{r1, r2}, board, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for i, r := range eq.Results {
		if r.Tie != 1.0 {
			t.Errorf("participant %d tie = %v, want 1.0", i, r.Tie)
		}
		if math.Abs(r.Equity-0.5) > 1e-12 {
			t.Errorf("participant %d equity = %v, want 0.5", i, r.Equity)
		}
	}
}

func TestMonteCarloReproducibility(t *testing.T) {
	t.Parallel()
	opts := Options{Mode: ModeMonteCarlo, Iterations: 10_000, Seed: 42, Workers: 4}

	run := func() *Equity {
		eq, err := ComputeEquity(context.Background(),
			[]*Range{mustRange(t, "AQs+"), mustRange(t, "88")},
			nil, nil, opts)
		if err != nil {
			t.Fatal(err)
		}
		return eq
	}

	first := run()
	second := run()

	if first.Trials != second.Trials {
		t.Fatalf("Trials differ: %d vs %d", first.Trials, second.Trials)
	}
	for i := range first.Results {
		// Bit-identical, not approximately equal.
		if first.Results[i] != second.Results[i] {
			t.Errorf("participant %d differs: %+v vs %+v", i, first.Results[i], second.Results[i])
		}
	}
}

func TestMonteCarloSeedChangesResult(t *testing.T) {
	t.Parallel()
	base := Options{Mode: ModeMonteCarlo, Iterations: 5_000, Workers: 2}

	optsA := base
	optsA.Seed = 1
	optsB := base
	optsB.Seed = 2

	participants := func() []*Range {
		return []*Range{mustRange(t, "AKs"), mustRange(t, "QQ")}
	}

	a, err := ComputeEquity(context.Background(), participants(), nil, nil, optsA)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeEquity(context.Background(), participants(), nil, nil, optsB)
	if err != nil {
		t.Fatal(err)
	}

	if a.Results[0] == b.Results[0] {
		t.Error("Different seeds produced identical Monte Carlo results")
	}
}

func TestOverlappingCards(t *testing.T) {
	t.Parallel()
	asKs := poker.MustParseCards("AsKs")

	tests := []struct {
		name  string
		setup func(t *testing.T) ([]*Range, []poker.Card, []poker.Card)
	}{
		{
			name: "board shares card with concrete hand",
			setup: func(t *testing.T) ([]*Range, []poker.Card, []poker.Card) {
				r1, _ := RangeFromCards(asKs[0], asKs[1])
				return []*Range{r1, mustRange(t, "QQ")}, poker.MustParseCards("AsQd2h"), nil
			},
		},
		{
			name: "duplicate board cards",
			setup: func(t *testing.T) ([]*Range, []poker.Card, []poker.Card) {
				return []*Range{mustRange(t, "AA"), mustRange(t, "KK")},
					[]poker.Card{asKs[0], asKs[0], poker.MustParseCards("2h")[0]}, nil
			},
		},
		{
			name: "dead card duplicates board",
			setup: func(t *testing.T) ([]*Range, []poker.Card, []poker.Card) {
				return []*Range{mustRange(t, "AA"), mustRange(t, "KK")},
					poker.MustParseCards("As7d2h"), poker.MustParseCards("As")
			},
		},
		{
			name: "two concrete hands share a card",
			setup: func(t *testing.T) ([]*Range, []poker.Card, []poker.Card) {
				r1, _ := RangeFromCards(asKs[0], asKs[1])
				r2, _ := RangeFromCards(asKs[0], poker.MustParseCards("Qd")[0])
				return []*Range{r1, r2}, nil, nil
			},
		},
	}

	for _, testCase := range tests {
		tc := testCase
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			participants, board, dead := tc.setup(t)
			_, err := ComputeEquity(context.Background(), participants, board, dead, Options{})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var overlapErr *OverlappingCardsError
			if !errors.As(err, &overlapErr) {
				t.Errorf("Expected OverlappingCardsError, got %T: %v", err, err)
			}
		})
	}
}

func TestRangeCollisionRenormalization(t *testing.T) {
	t.Parallel()
	// Board holds As: the AA range loses its three As combos but the
	// query still succeeds on the remaining ones.
	board := poker.MustParseCards("As7d2h")
	eq, err := ComputeEquity(context.Background(),
		[]*Range{mustRange(t, "AA"), mustRange(t, "KK")},
		board, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for i, r := range eq.Results {
		total := r.Win + r.Tie + r.Lose
		if math.Abs(total-1.0) > 1e-9 {
			t.Errorf("participant %d probabilities sum to %v", i, total)
		}
	}
}

func TestCancelledQueryReturnsPartialResult(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eq, err := ComputeEquity(ctx,
		[]*Range{mustRange(t, "AA"), mustRange(t, "KK")},
		nil, nil, Options{Mode: ModeMonteCarlo, Iterations: 1_000_000, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}

	if !eq.Partial {
		t.Error("Cancelled query should report a partial result")
	}
	if eq.Trials >= 1_000_000 {
		t.Errorf("Cancelled query reported full budget: %d trials", eq.Trials)
	}
}

func TestInvalidBoardSizes(t *testing.T) {
	t.Parallel()
	for _, n := range []int{1, 2, 6} {
		board := poker.MustParseCards("2h3d4c5s6h9d")[:n]
		_, err := ComputeEquity(context.Background(),
			[]*Range{mustRange(t, "AA"), mustRange(t, "KK")},
			board, nil, Options{})
		if err == nil {
			t.Errorf("Expected error for %d-card board", n)
		}
	}
}

func TestTooFewParticipants(t *testing.T) {
	t.Parallel()
	_, err := ComputeEquity(context.Background(),
		[]*Range{mustRange(t, "AA")}, nil, nil, Options{})
	if err == nil {
		t.Error("Expected error for single participant")
	}
}

func BenchmarkMonteCarloEquity(b *testing.B) {
	aa, _ := ParseRange("AA")
	kk, _ := ParseRange("KK")
	opts := Options{Mode: ModeMonteCarlo, Iterations: 10_000, Seed: 42, Workers: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeEquity(context.Background(), []*Range{aa, kk}, nil, nil, opts)
	}
}

func BenchmarkTurnEnumeration(b *testing.B) {
	aa, _ := ParseRange("AA")
	kk, _ := ParseRange("KK")
	board := poker.MustParseCards("Ts7s2h4d")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeEquity(context.Background(), []*Range{aa, kk}, board, nil, Options{})
	}
}
