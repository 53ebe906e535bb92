package icm

import (
	"errors"
	"math"
	"testing"
)

func TestEqualStacksSplitEvenly(t *testing.T) {
	t.Parallel()
	res, err := Compute([]float64{1000, 1000, 1000}, []float64{50, 30, 20})
	if err != nil {
		t.Fatal(err)
	}

	if res.Mode != ModeExact {
		t.Fatalf("Mode = %v, want exact", res.Mode)
	}
	for i, share := range res.Shares {
		if math.Abs(share-100.0/3) > 1e-9 {
			t.Errorf("player %d share = %v, want %v", i, share, 100.0/3)
		}
	}
}

func TestWinnerTakeAllIsChipProportional(t *testing.T) {
	t.Parallel()
	stacks := []float64{6000, 3000, 1000}
	res, err := Compute(stacks, []float64{100})
	if err != nil {
		t.Fatal(err)
	}

	// With a single payout, ICM equity equals chip share.
	for i, want := range []float64{60, 30, 10} {
		if math.Abs(res.Shares[i]-want) > 1e-9 {
			t.Errorf("player %d share = %v, want %v", i, res.Shares[i], want)
		}
	}
}

func TestClassicThreeHanded(t *testing.T) {
	t.Parallel()
	// Well-known reference: 50/30/20 stacks, 50/30/20 payouts.
	res, err := Compute([]float64{5000, 3000, 2000}, []float64{50, 30, 20})
	if err != nil {
		t.Fatal(err)
	}

	// Hand-computed Malmuth-Harville values.
	want := []float64{38.39, 32.75, 28.86}
	for i := range want {
		if math.Abs(res.Shares[i]-want[i]) > 0.05 {
			t.Errorf("player %d share = %.2f, want %.2f", i, res.Shares[i], want[i])
		}
	}

	// Big stack leads chips 50% but holds well under 50% of the pool:
	// the defining ICM property.
	if res.Shares[0] >= 50 {
		t.Errorf("chip leader share %v should be below chip proportion", res.Shares[0])
	}
}

func TestSharesSumToPool(t *testing.T) {
	t.Parallel()
	res, err := Compute([]float64{8000, 4500, 4000, 2500, 1000}, []float64{100, 60, 40})
	if err != nil {
		t.Fatal(err)
	}

	sum := 0.0
	for _, s := range res.Shares {
		sum += s
	}
	if math.Abs(sum-200) > 1e-9 {
		t.Errorf("Shares sum = %v, want 200", sum)
	}
}

func TestFinishProbabilitiesSumToOne(t *testing.T) {
	t.Parallel()
	stacks := []float64{4000, 3000, 2000, 1000}
	res, err := Compute(stacks, []float64{50, 30, 20, 0})
	if err != nil {
		t.Fatal(err)
	}

	// With payouts covering every place, each player finishes in
	// exactly one place.
	for i := range stacks {
		sum := 0.0
		for _, p := range res.FinishProbs[i] {
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("player %d finish probs sum to %v", i, sum)
		}
	}

	// Each place is won by exactly one player.
	for d := range res.FinishProbs[0] {
		sum := 0.0
		for i := range stacks {
			sum += res.FinishProbs[i][d]
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("place %d probabilities sum to %v", d+1, sum)
		}
	}
}

func TestSimulationFallback(t *testing.T) {
	t.Parallel()
	stacks := []float64{5000, 3000, 2000}
	payouts := []float64{50, 30, 20}

	exact, err := Compute(stacks, payouts)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := Compute(stacks, payouts, WithSimulation(), WithSeed(7), WithTrials(500_000))
	if err != nil {
		t.Fatal(err)
	}

	if sim.Mode != ModeSimulated {
		t.Fatalf("Mode = %v, want simulated", sim.Mode)
	}
	if sim.Trials != 500_000 {
		t.Errorf("Trials = %d, want 500000", sim.Trials)
	}

	// Half a million trials should land within a few tenths of exact.
	for i := range stacks {
		if math.Abs(sim.Shares[i]-exact.Shares[i]) > 0.3 {
			t.Errorf("player %d: simulated %v vs exact %v", i, sim.Shares[i], exact.Shares[i])
		}
	}
}

func TestSimulationReproducibility(t *testing.T) {
	t.Parallel()
	stacks := []float64{5000, 3000, 2000, 1500}
	payouts := []float64{60, 40}

	run := func() *Result {
		res, err := Compute(stacks, payouts, WithSimulation(), WithSeed(42), WithTrials(10_000))
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a := run()
	b := run()
	for i := range a.Shares {
		if a.Shares[i] != b.Shares[i] {
			t.Errorf("player %d: %v vs %v with identical seeds", i, a.Shares[i], b.Shares[i])
		}
	}
}

func TestStateLimitForcesSimulation(t *testing.T) {
	t.Parallel()
	res, err := Compute([]float64{5000, 3000, 2000}, []float64{50, 30, 20},
		WithStateLimit(1), WithSeed(1), WithTrials(10_000))
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode != ModeSimulated {
		t.Errorf("Mode = %v, want simulated under tiny state limit", res.Mode)
	}
}

func TestInvalidStacks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		stacks []float64
	}{
		{"zero stack", []float64{1000, 0}},
		{"negative stack", []float64{1000, -500}},
		{"nan stack", []float64{1000, math.NaN()}},
		{"single player", []float64{1000}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.stacks, []float64{100})
			var stackErr *InvalidStackError
			if !errors.As(err, &stackErr) {
				t.Errorf("Expected InvalidStackError, got %v", err)
			}
		})
	}
}

func TestInvalidPayouts(t *testing.T) {
	t.Parallel()
	stacks := []float64{1000, 1000, 1000}
	tests := []struct {
		name    string
		payouts []float64
	}{
		{"empty", nil},
		{"more payouts than players", []float64{50, 30, 10, 10}},
		{"negative payout", []float64{50, -10}},
		{"increasing payouts", []float64{30, 50}},
		{"zero first place", []float64{0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(stacks, tc.payouts)
			var payoutErr *InvalidPayoutError
			if !errors.As(err, &payoutErr) {
				t.Errorf("Expected InvalidPayoutError, got %v", err)
			}
		})
	}
}

func TestIcmFlattensEquity(t *testing.T) {
	t.Parallel()
	// Four players, three paid: the short stack's equity sits below
	// chip proportion, the micro-edge everyone folds around on the bubble.
	stacks := []float64{10000, 9000, 8000, 500}
	res, err := Compute(stacks, []float64{50, 30, 20})
	if err != nil {
		t.Fatal(err)
	}

	totalChips := 27500.0
	chipShare := 500 / totalChips * 100
	if res.Shares[3] <= chipShare {
		t.Errorf("short stack ICM share %v should exceed pure chip share %v (ICM flattens equity)", res.Shares[3], chipShare)
	}
	if res.Shares[0] >= 10000/totalChips*100*1.2 {
		t.Errorf("chip leader share %v should be compressed toward the field", res.Shares[0])
	}
}

func BenchmarkExactNineHanded(b *testing.B) {
	stacks := []float64{9000, 8000, 7000, 6000, 5000, 4000, 3000, 2000, 1000}
	payouts := []float64{50, 30, 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Compute(stacks, payouts)
	}
}

func BenchmarkSimulated(b *testing.B) {
	stacks := []float64{9000, 8000, 7000, 6000, 5000, 4000, 3000, 2000, 1000}
	payouts := []float64{50, 30, 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Compute(stacks, payouts, WithSimulation(), WithSeed(1), WithTrials(10_000))
	}
}
