// Package icm computes tournament prize-pool equity using the
// Malmuth-Harville model: the probability a player finishes first is
// proportional to their stack, and the probabilities for later places
// follow by conditioning on who already busted.
package icm

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/lox/pokertrainer/internal/randutil"
)

// Mode records how a result was produced.
type Mode int

const (
	// ModeExact walks every finish permutation with memoization.
	ModeExact Mode = iota
	// ModeSimulated samples finish orders when exact enumeration is too big.
	ModeSimulated
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeSimulated:
		return "simulated"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// InvalidStackError reports a stack that cannot appear in a live tournament.
type InvalidStackError struct {
	Index int
	Stack float64
}

func (e *InvalidStackError) Error() string {
	return fmt.Sprintf("invalid stack %v at seat %d: stacks must be positive and finite", e.Stack, e.Index)
}

// InvalidPayoutError reports a malformed payout structure.
type InvalidPayoutError struct {
	Reason string
}

func (e *InvalidPayoutError) Error() string {
	return fmt.Sprintf("invalid payouts: %s", e.Reason)
}

const (
	// DefaultStateLimit caps the number of memoized elimination states
	// before Compute falls back to simulation.
	DefaultStateLimit = 5_000_000

	// DefaultTrials is the simulation budget when falling back.
	DefaultTrials = 200_000

	// maxExactPlayers bounds the bitmask table: the reach slice is
	// dense, so 20 players already costs 8MB regardless of how few
	// states are reachable.
	maxExactPlayers = 20
)

// Options control the exact/simulated tradeoff.
type Options struct {
	// StateLimit is the maximum number of memoized states for exact
	// computation. Zero means DefaultStateLimit.
	StateLimit int
	// Trials is the simulation sample count. Zero means DefaultTrials.
	Trials int
	// Seed drives the simulation fallback. Identical inputs and seed
	// reproduce identical results.
	Seed int64
	// ForceSimulation skips the exact path even when it would fit.
	ForceSimulation bool
}

// Option mutates Options.
type Option func(*Options)

// WithStateLimit overrides the exact-computation state budget.
func WithStateLimit(limit int) Option {
	return func(o *Options) { o.StateLimit = limit }
}

// WithTrials overrides the simulation sample count.
func WithTrials(trials int) Option {
	return func(o *Options) { o.Trials = trials }
}

// WithSeed sets the simulation seed.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithSimulation forces the simulated path.
func WithSimulation() Option {
	return func(o *Options) { o.ForceSimulation = true }
}

// Result holds per-player prize equity.
type Result struct {
	// Shares[i] is player i's expected prize money, in payout units.
	Shares []float64 `json:"shares"`
	// FinishProbs[i][d] is the probability player i finishes in place
	// d+1, for the paid places only.
	FinishProbs [][]float64 `json:"finish_probs"`
	// Mode reports whether the result is exact or sampled.
	Mode Mode `json:"mode"`
	// Trials is the sample count for simulated results, zero for exact.
	Trials int `json:"trials,omitempty"`
}

// Compute returns the Malmuth-Harville prize equity for the given stacks
// and payout structure. Payouts are ordered first place outward and must
// be non-increasing; there may be fewer payouts than players but not
// more. Small fields are enumerated exactly; large ones are sampled with
// a seeded generator.
func Compute(stacks []float64, payouts []float64, opts ...Option) (*Result, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.StateLimit == 0 {
		o.StateLimit = DefaultStateLimit
	}
	if o.Trials == 0 {
		o.Trials = DefaultTrials
	}

	if err := validateStacks(stacks); err != nil {
		return nil, err
	}
	if err := validatePayouts(payouts, len(stacks)); err != nil {
		return nil, err
	}

	paid := len(payouts)
	n := len(stacks)

	if !o.ForceSimulation && n <= maxExactPlayers && exactStates(n, paid) <= o.StateLimit {
		res := computeExact(stacks, payouts)
		normalizeShares(res.Shares, payouts)
		return res, nil
	}

	res := computeSimulated(stacks, payouts, o.Trials, o.Seed)
	normalizeShares(res.Shares, payouts)
	return res, nil
}

func validateStacks(stacks []float64) error {
	if len(stacks) < 2 {
		return &InvalidStackError{Index: len(stacks), Stack: 0}
	}
	for i, s := range stacks {
		if s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
			return &InvalidStackError{Index: i, Stack: s}
		}
	}
	return nil
}

func validatePayouts(payouts []float64, players int) error {
	if len(payouts) == 0 {
		return &InvalidPayoutError{Reason: "no payouts"}
	}
	if len(payouts) > players {
		return &InvalidPayoutError{Reason: fmt.Sprintf("%d payouts for %d players", len(payouts), players)}
	}
	for i, p := range payouts {
		if p < 0 || math.IsInf(p, 0) || math.IsNaN(p) {
			return &InvalidPayoutError{Reason: fmt.Sprintf("payout %d is %v", i+1, p)}
		}
		if i > 0 && p > payouts[i-1] {
			return &InvalidPayoutError{Reason: "payouts must be non-increasing"}
		}
	}
	if payouts[0] == 0 {
		return &InvalidPayoutError{Reason: "first place pays nothing"}
	}
	return nil
}

// exactStates counts the elimination states the exact walk visits: one
// per subset of players that can still be alive when a paid place is
// being decided.
func exactStates(n, paid int) int {
	states := 0
	for d := 0; d < paid; d++ {
		c := binomial(n, d)
		if c < 0 || states+c < 0 {
			return math.MaxInt
		}
		states += c
	}
	return states
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}

// computeExact runs a level-order walk over elimination states. reach[m]
// is the probability that exactly the players in mask m are still alive
// with the next paid place about to be decided. Each level peels one
// finisher off proportionally to stack, the Malmuth-Harville recursion.
func computeExact(stacks, payouts []float64) *Result {
	n := len(stacks)
	paid := len(payouts)

	full := (uint32(1) << n) - 1
	reach := make([]float64, 1<<n)
	reach[full] = 1

	shares := make([]float64, n)
	probs := make([][]float64, n)
	for i := range probs {
		probs[i] = make([]float64, paid)
	}

	// Masks at depth d have n-d live players. Walking masks in
	// descending order visits each level before the ones it feeds.
	for mask := full; mask > 0; mask-- {
		p := reach[mask]
		if p == 0 {
			continue
		}
		d := n - bits.OnesCount32(mask)
		if d >= paid {
			continue
		}

		total := 0.0
		for m := mask; m != 0; m &= m - 1 {
			total += stacks[bits.TrailingZeros32(m)]
		}

		for m := mask; m != 0; m &= m - 1 {
			i := bits.TrailingZeros32(m)
			pi := p * stacks[i] / total
			probs[i][d] += pi
			shares[i] += pi * payouts[d]
			if d+1 < paid {
				reach[mask&^(1<<i)] += pi
			}
		}
	}

	return &Result{Shares: shares, FinishProbs: probs, Mode: ModeExact}
}

// computeSimulated samples complete finish orders: each place is awarded
// to a remaining player with probability proportional to stack.
func computeSimulated(stacks, payouts []float64, trials int, seed int64) *Result {
	n := len(stacks)
	paid := len(payouts)
	rng := randutil.New(seed)

	shares := make([]float64, n)
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, paid)
	}

	remaining := make([]int, n)
	live := make([]float64, n)

	for trial := 0; trial < trials; trial++ {
		for i := range remaining {
			remaining[i] = i
			live[i] = stacks[i]
		}
		alive := n
		total := 0.0
		for _, s := range stacks {
			total += s
		}

		for d := 0; d < paid; d++ {
			target := rng.Float64() * total
			pick := alive - 1
			for j := 0; j < alive; j++ {
				target -= live[j]
				if target < 0 {
					pick = j
					break
				}
			}

			player := remaining[pick]
			shares[player] += payouts[d]
			counts[player][d]++

			total -= live[pick]
			alive--
			remaining[pick] = remaining[alive]
			live[pick] = live[alive]
		}
	}

	probs := make([][]float64, n)
	for i := range probs {
		probs[i] = make([]float64, paid)
		for d := 0; d < paid; d++ {
			probs[i][d] = float64(counts[i][d]) / float64(trials)
		}
		shares[i] /= float64(trials)
	}

	return &Result{Shares: shares, FinishProbs: probs, Mode: ModeSimulated, Trials: trials}
}

// normalizeShares scales out float drift so shares sum exactly to the
// prize pool.
func normalizeShares(shares, payouts []float64) {
	pool := 0.0
	for _, p := range payouts {
		pool += p
	}
	sum := 0.0
	for _, s := range shares {
		sum += s
	}
	if sum == 0 || sum == pool {
		return
	}
	scale := pool / sum
	for i := range shares {
		shares[i] *= scale
	}
}
