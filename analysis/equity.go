package analysis

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertrainer/internal/randutil"
	"github.com/lox/pokertrainer/poker"
)

// OverlappingCardsError reports a card appearing in more than one of the
// board, dead cards, or concrete participant hands.
type OverlappingCardsError struct {
	Card poker.Card
}

func (e *OverlappingCardsError) Error() string {
	return fmt.Sprintf("card %s appears more than once", e.Card)
}

// Mode selects the equity algorithm.
type Mode int

const (
	// ModeAuto enumerates exactly when the completion count fits the
	// exhaustive limit, otherwise samples.
	ModeAuto Mode = iota
	ModeExact
	ModeMonteCarlo
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeMonteCarlo:
		return "monte-carlo"
	default:
		return "auto"
	}
}

const (
	// DefaultExhaustiveLimit is the completion-count threshold below which
	// ModeAuto enumerates every remaining run-out exactly. Chosen so an
	// auto query stays interactive (~tens of milliseconds); callers
	// wanting exact preflop multi-range results force ModeExact.
	DefaultExhaustiveLimit = 2_000_000

	// DefaultIterations is the Monte Carlo budget when none is given.
	DefaultIterations = 100_000

	maxComboAttempts = 64
	cancelCheckEvery = 4096
)

// Options control an equity computation. The zero value selects ModeAuto
// with default budget and a zero seed; a fixed Seed, Iterations and
// Workers triple reproduces Monte Carlo results exactly.
type Options struct {
	Mode            Mode
	Iterations      int   // Monte Carlo board completions to draw
	Seed            int64 // seed for the Monte Carlo sampler
	Workers         int   // parallel workers; part of the reproducibility contract
	ExhaustiveLimit int   // override for the ModeAuto threshold
}

func (o Options) withDefaults() Options {
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Workers <= 0 {
		o.Workers = min(runtime.NumCPU(), 8)
	}
	if o.ExhaustiveLimit <= 0 {
		o.ExhaustiveLimit = DefaultExhaustiveLimit
	}
	return o
}

// Result holds one participant's outcome probabilities. Win, Tie and Lose
// are full event probabilities summing to 1; Equity adds fractional tie
// credit (1/k per k-way tie) so equities across participants sum to 1.
type Result struct {
	Win    float64 `json:"win"`
	Tie    float64 `json:"tie"`
	Lose   float64 `json:"lose"`
	Equity float64 `json:"equity"`
}

// Equity is an immutable snapshot of one equity computation.
type Equity struct {
	Results []Result `json:"results"`
	Mode    Mode     `json:"-"`
	Trials  int      `json:"trials"`  // board completions evaluated
	Partial bool     `json:"partial"` // cancelled before the full budget
}

type combo struct {
	hand   poker.Hand
	weight float64
}

// tally accumulates weighted outcomes per participant.
type tally struct {
	win     []float64
	tie     []float64
	lose    []float64
	credit  []float64
	weight  float64
	trials  int
	partial bool
}

func newTally(n int) *tally {
	return &tally{
		win:    make([]float64, n),
		tie:    make([]float64, n),
		lose:   make([]float64, n),
		credit: make([]float64, n),
	}
}

func (t *tally) merge(other *tally) {
	for i := range t.win {
		t.win[i] += other.win[i]
		t.tie[i] += other.tie[i]
		t.lose[i] += other.lose[i]
		t.credit[i] += other.credit[i]
	}
	t.weight += other.weight
	t.trials += other.trials
	t.partial = t.partial || other.partial
}

// record scores one completed run-out. Ties split credit evenly.
func (t *tally) record(ranks []poker.HandRank, w float64) {
	best := ranks[0]
	winners := 1
	for _, r := range ranks[1:] {
		switch {
		case r < best: // lower is stronger
			best = r
			winners = 1
		case r == best:
			winners++
		}
	}

	for i, r := range ranks {
		switch {
		case r != best:
			t.lose[i] += w
		case winners == 1:
			t.win[i] += w
		default:
			t.tie[i] += w
			t.credit[i] += w / float64(winners)
		}
	}
	t.weight += w
	t.trials++
}

// ComputeEquity computes win/tie/lose probabilities for two or more
// weighted ranges against each other across all run-outs of the board.
// Exact enumeration and Monte Carlo sampling follow Options.Mode; the
// context cancels long runs, yielding a best-effort partial result.
func ComputeEquity(ctx context.Context, participants []*Range, board []poker.Card, dead []poker.Card, opts Options) (*Equity, error) {
	opts = opts.withDefaults()

	if len(participants) < 2 {
		return nil, fmt.Errorf("need at least 2 participants, got %d", len(participants))
	}
	switch len(board) {
	case 0, 3, 4, 5:
	default:
		return nil, fmt.Errorf("board must have 0, 3, 4 or 5 cards, got %d", len(board))
	}

	boardHand, err := handFromUnique(0, board)
	if err != nil {
		return nil, err
	}
	known, err := handFromUnique(boardHand, dead)
	if err != nil {
		return nil, err
	}

	// Concrete (single-combination) participants must not collide with the
	// board, dead cards, or each other. Wider ranges renormalize instead.
	concrete := poker.Hand(0)
	for _, p := range participants {
		if p.Size() != 1 {
			continue
		}
		hand := p.Hands()[0]
		if overlap := hand & (known | concrete); overlap != 0 {
			return nil, &OverlappingCardsError{Card: lowestCard(overlap)}
		}
		concrete |= hand
	}

	// Expand each range to its live combinations, excluding collisions
	// with the board and dead cards (weights renormalize via the tally).
	live := make([][]combo, len(participants))
	for i, p := range participants {
		for hand, w := range p.Combos() {
			if hand.Overlaps(known) {
				continue
			}
			live[i] = append(live[i], combo{hand: hand, weight: w})
		}
		if len(live[i]) == 0 {
			return nil, fmt.Errorf("participant %d has no combinations compatible with the board", i)
		}
	}

	need := 5 - len(board)
	remaining := cardsExcluding(known)

	mode := opts.Mode
	if mode == ModeAuto {
		if estimateCompletions(live, len(remaining), need) <= float64(opts.ExhaustiveLimit) {
			mode = ModeExact
		} else {
			mode = ModeMonteCarlo
		}
	}

	var total *tally
	if mode == ModeExact {
		total, err = enumerateEquity(ctx, live, boardHand, remaining, need, opts)
	} else {
		total, err = sampleEquity(ctx, live, boardHand, known, remaining, need, opts)
	}
	if err != nil {
		return nil, err
	}
	if total.weight == 0 {
		if total.partial {
			// Cancelled before any run-out completed: best-effort empty result.
			return &Equity{Results: make([]Result, len(participants)), Mode: mode, Partial: true}, nil
		}
		return nil, fmt.Errorf("no valid run-outs for the given cards")
	}

	eq := &Equity{
		Results: make([]Result, len(participants)),
		Mode:    mode,
		Trials:  total.trials,
		Partial: total.partial,
	}
	for i := range eq.Results {
		eq.Results[i] = Result{
			Win:    total.win[i] / total.weight,
			Tie:    total.tie[i] / total.weight,
			Lose:   total.lose[i] / total.weight,
			Equity: (total.win[i] + total.credit[i]) / total.weight,
		}
	}
	return eq, nil
}

// estimateCompletions upper-bounds the exact enumeration cost: the product
// of live range sizes times C(remaining, need).
func estimateCompletions(live [][]combo, remaining, need int) float64 {
	est := 1.0
	for _, combos := range live {
		est *= float64(len(combos))
	}
	return est * float64(binomial(remaining, need))
}

func binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	result := int64(1)
	for i := 0; i < k; i++ {
		result = result * int64(n-i) / int64(i+1)
	}
	return result
}

// assignment is one concrete selection of hole cards for every participant.
type assignment struct {
	hands  []poker.Hand
	used   poker.Hand
	weight float64
}

func enumerateAssignments(live [][]combo) []assignment {
	var out []assignment
	current := assignment{hands: make([]poker.Hand, len(live)), weight: 1}

	var walk func(i int)
	walk = func(i int) {
		if i == len(live) {
			a := assignment{
				hands:  append([]poker.Hand(nil), current.hands...),
				used:   current.used,
				weight: current.weight,
			}
			out = append(out, a)
			return
		}
		for _, c := range live[i] {
			if c.hand.Overlaps(current.used) {
				continue
			}
			current.hands[i] = c.hand
			current.used |= c.hand
			current.weight *= c.weight
			walk(i + 1)
			current.used &^= c.hand
			current.weight /= c.weight
		}
	}
	walk(0)
	return out
}

// enumerateEquity walks every hole-card assignment and every board
// completion. Assignments are chunked across workers; per-chunk tallies
// merge in chunk order so the result is deterministic.
func enumerateEquity(ctx context.Context, live [][]combo, boardHand poker.Hand, remaining []poker.Card, need int, opts Options) (*tally, error) {
	assignments := enumerateAssignments(live)
	if len(assignments) == 0 {
		return nil, fmt.Errorf("participant ranges have no compatible combinations")
	}

	workers := min(opts.Workers, len(assignments))
	chunks := make([]*tally, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		chunk := newTally(len(live))
		chunks[w] = chunk
		lo := w * len(assignments) / workers
		hi := (w + 1) * len(assignments) / workers

		g.Go(func() error {
			ranks := make([]poker.HandRank, len(live))
			completion := make([]poker.Card, 0, need)
			done := 0

			for _, a := range assignments[lo:hi] {
				if chunk.partial {
					break
				}
				free := cardsExcludingFrom(remaining, a.used)
				forEachCombination(free, need, completion, func(cards []poker.Card) bool {
					full := boardHand
					for _, c := range cards {
						full |= poker.Hand(c)
					}
					for i, hand := range a.hands {
						ranks[i] = poker.EvaluateHand(hand | full)
					}
					chunk.record(ranks, a.weight)

					done++
					if done%cancelCheckEvery == 0 && ctx.Err() != nil {
						chunk.partial = true
						return false
					}
					return true
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newTally(len(live))
	for _, chunk := range chunks {
		total.merge(chunk)
	}
	return total, nil
}

// sampleEquity draws uniform-random board completions with hole cards
// sampled proportionally to range weights. Worker seeds derive from the
// caller's seed in a fixed order, so identical Options reproduce identical
// results.
func sampleEquity(ctx context.Context, live [][]combo, boardHand, known poker.Hand, remaining []poker.Card, need int, opts Options) (*tally, error) {
	// Prefix-sum weights per participant for proportional sampling.
	cums := make([][]float64, len(live))
	totals := make([]float64, len(live))
	for i, combos := range live {
		cums[i] = make([]float64, len(combos))
		sum := 0.0
		for j, c := range combos {
			sum += c.weight
			cums[i][j] = sum
		}
		totals[i] = sum
	}

	seeder := randutil.New(opts.Seed)
	workers := opts.Workers
	chunks := make([]*tally, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		chunk := newTally(len(live))
		chunks[w] = chunk

		iterations := opts.Iterations / workers
		if w < opts.Iterations%workers {
			iterations++
		}
		seed := seeder.Int64()

		g.Go(func() error {
			rng := randutil.New(seed)
			ranks := make([]poker.HandRank, len(live))
			chosen := make([]poker.Hand, len(live))
			cands := make([]poker.Card, 0, len(remaining))

			for it := 0; it < iterations; it++ {
				if it%cancelCheckEvery == 0 && ctx.Err() != nil {
					chunk.partial = true
					break
				}
				if !sampleRunout(rng, live, cums, totals, remaining, known, need, chosen, &cands) {
					continue
				}

				full := boardHand
				for _, c := range cands[:need] {
					full |= poker.Hand(c)
				}
				for i, hand := range chosen {
					ranks[i] = poker.EvaluateHand(hand | full)
				}
				chunk.record(ranks, 1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newTally(len(live))
	for _, chunk := range chunks {
		total.merge(chunk)
	}
	return total, nil
}

// sampleRunout fills chosen with non-colliding hole cards and the first
// `need` entries of cands with the sampled board completion. Returns false
// when a non-colliding assignment could not be found.
func sampleRunout(rng *rand.Rand, live [][]combo, cums [][]float64, totals []float64, remaining []poker.Card, known poker.Hand, need int, chosen []poker.Hand, cands *[]poker.Card) bool {
	used := known
	for i, combos := range live {
		found := false
		for attempt := 0; attempt < maxComboAttempts; attempt++ {
			idx := sort.SearchFloat64s(cums[i], rng.Float64()*totals[i])
			if idx >= len(combos) {
				idx = len(combos) - 1
			}
			if !combos[idx].hand.Overlaps(used) {
				chosen[i] = combos[idx].hand
				used |= combos[idx].hand
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Partial Fisher-Yates over the cards still unseen.
	c := (*cands)[:0]
	for _, card := range remaining {
		if !used.HasCard(card) {
			c = append(c, card)
		}
	}
	if len(c) < need {
		return false
	}
	for f := 0; f < need; f++ {
		j := f + rng.IntN(len(c)-f)
		c[f], c[j] = c[j], c[f]
	}
	*cands = c
	return true
}

// forEachCombination invokes fn with every k-subset of cards, reusing buf.
// fn returns false to stop early.
func forEachCombination(cards []poker.Card, k int, buf []poker.Card, fn func([]poker.Card) bool) {
	buf = buf[:k]
	if k == 0 {
		fn(buf)
		return
	}
	if k > len(cards) {
		return
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		for i, j := range idx {
			buf[i] = cards[j]
		}
		if !fn(buf) {
			return
		}

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && idx[i] == len(cards)-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func handFromUnique(base poker.Hand, cards []poker.Card) (poker.Hand, error) {
	h := base
	for _, c := range cards {
		if h.HasCard(c) {
			return 0, &OverlappingCardsError{Card: c}
		}
		h.AddCard(c)
	}
	return h, nil
}

func cardsExcluding(used poker.Hand) []poker.Card {
	cards := make([]poker.Card, 0, 52-used.CountCards())
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			card := poker.NewCard(rank, suit)
			if !used.HasCard(card) {
				cards = append(cards, card)
			}
		}
	}
	return cards
}

func cardsExcludingFrom(cards []poker.Card, used poker.Hand) []poker.Card {
	out := make([]poker.Card, 0, len(cards))
	for _, c := range cards {
		if !used.HasCard(c) {
			out = append(out, c)
		}
	}
	return out
}

func lowestCard(h poker.Hand) poker.Card {
	v := uint64(h)
	return poker.Card(v & -v)
}
