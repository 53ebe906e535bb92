// Package analysis provides the equity engine: weighted starting-hand
// ranges, exact and Monte Carlo equity computation, and preflop equity
// tables built on the bit-packed poker types.
package analysis

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/lox/pokertrainer/poker"
)

// Range represents a weighted collection of two-card starting combinations.
// Weights are in [0,1]; a range holding a single combination at weight 1
// degenerates to a concrete hand.
type Range struct {
	// Map from the two hole cards combined into a single Hand to weight.
	hands map[poker.Hand]float64
}

// NewRange creates a new empty range.
func NewRange() *Range {
	return &Range{
		hands: make(map[poker.Hand]float64),
	}
}

// RangeFromCards creates the degenerate range holding exactly the given
// two cards at weight 1.
func RangeFromCards(c1, c2 poker.Card) (*Range, error) {
	if c1 == c2 {
		return nil, fmt.Errorf("duplicate hole card %s", c1)
	}
	r := NewRange()
	r.hands[poker.Hand(c1)|poker.Hand(c2)] = 1.0
	return r, nil
}

// RandomRange returns the range containing all 1326 two-card combinations
// at weight 1 (an unknown opponent).
func RandomRange() *Range {
	r := NewRange()
	deck := poker.NewDeck(nil)
	cards := deck.Remaining()
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			r.hands[poker.Hand(cards[i])|poker.Hand(cards[j])] = 1.0
		}
	}
	return r
}

// ParseRange creates a range from standard poker notation.
// Examples: "AA,KK", "AKs,AKo", "TT+", "A5s-A2s", "KTs+", "22-66".
// A part may carry a weight suffix: "A2s:0.5".
func ParseRange(notation string) (*Range, error) {
	r := NewRange()

	parts := strings.SplitSeq(notation, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if err := r.addRangePart(part); err != nil {
			return nil, fmt.Errorf("invalid range part %q: %w", part, err)
		}
	}

	return r, nil
}

// addRangePart adds a single range notation part to the range.
func (r *Range) addRangePart(part string) error {
	weight := 1.0
	if idx := strings.Index(part, ":"); idx >= 0 {
		w, err := strconv.ParseFloat(part[idx+1:], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %w", err)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("weight %v outside [0,1]", w)
		}
		weight = w
		part = part[:idx]
	}

	// Range patterns like "TT+" or "A5s-A2s" or "22-66"
	if strings.Contains(part, "+") {
		return r.addPlusRange(part, weight)
	}
	if strings.Contains(part, "-") {
		return r.addDashRange(part, weight)
	}

	return r.addSingleHand(part, weight)
}

// addSingleHand adds all combinations of a single hand notation.
func (r *Range) addSingleHand(notation string, weight float64) error {
	if len(notation) < 2 || len(notation) > 3 {
		return fmt.Errorf("invalid notation length: %s", notation)
	}

	rank1 := parseRank(notation[0])
	rank2 := parseRank(notation[1])
	if rank1 == 0 || rank2 == 0 {
		return fmt.Errorf("invalid rank in: %s", notation)
	}

	// Pocket pair
	if rank1 == rank2 {
		if len(notation) == 3 {
			return fmt.Errorf("pocket pairs cannot have suited/offsuit modifier: %s", notation)
		}
		return r.addPocketPair(rank1, weight)
	}

	// Unpaired hand
	if len(notation) == 2 {
		if err := r.addSuitedCombos(rank1, rank2, weight); err != nil {
			return err
		}
		return r.addOffsuitCombos(rank1, rank2, weight)
	}

	switch notation[2] {
	case 's':
		return r.addSuitedCombos(rank1, rank2, weight)
	case 'o':
		return r.addOffsuitCombos(rank1, rank2, weight)
	default:
		return fmt.Errorf("invalid modifier: %c", notation[2])
	}
}

// addPlusRange handles notations like "TT+" (all pairs TT and higher)
func (r *Range) addPlusRange(notation string, weight float64) error {
	plusIdx := strings.Index(notation, "+")
	if plusIdx == -1 {
		return fmt.Errorf("no + found")
	}

	base := notation[:plusIdx]
	if len(base) < 2 || len(base) > 3 {
		return fmt.Errorf("invalid base notation: %s", base)
	}

	rank1 := parseRank(base[0])
	rank2 := parseRank(base[1])
	if rank1 == 0 || rank2 == 0 {
		return fmt.Errorf("invalid rank")
	}

	// Pocket pairs like "TT+"
	if rank1 == rank2 {
		for rank := rank1; rank <= 14; rank++ {
			if err := r.addPocketPair(rank, weight); err != nil {
				return err
			}
		}
		return nil
	}

	// Unpaired like "ATs+" or "KJo+"
	suited := false
	offsuit := false
	switch {
	case len(base) == 2:
		suited = true
		offsuit = true
	case base[2] == 's':
		suited = true
	case base[2] == 'o':
		offsuit = true
	default:
		return fmt.Errorf("invalid modifier")
	}

	// For hands like "KTs+", increment the lower card up to one below the higher
	for rank := rank2; rank < rank1; rank++ {
		if suited {
			if err := r.addSuitedCombos(rank1, rank, weight); err != nil {
				return err
			}
		}
		if offsuit {
			if err := r.addOffsuitCombos(rank1, rank, weight); err != nil {
				return err
			}
		}
	}

	return nil
}

// addDashRange handles notations like "22-66" or "A5s-A2s"
func (r *Range) addDashRange(notation string, weight float64) error {
	parts := strings.Split(notation, "-")
	if len(parts) != 2 {
		return fmt.Errorf("invalid dash range format")
	}

	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])

	if len(start) < 2 || len(end) < 2 {
		return fmt.Errorf("invalid notation in range")
	}

	startRank1 := parseRank(start[0])
	startRank2 := parseRank(start[1])
	endRank1 := parseRank(end[0])
	endRank2 := parseRank(end[1])

	if startRank1 == 0 || startRank2 == 0 || endRank1 == 0 || endRank2 == 0 {
		return fmt.Errorf("invalid ranks in range")
	}

	// Pocket pair ranges like "22-66"
	if startRank1 == startRank2 && endRank1 == endRank2 {
		lower := min(startRank1, endRank1)
		upper := max(startRank1, endRank1)
		for rank := lower; rank <= upper; rank++ {
			if err := r.addPocketPair(rank, weight); err != nil {
				return err
			}
		}
		return nil
	}

	// Suited/offsuit ranges like "A5s-A2s"
	if startRank1 == endRank1 {
		suited := len(start) == 3 && start[2] == 's'
		offsuit := len(start) == 3 && start[2] == 'o'
		if len(start) == 2 {
			suited = true
			offsuit = true
		}

		lower := min(startRank2, endRank2)
		upper := max(startRank2, endRank2)
		for rank := lower; rank <= upper; rank++ {
			if suited {
				if err := r.addSuitedCombos(startRank1, rank, weight); err != nil {
					return err
				}
			}
			if offsuit {
				if err := r.addOffsuitCombos(startRank1, rank, weight); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return fmt.Errorf("unsupported range format: %s", notation)
}

// addPocketPair adds all 6 combinations of a pocket pair.
func (r *Range) addPocketPair(rank int, weight float64) error {
	pRank := uint8(rank - 2)

	for suit1 := range uint8(4) {
		for suit2 := suit1 + 1; suit2 < 4; suit2++ {
			card1 := poker.NewCard(pRank, suit1)
			card2 := poker.NewCard(pRank, suit2)
			r.hands[poker.Hand(card1)|poker.Hand(card2)] = weight
		}
	}

	return nil
}

// addSuitedCombos adds all 4 suited combinations.
func (r *Range) addSuitedCombos(rank1, rank2 int, weight float64) error {
	if rank1 == rank2 {
		return fmt.Errorf("cannot have suited pocket pair")
	}

	pRank1 := uint8(rank1 - 2)
	pRank2 := uint8(rank2 - 2)

	for suit := range uint8(4) {
		card1 := poker.NewCard(pRank1, suit)
		card2 := poker.NewCard(pRank2, suit)
		r.hands[poker.Hand(card1)|poker.Hand(card2)] = weight
	}

	return nil
}

// addOffsuitCombos adds all 12 offsuit combinations.
func (r *Range) addOffsuitCombos(rank1, rank2 int, weight float64) error {
	if rank1 == rank2 {
		return fmt.Errorf("cannot have offsuit pocket pair")
	}

	pRank1 := uint8(rank1 - 2)
	pRank2 := uint8(rank2 - 2)

	for suit1 := range uint8(4) {
		for suit2 := range uint8(4) {
			if suit1 != suit2 {
				card1 := poker.NewCard(pRank1, suit1)
				card2 := poker.NewCard(pRank2, suit2)
				r.hands[poker.Hand(card1)|poker.Hand(card2)] = weight
			}
		}
	}

	return nil
}

// ContainsCards checks if hole cards are in the range.
func (r *Range) ContainsCards(c1, c2 poker.Card) bool {
	_, ok := r.hands[poker.Hand(c1)|poker.Hand(c2)]
	return ok
}

// ContainsHand checks if a two-card hand is in the range.
func (r *Range) ContainsHand(hand poker.Hand) bool {
	_, ok := r.hands[hand]
	return ok
}

// Size returns the number of hand combinations in the range.
func (r *Range) Size() int {
	return len(r.hands)
}

// Weight returns the weight of a specific combination in the range.
func (r *Range) Weight(hand poker.Hand) float64 {
	return r.hands[hand]
}

// Hands returns all combinations in the range sorted by numeric value.
func (r *Range) Hands() []poker.Hand {
	hands := make([]poker.Hand, 0, len(r.hands))
	for hand := range r.hands {
		hands = append(hands, hand)
	}
	slices.Sort(hands)
	return hands
}

// Combos returns a lazy, restartable sequence of (combination, weight)
// pairs in a deterministic order. Combinations with zero weight are
// skipped.
func (r *Range) Combos() iter.Seq2[poker.Hand, float64] {
	hands := r.Hands()
	return func(yield func(poker.Hand, float64) bool) {
		for _, hand := range hands {
			w := r.hands[hand]
			if w == 0 {
				continue
			}
			if !yield(hand, w) {
				return
			}
		}
	}
}

// TotalWeight returns the sum of all combination weights.
func (r *Range) TotalWeight() float64 {
	var total float64
	for _, w := range r.hands {
		total += w
	}
	return total
}

// parseRank converts a rank character to its numeric value (2-14).
func parseRank(c byte) int {
	switch c {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return int(c - '0')
	case 'T':
		return 10
	case 'J':
		return 11
	case 'Q':
		return 12
	case 'K':
		return 13
	case 'A':
		return 14
	default:
		return 0
	}
}
