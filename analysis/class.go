package analysis

import (
	"fmt"

	"github.com/lox/pokertrainer/poker"
)

const classRankChars = "23456789TJQKA"

// HandClass returns the canonical starting-hand class for two hole cards:
// "AA" for pairs, "AKs" for suited, "AKo" for offsuit. The higher rank
// always comes first.
func HandClass(c1, c2 poker.Card) string {
	r1 := c1.Rank()
	r2 := c2.Rank()
	if r1 < r2 {
		r1, r2 = r2, r1
	}

	high := classRankChars[r1]
	low := classRankChars[r2]

	if r1 == r2 {
		return string([]byte{high, low})
	}
	if c1.Suit() == c2.Suit() {
		return string([]byte{high, low, 's'})
	}
	return string([]byte{high, low, 'o'})
}

// HandClassOf returns the class of a two-card hand bitset.
func HandClassOf(hand poker.Hand) (string, error) {
	cards := hand.Cards()
	if len(cards) != 2 {
		return "", fmt.Errorf("hand class needs exactly 2 cards, got %d", len(cards))
	}
	return HandClass(cards[0], cards[1]), nil
}

// AllClasses returns the 169 canonical starting-hand classes ordered by
// high rank descending, then low rank descending, pairs first in each row
// (the usual 13x13 matrix walk).
func AllClasses() []string {
	classes := make([]string, 0, 169)
	for high := 12; high >= 0; high-- {
		for low := high; low >= 0; low-- {
			h, l := classRankChars[high], classRankChars[low]
			if high == low {
				classes = append(classes, string([]byte{h, l}))
				continue
			}
			classes = append(classes, string([]byte{h, l, 's'}))
			classes = append(classes, string([]byte{h, l, 'o'}))
		}
	}
	return classes
}

// ClassCombos returns the number of concrete combinations a class expands
// to: 6 for pairs, 4 for suited, 12 for offsuit.
func ClassCombos(class string) int {
	switch {
	case len(class) == 2:
		return 6
	case len(class) == 3 && class[2] == 's':
		return 4
	default:
		return 12
	}
}

// ClassWeights collapses a range into per-class weights: the summed combo
// weight divided by the class's full combination count, so a class fully
// present at weight 1 maps to 1.
func (r *Range) ClassWeights() map[string]float64 {
	weights := make(map[string]float64)
	for hand, w := range r.Combos() {
		class, err := HandClassOf(hand)
		if err != nil {
			continue
		}
		weights[class] += w
	}
	for class := range weights {
		weights[class] /= float64(ClassCombos(class))
	}
	return weights
}
