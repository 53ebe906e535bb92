// Package poker provides bit-packed card and hand representations plus a
// 5-7 card evaluator suitable for equity inner loops.
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Rank constants (0-12, deuce through ace)
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit constants (0-3)
const (
	Clubs uint8 = iota
	Diamonds
	Hearts
	Spades
)

const rankChars = "23456789TJQKA"
const suitChars = "cdhs"

// Card is a single card represented as one set bit in a 52-bit space.
// Bit index = suit*13 + rank, so a suit occupies a contiguous 13-bit block.
type Card uint64

// NewCard creates a card from a rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(1) << (uint(suit)*13 + uint(rank))
}

// Rank returns the card's rank (0-12).
func (c Card) Rank() uint8 {
	return uint8(bits.TrailingZeros64(uint64(c)) % 13)
}

// Suit returns the card's suit (0-3).
func (c Card) Suit() uint8 {
	return uint8(bits.TrailingZeros64(uint64(c)) / 13)
}

// String formats the card as rank+suit, e.g. "As", "2c".
func (c Card) String() string {
	if c == 0 || bits.OnesCount64(uint64(c)) != 1 {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

// ParseCard parses a two-character card string like "As" or "2c".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("card %q: must be two characters", s)
	}

	rank := strings.IndexByte(rankChars, s[0])
	if rank < 0 {
		return 0, fmt.Errorf("card %q: invalid rank %q", s, s[0])
	}
	suit := strings.IndexByte(suitChars, s[1])
	if suit < 0 {
		return 0, fmt.Errorf("card %q: invalid suit %q", s, s[1])
	}

	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses a concatenated or space-separated card string like
// "AsKd" or "As Kd Qh".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("cards %q: odd length", s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error. For tests and constants.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// Hand is a set of cards stored as a 52-bit bitset. The zero value is an
// empty hand. Because cards are single bits, set union is bitwise OR and a
// duplicate card cannot be represented twice.
type Hand uint64

// NewHand creates a hand containing the given cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard reports whether the hand contains the card.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// Overlaps reports whether the two hands share any card.
func (h Hand) Overlaps(other Hand) bool {
	return h&other != 0
}

// GetSuitMask returns the 13-bit rank mask for a suit.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16(h>>(uint(suit)*13)) & 0x1FFF
}

// Cards returns the hand's cards in ascending bit order.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	v := uint64(h)
	for v != 0 {
		low := v & -v
		cards = append(cards, Card(low))
		v &^= low
	}
	return cards
}

// String formats the hand as space-separated cards, e.g. "As Kd".
func (h Hand) String() string {
	parts := make([]string, 0, h.CountCards())
	for _, c := range h.Cards() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}
