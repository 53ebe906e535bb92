package poker

import (
	"math/rand"
)

// Deck represents a standard 52-card deck with optional dead cards removed.
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled 52-card deck with explicit RNG.
func NewDeck(rng *rand.Rand) *Deck {
	return NewDeckWithout(rng, 0)
}

// NewDeckWithout creates a shuffled deck excluding the dead cards (hole
// cards, board cards) so enumeration and sampling never redraw them.
func NewDeckWithout(rng *rand.Rand, dead Hand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52-dead.CountCards()),
		rng:   rng,
	}

	for suit := range uint8(4) {
		for rank := range uint8(13) {
			card := NewCard(rank, suit)
			if !dead.HasCard(card) {
				d.cards = append(d.cards, card)
			}
		}
	}

	d.Shuffle()
	return d
}

// Shuffle reshuffles the remaining deck using Fisher-Yates.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.Intn(i + 1)
		} else {
			j = rand.Intn(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck. Returns nil if not enough cards remain.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards
}

// DealOne deals a single card from the deck.
func (d *Deck) DealOne() Card {
	if d.next >= len(d.cards) {
		return 0
	}
	card := d.cards[d.next]
	d.next++
	return card
}

// Reset resets and reshuffles the deck.
func (d *Deck) Reset() {
	d.Shuffle()
}

// CardsRemaining returns the number of cards left in the deck.
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

// Remaining returns the undealt cards in deck order.
func (d *Deck) Remaining() []Card {
	return d.cards[d.next:]
}
