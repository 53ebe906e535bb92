package poker

import (
	"errors"
	"math/rand"
	"testing"
)

func mustEvaluate(t *testing.T, cards string) HandRank {
	t.Helper()
	rank, err := Evaluate(MustParseCards(cards))
	if err != nil {
		t.Fatalf("Evaluate(%s) failed: %v", cards, err)
	}
	return rank
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		cards string
		want  HandType
	}{
		{"royal flush", "AsKsQsJsTs2h3d", StraightFlush},
		{"straight flush", "9s8s7s6s5s2h3d", StraightFlush},
		{"steel wheel", "As2s3s4s5s9h9d", StraightFlush},
		{"four of a kind", "AsAhAdAc2h3d4c", FourOfAKind},
		{"full house", "AsAhAdKcKh3d4c", FullHouse},
		{"flush", "AsQs9s5s2s3h4d", Flush},
		{"straight", "9s8h7d6c5s2h2d", Straight},
		{"wheel straight", "As2h3d4c5s9h8d", Straight},
		{"three of a kind", "AsAhAd9c5s3h2d", ThreeOfAKind},
		{"two pair", "AsAhKdKc5s3h2d", TwoPair},
		{"one pair", "AsAh9d7c5s3h2d", Pair},
		{"high card", "AsQh9d7c5s3h2d", HighCard},
		{"five card straight", "9s8h7d6c5s", Straight},
		{"five card flush", "AsQs9s5s2s", Flush},
		{"six card two pair", "AsAhKdKc5s3h", TwoPair},
	}

	for _, testCase := range tests {
		tc := testCase
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rank := mustEvaluate(t, tc.cards)
			if rank.Type() != tc.want {
				t.Errorf("Evaluate(%s).Type() = %v, want %v", tc.cards, rank.Type(), tc.want)
			}
		})
	}
}

func TestEvaluateInvalidHands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		cards []Card
	}{
		{"too few cards", MustParseCards("AsKsQsJs")},
		{"too many cards", MustParseCards("AsKsQsJsTs9s8s7s")},
		{"duplicate cards", []Card{
			NewCard(Ace, Spades), NewCard(Ace, Spades),
			NewCard(King, Hearts), NewCard(Queen, Diamonds), NewCard(Jack, Clubs),
		}},
		{"empty", nil},
	}

	for _, testCase := range tests {
		tc := testCase
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Evaluate(tc.cards)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var invalidErr *InvalidHandError
			if !errors.As(err, &invalidErr) {
				t.Errorf("Expected InvalidHandError, got %T", err)
			}
		})
	}
}

func TestEvaluatePermutationInvariance(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 100; trial++ {
		deck := NewDeck(rng)
		cards := deck.Deal(7)

		want, err := Evaluate(cards)
		if err != nil {
			t.Fatal(err)
		}

		shuffled := make([]Card, 7)
		copy(shuffled, cards)
		for perm := 0; perm < 10; perm++ {
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			got, err := Evaluate(shuffled)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("Permutation changed rank: %v vs %v for %v", got, want, cards)
			}
		}
	}
}

func TestCategoryOrdering(t *testing.T) {
	t.Parallel()
	// Ascending strength order: each hand must beat all previous ones.
	ladder := []string{
		"AsQh9d7c5s3h2d", // high card
		"AsAh9d7c5s3h2d", // pair
		"AsAhKdKc5s3h2d", // two pair
		"AsAhAd9c5s3h2d", // trips
		"As2h3d4c5s9h8d", // wheel straight
		"9s8h7d6c5s2h2d", // 9-high straight
		"AsQs9s5s2s3h4d", // flush
		"AsAhAdKcKh3d4c", // full house
		"AsAhAdAc2h3d4c", // quads
		"9s8s7s6s5s2h3d", // straight flush
	}

	ranks := make([]HandRank, len(ladder))
	for i, cards := range ladder {
		ranks[i] = mustEvaluate(t, cards)
	}

	for i := 1; i < len(ranks); i++ {
		if CompareHands(ranks[i], ranks[i-1]) != 1 {
			t.Errorf("Hand %d (%s) should beat hand %d (%s)", i, ladder[i], i-1, ladder[i-1])
		}
	}
}

func TestWheelStraightRanksBelowSixHigh(t *testing.T) {
	t.Parallel()
	wheel := mustEvaluate(t, "As2h3d4c5s9h8d")
	sixHigh := mustEvaluate(t, "2s3h4d5c6s9h8d")

	if CompareHands(sixHigh, wheel) != 1 {
		t.Error("6-high straight should beat wheel straight")
	}
	if wheel.Type() != Straight || sixHigh.Type() != Straight {
		t.Error("Both hands should be straights")
	}

	// Six cards ace through six make the six-high straight, not the wheel.
	sixCard := mustEvaluate(t, "As2h3d4c5s6h8d")
	if CompareHands(sixCard, sixHigh) != 0 {
		t.Errorf("A-6 run should play as the 6-high straight, got %v vs %v", sixCard, sixHigh)
	}
}

func TestSplitPotEquality(t *testing.T) {
	t.Parallel()
	// Same board, both players play the board: identical ranks.
	board := "AsKdQh9c5s"
	a := mustEvaluate(t, board+"2h3d")
	b := mustEvaluate(t, board+"2c3s")

	if CompareHands(a, b) != 0 {
		t.Errorf("Expected split pot, got %v vs %v", a, b)
	}
}

func TestKickerOrdering(t *testing.T) {
	t.Parallel()
	// AA with K kicker beats AA with Q kicker.
	akKicker := mustEvaluate(t, "AsAhKd9c5s3h2d")
	aqKicker := mustEvaluate(t, "AsAhQd9c5s3h2d")
	if CompareHands(akKicker, aqKicker) != 1 {
		t.Error("Pair of aces with king kicker should beat queen kicker")
	}

	// Higher flush beats lower flush.
	aceFlush := mustEvaluate(t, "AsQs9s5s2s")
	kingFlush := mustEvaluate(t, "KsQs9s5s2s")
	if CompareHands(aceFlush, kingFlush) != 1 {
		t.Error("Ace-high flush should beat king-high flush")
	}
}

func TestTopCardDominatesKickers(t *testing.T) {
	t.Parallel()
	// The highest card decides even when every other card is worse.
	tests := []struct {
		name   string
		winner string
		loser  string
	}{
		{"high card", "Ah6d4c3s2h", "QhTh9c8d7s"},
		{"flush", "As6s4s3s2s", "KsQsJs9s8s"},
		{"two pair", "AsAh2d2c5s", "KsKhQdQc5s"},
		{"trips kickers", "7s7h7dAc2s", "7s7h7dKcQs"},
		{"pair kickers", "2s2hAd4c3s", "2s2hKdQcJs"},
	}

	for _, testCase := range tests {
		tc := testCase
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			winner := mustEvaluate(t, tc.winner)
			loser := mustEvaluate(t, tc.loser)
			if CompareHands(winner, loser) != 1 {
				t.Errorf("%s should beat %s (%v vs %v)", tc.winner, tc.loser, winner, loser)
			}
		})
	}
}

func TestEvaluateBestFiveOfSeven(t *testing.T) {
	t.Parallel()
	// Seven cards containing a hidden flush: evaluation must find it.
	rank := mustEvaluate(t, "2s5s8sJsAsKhKd")
	if rank.Type() != Flush {
		t.Errorf("Expected flush from 7 cards, got %v", rank.Type())
	}

	// Pair plus straight: straight wins.
	rank = mustEvaluate(t, "9s8h7d6c5sTsTd")
	if rank.Type() != Straight {
		t.Errorf("Expected straight, got %v", rank.Type())
	}
}

func BenchmarkEvaluateHand7(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	hands := make([]Hand, 1000)
	for i := range hands {
		deck := NewDeck(rng)
		hands[i] = NewHand(deck.Deal(7)...)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = EvaluateHand(hands[i%len(hands)])
	}
}

func BenchmarkEvaluateHand5(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	hands := make([]Hand, 1000)
	for i := range hands {
		deck := NewDeck(rng)
		hands[i] = NewHand(deck.Deal(5)...)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = EvaluateHand(hands[i%len(hands)])
	}
}
