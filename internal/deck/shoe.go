package deck

import rand "math/rand/v2"

// Shoe is the source of cards for a round. Draw never fails; a shoe never
// runs out of cards.
type Shoe interface {
	Draw() Card
}

// RandomShoe draws cards with a uniform value in 2..11 and a random suit,
// matching an unlimited multi-deck shoe. The RNG is injected so rounds are
// reproducible from a seed.
type RandomShoe struct {
	rng *rand.Rand
}

// NewRandomShoe creates a shoe drawing from the provided RNG
func NewRandomShoe(rng *rand.Rand) *RandomShoe {
	return &RandomShoe{rng: rng}
}

// NewSeededShoe creates a shoe seeded deterministically from an int64
func NewSeededShoe(seed int64) *RandomShoe {
	return &RandomShoe{rng: NewRNG(seed)}
}

// Draw returns a random card
func (s *RandomShoe) Draw() Card {
	return Card{
		Suit:  Suit(s.rng.IntN(4)),
		Value: 2 + s.rng.IntN(10),
	}
}

// StackedShoe deals a fixed sequence of cards, for deterministic tests and
// demos. Once the sequence is exhausted it keeps dealing the last card.
type StackedShoe struct {
	cards []Card
	next  int
}

// NewStackedShoe creates a shoe that deals the given cards in order
func NewStackedShoe(cards ...Card) *StackedShoe {
	return &StackedShoe{cards: cards}
}

// Draw returns the next stacked card
func (s *StackedShoe) Draw() Card {
	if len(s.cards) == 0 {
		return Card{Suit: Spades, Value: 2}
	}
	if s.next >= len(s.cards) {
		return s.cards[len(s.cards)-1]
	}
	card := s.cards[s.next]
	s.next++
	return card
}

// CardsRemaining returns the number of stacked cards not yet dealt
func (s *StackedShoe) CardsRemaining() int {
	return len(s.cards) - s.next
}
