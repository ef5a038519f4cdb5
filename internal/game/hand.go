package game

import "github.com/lox/blackjackforbots/internal/deck"

// Hand is an ordered collection of cards
type Hand []deck.Card

// Total returns the blackjack value of the hand. Card values are summed and,
// if the sum is 22 or more while the hand holds at least one ace-equivalent
// card, reduced by 10 exactly once. The reduction is applied a single time
// regardless of how many aces are present; this matches the house rule this
// engine implements. An empty hand totals 0.
func (h Hand) Total() int {
	total := 0
	for _, card := range h {
		total += card.Value
	}
	if total >= 22 && h.Aces() >= 1 {
		total -= 10
	}
	return total
}

// Aces returns the number of ace-equivalent cards in the hand
func (h Hand) Aces() int {
	n := 0
	for _, card := range h {
		if card.IsAce() {
			n++
		}
	}
	return n
}

// Copy returns an independent copy of the hand
func (h Hand) Copy() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}
