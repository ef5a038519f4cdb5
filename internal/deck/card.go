package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// AceValue is the blackjack value of an ace-equivalent card. A card with
// this value counts as 11 until the hand would bust, then as 1.
const AceValue = 11

// Card represents a playing card as its blackjack value (2..11) plus a suit.
// Value 11 denotes an ace-equivalent card.
type Card struct {
	Suit  Suit `json:"suit"`
	Value int  `json:"value"`
}

// NewCard creates a new card
func NewCard(suit Suit, value int) Card {
	return Card{Suit: suit, Value: value}
}

// IsAce returns true if the card is ace-equivalent
func (c Card) IsAce() bool {
	return c.Value == AceValue
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// String returns the string representation of a card (e.g., "A♠", "7♥")
func (c Card) String() string {
	if c.IsAce() {
		return fmt.Sprintf("A%s", c.Suit)
	}
	return fmt.Sprintf("%d%s", c.Value, c.Suit)
}
