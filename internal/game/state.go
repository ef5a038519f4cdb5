package game

import (
	"sync"

	"github.com/lox/blackjackforbots/internal/deck"
)

// Player holds the player's cards and their current (or last) intended action
type Player struct {
	Cards    Hand
	Decision Action
}

// CanSplit reports whether the player may split: exactly two cards of equal
// value.
func (p *Player) CanSplit() bool {
	return len(p.Cards) == 2 && p.Cards[0].Value == p.Cards[1].Value
}

// Dealer holds the dealer's cards
type Dealer struct {
	Cards Hand
}

// RequeueSignal carries a split's leftover card out of the round. Spawning a
// new round seeded with the detached card is the responsibility of an
// external hand orchestrator; the engine only records the intent.
type RequeueSignal struct {
	ShouldRequeue bool
	DetachedCard  *deck.Card
}

// Outcome records how the round ended. Once Decided is set the win flags
// never change again within the round. Both flags false with Decided false
// means the round is still in progress, or ended in an exact tie (a tie
// never sets Decided; see DecideWinner).
type Outcome struct {
	PlayerWon bool
	DealerWon bool
	Decided   bool
	Requeue   RequeueSignal
}

// copy returns a deep copy, detaching the requeue card pointer
func (o Outcome) copy() Outcome {
	out := o
	if o.Requeue.DetachedCard != nil {
		card := *o.Requeue.DetachedCard
		out.Requeue.DetachedCard = &card
	}
	return out
}

// Round is the mutable aggregate for one blackjack round. The engine owns it
// exclusively for the round's lifetime and is its only writer; concurrent
// readers must go through Snapshot. A round starts empty with the dealer to
// act and becomes immutable once the outcome is decided.
type Round struct {
	mu          sync.Mutex
	player      Player
	dealer      Dealer
	playersTurn bool
	outcome     Outcome
}

// NewRound creates an empty round: no cards dealt, dealer to act first,
// outcome undecided.
func NewRound() *Round {
	return &Round{}
}

// RoundSnapshot is an immutable copy of a round's state
type RoundSnapshot struct {
	Player      Player
	Dealer      Dealer
	PlayersTurn bool
	Outcome     Outcome
	PlayerTotal int
	DealerTotal int
}

// Snapshot returns a deep copy of the current state. Safe to call from any
// goroutine while the engine runs; the copy never aliases engine-owned
// memory. Because the engine takes many short critical sections per phase, a
// snapshot can observe a state mid-transition (a card appended before its
// event is published); consumers must tolerate that.
func (r *Round) Snapshot() RoundSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoundSnapshot{
		Player:      Player{Cards: r.player.Cards.Copy(), Decision: r.player.Decision},
		Dealer:      Dealer{Cards: r.dealer.Cards.Copy()},
		PlayersTurn: r.playersTurn,
		Outcome:     r.outcome.copy(),
		PlayerTotal: r.player.Cards.Total(),
		DealerTotal: r.dealer.Cards.Total(),
	}
}

// Decided reports whether the round's outcome has been decided
func (r *Round) Decided() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome.Decided
}

// Outcome returns a copy of the current outcome record
func (r *Round) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome.copy()
}

// InsuranceEligible reports whether insurance may be taken: the dealer's
// visible hand is exactly one ace-equivalent card.
func (r *Round) InsuranceEligible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dealer.Cards) == 1 && r.dealer.Cards[0].IsAce()
}

// Engine-side accessors and mutators. These take the round lock per call;
// the engine is the sole writer so short critical sections are sufficient.

func (r *Round) playerDraw(shoe deck.Shoe) deck.Card {
	card := shoe.Draw()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.player.Cards = append(r.player.Cards, card)
	return card
}

func (r *Round) dealerDraw(shoe deck.Shoe) deck.Card {
	card := shoe.Draw()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dealer.Cards = append(r.dealer.Cards, card)
	return card
}

func (r *Round) playerTotal() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player.Cards.Total()
}

func (r *Round) dealerTotal() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dealer.Cards.Total()
}

func (r *Round) playerCardCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.player.Cards)
}

func (r *Round) dealerCardCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dealer.Cards)
}

func (r *Round) isPlayersTurn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playersTurn
}

func (r *Round) setPlayersTurn(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playersTurn = v
}

func (r *Round) setPlayerDecision(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.player.Decision = a
}

// detachSplitCard removes the player's second card into the requeue signal.
// Returns false without mutating anything if the split is not allowed.
func (r *Round) detachSplitCard() (deck.Card, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.player.CanSplit() {
		return deck.Card{}, false
	}
	card := r.player.Cards[len(r.player.Cards)-1]
	r.player.Cards = r.player.Cards[:len(r.player.Cards)-1]
	r.outcome.Requeue.ShouldRequeue = true
	r.outcome.Requeue.DetachedCard = &card
	return card, true
}

// setPlayerWin and setDealerWin freeze the outcome; once decided the win
// flags never change again.

func (r *Round) setPlayerWin() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.outcome.Decided {
		r.outcome.PlayerWon = true
		r.outcome.Decided = true
	}
	return r.outcome.copy()
}

func (r *Round) setDealerWin() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.outcome.Decided {
		r.outcome.DealerWon = true
		r.outcome.Decided = true
	}
	return r.outcome.copy()
}
