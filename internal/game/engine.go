package game

import (
	"github.com/charmbracelet/log"

	"github.com/lox/blackjackforbots/internal/deck"
)

// Dealer house rules
const (
	dealerStandTotal = 17
	bustThreshold    = 21
)

// Engine drives one round to completion, alternating the dealer policy with
// externally supplied player decisions. It is the sole writer of its Round;
// it suspends only while waiting on the decision slot, and it never blocks
// on event delivery.
type Engine struct {
	round     *Round
	shoe      deck.Shoe
	decisions *DecisionSlot
	bus       *EventBus
	logger    *log.Logger

	dealerOpened bool
	playerOpened bool
	insurance    bool
}

// NewEngine creates an engine for a single round
func NewEngine(round *Round, shoe deck.Shoe, decisions *DecisionSlot, bus *EventBus, logger *log.Logger) *Engine {
	return &Engine{
		round:     round,
		shoe:      shoe,
		decisions: decisions,
		bus:       bus,
		logger:    logger.WithPrefix("engine"),
	}
}

// Run executes the round until its outcome is evaluated and returns the
// final outcome. There is no cancellation: if no decision ever arrives the
// engine waits indefinitely. An exact tie returns with Decided still false;
// that gap is preserved deliberately (see DecideWinner).
func (e *Engine) Run() Outcome {
	for !e.round.Decided() {
		if !e.round.isPlayersTurn() {
			if done := e.dealerPhase(); done {
				break
			}
			continue
		}
		if done := e.playerPhase(); done {
			break
		}
	}
	return e.round.Outcome()
}

// dealerPhase performs one dealer step. It returns true when the round has
// been evaluated and the loop should stop.
func (e *Engine) dealerPhase() bool {
	if !e.dealerOpened {
		card := e.round.dealerDraw(e.shoe)
		e.dealerOpened = true
		e.logger.Info("dealer opening hit", "card", card, "dealerTotal", e.round.dealerTotal())
		e.bus.Publish(NewDealerHitEvent(card))
		e.round.setPlayersTurn(true)
		return false
	}

	if e.round.dealerTotal() >= bustThreshold {
		e.evaluate()
		return true
	}

	if e.round.dealerTotal() >= dealerStandTotal {
		e.logger.Info("dealer stands", "dealerTotal", e.round.dealerTotal())
		e.bus.Publish(NewDealerStandEvent())
		e.evaluate()
		return true
	}

	card := e.round.dealerDraw(e.shoe)
	e.logger.Info("dealer hits", "card", card, "dealerTotal", e.round.dealerTotal())
	e.bus.Publish(NewDealerHitEvent(card))

	// An insured round ends immediately in the player's favor on a two-card
	// dealer 21, regardless of the totals comparison.
	if e.insurance && e.round.dealerTotal() == bustThreshold && e.round.dealerCardCount() == 2 {
		outcome := e.round.setPlayerWin()
		e.logger.Info("insurance pays out", "dealerTotal", e.round.dealerTotal())
		e.bus.Publish(NewRoundResultEvent(outcome))
		return true
	}

	return false
}

// playerPhase performs one player step: the forced opening draw, or one
// consumed decision. It returns true when the round has been evaluated.
func (e *Engine) playerPhase() bool {
	if !e.playerOpened {
		card := e.round.playerDraw(e.shoe)
		e.playerOpened = true
		e.logger.Info("player opening hit", "card", card, "playerTotal", e.round.playerTotal())
		e.bus.Publish(NewPlayerHitEvent(card))
		return false
	}

	action := e.decisions.Take()
	e.round.setPlayerDecision(action)

	switch action {
	case Hit:
		card := e.round.playerDraw(e.shoe)
		e.logger.Info("player hits", "card", card, "playerTotal", e.round.playerTotal())
		e.bus.Publish(NewPlayerHitEvent(card))
		if e.round.playerTotal() >= bustThreshold {
			e.evaluate()
			return true
		}

	case Stand:
		e.logger.Info("player stands", "playerTotal", e.round.playerTotal())
		e.bus.Publish(NewPlayerStandEvent())
		e.round.setPlayersTurn(false)

	case Split:
		card, ok := e.round.detachSplitCard()
		if !ok {
			// Illegal split: no state change, no event
			e.logger.Info("player cannot split", "playerTotal", e.round.playerTotal())
			return false
		}
		e.logger.Info("player splits", "detached", card, "playerTotal", e.round.playerTotal())
		e.bus.Publish(NewPlayerSplitEvent(card))

	case Insurance:
		if !e.round.InsuranceEligible() {
			// Illegal insurance: no state change, no event
			e.logger.Info("player cannot insure", "dealerTotal", e.round.dealerTotal())
			return false
		}
		e.insurance = true
		e.logger.Info("player insures", "playerTotal", e.round.playerTotal(), "dealerTotal", e.round.dealerTotal())
		e.bus.Publish(NewPlayerInsureEvent())
		e.round.setPlayersTurn(false)

	default:
		// Thinking or unrecognized: keep waiting
	}

	return false
}

// evaluate compares the current totals and decides the round
func (e *Engine) evaluate() {
	e.decideWinner(e.round.playerTotal(), e.round.dealerTotal())
}

// decideWinner applies the outcome rules. On an exact tie no flag is set and
// the outcome stays undecided; the round still stops, leaving Decided false.
// That is documented source behavior, kept pending clarification of tie
// semantics, not an oversight.
func (e *Engine) decideWinner(playerTotal, dealerTotal int) {
	switch {
	case playerTotal > bustThreshold:
		e.logger.Info("player busts", "playerTotal", playerTotal)
		e.bus.Publish(NewRoundResultEvent(e.round.setDealerWin()))
	case dealerTotal > bustThreshold:
		e.logger.Info("dealer busts", "dealerTotal", dealerTotal)
		e.bus.Publish(NewRoundResultEvent(e.round.setPlayerWin()))
	case playerTotal == dealerTotal:
		e.logger.Info("tie", "playerTotal", playerTotal, "dealerTotal", dealerTotal)
	case playerTotal < dealerTotal:
		e.logger.Info("dealer wins", "dealerTotal", dealerTotal)
		e.bus.Publish(NewRoundResultEvent(e.round.setDealerWin()))
	default:
		e.logger.Info("player wins", "playerTotal", playerTotal)
		e.bus.Publish(NewRoundResultEvent(e.round.setPlayerWin()))
	}
}
