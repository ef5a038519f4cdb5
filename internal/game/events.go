package game

import (
	"time"

	"github.com/lox/blackjackforbots/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypePlayerHit    EventType = "player_hit"
	EventTypePlayerStand  EventType = "player_stand"
	EventTypePlayerSplit  EventType = "player_split"
	EventTypePlayerInsure EventType = "player_insure"
	EventTypeDealerHit    EventType = "dealer_hit"
	EventTypeDealerStand  EventType = "dealer_stand"
	EventTypeRoundResult  EventType = "round_result"
	EventTypeError        EventType = "error"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a round
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// PlayerHitEvent is published when the player receives a card, including the
// forced opening draw
type PlayerHitEvent struct {
	Card      deck.Card
	timestamp time.Time
}

func (e PlayerHitEvent) EventType() EventType { return EventTypePlayerHit }
func (e PlayerHitEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerHitEvent creates a new player hit event
func NewPlayerHitEvent(card deck.Card) PlayerHitEvent {
	return PlayerHitEvent{Card: card, timestamp: time.Now()}
}

// PlayerStandEvent is published when the player stands
type PlayerStandEvent struct {
	timestamp time.Time
}

func (e PlayerStandEvent) EventType() EventType { return EventTypePlayerStand }
func (e PlayerStandEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerStandEvent creates a new player stand event
func NewPlayerStandEvent() PlayerStandEvent {
	return PlayerStandEvent{timestamp: time.Now()}
}

// PlayerSplitEvent is published when a split is accepted; Card is the
// detached card handed to the requeue signal
type PlayerSplitEvent struct {
	Card      deck.Card
	timestamp time.Time
}

func (e PlayerSplitEvent) EventType() EventType { return EventTypePlayerSplit }
func (e PlayerSplitEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerSplitEvent creates a new player split event
func NewPlayerSplitEvent(card deck.Card) PlayerSplitEvent {
	return PlayerSplitEvent{Card: card, timestamp: time.Now()}
}

// PlayerInsureEvent is published when insurance is accepted
type PlayerInsureEvent struct {
	timestamp time.Time
}

func (e PlayerInsureEvent) EventType() EventType { return EventTypePlayerInsure }
func (e PlayerInsureEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerInsureEvent creates a new player insure event
func NewPlayerInsureEvent() PlayerInsureEvent {
	return PlayerInsureEvent{timestamp: time.Now()}
}

// DealerHitEvent is published when the dealer receives a card, including the
// forced opening draw
type DealerHitEvent struct {
	Card      deck.Card
	timestamp time.Time
}

func (e DealerHitEvent) EventType() EventType { return EventTypeDealerHit }
func (e DealerHitEvent) Timestamp() time.Time { return e.timestamp }

// NewDealerHitEvent creates a new dealer hit event
func NewDealerHitEvent(card deck.Card) DealerHitEvent {
	return DealerHitEvent{Card: card, timestamp: time.Now()}
}

// DealerStandEvent is published when the dealer stands at 17 or more
type DealerStandEvent struct {
	timestamp time.Time
}

func (e DealerStandEvent) EventType() EventType { return EventTypeDealerStand }
func (e DealerStandEvent) Timestamp() time.Time { return e.timestamp }

// NewDealerStandEvent creates a new dealer stand event
func NewDealerStandEvent() DealerStandEvent {
	return DealerStandEvent{timestamp: time.Now()}
}

// RoundResultEvent is published exactly once when the round is decided; it
// carries a snapshot of the outcome at decision time
type RoundResultEvent struct {
	Outcome   Outcome
	timestamp time.Time
}

func (e RoundResultEvent) EventType() EventType { return EventTypeRoundResult }
func (e RoundResultEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundResultEvent creates a new round result event
func NewRoundResultEvent(outcome Outcome) RoundResultEvent {
	return RoundResultEvent{Outcome: outcome, timestamp: time.Now()}
}

// ErrorEvent is reserved for external diagnostic publishers; the engine
// itself never produces it
type ErrorEvent struct {
	Message   string
	timestamp time.Time
}

func (e ErrorEvent) EventType() EventType { return EventTypeError }
func (e ErrorEvent) Timestamp() time.Time { return e.timestamp }

// NewErrorEvent creates a new error event
func NewErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Message: message, timestamp: time.Now()}
}
