package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server messages

type JoinRoundData struct {
	PlayerName string `json:"playerName"`
	Seed       *int64 `json:"seed,omitempty"`
}

type PlayerActionData struct {
	Action string `json:"action"`
}

// Server → Client messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoundJoinedData struct {
	RoundID        string `json:"roundId"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

type GameEventData struct {
	Event   string       `json:"event"`
	Card    *deck.Card   `json:"card,omitempty"`
	Outcome *OutcomeData `json:"outcome,omitempty"`
	Message string       `json:"message,omitempty"`
}

type OutcomeData struct {
	PlayerWon     bool       `json:"playerWon"`
	DealerWon     bool       `json:"dealerWon"`
	Decided       bool       `json:"decided"`
	ShouldRequeue bool       `json:"shouldRequeue"`
	DetachedCard  *deck.Card `json:"detachedCard,omitempty"`
}

type RoundCompleteData struct {
	RoundID     string      `json:"roundId"`
	Outcome     OutcomeData `json:"outcome"`
	PlayerTotal int         `json:"playerTotal"`
	DealerTotal int         `json:"dealerTotal"`
}

type ActionTimeoutData struct {
	RoundID        string `json:"roundId"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Action         string `json:"action"` // the action substituted on timeout
}

// Helper functions to convert between internal types and message types

func OutcomeFromGame(o game.Outcome) OutcomeData {
	return OutcomeData{
		PlayerWon:     o.PlayerWon,
		DealerWon:     o.DealerWon,
		Decided:       o.Decided,
		ShouldRequeue: o.Requeue.ShouldRequeue,
		DetachedCard:  o.Requeue.DetachedCard,
	}
}

// GameEventDataFromEvent flattens a typed game event into its wire form
func GameEventDataFromEvent(ev game.GameEvent) GameEventData {
	data := GameEventData{Event: ev.EventType().String()}

	switch e := ev.(type) {
	case game.PlayerHitEvent:
		card := e.Card
		data.Card = &card
	case game.PlayerSplitEvent:
		card := e.Card
		data.Card = &card
	case game.DealerHitEvent:
		card := e.Card
		data.Card = &card
	case game.RoundResultEvent:
		outcome := OutcomeFromGame(e.Outcome)
		data.Outcome = &outcome
	case game.ErrorEvent:
		data.Message = e.Message
	}

	return data
}
