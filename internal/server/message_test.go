package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

func TestGameEventDataFromEvent(t *testing.T) {
	t.Parallel()

	ace := deck.NewCard(deck.Spades, 11)

	t.Run("card events carry the card", func(t *testing.T) {
		data := GameEventDataFromEvent(game.NewPlayerHitEvent(ace))
		assert.Equal(t, "player_hit", data.Event)
		require.NotNil(t, data.Card)
		assert.Equal(t, 11, data.Card.Value)

		data = GameEventDataFromEvent(game.NewDealerHitEvent(ace))
		assert.Equal(t, "dealer_hit", data.Event)
		require.NotNil(t, data.Card)

		data = GameEventDataFromEvent(game.NewPlayerSplitEvent(ace))
		assert.Equal(t, "player_split", data.Event)
		require.NotNil(t, data.Card)
	})

	t.Run("bare events carry nothing extra", func(t *testing.T) {
		data := GameEventDataFromEvent(game.NewPlayerStandEvent())
		assert.Equal(t, "player_stand", data.Event)
		assert.Nil(t, data.Card)
		assert.Nil(t, data.Outcome)

		data = GameEventDataFromEvent(game.NewDealerStandEvent())
		assert.Equal(t, "dealer_stand", data.Event)

		data = GameEventDataFromEvent(game.NewPlayerInsureEvent())
		assert.Equal(t, "player_insure", data.Event)
	})

	t.Run("round result carries the outcome", func(t *testing.T) {
		outcome := game.Outcome{PlayerWon: true, Decided: true}
		data := GameEventDataFromEvent(game.NewRoundResultEvent(outcome))
		assert.Equal(t, "round_result", data.Event)
		require.NotNil(t, data.Outcome)
		assert.True(t, data.Outcome.PlayerWon)
		assert.True(t, data.Outcome.Decided)
		assert.False(t, data.Outcome.DealerWon)
	})

	t.Run("error event carries the message", func(t *testing.T) {
		data := GameEventDataFromEvent(game.NewErrorEvent("boom"))
		assert.Equal(t, "error", data.Event)
		assert.Equal(t, "boom", data.Message)
	})
}

func TestOutcomeFromGameCopiesRequeue(t *testing.T) {
	t.Parallel()

	card := deck.NewCard(deck.Hearts, 8)
	outcome := game.Outcome{
		Decided:   true,
		PlayerWon: true,
		Requeue:   game.RequeueSignal{ShouldRequeue: true, DetachedCard: &card},
	}

	data := OutcomeFromGame(outcome)
	assert.True(t, data.ShouldRequeue)
	require.NotNil(t, data.DetachedCard)
	assert.Equal(t, 8, data.DetachedCard.Value)
}

func TestNewMessageSetsTimestamp(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeError, ErrorData{Code: "x", Message: "y"})
	require.NoError(t, err)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())
	assert.JSONEq(t, `{"code":"x","message":"y"}`, string(msg.Data))
}
