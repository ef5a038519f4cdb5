package game

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackforbots/internal/deck"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// playedRound captures everything observable about a finished round
type playedRound struct {
	outcome  Outcome
	events   []GameEvent
	snapshot RoundSnapshot
}

func (p playedRound) eventTypes() []EventType {
	types := make([]EventType, len(p.events))
	for i, ev := range p.events {
		types[i] = ev.EventType()
	}
	return types
}

// playRound runs the engine against a stacked shoe, feeding the scripted
// decisions one at a time. Each decision is written only after the previous
// one has demonstrably been consumed (its event arrived), so no write is
// lost to the slot's last-write-wins overwrite.
func playRound(t *testing.T, shoe deck.Shoe, decisions []Action) playedRound {
	t.Helper()

	round := NewRound()
	slot := NewDecisionSlot()
	bus := NewEventBusCapacity(64)
	engine := NewEngine(round, shoe, slot, bus, testLogger())

	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	outcomeCh := make(chan Outcome, 1)
	go func() { outcomeCh <- engine.Run() }()

	var events []GameEvent
	var outcome Outcome
	next := 0
	deadline := time.After(5 * time.Second)

	for done := false; !done; {
		select {
		case ev := <-sub.C():
			events = append(events, ev)
			switch ev.EventType() {
			case EventTypePlayerHit, EventTypePlayerSplit:
				// A player step completed and the player is still to act
				if next < len(decisions) {
					slot.Put(decisions[next])
					next++
				}
			}
		case outcome = <-outcomeCh:
			done = true
		case <-deadline:
			t.Fatalf("round did not finish; events so far: %v", events)
		}
	}

	// Drain events that were published before Run returned
	for {
		select {
		case ev := <-sub.C():
			events = append(events, ev)
		default:
			return playedRound{outcome: outcome, events: events, snapshot: round.Snapshot()}
		}
	}
}

func TestPlayerBustsOnSecondHit(t *testing.T) {
	t.Parallel()

	// Dealer opens with an ace, player opens with 7, then hits 6 and 9.
	// 7+6+9 = 22 with no ace in the player's hand, so no soft reduction:
	// the player busts and the dealer wins without any stand.
	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 11),
		deck.NewCard(deck.Hearts, 7),
		deck.NewCard(deck.Clubs, 6),
		deck.NewCard(deck.Diamonds, 9),
	)

	result := playRound(t, shoe, []Action{Hit, Hit})

	assert.True(t, result.outcome.Decided)
	assert.True(t, result.outcome.DealerWon)
	assert.False(t, result.outcome.PlayerWon)
	assert.Equal(t, 22, result.snapshot.PlayerTotal)
	assert.Equal(t, []EventType{
		EventTypeDealerHit,
		EventTypePlayerHit,
		EventTypePlayerHit,
		EventTypePlayerHit,
		EventTypeRoundResult,
	}, result.eventTypes())
}

func TestDealerStandsAndWinsOnHigherTotal(t *testing.T) {
	t.Parallel()

	// Player stands at 18; dealer starts at 11, draws 5 then 4 to 20,
	// stands at >= 17 and wins 20 > 18.
	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 11),
		deck.NewCard(deck.Hearts, 9),
		deck.NewCard(deck.Clubs, 9),
		deck.NewCard(deck.Diamonds, 5),
		deck.NewCard(deck.Spades, 4),
	)

	result := playRound(t, shoe, []Action{Hit, Stand})

	assert.True(t, result.outcome.Decided)
	assert.True(t, result.outcome.DealerWon)
	assert.Equal(t, 18, result.snapshot.PlayerTotal)
	assert.Equal(t, 20, result.snapshot.DealerTotal)
	assert.Equal(t, []EventType{
		EventTypeDealerHit,
		EventTypePlayerHit,
		EventTypePlayerHit,
		EventTypePlayerStand,
		EventTypeDealerHit,
		EventTypeDealerHit,
		EventTypeDealerStand,
		EventTypeRoundResult,
	}, result.eventTypes())
}

func TestDealerBustsAfterPlayerStands(t *testing.T) {
	t.Parallel()

	// Dealer 5 + 9 + 9 = 23 busts; player wins at 18
	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 5),
		deck.NewCard(deck.Hearts, 9),
		deck.NewCard(deck.Clubs, 9),
		deck.NewCard(deck.Diamonds, 9),
		deck.NewCard(deck.Spades, 9),
	)

	result := playRound(t, shoe, []Action{Hit, Stand})

	assert.True(t, result.outcome.Decided)
	assert.True(t, result.outcome.PlayerWon)
	assert.False(t, result.outcome.DealerWon)
	assert.Equal(t, 23, result.snapshot.DealerTotal)
}

func TestInsurancePaysOnDealerTwoCardTwentyOne(t *testing.T) {
	t.Parallel()

	// Dealer shows an ace, player insures; the dealer's next draw makes a
	// two-card 21, which ends the round in the player's favor regardless of
	// the player's own total.
	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 11),
		deck.NewCard(deck.Hearts, 5),
		deck.NewCard(deck.Clubs, 10),
	)

	result := playRound(t, shoe, []Action{Insurance})

	assert.True(t, result.outcome.Decided)
	assert.True(t, result.outcome.PlayerWon)
	assert.False(t, result.outcome.DealerWon)
	assert.Equal(t, 21, result.snapshot.DealerTotal)
	assert.Equal(t, 5, result.snapshot.PlayerTotal)
	assert.Equal(t, []EventType{
		EventTypeDealerHit,
		EventTypePlayerHit,
		EventTypePlayerInsure,
		EventTypeDealerHit,
		EventTypeRoundResult,
	}, result.eventTypes())
}

func TestInsuranceWithoutDealerBlackjackPlaysOut(t *testing.T) {
	t.Parallel()

	// Insurance taken but the dealer lands 11+7 = 18 on two cards: no
	// short-circuit, dealer stands and wins 18 > 5
	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 11),
		deck.NewCard(deck.Hearts, 5),
		deck.NewCard(deck.Clubs, 7),
	)

	result := playRound(t, shoe, []Action{Insurance})

	assert.True(t, result.outcome.Decided)
	assert.True(t, result.outcome.DealerWon)
	assert.Equal(t, 18, result.snapshot.DealerTotal)
}

func TestSplitDetachesCardAndPlayContinues(t *testing.T) {
	t.Parallel()

	// Player draws 8, hits to a pair of 8s, splits (second 8 detached into
	// the requeue signal), then stands on the remaining 8. Dealer
	// 5 + 9 + 9 = 23 busts.
	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 5),
		deck.NewCard(deck.Hearts, 8),
		deck.NewCard(deck.Clubs, 8),
		deck.NewCard(deck.Diamonds, 9),
		deck.NewCard(deck.Spades, 9),
	)

	result := playRound(t, shoe, []Action{Hit, Split, Stand})

	require.True(t, result.outcome.Requeue.ShouldRequeue)
	require.NotNil(t, result.outcome.Requeue.DetachedCard)
	assert.Equal(t, 8, result.outcome.Requeue.DetachedCard.Value)
	assert.Len(t, result.snapshot.Player.Cards, 1)
	assert.True(t, result.outcome.Decided)
	assert.True(t, result.outcome.PlayerWon)

	assert.Contains(t, result.eventTypes(), EventTypePlayerSplit)
}

func TestTieLeavesRoundUndecided(t *testing.T) {
	t.Parallel()

	// Regression test pinning the documented gap: player 18 vs dealer
	// 11+7 = 18 is an exact tie. No outcome flag is set, no RoundResult is
	// published, and the engine still returns.
	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 11),
		deck.NewCard(deck.Hearts, 9),
		deck.NewCard(deck.Clubs, 9),
		deck.NewCard(deck.Diamonds, 7),
	)

	result := playRound(t, shoe, []Action{Hit, Stand})

	assert.False(t, result.outcome.Decided)
	assert.False(t, result.outcome.PlayerWon)
	assert.False(t, result.outcome.DealerWon)
	assert.NotContains(t, result.eventTypes(), EventTypeRoundResult)
	assert.Equal(t, EventTypeDealerStand, result.events[len(result.events)-1].EventType())
}

func TestRoundResultFlagsMutuallyExclusive(t *testing.T) {
	t.Parallel()

	seeds := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	for _, seed := range seeds {
		shoe := deck.NewSeededShoe(seed)
		result := playRound(t, shoe, []Action{Stand})

		var resultEvents int
		for _, ev := range result.events {
			if ev.EventType() == EventTypeRoundResult {
				resultEvents++
				outcome := ev.(RoundResultEvent).Outcome
				assert.True(t, outcome.PlayerWon != outcome.DealerWon,
					"seed %d: win flags must be mutually exclusive", seed)
			}
		}

		if result.outcome.Decided {
			assert.Equal(t, 1, resultEvents, "seed %d: exactly one RoundResult", seed)
			assert.True(t, result.outcome.PlayerWon != result.outcome.DealerWon, "seed %d", seed)
		} else {
			// Exact tie: no result event at all
			assert.Zero(t, resultEvents, "seed %d", seed)
		}
	}
}

func TestSplitRejectedWithoutMatchingPair(t *testing.T) {
	t.Parallel()

	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 5),
		deck.NewCard(deck.Hearts, 9),
		deck.NewCard(deck.Clubs, 9),
		deck.NewCard(deck.Diamonds, 9),
	)

	round := NewRound()
	slot := NewDecisionSlot()
	bus := NewEventBusCapacity(64)
	engine := NewEngine(round, shoe, slot, bus, testLogger())

	sub := bus.Subscribe()
	outcomeCh := make(chan Outcome, 1)
	go func() { outcomeCh <- engine.Run() }()

	// Wait for the player's forced opening hit: one card, no pair
	waitForEvent(t, sub, EventTypePlayerHit)

	slot.Put(Split)
	waitForConsumed(t, slot)

	snap := round.Snapshot()
	assert.Len(t, snap.Player.Cards, 1, "rejected split must not change state")
	assert.False(t, snap.Outcome.Requeue.ShouldRequeue)

	slot.Put(Stand)
	select {
	case outcome := <-outcomeCh:
		assert.False(t, outcome.Requeue.ShouldRequeue)
	case <-time.After(5 * time.Second):
		t.Fatal("round did not finish")
	}

	// No split event was ever published
	for _, et := range drainEvents(sub) {
		assert.NotEqual(t, EventTypePlayerSplit, et)
	}
}

func TestInsuranceRejectedWithoutDealerAce(t *testing.T) {
	t.Parallel()

	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 9),
		deck.NewCard(deck.Hearts, 9),
		deck.NewCard(deck.Clubs, 9),
	)

	round := NewRound()
	slot := NewDecisionSlot()
	bus := NewEventBusCapacity(64)
	engine := NewEngine(round, shoe, slot, bus, testLogger())

	sub := bus.Subscribe()
	outcomeCh := make(chan Outcome, 1)
	go func() { outcomeCh <- engine.Run() }()

	waitForEvent(t, sub, EventTypePlayerHit)

	slot.Put(Insurance)
	waitForConsumed(t, slot)

	// Still the player's turn: rejected insurance changes nothing
	snap := round.Snapshot()
	assert.True(t, snap.PlayersTurn)

	slot.Put(Stand)
	select {
	case <-outcomeCh:
	case <-time.After(5 * time.Second):
		t.Fatal("round did not finish")
	}

	for _, et := range drainEvents(sub) {
		assert.NotEqual(t, EventTypePlayerInsure, et)
	}
}

func TestThinkingIsANoOp(t *testing.T) {
	t.Parallel()

	shoe := deck.NewStackedShoe(
		deck.NewCard(deck.Spades, 11),
		deck.NewCard(deck.Hearts, 9),
		deck.NewCard(deck.Clubs, 9),
		deck.NewCard(deck.Diamonds, 9),
	)

	round := NewRound()
	slot := NewDecisionSlot()
	bus := NewEventBusCapacity(64)
	engine := NewEngine(round, shoe, slot, bus, testLogger())

	sub := bus.Subscribe()
	outcomeCh := make(chan Outcome, 1)
	go func() { outcomeCh <- engine.Run() }()

	waitForEvent(t, sub, EventTypePlayerHit)

	slot.Put(Thinking)
	waitForConsumed(t, slot)

	snap := round.Snapshot()
	assert.Len(t, snap.Player.Cards, 1)
	assert.True(t, snap.PlayersTurn)

	// The engine is still waiting; a real decision completes the round
	slot.Put(Hit)
	waitForEvent(t, sub, EventTypePlayerHit)
	slot.Put(Stand)

	select {
	case <-outcomeCh:
	case <-time.After(5 * time.Second):
		t.Fatal("round did not finish after Thinking no-op")
	}
}

// waitForEvent reads from the subscription until the wanted event type
// arrives
func waitForEvent(t *testing.T, sub *Subscription, want EventType) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-sub.C():
			if ev.EventType() == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

// waitForConsumed waits until the engine has taken the pending decision out
// of the slot
func waitForConsumed(t *testing.T, slot *DecisionSlot) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, present := slot.Peek(); !present {
			// Consumed; give the engine a beat to finish applying it
			time.Sleep(10 * time.Millisecond)
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("engine never consumed the pending decision")
}

// drainEvents empties the subscription backlog and returns the event types
func drainEvents(sub *Subscription) []EventType {
	var types []EventType
	for {
		select {
		case ev := <-sub.C():
			types = append(types, ev.EventType())
		default:
			return types
		}
	}
}
