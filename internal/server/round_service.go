package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

// messageSender delivers protocol messages to a client. *Connection
// implements it; tests substitute a recorder.
type messageSender interface {
	SendMessage(msg *Message) error
}

// RoundService owns the lifecycle of running rounds: it wires a round, shoe,
// decision slot and event bus together, runs the engine in its own
// goroutine, forwards bus events to the client and routes incoming actions
// into the decision slot.
type RoundService struct {
	logger   *log.Logger
	clock    quartz.Clock
	settings RoundSettings

	// newShoe builds the card source for a round; overridable in tests
	newShoe func(seed int64) deck.Shoe

	mu     sync.Mutex
	rounds map[string]*roundRunner
	nextID atomic.Uint64
}

// NewRoundService creates a round service
func NewRoundService(logger *log.Logger, clock quartz.Clock, settings RoundSettings) *RoundService {
	return &RoundService{
		logger:   logger.WithPrefix("rounds"),
		clock:    clock,
		settings: settings,
		newShoe:  func(seed int64) deck.Shoe { return deck.NewSeededShoe(seed) },
		rounds:   make(map[string]*roundRunner),
	}
}

// roundRunner holds everything belonging to one in-flight round
type roundRunner struct {
	id     string
	round  *game.Round
	slot   *game.DecisionSlot
	bus    *game.EventBus
	sub    *game.Subscription
	sender messageSender
	logger *log.Logger

	clock   quartz.Clock
	timeout time.Duration

	timerMu sync.Mutex
	timer   *quartz.Timer

	done chan struct{}
}

// StartRound begins a new round for the given client and returns its ID.
// Events flow to the client as game_event messages; when the engine
// finishes, a round_complete message carries the final state.
func (rs *RoundService) StartRound(sender messageSender, seed *int64) (string, error) {
	id := fmt.Sprintf("round-%d", rs.nextID.Add(1))

	shoeSeed := rs.settings.Seed
	if seed != nil {
		shoeSeed = *seed
	}
	if shoeSeed == 0 {
		shoeSeed = time.Now().UnixNano()
	}

	round := game.NewRound()
	slot := game.NewDecisionSlot()
	bus := game.NewEventBusCapacity(rs.settings.EventBacklog)

	runner := &roundRunner{
		id:      id,
		round:   round,
		slot:    slot,
		bus:     bus,
		sub:     bus.Subscribe(),
		sender:  sender,
		logger:  rs.logger.With("round", id),
		clock:   rs.clock,
		timeout: time.Duration(rs.settings.DecisionTimeoutSeconds) * time.Second,
		done:    make(chan struct{}),
	}

	rs.mu.Lock()
	rs.rounds[id] = runner
	rs.mu.Unlock()

	engine := game.NewEngine(round, rs.newShoe(shoeSeed), slot, bus, rs.logger)

	go runner.forwardEvents()
	go func() {
		outcome := engine.Run()
		runner.logger.Info("round finished",
			"decided", outcome.Decided,
			"playerWon", outcome.PlayerWon,
			"dealerWon", outcome.DealerWon,
			"requeue", outcome.Requeue.ShouldRequeue)
		runner.stopTimer()
		// Closing the subscription ends forwardEvents after it drains the
		// backlog and sends round_complete
		bus.Unsubscribe(runner.sub)
		<-runner.done

		rs.mu.Lock()
		delete(rs.rounds, id)
		rs.mu.Unlock()
	}()

	rs.logger.Info("round started", "round", id, "seed", shoeSeed)
	return id, nil
}

// HandleAction routes a client action into the round's decision slot.
// Unknown action strings are rejected before they reach the engine.
func (rs *RoundService) HandleAction(roundID, action string) error {
	rs.mu.Lock()
	runner, ok := rs.rounds[roundID]
	rs.mu.Unlock()
	if !ok {
		return fmt.Errorf("no running round: %s", roundID)
	}

	parsed, ok := game.ActionFromString(action)
	if !ok {
		return fmt.Errorf("invalid action: %s", action)
	}

	runner.stopTimer()
	runner.slot.Put(parsed)
	runner.logger.Debug("action queued", "action", parsed)
	return nil
}

// AbandonRound resolves a round whose client has gone away by standing the
// player, which lets the engine run the dealer out and exit. The engine
// itself has no cancellation; this is the harness's disconnect policy.
func (rs *RoundService) AbandonRound(roundID string) {
	rs.mu.Lock()
	runner, ok := rs.rounds[roundID]
	rs.mu.Unlock()
	if !ok {
		return
	}

	runner.logger.Info("client gone, standing player to finish round")
	runner.stopTimer()
	runner.slot.Put(game.Stand)
}

// RoundCount returns the number of rounds currently running
func (rs *RoundService) RoundCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.rounds)
}

// forwardEvents relays bus events to the client in publish order, arming the
// decision timeout whenever the player is left to act. Once the
// subscription closes it sends the final round_complete message.
func (r *roundRunner) forwardEvents() {
	defer close(r.done)

	for ev := range r.sub.C() {
		msg, err := NewMessage(MessageTypeGameEvent, GameEventDataFromEvent(ev))
		if err != nil {
			r.logger.Error("failed to encode event", "error", err, "event", ev.EventType())
			continue
		}
		if err := r.sender.SendMessage(msg); err != nil {
			r.logger.Debug("failed to deliver event", "error", err, "event", ev.EventType())
		}

		switch ev.EventType() {
		case game.EventTypePlayerHit, game.EventTypePlayerSplit:
			// The player is to act next; start the decision clock
			r.armTimer()
		case game.EventTypePlayerStand, game.EventTypePlayerInsure, game.EventTypeRoundResult:
			r.stopTimer()
		}
	}

	snap := r.round.Snapshot()
	complete, err := NewMessage(MessageTypeRoundComplete, RoundCompleteData{
		RoundID:     r.id,
		Outcome:     OutcomeFromGame(snap.Outcome),
		PlayerTotal: snap.PlayerTotal,
		DealerTotal: snap.DealerTotal,
	})
	if err != nil {
		r.logger.Error("failed to encode round result", "error", err)
		return
	}
	if err := r.sender.SendMessage(complete); err != nil {
		r.logger.Debug("failed to deliver round result", "error", err)
	}
}

// armTimer (re)starts the decision timeout. A fired timer substitutes a
// stand for the missing decision and tells the client, mirroring how the
// engine never waits with a deadline itself.
func (r *roundRunner) armTimer() {
	if r.timeout <= 0 {
		return
	}

	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.clock.AfterFunc(r.timeout, func() {
		r.logger.Warn("decision timeout, standing player", "timeout", r.timeout)

		msg, err := NewMessage(MessageTypeActionTimeout, ActionTimeoutData{
			RoundID:        r.id,
			TimeoutSeconds: int(r.timeout / time.Second),
			Action:         game.Stand.String(),
		})
		if err == nil {
			_ = r.sender.SendMessage(msg)
		}

		r.slot.Put(game.Stand)
	})
}

func (r *roundRunner) stopTimer() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
