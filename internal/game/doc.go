// Package game implements a single house-vs-player blackjack round as a
// concurrent turn-taking state machine.
//
// The Engine owns a Round for the round's lifetime and is its only writer;
// external readers take snapshots. The player's decision arrives
// asynchronously through a DecisionSlot, the engine's sole suspension point.
// Every observable transition is published to an EventBus whose delivery is
// bounded and lossy, so the engine's progress never depends on any
// subscriber draining its queue.
package game
