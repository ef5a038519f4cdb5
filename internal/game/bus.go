package game

import (
	"sync"
	"sync/atomic"
)

// DefaultBacklog is the per-subscriber backlog capacity
const DefaultBacklog = 100

// EventBus is a bounded, lossy multi-subscriber broadcast channel. Publish
// never blocks and never fails observably to the caller, even with zero
// subscribers. Each subscription gets its own ordered backlog; when a
// subscriber falls behind, its oldest unread events are dropped to make room
// rather than stalling the publisher. Drops are counted per subscription for
// diagnostics only and are never retried or reported to the subscriber.
type EventBus struct {
	mu       sync.RWMutex
	subs     map[*Subscription]struct{}
	capacity int
}

// NewEventBus creates an event bus with the default backlog capacity
func NewEventBus() *EventBus {
	return NewEventBusCapacity(DefaultBacklog)
}

// NewEventBusCapacity creates an event bus with an explicit per-subscriber
// backlog capacity
func NewEventBusCapacity(capacity int) *EventBus {
	if capacity < 1 {
		capacity = 1
	}
	return &EventBus{
		subs:     make(map[*Subscription]struct{}),
		capacity: capacity,
	}
}

// Subscription is an independent receive handle. It observes every event
// published after Subscribe, in publish order, minus any backlog-evicted
// events.
type Subscription struct {
	ch      chan GameEvent
	dropped atomic.Uint64
}

// C returns the channel events are delivered on. The channel is closed when
// the subscription is removed from the bus.
func (s *Subscription) C() <-chan GameEvent {
	return s.ch
}

// Dropped returns the number of events this subscription has missed because
// its backlog was full
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Subscribe returns a new subscription receiving subsequently published
// events. There is no replay of past events.
func (b *EventBus) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan GameEvent, b.capacity)}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a subscription and closes its channel. Further
// publishes are not delivered to it; already buffered events remain
// readable until the closed channel drains.
func (b *EventBus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Close removes all subscriptions, closing their channels
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish delivers the event to every current subscription without ever
// blocking. Safe to call from any goroutine.
func (b *EventBus) Publish(event GameEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		select {
		case sub.ch <- event:
			continue
		default:
		}
		// Backlog full: evict the oldest unread event, then retry once.
		// Under concurrent publishers both selects can lose the race; the
		// event is counted dropped rather than blocking.
		select {
		case <-sub.ch:
			sub.dropped.Add(1)
		default:
		}
		select {
		case sub.ch <- event:
		default:
			sub.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of active subscriptions
func (b *EventBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
