package game

import "sync"

// DecisionSlot is a single externally writable cell holding at most one
// pending action. Writers overwrite any value already present
// (last-write-wins); the engine consumes destructively, so each successful
// Take observes exactly one write. Take blocks on a condition variable
// rather than polling, so there are no idle wake-ups; it has no timeout and
// no cancellation, and waits indefinitely if no decision ever arrives.
type DecisionSlot struct {
	mu      sync.Mutex
	cond    *sync.Cond
	action  Action
	present bool
}

// NewDecisionSlot creates an empty decision slot
func NewDecisionSlot() *DecisionSlot {
	s := &DecisionSlot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Put stores an action, replacing any pending value, and wakes the waiter
func (s *DecisionSlot) Put(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.action = a
	s.present = true
	s.cond.Signal()
}

// Take blocks until an action is present, then consumes and returns it
func (s *DecisionSlot) Take() Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.present {
		s.cond.Wait()
	}
	a := s.action
	s.action = Thinking
	s.present = false
	return a
}

// Peek reports whether a decision is pending without consuming it
func (s *DecisionSlot) Peek() (Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action, s.present
}
