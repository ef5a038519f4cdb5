package game

// Action represents a player decision
type Action int

const (
	// Thinking is the inert default: it never triggers a transition
	Thinking Action = iota
	Hit
	Stand
	Split
	Insurance
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Thinking:
		return "thinking"
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	case Split:
		return "split"
	case Insurance:
		return "insurance"
	default:
		return "unknown"
	}
}

// ActionFromString parses a wire action string. Unrecognized strings map to
// Thinking with ok=false, which the engine treats as a no-op.
func ActionFromString(s string) (Action, bool) {
	switch s {
	case "hit":
		return Hit, true
	case "stand":
		return Stand, true
	case "split":
		return Split, true
	case "insurance":
		return Insurance, true
	case "thinking":
		return Thinking, true
	default:
		return Thinking, false
	}
}
