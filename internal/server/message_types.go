package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants for the client-server protocol
const (
	// Client to server messages
	MessageTypeJoinRound    MessageType = "join_round"
	MessageTypePlayerAction MessageType = "player_action"

	// Server to client messages
	MessageTypeRoundJoined   MessageType = "round_joined"
	MessageTypeGameEvent     MessageType = "game_event"
	MessageTypeActionTimeout MessageType = "action_timeout"
	MessageTypeRoundComplete MessageType = "round_complete"
	MessageTypeError         MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
