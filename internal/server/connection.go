package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn         *websocket.Conn
	send         chan *Message
	roundID      string
	playerName   string
	logger       *log.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	closeOnce    sync.Once
	roundService *RoundService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, roundService *RoundService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:         conn,
		send:         make(chan *Message, 256),
		logger:       logger.WithPrefix("conn"),
		ctx:          ctx,
		cancel:       cancel,
		roundService: roundService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client without blocking the caller
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// SetRound associates this connection with a running round
func (c *Connection) SetRound(roundID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roundID = roundID
}

// RoundID returns the associated round ID
func (c *Connection) RoundID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roundID
}

// SetPlayer associates this connection with a player name
func (c *Connection) SetPlayer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerName = name
}

// Player returns the associated player name
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "round", c.RoundID())

	switch msg.Type {
	case MessageTypeJoinRound:
		var data JoinRoundData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join round data")
			return
		}
		c.handleJoinRound(data)

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse player action data")
			return
		}
		c.handlePlayerAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

func (c *Connection) handleJoinRound(data JoinRoundData) {
	c.logger.Info("Join round request", "playerName", data.PlayerName)

	if c.roundService == nil {
		c.sendError("service_unavailable", "Round service not available")
		return
	}

	if c.RoundID() != "" {
		c.sendError("already_joined", "A round is already running on this connection")
		return
	}

	if data.PlayerName != "" {
		c.SetPlayer(data.PlayerName)
	}

	roundID, err := c.roundService.StartRound(c, data.Seed)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}

	c.SetRound(roundID)

	response, _ := NewMessage(MessageTypeRoundJoined, RoundJoinedData{
		RoundID:        roundID,
		TimeoutSeconds: c.roundService.settings.DecisionTimeoutSeconds,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handlePlayerAction(data PlayerActionData) {
	c.logger.Info("Player action", "round", c.RoundID(), "action", data.Action)

	if c.roundService == nil {
		c.sendError("service_unavailable", "Round service not available")
		return
	}

	roundID := c.RoundID()
	if roundID == "" {
		c.sendError("no_round", "Must join a round first")
		return
	}

	if err := c.roundService.HandleAction(roundID, data.Action); err != nil {
		c.sendError("action_failed", err.Error())
		return
	}

	// No response needed; the engine publishes events as it processes
}
