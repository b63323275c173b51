package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Session message types
const (
	MsgAssistantTurn MessageType = "assistant_turn"
	MsgError         MessageType = "error"
)

// Operator message types
const (
	MsgSessionSubmitted MessageType = "session_submitted"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections: one per live session, plus any number
// of operator monitors.
type Hub struct {
	sessionConns  map[string]*Connection
	operatorConns map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID  string // empty for operator connections
	IsOperator bool
	Send       chan []byte
	Hub        *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID   string // empty with ToOperators set means all operators
	ToOperators bool
	Message     *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessionConns:  make(map[string]*Connection),
		operatorConns: make(map[*Connection]bool),
		register:      make(chan *Connection),
		unregister:    make(chan *Connection),
		broadcast:     make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsOperator {
				h.operatorConns[conn] = true
				log.Println("Operator connected")
			} else {
				h.sessionConns[conn.SessionID] = conn
				log.Printf("Session %s connected", conn.SessionID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsOperator {
				if h.operatorConns[conn] {
					delete(h.operatorConns, conn)
					close(conn.Send)
					log.Println("Operator disconnected")
				}
			} else {
				if existing, ok := h.sessionConns[conn.SessionID]; ok && existing == conn {
					delete(h.sessionConns, conn.SessionID)
					close(conn.Send)
					log.Printf("Session %s disconnected", conn.SessionID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToOperators {
				for conn := range h.operatorConns {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if conn, ok := h.sessionConns[msg.SessionID]; ok {
				select {
				case conn.Send <- data:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends a message to one session's chat surface
// (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToOperators sends a message to every connected operator
// (implements service.Broadcaster)
func (h *Hub) BroadcastToOperators(msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ToOperators: true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
