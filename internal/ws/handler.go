package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is enforced by the WebSocketCORSCheck middleware
	},
}

// Client represents a connected WebSocket client. One session can have
// several clients (the same gift page open in two tabs shares one table).
type Client struct {
	conn         *websocket.Conn
	id           string
	sessionToken string
	send         chan []byte
}

// Hub maintains the set of active clients grouped by session
type Hub struct {
	clients      map[string]*Client            // client id -> Client
	sessionRooms map[string]map[string]*Client // session token -> client id -> Client
	register     chan *Client
	unregister   chan *Client
	mu           sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		sessionRooms: make(map[string]map[string]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
	}
}

// BroadcastToSession sends a raw message to every client watching a
// session. This is the game package's Broadcaster: frames arrive at tick
// rate, so a slow client gets dropped frames rather than a stalled loop.
func (h *Hub) BroadcastToSession(sessionToken string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.sessionRooms[sessionToken]; exists {
		for _, client := range room {
			select {
			case client.send <- message:
			default:
				// Client's buffer is full
			}
		}
	}
}

// SendToClient marshals and sends a message to one client
func (h *Hub) SendToClient(clientID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[clientID]; exists {
		select {
		case client.send <- data:
			// sent
		default:
			log.Printf("[WS] SendToClient dropped message for client %s (buffer full)", clientID)
		}
	}
}

// RoomSize returns how many clients are watching a session.
func (h *Hub) RoomSize(sessionToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessionRooms[sessionToken])
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed - connection is being cleaned up.
				// Best-effort close frame; ignore errors (conn may already be closed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}
