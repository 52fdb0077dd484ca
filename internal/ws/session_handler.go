package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/giftpool/backend/internal/game"
)

// PointerData is the payload of aim_start, aim_move and aim_release
// messages: the pointer position in table coordinates.
type PointerData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SessionHub is the single hub for all table sessions.
var SessionHub *Hub

func init() {
	SessionHub = NewHub()
	go runSessionHub(SessionHub)
}

func newClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// HandleWebSocket handles WebSocket connections for table sessions.
func HandleWebSocket(c *gin.Context) {
	sessionToken := c.Param("token")
	if sessionToken == "" {
		sessionToken = c.Query("token")
	}
	if sessionToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	sess, err := game.Manager.GetSession(sessionToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:         conn,
		id:           newClientID(),
		sessionToken: sess.Token,
		send:         make(chan []byte, 256),
	}

	SessionHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runSessionHub owns the client registry. A joining client immediately gets
// the current frame so the table renders before the next tick arrives.
func runSessionHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.sessionRooms[client.sessionToken]; !exists {
				h.sessionRooms[client.sessionToken] = make(map[string]*Client)
			}
			h.sessionRooms[client.sessionToken][client.id] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s joined session %s", client.id, client.sessionToken)

			if sess, err := game.Manager.GetSession(client.sessionToken); err == nil {
				h.SendToClient(client.id, map[string]interface{}{
					"type": "frame",
					"data": sess.Snapshot(),
				})
				game.Manager.TouchSession(client.sessionToken)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				if room, exists := h.sessionRooms[client.sessionToken]; exists {
					delete(room, client.id)
					if len(room) == 0 {
						delete(h.sessionRooms, client.sessionToken)
					}
				}

				log.Printf("[WS] Client %s left session %s", client.id, client.sessionToken)

				select {
				case <-client.send:
				default:
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// readPump reads messages for a table session.
func (c *Client) readPump() {
	defer func() {
		SessionHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for client %s: %v", c.id, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes incoming session messages. Pointer events feed
// the simulation's input queue; the loop applies them before its next
// frame, so handlers never touch table state directly.
func (c *Client) handleMessage(msg WSMessage) {
	sess, err := game.Manager.GetSession(c.sessionToken)
	if err != nil {
		c.sendError("Session not found")
		return
	}

	switch msg.Type {
	case "aim_start", "aim_move", "aim_release":
		var data PointerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid pointer data")
			return
		}
		sess.HandlePointer(msg.Type, data.X, data.Y)
		// Aim moves arrive at pointer rate; only gesture edges count as
		// activity for the idle sweep.
		if msg.Type != "aim_move" {
			game.Manager.TouchSession(c.sessionToken)
		}

	case "get_state":
		SessionHub.SendToClient(c.id, map[string]interface{}{
			"type": "frame",
			"data": sess.Snapshot(),
		})

	default:
		c.sendError("Unknown message type")
	}
}
