package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans session snapshots out to the websocket clients watching each
// session. It never computes game state; it only relays what the session
// service hands it.
type Hub struct {
	clients        map[*Client]bool
	register       chan *Client
	unregister     chan *Client
	mutex          sync.RWMutex
	sessionService *SessionService
}

type Client struct {
	hub         *Hub
	id          string
	socket      *websocket.Conn
	send        chan []byte
	sessionCode string
	playerID    string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(sessionService *SessionService) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		sessionService: sessionService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s connected to session %s (player %s)", client.id, client.sessionCode, client.playerID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client %s disconnected from session %s (player %s)", client.id, client.sessionCode, client.playerID)
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToSession sends a typed message to every client watching the
// session. Clients with a full send buffer are dropped.
func (h *Hub) BroadcastToSession(sessionCode, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if !strings.EqualFold(client.sessionCode, sessionCode) {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// sendStateSync replays the latest session snapshot to one client, so late
// joiners and reconnects catch up immediately.
func (h *Hub) sendStateSync(client *Client) {
	snapshot, err := h.sessionService.GetSessionState(client.sessionCode)
	if err != nil {
		log.Printf("State sync failed for client %s in session %s: %v", client.id, client.sessionCode, err)
		return
	}

	data, err := json.Marshal(Message{Type: "session_state", Payload: snapshot})
	if err != nil {
		log.Printf("Error marshaling state sync message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

// ConnectedPlayers lists the player ids with an open socket for a session.
func (h *Hub) ConnectedPlayers(sessionCode string) []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var playerIDs []string
	for client := range h.clients {
		if strings.EqualFold(client.sessionCode, sessionCode) {
			playerIDs = append(playerIDs, client.playerID)
		}
	}
	return playerIDs
}

func (h *Hub) RegisterClient(conn *websocket.Conn, sessionCode, playerID string) *Client {
	client := &Client{
		hub:         h,
		id:          generateClientID(),
		socket:      conn,
		send:        make(chan []byte, 256),
		sessionCode: strings.ToLower(sessionCode),
		playerID:    playerID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message from client %s: %v", c.id, err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		c.send <- data

	case "request_state":
		c.hub.sendStateSync(c)

	default:
		log.Printf("Unknown message type %q from player %s in session %s", msg.Type, c.playerID, c.sessionCode)
	}
}

func generateClientID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return "client_" + hex.EncodeToString(bytes)
}
