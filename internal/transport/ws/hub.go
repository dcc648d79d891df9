package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the event envelope in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection is one client socket. UserID and Name come from the bearer
// token at upgrade time; the session membership fields are owned by the
// hub and only touched under its lock.
type Connection struct {
	UserID string
	Name   string
	Send   chan []byte

	room     string // session code, "" when not in a session
	playerID string
}

// Hub tracks which connections belong to which session group and which
// user. Session groups carry the game broadcasts; the per-user set is the
// personal channel invites are delivered on. Sends are non-blocking: a
// full buffer drops the message for that one connection and never stalls
// the rest of a fan-out.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Connection // code -> playerID -> conn
	users map[string]map[*Connection]bool   // userID -> live conns
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*Connection),
		users: make(map[string]map[*Connection]bool),
	}
}

// Register adds a freshly authenticated connection to its user's
// personal channel.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[conn.UserID] == nil {
		h.users[conn.UserID] = make(map[*Connection]bool)
	}
	h.users[conn.UserID][conn] = true
	log.Printf("ws: user %s connected (%d sockets)", conn.UserID, len(h.users[conn.UserID]))
}

// Unregister removes a connection from its user channel and any session
// group, and closes its send buffer.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[conn.UserID]; ok && conns[conn] {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, conn.UserID)
		}
		close(conn.Send)
	}
	h.dropFromRoom(conn)
	log.Printf("ws: user %s disconnected", conn.UserID)
}

// JoinRoom binds a connection to a session group, replacing any previous
// membership.
func (h *Hub) JoinRoom(code, playerID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromRoom(conn)
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]*Connection)
	}
	h.rooms[code][playerID] = conn
	conn.room = code
	conn.playerID = playerID
}

// LeaveRoom unbinds a connection from its session group.
func (h *Hub) LeaveRoom(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromRoom(conn)
}

// RoomOf reports the session group a connection currently belongs to.
func (h *Hub) RoomOf(conn *Connection) (code, playerID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return conn.room, conn.playerID
}

// dropFromRoom removes conn from its group. Caller holds the lock.
func (h *Hub) dropFromRoom(conn *Connection) {
	if conn.room == "" {
		return
	}
	if players, ok := h.rooms[conn.room]; ok {
		if players[conn.playerID] == conn {
			delete(players, conn.playerID)
		}
		if len(players) == 0 {
			delete(h.rooms, conn.room)
		}
	}
	conn.room = ""
	conn.playerID = ""
}

// Send delivers an event to a single connection.
func (h *Hub) Send(conn *Connection, msgType string, payload any) {
	data, err := envelope(msgType, payload)
	if err != nil {
		log.Printf("ws: marshal %s: %v", msgType, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.push(conn, msgType, data)
}

// BroadcastToRoom delivers an event to every connection in a session
// group. A failed recipient never aborts the rest.
func (h *Hub) BroadcastToRoom(code, msgType string, payload any) {
	data, err := envelope(msgType, payload)
	if err != nil {
		log.Printf("ws: marshal %s: %v", msgType, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.rooms[code] {
		h.push(conn, msgType, data)
	}
}

// SendToPlayer delivers an event to one player's connection in a session
// group, if that player is currently connected.
func (h *Hub) SendToPlayer(code, playerID, msgType string, payload any) {
	data, err := envelope(msgType, payload)
	if err != nil {
		log.Printf("ws: marshal %s: %v", msgType, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conn, ok := h.rooms[code][playerID]; ok {
		h.push(conn, msgType, data)
	}
}

// SendToUser delivers an event on a user's personal channel, across all
// of their live sockets.
func (h *Hub) SendToUser(userID, msgType string, payload any) {
	data, err := envelope(msgType, payload)
	if err != nil {
		log.Printf("ws: marshal %s: %v", msgType, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.users[userID] {
		h.push(conn, msgType, data)
	}
}

// RoomCodes lists the session codes with live connection groups.
func (h *Hub) RoomCodes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	codes := make([]string, 0, len(h.rooms))
	for code := range h.rooms {
		codes = append(codes, code)
	}
	return codes
}

// DropRoom removes a session group mapping. Connections stay open; they
// are just no longer addressed by that code.
func (h *Hub) DropRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.rooms[code] {
		conn.room = ""
		conn.playerID = ""
	}
	delete(h.rooms, code)
}

// push writes to one connection's buffer without blocking. Caller holds
// at least the read lock.
func (h *Hub) push(conn *Connection, msgType string, data []byte) {
	select {
	case conn.Send <- data:
	default:
		log.Printf("ws: user %s send buffer full, dropping %s", conn.UserID, msgType)
	}
}

func envelope(msgType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: data})
}
