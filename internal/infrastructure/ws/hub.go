package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trivia-hub/trivia-hub/internal/domain/notification"
)

// Hub manages WebSocket clients and implements notification.Notifier.
// Each user has at most one connection; clients inside a session group
// receive that session's messages, everyone else watches the lobby.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	sessions map[uuid.UUID]map[string]struct{}
	byUser   map[string]uuid.UUID
	logger   zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		sessions: make(map[uuid.UUID]map[string]struct{}),
		byUser:   make(map[string]uuid.UUID),
		logger:   logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Register attaches a client connection, replacing any previous
// connection for the same user.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if old, ok := h.clients[c.Username]; ok {
		old.Close()
	}
	h.clients[c.Username] = c
	h.mu.Unlock()
	h.logger.Debug().Str("username", c.Username).Msg("client registered")
}

// Unregister detaches a client connection. The session-group membership
// is kept so a reconnect lands back in the running game.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.Username] == c {
		delete(h.clients, c.Username)
	}
	h.mu.Unlock()
	c.Close()
	h.logger.Debug().Str("username", c.Username).Msg("client unregistered")
}

// NotifyLobby sends to every connected user who is not in a session.
func (h *Hub) NotifyLobby(msg notification.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal lobby message")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for username, c := range h.clients {
		if _, inSession := h.byUser[username]; inSession {
			continue
		}
		c.trySend(data)
	}
}

// NotifySession sends to every member of a session group.
func (h *Hub) NotifySession(sessionID uuid.UUID, msg notification.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal session message")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for username := range h.sessions[sessionID] {
		if c, ok := h.clients[username]; ok {
			c.trySend(data)
		}
	}
}

// AddToSession moves a user into a session group.
func (h *Hub) AddToSession(username string, sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.byUser[username]; ok {
		delete(h.sessions[prev], username)
	}
	group, ok := h.sessions[sessionID]
	if !ok {
		group = make(map[string]struct{})
		h.sessions[sessionID] = group
	}
	group[username] = struct{}{}
	h.byUser[username] = sessionID
}

// RemoveFromSession returns a user to the lobby.
func (h *Hub) RemoveFromSession(username string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sessionID, ok := h.byUser[username]; ok {
		delete(h.sessions[sessionID], username)
		delete(h.byUser, username)
	}
}

// CloseSession drops a session group entirely.
func (h *Hub) CloseSession(sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for username := range h.sessions[sessionID] {
		delete(h.byUser, username)
	}
	delete(h.sessions, sessionID)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
