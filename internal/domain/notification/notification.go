package notification

import "github.com/google/uuid"

// Message is one outbound notification. Event names the client-facing
// message type; Payload is marshaled as-is.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Notifier delivers engine notifications to connected clients. The
// engine guarantees what is sent and in what order relative to the
// state mutation; delivery itself is best effort.
type Notifier interface {
	// NotifyLobby sends to every lobby watcher.
	NotifyLobby(msg Message)
	// NotifySession sends to every participant of a session.
	NotifySession(sessionID uuid.UUID, msg Message)
	// AddToSession routes a user's connection into a session group.
	AddToSession(username string, sessionID uuid.UUID)
	// RemoveFromSession returns a user's connection to the lobby.
	RemoveFromSession(username string)
	// CloseSession drops a session group, returning its members to the
	// lobby.
	CloseSession(sessionID uuid.UUID)
}
