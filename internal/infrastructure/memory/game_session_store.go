package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
)

// GameSessionStore implements gamesession.Repository in memory. Live
// sessions are transient: they exist between creation and game end, so
// an in-process map behind the repository interface is sufficient, and
// a durable backend can be swapped in without touching the engine.
type GameSessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*gamesession.GameSession
	byUser   map[uuid.UUID]uuid.UUID
}

// NewGameSessionStore creates an empty store.
func NewGameSessionStore() *GameSessionStore {
	return &GameSessionStore{
		sessions: make(map[uuid.UUID]*gamesession.GameSession),
		byUser:   make(map[uuid.UUID]uuid.UUID),
	}
}

// Save inserts or updates a session, assigning an id on first insert
// and refreshing the user index.
func (s *GameSessionStore) Save(_ context.Context, gs *gamesession.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gs.ID == uuid.Nil {
		gs.ID = uuid.New()
	}
	s.unindex(gs.ID)
	s.sessions[gs.ID] = gs
	s.index(gs)
	return nil
}

func (s *GameSessionStore) Get(_ context.Context, id uuid.UUID) (*gamesession.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gs, ok := s.sessions[id]
	if !ok {
		return nil, gamesession.ErrNotFound
	}
	return gs, nil
}

func (s *GameSessionStore) GetByUser(_ context.Context, userID uuid.UUID) (*gamesession.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[userID]
	if !ok {
		return nil, gamesession.ErrNotFound
	}
	gs, ok := s.sessions[id]
	if !ok {
		return nil, gamesession.ErrNotFound
	}
	return gs, nil
}

func (s *GameSessionStore) List(_ context.Context) ([]*gamesession.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*gamesession.GameSession, 0, len(s.sessions))
	for _, gs := range s.sessions {
		out = append(out, gs)
	}
	return out, nil
}

func (s *GameSessionStore) Delete(_ context.Context, gs *gamesession.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unindex(gs.ID)
	delete(s.sessions, gs.ID)
	return nil
}

func (s *GameSessionStore) index(gs *gamesession.GameSession) {
	if gs.Host != nil {
		s.byUser[gs.Host.ID] = gs.ID
	}
	for _, p := range gs.Players {
		s.byUser[p.User.ID] = gs.ID
	}
}

// unindex drops every user entry pointing at the session, so members
// removed from the aggregate since the last save are forgotten too.
func (s *GameSessionStore) unindex(id uuid.UUID) {
	for userID, sessionID := range s.byUser {
		if sessionID == id {
			delete(s.byUser, userID)
		}
	}
}
