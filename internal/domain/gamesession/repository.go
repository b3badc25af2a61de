package gamesession

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for live game sessions. Save assigns a
// durable identifier on first insert and preserves all aggregate fields
// verbatim on update. Lookups return ErrNotFound when no session
// matches.
type Repository interface {
	Save(ctx context.Context, gs *GameSession) error
	Get(ctx context.Context, id uuid.UUID) (*GameSession, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*GameSession, error)
	List(ctx context.Context) ([]*GameSession, error)
	Delete(ctx context.Context, gs *GameSession) error
}
