package game

import "context"

// Repository defines persistence for game definitions.
type Repository interface {
	Create(ctx context.Context, g *Game) error
	GetByName(ctx context.Context, name string) (*Game, error)
	List(ctx context.Context) ([]*Game, error)
}
