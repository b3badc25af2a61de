package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trivia-hub/trivia-hub/internal/domain/game"
)

// GameRepository implements game.Repository. The definition body is a
// JSONB document; name lookups go through an indexed column.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

type gameDefinition struct {
	Rounds     []game.Round  `json:"rounds"`
	FinalRound game.Question `json:"finalRound"`
}

func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	def, err := json.Marshal(gameDefinition{Rounds: g.Rounds, FinalRound: g.FinalRound})
	if err != nil {
		return fmt.Errorf("marshal game definition: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO games (game_id, name, author, definition, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, g.GameID, g.Name, g.Author, def, g.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return game.ErrAlreadyExists
	}
	return err
}

func (r *GameRepository) GetByName(ctx context.Context, name string) (*game.Game, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, game_id, name, author, definition, created_at
		FROM games WHERE name=$1
	`, name)
	g, err := scanGame(row)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, game.ErrNotFound
	}
	return g, nil
}

func (r *GameRepository) List(ctx context.Context) ([]*game.Game, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, game_id, name, author, definition, created_at
		FROM games ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]*game.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func scanGame(row pgx.Row) (*game.Game, error) {
	var g game.Game
	var def []byte
	var createdAt time.Time
	if err := row.Scan(&g.ID, &g.GameID, &g.Name, &g.Author, &def, &createdAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var body gameDefinition
	if err := json.Unmarshal(def, &body); err != nil {
		return nil, fmt.Errorf("unmarshal game definition: %w", err)
	}
	g.Rounds = body.Rounds
	g.FinalRound = body.FinalRound
	g.CreatedAt = createdAt
	return &g, nil
}
