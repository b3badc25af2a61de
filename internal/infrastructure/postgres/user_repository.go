package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trivia-hub/trivia-hub/internal/domain/user"
)

// UserRepository implements user.Repository.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users
		(user_id, username, nickname, password_hash, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.UserID, u.Username, u.Nickname, u.PasswordHash, u.Status, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username=$1, nickname=$2, password_hash=$3, status=$4, updated_at=$5
		WHERE user_id=$6
	`, u.Username, u.Nickname, u.PasswordHash, u.Status, u.UpdatedAt, u.UserID)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, username, nickname, password_hash, status, created_at, updated_at
		FROM users WHERE user_id=$1
	`, userID)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, username, nickname, password_hash, status, created_at, updated_at
		FROM users WHERE username=$1
	`, username)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.UserID, &u.Username, &u.Nickname, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
