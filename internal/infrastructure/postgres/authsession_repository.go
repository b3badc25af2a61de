package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trivia-hub/trivia-hub/internal/domain/authsession"
)

// AuthSessionRepository implements authsession.Repository.
type AuthSessionRepository struct {
	pool *pgxpool.Pool
}

func NewAuthSessionRepository(pool *pgxpool.Pool) *AuthSessionRepository {
	return &AuthSessionRepository{pool: pool}
}

func (r *AuthSessionRepository) Create(ctx context.Context, s *authsession.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_sessions
		(session_id, token_hash, user_id, created_at, expires_at, last_seen_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, s.SessionID, s.TokenHash, s.UserID, s.CreatedAt, s.ExpiresAt, s.LastSeenAt)
	return err
}

func (r *AuthSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authsession.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, session_id, token_hash, user_id, created_at, expires_at, last_seen_at
		FROM auth_sessions WHERE token_hash=$1
	`, tokenHash)
	return scanAuthSession(row)
}

func (r *AuthSessionRepository) DeleteByID(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE session_id=$1`, sessionID)
	return err
}

func (r *AuthSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE token_hash=$1`, tokenHash)
	return err
}

func (r *AuthSessionRepository) UpdateLastSeen(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE auth_sessions SET last_seen_at=$1 WHERE session_id=$2`, time.Now().UTC(), sessionID)
	return err
}

func (r *AuthSessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return int(res.RowsAffected()), nil
}

func scanAuthSession(row pgx.Row) (*authsession.Session, error) {
	var s authsession.Session
	var lastSeen *time.Time
	if err := row.Scan(&s.ID, &s.SessionID, &s.TokenHash, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &lastSeen); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.LastSeenAt = lastSeen
	return &s, nil
}
