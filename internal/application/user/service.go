package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/trivia-hub/trivia-hub/internal/domain/user"
)

// Service handles player accounts.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a user service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput defines registration input.
type RegisterInput struct {
	Username string
	Nickname string
	Password string
}

// UpdateInput defines profile update input.
type UpdateInput struct {
	Nickname *string
}

// Register creates a player account. The nickname defaults to the
// username when left blank.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := domain.NormalizeUsername(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password, username); err != nil {
		return nil, err
	}
	nickname := input.Nickname
	if nickname == "" {
		nickname = username
	}
	if err := domain.ValidateNickname(nickname); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("username already taken")
	}

	hash, err := domain.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       uuid.New(),
		Username:     username,
		Nickname:     nickname,
		PasswordHash: hash,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Msg("user registered")
	return u, nil
}

// Update applies profile changes.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user not found: %s", userID)
	}
	if input.Nickname != nil {
		if err := domain.ValidateNickname(*input.Nickname); err != nil {
			return nil, err
		}
		u.Nickname = *input.Nickname
	}
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the account password.
func (s *Service) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user not found: %s", userID)
	}
	if err := domain.ValidatePassword(password, u.Username); err != nil {
		return err
	}
	hash, err := domain.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}

// GetUser returns an account by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// GetByUsername returns an account by normalized username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, domain.NormalizeUsername(username))
}
