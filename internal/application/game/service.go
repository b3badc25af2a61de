package game

import (
	"context"

	"github.com/rs/zerolog"

	domain "github.com/trivia-hub/trivia-hub/internal/domain/game"
)

// Service manages the game catalog.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a game catalog service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "game").Logger(),
	}
}

// CreateInput defines a submitted game definition.
type CreateInput struct {
	Name       string
	Rounds     []domain.Round
	FinalRound domain.Question
}

// Create validates and stores a game definition under the author's
// name.
func (s *Service) Create(ctx context.Context, author string, input CreateInput) (*domain.Game, error) {
	g, err := domain.NewGame(input.Name, author, input.Rounds, input.FinalRound)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	s.logger.Info().Str("game", g.Name).Str("author", author).Msg("game created")
	return g, nil
}

// Get returns one definition by name.
func (s *Service) Get(ctx context.Context, name string) (*domain.Game, error) {
	return s.repo.GetByName(ctx, name)
}

// Description is the catalog listing entry. Definitions themselves stay
// server side so answers never leak.
type Description struct {
	Name       string `json:"name"`
	Author     string `json:"author"`
	RoundCount int    `json:"roundCount"`
}

// List returns catalog descriptions of all games.
func (s *Service) List(ctx context.Context) ([]Description, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Description, 0, len(games))
	for _, g := range games {
		out = append(out, Description{Name: g.Name, Author: g.Author, RoundCount: len(g.Rounds)})
	}
	return out, nil
}
