package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
)

// MockRepository is a mock implementation of gamesession.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, gs *gamesession.GameSession) error {
	args := m.Called(ctx, gs)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*gamesession.GameSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gamesession.GameSession), args.Error(1)
}

func (m *MockRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*gamesession.GameSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gamesession.GameSession), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]*gamesession.GameSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*gamesession.GameSession), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, gs *gamesession.GameSession) error {
	args := m.Called(ctx, gs)
	return args.Error(0)
}
