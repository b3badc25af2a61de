package gamesession

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	domainSession "github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
)

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	var calls []string

	d.Register(domainSession.EventPlayerJoined, func(_ context.Context, _ domainSession.Event) {
		calls = append(calls, "first")
	})
	d.Register(domainSession.EventPlayerJoined, func(_ context.Context, _ domainSession.Event) {
		calls = append(calls, "second")
	})
	d.Register(domainSession.EventPlayerLeft, func(_ context.Context, _ domainSession.Event) {
		calls = append(calls, "left")
	})

	d.Dispatch(context.Background(), []domainSession.Event{
		{Kind: domainSession.EventPlayerJoined},
		{Kind: domainSession.EventGameEnded}, // no handlers, ignored
		{Kind: domainSession.EventPlayerLeft},
	})

	assert.Equal(t, []string{"first", "second", "left"}, calls)
}

func TestKeyedMutexReleases(t *testing.T) {
	km := newKeyedMutex()
	key := uuid.New()

	unlock := km.Lock(key)
	assert.Len(t, km.entries, 1)
	unlock()
	assert.Empty(t, km.entries)
}
