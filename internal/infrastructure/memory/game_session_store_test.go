package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trivia-hub/trivia-hub/internal/domain/game"
	"github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
)

func storeGame() *game.Game {
	return &game.Game{
		Name: "test",
		Rounds: []game.Round{
			{Order: 1, Themes: []game.Theme{{Name: "T", Questions: []game.Question{
				{Text: "q", Answer: "a", Value: 100},
			}}}},
		},
		FinalRound: game.Question{Text: "fq", Answer: "fa", Value: 200},
	}
}

func storeUser(name string) gamesession.UserRef {
	return gamesession.UserRef{ID: uuid.New(), Username: name, Nickname: name}
}

func TestStoreSaveAssignsID(t *testing.T) {
	ctx := context.Background()
	store := NewGameSessionStore()
	gs := gamesession.New(storeUser("alice"), storeGame(), 3, false)

	require.NoError(t, store.Save(ctx, gs))
	assert.NotEqual(t, uuid.Nil, gs.ID)

	got, err := store.Get(ctx, gs.ID)
	require.NoError(t, err)
	assert.Same(t, gs, got)
}

func TestStoreGetByUser(t *testing.T) {
	ctx := context.Background()
	store := NewGameSessionStore()
	alice := storeUser("alice")
	host := storeUser("host")

	selfServe := gamesession.New(alice, storeGame(), 3, false)
	require.NoError(t, store.Save(ctx, selfServe))
	hosted := gamesession.New(host, storeGame(), 3, true)
	require.NoError(t, store.Save(ctx, hosted))

	got, err := store.GetByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Same(t, selfServe, got)

	// The host is indexed even without a player seat.
	got, err = store.GetByUser(ctx, host.ID)
	require.NoError(t, err)
	assert.Same(t, hosted, got)

	_, err = store.GetByUser(ctx, uuid.New())
	assert.ErrorIs(t, err, gamesession.ErrNotFound)
}

func TestStoreSaveReindexes(t *testing.T) {
	ctx := context.Background()
	store := NewGameSessionStore()
	alice := storeUser("alice")
	bob := storeUser("bob")

	gs := gamesession.New(alice, storeGame(), 3, false)
	_, err := gs.Join(bob)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, gs))

	// Bob leaves while waiting; after the next save his index entry
	// must be gone or he could never join another session.
	_, err = gs.Leave(bob)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, gs))

	_, err = store.GetByUser(ctx, bob.ID)
	assert.ErrorIs(t, err, gamesession.ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewGameSessionStore()
	alice := storeUser("alice")
	gs := gamesession.New(alice, storeGame(), 3, false)
	require.NoError(t, store.Save(ctx, gs))

	require.NoError(t, store.Delete(ctx, gs))
	_, err := store.Get(ctx, gs.ID)
	assert.ErrorIs(t, err, gamesession.ErrNotFound)
	_, err = store.GetByUser(ctx, alice.ID)
	assert.ErrorIs(t, err, gamesession.ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
