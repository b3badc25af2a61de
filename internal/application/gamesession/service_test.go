package gamesession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trivia-hub/trivia-hub/internal/domain/game"
	domainSession "github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
	"github.com/trivia-hub/trivia-hub/internal/domain/gamesession/mocks"
	"github.com/trivia-hub/trivia-hub/internal/domain/notification"
	domainUser "github.com/trivia-hub/trivia-hub/internal/domain/user"
	"github.com/trivia-hub/trivia-hub/internal/infrastructure/memory"
)

type fakeUsers struct {
	byName map[string]*domainUser.User
}

func newFakeUsers(names ...string) *fakeUsers {
	f := &fakeUsers{byName: make(map[string]*domainUser.User)}
	for _, n := range names {
		f.byName[n] = &domainUser.User{
			UserID:   uuid.New(),
			Username: n,
			Nickname: n,
			Status:   domainUser.StatusActive,
		}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *domainUser.User) error { f.byName[u.Username] = u; return nil }
func (f *fakeUsers) Update(_ context.Context, _ *domainUser.User) error { return nil }
func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domainUser.User, error) {
	for _, u := range f.byName {
		if u.UserID == id {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUsers) GetByUsername(_ context.Context, name string) (*domainUser.User, error) {
	return f.byName[name], nil
}

type fakeGames struct {
	games map[string]*game.Game
}

func (f *fakeGames) Create(_ context.Context, g *game.Game) error { f.games[g.Name] = g; return nil }
func (f *fakeGames) GetByName(_ context.Context, name string) (*game.Game, error) {
	g, ok := f.games[name]
	if !ok {
		return nil, game.ErrNotFound
	}
	return g, nil
}
func (f *fakeGames) List(_ context.Context) ([]*game.Game, error) {
	out := make([]*game.Game, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, g)
	}
	return out, nil
}

type armedTimer struct {
	key   uuid.UUID
	delay time.Duration
}

type fakeScheduler struct {
	mu       sync.Mutex
	armed    []armedTimer
	canceled []uuid.UUID
}

func (f *fakeScheduler) Arm(key uuid.UUID, delay time.Duration, _ func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, armedTimer{key: key, delay: delay})
}

func (f *fakeScheduler) Cancel(key uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, key)
}

type sentMessage struct {
	sessionID uuid.UUID
	lobby     bool
	msg       notification.Message
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	inGroup map[string]uuid.UUID
	closed  []uuid.UUID
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{inGroup: make(map[string]uuid.UUID)}
}

func (f *fakeNotifier) NotifyLobby(msg notification.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{lobby: true, msg: msg})
}

func (f *fakeNotifier) NotifySession(sessionID uuid.UUID, msg notification.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{sessionID: sessionID, msg: msg})
}

func (f *fakeNotifier) AddToSession(username string, sessionID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inGroup[username] = sessionID
}

func (f *fakeNotifier) RemoveFromSession(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inGroup, username)
}

func (f *fakeNotifier) CloseSession(sessionID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, sessionID)
}

func (f *fakeNotifier) events(sessionID uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, m := range f.sent {
		if !m.lobby && m.sessionID == sessionID {
			out = append(out, m.msg.Event)
		}
	}
	return out
}

func (f *fakeNotifier) lobbyEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, m := range f.sent {
		if m.lobby {
			out = append(out, m.msg.Event)
		}
	}
	return out
}

type fixture struct {
	svc       *Service
	store     *memory.GameSessionStore
	notifier  *fakeNotifier
	scheduler *fakeScheduler
}

func newFixture(t *testing.T, usernames ...string) *fixture {
	t.Helper()
	store := memory.NewGameSessionStore()
	notifier := newFakeNotifier()
	scheduler := &fakeScheduler{}
	games := &fakeGames{games: map[string]*game.Game{"capitals": testGameDef()}}
	svc := NewService(store, games, newFakeUsers(usernames...), notifier, scheduler,
		10*time.Second, 30*time.Second, zerolog.Nop())
	return &fixture{svc: svc, store: store, notifier: notifier, scheduler: scheduler}
}

func testGameDef() *game.Game {
	return &game.Game{
		Name: "capitals",
		Rounds: []game.Round{
			{Order: 1, Themes: []game.Theme{{Name: "Capitals", Questions: []game.Question{
				{Text: "Capital of France", Answer: "Paris", Value: 100},
			}}}},
		},
		FinalRound: game.Question{Text: "Deepest lake", Answer: "Baikal", Value: 500},
	}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a session and announces it", func(t *testing.T) {
		f := newFixture(t, "alice")
		view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)
		assert.Equal(t, domainSession.StageWaiting, view.Stage)
		assert.Len(t, view.Players, 1)

		assert.Equal(t, []string{"game_session_created"}, f.notifier.lobbyEvents())
		assert.Equal(t, view.SessionID, f.notifier.inGroup["alice"])
	})

	t.Run("a creator cannot create twice", func(t *testing.T) {
		f := newFixture(t, "alice")
		_, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, "alice", "capitals", 2, false)
		assert.ErrorIs(t, err, domainSession.ErrAlreadyCreated)
	})

	t.Run("a player in another session cannot create", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		view, err := f.svc.Create(ctx, "alice", "capitals", 3, false)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, "bob", "capitals", 2, false)
		assert.ErrorIs(t, err, domainSession.ErrAlreadyPlaying)
	})

	t.Run("non-positive max players fails", func(t *testing.T) {
		f := newFixture(t, "alice")
		_, err := f.svc.Create(ctx, "alice", "capitals", 0, false)
		assert.ErrorIs(t, err, domainSession.ErrInvalidMaxPlayers)
	})

	t.Run("unknown game fails", func(t *testing.T) {
		f := newFixture(t, "alice")
		_, err := f.svc.Create(ctx, "alice", "nope", 2, false)
		assert.ErrorIs(t, err, game.ErrNotFound)
	})
}

func TestServiceJoinAndPlay(t *testing.T) {
	ctx := context.Background()

	t.Run("filling the last seat starts the game", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)

		joined, err := f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, domainSession.StageRoundStarted, joined.Stage)
		assert.Contains(t, f.notifier.events(view.SessionID), "round_started")
	})

	t.Run("choosing a question arms the answer timer", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)

		gs, err := f.store.Get(ctx, view.SessionID)
		require.NoError(t, err)
		chooser := gs.CurrentPlayer.User.Username

		require.NoError(t, f.svc.ChooseQuestion(ctx, chooser, 0, 0))
		require.Len(t, f.scheduler.armed, 1)
		assert.Equal(t, view.SessionID, f.scheduler.armed[0].key)
		assert.Equal(t, 10*time.Second, f.scheduler.armed[0].delay)
	})

	t.Run("a correct answer cancels the timer", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)

		gs, err := f.store.Get(ctx, view.SessionID)
		require.NoError(t, err)
		chooser := gs.CurrentPlayer.User.Username
		require.NoError(t, f.svc.ChooseQuestion(ctx, chooser, 0, 0))
		require.NoError(t, f.svc.SubmitAnswer(ctx, chooser, "Paris"))

		assert.Contains(t, f.scheduler.canceled, view.SessionID)
		// The single grid cell was the whole round, so the final round
		// opened with its timer.
		require.Len(t, f.scheduler.armed, 2)
		assert.Equal(t, 30*time.Second, f.scheduler.armed[1].delay)
	})

	t.Run("joining a second session is rejected", func(t *testing.T) {
		f := newFixture(t, "alice", "bob", "carol")
		first, err := f.svc.Create(ctx, "alice", "capitals", 3, false)
		require.NoError(t, err)
		second, err := f.svc.Create(ctx, "bob", "capitals", 3, false)
		require.NoError(t, err)

		_, err = f.svc.Join(ctx, "carol", first.SessionID)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "carol", second.SessionID)
		assert.ErrorIs(t, err, domainSession.ErrAlreadyPlaying)
	})
}

func TestServiceLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("creator abandoning a waiting session deletes it", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		view, err := f.svc.Create(ctx, "alice", "capitals", 3, false)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)

		require.NoError(t, f.svc.Leave(ctx, "alice"))
		_, err = f.store.Get(ctx, view.SessionID)
		assert.ErrorIs(t, err, domainSession.ErrNotFound)
		assert.Contains(t, f.notifier.closed, view.SessionID)
		assert.Contains(t, f.notifier.lobbyEvents(), "game_session_deleted")
	})

	t.Run("last active player leaving deletes a running session", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)

		require.NoError(t, f.svc.Leave(ctx, "bob"))
		_, err = f.store.Get(ctx, view.SessionID)
		require.NoError(t, err)

		require.NoError(t, f.svc.Leave(ctx, "alice"))
		_, err = f.store.Get(ctx, view.SessionID)
		assert.ErrorIs(t, err, domainSession.ErrNotFound)
		assert.Contains(t, f.scheduler.canceled, view.SessionID)
	})

	t.Run("leaving without a session fails", func(t *testing.T) {
		f := newFixture(t, "alice")
		err := f.svc.Leave(ctx, "alice")
		assert.ErrorIs(t, err, domainSession.ErrNotPlayer)
	})
}

func TestServiceTimeouts(t *testing.T) {
	ctx := context.Background()

	t.Run("timeout on a missing session is a no-op", func(t *testing.T) {
		f := newFixture(t)
		assert.NoError(t, f.svc.AnswerTimeout(ctx, uuid.New()))
		assert.NoError(t, f.svc.FinalRoundTimeout(ctx, uuid.New()))
	})

	t.Run("stale timeout on an advanced session is a no-op", func(t *testing.T) {
		f := newFixture(t, "alice")
		view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)
		assert.NoError(t, f.svc.AnswerTimeout(ctx, view.SessionID))
	})

	t.Run("final round timeout ends and deletes a self-service game", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)

		gs, err := f.store.Get(ctx, view.SessionID)
		require.NoError(t, err)
		chooser := gs.CurrentPlayer.User.Username
		require.NoError(t, f.svc.ChooseQuestion(ctx, chooser, 0, 0))
		require.NoError(t, f.svc.SubmitAnswer(ctx, chooser, "Paris"))
		require.Equal(t, domainSession.StageFinalRound, gs.Stage)

		require.NoError(t, f.svc.FinalRoundTimeout(ctx, view.SessionID))
		_, err = f.store.Get(ctx, view.SessionID)
		assert.ErrorIs(t, err, domainSession.ErrNotFound)
		assert.Contains(t, f.notifier.events(view.SessionID), "final_round_timeout")
		assert.Contains(t, f.notifier.closed, view.SessionID)
	})
}

func TestServiceReadsSerializeWithCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	view, err := f.svc.Create(ctx, "alice", "capitals", 2, false)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, "bob", view.SessionID)
	require.NoError(t, err)

	gs, err := f.store.Get(ctx, view.SessionID)
	require.NoError(t, err)
	chooser := gs.CurrentPlayer.User.Username
	require.NoError(t, f.svc.ChooseQuestion(ctx, chooser, 0, 0))

	// Wrong answers keep the question open, so reads overlap with
	// mutating commands for the whole loop.
	const iterations = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			assert.NoError(t, f.svc.SubmitAnswer(ctx, chooser, "London"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			_, err := f.svc.State(ctx, "alice")
			assert.NoError(t, err)
			_, err = f.svc.Descriptions(ctx)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	state, err := f.svc.State(ctx, chooser)
	require.NoError(t, err)
	assert.Equal(t, domainSession.StageAnswering, state.Stage)
}

func TestServiceSaveFailureSuppressesEvents(t *testing.T) {
	ctx := context.Background()
	notifier := newFakeNotifier()
	scheduler := &fakeScheduler{}
	games := &fakeGames{games: map[string]*game.Game{"capitals": testGameDef()}}

	repo := new(mocks.MockRepository)
	repo.On("GetByUser", mock.Anything, mock.Anything).Return(nil, domainSession.ErrNotFound)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("boom"))

	svc := NewService(repo, games, newFakeUsers("alice"), notifier, scheduler,
		10*time.Second, 30*time.Second, zerolog.Nop())

	_, err := svc.Create(ctx, "alice", "capitals", 2, false)
	require.Error(t, err)
	assert.Empty(t, notifier.sent)
	assert.Empty(t, scheduler.armed)
	repo.AssertExpectations(t)
}

func TestServiceHostControls(t *testing.T) {
	ctx := context.Background()

	t.Run("only the host starts a hosted game", func(t *testing.T) {
		f := newFixture(t, "host", "alice", "bob")
		view, err := f.svc.Create(ctx, "host", "capitals", 2, true)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "alice", view.SessionID)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "bob", view.SessionID)
		require.NoError(t, err)

		err = f.svc.Start(ctx, "alice")
		assert.ErrorIs(t, err, domainSession.ErrNotPlayer)

		require.NoError(t, f.svc.Start(ctx, "host"))
		gs, err := f.store.Get(ctx, view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, domainSession.StageRoundStarted, gs.Stage)
	})

	t.Run("host leaving closes the session", func(t *testing.T) {
		f := newFixture(t, "host", "alice", "bob")
		view, err := f.svc.Create(ctx, "host", "capitals", 2, true)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, "alice", view.SessionID)
		require.NoError(t, err)

		require.NoError(t, f.svc.Leave(ctx, "host"))
		_, err = f.store.Get(ctx, view.SessionID)
		assert.ErrorIs(t, err, domainSession.ErrNotFound)
	})
}
