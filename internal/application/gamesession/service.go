package gamesession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trivia-hub/trivia-hub/internal/domain/game"
	domainSession "github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
	"github.com/trivia-hub/trivia-hub/internal/domain/notification"
	domainUser "github.com/trivia-hub/trivia-hub/internal/domain/user"
)

// Scheduler arms and cancels per-session timers. Arm replaces any timer
// already armed for the key; Cancel is idempotent.
type Scheduler interface {
	Arm(key uuid.UUID, delay time.Duration, fn func())
	Cancel(key uuid.UUID)
}

// Service orchestrates game sessions: it resolves identities, invokes
// one state-machine operation at a time per session, persists the new
// state, and only then dispatches the emitted events to the timer and
// notification handlers.
type Service struct {
	sessions  domainSession.Repository
	games     game.Repository
	users     domainUser.Repository
	notifier  notification.Notifier
	scheduler Scheduler

	dispatcher       *Dispatcher
	locks            *keyedMutex
	answerWindow     time.Duration
	finalRoundWindow time.Duration
	logger           zerolog.Logger
}

// NewService creates the game-session service and builds its dispatch
// table.
func NewService(
	sessions domainSession.Repository,
	games game.Repository,
	users domainUser.Repository,
	notifier notification.Notifier,
	scheduler Scheduler,
	answerWindow time.Duration,
	finalRoundWindow time.Duration,
	logger zerolog.Logger,
) *Service {
	s := &Service{
		sessions:         sessions,
		games:            games,
		users:            users,
		notifier:         notifier,
		scheduler:        scheduler,
		dispatcher:       NewDispatcher(),
		locks:            newKeyedMutex(),
		answerWindow:     answerWindow,
		finalRoundWindow: finalRoundWindow,
		logger:           logger.With().Str("service", "game_session").Logger(),
	}
	s.registerHandlers()
	return s
}

// Create starts a new session for the given game. The creator of a
// hosted session moderates it; otherwise they join as the first player.
func (s *Service) Create(ctx context.Context, username, gameName string, maxPlayers int, hosted bool) (*StateView, error) {
	ref, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if maxPlayers < 1 {
		return nil, domainSession.ErrInvalidMaxPlayers
	}

	if existing, err := s.sessions.GetByUser(ctx, ref.ID); err == nil {
		if existing.Creator.Equal(ref) || existing.IsHost(ref) {
			return nil, domainSession.ErrAlreadyCreated
		}
		return nil, domainSession.ErrAlreadyPlaying
	} else if !errors.Is(err, domainSession.ErrNotFound) {
		return nil, err
	}

	g, err := s.games.GetByName(ctx, gameName)
	if err != nil {
		return nil, err
	}

	gs := domainSession.New(ref, g, maxPlayers, hosted)
	if err := s.sessions.Save(ctx, gs); err != nil {
		return nil, err
	}
	// The id is public once saved; snapshot under the session lock.
	unlock := s.locks.Lock(gs.ID)
	defer unlock()

	created := domainSession.Event{
		Kind:      domainSession.EventSessionCreated,
		SessionID: gs.ID,
		Creator:   gs.Creator.Nickname,
		Player:    &domainSession.PlayerInfo{Username: ref.Username, Nickname: ref.Nickname},
	}
	desc := gs.Description()
	created.Description = &desc

	s.logger.Info().Str("session_id", gs.ID.String()).Str("game", g.Name).Bool("hosted", hosted).Msg("session created")
	s.dispatcher.Dispatch(ctx, []domainSession.Event{created})
	return NewStateView(gs), nil
}

// Descriptions lists all sessions for the lobby.
func (s *Service) Descriptions(ctx context.Context) ([]domainSession.Description, error) {
	all, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domainSession.Description, 0, len(all))
	for _, gs := range all {
		// The store hands out live aggregates; read each under its lock.
		unlock := s.locks.Lock(gs.ID)
		out = append(out, gs.Description())
		unlock()
	}
	return out, nil
}

// State returns the caller's current game state.
func (s *Service) State(ctx context.Context, username string) (*StateView, error) {
	ref, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	found, err := s.sessions.GetByUser(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(found.ID)
	defer unlock()
	gs, err := s.sessions.Get(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	return NewStateView(gs), nil
}

// Join adds the caller to a session, or reactivates their seat after a
// mid-game disconnect.
func (s *Service) Join(ctx context.Context, username string, sessionID uuid.UUID) (*StateView, error) {
	ref, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing, err := s.sessions.GetByUser(ctx, ref.ID); err == nil && existing.ID != sessionID {
		return nil, domainSession.ErrAlreadyPlaying
	} else if err != nil && !errors.Is(err, domainSession.ErrNotFound) {
		return nil, err
	}

	var view *StateView
	err = s.withSession(ctx, sessionID, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		events, err := gs.Join(ref)
		if err != nil {
			return nil, err
		}
		view = NewStateView(gs)
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Leave removes the caller from their session. Empty self-service
// sessions, and waiting sessions abandoned by their creator, are
// deleted; a hosted session survives players leaving, and its host
// leaving closes it.
func (s *Service) Leave(ctx context.Context, username string) error {
	ref, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}
	found, err := s.sessions.GetByUser(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			return domainSession.ErrNotPlayer
		}
		return err
	}

	unlock := s.locks.Lock(found.ID)
	defer unlock()
	gs, err := s.sessions.Get(ctx, found.ID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			return domainSession.ErrNotPlayer
		}
		return err
	}

	if gs.IsHost(ref) {
		return s.deleteSession(ctx, gs, nil)
	}

	events, err := gs.Leave(ref)
	if err != nil {
		return err
	}

	creatorAbandoned := gs.Stage == domainSession.StageWaiting && gs.Creator.Equal(ref)
	if !gs.IsHosted() && (creatorAbandoned || gs.IsAllPlayersLeft()) {
		return s.deleteSession(ctx, gs, events)
	}

	if err := s.sessions.Save(ctx, gs); err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events)
	return nil
}

// Start begins a hosted game; only the host may call it.
func (s *Service) Start(ctx context.Context, username string) error {
	return s.withHostSession(ctx, username, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		return gs.StartGame()
	})
}

// ChooseQuestion opens a grid cell on behalf of the current player.
func (s *Service) ChooseQuestion(ctx context.Context, username string, themeIndex, questionIndex int) error {
	return s.withPlayerSession(ctx, username, func(gs *domainSession.GameSession, ref domainSession.UserRef) ([]domainSession.Event, error) {
		return gs.ChooseQuestion(ref, themeIndex, questionIndex)
	})
}

// AllowAnswers opens the answer window; only the host may call it.
func (s *Service) AllowAnswers(ctx context.Context, username string) error {
	return s.withHostSession(ctx, username, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		return gs.AllowAnswers()
	})
}

// SubmitAnswer records the caller's answer to the open question.
func (s *Service) SubmitAnswer(ctx context.Context, username, text string) error {
	return s.withPlayerSession(ctx, username, func(gs *domainSession.GameSession, ref domainSession.UserRef) ([]domainSession.Event, error) {
		return gs.SubmitAnswer(ref, text)
	})
}

// ConfirmAnswer accepts the judged answer; only the host may call it.
func (s *Service) ConfirmAnswer(ctx context.Context, username string) error {
	return s.withHostSession(ctx, username, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		return gs.ConfirmAnswer()
	})
}

// RejectAnswer declines the judged answer; only the host may call it.
func (s *Service) RejectAnswer(ctx context.Context, username string) error {
	return s.withHostSession(ctx, username, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		return gs.RejectAnswer()
	})
}

// Close deletes the caller's session. Hosted sessions are retained at
// END_GAME for review, so closing is the host's explicit act; the
// creator may also close a session that never started.
func (s *Service) Close(ctx context.Context, username string) error {
	ref, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}
	found, err := s.sessions.GetByUser(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			return domainSession.ErrNotPlayer
		}
		return err
	}

	unlock := s.locks.Lock(found.ID)
	defer unlock()
	gs, err := s.sessions.Get(ctx, found.ID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			return domainSession.ErrNotPlayer
		}
		return err
	}
	if !gs.IsHost(ref) && !gs.Creator.Equal(ref) {
		return domainSession.ErrNotPlayer
	}
	return s.deleteSession(ctx, gs, nil)
}

// AnswerTimeout is the answer-window timer entry point. Expiry against
// a deleted or already-advanced session is a benign no-op.
func (s *Service) AnswerTimeout(ctx context.Context, sessionID uuid.UUID) error {
	return s.timeout(ctx, sessionID, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		return gs.AnswerTimeout()
	})
}

// FinalRoundTimeout is the final-window timer entry point. When a
// self-service game ends here, the session is deleted; hosted sessions
// stay for judging and review.
func (s *Service) FinalRoundTimeout(ctx context.Context, sessionID uuid.UUID) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	gs, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			s.logger.Debug().Str("session_id", sessionID.String()).Msg("final round timeout on missing session")
			return nil
		}
		return err
	}
	events, err := gs.FinalRoundTimeout()
	if err != nil {
		if errors.Is(err, domainSession.ErrWrongStage) {
			s.logger.Debug().Str("session_id", sessionID.String()).Msg("final round timeout on stale session")
			return nil
		}
		return err
	}

	if !gs.IsHosted() {
		// Game over; nothing left to review without a host.
		return s.deleteSession(ctx, gs, events)
	}
	if err := s.sessions.Save(ctx, gs); err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events)
	return nil
}

func (s *Service) timeout(ctx context.Context, sessionID uuid.UUID, op func(*domainSession.GameSession) ([]domainSession.Event, error)) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	gs, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			s.logger.Debug().Str("session_id", sessionID.String()).Msg("timeout on missing session")
			return nil
		}
		return err
	}
	events, err := op(gs)
	if err != nil {
		if errors.Is(err, domainSession.ErrWrongStage) {
			s.logger.Debug().Str("session_id", sessionID.String()).Msg("timeout on stale session")
			return nil
		}
		return err
	}
	if err := s.sessions.Save(ctx, gs); err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events)
	return nil
}

// withSession serializes an operation against one session id and runs
// the persist-then-dispatch sequence.
func (s *Service) withSession(ctx context.Context, sessionID uuid.UUID, op func(*domainSession.GameSession) ([]domainSession.Event, error)) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	gs, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	events, err := op(gs)
	if err != nil {
		return err
	}
	if err := s.sessions.Save(ctx, gs); err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events)
	return nil
}

func (s *Service) withPlayerSession(ctx context.Context, username string, op func(*domainSession.GameSession, domainSession.UserRef) ([]domainSession.Event, error)) error {
	ref, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}
	found, err := s.sessions.GetByUser(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			return domainSession.ErrNotPlayer
		}
		return err
	}
	return s.withSession(ctx, found.ID, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		return op(gs, ref)
	})
}

func (s *Service) withHostSession(ctx context.Context, username string, op func(*domainSession.GameSession) ([]domainSession.Event, error)) error {
	ref, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}
	found, err := s.sessions.GetByUser(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, domainSession.ErrNotFound) {
			return domainSession.ErrNotPlayer
		}
		return err
	}
	return s.withSession(ctx, found.ID, func(gs *domainSession.GameSession) ([]domainSession.Event, error) {
		if !gs.IsHost(ref) {
			return nil, domainSession.ErrNotPlayer
		}
		return op(gs)
	})
}

// deleteSession removes the session and dispatches its trailing events
// plus SessionDeleted, in that order, only after the delete is durable.
func (s *Service) deleteSession(ctx context.Context, gs *domainSession.GameSession, events []domainSession.Event) error {
	if err := s.sessions.Delete(ctx, gs); err != nil {
		return err
	}
	deleted := domainSession.Event{
		Kind:      domainSession.EventSessionDeleted,
		SessionID: gs.ID,
		Creator:   gs.Creator.Nickname,
	}
	s.logger.Info().Str("session_id", gs.ID.String()).Msg("session deleted")
	s.dispatcher.Dispatch(ctx, append(events, deleted))
	return nil
}

func (s *Service) resolveUser(ctx context.Context, username string) (domainSession.UserRef, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return domainSession.UserRef{}, err
	}
	if u == nil {
		return domainSession.UserRef{}, fmt.Errorf("user not found: %s", username)
	}
	return domainSession.UserRef{ID: u.UserID, Username: u.Username, Nickname: u.Nickname}, nil
}
