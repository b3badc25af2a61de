package gamesession

import (
	"context"

	domainSession "github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
	"github.com/trivia-hub/trivia-hub/internal/domain/notification"
)

// Client-facing message names. These are the wire contract with the
// frontend and do not track the internal event kinds one to one.
const (
	msgSessionCreated        = "game_session_created"
	msgSessionDeleted        = "game_session_deleted"
	msgPlayerJoined          = "player_joined"
	msgPlayerLeft            = "player_left"
	msgRoundStarted          = "round_started"
	msgCurrentQuestionChosen = "current_question_chosen"
	msgAnswersAllowed        = "answers_allowed"
	msgPlayerAnswering       = "player_answering"
	msgPlayerAnswered        = "player_answered"
	msgQuestionTimeout       = "question_timeout"
	msgFinalRoundStarted     = "final_round_started"
	msgFinalRoundTimeout     = "final_round_timeout"
	msgGameEnded             = "game_ended"
)

type playerPayload struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

type playerAnsweredPayload struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Correct  bool   `json:"correct"`
}

type sessionRefPayload struct {
	SessionID string `json:"sessionId"`
}

type timeoutPayload struct {
	Answer  string                      `json:"answer,omitempty"`
	Results []domainSession.PlayerResult `json:"results,omitempty"`
}

// registerHandlers builds the static event dispatch table. Handlers for
// one kind run in registration order, so timers are cancelled before
// the notification that makes the stage change visible, and session
// groups are torn down only after the farewell message went out.
func (s *Service) registerHandlers() {
	d := s.dispatcher

	d.Register(domainSession.EventSessionCreated, s.addMemberToHub, s.notifyLobbyDescription(msgSessionCreated))
	d.Register(domainSession.EventSessionDeleted, s.cancelTimers, s.notifySessionRef(msgSessionDeleted), s.closeHubSession, s.notifyLobbyRef(msgSessionDeleted))

	d.Register(domainSession.EventPlayerJoined, s.addMemberToHub, s.notifyPlayer(msgPlayerJoined), s.notifyLobbyPlayerChange(msgPlayerJoined))
	d.Register(domainSession.EventPlayerActive, s.addMemberToHub, s.notifyPlayer(msgPlayerJoined))
	d.Register(domainSession.EventPlayerLeft, s.notifyPlayer(msgPlayerLeft), s.notifyLobbyPlayerChange(msgPlayerLeft), s.removeMemberFromHub)
	d.Register(domainSession.EventPlayerInactive, s.notifyPlayer(msgPlayerLeft), s.removeMemberFromHub)

	d.Register(domainSession.EventRoundStarted, s.notifyRoundStarted)
	d.Register(domainSession.EventCurrentQuestionChosen, s.notifyQuestionChosen)

	d.Register(domainSession.EventAnswersAllowed, s.notifyAnswersAllowed, s.armAnswerTimer)
	d.Register(domainSession.EventFinalRoundAnswersAllowed, s.notifyAnswersAllowed, s.armFinalRoundTimer)

	d.Register(domainSession.EventStartAnswerPeriod, s.armAnswerTimer)
	d.Register(domainSession.EventStopAnswerPeriod, s.cancelTimers)
	d.Register(domainSession.EventRestartAnswerPeriod, s.armAnswerTimer)

	d.Register(domainSession.EventPlayerAnswering, s.cancelTimers, s.notifyPlayer(msgPlayerAnswering))
	d.Register(domainSession.EventPlayerCorrectlyAnswered, s.notifyPlayerAnswered(true))
	d.Register(domainSession.EventPlayerIncorrectlyAnswered, s.notifyPlayerAnswered(false))

	d.Register(domainSession.EventAnswerTimeout, s.cancelTimers, s.notifyTimeout(msgQuestionTimeout))
	d.Register(domainSession.EventFinalRoundStarted, s.notifyQuestionChosenAs(msgFinalRoundStarted))
	d.Register(domainSession.EventStartFinalRoundPeriod, s.armFinalRoundTimer)
	d.Register(domainSession.EventFinalRoundTimeout, s.notifyTimeout(msgFinalRoundTimeout))
	d.Register(domainSession.EventGameEnded, s.notifyResults(msgGameEnded))
}

func (s *Service) armAnswerTimer(ctx context.Context, ev domainSession.Event) {
	id := ev.SessionID
	s.scheduler.Arm(id, s.answerWindow, func() {
		if err := s.AnswerTimeout(context.Background(), id); err != nil {
			s.logger.Error().Err(err).Str("session_id", id.String()).Msg("answer timeout failed")
		}
	})
}

func (s *Service) armFinalRoundTimer(ctx context.Context, ev domainSession.Event) {
	id := ev.SessionID
	s.scheduler.Arm(id, s.finalRoundWindow, func() {
		if err := s.FinalRoundTimeout(context.Background(), id); err != nil {
			s.logger.Error().Err(err).Str("session_id", id.String()).Msg("final round timeout failed")
		}
	})
}

func (s *Service) cancelTimers(ctx context.Context, ev domainSession.Event) {
	s.scheduler.Cancel(ev.SessionID)
}

func (s *Service) addMemberToHub(ctx context.Context, ev domainSession.Event) {
	if ev.Player == nil {
		return
	}
	s.notifier.AddToSession(ev.Player.Username, ev.SessionID)
}

func (s *Service) removeMemberFromHub(ctx context.Context, ev domainSession.Event) {
	if ev.Player == nil {
		return
	}
	s.notifier.RemoveFromSession(ev.Player.Username)
}

func (s *Service) closeHubSession(ctx context.Context, ev domainSession.Event) {
	s.notifier.CloseSession(ev.SessionID)
}

func (s *Service) notifyLobbyDescription(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		s.notifier.NotifyLobby(notification.Message{Event: event, Payload: ev.Description})
	}
}

func (s *Service) notifyLobbyRef(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		s.notifier.NotifyLobby(notification.Message{Event: event, Payload: sessionRefPayload{SessionID: ev.SessionID.String()}})
	}
}

func (s *Service) notifySessionRef(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		s.notifier.NotifySession(ev.SessionID, notification.Message{Event: event, Payload: sessionRefPayload{SessionID: ev.SessionID.String()}})
	}
}

// notifyLobbyPlayerChange keeps lobby descriptions current as seats
// fill and empty.
func (s *Service) notifyLobbyPlayerChange(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		payload := struct {
			SessionID string `json:"sessionId"`
			Nickname  string `json:"nickname"`
		}{SessionID: ev.SessionID.String(), Nickname: ev.Player.Nickname}
		s.notifier.NotifyLobby(notification.Message{Event: event, Payload: payload})
	}
}

func (s *Service) notifyPlayer(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		payload := playerPayload{Nickname: ev.Player.Nickname, Score: ev.Player.Score}
		s.notifier.NotifySession(ev.SessionID, notification.Message{Event: event, Payload: payload})
	}
}

func (s *Service) notifyPlayerAnswered(correct bool) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		payload := playerAnsweredPayload{Nickname: ev.Player.Nickname, Score: ev.Player.Score, Correct: correct}
		s.notifier.NotifySession(ev.SessionID, notification.Message{Event: msgPlayerAnswered, Payload: payload})
	}
}

func (s *Service) notifyRoundStarted(ctx context.Context, ev domainSession.Event) {
	s.notifier.NotifySession(ev.SessionID, notification.Message{Event: msgRoundStarted, Payload: ev.Round})
}

func (s *Service) notifyQuestionChosen(ctx context.Context, ev domainSession.Event) {
	s.notifier.NotifySession(ev.SessionID, notification.Message{Event: msgCurrentQuestionChosen, Payload: ev.Question})
}

func (s *Service) notifyQuestionChosenAs(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		s.notifier.NotifySession(ev.SessionID, notification.Message{Event: event, Payload: ev.Question})
	}
}

func (s *Service) notifyAnswersAllowed(ctx context.Context, ev domainSession.Event) {
	s.notifier.NotifySession(ev.SessionID, notification.Message{Event: msgAnswersAllowed, Payload: sessionRefPayload{SessionID: ev.SessionID.String()}})
}

func (s *Service) notifyTimeout(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		payload := timeoutPayload{Results: ev.Results}
		if ev.Answer != nil {
			payload.Answer = ev.Answer.Text
		}
		s.notifier.NotifySession(ev.SessionID, notification.Message{Event: event, Payload: payload})
	}
}

func (s *Service) notifyResults(event string) Handler {
	return func(ctx context.Context, ev domainSession.Event) {
		s.notifier.NotifySession(ev.SessionID, notification.Message{Event: event, Payload: ev.Results})
	}
}
