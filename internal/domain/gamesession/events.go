package gamesession

import "github.com/google/uuid"

// EventKind enumerates every domain event the engine can emit.
type EventKind string

const (
	EventSessionCreated           EventKind = "SESSION_CREATED"
	EventSessionDeleted           EventKind = "SESSION_DELETED"
	EventPlayerJoined             EventKind = "PLAYER_JOINED"
	EventPlayerActive             EventKind = "PLAYER_ACTIVE"
	EventPlayerLeft               EventKind = "PLAYER_LEFT"
	EventPlayerInactive           EventKind = "PLAYER_INACTIVE"
	EventRoundStarted             EventKind = "ROUND_STARTED"
	EventCurrentQuestionChosen    EventKind = "CURRENT_QUESTION_CHOSEN"
	EventAnswersAllowed           EventKind = "ANSWERS_ALLOWED"
	EventFinalRoundAnswersAllowed EventKind = "FINAL_ROUND_ANSWERS_ALLOWED"
	EventStartAnswerPeriod        EventKind = "START_ANSWER_PERIOD"
	EventStopAnswerPeriod         EventKind = "STOP_ANSWER_PERIOD"
	EventRestartAnswerPeriod      EventKind = "RESTART_ANSWER_PERIOD"
	EventPlayerAnswering          EventKind = "PLAYER_ANSWERING"
	EventPlayerCorrectlyAnswered  EventKind = "PLAYER_CORRECTLY_ANSWERED"
	EventPlayerIncorrectlyAnswered EventKind = "PLAYER_INCORRECTLY_ANSWERED"
	EventAnswerTimeout            EventKind = "ANSWER_TIMEOUT"
	EventFinalRoundStarted        EventKind = "FINAL_ROUND_STARTED"
	EventStartFinalRoundPeriod    EventKind = "START_FINAL_ROUND_PERIOD"
	EventFinalRoundTimeout        EventKind = "FINAL_ROUND_TIMEOUT"
	EventGameEnded                EventKind = "GAME_ENDED"
)

// PlayerInfo is the event-facing view of a player.
type PlayerInfo struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// QuestionInfo describes the currently open question without revealing
// its answer.
type QuestionInfo struct {
	ThemeIndex    int    `json:"themeIndex"`
	QuestionIndex int    `json:"questionIndex"`
	Text          string `json:"text"`
	Value         int    `json:"value"`
	Final         bool   `json:"final"`
}

// AnswerReveal carries the stored answer once a question is closed.
type AnswerReveal struct {
	Text string `json:"text"`
}

// ThemeInfo is one grid column in a round-started payload.
type ThemeInfo struct {
	Name   string `json:"name"`
	Values []int  `json:"values"`
}

// RoundInfo is the grid snapshot sent when a round starts.
type RoundInfo struct {
	Order         int         `json:"order"`
	Themes        []ThemeInfo `json:"themes"`
	CurrentPlayer string      `json:"currentPlayer"`
}

// PlayerResult is one player's final-round outcome.
type PlayerResult struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Answer   string `json:"answer"`
	Correct  *bool  `json:"correct,omitempty"`
}

// Description is the lobby-facing summary of a session.
type Description struct {
	SessionID   uuid.UUID `json:"sessionId"`
	Creator     string    `json:"creator"`
	GameName    string    `json:"gameName"`
	MaxPlayers  int       `json:"maxPlayers"`
	PlayerCount int       `json:"playerCount"`
	Hosted      bool      `json:"hosted"`
	Stage       Stage     `json:"stage"`
}

// Event is an immutable record appended by a mutating operation. Kind
// tags which payload fields are set; payloads carry only the data
// downstream handlers need, so consumers never re-derive state.
type Event struct {
	Kind      EventKind
	SessionID uuid.UUID

	Creator     string
	Player      *PlayerInfo
	Round       *RoundInfo
	Question    *QuestionInfo
	Answer      *AnswerReveal
	Results     []PlayerResult
	Description *Description
}

func (gs *GameSession) event(kind EventKind) Event {
	return Event{Kind: kind, SessionID: gs.ID, Creator: gs.Creator.Nickname}
}

func (gs *GameSession) playerEvent(kind EventKind, p *Player) Event {
	ev := gs.event(kind)
	info := p.Info()
	ev.Player = &info
	return ev
}
