package gamesession

import (
	"github.com/google/uuid"

	domainSession "github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
)

// StateView is the full session state as one member sees it. Answers
// never leave the engine through it.
type StateView struct {
	SessionID     uuid.UUID                  `json:"sessionId"`
	Stage         domainSession.Stage        `json:"stage"`
	Hosted        bool                       `json:"hosted"`
	GameName      string                     `json:"gameName"`
	Creator       string                     `json:"creator"`
	Host          string                     `json:"host,omitempty"`
	MaxPlayers    int                        `json:"maxPlayers"`
	Players       []PlayerView               `json:"players"`
	Round         *RoundView                 `json:"round,omitempty"`
	CurrentPlayer string                     `json:"currentPlayer,omitempty"`
	Question      *domainSession.QuestionInfo `json:"question,omitempty"`
}

// PlayerView is one seat in the state view.
type PlayerView struct {
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	IsPlaying bool   `json:"isPlaying"`
}

// RoundView is the grid with per-cell availability.
type RoundView struct {
	Order  int         `json:"order"`
	Themes []ThemeView `json:"themes"`
}

// ThemeView is one grid column.
type ThemeView struct {
	Name      string         `json:"name"`
	Questions []QuestionCell `json:"questions"`
}

// QuestionCell is one grid cell.
type QuestionCell struct {
	Value    int  `json:"value"`
	Answered bool `json:"answered"`
}

// NewStateView snapshots a session for API responses.
func NewStateView(gs *domainSession.GameSession) *StateView {
	view := &StateView{
		SessionID:  gs.ID,
		Stage:      gs.Stage,
		Hosted:     gs.IsHosted(),
		GameName:   gs.Game.Name,
		Creator:    gs.Creator.Nickname,
		MaxPlayers: gs.MaxPlayers,
		Players:    make([]PlayerView, 0, len(gs.Players)),
	}
	if gs.Host != nil {
		view.Host = gs.Host.Nickname
	}
	for _, p := range gs.Players {
		view.Players = append(view.Players, PlayerView{Nickname: p.User.Nickname, Score: p.Score, IsPlaying: p.IsPlaying})
	}
	if gs.CurrentPlayer != nil {
		view.CurrentPlayer = gs.CurrentPlayer.User.Nickname
	}
	if gs.CurrentRound != nil {
		round := &RoundView{Order: gs.CurrentRound.Order}
		for ti, t := range gs.CurrentRound.Themes {
			theme := ThemeView{Name: t.Name, Questions: make([]QuestionCell, 0, len(t.Questions))}
			for qi, q := range t.Questions {
				theme.Questions = append(theme.Questions, QuestionCell{Value: q.Value, Answered: gs.IsAnswered(ti, qi)})
			}
			round.Themes = append(round.Themes, theme)
		}
		view.Round = round
	}
	if gs.CurrentQuestion != nil {
		info := gs.CurrentQuestion.Info()
		view.Question = &info
	}
	return view
}
