package gamesession

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/trivia-hub/trivia-hub/internal/domain/game"
)

// UserRef is the engine's opaque view of an identity. Equality is by ID.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Nickname string    `json:"nickname"`
}

// Equal reports whether two references name the same user.
func (u UserRef) Equal(other UserRef) bool {
	return u.ID == other.ID
}

// Answer is a player's transient answer to the open question. Both
// fields are tri-state: unset until captured, unset again when a new
// question opens.
type Answer struct {
	Text      *string `json:"text,omitempty"`
	IsCorrect *bool   `json:"isCorrect,omitempty"`
}

// Player is a session participant. Players are never removed once the
// game has started, only deactivated, so scoring history survives.
type Player struct {
	User      UserRef `json:"user"`
	Score     int     `json:"score"`
	IsPlaying bool    `json:"isPlaying"`
	Answer    Answer  `json:"answer"`
}

func newPlayer(u UserRef) *Player {
	return &Player{User: u, IsPlaying: true}
}

// Info returns the event-facing view of the player.
func (p *Player) Info() PlayerInfo {
	return PlayerInfo{Username: p.User.Username, Nickname: p.User.Nickname, Score: p.Score}
}

// CurrentQuestion references the open question. Final-round questions
// carry no grid coordinates.
type CurrentQuestion struct {
	Question      *game.Question `json:"question"`
	ThemeIndex    int            `json:"themeIndex"`
	QuestionIndex int            `json:"questionIndex"`
	Final         bool           `json:"final"`
}

// Info returns the event-facing view of the question, answer withheld.
func (q *CurrentQuestion) Info() QuestionInfo {
	return QuestionInfo{
		ThemeIndex:    q.ThemeIndex,
		QuestionIndex: q.QuestionIndex,
		Text:          q.Question.Text,
		Value:         q.Question.Value,
		Final:         q.Final,
	}
}

type gridKey struct {
	Theme    int
	Question int
}

// GameSession is the aggregate for one running game. All mutating
// operations validate actor and stage first, then mutate, then return
// the ordered events the mutation produced. A failed call returns the
// aggregate untouched with no events.
type GameSession struct {
	ID         uuid.UUID
	Creator    UserRef
	Host       *UserRef
	Game       *game.Game
	MaxPlayers int
	Stage      Stage
	Players    []*Player

	CurrentRound    *game.Round
	CurrentPlayer   *Player
	CurrentQuestion *CurrentQuestion

	answered  map[gridKey]struct{}
	CreatedAt time.Time
}

// New creates a session in the WAITING stage. The creator of a hosted
// session becomes its host and is not counted as a player; the creator
// of a self-service session joins as the first player.
func New(creator UserRef, g *game.Game, maxPlayers int, hosted bool) *GameSession {
	gs := &GameSession{
		Creator:    creator,
		Game:       g,
		MaxPlayers: maxPlayers,
		Stage:      StageWaiting,
		answered:   make(map[gridKey]struct{}),
		CreatedAt:  time.Now().UTC(),
	}
	if hosted {
		host := creator
		gs.Host = &host
	} else {
		gs.Players = append(gs.Players, newPlayer(creator))
	}
	return gs
}

// IsHosted reports whether the session has a moderator.
func (gs *GameSession) IsHosted() bool {
	return gs.Host != nil
}

// Mode returns which state machine the session runs.
func (gs *GameSession) Mode() Mode {
	if gs.IsHosted() {
		return ModeHosted
	}
	return ModeSelfService
}

// IsHost reports whether the user is the session's moderator.
func (gs *GameSession) IsHost(u UserRef) bool {
	return gs.Host != nil && gs.Host.Equal(u)
}

// IsMember reports whether the user is a player or the host.
func (gs *GameSession) IsMember(u UserRef) bool {
	return gs.IsHost(u) || gs.player(u) != nil
}

// Join adds a user as a player, or reactivates them if they left
// mid-game. In self-service mode filling the last seat starts the game.
func (gs *GameSession) Join(u UserRef) ([]Event, error) {
	// The host moderates; they never occupy a player seat.
	if gs.IsHost(u) {
		return nil, ErrAlreadyPlaying
	}

	var events []Event

	if p := gs.player(u); p != nil {
		if p.IsPlaying {
			return nil, ErrAlreadyPlaying
		}
		p.IsPlaying = true
		events = append(events, gs.playerEvent(EventPlayerActive, p))
	} else {
		if len(gs.Players)+1 > gs.MaxPlayers {
			return nil, ErrTooManyPlayers
		}
		p = newPlayer(u)
		gs.Players = append(gs.Players, p)
		events = append(events, gs.playerEvent(EventPlayerJoined, p))
	}

	if !gs.IsHosted() && gs.Stage == StageWaiting && len(gs.Players) == gs.MaxPlayers {
		started, err := gs.StartGame()
		if err != nil {
			return nil, err
		}
		events = append(events, started...)
	}
	return events, nil
}

// Leave removes a player while waiting, or deactivates them once the
// game is running so their score is retained.
func (gs *GameSession) Leave(u UserRef) ([]Event, error) {
	p := gs.player(u)
	if p == nil {
		return nil, ErrNotPlayer
	}
	if gs.Stage == StageWaiting {
		for i, other := range gs.Players {
			if other == p {
				gs.Players = append(gs.Players[:i], gs.Players[i+1:]...)
				break
			}
		}
		return []Event{gs.playerEvent(EventPlayerLeft, p)}, nil
	}
	p.IsPlaying = false
	return []Event{gs.playerEvent(EventPlayerInactive, p)}, nil
}

// StartGame opens the first round and picks a random starting player.
// Hosted sessions start on explicit host command; self-service sessions
// start automatically when the last seat fills.
func (gs *GameSession) StartGame() ([]Event, error) {
	if gs.Stage != StageWaiting || len(gs.Players) == 0 {
		return nil, ErrWrongStage
	}
	gs.CurrentRound = &gs.Game.Rounds[0]
	gs.CurrentPlayer = gs.Players[rand.IntN(len(gs.Players))]
	gs.Stage = StageRoundStarted
	return []Event{gs.roundStartedEvent()}, nil
}

// ChooseQuestion lets the current player open an unanswered grid cell.
func (gs *GameSession) ChooseQuestion(u UserRef, themeIndex, questionIndex int) ([]Event, error) {
	if gs.Stage != StageRoundStarted && gs.Stage != StageChoosingQuestion {
		return nil, ErrWrongStage
	}
	p := gs.player(u)
	if p == nil {
		return nil, ErrNotPlayer
	}
	if p != gs.CurrentPlayer {
		return nil, ErrNotCurrentPlayer
	}
	q, ok := gs.CurrentRound.Question(themeIndex, questionIndex)
	if !ok {
		return nil, ErrWrongQuestionRequest
	}
	if _, done := gs.answered[gridKey{themeIndex, questionIndex}]; done {
		return nil, ErrWrongQuestionRequest
	}

	gs.CurrentQuestion = &CurrentQuestion{Question: q, ThemeIndex: themeIndex, QuestionIndex: questionIndex}

	ev := gs.event(EventCurrentQuestionChosen)
	info := gs.CurrentQuestion.Info()
	ev.Question = &info
	events := []Event{ev}

	if gs.IsHosted() {
		// Host gates the reveal; answers stay blocked.
		gs.Stage = StageReadingQuestion
	} else {
		gs.Stage = StageAnswering
		events = append(events, gs.event(EventStartAnswerPeriod))
	}
	return events, nil
}

// AllowAnswers is the hosted-mode reveal gate: it opens the answer
// window for a regular question or for the final round.
func (gs *GameSession) AllowAnswers() ([]Event, error) {
	if !gs.IsHosted() {
		return nil, ErrWrongStage
	}
	switch gs.Stage {
	case StageReadingQuestion:
		gs.Stage = StageAnswering
		return []Event{gs.event(EventAnswersAllowed)}, nil
	case StageFinalRound:
		gs.Stage = StageFinalRoundAnswering
		return []Event{gs.event(EventFinalRoundAnswersAllowed)}, nil
	default:
		return nil, ErrWrongStage
	}
}

// SubmitAnswer handles a player's answer. In self-service mode the text
// is compared case-sensitively against the stored answer; in hosted
// mode the raw text is routed to the host for judgment. During the
// final round the text is only captured; scoring happens at resolution.
func (gs *GameSession) SubmitAnswer(u UserRef, text string) ([]Event, error) {
	p := gs.player(u)
	if p == nil {
		return nil, ErrNotPlayer
	}

	switch gs.Stage {
	case StageAnswering:
		if gs.IsHosted() {
			p.Answer = Answer{Text: &text}
			gs.CurrentPlayer = p
			gs.Stage = StagePlayerAnswering
			return []Event{gs.playerEvent(EventPlayerAnswering, p)}, nil
		}
		if text == gs.CurrentQuestion.Question.Answer {
			return gs.scoreCorrectAnswer(p, text), nil
		}
		return gs.scoreIncorrectAnswer(p, text), nil

	case StageFinalRound:
		if gs.IsHosted() {
			return nil, ErrWrongStage
		}
		p.Answer = Answer{Text: &text}
		return nil, nil

	case StageFinalRoundAnswering:
		p.Answer = Answer{Text: &text}
		return nil, nil

	default:
		return nil, ErrWrongStage
	}
}

// ConfirmAnswer is the host's verdict that the judged answer is
// correct: for a regular question it scores like a correct self-service
// answer; at the end of the final round it awards the final value and
// moves judgment along.
func (gs *GameSession) ConfirmAnswer() ([]Event, error) {
	if !gs.IsHosted() {
		return nil, ErrWrongStage
	}
	switch gs.Stage {
	case StagePlayerAnswering:
		p := gs.CurrentPlayer
		text := ""
		if p.Answer.Text != nil {
			text = *p.Answer.Text
		}
		return gs.scoreCorrectAnswer(p, text), nil
	case StageFinalRoundEnded:
		return gs.judgeFinalAnswer(true), nil
	default:
		return nil, ErrWrongStage
	}
}

// RejectAnswer is the host's verdict that the judged answer is wrong.
// A rejected regular answer deducts the value and reopens the question.
func (gs *GameSession) RejectAnswer() ([]Event, error) {
	if !gs.IsHosted() {
		return nil, ErrWrongStage
	}
	switch gs.Stage {
	case StagePlayerAnswering:
		p := gs.CurrentPlayer
		text := ""
		if p.Answer.Text != nil {
			text = *p.Answer.Text
		}
		gs.Stage = StageAnswering
		events := gs.scoreIncorrectAnswer(p, text)
		return events, nil
	case StageFinalRoundEnded:
		return gs.judgeFinalAnswer(false), nil
	default:
		return nil, ErrWrongStage
	}
}

// AnswerTimeout closes the open question without further scoring. The
// question counts as answered regardless of who, if anyone, answered.
func (gs *GameSession) AnswerTimeout() ([]Event, error) {
	if gs.Stage != StageAnswering || gs.CurrentQuestion == nil {
		return nil, ErrWrongStage
	}
	q := gs.CurrentQuestion
	gs.answered[gridKey{q.ThemeIndex, q.QuestionIndex}] = struct{}{}

	ev := gs.event(EventAnswerTimeout)
	ev.Answer = &AnswerReveal{Text: q.Question.Answer}
	events := []Event{ev}

	gs.CurrentQuestion = nil
	if gs.roundExhausted() {
		events = append(events, gs.advanceRound()...)
	} else {
		gs.clearPlayerAnswers()
		gs.Stage = StageChoosingQuestion
	}
	return events, nil
}

// FinalRoundTimeout resolves the final round. Self-service sessions are
// scored immediately; hosted sessions enter judgment, starting with the
// highest-scoring player who answered.
func (gs *GameSession) FinalRoundTimeout() ([]Event, error) {
	if gs.IsHosted() {
		if gs.Stage != StageFinalRoundAnswering {
			return nil, ErrWrongStage
		}
		gs.Stage = StageFinalRoundEnded

		var events []Event
		if next := gs.nextFinalJudgment(); next != nil {
			gs.CurrentPlayer = next
			events = append(events, gs.playerEvent(EventPlayerAnswering, next))
			events = append(events, gs.finalRoundTimeoutEvent())
			return events, nil
		}
		// Nobody answered: every player takes the miss.
		gs.scoreMissingFinalAnswers()
		events = append(events, gs.finalRoundTimeoutEvent())
		events = append(events, gs.endGame()...)
		return events, nil
	}

	if gs.Stage != StageFinalRound {
		return nil, ErrWrongStage
	}
	gs.checkPlayersFinalAnswers()
	gs.Stage = StageEndGame
	gs.CurrentQuestion = nil
	gs.CurrentPlayer = nil
	return []Event{gs.finalRoundTimeoutEvent()}, nil
}

// Description returns the lobby-facing summary of the session.
func (gs *GameSession) Description() Description {
	return Description{
		SessionID:   gs.ID,
		Creator:     gs.Creator.Nickname,
		GameName:    gs.Game.Name,
		MaxPlayers:  gs.MaxPlayers,
		PlayerCount: len(gs.Players),
		Hosted:      gs.IsHosted(),
		Stage:       gs.Stage,
	}
}

// IsAllPlayersLeft reports whether nobody is left to play: an empty
// lobby while waiting, or no active player once the game has started.
func (gs *GameSession) IsAllPlayersLeft() bool {
	if gs.Stage == StageWaiting {
		return len(gs.Players) == 0
	}
	for _, p := range gs.Players {
		if p.IsPlaying {
			return false
		}
	}
	return true
}

// AnsweredCount returns how many questions of the current round are
// resolved.
func (gs *GameSession) AnsweredCount() int {
	return len(gs.answered)
}

// IsAnswered reports whether a grid cell is already resolved.
func (gs *GameSession) IsAnswered(themeIndex, questionIndex int) bool {
	_, ok := gs.answered[gridKey{themeIndex, questionIndex}]
	return ok
}

func (gs *GameSession) scoreCorrectAnswer(p *Player, text string) []Event {
	q := gs.CurrentQuestion
	correct := true
	p.Answer = Answer{Text: &text, IsCorrect: &correct}
	p.Score += q.Question.Value
	gs.answered[gridKey{q.ThemeIndex, q.QuestionIndex}] = struct{}{}

	events := []Event{
		gs.playerEvent(EventPlayerCorrectlyAnswered, p),
		gs.event(EventStopAnswerPeriod),
	}
	if gs.roundExhausted() {
		return append(events, gs.advanceRound()...)
	}
	gs.clearPlayerAnswers()
	gs.CurrentQuestion = nil
	gs.CurrentPlayer = p
	gs.Stage = StageChoosingQuestion
	return events
}

func (gs *GameSession) scoreIncorrectAnswer(p *Player, text string) []Event {
	correct := false
	p.Answer = Answer{Text: &text, IsCorrect: &correct}
	p.Score -= gs.CurrentQuestion.Question.Value
	return []Event{
		gs.playerEvent(EventPlayerIncorrectlyAnswered, p),
		gs.event(EventRestartAnswerPeriod),
	}
}

// advanceRound is the shared round-advance transition: either the next
// round starts with the score leader choosing, or the final round opens.
func (gs *GameSession) advanceRound() []Event {
	gs.answered = make(map[gridKey]struct{})
	gs.clearPlayerAnswers()
	gs.CurrentQuestion = nil

	if gs.CurrentRound.Order < len(gs.Game.Rounds) {
		gs.CurrentRound = &gs.Game.Rounds[gs.CurrentRound.Order]
		gs.CurrentPlayer = gs.scoreLeader()
		gs.Stage = StageRoundStarted
		return []Event{gs.roundStartedEvent()}
	}

	gs.Stage = StageFinalRound
	gs.CurrentRound = nil
	gs.CurrentPlayer = nil
	gs.CurrentQuestion = &CurrentQuestion{Question: &gs.Game.FinalRound, Final: true}

	ev := gs.event(EventFinalRoundStarted)
	ev.Question = &QuestionInfo{Text: gs.Game.FinalRound.Text, Value: gs.Game.FinalRound.Value, Final: true}
	events := []Event{ev}
	if !gs.IsHosted() {
		events = append(events, gs.event(EventStartFinalRoundPeriod))
	}
	return events
}

// checkPlayersFinalAnswers scores every player's captured final answer.
// A missing answer is a definite miss.
func (gs *GameSession) checkPlayersFinalAnswers() {
	value := gs.Game.FinalRound.Value
	stored := gs.Game.FinalRound.Answer
	for _, p := range gs.Players {
		correct := p.Answer.Text != nil && *p.Answer.Text == stored
		if correct {
			p.Score += value
		} else {
			p.Score -= value
		}
		if p.Answer.Text == nil {
			empty := ""
			p.Answer.Text = &empty
		}
		c := correct
		p.Answer.IsCorrect = &c
	}
}

func (gs *GameSession) judgeFinalAnswer(correct bool) []Event {
	p := gs.CurrentPlayer
	value := gs.Game.FinalRound.Value
	kind := EventPlayerIncorrectlyAnswered
	if correct {
		p.Score += value
		kind = EventPlayerCorrectlyAnswered
	} else {
		p.Score -= value
	}
	c := correct
	p.Answer.IsCorrect = &c

	events := []Event{gs.playerEvent(kind, p)}

	if next := gs.nextFinalJudgment(); next != nil {
		gs.CurrentPlayer = next
		return append(events, gs.playerEvent(EventPlayerAnswering, next))
	}
	gs.scoreMissingFinalAnswers()
	return append(events, gs.endGame()...)
}

// nextFinalJudgment picks the highest-scoring player whose final answer
// is captured but not yet judged.
func (gs *GameSession) nextFinalJudgment() *Player {
	var next *Player
	for _, p := range gs.Players {
		if p.Answer.Text == nil || p.Answer.IsCorrect != nil {
			continue
		}
		if next == nil || p.Score > next.Score {
			next = p
		}
	}
	return next
}

// scoreMissingFinalAnswers deducts the final value from players who
// never answered.
func (gs *GameSession) scoreMissingFinalAnswers() {
	value := gs.Game.FinalRound.Value
	for _, p := range gs.Players {
		if p.Answer.Text != nil {
			continue
		}
		p.Score -= value
		empty := ""
		miss := false
		p.Answer = Answer{Text: &empty, IsCorrect: &miss}
	}
}

func (gs *GameSession) endGame() []Event {
	gs.Stage = StageEndGame
	gs.CurrentPlayer = nil
	gs.CurrentQuestion = nil
	ev := gs.event(EventGameEnded)
	ev.Results = gs.finalResults()
	return []Event{ev}
}

func (gs *GameSession) finalRoundTimeoutEvent() Event {
	ev := gs.event(EventFinalRoundTimeout)
	ev.Results = gs.finalResults()
	ev.Answer = &AnswerReveal{Text: gs.Game.FinalRound.Answer}
	return ev
}

func (gs *GameSession) finalResults() []PlayerResult {
	results := make([]PlayerResult, 0, len(gs.Players))
	for _, p := range gs.Players {
		res := PlayerResult{Nickname: p.User.Nickname, Score: p.Score, Correct: p.Answer.IsCorrect}
		if p.Answer.Text != nil {
			res.Answer = *p.Answer.Text
		}
		results = append(results, res)
	}
	return results
}

func (gs *GameSession) roundStartedEvent() Event {
	themes := make([]ThemeInfo, 0, len(gs.CurrentRound.Themes))
	for _, t := range gs.CurrentRound.Themes {
		values := make([]int, 0, len(t.Questions))
		for _, q := range t.Questions {
			values = append(values, q.Value)
		}
		themes = append(themes, ThemeInfo{Name: t.Name, Values: values})
	}
	ev := gs.event(EventRoundStarted)
	ev.Round = &RoundInfo{
		Order:         gs.CurrentRound.Order,
		Themes:        themes,
		CurrentPlayer: gs.CurrentPlayer.User.Nickname,
	}
	return ev
}

func (gs *GameSession) roundExhausted() bool {
	return len(gs.answered) == gs.CurrentRound.QuestionCount()
}

func (gs *GameSession) scoreLeader() *Player {
	leader := gs.Players[0]
	for _, p := range gs.Players[1:] {
		if p.Score > leader.Score {
			leader = p
		}
	}
	return leader
}

func (gs *GameSession) clearPlayerAnswers() {
	for _, p := range gs.Players {
		p.Answer = Answer{}
	}
}

func (gs *GameSession) player(u UserRef) *Player {
	for _, p := range gs.Players {
		if p.User.Equal(u) {
			return p
		}
	}
	return nil
}
