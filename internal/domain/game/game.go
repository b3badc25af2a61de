package game

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("game not found")
	ErrAlreadyExists = errors.New("game already exists")
)

// Question is a single cell of the grid: prompt text, the stored
// answer and the value at stake.
type Question struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Value  int    `json:"value"`
}

// Theme is a named column of questions within a round.
type Theme struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Round is an ordered set of themes. Order is 1-based.
type Round struct {
	Order  int     `json:"order"`
	Themes []Theme `json:"themes"`
}

// QuestionCount returns the total number of questions in the round.
func (r *Round) QuestionCount() int {
	n := 0
	for _, t := range r.Themes {
		n += len(t.Questions)
	}
	return n
}

// Question resolves grid coordinates to a question within the round.
func (r *Round) Question(themeIndex, questionIndex int) (*Question, bool) {
	if themeIndex < 0 || themeIndex >= len(r.Themes) {
		return nil, false
	}
	theme := &r.Themes[themeIndex]
	if questionIndex < 0 || questionIndex >= len(theme.Questions) {
		return nil, false
	}
	return &theme.Questions[questionIndex], true
}

// Game is an immutable game definition: ordered rounds of themed
// question grids plus one final-round question. The engine never
// mutates it.
type Game struct {
	ID         int64     `json:"id"`
	GameID     uuid.UUID `json:"gameId"`
	Name       string    `json:"name"`
	Author     string    `json:"author"`
	Rounds     []Round   `json:"rounds"`
	FinalRound Question  `json:"finalRound"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewGame builds a validated game definition.
func NewGame(name, author string, rounds []Round, finalRound Question) (*Game, error) {
	g := &Game{
		GameID:     uuid.New(),
		Name:       strings.TrimSpace(name),
		Author:     author,
		Rounds:     rounds,
		FinalRound: finalRound,
		CreatedAt:  time.Now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks structural invariants of the definition.
func (g *Game) Validate() error {
	if g.Name == "" {
		return errors.New("game name is required")
	}
	if len(g.Rounds) == 0 {
		return errors.New("game must have at least one round")
	}
	for i, r := range g.Rounds {
		if r.Order != i+1 {
			return errors.New("round order must be sequential starting at 1")
		}
		if len(r.Themes) == 0 {
			return errors.New("round must have at least one theme")
		}
		for _, t := range r.Themes {
			if strings.TrimSpace(t.Name) == "" {
				return errors.New("theme name is required")
			}
			if len(t.Questions) == 0 {
				return errors.New("theme must have at least one question")
			}
			for _, q := range t.Questions {
				if err := validateQuestion(q); err != nil {
					return err
				}
			}
		}
	}
	return validateQuestion(g.FinalRound)
}

func validateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("question text is required")
	}
	if strings.TrimSpace(q.Answer) == "" {
		return errors.New("question answer is required")
	}
	if q.Value <= 0 {
		return errors.New("question value must be positive")
	}
	return nil
}
