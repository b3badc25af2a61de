package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRounds() []Round {
	return []Round{
		{Order: 1, Themes: []Theme{{Name: "Capitals", Questions: []Question{
			{Text: "Capital of France", Answer: "Paris", Value: 100},
			{Text: "Capital of Japan", Answer: "Tokyo", Value: 200},
		}}}},
		{Order: 2, Themes: []Theme{{Name: "Rivers", Questions: []Question{
			{Text: "Longest river", Answer: "Nile", Value: 300},
		}}}},
	}
}

func validFinal() Question {
	return Question{Text: "Deepest lake", Answer: "Baikal", Value: 500}
}

func TestNewGame(t *testing.T) {
	g, err := NewGame(" quiz ", "alice", validRounds(), validFinal())
	require.NoError(t, err)
	assert.Equal(t, "quiz", g.Name)
	assert.Equal(t, "alice", g.Author)
	assert.False(t, g.CreatedAt.IsZero())
}

func TestGameValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Game)
	}{
		{name: "empty name", mutate: func(g *Game) { g.Name = "" }},
		{name: "no rounds", mutate: func(g *Game) { g.Rounds = nil }},
		{name: "bad round order", mutate: func(g *Game) { g.Rounds[1].Order = 3 }},
		{name: "empty theme name", mutate: func(g *Game) { g.Rounds[0].Themes[0].Name = " " }},
		{name: "theme without questions", mutate: func(g *Game) { g.Rounds[0].Themes[0].Questions = nil }},
		{name: "question without text", mutate: func(g *Game) { g.Rounds[0].Themes[0].Questions[0].Text = "" }},
		{name: "question without answer", mutate: func(g *Game) { g.Rounds[0].Themes[0].Questions[0].Answer = "" }},
		{name: "non-positive value", mutate: func(g *Game) { g.Rounds[0].Themes[0].Questions[0].Value = 0 }},
		{name: "invalid final round", mutate: func(g *Game) { g.FinalRound.Answer = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Game{Name: "quiz", Rounds: validRounds(), FinalRound: validFinal()}
			tt.mutate(g)
			assert.Error(t, g.Validate())
		})
	}
}

func TestRoundQuestion(t *testing.T) {
	r := validRounds()[0]

	q, ok := r.Question(0, 1)
	require.True(t, ok)
	assert.Equal(t, "Tokyo", q.Answer)

	_, ok = r.Question(1, 0)
	assert.False(t, ok)
	_, ok = r.Question(0, 2)
	assert.False(t, ok)
	_, ok = r.Question(-1, 0)
	assert.False(t, ok)

	assert.Equal(t, 2, r.QuestionCount())
}
