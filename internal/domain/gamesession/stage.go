package gamesession

// Stage is the discrete phase of a session's lifecycle.
type Stage string

const (
	StageWaiting             Stage = "WAITING"
	StageRoundStarted        Stage = "ROUND_STARTED"
	StageChoosingQuestion    Stage = "CHOOSING_QUESTION"
	StageReadingQuestion     Stage = "READING_QUESTION"
	StageAnswering           Stage = "ANSWERING"
	StagePlayerAnswering     Stage = "PLAYER_ANSWERING"
	StageFinalRound          Stage = "FINAL_ROUND"
	StageFinalRoundAnswering Stage = "FINAL_ROUND_ANSWERING"
	StageFinalRoundEnded     Stage = "FINAL_ROUND_ENDED"
	StageEndGame             Stage = "END_GAME"
)

// Mode selects which of the two state machines a session runs. A hosted
// session has a non-playing moderator who reveals questions and judges
// answers; a self-service session auto-validates answers and lets
// timers force progress.
type Mode string

const (
	ModeSelfService Mode = "SELF_SERVICE"
	ModeHosted      Mode = "HOSTED"
)

var selfServiceStages = map[Stage]struct{}{
	StageWaiting:          {},
	StageRoundStarted:     {},
	StageChoosingQuestion: {},
	StageAnswering:        {},
	StageFinalRound:       {},
	StageEndGame:          {},
}

var hostedStages = map[Stage]struct{}{
	StageWaiting:             {},
	StageRoundStarted:        {},
	StageChoosingQuestion:    {},
	StageReadingQuestion:     {},
	StageAnswering:           {},
	StagePlayerAnswering:     {},
	StageFinalRound:          {},
	StageFinalRoundAnswering: {},
	StageFinalRoundEnded:     {},
	StageEndGame:             {},
}

// Allows reports whether a stage is representable in the mode. The
// moderated stages only exist in hosted sessions.
func (m Mode) Allows(s Stage) bool {
	if m == ModeHosted {
		_, ok := hostedStages[s]
		return ok
	}
	_, ok := selfServiceStages[s]
	return ok
}
