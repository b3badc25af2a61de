package gamesession

import "errors"

// Engine failures. All are raised before any state mutation or event
// emission; a failed operation leaves the aggregate untouched.
var (
	ErrNotFound             = errors.New("game session not found")
	ErrInvalidMaxPlayers    = errors.New("max players must be at least 1")
	ErrTooManyPlayers       = errors.New("too many players")
	ErrNotPlayer            = errors.New("user is not a player of this session")
	ErrNotCurrentPlayer     = errors.New("user is not the current player")
	ErrWrongQuestionRequest = errors.New("invalid or already answered question")
	ErrWrongStage           = errors.New("operation not allowed at this stage")
	ErrAlreadyPlaying       = errors.New("user is already in a game session")
	ErrAlreadyCreated       = errors.New("user has already created a game session")
)
