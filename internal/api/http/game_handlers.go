package httpapi

import (
	"errors"
	"net/http"

	appGame "github.com/trivia-hub/trivia-hub/internal/application/game"
	domainGame "github.com/trivia-hub/trivia-hub/internal/domain/game"
)

type gameCreateRequest struct {
	Name       string              `json:"name"`
	Rounds     []domainGame.Round  `json:"rounds"`
	FinalRound domainGame.Question `json:"finalRound"`
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	var req gameCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	g, err := s.gameSvc.Create(r.Context(), u.Username, appGame.CreateInput{
		Name:       req.Name,
		Rounds:     req.Rounds,
		FinalRound: req.FinalRound,
	})
	if err != nil {
		if errors.Is(err, domainGame.ErrAlreadyExists) {
			respondDomainError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"name": g.Name, "author": g.Author})
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.gameSvc.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}
