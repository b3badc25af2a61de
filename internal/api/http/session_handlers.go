package httpapi

import (
	"net/http"
)

type sessionCreateRequest struct {
	GameName   string `json:"gameName"`
	MaxPlayers int    `json:"maxPlayers"`
	Hosted     bool   `json:"hosted"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	var req sessionCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	view, err := s.sessionSvc.Create(r.Context(), u.Username, req.GameName, req.MaxPlayers, req.Hosted)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	descs, err := s.sessionSvc.Descriptions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": descs})
}

func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	view, err := s.sessionSvc.State(r.Context(), u.Username)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) joinSession(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "sessionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid sessionId")
		return
	}
	view, err := s.sessionSvc.Join(r.Context(), u.Username, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) leaveSession(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if err := s.sessionSvc.Leave(r.Context(), u.Username); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if err := s.sessionSvc.Start(r.Context(), u.Username); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

type chooseQuestionRequest struct {
	ThemeIndex    int `json:"themeIndex"`
	QuestionIndex int `json:"questionIndex"`
}

func (s *Server) chooseQuestion(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	var req chooseQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.sessionSvc.ChooseQuestion(r.Context(), u.Username, req.ThemeIndex, req.QuestionIndex); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) allowAnswers(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if err := s.sessionSvc.AllowAnswers(r.Context(), u.Username); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	var req submitAnswerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.sessionSvc.SubmitAnswer(r.Context(), u.Username, req.Answer); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) confirmAnswer(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if err := s.sessionSvc.ConfirmAnswer(r.Context(), u.Username); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) rejectAnswer(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if err := s.sessionSvc.RejectAnswer(r.Context(), u.Username); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if err := s.sessionSvc.Close(r.Context(), u.Username); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}
