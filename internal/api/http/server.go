package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appAuth "github.com/trivia-hub/trivia-hub/internal/application/auth"
	appGame "github.com/trivia-hub/trivia-hub/internal/application/game"
	appSession "github.com/trivia-hub/trivia-hub/internal/application/gamesession"
	appUser "github.com/trivia-hub/trivia-hub/internal/application/user"
	domainGame "github.com/trivia-hub/trivia-hub/internal/domain/game"
	domainSession "github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
	"github.com/trivia-hub/trivia-hub/internal/infrastructure/ws"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	gameSvc             *appGame.Service
	sessionSvc          *appSession.Service
	wsHub               *ws.Hub
	sessionCookieName   string
	sessionCookieSecure bool
}

func NewServer(
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	gameSvc *appGame.Service,
	sessionSvc *appSession.Service,
	wsHub *ws.Hub,
	sessionCookieName string,
	sessionCookieSecure bool,
) *Server {
	return &Server{
		authSvc:             authSvc,
		userSvc:             userSvc,
		gameSvc:             gameSvc,
		sessionSvc:          sessionSvc,
		wsHub:               wsHub,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
				r.Patch("/me", s.updateMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/games", func(r chi.Router) {
				r.Post("/", s.createGame)
				r.Get("/", s.listGames)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.createSession)
				r.Get("/", s.listSessions)
				r.Get("/state", s.sessionState)
				r.Post("/{sessionId}/join", s.joinSession)
				r.Post("/leave", s.leaveSession)
				r.Post("/start", s.startSession)
				r.Post("/choose", s.chooseQuestion)
				r.Post("/allow-answers", s.allowAnswers)
				r.Post("/answer", s.submitAnswer)
				r.Post("/confirm", s.confirmAnswer)
				r.Post("/reject", s.rejectAnswer)
				r.Post("/close", s.closeSession)
			})

			r.Get("/ws", s.wsEndpoint)
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// respondDomainError maps engine sentinels onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainSession.ErrNotFound), errors.Is(err, domainGame.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domainSession.ErrInvalidMaxPlayers):
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	case errors.Is(err, domainSession.ErrNotPlayer), errors.Is(err, domainSession.ErrNotCurrentPlayer):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, domainSession.ErrTooManyPlayers),
		errors.Is(err, domainSession.ErrWrongStage),
		errors.Is(err, domainSession.ErrWrongQuestionRequest),
		errors.Is(err, domainSession.ErrAlreadyPlaying),
		errors.Is(err, domainSession.ErrAlreadyCreated),
		errors.Is(err, domainGame.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
