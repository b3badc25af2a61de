package httpapi

import (
	"net/http"
)

// wsEndpoint upgrades the connection and registers it with the hub. A
// user already in a session is routed into its group by the engine's
// join events, not here.
func (s *Server) wsEndpoint(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if u == nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth")
		return
	}
	if err := s.wsHub.Serve(w, r, u.Username); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	}
}
