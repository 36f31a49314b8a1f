package server

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/vanguard/internal/session"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// handleAuthLogin starts a dashboard session. Any non-empty password is
// accepted; the demo has no user store.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if !s.DecodeValid(w, r, &req) {
		return
	}

	sess, token, err := s.app.Sessions.Login(req.Email)
	if err != nil {
		if errors.Is(err, session.ErrInvalidInput) {
			WriteError(w, http.StatusBadRequest, "email is required")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to start session")
		WriteError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	s.advisory.prune(func(id string) bool {
		_, ok := s.app.Sessions.Get(id)
		return ok
	})

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"token":      token,
			"session_id": sess.ID,
			"expires_in": int(s.app.Config.Auth.GetTokenExpiry().Seconds()),
			"user":       sess.User,
		},
	})
}

// handleAuthLogout stops and discards the caller's session.
func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if err := s.app.Sessions.Logout(sess.ID); err != nil {
		WriteSessionError(w, err)
		return
	}
	s.advisory.forget(sess.ID)

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
