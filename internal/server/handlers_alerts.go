package server

import (
	"net/http"

	"github.com/bobmcallan/vanguard/internal/models"
)

type alertRequest struct {
	Symbol      string                `json:"symbol" validate:"required"`
	TargetPrice float64               `json:"target_price" validate:"gt=0,lte=1000000000000"`
	Condition   models.AlertCondition `json:"condition" validate:"required,oneof=above below"`
}

// handleAlerts lists alerts (GET) or creates one (POST). A new alert is
// evaluated straight away, so it may come back already triggered.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": sess.Alerts()})
		return
	}

	var req alertRequest
	if !s.DecodeValid(w, r, &req) {
		return
	}
	a, err := sess.AddAlert(req.Symbol, req.TargetPrice, req.Condition)
	if err != nil {
		WriteSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, a)
}

func (s *Server) handleAlertItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveAlert(PathParam(r, "/api/alerts/", "")); err != nil {
		WriteSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleNotifications lists notifications newest first (GET) or clears them (DELETE).
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodDelete {
		sess.ClearNotifications()
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": sess.Notifications()})
}

func (s *Server) handleNotificationItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.DismissNotification(PathParam(r, "/api/notifications/", "")); err != nil {
		WriteSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
