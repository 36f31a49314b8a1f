package server

import (
	"net/http"

	"github.com/bobmcallan/vanguard/internal/models"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, sess.Dashboard())
}

func (s *Server) handleSessionTab(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Tab models.Tab `json:"tab" validate:"required,oneof=overview portfolio planner advisor settings"`
	}
	if !s.DecodeValid(w, r, &req) {
		return
	}
	if err := sess.SetTab(req.Tab); err != nil {
		WriteSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"tab": req.Tab})
}

func (s *Server) handleSessionRiskProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPut {
		var req struct {
			RiskProfile models.RiskProfile `json:"risk_profile" validate:"required,oneof=Conservative Moderate Aggressive"`
		}
		if !s.DecodeValid(w, r, &req) {
			return
		}
		if err := sess.SetRiskProfile(req.RiskProfile); err != nil {
			WriteSessionError(w, err)
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"risk_profile": sess.RiskProfile()})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		WriteJSON(w, http.StatusOK, sess.Settings())
		return
	}

	var settings models.Settings
	if !s.DecodeValid(w, r, &settings) {
		return
	}
	WriteJSON(w, http.StatusOK, sess.UpdateSettings(settings))
}

// handleWS upgrades to a websocket that receives every session update.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sess.Hub().ServeWS(w, r)
}
