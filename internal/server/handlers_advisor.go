package server

import (
	"net/http"

	"github.com/bobmcallan/vanguard/internal/models"
)

type analyzeRequest struct {
	RiskProfile models.RiskProfile `json:"risk_profile" validate:"omitempty,oneof=Conservative Moderate Aggressive"`
}

func (s *Server) rateLimited(w http.ResponseWriter, sessionID string) bool {
	if s.advisory.allow(sessionID) {
		return false
	}
	w.Header().Set("Retry-After", "5")
	WriteErrorWithCode(w, http.StatusTooManyRequests, "Too many advisory requests", "rate_limited")
	return true
}

// handleAdvisorAnalyze runs an AI analysis of the session's portfolio. The
// body is optional; a risk profile in it also becomes the session's
// selection. The response is always an analysis: model failures yield the
// local fallback.
func (s *Server) handleAdvisorAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req analyzeRequest
	if r.ContentLength != 0 {
		if !s.DecodeValid(w, r, &req) {
			return
		}
	}
	if s.rateLimited(w, sess.ID) {
		return
	}
	if req.RiskProfile != "" {
		if err := sess.SetRiskProfile(req.RiskProfile); err != nil {
			WriteSessionError(w, err)
			return
		}
	}

	seq := sess.BeginAnalysis()
	res := s.app.Advisor.AnalyzePortfolio(r.Context(), sess.AnalysisRequest(req.RiskProfile))
	if !sess.CompleteAnalysis(seq, res) {
		s.logger.Debug().Str("session", sess.ID).Uint64("seq", seq).Msg("Superseded analysis discarded")
	}
	WriteJSON(w, http.StatusOK, res)
}

// handlePlannerGenerate builds an investment plan from the planner form,
// linking the current holdings when asked.
func (s *Server) handlePlannerGenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var in models.PlanInput
	if !s.DecodeValid(w, r, &in) {
		return
	}
	in.CurrentPortfolio = nil
	if in.IncludeCurrentPortfolio {
		in.CurrentPortfolio = sess.ValuedHoldings()
	}

	if s.rateLimited(w, sess.ID) {
		return
	}

	seq := sess.BeginPlan()
	res := s.app.Advisor.GeneratePlan(r.Context(), in)
	if !sess.CompletePlan(seq, res) {
		s.logger.Debug().Str("session", sess.ID).Uint64("seq", seq).Msg("Superseded plan discarded")
	}
	WriteJSON(w, http.StatusOK, res)
}
