package server

import (
	"net/http"

	"github.com/bobmcallan/vanguard/internal/models"
	"github.com/bobmcallan/vanguard/internal/services/market"
)

type holdingRequest struct {
	Symbol string          `json:"symbol" validate:"required"`
	Type   models.Category `json:"type" validate:"required,oneof=crypto stock cash"`
	Amount float64         `json:"amount" validate:"gt=0,lte=1000000000000"`
}

type sortRequest struct {
	Key string `json:"key" validate:"required"`
}

// handlePortfolio returns the holdings table, filtered by ?q= and sorted by
// the table's sort state, with totals and allocation.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, sess.Portfolio(r.URL.Query().Get("q")))
}

func (s *Server) handlePortfolioSort(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req sortRequest
	if !s.DecodeValid(w, r, &req) {
		return
	}
	sess.ToggleHoldingSort(req.Key)
	WriteJSON(w, http.StatusOK, sess.Portfolio(r.URL.Query().Get("q")))
}

func (s *Server) handleHoldingAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req holdingRequest
	if !s.DecodeValid(w, r, &req) {
		return
	}
	h, err := sess.AddHolding(req.Symbol, req.Type, req.Amount)
	if err != nil {
		WriteSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, h)
}

func (s *Server) handleHoldingDelete(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveHolding(id); err != nil {
		WriteSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHoldingSparkline(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	trend, err := sess.HoldingTrend(id)
	if err != nil {
		WriteSessionError(w, err)
		return
	}
	s.writeSparkline(w, trend)
}

func (s *Server) writeSparkline(w http.ResponseWriter, trend []float64) {
	png, err := market.RenderSparkline(trend)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to render sparkline")
		WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	WritePNG(w, png)
}

// handlePortfolioBrokerage runs the simulated brokerage import. The request
// blocks for the configured connect delay; disconnecting aborts the import.
func (s *Server) handlePortfolioBrokerage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	imported, err := sess.ConnectBrokerage(r.Context())
	if err != nil {
		WriteSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"imported":  imported,
		"portfolio": sess.Portfolio(""),
	})
}

func (s *Server) parseTimeframe(w http.ResponseWriter, r *http.Request) (models.Timeframe, bool) {
	tf, ok := models.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if !ok {
		WriteError(w, http.StatusBadRequest, "timeframe must be one of 1D, 1W, 1M, 1Y")
		return "", false
	}
	return tf, true
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	tf, ok := s.parseTimeframe(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timeframe": tf,
		"points":    sess.History(tf),
	})
}

func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	tf, ok := s.parseTimeframe(w, r)
	if !ok {
		return
	}

	png, err := market.RenderHistoryChart(sess.History(tf))
	if err != nil {
		s.logger.Warn().Err(err).Str("timeframe", string(tf)).Msg("Failed to render history chart")
		WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	WritePNG(w, png)
}
