package server

import (
	"net/http"

	"github.com/bobmcallan/vanguard/internal/models"
)

type watchRequest struct {
	Symbol string          `json:"symbol" validate:"required"`
	Type   models.Category `json:"type" validate:"required,oneof=crypto stock"`
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, sess.Watchlist())
}

func (s *Server) handleWatchlistSort(w http.ResponseWriter, r *http.Request) {
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
	sess.ToggleWatchSort(req.Key)
	WriteJSON(w, http.StatusOK, sess.Watchlist())
}

func (s *Server) handleWatchAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req watchRequest
	if !s.DecodeValid(w, r, &req) {
		return
	}
	asset, err := sess.AddWatch(req.Symbol, req.Type)
	if err != nil {
		WriteSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleWatchDelete(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveWatch(id); err != nil {
		WriteSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatchSparkline(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	trend, err := sess.WatchTrend(id)
	if err != nil {
		WriteSessionError(w, err)
		return
	}
	s.writeSparkline(w, trend)
}

// --- Market handlers ---

func (s *Server) handleMarketIndices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"indices": sess.Indices()})
}

func (s *Server) handleMarketNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	sentiment := q.Get("sentiment")
	switch sentiment {
	case "", "all", string(models.SentimentPositive), string(models.SentimentNegative), string(models.SentimentNeutral):
	default:
		WriteError(w, http.StatusBadRequest, "sentiment must be all, positive, negative or neutral")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"news": sess.News(q.Get("q"), sentiment)})
}
