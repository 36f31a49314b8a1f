package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/session"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/logout", s.handleAuthLogout)

	// Session
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/session/tab", s.handleSessionTab)
	mux.HandleFunc("/api/session/risk-profile", s.handleSessionRiskProfile)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/ws", s.handleWS)

	// Portfolio
	mux.HandleFunc("/api/portfolio/", s.routePortfolio)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/history/chart.png", s.handleHistoryChart)
	mux.HandleFunc("/api/history", s.handleHistory)

	// Watch list
	mux.HandleFunc("/api/watchlist/", s.routeWatchlist)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)

	// Market
	mux.HandleFunc("/api/market/indices", s.handleMarketIndices)
	mux.HandleFunc("/api/market/news", s.handleMarketNews)

	// Alerts and notifications
	mux.HandleFunc("/api/alerts/", s.handleAlertItem)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/notifications/", s.handleNotificationItem)
	mux.HandleFunc("/api/notifications", s.handleNotifications)

	// Advisor
	mux.HandleFunc("/api/advisor/analyze", s.handleAdvisorAnalyze)
	mux.HandleFunc("/api/planner/generate", s.handlePlannerGenerate)
}

// routePortfolio dispatches /api/portfolio/* to the appropriate handler.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolio/")

	switch {
	case path == "":
		s.handlePortfolio(w, r)
	case path == "sort":
		s.handlePortfolioSort(w, r)
	case path == "brokerage":
		s.handlePortfolioBrokerage(w, r)
	case path == "holdings":
		s.handleHoldingAdd(w, r)
	case strings.HasPrefix(path, "holdings/"):
		s.handleHoldingDelete(w, r, strings.TrimPrefix(path, "holdings/"))
	case strings.HasSuffix(path, "/sparkline.png"):
		s.handleHoldingSparkline(w, r, PathParam(r, "/api/portfolio/", "/sparkline.png"))
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeWatchlist dispatches /api/watchlist/* to the appropriate handler.
func (s *Server) routeWatchlist(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")

	switch {
	case path == "":
		s.handleWatchlist(w, r)
	case path == "sort":
		s.handleWatchlistSort(w, r)
	case path == "items":
		s.handleWatchAdd(w, r)
	case strings.HasPrefix(path, "items/"):
		s.handleWatchDelete(w, r, strings.TrimPrefix(path, "items/"))
	case strings.HasSuffix(path, "/sparkline.png"):
		s.handleWatchSparkline(w, r, PathParam(r, "/api/watchlist/", "/sparkline.png"))
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// requireSession returns the caller's live session or writes a 401.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := common.ResolveSessionID(r.Context())
	if id == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	sess, ok := s.app.Sessions.Get(id)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		WriteError(w, http.StatusUnauthorized, "Session expired")
		return nil, false
	}
	return sess, true
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.app.Sessions.Count(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}
