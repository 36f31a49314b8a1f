package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vanguard/internal/app"
	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/models"
	"github.com/bobmcallan/vanguard/internal/session"
)

func newTestServer(t *testing.T, tweak ...func(*common.Config)) (*Server, *app.App) {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Simulation.TickInterval = "1h"
	cfg.Simulation.BrokerageDelay = "10ms"
	cfg.Simulation.Seed = 3
	cfg.Auth.JWTSecret = "server-test-secret"
	cfg.Session.AdvisorRateLimit = 1000
	cfg.Session.AdvisorBurst = 1000
	for _, fn := range tweak {
		fn(cfg)
	}

	a := app.New(cfg, common.NewSilentLogger())
	t.Cleanup(a.Close)
	return NewServer(a), a
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func loginToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := doRequest(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[struct {
		Status string `json:"status"`
		Data   struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		} `json:"data"`
	}](t, rr)
	require.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "ada", resp.Data.User.Name)
	return resp.Data.Token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))

	rr = doRequest(t, h, http.MethodPost, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestLogin_Validation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing password", map[string]string{"email": "ada@example.com"}},
		{"bad email", map[string]string{"email": "ada", "password": "x"}},
		{"empty", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	rr := doRequest(t, h, http.MethodPost, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodGet, "/api/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))

	rr = doRequest(t, h, http.MethodGet, "/api/dashboard", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	d := decodeBody[session.Dashboard](t, rr)
	assert.Equal(t, models.TabOverview, d.Tab)
	assert.Equal(t, models.RiskModerate, d.RiskProfile)
	assert.Len(t, d.Portfolio.Holdings, 4)
	assert.InDelta(t, 68865.0, d.Portfolio.Total, 1e-6)
	assert.Len(t, d.Watchlist.Items, 2)
	assert.Len(t, d.Alerts, 2)
	assert.Len(t, d.News, 4)
}

func TestLogout(t *testing.T) {
	srv, a := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, a.Sessions.Count())

	rr = doRequest(t, h, http.MethodGet, "/api/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHoldings_AddSortDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/portfolio/holdings", token, map[string]interface{}{
		"symbol": " doge ", "type": "crypto", "amount": 1000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	added := decodeBody[models.Holding](t, rr)
	assert.Equal(t, "DOGE", added.Symbol)
	assert.Len(t, added.Trend, models.TrendLength)

	rr = doRequest(t, h, http.MethodGet, "/api/portfolio?q=doge", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeBody[session.PortfolioView](t, rr)
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, added.ID, view.Holdings[0].ID)

	rr = doRequest(t, h, http.MethodPost, "/api/portfolio/sort", token, map[string]string{"key": "value"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doRequest(t, h, http.MethodPost, "/api/portfolio/sort", token, map[string]string{"key": "value"})
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeBody[session.PortfolioView](t, rr)
	assert.Equal(t, "desc", string(view.Sort.Direction))
	for i := 1; i < len(view.Holdings); i++ {
		assert.GreaterOrEqual(t, view.Holdings[i-1].Value, view.Holdings[i].Value)
	}

	rr = doRequest(t, h, http.MethodDelete, "/api/portfolio/holdings/"+added.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = doRequest(t, h, http.MethodDelete, "/api/portfolio/holdings/"+added.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHoldings_InvalidInput(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	bodies := []map[string]interface{}{
		{"symbol": "", "type": "crypto", "amount": 1},
		{"symbol": "   ", "type": "crypto", "amount": 1},
		{"symbol": "BTC", "type": "bond", "amount": 1},
		{"symbol": "BTC", "type": "crypto", "amount": 0},
	}
	for _, b := range bodies {
		rr := doRequest(t, h, http.MethodPost, "/api/portfolio/holdings", token, b)
		assert.Equal(t, http.StatusBadRequest, rr.Code, b)
	}

	rr := doRequest(t, h, http.MethodGet, "/api/portfolio", token, nil)
	view := decodeBody[session.PortfolioView](t, rr)
	assert.Len(t, view.Holdings, 4)
}

func TestHoldings_OversizedAmountKeepsDashboardReadable(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/portfolio/holdings", token, map[string]interface{}{
		"symbol": "HUGE", "type": "stock", "amount": 1e308,
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Amount")

	rr = doRequest(t, h, http.MethodPost, "/api/alerts", token, map[string]interface{}{
		"symbol": "BTC", "target_price": 1e308, "condition": "below",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/api/portfolio/holdings", token, map[string]interface{}{
		"symbol": "BIG", "type": "stock", "amount": models.MaxAmount,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	for _, path := range []string{"/api/portfolio", "/api/dashboard"} {
		rr = doRequest(t, h, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.NotEmpty(t, rr.Body.String(), path)
	}
	d := decodeBody[session.Dashboard](t, rr)
	assert.Len(t, d.Portfolio.Holdings, 5)
	assert.Greater(t, d.Portfolio.Total, 68865.0)
}

func TestWatchlist(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/watchlist/items", token, map[string]string{"symbol": "usd", "type": "cash"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/api/watchlist/items", token, map[string]string{"symbol": "ada", "type": "crypto"})
	require.Equal(t, http.StatusCreated, rr.Code)
	asset := decodeBody[models.WatchedAsset](t, rr)

	rr = doRequest(t, h, http.MethodPost, "/api/watchlist/sort", token, map[string]string{"key": "symbol"})
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeBody[session.WatchlistView](t, rr)
	require.Len(t, view.Items, 3)
	assert.Equal(t, "ADA", view.Items[0].Symbol)

	rr = doRequest(t, h, http.MethodGet, "/api/watchlist/"+asset.ID+"/sparkline.png", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	rr = doRequest(t, h, http.MethodDelete, "/api/watchlist/items/"+asset.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/watchlist/"+asset.ID+"/sparkline.png", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMarketEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodGet, "/api/market/indices", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	indices := decodeBody[map[string][]models.MarketIndex](t, rr)
	assert.NotEmpty(t, indices["indices"])

	rr = doRequest(t, h, http.MethodGet, "/api/market/news?sentiment=positive", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	news := decodeBody[map[string][]models.NewsItem](t, rr)
	require.NotEmpty(t, news["news"])
	for _, n := range news["news"] {
		assert.Equal(t, models.SentimentPositive, n.Sentiment)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/market/news?sentiment=bullish", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodGet, "/api/history?timeframe=1W", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[struct {
		Timeframe models.Timeframe          `json:"timeframe"`
		Points    []models.PerformancePoint `json:"points"`
	}](t, rr)
	assert.Equal(t, models.Timeframe1W, resp.Timeframe)
	require.NotEmpty(t, resp.Points)
	assert.InDelta(t, 68865.0, resp.Points[len(resp.Points)-1].Value, 1e-6)

	rr = doRequest(t, h, http.MethodGet, "/api/history?timeframe=5Y", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/history/chart.png", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))
}

func TestAlertsAndNotifications(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/alerts", token, map[string]interface{}{
		"symbol": "tsla", "target_price": 1, "condition": "above",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	a := decodeBody[models.PriceAlert](t, rr)
	assert.False(t, a.Active)
	assert.NotNil(t, a.TriggeredAt)

	rr = doRequest(t, h, http.MethodPost, "/api/alerts", token, map[string]interface{}{
		"symbol": "tsla", "target_price": 1, "condition": "sideways",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/notifications", token, nil)
	notes := decodeBody[map[string][]models.Notification](t, rr)["notifications"]
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "TSLA reached $225")

	rr = doRequest(t, h, http.MethodDelete, "/api/notifications/"+notes[0].ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = doRequest(t, h, http.MethodDelete, "/api/notifications/"+notes[0].ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(t, h, http.MethodDelete, "/api/alerts/"+a.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/alerts", token, nil)
	alerts := decodeBody[map[string][]models.PriceAlert](t, rr)["alerts"]
	assert.Len(t, alerts, 2)

	rr = doRequest(t, h, http.MethodDelete, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[map[string][]models.Notification](t, rr)["notifications"])
}

func TestBrokerage(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/portfolio/brokerage", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[struct {
		Imported  []models.Holding      `json:"imported"`
		Portfolio session.PortfolioView `json:"portfolio"`
	}](t, rr)
	assert.Len(t, resp.Imported, 3)
	assert.Len(t, resp.Portfolio.Holdings, 7)

	rr = doRequest(t, h, http.MethodGet, "/api/notifications", token, nil)
	notes := decodeBody[map[string][]models.Notification](t, rr)["notifications"]
	require.NotEmpty(t, notes)
	assert.Equal(t, "Successfully imported 3 assets from brokerage.", notes[0].Message)
}

func TestBrokerage_Busy(t *testing.T) {
	srv, a := newTestServer(t, func(c *common.Config) { c.Simulation.BrokerageDelay = "300ms" })
	h := srv.Handler()
	token := loginToken(t, h)
	sess, err := a.Sessions.Resolve(token)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		doRequest(t, h, http.MethodPost, "/api/portfolio/brokerage", token, nil)
	}()

	require.Eventually(t, func() bool { return sess.Dashboard().Importing }, time.Second, time.Millisecond)

	rr := doRequest(t, h, http.MethodPost, "/api/portfolio/brokerage", token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	wg.Wait()
}

func TestAdvisorAnalyze_Fallback(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/advisor/analyze", token, map[string]string{"risk_profile": "Aggressive"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeBody[models.AnalysisResult](t, rr)
	assert.True(t, res.Fallback)
	assert.Equal(t, 50, res.RiskScore)

	rr = doRequest(t, h, http.MethodGet, "/api/dashboard", token, nil)
	d := decodeBody[session.Dashboard](t, rr)
	assert.Equal(t, models.RiskAggressive, d.RiskProfile)
	require.NotNil(t, d.Analysis)
	assert.Equal(t, res.Summary, d.Analysis.Summary)

	rr = doRequest(t, h, http.MethodPost, "/api/advisor/analyze", token, map[string]string{"risk_profile": "Reckless"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/api/advisor/analyze", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPlannerGenerate(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/planner/generate", token, map[string]interface{}{
		"initial_amount": 10000, "monthly_contribution": 500, "target_goal": 0,
		"duration_years": 5, "risk_profile": "Moderate",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/api/planner/generate", token, map[string]interface{}{
		"initial_amount": 1e308, "monthly_contribution": 500, "target_goal": 100000,
		"duration_years": 10, "risk_profile": "Moderate",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/api/planner/generate", token, map[string]interface{}{
		"initial_amount": 10000, "monthly_contribution": 500, "target_goal": 100000,
		"duration_years": 5, "risk_profile": "Aggressive", "include_current_portfolio": true,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeBody[models.PlanResult](t, rr)
	assert.True(t, res.Fallback)
	assert.Len(t, res.YearlyData, 5)
	require.NotNil(t, res.CurrentPortfolioAnalysis)
	assert.NotEmpty(t, res.CurrentPortfolioAnalysis.RebalancingSuggestions)

	rr = doRequest(t, h, http.MethodGet, "/api/dashboard", token, nil)
	d := decodeBody[session.Dashboard](t, rr)
	require.NotNil(t, d.Plan)
	assert.Equal(t, res.ProjectedTotal, d.Plan.ProjectedTotal)
}

func TestAdvisor_RateLimited(t *testing.T) {
	srv, _ := newTestServer(t, func(c *common.Config) {
		c.Session.AdvisorRateLimit = 0.001
		c.Session.AdvisorBurst = 1
	})
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/advisor/analyze", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/api/advisor/analyze", token, map[string]string{"risk_profile": "Aggressive"})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "5", rr.Header().Get("Retry-After"))

	rr = doRequest(t, h, http.MethodGet, "/api/dashboard", token, nil)
	d := decodeBody[session.Dashboard](t, rr)
	assert.Equal(t, models.RiskModerate, d.RiskProfile, "a limited request changes nothing")
}

func TestSettingsTabAndRisk(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	token := loginToken(t, h)

	rr := doRequest(t, h, http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	settings := decodeBody[models.Settings](t, rr)
	assert.Equal(t, "USD", settings.Currency)

	settings.Currency = "XYZ"
	rr = doRequest(t, h, http.MethodPut, "/api/settings", token, settings)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	settings.Currency = "EUR"
	settings.TwoFactor = true
	rr = doRequest(t, h, http.MethodPut, "/api/settings", token, settings)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "EUR", decodeBody[models.Settings](t, rr).Currency)

	rr = doRequest(t, h, http.MethodPut, "/api/session/tab", token, map[string]string{"tab": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = doRequest(t, h, http.MethodPut, "/api/session/tab", token, map[string]string{"tab": "planner"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, h, http.MethodPut, "/api/session/risk-profile", token, map[string]string{"risk_profile": "Conservative"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/dashboard", token, nil)
	d := decodeBody[session.Dashboard](t, rr)
	assert.Equal(t, models.TabPlanner, d.Tab)
	assert.Equal(t, models.RiskConservative, d.RiskProfile)
	assert.True(t, d.Settings.TwoFactor)
}

func TestWebSocket_ReceivesStateUpdates(t *testing.T) {
	srv, a := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	token := loginToken(t, srv.Handler())
	sess, err := a.Sessions.Resolve(token)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return sess.Hub().ClientCount() == 1 }, time.Second, time.Millisecond)

	_, err = sess.AddWatch("XRP", models.CategoryCrypto)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var u session.Update
	require.NoError(t, conn.ReadJSON(&u))
	assert.Equal(t, session.UpdateState, u.Type)
	assert.Len(t, u.Watchlist, 3)
}

func TestWebSocket_RequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
