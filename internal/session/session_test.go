package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vanguard/internal/models"
	"github.com/bobmcallan/vanguard/internal/services/market"
	"github.com/bobmcallan/vanguard/internal/services/table"
)

func newTestSession(t *testing.T, seed uint64) *Session {
	t.Helper()
	s := New("test", models.NewUser("ada@example.com"), Options{
		Walker:         market.NewSeededWalker(seed),
		BrokerageDelay: 10 * time.Millisecond,
	})
	t.Cleanup(s.Stop)
	return s
}

func findHolding(t *testing.T, holdings []models.ValuedHolding, symbol string) models.ValuedHolding {
	t.Helper()
	for _, h := range holdings {
		if h.Symbol == symbol {
			return h
		}
	}
	t.Fatalf("holding %s not found", symbol)
	return models.ValuedHolding{}
}

func TestNew_SeedsState(t *testing.T) {
	s := newTestSession(t, 1)
	d := s.Dashboard()

	assert.Equal(t, "ada", d.User.Name)
	assert.Equal(t, models.TabOverview, d.Tab)
	assert.Equal(t, models.RiskModerate, d.RiskProfile)
	assert.Len(t, d.Indices, 4)
	assert.Len(t, d.News, 4)
	assert.Len(t, d.Portfolio.Holdings, 4)
	assert.Len(t, d.Watchlist.Items, 2)
	assert.Len(t, d.Alerts, 2)
	assert.Empty(t, d.Notifications)

	want := 0.5*64230 + 5*3450 + 20*225 + 15000*1
	assert.InDelta(t, want, d.Portfolio.Total, 1e-6)
}

func TestTick_BTCValueFollowsPrice(t *testing.T) {
	s := newTestSession(t, 2)

	u := s.Tick()
	btc := findHolding(t, u.Holdings, "BTC")

	assert.InDelta(t, 64230, btc.CurrentPrice, 64230*market.LiveVolatility)
	assert.Equal(t, 0.5*btc.CurrentPrice, btc.Value)
	assert.Len(t, btc.Trend, models.TrendLength)
	assert.Equal(t, btc.CurrentPrice, btc.Trend[len(btc.Trend)-1])
	assert.Equal(t, UpdateTick, u.Type)
}

func TestTick_SequencesAreDeterministic(t *testing.T) {
	a := newTestSession(t, 99)
	b := newTestSession(t, 99)

	for i := 0; i < 5; i++ {
		ua, ub := a.Tick(), b.Tick()
		assert.Equal(t, ua.Total, ub.Total)
		assert.Equal(t, ua.Indices, ub.Indices)
	}
}

func TestTick_AlertFiresExactlyOnce(t *testing.T) {
	s := newTestSession(t, 5)
	// Leave only the BTC above 65000 alert.
	for _, a := range s.Alerts() {
		if a.Symbol != "BTC" {
			require.NoError(t, s.RemoveAlert(a.ID))
		}
	}

	fired := 0
	crossed := false
	for i := 0; i < 200000 && !crossed; i++ {
		u := s.Tick()
		fired += len(u.Triggered)
		crossed = findHolding(t, u.Holdings, "BTC").CurrentPrice >= 65000
	}
	require.True(t, crossed, "BTC never reached 65000")
	assert.Equal(t, 1, fired)

	for i := 0; i < 50; i++ {
		u := s.Tick()
		fired += len(u.Triggered)
	}
	assert.Equal(t, 1, fired, "a triggered alert never fires again")

	alerts := s.Alerts()
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Active)
	require.NotNil(t, alerts[0].TriggeredAt)

	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Price Alert: BTC reached $")
}

func TestAddHolding(t *testing.T) {
	s := newTestSession(t, 3)

	h, err := s.AddHolding(" aapl ", models.CategoryStock, 10)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", h.Symbol)
	assert.InDelta(t, market.DefaultNewPrice, h.CurrentPrice, market.DefaultNewPrice*market.LiveVolatility)
	assert.Len(t, h.Trend, models.TrendLength)

	view := s.Portfolio("aapl")
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, 10*h.CurrentPrice, view.Holdings[0].Value)

	require.NoError(t, s.RemoveHolding(h.ID))
	assert.Empty(t, s.Portfolio("aapl").Holdings)
	assert.ErrorIs(t, s.RemoveHolding(h.ID), ErrNotFound)
}

func TestAddHolding_InvalidInput(t *testing.T) {
	s := newTestSession(t, 3)
	before := s.Portfolio("").Holdings

	_, err := s.AddHolding("", models.CategoryStock, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AddHolding("AAPL", models.CategoryStock, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AddHolding("AAPL", "bond", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AddHolding("AAPL", models.CategoryStock, 1e308)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, before, s.Portfolio("").Holdings, "rejected input leaves state unchanged")
}

func TestWatchlist(t *testing.T) {
	s := newTestSession(t, 4)

	_, err := s.AddWatch("doge", models.CategoryCash)
	assert.ErrorIs(t, err, ErrInvalidInput)

	w, err := s.AddWatch("doge", models.CategoryCrypto)
	require.NoError(t, err)
	assert.Len(t, s.Watchlist().Items, 3)

	state := s.ToggleWatchSort(table.KeySymbol)
	assert.Equal(t, table.Asc, state.Direction)
	items := s.Watchlist().Items
	assert.Equal(t, "DOGE", items[0].Symbol)

	require.NoError(t, s.RemoveWatch(w.ID))
	assert.ErrorIs(t, s.RemoveWatch(w.ID), ErrNotFound)
}

func TestSortStateIsPerTable(t *testing.T) {
	s := newTestSession(t, 4)

	s.ToggleHoldingSort(table.KeyValue)
	s.ToggleHoldingSort(table.KeyValue)

	assert.Equal(t, table.SortState{Key: table.KeyValue, Direction: table.Desc}, s.Portfolio("").Sort)
	assert.Equal(t, table.SortState{}, s.Watchlist().Sort)

	rows := s.Portfolio("").Holdings
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Value, rows[i].Value)
	}
}

func TestAddAlert_EvaluatesImmediately(t *testing.T) {
	s := newTestSession(t, 6)

	a, err := s.AddAlert("tsla", 1, models.ConditionAbove)
	require.NoError(t, err)
	assert.False(t, a.Active, "TSLA is already above 1")

	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "TSLA")

	_, err = s.AddAlert("TSLA", 0, models.ConditionAbove)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AddAlert("TSLA", 10, "sideways")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AddAlert("TSLA", models.MaxAmount*2, models.ConditionBelow)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNotifications_NewestFirstAndDismiss(t *testing.T) {
	s := newTestSession(t, 7)

	_, err := s.AddAlert("TSLA", 1, models.ConditionAbove)
	require.NoError(t, err)
	_, err = s.AddAlert("NVDA", 1, models.ConditionAbove)
	require.NoError(t, err)

	notes := s.Notifications()
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0].Message, "NVDA")

	require.NoError(t, s.DismissNotification(notes[0].ID))
	assert.Len(t, s.Notifications(), 1)
	assert.ErrorIs(t, s.DismissNotification("missing"), ErrNotFound)

	s.ClearNotifications()
	assert.Empty(t, s.Notifications())
}

func TestConnectBrokerage(t *testing.T) {
	s := newTestSession(t, 8)

	imported, err := s.ConnectBrokerage(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, imported)

	assert.Len(t, s.Portfolio("").Holdings, 4+len(imported))
	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, brokerageMessage(len(imported)), notes[0].Message)
	assert.False(t, s.Dashboard().Importing)
}

func TestConnectBrokerage_Cancelled(t *testing.T) {
	s := New("test", models.NewUser("ada@example.com"), Options{
		Walker:         market.NewSeededWalker(8),
		BrokerageDelay: time.Hour,
	})
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ConnectBrokerage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, s.Portfolio("").Holdings, 4)
	assert.Empty(t, s.Notifications())
}

func TestConnectBrokerage_Busy(t *testing.T) {
	s := New("test", models.NewUser("ada@example.com"), Options{
		Walker:         market.NewSeededWalker(8),
		BrokerageDelay: time.Hour,
	})
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := s.ConnectBrokerage(ctx)
		errs <- err
	}()

	require.Eventually(t, func() bool { return s.Dashboard().Importing }, time.Second, time.Millisecond)
	_, err := s.ConnectBrokerage(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)
}

func TestAdvisorySequenceGuard(t *testing.T) {
	s := newTestSession(t, 9)

	first := s.BeginAnalysis()
	second := s.BeginAnalysis()

	assert.True(t, s.CompleteAnalysis(second, &models.AnalysisResult{Summary: "second"}))
	assert.False(t, s.CompleteAnalysis(first, &models.AnalysisResult{Summary: "first"}))
	assert.Equal(t, "second", s.Analysis().Summary)

	p1 := s.BeginPlan()
	p2 := s.BeginPlan()
	assert.False(t, s.CompletePlan(p1, &models.PlanResult{ExecutiveSummary: "stale"}))
	assert.Nil(t, s.Plan())
	assert.True(t, s.CompletePlan(p2, &models.PlanResult{ExecutiveSummary: "fresh"}))
	assert.Equal(t, "fresh", s.Plan().ExecutiveSummary)
}

func TestSettingsTabAndRisk(t *testing.T) {
	s := newTestSession(t, 10)

	assert.ErrorIs(t, s.SetTab("nowhere"), ErrInvalidInput)
	require.NoError(t, s.SetTab(models.TabPlanner))
	assert.Equal(t, models.TabPlanner, s.Dashboard().Tab)

	assert.ErrorIs(t, s.SetRiskProfile("Reckless"), ErrInvalidInput)
	require.NoError(t, s.SetRiskProfile(models.RiskAggressive))
	assert.Equal(t, models.RiskAggressive, s.AnalysisRequest("").RiskProfile)
	assert.Equal(t, models.RiskConservative, s.AnalysisRequest(models.RiskConservative).RiskProfile)

	settings := s.Settings()
	assert.Equal(t, "USD", settings.Currency)
	settings.Currency = "EUR"
	assert.Equal(t, "EUR", s.UpdateSettings(settings).Currency)
}

func TestHistoryEndsAtTotal(t *testing.T) {
	s := newTestSession(t, 11)
	total := s.Portfolio("").Total

	h := s.History(models.Timeframe1W)
	require.Len(t, h, 7)
	assert.Equal(t, total, h[6].Value)
}

func TestTrends(t *testing.T) {
	s := newTestSession(t, 12)
	h := s.Portfolio("").Holdings[0]

	trend, err := s.HoldingTrend(h.ID)
	require.NoError(t, err)
	assert.Len(t, trend, models.TrendLength)

	_, err = s.WatchTrend(h.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTickPublishesToSubscribers(t *testing.T) {
	s := newTestSession(t, 13)
	ch, cancel := s.Hub().Subscribe(4)
	defer cancel()

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, time.Second, time.Millisecond)
	s.Tick()

	select {
	case data := <-ch:
		var u Update
		require.NoError(t, json.Unmarshal(data, &u))
		assert.Equal(t, UpdateTick, u.Type)
		assert.Len(t, u.Holdings, 4)
	case <-time.After(time.Second):
		t.Fatal("no update published")
	}
}

func TestStartStop(t *testing.T) {
	s := New("test", models.NewUser("ada@example.com"), Options{
		Walker:       market.NewSeededWalker(14),
		TickInterval: 5 * time.Millisecond,
	})
	ch, cancel := s.Hub().Subscribe(64)
	defer cancel()
	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, time.Second, time.Millisecond)

	s.Start(context.Background())
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}

	s.Stop()
	s.Stop()

	// The subscriber channel is closed once the hub stops.
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, time.Millisecond)

	// A stopped session does not restart.
	seq := func() uint64 {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.seq
	}
	before := seq()
	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, seq())
}
