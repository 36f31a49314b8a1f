package session

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/vanguard/internal/models"
	"github.com/bobmcallan/vanguard/internal/services/market"
	"github.com/bobmcallan/vanguard/internal/services/table"
)

// UpdateKind tells subscribers what produced an update.
type UpdateKind string

const (
	UpdateTick  UpdateKind = "tick"
	UpdateState UpdateKind = "state"
)

// Update is the consolidated state published after every tick or mutation.
type Update struct {
	Type          UpdateKind               `json:"type"`
	Seq           uint64                   `json:"seq"`
	At            time.Time                `json:"at"`
	Indices       []models.MarketIndex     `json:"indices"`
	Holdings      []models.ValuedHolding   `json:"holdings"`
	Total         float64                  `json:"total"`
	Allocation    []models.AllocationSlice `json:"allocation"`
	Watchlist     []models.WatchedAsset    `json:"watchlist"`
	Alerts        []models.PriceAlert      `json:"alerts"`
	Notifications []models.Notification    `json:"notifications"`
	Triggered     []models.Notification    `json:"triggered"`
}

// PortfolioView is the holdings table as displayed.
type PortfolioView struct {
	Holdings   []models.ValuedHolding   `json:"holdings"`
	Total      float64                  `json:"total"`
	ByCategory []models.AllocationSlice `json:"by_category"`
	BySymbol   []models.AllocationSlice `json:"by_symbol"`
	Sort       table.SortState          `json:"sort"`
}

// WatchlistView is the watch list table as displayed.
type WatchlistView struct {
	Items []models.WatchedAsset `json:"items"`
	Sort  table.SortState       `json:"sort"`
}

// Dashboard is a full snapshot of the session.
type Dashboard struct {
	User          models.User            `json:"user"`
	Tab           models.Tab             `json:"tab"`
	RiskProfile   models.RiskProfile     `json:"risk_profile"`
	Indices       []models.MarketIndex   `json:"indices"`
	News          []models.NewsItem      `json:"news"`
	Portfolio     PortfolioView          `json:"portfolio"`
	Watchlist     WatchlistView          `json:"watchlist"`
	Alerts        []models.PriceAlert    `json:"alerts"`
	Notifications []models.Notification  `json:"notifications"`
	Analysis      *models.AnalysisResult `json:"analysis,omitempty"`
	Plan          *models.PlanResult     `json:"plan,omitempty"`
	Settings      models.Settings        `json:"settings"`
	Importing     bool                   `json:"importing"`
}

// Tick runs one simulation step: every index, holding and watched asset
// takes a random-walk step and shifts it into its trend, then alerts are
// evaluated, the valuation is recomputed and one update is published.
func (s *Session) Tick() Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.indices {
		s.indices[i].Price = s.step(s.indices[i].Price)
	}
	for i := range s.holdings {
		h := &s.holdings[i]
		h.CurrentPrice = s.step(h.CurrentPrice)
		h.Trend = market.ShiftTrend(h.Trend, h.CurrentPrice)
	}
	for i := range s.watchlist {
		w := &s.watchlist[i]
		w.CurrentPrice = s.step(w.CurrentPrice)
		w.Trend = market.ShiftTrend(w.Trend, w.CurrentPrice)
	}

	fired := s.reactLocked(s.now())
	return s.publishLocked(UpdateTick, fired)
}

// step walks price, restarting from the new-asset base when it has collapsed to 0.
func (s *Session) step(price float64) float64 {
	if price == 0 {
		price = market.DefaultNewPrice
	}
	return s.walker.Step(price, s.volatility)
}

// Start launches the recurring tick. It returns immediately; the ticker runs
// until ctx is cancelled or Stop is called. Start on a running or stopped
// session has no effect.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil || s.stopped {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	interval := s.tickInterval
	s.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Debug().Dur("interval", interval).Msg("Session ticker started")
		for {
			select {
			case <-ctx.Done():
				s.logger.Debug().Msg("Session ticker stopped")
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// Stop halts the ticker, waits for an in-flight tick to finish and
// disconnects every subscriber. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		cancel, done := s.cancel, s.done
		s.mu.Unlock()

		if cancel != nil {
			cancel()
			<-done
		}
		s.hub.Stop()
	})
}

func brokerageMessage(n int) string {
	return fmt.Sprintf("Successfully imported %d assets from brokerage.", n)
}
