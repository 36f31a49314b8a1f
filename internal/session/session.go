// Package session owns the per-login dashboard state: the simulated market,
// the user's holdings, watch list and alerts, and the recurring tick that
// drives them.
package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/models"
	"github.com/bobmcallan/vanguard/internal/services/alert"
	"github.com/bobmcallan/vanguard/internal/services/market"
	"github.com/bobmcallan/vanguard/internal/services/portfolio"
	"github.com/bobmcallan/vanguard/internal/services/table"
)

var (
	// ErrNotFound is returned when an id does not name an item in the session.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a mutation is refused for bad input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrBusy is returned when a brokerage import is already running.
	ErrBusy = errors.New("brokerage import already in progress")
)

// Options configures a new Session. Zero values take defaults.
type Options struct {
	TickInterval   time.Duration
	Volatility     float64
	BrokerageDelay time.Duration
	Walker         *market.Walker
	Logger         *common.Logger
	Clock          func() time.Time
}

// Session is the single state object behind one logged-in dashboard.
// Every method is safe for concurrent use.
type Session struct {
	ID        string
	User      models.User
	CreatedAt time.Time

	mu            sync.Mutex
	walker        *market.Walker
	volatility    float64
	indices       []models.MarketIndex
	news          []models.NewsItem
	holdings      []models.Holding
	watchlist     []models.WatchedAsset
	alerts        []models.PriceAlert
	notifications []models.Notification
	valuation     models.Valuation
	riskProfile   models.RiskProfile
	tab           models.Tab
	settings      models.Settings
	holdingSort   table.SortState
	watchSort     table.SortState
	importing     bool
	lastActive    time.Time
	seq           uint64

	analysis    *models.AnalysisResult
	analysisSeq uint64
	plan        *models.PlanResult
	planSeq     uint64

	tickInterval   time.Duration
	brokerageDelay time.Duration
	hub            *Hub
	now            func() time.Time
	logger         *common.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	stopped  bool
	stopOnce sync.Once
}

// New creates a session seeded with the demo portfolio, watch list, alerts
// and market snapshot. The hub starts immediately; the ticker starts with Start.
func New(id string, user models.User, opts Options) *Session {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 3 * time.Second
	}
	if opts.Volatility <= 0 {
		opts.Volatility = market.LiveVolatility
	}
	if opts.BrokerageDelay < 0 {
		opts.BrokerageDelay = 0
	}
	if opts.Walker == nil {
		opts.Walker = market.NewSeededWalker(rand.Uint64())
	}
	if opts.Logger == nil {
		opts.Logger = common.NewSilentLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	now := opts.Clock()
	logger := opts.Logger.WithField("session", id)
	s := &Session{
		ID:             id,
		User:           user,
		CreatedAt:      now,
		walker:         opts.Walker,
		volatility:     opts.Volatility,
		indices:        market.Indices(),
		news:           market.News(),
		holdings:       market.SeedHoldings(opts.Walker),
		watchlist:      market.SeedWatchlist(opts.Walker),
		alerts:         market.SeedAlerts(now),
		notifications:  []models.Notification{},
		riskProfile:    models.RiskModerate,
		tab:            models.TabOverview,
		settings:       models.DefaultSettings(user),
		lastActive:     now,
		tickInterval:   opts.TickInterval,
		brokerageDelay: opts.BrokerageDelay,
		hub:            NewHub(logger),
		now:            opts.Clock,
		logger:         logger,
	}
	s.reactLocked(now)

	go s.hub.Run()
	return s
}

// Hub returns the session's update hub.
func (s *Session) Hub() *Hub {
	return s.hub
}

// Touch marks the session as active.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// LastActive returns when the session was last used.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// reactLocked re-evaluates alerts and recomputes the valuation after prices
// or alerts changed. It returns the notifications raised. Caller holds mu.
func (s *Session) reactLocked(now time.Time) []models.Notification {
	quotes := alert.Quotes(s.indices, s.holdings, s.watchlist)
	alerts, fired := alert.Evaluate(s.alerts, quotes, now)
	s.alerts = alerts
	if len(fired) > 0 {
		s.prependNotificationsLocked(fired...)
		for _, n := range fired {
			s.logger.Info().Str("message", n.Message).Msg("Price alert triggered")
		}
	}
	s.valuation = portfolio.Value(s.holdings, portfolio.Prices(s.holdings))
	return fired
}

// prependNotificationsLocked adds notifications newest first. Caller holds mu.
func (s *Session) prependNotificationsLocked(ns ...models.Notification) {
	rev := slices.Clone(ns)
	slices.Reverse(rev)
	s.notifications = append(rev, s.notifications...)
}

// publishLocked broadcasts the consolidated state. Caller holds mu.
func (s *Session) publishLocked(kind UpdateKind, fired []models.Notification) Update {
	s.seq++
	u := Update{
		Type:          kind,
		Seq:           s.seq,
		At:            s.now(),
		Indices:       slices.Clone(s.indices),
		Holdings:      slices.Clone(s.valuation.Holdings),
		Total:         s.valuation.Total,
		Allocation:    slices.Clone(s.valuation.ByCategory),
		Watchlist:     slices.Clone(s.watchlist),
		Alerts:        slices.Clone(s.alerts),
		Notifications: slices.Clone(s.notifications),
		Triggered:     fired,
	}
	if u.Triggered == nil {
		u.Triggered = []models.Notification{}
	}
	s.hub.Broadcast(u)
	return u
}

// changedLocked reacts to a mutation and publishes the new state. Caller holds mu.
func (s *Session) changedLocked() {
	now := s.now()
	s.lastActive = now
	fired := s.reactLocked(now)
	s.publishLocked(UpdateState, fired)
}

// Dashboard returns a consolidated snapshot of the session.
func (s *Session) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Dashboard{
		User:          s.User,
		Tab:           s.tab,
		RiskProfile:   s.riskProfile,
		Indices:       slices.Clone(s.indices),
		News:          slices.Clone(s.news),
		Portfolio:     s.portfolioViewLocked(""),
		Watchlist:     s.watchlistViewLocked(),
		Alerts:        slices.Clone(s.alerts),
		Notifications: slices.Clone(s.notifications),
		Analysis:      s.analysis,
		Plan:          s.plan,
		Settings:      s.settings,
		Importing:     s.importing,
	}
}

// Portfolio returns the holdings table filtered by query and sorted by the
// table's current sort state. Totals cover all holdings, not just the matches.
func (s *Session) Portfolio(query string) PortfolioView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolioViewLocked(query)
}

func (s *Session) portfolioViewLocked(query string) PortfolioView {
	rows := table.Filter(s.valuation.Holdings, query, table.HoldingText)
	return PortfolioView{
		Holdings:   table.Sort(rows, s.holdingSort, table.HoldingFields),
		Total:      s.valuation.Total,
		ByCategory: slices.Clone(s.valuation.ByCategory),
		BySymbol:   slices.Clone(s.valuation.BySymbol),
		Sort:       s.holdingSort,
	}
}

// Watchlist returns the watch list sorted by its own sort state.
func (s *Session) Watchlist() WatchlistView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchlistViewLocked()
}

func (s *Session) watchlistViewLocked() WatchlistView {
	return WatchlistView{
		Items: table.Sort(s.watchlist, s.watchSort, table.WatchFields),
		Sort:  s.watchSort,
	}
}

// ToggleHoldingSort applies a sort-key selection to the holdings table.
func (s *Session) ToggleHoldingSort(key string) table.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdingSort = s.holdingSort.Toggle(key)
	return s.holdingSort
}

// ToggleWatchSort applies a sort-key selection to the watch list table.
func (s *Session) ToggleWatchSort(key string) table.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchSort = s.watchSort.Toggle(key)
	return s.watchSort
}

// Indices returns the current index quotes.
func (s *Session) Indices() []models.MarketIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.indices)
}

// News returns the headlines matching query and sentiment.
func (s *Session) News(query, sentiment string) []models.NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return table.FilterNews(s.news, query, sentiment)
}

// History reconstructs the portfolio value history for tf ending at the current total.
func (s *Session) History(tf models.Timeframe) []models.PerformancePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walker.History(tf, s.valuation.Total, s.now())
}

// HoldingTrend returns the trend of the holding with id.
func (s *Session) HoldingTrend(id string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.holdings {
		if h.ID == id {
			return slices.Clone(h.Trend), nil
		}
	}
	return nil, ErrNotFound
}

// WatchTrend returns the trend of the watched asset with id.
func (s *Session) WatchTrend(id string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.watchlist {
		if w.ID == id {
			return slices.Clone(w.Trend), nil
		}
	}
	return nil, ErrNotFound
}

// AddHolding adds an owned asset priced by a fresh random walk.
func (s *Session) AddHolding(symbol string, category models.Category, amount float64) (models.Holding, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" || !models.ValidAmount(amount) || !models.ValidHoldingCategory(category) {
		return models.Holding{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price := s.walker.LivePrice(market.DefaultNewPrice)
	h := market.NewHolding(s.walker, symbol, category, amount, price)
	s.holdings = append(s.holdings, h)
	s.changedLocked()

	s.logger.Info().Str("symbol", symbol).Float64("amount", amount).Msg("Holding added")
	return h, nil
}

// RemoveHolding deletes the holding with id.
func (s *Session) RemoveHolding(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.holdings, func(h models.Holding) bool { return h.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.holdings = slices.Delete(s.holdings, i, i+1)
	s.changedLocked()
	return nil
}

// AddWatch adds a tracked asset priced by a fresh random walk.
func (s *Session) AddWatch(symbol string, category models.Category) (models.WatchedAsset, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" || !models.ValidWatchCategory(category) {
		return models.WatchedAsset{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price := s.walker.LivePrice(market.DefaultNewPrice)
	w := market.NewWatchedAsset(s.walker, symbol, category, price)
	s.watchlist = append(s.watchlist, w)
	s.changedLocked()
	return w, nil
}

// RemoveWatch deletes the watched asset with id.
func (s *Session) RemoveWatch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.watchlist, func(w models.WatchedAsset) bool { return w.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.watchlist = slices.Delete(s.watchlist, i, i+1)
	s.changedLocked()
	return nil
}

// Alerts returns every alert, active or not.
func (s *Session) Alerts() []models.PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.alerts)
}

// AddAlert creates an active alert and evaluates it against current prices
// straight away.
func (s *Session) AddAlert(symbol string, target float64, cond models.AlertCondition) (models.PriceAlert, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" || !models.ValidAmount(target) || (cond != models.ConditionAbove && cond != models.ConditionBelow) {
		return models.PriceAlert{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := models.PriceAlert{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		TargetPrice: target,
		Condition:   cond,
		Active:      true,
		CreatedAt:   s.now(),
	}
	s.alerts = append(s.alerts, a)
	s.changedLocked()

	for _, cur := range s.alerts {
		if cur.ID == a.ID {
			return cur, nil
		}
	}
	return a, nil
}

// RemoveAlert deletes the alert with id.
func (s *Session) RemoveAlert(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.alerts, func(a models.PriceAlert) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.alerts = slices.Delete(s.alerts, i, i+1)
	s.changedLocked()
	return nil
}

// Notifications returns the notifications, newest first.
func (s *Session) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// DismissNotification removes one notification.
func (s *Session) DismissNotification(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.notifications, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.notifications = slices.Delete(s.notifications, i, i+1)
	s.lastActive = s.now()
	return nil
}

// ClearNotifications removes every notification.
func (s *Session) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = []models.Notification{}
	s.lastActive = s.now()
}

// RiskProfile returns the selected risk profile.
func (s *Session) RiskProfile() models.RiskProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.riskProfile
}

// SetRiskProfile selects the risk profile used for analyses.
func (s *Session) SetRiskProfile(r models.RiskProfile) error {
	if !models.ValidRiskProfile(r) {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.riskProfile = r
	return nil
}

// SetTab records the active dashboard view.
func (s *Session) SetTab(t models.Tab) error {
	if !models.ValidTab(t) {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = t
	return nil
}

// Settings returns the user's preferences.
func (s *Session) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the user's preferences. Validation is the caller's job.
func (s *Session) UpdateSettings(settings models.Settings) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.settings
}

// AnalysisRequest assembles the state an analysis needs. An empty profile
// uses the session's selected one.
func (s *Session) AnalysisRequest(profile models.RiskProfile) models.AnalysisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile == "" {
		profile = s.riskProfile
	}
	return models.AnalysisRequest{
		Holdings:    slices.Clone(s.valuation.Holdings),
		RiskProfile: profile,
		Indices:     slices.Clone(s.indices),
		News:        slices.Clone(s.news),
	}
}

// ValuedHoldings returns the holdings with their current values, for linking to a plan.
func (s *Session) ValuedHoldings() []models.ValuedHolding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.valuation.Holdings)
}

// BeginAnalysis reserves a sequence number for an analysis request.
func (s *Session) BeginAnalysis() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysisSeq++
	return s.analysisSeq
}

// CompleteAnalysis stores res if seq is still the latest analysis request.
// A stale result is discarded and false returned.
func (s *Session) CompleteAnalysis(seq uint64, res *models.AnalysisResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.analysisSeq {
		return false
	}
	s.analysis = res
	return true
}

// Analysis returns the latest stored analysis, or nil.
func (s *Session) Analysis() *models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// BeginPlan reserves a sequence number for a plan request.
func (s *Session) BeginPlan() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planSeq++
	return s.planSeq
}

// CompletePlan stores res if seq is still the latest plan request.
func (s *Session) CompletePlan(seq uint64, res *models.PlanResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.planSeq {
		return false
	}
	s.plan = res
	return true
}

// Plan returns the latest stored plan, or nil.
func (s *Session) Plan() *models.PlanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// ConnectBrokerage simulates linking a brokerage account: after the
// configured delay the brokerage's positions are appended to the holdings
// and a notification is raised. Cancelling ctx during the delay aborts the
// import without changing state.
func (s *Session) ConnectBrokerage(ctx context.Context) ([]models.Holding, error) {
	s.mu.Lock()
	if s.importing {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.importing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.importing = false
		s.mu.Unlock()
	}()

	timer := time.NewTimer(s.brokerageDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := market.BrokerageHoldings(s.walker)
	s.holdings = append(s.holdings, imported...)
	s.prependNotificationsLocked(models.Notification{
		ID:        uuid.NewString(),
		Message:   brokerageMessage(len(imported)),
		CreatedAt: s.now(),
	})
	s.changedLocked()

	s.logger.Info().Int("holdings", len(imported)).Msg("Brokerage holdings imported")
	return imported, nil
}
