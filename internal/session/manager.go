package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/robfig/cron"

	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/models"
	"github.com/bobmcallan/vanguard/internal/services/market"
)

const tokenIssuer = "vanguard-server"

// Manager owns every live session and the tokens that name them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	auth        common.AuthConfig
	sim         common.SimulationConfig
	idleTimeout time.Duration
	seed        uint64
	created     uint64

	ctx    context.Context
	cancel context.CancelFunc
	cron   *cron.Cron
	logger *common.Logger
}

// NewManager creates a session manager from configuration. Sessions'
// tickers run under an internal context cancelled by Close.
func NewManager(cfg *common.Config, logger *common.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions:    make(map[string]*Session),
		auth:        cfg.Auth,
		sim:         cfg.Simulation,
		idleTimeout: cfg.Session.GetIdleTimeout(),
		seed:        cfg.Simulation.Seed,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Login creates and starts a new session for email and returns it with a
// signed token. Credentials are not checked.
func (m *Manager) Login(email string) (*Session, string, error) {
	user := models.NewUser(email)
	if user.Email == "" {
		return nil, "", ErrInvalidInput
	}

	id := uuid.NewString()

	m.mu.Lock()
	m.created++
	opts := Options{
		TickInterval:   m.sim.GetTickInterval(),
		Volatility:     m.sim.LiveVolatility,
		BrokerageDelay: m.sim.GetBrokerageDelay(),
		Logger:         m.logger,
	}
	if m.seed != 0 {
		opts.Walker = market.NewSeededWalker(m.seed + m.created)
	}
	m.mu.Unlock()

	token, err := m.signToken(id, user)
	if err != nil {
		return nil, "", err
	}

	s := New(id, user, opts)
	s.Start(m.ctx)

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info().Str("session", id).Str("email", user.Email).Int("sessions", count).Msg("Session started")
	return s, token, nil
}

// Resolve validates a token and returns the live session it names.
func (m *Manager) Resolve(token string) (*Session, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.auth.JWTSecret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	id, _ := claims["sid"].(string)
	s, ok := m.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) signToken(id string, user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"sid":  id,
		"name": user.Name,
		"iss":  tokenIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(m.auth.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Logout stops and discards the session with id.
func (m *Manager) Logout(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Stop()
	m.logger.Info().Str("session", id).Msg("Session ended")
	return nil
}

// Sweep discards every session idle for longer than the idle timeout and
// returns how many were removed.
func (m *Manager) Sweep() int {
	now := time.Now()
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if common.Idle(s.LastActive(), now, m.idleTimeout) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Stop()
	}
	if len(idle) > 0 {
		m.logger.Info().Int("expired", len(idle)).Msg("Idle sessions swept")
	}
	return len(idle)
}

// StartSweeper schedules Sweep on the cron spec, e.g. "@every 1m".
func (m *Manager) StartSweeper(spec string) error {
	c := cron.New()
	if err := c.AddFunc(spec, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	c.Start()

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	m.logger.Debug().Str("spec", spec).Msg("Session sweeper started")
	return nil
}

// Close stops the sweeper and every session.
func (m *Manager) Close() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if c != nil {
		c.Stop()
	}
	m.cancel()
	for _, s := range sessions {
		s.Stop()
	}
}
