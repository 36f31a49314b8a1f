package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/vanguard/internal/clients/gemini"
	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/interfaces"
	"github.com/bobmcallan/vanguard/internal/services/advisor"
	"github.com/bobmcallan/vanguard/internal/session"
)

// App holds the initialized clients, services and the session manager.
// It is the shared core behind cmd/vanguard-server and the HTTP tests.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	GeminiClient interfaces.GeminiClient
	Advisor      interfaces.AdvisorService
	Sessions     *session.Manager
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath if set, then VANGUARD_CONFIG, then
// vanguard.toml next to the binary, then config/vanguard.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("VANGUARD_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "vanguard.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/vanguard.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes every service.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return New(config, logger), nil
}

// New initializes the services from an already loaded configuration.
func New(config *common.Config, logger *common.Logger) *App {
	startupStart := time.Now()

	for _, name := range config.ValidateRequired() {
		logger.Warn().Str("setting", name).Msg("Required setting missing or left at default")
	}

	var geminiClient interfaces.GeminiClient
	if key := config.Clients.Gemini.APIKey; key != "" {
		c, err := gemini.NewClient(context.Background(), key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - advisor will use local fallbacks")
		} else {
			logger.Info().Str("model", c.Model()).Msg("Gemini advisor enabled")
			geminiClient = c
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - advisor will use local fallbacks")
	}

	a := &App{
		Config:       config,
		Logger:       logger,
		GeminiClient: geminiClient,
		Advisor:      advisor.NewService(geminiClient, logger),
		Sessions:     session.NewManager(config, logger),
		StartupTime:  startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a
}

// StartSessionSweeper schedules the idle-session sweep.
func (a *App) StartSessionSweeper() error {
	return a.Sessions.StartSweeper(a.Config.Session.SweepSpec)
}

// Close stops the sweeper and every live session.
func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.Close()
	}
}
