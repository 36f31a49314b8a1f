// Package common provides shared utilities for Vanguard
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Vanguard
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Simulation  SimulationConfig `toml:"simulation"`
	Clients     ClientsConfig    `toml:"clients"`
	Auth        AuthConfig       `toml:"auth"`
	Session     SessionConfig    `toml:"session"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SimulationConfig holds the live-market simulation parameters
type SimulationConfig struct {
	TickInterval   string  `toml:"tick_interval"`
	LiveVolatility float64 `toml:"live_volatility"`
	BrokerageDelay string  `toml:"brokerage_delay"`
	Seed           uint64  `toml:"seed"` // 0 seeds from the clock
}

// GetTickInterval parses and returns the tick interval
func (c *SimulationConfig) GetTickInterval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// GetBrokerageDelay parses and returns the simulated brokerage connect delay
func (c *SimulationConfig) GetBrokerageDelay() time.Duration {
	d, err := time.ParseDuration(c.BrokerageDelay)
	if err != nil || d < 0 {
		return 2 * time.Second
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	RateLimit int    `toml:"rate_limit"` // requests per minute
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// SessionConfig holds dashboard session lifecycle configuration
type SessionConfig struct {
	IdleTimeout      string  `toml:"idle_timeout"`
	SweepSpec        string  `toml:"sweep_spec"`
	AdvisorRateLimit float64 `toml:"advisor_rate_limit"` // advisory calls per second per session
	AdvisorBurst     int     `toml:"advisor_burst"`
}

// GetIdleTimeout parses and returns the idle timeout
func (c *SessionConfig) GetIdleTimeout() time.Duration {
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Simulation: SimulationConfig{
			TickInterval:   "3s",
			LiveVolatility: 0.002,
			BrokerageDelay: "2s",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:     "gemini-3-flash-preview",
				RateLimit: 30,
				Timeout:   "60s",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Session: SessionConfig{
			IdleTimeout:      "30m",
			SweepSpec:        "@every 1m",
			AdvisorRateLimit: 0.2,
			AdvisorBurst:     2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VANGUARD_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("VANGUARD_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("VANGUARD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("VANGUARD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("VANGUARD_TICK_INTERVAL"); v != "" {
		config.Simulation.TickInterval = v
	}

	if v := os.Getenv("VANGUARD_SEED"); v != "" {
		if s, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Simulation.Seed = s
		}
	}

	if v := os.Getenv("VANGUARD_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	// GEMINI_API_KEY wins over the generic API_KEY
	for _, name := range []string{"API_KEY", "GEMINI_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of required settings that are missing
// or left at insecure defaults. A missing Gemini key is reported but is not
// fatal: advisory calls fall back to local results.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.Gemini.APIKey == "" {
		missing = append(missing, "clients.gemini.api_key")
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "dev-jwt-secret-change-in-production" {
		missing = append(missing, "auth.jwt_secret")
	}
	return missing
}
