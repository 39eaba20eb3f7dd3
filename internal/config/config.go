package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the server configuration, read from environment variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"5175"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Env      string `envconfig:"NODE_ENV" default:"development"`

	// SQLite file holding the riddle table. Seeded from the embedded list when empty.
	DBPath string `envconfig:"DB_PATH" default:"./data/riddler.db"`

	ClientOrigin   string        `envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	TokenSecret string        `envconfig:"ROUND_TOKEN_SECRET" default:"dev_secret_change_me"`
	TokenTTL    time.Duration `envconfig:"ROUND_TOKEN_TTL" default:"24h"`
	CookieName  string        `envconfig:"COOKIE_NAME" default:"riddler_round"`

	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"2h"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`

	// Debug routes are disabled while DebugPasswordHash is empty.
	DebugUser         string `envconfig:"DEBUG_USER" default:"admin"`
	DebugPasswordHash string `envconfig:"DEBUG_PASSWORD_HASH"`
}

// Production reports whether cookies should be marked Secure.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("load config: ROUND_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("load config: SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	return &cfg, nil
}
