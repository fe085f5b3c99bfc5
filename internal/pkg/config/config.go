package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// developmentURL is the hardcoded development backend, matching the host the
// backend binds to with --host 0.0.0.0 during local development.
const developmentURL = "http://192.168.0.104:8000"

// productionURL is a placeholder until the real API domain exists.
const productionURL = "https://your-api-domain.com"

type Config struct {
	Env      string `env:"APPART_ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL,        default=info"`

	// BaseURL overrides the resolved backend URL entirely when set.
	BaseURL string `env:"APPART_BASE_URL"`

	// HTTPTimeout applies to every API request, refresh exchanges included.
	HTTPTimeout time.Duration `env:"APPART_HTTP_TIMEOUT, default=10s"`

	// StateDir holds the session record, the token vault, and the device ID.
	// Defaults to ~/.appart when empty.
	StateDir string `env:"APPART_STATE_DIR"`

	Stub StubConfig
}

// StubConfig configures the local stub server.
type StubConfig struct {
	Port      string `env:"STUB_PORT,       default=8000"`
	JWTSecret string `env:"STUB_JWT_SECRET, default=appart-dev-secret"`
}

// Load reads configuration from environment variables using go-envconfig.
// It runs once at process start; the resolved values are never revisited.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// ResolveBaseURL picks the backend URL: explicit override first, then the
// development host, then the production placeholder.
func (c *Config) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Env == "development" {
		return developmentURL
	}
	return productionURL
}

// ResolveStateDir returns the state directory, creating it when needed.
func (c *Config) ResolveStateDir() (string, error) {
	dir := c.StateDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".appart")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("config: create state dir: %w", err)
	}
	return dir, nil
}
