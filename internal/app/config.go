package app

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"25s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"backoffice_session"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	APIBaseURL string `envconfig:"API_BASE_URL" required:"true"`
	// APITimeout bounds each backend round trip. Zero keeps the runtime default.
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"0s"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.CSRFSecret) == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, errors.New("API_BASE_URL must be an absolute URL")
	}
	if cfg.APITimeout < 0 {
		return nil, errors.New("API_TIMEOUT must not be negative")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
