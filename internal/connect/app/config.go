package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Facebook Graph API credentials. Both must be set for the token
	// exchange endpoints to work; the service still starts without them
	// so the stored-token endpoints remain available.
	FacebookAppID     string `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret string `env:"FACEBOOK_APP_SECRET"`
	GraphAPIVersion   string `env:"GRAPH_API_VERSION" envDefault:"v19.0"`
	GraphBaseURL      string `env:"GRAPH_BASE_URL" envDefault:"https://graph.facebook.com"`

	// TokenEncryptionKey protects page access tokens at rest. Required.
	// A 64-char hex string is used directly as the AES-256 key; anything
	// else is stretched with scrypt.
	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`

	// SessionSecret verifies operator session tokens minted by the host
	// CRM. Required.
	SessionSecret string `env:"SESSION_SECRET"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"pagelink.db"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.TokenEncryptionKey == "" {
		return Config{}, fmt.Errorf("TOKEN_ENCRYPTION_KEY is required")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	return cfg, nil
}
