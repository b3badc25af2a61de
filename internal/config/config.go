package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL         string        `env:"DATABASE_URL"`
	ServerAddr          string        `env:"SERVER_ADDR" envDefault:"0.0.0.0:8080"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR" envDefault:"internal/migrations"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"trivia_hub_session"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	AnswerWindow        time.Duration `env:"ANSWER_WINDOW" envDefault:"10s"`
	FinalRoundWindow    time.Duration `env:"FINAL_ROUND_WINDOW" envDefault:"30s"`

	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
}

// PostgresConfig assembles a DSN when DATABASE_URL is not set directly.
type PostgresConfig struct {
	User     string `env:"USER" envDefault:"trivia_hub"`
	Password string `env:"PASSWORD" envDefault:"trivia_hub_pass"`
	Database string `env:"DB" envDefault:"trivia_hub"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		p := cfg.Postgres
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
	}
	return cfg, nil
}
