// internal/config/config.go
//
// Server configuration.
// Responsibilities:
//   - Load a .env file when present (development convenience).
//   - Parse the process environment into a typed Config with defaults.
//   - Reject settings the server cannot run with.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// DevJWTSecret is the signing key used when JWT_SECRET is unset.
const DevJWTSecret = "dev_secret_change_me"

// Config is the full server configuration.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/tusmo.db"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"tusmo_token"`
	AnonCookieName string `env:"ANON_COOKIE_NAME" envDefault:"tusmo_anon"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	Production     bool   `env:"PRODUCTION"`

	DailyWordsFile string `env:"TUSMO_DAILY_WORDS_FILE"`
	DictionaryFile string `env:"TUSMO_DICTIONARY_FILE"`

	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// ErrorDismiss is how long clients show a rejected-guess message.
	ErrorDismiss  time.Duration `env:"ERROR_DISMISS" envDefault:"2s"`
	SaveQueueSize int           `env:"SAVE_QUEUE_SIZE" envDefault:"256"`
	// PlayerIdle is how long an untouched player's games stay in memory.
	PlayerIdle time.Duration `env:"PLAYER_IDLE" envDefault:"30m"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads files (default ".env") into the environment without
// overriding variables already set, then parses Config.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var c Config
	if err := ParseEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if c.Production && c.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.JWTExpiresDays < 1 {
		errs = append(errs, errors.New("JWT_EXPIRES_DAYS must be positive"))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.SaveQueueSize < 1 {
		errs = append(errs, errors.New("SAVE_QUEUE_SIZE must be positive"))
	}
	if c.PlayerIdle < time.Minute {
		errs = append(errs, errors.New("PLAYER_IDLE must be at least 1m"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }
