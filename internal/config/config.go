// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage and lock backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	LockLocal = "local"
	LockRedis = "redis"
)

// Config is the complete server configuration
type Config struct {
	Port            int           `env:"PORT"             envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	LockType    string `env:"LOCK_TYPE"    envDefault:"local"`
	RedisURL    string `env:"REDIS_URL"    envDefault:"redis://localhost:6379"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	CatalogPath string `env:"CATALOG_PATH" envDefault:"data/catalog.json"`

	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Rules Rules
}

// Rules are the tunable game and economy constants
type Rules struct {
	MinDeckSize      int           `env:"MIN_DECK_SIZE"      envDefault:"22"`
	NeutralFaction   string        `env:"NEUTRAL_FACTION"    envDefault:"Neutral"`
	MinTopUp         int64         `env:"MIN_TOP_UP"         envDefault:"5000"`
	CreditUnitPrice  int64         `env:"CREDIT_UNIT_PRICE"  envDefault:"5000"`
	MaxRetries       int           `env:"MAX_RETRIES"        envDefault:"3"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT"  envDefault:"5s"`
}

// DefaultRules returns the rule set used when nothing is configured
func DefaultRules() Rules {
	return Rules{
		MinDeckSize:      22,
		NeutralFaction:   "Neutral",
		MinTopUp:         5000,
		CreditUnitPrice:  5000,
		MaxRetries:       3,
		OperationTimeout: 5 * time.Second,
	}
}

// Load reads an optional .env file, then parses the environment
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express
func (c Config) Validate() error {
	var errs []error
	switch c.StorageType {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.StorageType))
	}
	switch c.LockType {
	case LockLocal, LockRedis:
	default:
		errs = append(errs, fmt.Errorf("invalid LOCK_TYPE %q: must be local or redis", c.LockType))
	}
	if c.Rules.MinDeckSize < 1 {
		errs = append(errs, errors.New("MIN_DECK_SIZE must be positive"))
	}
	if c.Rules.CreditUnitPrice < 1 {
		errs = append(errs, errors.New("CREDIT_UNIT_PRICE must be positive"))
	}
	if c.Rules.MaxRetries < 1 {
		errs = append(errs, errors.New("MAX_RETRIES must be at least 1"))
	}
	if c.Rules.OperationTimeout <= 0 {
		errs = append(errs, errors.New("OPERATION_TIMEOUT must be positive"))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
