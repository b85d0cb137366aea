package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory = "memory"

	defaultDriver          = "sqlite3"
	defaultDatabaseURL     = "brackets.db?_journal_mode=WAL"
	defaultCommandAddr     = ":17380"
	defaultHTTPAddr        = ":8080"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	DBDriver        string
	DatabaseURL     string
	CommandAddr     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply values.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDriver:        envOr(getenv, "DB_DRIVER", defaultDriver),
		DatabaseURL:     envOr(getenv, "DATABASE_URL", defaultDatabaseURL),
		CommandAddr:     envOr(getenv, "COMMAND_ADDR", defaultCommandAddr),
		HTTPAddr:        envOr(getenv, "HTTP_ADDR", defaultHTTPAddr),
		LogLevel:        getenv("LOG_LEVEL"),
		LogFormat:       getenv("LOG_FORMAT"),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	switch cfg.DBDriver {
	case "sqlite3", "postgres", DriverMemory:
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want sqlite3, postgres or memory", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && getenv("DATABASE_URL") == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if raw := getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT environment variable: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", d)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}
