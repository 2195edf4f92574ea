package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Wallet storage backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Table settings
	StartingBalance int64
	DeckSeed        int64 // 0 means derive the seed from the clock

	// Wallet storage
	WalletBackend string
	DataDir       string
	WalletDBPath  string

	LogLevel string

	// Environment
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables, loading a .env file first if present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env files
func FromEnv() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	balance, err := getInt64WithDefault("STARTING_BALANCE", 100)
	if err != nil {
		return nil, err
	}
	seed, err := getInt64WithDefault("DECK_SEED", 0)
	if err != nil {
		return nil, err
	}

	dataDir := getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data"))
	cfg := &Config{
		StartingBalance: balance,
		DeckSeed:        seed,
		WalletBackend:   getEnvWithDefault("WALLET_BACKEND", BackendMemory),
		DataDir:         dataDir,
		WalletDBPath:    getEnvWithDefault("WALLET_DB_PATH", filepath.Join(dataDir, "wallets.db")),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.StartingBalance <= 0 {
		return fmt.Errorf("STARTING_BALANCE must be positive, got %d", c.StartingBalance)
	}
	switch c.WalletBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.WalletDBPath == "" {
			return fmt.Errorf("WALLET_DB_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("WALLET_BACKEND must be %q or %q, got %q", BackendMemory, BackendSQLite, c.WalletBackend)
	}
	return nil
}

// EnsureDataDir creates the directory holding the wallet database
func (c *Config) EnsureDataDir() error {
	if c.WalletBackend != BackendSQLite {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.WalletDBPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64WithDefault(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
