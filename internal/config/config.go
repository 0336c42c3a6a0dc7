// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/mmynk/groupledger/pkg/logging"
)

// Config holds the server settings.
type Config struct {
	Port   int
	DBPath string

	LogLevel  slog.Level
	LogFormat logging.Format

	// BalanceCacheSize bounds the number of memoized balance reports.
	// Zero disables memoization.
	BalanceCacheSize int

	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string
}

// Defaults
const (
	DefaultPort             = 8080
	DefaultDBPath           = "./data/groupledger.db"
	DefaultBalanceCacheSize = 256
	DefaultCORSOrigin       = "*"
)

// Lookup reads an environment variable. os.LookupEnv satisfies it.
type Lookup func(key string) (string, bool)

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup.
func FromLookup(lookup Lookup) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", DefaultDBPath),
		LogLevel:   logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		LogFormat:  logging.ParseFormat(getEnv("LOG_FORMAT", string(logging.FormatText))),
		CORSOrigin: getEnv("CORS_ORIGIN", DefaultCORSOrigin),
	}

	var err error
	if cfg.Port, err = intEnv(getEnv, "PORT", DefaultPort); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.BalanceCacheSize, err = intEnv(getEnv, "BALANCE_CACHE_SIZE", DefaultBalanceCacheSize); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func intEnv(getEnv func(key, fallback string) string, key string, fallback int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
