// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the tunables the certificate core needs. Everything is
// threaded explicitly into constructors; nothing reads the environment
// after startup.
type Config struct {
	// KDFIterations raises the PBKDF2 iteration count above the built-in
	// floor of 100000. Values below the floor are rejected at derivation.
	KDFIterations int `envconfig:"KDF_ITERATIONS" default:"100000"`

	// PasswordLength is the generated per-record password length.
	PasswordLength int `envconfig:"PASSWORD_LENGTH" default:"32"`

	// DatabasePath locates the bbolt record database. Empty selects the
	// in-memory repository.
	DatabasePath string `envconfig:"DATABASE_PATH"`

	// BlobGatewayURL points at the external blob store gateway. Empty
	// selects the in-memory store.
	BlobGatewayURL string `envconfig:"BLOB_GATEWAY_URL"`

	// LedgerEndpoint points at the external ledger. Empty selects the
	// in-memory ledger.
	LedgerEndpoint string `envconfig:"LEDGER_ENDPOINT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from CERTMGR_-prefixed environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("certmgr", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if cfg.PasswordLength < 16 {
		return nil, fmt.Errorf("password length %d below minimum of 16", cfg.PasswordLength)
	}
	return &cfg, nil
}

// SlogLevel maps the configured level name onto a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
