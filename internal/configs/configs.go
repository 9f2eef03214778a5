/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters by reading operating system environment variables,
including the running environment, port, CORS allowed origins, the eviction
sweep schedule, and the optional database connection string.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Presence Settings
	SweepInterval time.Duration
	StaleAfter    time.Duration

	// Message Settings
	MaxMessageLength int

	// Database Settings. Empty means the in-memory stores are used.
	DatabaseDSN string
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary
// type conversions and validation.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "5000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Presence Settings ---
	sweepStr := os.Getenv("SWEEP_INTERVAL")
	if sweepStr == "" {
		sweepStr = "15s"
	}
	sweepInterval, err := time.ParseDuration(sweepStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL environment variable: %w", err)
	}
	if sweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", sweepInterval)
	}
	cfg.SweepInterval = sweepInterval

	staleStr := os.Getenv("STALE_AFTER")
	if staleStr == "" {
		staleStr = "10s"
	}
	staleAfter, err := time.ParseDuration(staleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_AFTER environment variable: %w", err)
	}
	if staleAfter <= 0 {
		return nil, fmt.Errorf("STALE_AFTER must be positive, got %s", staleAfter)
	}
	cfg.StaleAfter = staleAfter

	// --- Message Settings ---
	maxLenStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxLenStr == "" {
		maxLenStr = "1000"
	}
	maxLen, err := strconv.Atoi(maxLenStr)
	if err != nil || maxLen <= 0 {
		return nil, fmt.Errorf("invalid MAX_MESSAGE_LENGTH environment variable: %q", maxLenStr)
	}
	cfg.MaxMessageLength = maxLen

	// --- Database Settings ---
	// DATABASE_URL is optional: when unset the server keeps all state in memory,
	// which is the expected mode for development and tests.
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	return cfg, nil
}
