// Package config provides configuration management for the TODO service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultStoreBackend    = "memory"
	DefaultSQLiteDSN       = ":memory:"
	DefaultFaultsEnabled   = true
	DefaultFaultRate       = 0.1
	DefaultFaultMinDelay   = 500 * time.Millisecond
	DefaultFaultMaxDelay   = 1500 * time.Millisecond
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvStoreBackend    = "APP_STORE_BACKEND"
	EnvSQLiteDSN       = "APP_SQLITE_DSN"
	EnvFaultsEnabled   = "APP_FAULTS_ENABLED"
	EnvFaultRate       = "APP_FAULT_RATE"
	EnvFaultMinDelay   = "APP_FAULT_MIN_DELAY"
	EnvFaultMaxDelay   = "APP_FAULT_MAX_DELAY"
	EnvFeatureFlags    = "APP_FEATURE_FLAGS"
	EnvRolloutKey      = "APP_ROLLOUT_KEY"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Store backend: memory or sqlite. Feature flags may override the
	// default at composition time.
	StoreBackend string
	SQLiteDSN    string

	// Fault simulation settings.
	FaultsEnabled bool
	FaultRate     float64
	FaultMinDelay time.Duration
	FaultMaxDelay time.Duration

	// Feature flags (format: "name:percent,name:percent").
	FeatureFlags string

	// RolloutKey is the stable identity used for percentage-based flag
	// bucketing. Empty means a fresh identity per process.
	RolloutKey string
}

// Validation errors.
var (
	ErrInvalidServerPort = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel   = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdown   = errors.New("shutdown timeout must be positive")
	ErrInvalidBackend    = errors.New("store backend must be one of: memory, sqlite")
	ErrInvalidFaultRate  = errors.New("fault rate must be between 0 and 1")
	ErrInvalidFaultDelay = errors.New(
		"fault delays must be non-negative and min must not exceed max",
	)
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		StoreBackend:    DefaultStoreBackend,
		SQLiteDSN:       DefaultSQLiteDSN,
		FaultsEnabled:   DefaultFaultsEnabled,
		FaultRate:       DefaultFaultRate,
		FaultMinDelay:   DefaultFaultMinDelay,
		FaultMaxDelay:   DefaultFaultMaxDelay,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	if err := c.loadStoreEnv(); err != nil {
		return err
	}

	return c.loadFaultsEnv()
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	return nil
}

// loadStoreEnv loads store and feature-flag environment variables.
func (c *Config) loadStoreEnv() error {
	if val := os.Getenv(EnvStoreBackend); val != "" {
		c.StoreBackend = val
	}

	if val := os.Getenv(EnvSQLiteDSN); val != "" {
		c.SQLiteDSN = val
	}

	if val := os.Getenv(EnvFeatureFlags); val != "" {
		c.FeatureFlags = val
	}

	if val := os.Getenv(EnvRolloutKey); val != "" {
		c.RolloutKey = val
	}

	return nil
}

// loadFaultsEnv loads fault-simulation environment variables.
func (c *Config) loadFaultsEnv() error {
	if val := os.Getenv(EnvFaultsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvFaultsEnabled, err)
		}
		c.FaultsEnabled = enabled
	}

	if val := os.Getenv(EnvFaultRate); val != "" {
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvFaultRate, err)
		}
		c.FaultRate = rate
	}

	if val := os.Getenv(EnvFaultMinDelay); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvFaultMinDelay, err)
		}
		c.FaultMinDelay = d
	}

	if val := os.Getenv(EnvFaultMaxDelay); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvFaultMaxDelay, err)
		}
		c.FaultMaxDelay = d
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdown
	}

	validBackends := map[string]bool{
		"memory": true,
		"sqlite": true,
	}
	if !validBackends[c.StoreBackend] {
		return ErrInvalidBackend
	}

	if c.FaultRate < 0 || c.FaultRate > 1 {
		return ErrInvalidFaultRate
	}

	if c.FaultMinDelay < 0 || c.FaultMaxDelay < c.FaultMinDelay {
		return ErrInvalidFaultDelay
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
