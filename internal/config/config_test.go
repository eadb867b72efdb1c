package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, DefaultServerPort)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if cfg.MetricsEnabled != DefaultMetricsEnabled {
		t.Errorf("MetricsEnabled = %v, want %v", cfg.MetricsEnabled, DefaultMetricsEnabled)
	}
	if cfg.StoreBackend != DefaultStoreBackend {
		t.Errorf("StoreBackend = %s, want %s", cfg.StoreBackend, DefaultStoreBackend)
	}
	if cfg.SQLiteDSN != DefaultSQLiteDSN {
		t.Errorf("SQLiteDSN = %s, want %s", cfg.SQLiteDSN, DefaultSQLiteDSN)
	}
	if cfg.FaultsEnabled != DefaultFaultsEnabled {
		t.Errorf("FaultsEnabled = %v, want %v", cfg.FaultsEnabled, DefaultFaultsEnabled)
	}
	if cfg.FaultRate != DefaultFaultRate {
		t.Errorf("FaultRate = %v, want %v", cfg.FaultRate, DefaultFaultRate)
	}
	if cfg.FaultMinDelay != DefaultFaultMinDelay {
		t.Errorf("FaultMinDelay = %v, want %v", cfg.FaultMinDelay, DefaultFaultMinDelay)
	}
	if cfg.FaultMaxDelay != DefaultFaultMaxDelay {
		t.Errorf("FaultMaxDelay = %v, want %v", cfg.FaultMaxDelay, DefaultFaultMaxDelay)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	// Arrange
	t.Setenv(EnvServerPort, "9000")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvShutdownTimeout, "10s")
	t.Setenv(EnvMetricsEnabled, "false")
	t.Setenv(EnvStoreBackend, "sqlite")
	t.Setenv(EnvSQLiteDSN, "/tmp/todos.db")
	t.Setenv(EnvFaultsEnabled, "false")
	t.Setenv(EnvFaultRate, "0.25")
	t.Setenv(EnvFaultMinDelay, "100ms")
	t.Setenv(EnvFaultMaxDelay, "200ms")
	t.Setenv(EnvFeatureFlags, "sqlite_store:50")
	t.Setenv(EnvRolloutKey, "instance-1")

	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.ServerPort != 9000 {
		t.Errorf("ServerPort = %d, want 9000", cfg.ServerPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled should be false")
	}
	if cfg.StoreBackend != "sqlite" {
		t.Errorf("StoreBackend = %s, want sqlite", cfg.StoreBackend)
	}
	if cfg.SQLiteDSN != "/tmp/todos.db" {
		t.Errorf("SQLiteDSN = %s, want /tmp/todos.db", cfg.SQLiteDSN)
	}
	if cfg.FaultsEnabled {
		t.Error("FaultsEnabled should be false")
	}
	if cfg.FaultRate != 0.25 {
		t.Errorf("FaultRate = %v, want 0.25", cfg.FaultRate)
	}
	if cfg.FaultMinDelay != 100*time.Millisecond {
		t.Errorf("FaultMinDelay = %v, want 100ms", cfg.FaultMinDelay)
	}
	if cfg.FaultMaxDelay != 200*time.Millisecond {
		t.Errorf("FaultMaxDelay = %v, want 200ms", cfg.FaultMaxDelay)
	}
	if cfg.FeatureFlags != "sqlite_store:50" {
		t.Errorf("FeatureFlags = %s, want sqlite_store:50", cfg.FeatureFlags)
	}
	if cfg.RolloutKey != "instance-1" {
		t.Errorf("RolloutKey = %s, want instance-1", cfg.RolloutKey)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{name: "invalid port", env: EnvServerPort, value: "not-a-port"},
		{name: "invalid timeout", env: EnvShutdownTimeout, value: "soon"},
		{name: "invalid metrics flag", env: EnvMetricsEnabled, value: "maybe"},
		{name: "invalid faults flag", env: EnvFaultsEnabled, value: "maybe"},
		{name: "invalid fault rate", env: EnvFaultRate, value: "ten percent"},
		{name: "invalid min delay", env: EnvFaultMinDelay, value: "fast"},
		{name: "invalid max delay", env: EnvFaultMaxDelay, value: "slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv(tt.env, tt.value)

			// Act
			_, err := Load()

			// Assert
			if err == nil {
				t.Errorf("Load() expected error for %s=%s", tt.env, tt.value)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:      8080,
			LogLevel:        "info",
			ShutdownTimeout: 30 * time.Second,
			StoreBackend:    "memory",
			FaultRate:       0.1,
			FaultMinDelay:   500 * time.Millisecond,
			FaultMaxDelay:   1500 * time.Millisecond,
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			modify: func(_ *Config) {},
		},
		{
			name:    "port too low",
			modify:  func(c *Config) { c.ServerPort = 0 },
			wantErr: ErrInvalidServerPort,
		},
		{
			name:    "port too high",
			modify:  func(c *Config) { c.ServerPort = 70000 },
			wantErr: ErrInvalidServerPort,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "non-positive shutdown timeout",
			modify:  func(c *Config) { c.ShutdownTimeout = 0 },
			wantErr: ErrInvalidShutdown,
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.StoreBackend = "postgres" },
			wantErr: ErrInvalidBackend,
		},
		{
			name:    "fault rate above one",
			modify:  func(c *Config) { c.FaultRate = 1.5 },
			wantErr: ErrInvalidFaultRate,
		},
		{
			name:    "negative fault rate",
			modify:  func(c *Config) { c.FaultRate = -0.1 },
			wantErr: ErrInvalidFaultRate,
		},
		{
			name:    "negative min delay",
			modify:  func(c *Config) { c.FaultMinDelay = -time.Second },
			wantErr: ErrInvalidFaultDelay,
		},
		{
			name: "max delay below min",
			modify: func(c *Config) {
				c.FaultMinDelay = time.Second
				c.FaultMaxDelay = 100 * time.Millisecond
			},
			wantErr: ErrInvalidFaultDelay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := valid()
			tt.modify(cfg)

			// Act
			err := cfg.Validate()

			// Assert
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := &Config{ServerPort: 8080}

	if got := cfg.Address(); got != ":8080" {
		t.Errorf("Address() = %s, want :8080", got)
	}
}
