// Package main is the entry point for the TODO service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dmoralestech/todo-service/internal/config"
	"github.com/dmoralestech/todo-service/internal/faults"
	"github.com/dmoralestech/todo-service/internal/flags"
	"github.com/dmoralestech/todo-service/internal/server"
	"github.com/dmoralestech/todo-service/internal/store"
)

// Feature flag names evaluated at composition time.
const (
	flagSQLiteStore = "sqlite_store"
	flagLiveEvents  = "live_events"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Bool("faults_enabled", cfg.FaultsEnabled),
		zap.Float64("fault_rate", cfg.FaultRate),
	)

	// Parse feature flags and fix the rollout identity for this process
	flagList, err := flags.Parse(cfg.FeatureFlags)
	if err != nil {
		logger.Error("failed to parse feature flags", zap.Error(err))
		return 1
	}
	evaluator := flags.New(flagList)

	rolloutKey := cfg.RolloutKey
	if rolloutKey == "" {
		rolloutKey = uuid.New().String()
	}

	// Select the store implementation once, at composition time
	todoStore, err := createStore(cfg, evaluator, rolloutKey, logger)
	if err != nil {
		logger.Error("failed to create store", zap.Error(err))
		return 1
	}
	defer func() {
		if closer, ok := todoStore.(store.Closer); ok {
			_ = closer.Close()
		}
	}()

	// Wrap the store with the simulated network boundary
	boundary := todoStore
	if cfg.FaultsEnabled {
		policy := faults.NewRandomPolicy(cfg.FaultMinDelay, cfg.FaultMaxDelay, cfg.FaultRate)
		boundary = store.NewFaultInjecting(todoStore, policy)
		logger.Info("fault simulation enabled",
			zap.Duration("min_delay", cfg.FaultMinDelay),
			zap.Duration("max_delay", cfg.FaultMaxDelay),
			zap.Float64("rate", cfg.FaultRate),
		)
	}

	liveEvents := true
	if evaluator.Defined(flagLiveEvents) {
		liveEvents = evaluator.Enabled(flagLiveEvents, rolloutKey)
	}

	// Create and start server
	srv := server.New(cfg, logger, boundary, server.Options{LiveEvents: liveEvents})

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Graceful shutdown
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// createStore picks the store backend. The sqlite_store feature flag, when
// defined, overrides the configured default so the SQLite implementation can
// be rolled out to a percentage of instances.
func createStore(
	cfg *config.Config,
	evaluator *flags.Evaluator,
	rolloutKey string,
	logger *zap.Logger,
) (store.Store, error) {
	backend := cfg.StoreBackend
	if evaluator.Defined(flagSQLiteStore) {
		if evaluator.Enabled(flagSQLiteStore, rolloutKey) {
			backend = "sqlite"
		} else {
			backend = "memory"
		}
	}

	if backend == "sqlite" {
		logger.Info("store backend: sqlite", zap.String("dsn", cfg.SQLiteDSN))
		return store.NewSQLiteStore(cfg.SQLiteDSN)
	}

	logger.Info("store backend: memory")
	return store.NewMemoryStore(), nil
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
