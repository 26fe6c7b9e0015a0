// Package main is the entry point for the Gilded Rose inventory server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/gildedrose/internal/auth"
	"github.com/vyrodovalexey/gildedrose/internal/config"
	"github.com/vyrodovalexey/gildedrose/internal/server"
	"github.com/vyrodovalexey/gildedrose/internal/shop"
	"github.com/vyrodovalexey/gildedrose/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.Int("probe_port", cfg.ProbePort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("seed_inventory", cfg.SeedInventory),
		zap.Duration("ws_ping_period", cfg.WSPingPeriod),
	)

	authenticator, err := createAuthenticator(cfg, logger)
	if err != nil {
		logger.Error("failed to create authenticator", zap.Error(err))
		return 1
	}

	registry := newRegistry()

	itemStore := store.NewMemoryStore()
	gildedRose := newShop(cfg, itemStore, registry, logger)

	if cfg.SeedInventory {
		if err := gildedRose.Seed(context.Background()); err != nil {
			logger.Error("failed to seed inventory", zap.Error(err))
			return 1
		}
	}

	srv := server.New(cfg, logger, itemStore, gildedRose, authenticator, registry)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// initLogger initializes a JSON zap logger with the specified log level.
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

// newRegistry returns the registry served on /metrics, preloaded with the
// runtime collectors.
func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// newShop builds the shop, recording its metrics only when metrics are on.
func newShop(cfg *config.Config, itemStore store.Store, registry prometheus.Registerer, logger *zap.Logger) *shop.Shop {
	var metrics *shop.Metrics
	if cfg.MetricsEnabled {
		metrics = shop.NewMetrics(registry)
	}

	return shop.New(itemStore, logger.Named("shop"), metrics)
}

// createAuthenticator creates the authenticator for the configured auth
// mode. It returns nil when authentication is disabled.
func createAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	method := auth.AuthMethod(cfg.AuthMode)

	authenticator, err := auth.New(method, cfg.BasicAuthUsers, cfg.APIKeys)
	if err != nil {
		return nil, fmt.Errorf("creating %s authenticator: %w", method, err)
	}

	if authenticator == nil {
		logger.Info("authentication disabled")
		return nil, nil
	}

	logger.Info("authentication mode", zap.String("mode", string(authenticator.Method())))
	return authenticator, nil
}
