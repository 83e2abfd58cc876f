// Package main provides the worker service entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/reviewguard/internal/config"
	"github.com/lllypuk/reviewguard/internal/infrastructure/anomaly"
	"github.com/lllypuk/reviewguard/internal/infrastructure/eventbus"
	"github.com/lllypuk/reviewguard/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/reviewguard/internal/infrastructure/mongodb"
	"github.com/lllypuk/reviewguard/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/reviewguard/internal/worker"
)

// Timeout constants for worker service.
const (
	redisPingTimeout      = 5 * time.Second
	metricsReadTimeout    = 5 * time.Second
	metricsShutdownPeriod = 5 * time.Second
)

//nolint:funlen // Main function handles startup orchestration and is readable as-is
func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)

	if cfg.App.IsMockMode() {
		logger.Error("worker requires real mode: it reads MongoDB and subscribes to Redis")
		os.Exit(1)
	}

	logger.Info("starting reviewguard worker service",
		slog.String("environment", getEnvironment(cfg)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	mongoClient, err := connectMongoDB(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to MongoDB", slog.String("error", err.Error()))
		cancel()
		os.Exit(1) //nolint:gocritic // cancel() called before exit
	}
	defer func() {
		if disconnectErr := mongoClient.Disconnect(context.Background()); disconnectErr != nil {
			logger.Error("failed to disconnect from MongoDB", slog.String("error", disconnectErr.Error()))
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	reviewRepo := mongodb.NewMongoReviewRepository(db.Collection(mongodbinfra.CollectionReviews))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			logger.Error("failed to close Redis", slog.String("error", closeErr.Error()))
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, redisPingTimeout)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		pingCancel()
		logger.Error("failed to connect to Redis", slog.String("error", pingErr.Error()))
		os.Exit(1)
	}
	pingCancel()

	logger.InfoContext(ctx, "connected to Redis", slog.String("addr", cfg.Redis.Addr))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	reviewMetrics := metrics.NewReviewMetrics(registry)
	consumed := worker.NewConsumedCounter(registry)

	bus := eventbus.NewRedisEventBus(
		redisClient,
		eventbus.WithLogger(logger),
		eventbus.WithChannel(cfg.Anomaly.Channel),
	)
	journal := eventbus.NewJournalHandler(
		redisClient,
		eventbus.WithJournalKey(cfg.Anomaly.JournalKey),
		eventbus.WithMaxJournalEntries(cfg.Anomaly.JournalMax),
		eventbus.WithJournalLogger(logger),
	)

	consumer := worker.NewAnomalyConsumer(bus, logger,
		eventbus.NewLoggingHandler(logger).AsSignalHandler(),
		journal.AsSignalHandler(),
		worker.CountingHandler(consumed),
	)

	// Sweep findings go out on the anomaly channel like any API-side signal.
	sweepSignaler := anomaly.Multi{
		anomaly.NewMetricsSignaler(reviewMetrics),
		anomaly.NewPublishSignaler(bus, logger),
	}
	sweepConfig := worker.ConsistencySweepConfig{
		Interval:  cfg.Worker.ConsistencyInterval,
		Tolerance: cfg.Reviews.ConsistencyTolerance,
		Enabled:   cfg.Worker.ConsistencyEnabled,
	}
	sweeper := worker.NewConsistencySweepWorker(
		reviewRepo,
		sweepSignaler,
		reviewMetrics.InconsistentReviews,
		logger,
		sweepConfig,
	)

	logger.Info("starting workers",
		slog.Bool("anomaly_consumer_enabled", cfg.Anomaly.Enabled),
		slog.String("anomaly_channel", bus.Channel()),
		slog.Bool("consistency_sweep_enabled", sweepConfig.Enabled),
		slog.Duration("consistency_sweep_interval", sweepConfig.Interval),
	)

	var wg sync.WaitGroup

	if cfg.Anomaly.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if runErr := consumer.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
				logger.Error("anomaly consumer error", slog.String("error", runErr.Error()))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := sweeper.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("consistency sweep worker error", slog.String("error", runErr.Error()))
		}
	}()

	if cfg.Worker.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveMetrics(ctx, cfg.Worker.MetricsAddr, registry, logger)
		}()
	}

	wg.Wait()

	logger.Info("worker service shutdown complete")
}

// serveMetrics exposes registry until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownPeriod)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoContext(ctx, "worker metrics listening", slog.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "worker metrics server error", slog.String("error", err.Error()))
	}
}

// setupLogger creates and configures the structured logger based on configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	level := parseLogLevel(cfg.Log.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IsDevelopment(),
	}

	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvironment returns the environment name based on configuration.
func getEnvironment(cfg *config.Config) string {
	if cfg.App.Environment == "" {
		return config.EnvDevelopment
	}
	return cfg.App.Environment
}

// connectMongoDB establishes a connection to MongoDB.
func connectMongoDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.MongoDB.URI).
		SetMaxPoolSize(cfg.MongoDB.MaxPoolSize)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.MongoDB.Timeout)
	defer pingCancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return nil, pingErr
	}

	logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", cfg.MongoDB.Database),
	)

	return client, nil
}

// handleShutdown listens for OS signals and cancels the context.
func handleShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-quit
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	cancel()
}
