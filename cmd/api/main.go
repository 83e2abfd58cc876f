// Package main provides the API server entry point.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lllypuk/reviewguard/internal/config"
	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
)

// signalHandoffDelay lets handlers that already returned pass their anomaly
// signals to the async signaler before it is drained.
const signalHandoffDelay = 100 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("starting reviewguard API server",
		slog.String("name", cfg.App.Name),
		slog.String("mode", string(cfg.App.Mode)),
		slog.String("environment", getEnvironment(cfg)),
	)

	container, err := NewContainer(cfg, WithLogger(logger))
	if err != nil {
		logger.Error("failed to build container", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := SetupRoutes(container)
	server := httpserver.NewServer(router.Echo(), serverConfig(cfg.Server), logger)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		awaitShutdown(server, container, logger)
	}()

	if serveErr := server.Start(); serveErr != nil {
		logger.Error("server error", slog.String("error", serveErr.Error()))
		_ = container.Close()
		os.Exit(1)
	}

	<-stopped
}

// serverConfig maps the server section onto listener settings.
func serverConfig(cfg config.ServerConfig) httpserver.ServerConfig {
	return httpserver.ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}

// setupLogger installs the process-wide slog logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Log.Level),
		AddSource: cfg.IsDevelopment(),
	}

	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

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

func getEnvironment(cfg *config.Config) string {
	if cfg.App.Environment == "" {
		return config.EnvDevelopment
	}
	return cfg.App.Environment
}

// awaitShutdown blocks until SIGINT, SIGTERM or SIGQUIT, then stops the
// listener before releasing container resources.
func awaitShutdown(server *httpserver.Server, container *Container, logger *slog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	<-ctx.Done()
	logger.Info("received shutdown signal")

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	time.Sleep(signalHandoffDelay)

	if err := container.Close(); err != nil {
		logger.Error("container close error", slog.String("error", err.Error()))
	}

	logger.Info("server shutdown complete")
}
