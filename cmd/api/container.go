// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/config"
	httphandler "github.com/lllypuk/reviewguard/internal/handler/http"
	"github.com/lllypuk/reviewguard/internal/infrastructure/anomaly"
	"github.com/lllypuk/reviewguard/internal/infrastructure/auth"
	"github.com/lllypuk/reviewguard/internal/infrastructure/eventbus"
	"github.com/lllypuk/reviewguard/internal/infrastructure/healthcheck"
	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
	"github.com/lllypuk/reviewguard/internal/infrastructure/keycloak"
	"github.com/lllypuk/reviewguard/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/reviewguard/internal/infrastructure/mongodb"
	"github.com/lllypuk/reviewguard/internal/infrastructure/repository/memory"
	"github.com/lllypuk/reviewguard/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/reviewguard/internal/infrastructure/sanitize"
	"github.com/lllypuk/reviewguard/internal/middleware"
	"github.com/lllypuk/reviewguard/internal/service"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
	signalDrainTimeout     = 5 * time.Second
)

// reviewStore is what the container needs from a review backend.
type reviewStore interface {
	reviewapp.RaceSimulationStore
	reviewapp.ConsistencyCounter
}

// Container holds all application dependencies and manages their lifecycle.
// It implements httpserver.HealthChecker for unified health endpoint support.
type Container struct {
	// Configuration
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB     *mongo.Client
	MongoDBName string
	Redis       *redis.Client
	EventBus    *eventbus.RedisEventBus
	Journal     *eventbus.JournalHandler
	Registry    *prometheus.Registry
	Metrics     *metrics.ReviewMetrics

	// Reviews
	ReviewStore   reviewStore
	Signaler      *anomaly.AsyncSignaler
	ReviewService *service.ReviewService

	// HTTP Handlers
	ReviewHandler *httphandler.ReviewHandler
	AuthHandler   *httphandler.AuthHandler

	// Auth and rate limiting
	TokenValidator middleware.TokenValidator
	Revocations    *auth.RevocationStore
	RateLimitStore middleware.RateLimitStore
	JWTValidator   keycloak.JWTValidator // for cleanup on shutdown

	// Health checkers. Readiness failures make the instance unready;
	// diagnostic failures only degrade /health/details.
	readiness   []appcore.HealthChecker
	diagnostics []appcore.HealthChecker
}

// Ensure Container implements httpserver.HealthChecker.
var _ httpserver.HealthChecker = (*Container)(nil)

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
// The wiring mode (real/mock) is determined by config.App.Mode.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	c.logWiringMode()

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupMetrics()
	c.setupReviewStore()
	c.setupSignaler()

	if err := c.setupTokenValidator(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup token validator: %w", err)
	}

	c.setupRateLimitStore()
	c.setupReviewService()
	c.setupHTTPHandlers()
	c.setupHealthCheckers()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// logWiringMode logs the current wiring mode configuration.
func (c *Container) logWiringMode() {
	mode := c.Config.App.Mode
	if mode == "" {
		mode = config.AppModeReal
	}

	if c.Config.App.IsMockMode() {
		c.Logger.Warn("container starting in MOCK mode, reviews are kept in memory",
			slog.String("mode", string(mode)),
			slog.String("environment", c.Config.App.Environment),
		)
		return
	}

	c.Logger.Info("container starting in REAL mode",
		slog.String("mode", string(mode)),
		slog.String("environment", c.Config.App.Environment),
	)
}

// validateWiring ensures all required dependencies are properly initialized.
func (c *Container) validateWiring() error {
	var errs []error

	errs = c.validateInfrastructure(errs)

	if c.TokenValidator == nil {
		errs = append(errs, errors.New("token validator not initialized"))
	}
	if c.ReviewStore == nil {
		errs = append(errs, errors.New("review store not initialized"))
	}
	if c.ReviewService == nil {
		errs = append(errs, errors.New("review service not initialized"))
	}
	if c.ReviewHandler == nil || c.AuthHandler == nil {
		errs = append(errs, errors.New("http handlers not initialized"))
	}
	if c.Config.IsProduction() && c.ReviewService != nil && c.ReviewService.SimulationEnabled() {
		errs = append(errs, errors.New("race simulation is not allowed in production"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// validateInfrastructure checks that real mode has its backing services.
func (c *Container) validateInfrastructure(errs []error) []error {
	if !c.Config.App.IsRealMode() {
		return errs
	}

	if c.MongoDB == nil {
		errs = append(errs, errors.New("mongodb client not initialized"))
	}
	if c.Redis == nil {
		errs = append(errs, errors.New("redis client not initialized"))
	}
	return errs
}

// setupInfrastructure connects MongoDB and Redis in real mode.
// Mock mode runs without either.
func (c *Container) setupInfrastructure() error {
	if c.Config.App.IsMockMode() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	return nil
}

// setupMongoDB initializes the MongoDB client.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}
	c.MongoDB = client

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.MongoDBName = c.Config.MongoDB.Database

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	db := client.Database(c.Config.MongoDB.Database)
	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")

	return nil
}

// setupRedis initializes the Redis client.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

// setupMetrics creates a private registry so tests can build several containers.
func (c *Container) setupMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewReviewMetrics(c.Registry)
}

// setupReviewStore picks the MongoDB repository or the in-memory store.
func (c *Container) setupReviewStore() {
	if c.MongoDB == nil {
		c.ReviewStore = memory.NewReviewStore()
		c.Logger.Debug("review store initialized", slog.String("backend", "memory"))
		return
	}

	db := c.MongoDB.Database(c.MongoDBName)
	c.ReviewStore = mongodb.NewMongoReviewRepository(db.Collection(mongodbinfra.CollectionReviews))

	c.Logger.Debug("review store initialized",
		slog.String("backend", "mongodb"),
		slog.String("collection", mongodbinfra.CollectionReviews),
	)
}

// setupSignaler builds the anomaly fan-out: log, metrics and, when Redis is
// available and publishing is enabled, the anomaly channel.
func (c *Container) setupSignaler() {
	fanout := anomaly.Multi{
		anomaly.NewLogSignaler(c.Logger),
		anomaly.NewMetricsSignaler(c.Metrics),
	}

	if c.Redis != nil && c.Config.Anomaly.Enabled {
		c.EventBus = eventbus.NewRedisEventBus(
			c.Redis,
			eventbus.WithLogger(c.Logger),
			eventbus.WithChannel(c.Config.Anomaly.Channel),
		)
		c.Journal = eventbus.NewJournalHandler(
			c.Redis,
			eventbus.WithJournalKey(c.Config.Anomaly.JournalKey),
			eventbus.WithMaxJournalEntries(c.Config.Anomaly.JournalMax),
			eventbus.WithJournalLogger(c.Logger),
		)
		fanout = append(fanout, anomaly.NewPublishSignaler(c.EventBus, c.Logger))

		c.Logger.Debug("anomaly publishing enabled",
			slog.String("channel", c.EventBus.Channel()),
		)
	}

	dropped := c.Metrics.SignalsDropped
	c.Signaler = anomaly.NewAsyncSignaler(
		fanout,
		anomaly.WithTimeout(c.Config.Anomaly.PublishTimeout),
		anomaly.WithDropHandler(dropped.Inc),
	)
}

// setupTokenValidator prefers Keycloak JWKS validation and falls back to the
// HMAC validator outside production.
func (c *Container) setupTokenValidator() error {
	if c.Config.Keycloak.Enabled && c.Config.Keycloak.URL != "" {
		jwtValidator, err := keycloak.NewJWTValidator(keycloak.JWTValidatorConfig{
			KeycloakURL:     c.Config.Keycloak.URL,
			Realm:           c.Config.Keycloak.Realm,
			ClientID:        c.Config.Keycloak.Audience,
			Leeway:          c.Config.Keycloak.JWT.Leeway,
			RefreshInterval: c.Config.Keycloak.JWT.RefreshInterval,
			Logger:          c.Logger,
		})
		if err == nil {
			c.JWTValidator = jwtValidator

			var adapterOpts []middleware.AdapterOption
			if c.Config.Keycloak.VerifiedEmailOnly {
				adapterOpts = append(adapterOpts, middleware.WithVerifiedEmailOnly())
			}
			c.TokenValidator = middleware.NewKeycloakValidatorAdapter(jwtValidator, adapterOpts...)

			c.Logger.Info("token validator initialized with Keycloak",
				slog.String("url", c.Config.Keycloak.URL),
				slog.String("realm", c.Config.Keycloak.Realm),
			)
			return nil
		}

		if c.Config.IsProduction() {
			return fmt.Errorf("keycloak: %w", err)
		}
		c.Logger.Warn("failed to create Keycloak JWT validator, falling back to HMAC validator",
			slog.String("error", err.Error()),
		)
	}

	hmacValidator, err := auth.NewHMACValidator(
		c.Config.Auth.JWTSecret,
		auth.WithIssuer(c.Config.Auth.Issuer),
		auth.WithLeeway(c.Config.Keycloak.JWT.Leeway),
	)
	if err != nil {
		return fmt.Errorf("hmac: %w", err)
	}
	c.TokenValidator = middleware.NewHMACValidatorAdapter(hmacValidator)

	c.Logger.Info("token validator initialized with shared secret",
		slog.String("issuer", c.Config.Auth.Issuer),
	)
	return nil
}

// setupRateLimitStore keeps counters in Redis when it is connected so every
// instance shares one budget per caller.
func (c *Container) setupRateLimitStore() {
	if !c.Config.RateLimit.Enabled {
		return
	}

	if c.Redis != nil {
		c.RateLimitStore = middleware.NewRedisRateLimitStore(c.Redis, c.Config.RateLimit.KeyPrefix)
		return
	}

	c.Logger.Warn("rate limit counters are kept in memory and are per instance")
	c.RateLimitStore = middleware.NewMemoryRateLimitStore()
}

// setupReviewService wires the review use cases behind the service facade.
func (c *Container) setupReviewService() {
	sanitizer := sanitize.NewStrictSanitizer()

	cfg := service.ReviewServiceConfig{
		CreateUC: reviewapp.NewCreateReviewUseCase(c.ReviewStore, sanitizer, c.Signaler, c.Logger),
		UpdateUC: reviewapp.NewUpdateReviewUseCase(c.ReviewStore, sanitizer, c.Signaler, c.Logger),
		LikeUC:   reviewapp.NewLikeReviewUseCase(c.ReviewStore, c.Signaler, c.Logger),
		GetUC:    reviewapp.NewGetReviewUseCase(c.ReviewStore),
		ListUC:   reviewapp.NewListReviewsUseCase(c.ReviewStore),
	}

	if sim := c.Config.Reviews.RaceSimulation; sim.Enabled {
		cfg.SimulateUC = reviewapp.NewSimulateLikeRaceUseCase(
			c.ReviewStore, c.Signaler, c.Logger, sim.Delay, sim.Threshold,
		)
		c.Logger.Warn("like race simulation endpoint is enabled",
			slog.Duration("delay", sim.Delay),
			slog.Int("threshold", sim.Threshold),
		)
	}

	c.ReviewService = service.NewReviewService(cfg, service.WithMetrics(c.Metrics))
}

// setupHTTPHandlers initializes the HTTP handlers.
func (c *Container) setupHTTPHandlers() {
	c.ReviewHandler = httphandler.NewReviewHandler(c.ReviewService)

	if c.Redis != nil {
		c.Revocations = auth.NewRevocationStore(auth.RevocationStoreConfig{
			Client:    c.Redis,
			KeyPrefix: c.Config.Auth.RevocationPrefix,
		})
		c.AuthHandler = httphandler.NewAuthHandler(c.Revocations)
		return
	}

	c.AuthHandler = httphandler.NewAuthHandler(nil)
}

// setupHealthCheckers registers the readiness and diagnostic checkers.
func (c *Container) setupHealthCheckers() {
	c.readiness = nil
	c.diagnostics = nil

	if c.MongoDB != nil {
		client := c.MongoDB
		c.readiness = append(c.readiness, healthcheck.NewPingChecker("mongodb", func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}))
	} else if mem, ok := c.ReviewStore.(*memory.ReviewStore); ok {
		c.readiness = append(c.readiness, healthcheck.NewPingChecker("review_store", mem.Ping))
	}

	if c.Redis != nil {
		client := c.Redis
		c.readiness = append(c.readiness, healthcheck.NewPingChecker("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}

	if c.ReviewStore != nil {
		c.diagnostics = append(c.diagnostics, healthcheck.NewLikeConsistencyChecker(
			c.ReviewStore,
			healthcheck.WithInconsistencyGauge(c.Metrics.InconsistentReviews),
			healthcheck.WithTolerance(c.Config.Reviews.ConsistencyTolerance),
		))
	}

	if c.Journal != nil {
		c.diagnostics = append(c.diagnostics, healthcheck.NewAnomalyJournalChecker(c.Journal))
	}
}

// Close gracefully closes all container resources.
// Resources are closed in reverse order of initialization.
func (c *Container) Close() error {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.Logger.Info("closing container resources...")

	var errs []error

	// Let in-flight anomaly deliveries reach Redis before it closes.
	if c.Signaler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), signalDrainTimeout)
		if err := c.Signaler.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("anomaly signaler drain: %w", err))
		}
		cancel()
	}

	if c.JWTValidator != nil {
		if err := c.JWTValidator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("jwt validator close: %w", err))
		} else {
			c.Logger.Debug("jwt validator closed")
		}
	}

	if c.EventBus != nil {
		if err := c.EventBus.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("event bus shutdown: %w", err))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}

// IsReady implements httpserver.HealthChecker.
// Only readiness checkers take part; the like consistency sweep never
// takes an instance out of rotation.
func (c *Container) IsReady(ctx context.Context) bool {
	if len(c.readiness) == 0 {
		return false
	}

	for _, checker := range c.readiness {
		if status := checker.Check(ctx); !status.Healthy {
			c.Logger.WarnContext(ctx, "readiness check failed",
				slog.String("component", checker.Name()),
				slog.String("message", status.Message),
			)
			return false
		}
	}

	return true
}

// GetHealthStatus implements httpserver.HealthChecker.
func (c *Container) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	statuses := make([]httpserver.ComponentStatus, 0, len(c.readiness)+len(c.diagnostics))

	for _, checker := range c.readiness {
		statuses = append(statuses, componentStatus(ctx, checker, httpserver.StatusUnhealthy))
	}
	for _, checker := range c.diagnostics {
		statuses = append(statuses, componentStatus(ctx, checker, httpserver.StatusDegraded))
	}

	return statuses
}

func componentStatus(ctx context.Context, checker appcore.HealthChecker, onFailure string) httpserver.ComponentStatus {
	status := checker.Check(ctx)
	component := httpserver.ComponentStatus{
		Name:    checker.Name(),
		Status:  httpserver.StatusHealthy,
		Message: status.Message,
	}
	if !status.Healthy {
		component.Status = onFailure
	}
	return component
}
