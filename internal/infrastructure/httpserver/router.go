package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lllypuk/reviewguard/internal/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	// Logger is the structured logger for router events.
	Logger *slog.Logger

	// AuthMiddleware guards every route in the authenticated group.
	AuthMiddleware echo.MiddlewareFunc

	// RateLimitMiddleware runs after authentication so callers are keyed by identity.
	RateLimitMiddleware echo.MiddlewareFunc

	// CORSOrigins lists allowed origins; empty allows any origin without credentials.
	CORSOrigins []string

	// LoggingConfig is the logging middleware configuration.
	LoggingConfig middleware.LoggingConfig

	// APIPrefix is the prefix for all API routes. Default is "/api/v1".
	APIPrefix string
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Logger:        slog.Default(),
		LoggingConfig: middleware.DefaultLoggingConfig(),
		APIPrefix:     "/api/v1",
	}
}

// Router manages HTTP route groups and middleware chains.
type Router struct {
	echo   *echo.Echo
	config RouterConfig
	logger *slog.Logger

	public *echo.Group
	auth   *echo.Group
}

// NewRouter creates a new router with the given configuration.
func NewRouter(e *echo.Echo, config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.LoggingConfig.Logger == nil {
		config.LoggingConfig.Logger = config.Logger
	}
	if config.APIPrefix == "" {
		config.APIPrefix = "/api/v1"
	}

	r := &Router{
		echo:   e,
		config: config,
		logger: config.Logger,
	}

	e.HTTPErrorHandler = ErrorHandler(config.Logger)

	// Logging runs outside recovery so the request ID is already set when a panic is logged.
	e.Use(middleware.Logging(config.LoggingConfig))
	e.Use(middleware.Recovery(config.Logger))
	e.Use(middleware.CORS(config.CORSOrigins...))

	r.public = e.Group(config.APIPrefix)

	authMiddleware := make([]echo.MiddlewareFunc, 0, 2)
	if config.AuthMiddleware != nil {
		authMiddleware = append(authMiddleware, config.AuthMiddleware)
	} else {
		r.logger.Warn("no auth middleware configured, review routes are public")
	}
	if config.RateLimitMiddleware != nil {
		authMiddleware = append(authMiddleware, config.RateLimitMiddleware)
	}
	r.auth = r.public.Group("", authMiddleware...)

	return r
}

// Echo returns the underlying Echo instance.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

// Public returns the API route group without authentication.
func (r *Router) Public() *echo.Group {
	return r.public
}

// Auth returns the authenticated route group.
func (r *Router) Auth() *echo.Group {
	return r.auth
}

// RouteRegistrar defines the interface for registering routes.
type RouteRegistrar interface {
	RegisterRoutes(r *Router)
}

// RegisterAll registers all route registrars with the router.
func (r *Router) RegisterAll(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}
}

// RegisterHealthEndpoints registers the probes backed by checker.
func (r *Router) RegisterHealthEndpoints(checker HealthChecker) {
	NewHealthEndpoints(checker).Register(r.echo)
}

// RegisterMetricsEndpoint exposes gatherer at GET /metrics.
func (r *Router) RegisterMetricsEndpoint(gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// PrintRoutes logs all registered routes.
func (r *Router) PrintRoutes() {
	for _, route := range r.echo.Routes() {
		r.logger.Debug("registered route",
			slog.String("method", route.Method),
			slog.String("path", route.Path),
		)
	}
}
