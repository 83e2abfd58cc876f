// Package main provides the API server entry point.
package main

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/lllypuk/reviewguard/internal/config"
	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
	"github.com/lllypuk/reviewguard/internal/middleware"
)

// publicPaths bypass authentication and rate limiting.
var publicPaths = []string{
	"/health",
	"/ready",
	"/health/details",
	"/metrics",
}

// SetupRoutes configures all API routes and middleware chains.
func SetupRoutes(c *Container) *httpserver.Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	bodyLimit := c.Config.Server.BodyLimit
	if bodyLimit == "" {
		bodyLimit = config.DefaultBodyLimit
	}
	e.Use(echomw.BodyLimit(bodyLimit))

	routerConfig := httpserver.RouterConfig{
		Logger: c.Logger,
		AuthMiddleware: middleware.Auth(middleware.AuthConfig{
			Logger:         c.Logger,
			TokenValidator: c.TokenValidator,
			Revocations:    revocationChecker(c),
			SkipPaths:      publicPaths,
		}),
		RateLimitMiddleware: rateLimitMiddleware(c),
		CORSOrigins:         c.Config.Server.CORSOrigins,
		LoggingConfig:       middleware.DefaultLoggingConfig(),
		APIPrefix:           "/api/v1",
	}

	router := httpserver.NewRouter(e, routerConfig)

	router.RegisterHealthEndpoints(c)
	router.RegisterMetricsEndpoint(c.Registry)

	router.RegisterAll(c.ReviewHandler, c.AuthHandler)

	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}

// revocationChecker avoids handing the middleware a typed nil.
func revocationChecker(c *Container) middleware.RevocationChecker {
	if c.Revocations == nil {
		return nil
	}
	return c.Revocations
}

// rateLimitMiddleware returns nil when rate limiting is disabled.
func rateLimitMiddleware(c *Container) echo.MiddlewareFunc {
	if c.RateLimitStore == nil {
		return nil
	}

	rl := c.Config.RateLimit
	return middleware.RateLimit(middleware.RateLimitConfig{
		Logger:    c.Logger,
		Store:     c.RateLimitStore,
		Limit:     rl.Limit,
		Window:    rl.Window,
		BurstSize: rl.Burst,
		PerRoute:  rl.PerRoute,
		SkipPaths: publicPaths,
	})
}
