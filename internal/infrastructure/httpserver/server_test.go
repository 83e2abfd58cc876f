package httpserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
)

func TestNewServer(t *testing.T) {
	e := echo.New()
	server := httpserver.NewServer(e, httpserver.ServerConfig{
		Host:            "127.0.0.1",
		Port:            3000,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    20 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}, nil)

	require.Same(t, e, server.Echo())
	assert.True(t, e.HideBanner)
	assert.True(t, e.HidePort)
	assert.Equal(t, 15*time.Second, e.Server.ReadTimeout)
	assert.Equal(t, 20*time.Second, e.Server.WriteTimeout)
	assert.Equal(t, httpserver.DefaultMaxHeaderBytes, e.Server.MaxHeaderBytes)
	assert.Equal(t, "127.0.0.1:3000", server.Address())
}

func TestNewServer_FillsZeroFields(t *testing.T) {
	e := echo.New()
	server := httpserver.NewServer(e, httpserver.ServerConfig{Port: 9000}, nil)

	assert.Equal(t, "0.0.0.0:9000", server.Address())
	assert.Equal(t, httpserver.DefaultReadTimeout, e.Server.ReadTimeout)
	assert.Equal(t, httpserver.DefaultWriteTimeout, e.Server.WriteTimeout)
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	server := httpserver.NewServer(echo.New(), httpserver.DefaultServerConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
}

