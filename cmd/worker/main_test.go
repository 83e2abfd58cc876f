package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/reviewguard/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestGetEnvironment(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "development", getEnvironment(cfg))

	cfg.App.Environment = config.EnvProduction
	assert.Equal(t, "production", getEnvironment(cfg))
}
