// Package config provides configuration loading and validation for the application.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "64K"

	DefaultMongoDBTimeout     = 10 * time.Second
	DefaultMongoDBMaxPoolSize = 100

	DefaultRedisPoolSize = 10

	DefaultJWTLeeway          = 30 * time.Second
	DefaultJWTRefreshInterval = 1 * time.Hour

	DefaultRevocationPrefix = "reviewguard:revoked:"

	DefaultAnomalyChannel        = "reviewguard:anomalies"
	DefaultAnomalyJournalKey     = "reviewguard:anomalies:journal"
	DefaultAnomalyJournalMax     = 1000
	DefaultAnomalyPublishTimeout = 2 * time.Second

	DefaultRaceDelay     = 150 * time.Millisecond
	DefaultRaceThreshold = 2

	DefaultRateLimit       = 120
	DefaultRateLimitWindow = time.Minute
	DefaultRateLimitPrefix = "reviewguard:ratelimit:"

	DefaultConsistencyInterval = 5 * time.Minute
	DefaultWorkerMetricsAddr   = ":9091"

	minJWTSecretLength = 32
)

// AppMode defines the application wiring mode.
type AppMode string

// Application wiring modes.
const (
	// AppModeReal uses MongoDB and Redis.
	// This is the default mode and should be used in production.
	AppModeReal AppMode = "real"

	// AppModeMock uses the in-memory review store and no Redis.
	// This mode is NOT allowed in production environments.
	AppModeMock AppMode = "mock"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the complete application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	MongoDB   MongoDBConfig   `yaml:"mongodb"`
	Redis     RedisConfig     `yaml:"redis"`
	Keycloak  KeycloakConfig  `yaml:"keycloak"`
	Auth      AuthConfig      `yaml:"auth"`
	Anomaly   AnomalyConfig   `yaml:"anomaly"`
	Reviews   ReviewsConfig   `yaml:"reviews"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Worker    WorkerConfig    `yaml:"worker"`
	Log       LogConfig       `yaml:"log"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	// Mode controls dependency wiring: "real" (default) or "mock".
	// In production, only "real" mode is allowed.
	Mode AppMode `yaml:"mode" env:"APP_MODE"`

	// Name is the application name used in logs.
	Name string `yaml:"name" env:"APP_NAME"`

	// Environment is "development" or "production".
	Environment string `yaml:"environment" env:"APP_ENV"`
}

// IsRealMode returns true if the application should use real implementations.
func (c AppConfig) IsRealMode() bool {
	return c.Mode == "" || c.Mode == AppModeReal
}

// IsMockMode returns true if the application should use mock implementations.
func (c AppConfig) IsMockMode() bool {
	return c.Mode == AppModeMock
}

// ServerConfig holds HTTP server configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	BodyLimit       string        `yaml:"body_limit" env:"SERVER_BODY_LIMIT"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
}

// Address returns the full server address (host:port).
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MongoDBConfig holds MongoDB connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type MongoDBConfig struct {
	URI         string        `yaml:"uri" env:"MONGODB_URI"`
	Database    string        `yaml:"database" env:"MONGODB_DATABASE"`
	Timeout     time.Duration `yaml:"timeout" env:"MONGODB_TIMEOUT"`
	MaxPoolSize uint64        `yaml:"max_pool_size" env:"MONGODB_MAX_POOL_SIZE"`
}

// RedisConfig holds Redis connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

// KeycloakConfig holds Keycloak token validation configuration.
// When disabled, tokens are validated with auth.jwt_secret instead.
//
//nolint:golines // Struct tags require longer lines for readability
type KeycloakConfig struct {
	Enabled           bool      `yaml:"enabled" env:"KEYCLOAK_ENABLED"`
	URL               string    `yaml:"url" env:"KEYCLOAK_URL"`
	Realm             string    `yaml:"realm" env:"KEYCLOAK_REALM"`
	Audience          string    `yaml:"audience" env:"KEYCLOAK_AUDIENCE"`
	VerifiedEmailOnly bool      `yaml:"verified_email_only" env:"KEYCLOAK_VERIFIED_EMAIL_ONLY"`
	JWT               JWTConfig `yaml:"jwt"`
}

// JWTConfig holds JWT validation configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type JWTConfig struct {
	Leeway          time.Duration `yaml:"leeway" env:"KEYCLOAK_JWT_LEEWAY"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"KEYCLOAK_JWT_REFRESH_INTERVAL"`
}

// AuthConfig holds authentication configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	Issuer           string `yaml:"issuer" env:"AUTH_ISSUER"`
	RevocationPrefix string `yaml:"revocation_prefix" env:"AUTH_REVOCATION_PREFIX"`
}

// AnomalyConfig holds anomaly signal delivery configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type AnomalyConfig struct {
	// Enabled publishes observed signals to Redis for the worker. Ignored in mock mode.
	Enabled        bool          `yaml:"enabled" env:"ANOMALY_ENABLED"`
	Channel        string        `yaml:"channel" env:"ANOMALY_CHANNEL"`
	JournalKey     string        `yaml:"journal_key" env:"ANOMALY_JOURNAL_KEY"`
	JournalMax     int64         `yaml:"journal_max" env:"ANOMALY_JOURNAL_MAX"`
	PublishTimeout time.Duration `yaml:"publish_timeout" env:"ANOMALY_PUBLISH_TIMEOUT"`
}

// ReviewsConfig holds review behaviour configuration.
type ReviewsConfig struct {
	RaceSimulation RaceSimulationConfig `yaml:"race_simulation"`

	// ConsistencyTolerance is how many inconsistent reviews the health check accepts.
	ConsistencyTolerance int64 `yaml:"consistency_tolerance" env:"REVIEWS_CONSISTENCY_TOLERANCE"`
}

// RaceSimulationConfig enables the two-phase like used to reproduce the like race.
//
//nolint:golines // Struct tags require longer lines for readability
type RaceSimulationConfig struct {
	Enabled   bool          `yaml:"enabled" env:"REVIEWS_RACE_SIMULATION_ENABLED"`
	Delay     time.Duration `yaml:"delay" env:"REVIEWS_RACE_SIMULATION_DELAY"`
	Threshold int           `yaml:"threshold" env:"REVIEWS_RACE_SIMULATION_THRESHOLD"`
}

// RateLimitConfig holds request rate limiting configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type RateLimitConfig struct {
	Enabled   bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	Limit     int           `yaml:"limit" env:"RATE_LIMIT_LIMIT"`
	Window    time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW"`
	Burst     int           `yaml:"burst" env:"RATE_LIMIT_BURST"`
	PerRoute  bool          `yaml:"per_route" env:"RATE_LIMIT_PER_ROUTE"`
	KeyPrefix string        `yaml:"key_prefix" env:"RATE_LIMIT_KEY_PREFIX"`
}

// WorkerConfig configures the background worker process.
type WorkerConfig struct {
	// ConsistencyEnabled turns on the periodic likesCount == |likedBy| sweep.
	ConsistencyEnabled  bool          `yaml:"consistency_enabled" env:"WORKER_CONSISTENCY_ENABLED"`
	ConsistencyInterval time.Duration `yaml:"consistency_interval" env:"WORKER_CONSISTENCY_INTERVAL"`

	// MetricsAddr serves /metrics for the worker. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr" env:"WORKER_METRICS_ADDR"`
}

// LogConfig holds logging configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json | text
}

// Configuration errors.
var (
	ErrConfigNotFound          = errors.New("configuration file not found")
	ErrConfigInvalid           = errors.New("invalid configuration")
	ErrMissingRequired         = errors.New("missing required configuration")
	ErrInvalidDuration         = errors.New("invalid duration format")
	ErrInvalidLogLevel         = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat        = errors.New("invalid log format: must be json or text")
	ErrInvalidAppMode          = errors.New("invalid app mode: must be real or mock")
	ErrInvalidEnvironment      = errors.New("invalid environment: must be development or production")
	ErrMockModeInProd          = errors.New("mock mode is not allowed in production")
	ErrRaceSimulationInProd    = errors.New("reviews.race_simulation is not allowed in production")
	ErrDevSecretInProd         = errors.New("auth.jwt_secret must be changed in production")
	ErrWeakJWTSecret           = errors.New("auth.jwt_secret must be at least 32 bytes")
)

const devJWTSecret = "dev-secret-change-in-production-0123456789"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Mode:        AppModeReal,
			Name:        "reviewguard",
			Environment: EnvDevelopment,
		},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			BodyLimit:       DefaultBodyLimit,
		},
		MongoDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "reviewguard",
			Timeout:     DefaultMongoDBTimeout,
			MaxPoolSize: DefaultMongoDBMaxPoolSize,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: DefaultRedisPoolSize,
		},
		Keycloak: KeycloakConfig{
			Enabled: false,
			URL:     "http://localhost:8090",
			Realm:   "reviewguard",
			JWT: JWTConfig{
				Leeway:          DefaultJWTLeeway,
				RefreshInterval: DefaultJWTRefreshInterval,
			},
		},
		Auth: AuthConfig{
			JWTSecret:        devJWTSecret,
			Issuer:           "reviewguard",
			RevocationPrefix: DefaultRevocationPrefix,
		},
		Anomaly: AnomalyConfig{
			Enabled:        true,
			Channel:        DefaultAnomalyChannel,
			JournalKey:     DefaultAnomalyJournalKey,
			JournalMax:     DefaultAnomalyJournalMax,
			PublishTimeout: DefaultAnomalyPublishTimeout,
		},
		Reviews: ReviewsConfig{
			RaceSimulation: RaceSimulationConfig{
				Enabled:   false,
				Delay:     DefaultRaceDelay,
				Threshold: DefaultRaceThreshold,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:   false,
			Limit:     DefaultRateLimit,
			Window:    DefaultRateLimitWindow,
			KeyPrefix: DefaultRateLimitPrefix,
		},
		Worker: WorkerConfig{
			ConsistencyEnabled:  true,
			ConsistencyInterval: DefaultConsistencyInterval,
			MetricsAddr:         DefaultWorkerMetricsAddr,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateApp(errs)
	errs = c.validateServer(errs)
	errs = c.validateStorage(errs)
	errs = c.validateAuth(errs)
	errs = c.validateAnomaly(errs)
	errs = c.validateReviews(errs)
	errs = c.validateRateLimit(errs)
	errs = c.validateWorker(errs)
	errs = c.validateLog(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}

	return nil
}

// validateApp validates application configuration.
func (c *Config) validateApp(errs []error) []error {
	if c.App.Mode != "" && c.App.Mode != AppModeReal && c.App.Mode != AppModeMock {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidAppMode, c.App.Mode))
	}
	if c.App.Environment != EnvDevelopment && c.App.Environment != EnvProduction {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidEnvironment, c.App.Environment))
	}
	if c.App.IsMockMode() && c.IsProduction() {
		errs = append(errs, ErrMockModeInProd)
	}
	return errs
}

// validateServer validates server configuration.
func (c *Config) validateServer(errs []error) []error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	return errs
}

// validateStorage validates MongoDB and Redis configuration. Neither is used in mock mode.
func (c *Config) validateStorage(errs []error) []error {
	if c.App.IsMockMode() {
		return errs
	}
	if c.MongoDB.URI == "" {
		errs = append(errs, errors.New("mongodb.uri is required"))
	}
	if c.MongoDB.Database == "" {
		errs = append(errs, errors.New("mongodb.database is required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	return errs
}

// validateAuth validates authentication configuration.
func (c *Config) validateAuth(errs []error) []error {
	if c.Keycloak.Enabled {
		if c.Keycloak.URL == "" || c.Keycloak.Realm == "" {
			errs = append(errs, fmt.Errorf("%w: keycloak.url and keycloak.realm", ErrMissingRequired))
		}
		return errs
	}

	switch {
	case c.Auth.JWTSecret == "":
		errs = append(errs, fmt.Errorf("%w: auth.jwt_secret", ErrMissingRequired))
	case len(c.Auth.JWTSecret) < minJWTSecretLength:
		errs = append(errs, ErrWeakJWTSecret)
	case c.Auth.JWTSecret == devJWTSecret && c.IsProduction():
		errs = append(errs, ErrDevSecretInProd)
	}
	return errs
}

// validateAnomaly validates anomaly delivery configuration.
func (c *Config) validateAnomaly(errs []error) []error {
	if !c.Anomaly.Enabled {
		return errs
	}
	if c.Anomaly.Channel == "" {
		errs = append(errs, fmt.Errorf("%w: anomaly.channel", ErrMissingRequired))
	}
	if c.Anomaly.PublishTimeout <= 0 {
		errs = append(errs, errors.New("anomaly.publish_timeout must be positive"))
	}
	return errs
}

// validateReviews validates review behaviour configuration.
func (c *Config) validateReviews(errs []error) []error {
	sim := c.Reviews.RaceSimulation
	if sim.Enabled && c.IsProduction() {
		errs = append(errs, ErrRaceSimulationInProd)
	}
	if sim.Delay < 0 {
		errs = append(errs, errors.New("reviews.race_simulation.delay must not be negative"))
	}
	if sim.Threshold < 0 {
		errs = append(errs, errors.New("reviews.race_simulation.threshold must not be negative"))
	}
	if c.Reviews.ConsistencyTolerance < 0 {
		errs = append(errs, errors.New("reviews.consistency_tolerance must not be negative"))
	}
	return errs
}

// validateRateLimit validates rate limiting configuration.
func (c *Config) validateRateLimit(errs []error) []error {
	if !c.RateLimit.Enabled {
		return errs
	}
	if c.RateLimit.Limit <= 0 {
		errs = append(errs, errors.New("rate_limit.limit must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive"))
	}
	if c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit.burst must not be negative"))
	}
	return errs
}

// validateWorker validates background worker configuration.
func (c *Config) validateWorker(errs []error) []error {
	if c.Worker.ConsistencyEnabled && c.Worker.ConsistencyInterval <= 0 {
		errs = append(errs, errors.New("worker.consistency_interval must be positive"))
	}
	return errs
}

// validateLog validates logging configuration.
func (c *Config) validateLog(errs []error) []error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ErrInvalidLogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

// Load loads configuration from the default config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific file path.
// If path is empty, it tries to find the config file in standard locations.
func LoadFromPath(path string) (*Config, error) {
	loader := NewLoader()
	return loader.Load(path)
}

// Loader handles configuration loading from files and environment variables.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"configs/config.yaml",
			"config.yaml",
			"/etc/reviewguard/config.yaml",
		},
	}
}

// WithConfigPaths sets custom config paths to search.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load loads configuration from file and environment variables.
func (l *Loader) Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	// Determine config file path
	configPath := path
	if configPath == "" {
		// Check CONFIG_PATH environment variable first
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
		} else {
			// Search in standard locations
			for _, p := range l.configPaths {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
		}
	}

	// Load from file if found
	if configPath != "" {
		if err := l.loadFromFile(cfg, configPath); err != nil {
			// Only return error if path was explicitly specified
			if path != "" || os.Getenv("CONFIG_PATH") != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			// Otherwise, continue with defaults + env vars
		}
	}

	// Override with environment variables
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (l *Loader) loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.loadEnvToStruct(reflect.ValueOf(cfg).Elem())
}

// loadEnvToStruct recursively loads environment variables into a struct.
func (l *Loader) loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Handle embedded structs
		if field.Kind() == reflect.Struct {
			if err := l.loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		// Get env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		// Get environment variable value
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		// Set field value based on type
		if err := l.setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromEnv sets a struct field value from an environment variable string.
//
//nolint:exhaustive // We only support a subset of reflect.Kind for config values
func (l *Loader) setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// Check if it's a time.Duration
		if field.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %s", value)
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", value)
		}
		field.SetUint(u)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		parts := strings.Split(value, ",")
		items := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		field.Set(reflect.ValueOf(items))

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// IsDevelopment returns true unless the environment is production.
func (c *Config) IsDevelopment() bool {
	return !c.IsProduction()
}

// IsProduction returns true if the configured environment is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}
