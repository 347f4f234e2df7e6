package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/rodrigo-augusto/customer-api/pkg/config"
	"github.com/rodrigo-augusto/customer-api/pkg/database"
	"github.com/rodrigo-augusto/customer-api/pkg/httpclient"
	"github.com/rodrigo-augusto/customer-api/pkg/logger"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

const defaultHTTPPort = 8080

// Config holds all configuration for the customer service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP server. PORT is honored when HTTP_PORT is unset.
	HTTPPort int `env:"HTTP_PORT"`
	Port     int `env:"PORT"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`

	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"5s"`

	// PostgreSQL
	PostgresHost         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser         string        `env:"POSTGRES_USER" envDefault:"customers"`
	PostgresPass         string        `env:"POSTGRES_PASSWORD" envDefault:"customers"`
	PostgresDB           string        `env:"POSTGRES_DB" envDefault:"customers"`
	PostgresSSL          string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns           int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns           int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime    time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime    time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	SlowQueryThresholdMs int           `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Product catalog
	CatalogBaseURL    string        `env:"CATALOG_BASE_URL" envDefault:"http://challenge-api.luizalabs.com/api/product"`
	CatalogTimeout    time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`
	CatalogMaxRetries int           `env:"CATALOG_MAX_RETRIES" envDefault:"0"`
	// CatalogRateLimit caps lookups per second sent to the catalog; 0 disables it.
	CatalogRateLimit float64 `env:"CATALOG_RATE_LIMIT" envDefault:"0"`
	CatalogRateBurst int     `env:"CATALOG_RATE_BURST" envDefault:"10"`

	// Circuit breaker around the catalog
	CBMaxRequests  uint32        `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     time.Duration `env:"CB_INTERVAL" envDefault:"60s"`
	CBTimeout      time.Duration `env:"CB_TIMEOUT" envDefault:"30s"`
	CBFailureRatio float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Catalog cache (Redis)
	CatalogCacheEnabled bool          `env:"CATALOG_CACHE_ENABLED" envDefault:"false"`
	CatalogCacheTTL     time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`
	RedisHost           string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort           int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load customer-api config: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFrom is Load over an explicit environment.
func loadFrom(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environment); err != nil {
		return nil, fmt.Errorf("load customer-api config: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	if c.HTTPPort == 0 {
		c.HTTPPort = c.Port
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = defaultHTTPPort
	}
	return c.validate()
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.LogFormat {
	case logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: must be %q or %q", c.LogFormat, logger.FormatJSON, logger.FormatText)
	}

	switch c.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: must be %q or %q", c.StorageDriver, StorageMemory, StoragePostgres)
	}

	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CATALOG_BASE_URL %q: must be an absolute http(s) URL", c.CatalogBaseURL)
	}
	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive, got %s", c.CatalogTimeout)
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must not be negative, got %d", c.CatalogMaxRetries)
	}
	if c.CatalogRateLimit < 0 {
		return fmt.Errorf("CATALOG_RATE_LIMIT must not be negative, got %g", c.CatalogRateLimit)
	}
	if c.CatalogRateLimit > 0 && c.CatalogRateBurst < 1 {
		return fmt.Errorf("CATALOG_RATE_BURST must be at least 1 when CATALOG_RATE_LIMIT is set, got %d", c.CatalogRateBurst)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %g", c.CBFailureRatio)
	}
	if c.CatalogCacheEnabled && c.CatalogCacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be positive when the cache is enabled, got %s", c.CatalogCacheTTL)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must be set when KAFKA_ENABLED is true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be in [0, 1], got %g", c.OTELSampleRate)
	}
	return nil
}

// PostgresConfig returns the pool settings for the postgres storage driver.
func (c *Config) PostgresConfig() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// RedisConfig returns the client settings for the catalog cache.
func (c *Config) RedisConfig() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// CircuitBreakerConfig returns the breaker settings for catalog calls.
func (c *Config) CircuitBreakerConfig() httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         "catalog",
		MaxRequests:  c.CBMaxRequests,
		Interval:     c.CBInterval,
		Timeout:      c.CBTimeout,
		FailureRatio: c.CBFailureRatio,
		MinRequests:  c.CBMinRequests,
	}
}
