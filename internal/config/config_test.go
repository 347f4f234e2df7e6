package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFrom(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.ReadinessTimeout)
	assert.Equal(t, "http://challenge-api.luizalabs.com/api/product", cfg.CatalogBaseURL)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 0, cfg.CatalogMaxRetries)
	assert.Zero(t, cfg.CatalogRateLimit)
	assert.Equal(t, 10, cfg.CatalogRateBurst)
	assert.False(t, cfg.CatalogCacheEnabled)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.OTELEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("CATALOG_TIMEOUT", "750ms")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.CatalogTimeout)
}

func TestLoad_PortFallback(t *testing.T) {
	cfg, err := loadFrom(map[string]string{"PORT": "3000"})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTPPort)

	cfg, err = loadFrom(map[string]string{"PORT": "3000", "HTTP_PORT": "4000"})
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.HTTPPort, "HTTP_PORT wins over PORT")
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := loadFrom(map[string]string{
		"CATALOG_BASE_URL":      "https://catalog.internal/api/product",
		"CATALOG_MAX_RETRIES":   "2",
		"CATALOG_CACHE_ENABLED": "true",
		"CATALOG_CACHE_TTL":     "1m",
		"KAFKA_ENABLED":         "true",
		"KAFKA_BROKERS":         "k1:9092,k2:9092",
		"CORS_ALLOWED_ORIGINS":  "https://a.example,https://b.example",
		"CB_FAILURE_RATIO":      "0.25",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.CatalogMaxRetries)
	assert.True(t, cfg.CatalogCacheEnabled)
	assert.Equal(t, time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.InDelta(t, 0.25, cfg.CircuitBreakerConfig().FailureRatio, 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port too high", map[string]string{"HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"negative port", map[string]string{"HTTP_PORT": "-1"}, "invalid HTTP port"},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}, "invalid STORAGE_DRIVER"},
		{"relative catalog url", map[string]string{"CATALOG_BASE_URL": "/api/product"}, "invalid CATALOG_BASE_URL"},
		{"ftp catalog url", map[string]string{"CATALOG_BASE_URL": "ftp://host/api"}, "invalid CATALOG_BASE_URL"},
		{"zero timeout", map[string]string{"CATALOG_TIMEOUT": "0s"}, "CATALOG_TIMEOUT"},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}, "invalid LOG_FORMAT"},
		{"negative retries", map[string]string{"CATALOG_MAX_RETRIES": "-1"}, "CATALOG_MAX_RETRIES"},
		{"negative rate limit", map[string]string{"CATALOG_RATE_LIMIT": "-1"}, "CATALOG_RATE_LIMIT"},
		{"rate limit without burst", map[string]string{"CATALOG_RATE_LIMIT": "5", "CATALOG_RATE_BURST": "0"}, "CATALOG_RATE_BURST"},
		{"bad ratio", map[string]string{"CB_FAILURE_RATIO": "1.5"}, "CB_FAILURE_RATIO"},
		{"cache without ttl", map[string]string{"CATALOG_CACHE_ENABLED": "true", "CATALOG_CACHE_TTL": "0s"}, "CATALOG_CACHE_TTL"},
		{"bad sample rate", map[string]string{"OTEL_SAMPLE_RATE": "2"}, "OTEL_SAMPLE_RATE"},
		{"unparseable duration", map[string]string{"CATALOG_TIMEOUT": "soon"}, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFrom(tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_PostgresConfig(t *testing.T) {
	cfg, err := loadFrom(map[string]string{
		"POSTGRES_HOST":     "db",
		"POSTGRES_PASSWORD": "secret",
		"DB_MAX_CONNS":      "20",
	})
	require.NoError(t, err)

	pg := cfg.PostgresConfig()
	assert.Equal(t, "db", pg.Host)
	assert.Equal(t, 5432, pg.Port)
	assert.Equal(t, "secret", pg.Password)
	assert.Equal(t, int32(20), pg.MaxConns)
	assert.Equal(t, int32(2), pg.MinConns)
	assert.Equal(t, time.Hour, pg.MaxConnLifetime)
}

func TestConfig_RedisConfig(t *testing.T) {
	cfg, err := loadFrom(map[string]string{"REDIS_HOST": "cache", "REDIS_PORT": "6380"})
	require.NoError(t, err)

	rc := cfg.RedisConfig()
	assert.Equal(t, "cache:6380", rc.Addr())
	assert.Equal(t, 2*time.Second, rc.DialTimeout)
}
