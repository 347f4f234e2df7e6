package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/rodrigo-augusto/customer-api/internal/catalog"
	"github.com/rodrigo-augusto/customer-api/internal/config"
	"github.com/rodrigo-augusto/customer-api/internal/event"
	handler "github.com/rodrigo-augusto/customer-api/internal/handler/http"
	"github.com/rodrigo-augusto/customer-api/internal/repository"
	"github.com/rodrigo-augusto/customer-api/internal/repository/memory"
	"github.com/rodrigo-augusto/customer-api/internal/repository/postgres"
	"github.com/rodrigo-augusto/customer-api/internal/service"
	"github.com/rodrigo-augusto/customer-api/migrations"
	"github.com/rodrigo-augusto/customer-api/pkg/database"
	"github.com/rodrigo-augusto/customer-api/pkg/health"
	pkgkafka "github.com/rodrigo-augusto/customer-api/pkg/kafka"
	"github.com/rodrigo-augusto/customer-api/pkg/middleware"
	"github.com/rodrigo-augusto/customer-api/pkg/tracing"
)

const serviceName = "customer-api"

// App wires together all dependencies and runs the customer service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler(health.WithTimeout(cfg.ReadinessTimeout))

	// Customer storage.
	repo, err := a.openStorage(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	// Product catalog, optionally fronted by a Redis cache.
	var lookup catalog.Lookup = catalog.NewClient(catalog.Config{
		BaseURL:    cfg.CatalogBaseURL,
		Timeout:    cfg.CatalogTimeout,
		MaxRetries: cfg.CatalogMaxRetries,
		RateLimit:  cfg.CatalogRateLimit,
		RateBurst:  cfg.CatalogRateBurst,
		Breaker:    cfg.CircuitBreakerConfig(),
	}, logger)
	logger.Info("catalog client initialized", slog.String("base_url", cfg.CatalogBaseURL))

	if cfg.CatalogCacheEnabled {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisConfig())
		if err != nil {
			logger.Warn("catalog cache disabled, redis unavailable",
				slog.String("addr", cfg.RedisConfig().Addr()),
				slog.String("error", err.Error()),
			)
		} else {
			a.rdb = rdb
			cached := catalog.NewCachedLookup(lookup, rdb, cfg.CatalogCacheTTL, logger)
			healthHandler.RegisterNonCritical("redis", cached.Ping)
			lookup = cached
			logger.Info("catalog cache enabled",
				slog.String("addr", cfg.RedisConfig().Addr()),
				slog.Duration("ttl", cfg.CatalogCacheTTL),
			)
		}
	}

	// Domain events. A nil publisher disables them.
	var publisher event.Publisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	eventProducer := event.NewProducer(publisher, logger)

	customerService := service.NewCustomerService(repo, lookup, eventProducer, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(customerService, healthHandler, logger, corsCfg)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// openStorage returns the customer repository selected by STORAGE_DRIVER and
// registers its health check.
func (a *App) openStorage(ctx context.Context, hh *health.Handler) (repository.CustomerRepository, error) {
	if a.cfg.StorageDriver != config.StoragePostgres {
		repo := memory.NewCustomerRepository()
		hh.RegisterCritical("storage", repo.Ping)
		a.logger.Info("using in-memory customer storage")
		return repo, nil
	}

	pgCfg := a.cfg.PostgresConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("db", pgCfg.DBName),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if a.cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	}

	repo := postgres.NewCustomerRepository(pool)
	hh.RegisterCritical("postgres", repo.Ping)
	return repo, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer, Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	errs = append(errs, a.closeResources()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases everything except the HTTP server. It is also used
// to unwind a partially built App.
func (a *App) closeResources() []error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.rdb = nil
	}

	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	return errs
}
