package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
	"github.com/rodrigo-augusto/customer-api/pkg/httpclient"
	"github.com/rodrigo-augusto/customer-api/pkg/tracing"
)

const (
	serviceName  = "catalog"
	maxBodyBytes = 1 << 20
)

// Config holds settings for the catalog HTTP client.
type Config struct {
	// BaseURL is the product resource root; products are fetched from
	// {BaseURL}/{id}/.
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Breaker    httpclient.CircuitBreakerConfig

	// RateLimit caps lookups per second; 0 leaves them unlimited. RateBurst
	// below 1 is treated as 1.
	RateLimit float64
	RateBurst int
}

// DefaultConfig returns the settings used against the public challenge catalog.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://challenge-api.luizalabs.com/api/product",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		Breaker:    httpclient.DefaultCircuitBreakerConfig(serviceName),
	}
}

var errRateLimited = errors.New("catalog rate limit exceeded")

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

// getter is satisfied by *httpclient.CircuitBreakerClient.
type getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client fetches products over HTTP through a retrying, circuit-broken client.
type Client struct {
	baseURL string
	http    getter
	logger  *slog.Logger
	tracer  trace.Tracer

	limiter *rate.Limiter
	maxWait time.Duration
}

// NewClient builds a catalog client from cfg.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	httpCfg.MaxRetries = cfg.MaxRetries

	breaker := cfg.Breaker
	if breaker.Name == "" {
		breaker = httpclient.DefaultCircuitBreakerConfig(serviceName)
	}

	cb := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), breaker, logger)
	c := newClient(cfg.BaseURL, cb, logger)
	c.limiter = newLimiter(cfg.RateLimit, cfg.RateBurst)
	c.maxWait = cfg.Timeout
	return c
}

func newClient(baseURL string, g getter, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    g,
		logger:  logger,
		tracer:  tracing.Tracer("catalog"),
	}
}

// GetProduct fetches GET {BaseURL}/{id}/. A 404 or an empty body yields
// ErrProductNotFound; any other failure is returned wrapped.
func (c *Client) GetProduct(ctx context.Context, id string) (product *domain.Product, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.GetProduct",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	start := time.Now()
	defer func() {
		lookupDuration.Observe(time.Since(start).Seconds())
		lookupsTotal.WithLabelValues(sourceHTTP, resultFor(err)).Inc()
		if !errors.Is(err, ErrProductNotFound) {
			tracing.RecordError(span, err)
		}
		span.End()
	}()

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrProductNotFound)
	}

	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	resp, err := c.http.Get(ctx, c.baseURL+"/"+url.PathEscape(id)+"/")
	if err != nil {
		var se *httpclient.ServerError
		switch {
		case httpclient.IsCircuitOpen(err):
			return nil, fmt.Errorf("get product %s: catalog unavailable: %w", id, err)
		case errors.As(err, &se):
			span.SetAttributes(attribute.Int("http.status_code", se.StatusCode))
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := httpclient.ParseResponseError(resp, serviceName)
		if errors.Is(perr, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("get product %s: %w", id, perr)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read product %s: %w", id, err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, fmt.Errorf("%w: %s (empty body)", ErrProductNotFound, id)
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	if p.IsZero() {
		return nil, fmt.Errorf("%w: %s (empty body)", ErrProductNotFound, id)
	}

	c.logger.DebugContext(ctx, "catalog product fetched",
		slog.String("product_id", p.ID),
		slog.String("title", p.Title),
	)
	return &p, nil
}

// wait blocks until the limiter grants a lookup. A token that would not arrive
// within maxWait fails at once instead of queueing.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if c.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxWait)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", errRateLimited, err)
	}
	return nil
}
