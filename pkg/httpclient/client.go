package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var retriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_client_retries_total",
		Help: "Outbound HTTP requests retried, by target host and reason",
	},
	[]string{"host", "reason"},
)

// Doer executes an HTTP request. Both Client and CircuitBreakerClient
// satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds outbound HTTP client settings.
type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	MaxConnsPerHost int
	UserAgent       string
}

// DefaultConfig returns the settings used for upstream calls. Retries are
// off unless a caller opts in.
func DefaultConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		RetryWaitMin:    100 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 100,
		UserAgent:       "customer-api",
	}
}

// Client is an http.Client with pooled connections, bounded retries and
// trace context propagation.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// Do sends req, retrying transport errors and retryable 5xx responses up to
// MaxRetries times with capped exponential backoff. The final response is
// returned as is, whatever its status.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if !rewindBody(req) {
				return nil, fmt.Errorf("http request failed after %d attempts: body cannot be replayed", attempt)
			}
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.httpClient.Do(req)
		last := attempt >= c.config.MaxRetries || ctx.Err() != nil

		reason := retryReason(resp, err)
		if reason == "" || last {
			if err != nil {
				return nil, fmt.Errorf("http request failed after %d attempts: %w", attempt+1, err)
			}
			return resp, nil
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		retriesTotal.WithLabelValues(req.URL.Host, reason).Inc()
	}
}

// Get issues a GET that accepts JSON.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(ctx, req)
}

// backoff returns the wait before attempt (1-indexed), doubling from
// RetryWaitMin up to RetryWaitMax with 25% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	wait := c.config.RetryWaitMin << uint(attempt-1)
	if wait <= 0 || (c.config.RetryWaitMax > 0 && wait > c.config.RetryWaitMax) {
		wait = c.config.RetryWaitMax
	}
	return addJitter(wait)
}

// retryReason classifies an attempt. An empty reason means the outcome is
// final.
func retryReason(resp *http.Response, err error) string {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ""
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return "network"
		}
		return ""
	}
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented {
		return "status_5xx"
	}
	return ""
}

func rewindBody(req *http.Request) bool {
	if req.Body == nil || req.Body == http.NoBody {
		return true
	}
	if req.GetBody == nil {
		return false
	}
	body, err := req.GetBody()
	if err != nil {
		return false
	}
	req.Body = body
	return true
}

// addJitter spreads d by up to 25% in either direction.
func addJitter(d time.Duration) time.Duration {
	spread := int64(d) / 4
	if spread <= 0 {
		return d
	}
	return d + time.Duration(rand.Int64N(2*spread+1)-spread)
}
