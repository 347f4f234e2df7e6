package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
)

const cacheKeyPrefix = "catalog:product:"

// CachedLookup is a Redis read-through cache in front of another Lookup.
// Only successful lookups are cached. Redis failures degrade to a direct
// lookup and never fail the call.
type CachedLookup struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedLookup wraps next with a Redis cache whose entries expire after ttl.
func NewCachedLookup(next Lookup, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetProduct returns the cached product for id or fetches and caches it.
func (c *CachedLookup) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := cacheKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.Product
		if jerr := json.Unmarshal(data, &p); jerr == nil {
			lookupsTotal.WithLabelValues(sourceCache, resultFound).Inc()
			return &p, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt catalog cache entry",
			slog.String("product_id", id),
		)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	p, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "catalog cache write failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	return p, nil
}

// Ping checks Redis connectivity.
func (c *CachedLookup) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
