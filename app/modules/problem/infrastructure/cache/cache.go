package problemcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/redis/go-redis/v9"
)

// CatalogKey is the Redis key holding the serialized problem catalog.
const CatalogKey = "lockout:catalog:v1"

// CatalogSource fetches the problem catalog.
type CatalogSource interface {
	ProblemCatalog(ctx context.Context) ([]problemdomain.Problem, error)
}

// Cache serves the problem catalog from Redis, falling back to the source.
type Cache struct {
	client  redis.UniversalClient
	source  CatalogSource
	ttl     time.Duration
	metrics observability.CacheMetrics
	logger  *slog.Logger
}

// NewRedisClient opens and pings a client for cfg.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("addr cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        10,
		MinIdleConns:    1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// New wraps source with a Redis-backed cache.
func New(client redis.UniversalClient, source CatalogSource, ttl time.Duration, metrics observability.CacheMetrics, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Cache{client: client, source: source, ttl: ttl, metrics: metrics, logger: logger}
}

// ProblemCatalog returns the cached catalog, refreshing it from the source on a miss.
// Redis failures degrade to a direct fetch.
func (c *Cache) ProblemCatalog(ctx context.Context) ([]problemdomain.Problem, error) {
	raw, err := c.client.Get(ctx, CatalogKey).Bytes()
	switch {
	case err == nil:
		var catalog []problemdomain.Problem
		jsonErr := json.Unmarshal(raw, &catalog)
		if jsonErr == nil {
			c.metrics.RecordCacheHit(ctx, CatalogKey)
			return catalog, nil
		}
		c.logger.WarnContext(ctx, "Discarding corrupt catalog cache entry", slog.Any("error", jsonErr))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "Catalog cache read failed", slog.Any("error", err))
	}

	c.metrics.RecordCacheMiss(ctx, CatalogKey)
	catalog, err := c.source.ProblemCatalog(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(catalog)
	if err != nil {
		return catalog, nil
	}
	if err := c.client.Set(ctx, CatalogKey, body, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Catalog cache write failed", slog.Any("error", err))
	}
	return catalog, nil
}
