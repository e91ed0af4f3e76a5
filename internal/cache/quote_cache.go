// Package cache publishes derived pair quotes to Redis for external
// consumers (dashboards, alerting). The gateway works fine without it; an
// unconfigured cache is a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/vedant-shah/pair/internal/domain"
)

const quoteTTL = 30 * time.Second

// QuoteCache mirrors the latest pair quote into Redis. A nil *QuoteCache is
// valid and publishes nothing.
type QuoteCache struct {
	client *redis.Client
}

// NewQuoteCache connects to Redis at addr. An empty addr returns a nil cache
// (publishing disabled) without error.
func NewQuoteCache(addr string, db int) (*QuoteCache, error) {
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &QuoteCache{client: client}, nil
}

// Publish stores the quote under pair:<first>/<second>. Errors are logged,
// never propagated: the cache is an optional mirror, not a dependency of the
// hotpath.
func (c *QuoteCache) Publish(ctx context.Context, q domain.PairQuote) {
	if c == nil {
		return
	}

	key := fmt.Sprintf("pair:%s/%s", q.First, q.Second)
	data, err := json.Marshal(q)
	if err != nil {
		slog.Warn("Quote cache marshal failed", "err", err)
		return
	}

	if err := c.client.Set(ctx, key, data, quoteTTL).Err(); err != nil {
		slog.Warn("Quote cache publish failed", "key", key, "err", err)
	}
}

// Latest reads back the most recently published quote for the pair. ok is
// false when the key is missing or expired.
func (c *QuoteCache) Latest(ctx context.Context, first, second string) (domain.PairQuote, bool, error) {
	if c == nil {
		return domain.PairQuote{}, false, nil
	}

	key := fmt.Sprintf("pair:%s/%s", first, second)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.PairQuote{}, false, nil
		}
		return domain.PairQuote{}, false, fmt.Errorf("failed to get quote from redis: %w", err)
	}

	var q domain.PairQuote
	if err := json.Unmarshal(data, &q); err != nil {
		return domain.PairQuote{}, false, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return q, true, nil
}

// Close releases the Redis connection.
func (c *QuoteCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
