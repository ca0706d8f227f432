package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateCache implements ports.RateCache using Redis. Rates are stored as
// decimal strings so no float precision is lost on the round trip.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed exchange rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "exchange_rate:",
	}
}

// Get retrieves a cached rate for the given currency code.
// The second return value is false when no rate is cached.
func (c *RateCache) Get(ctx context.Context, currency string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+currency).Result()
	if err != nil {
		if err == goredis.Nil {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis rate get: %w", err)
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis rate parse: %w", err)
	}
	return rate, true, nil
}

// Set stores a rate for the given currency code with TTL.
func (c *RateCache) Set(ctx context.Context, currency string, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+currency, rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis rate set: %w", err)
	}
	return nil
}
