package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// priceTTL bounds staleness when the feed stops updating a symbol.
const priceTTL = 5 * time.Minute

// PriceCache implements domain.PriceCache using Redis hashes. Each symbol's
// latest trade is stored at "price:{symbol}" with fields "price" (decimal
// string, never float) and "ts" (Unix millisecond timestamp).
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Underlying()}
}

func priceKey(symbol string) string {
	return "price:" + symbol
}

// SetPrice stores the latest trade price and timestamp for a symbol.
func (pc *PriceCache) SetPrice(ctx context.Context, symbol, price string, ts time.Time) error {
	key := priceKey(symbol)

	pipe := pc.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price": price,
		"ts":    strconv.FormatInt(ts.UnixMilli(), 10),
	})
	pipe.Expire(ctx, key, priceTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set price %s: %w", symbol, err)
	}
	return nil
}

// GetPrice retrieves the latest price and timestamp for a symbol. It returns
// domain.ErrNotFound when no price is cached.
func (pc *PriceCache) GetPrice(ctx context.Context, symbol string) (string, time.Time, error) {
	vals, err := pc.rdb.HGetAll(ctx, priceKey(symbol)).Result()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("redis: get price %s: %w", symbol, err)
	}
	if len(vals) == 0 {
		return "", time.Time{}, domain.ErrNotFound
	}

	price, ok := vals["price"]
	if !ok || price == "" {
		return "", time.Time{}, domain.ErrNotFound
	}

	var ts time.Time
	if tsStr, ok := vals["ts"]; ok {
		millis, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("redis: parse ts %s: %w", symbol, err)
		}
		ts = time.UnixMilli(millis)
	}

	return price, ts, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
