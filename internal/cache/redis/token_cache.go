package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

const (
	tokenListKey = "alphadesk:tokens"
	tokenListTTL = time.Hour
)

// TokenCache implements domain.TokenCache: the full Alpha token list as one
// JSON blob with a 1-hour TTL. Token metadata moves slowly; a stale hour is
// acceptable and a refetch is cheap.
type TokenCache struct {
	rdb *redis.Client
}

// NewTokenCache creates a TokenCache backed by the given Client.
func NewTokenCache(c *Client) *TokenCache {
	return &TokenCache{rdb: c.Underlying()}
}

// Set stores the token list, resetting the TTL.
func (tc *TokenCache) Set(ctx context.Context, tokens []domain.Token) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("redis: marshal token list: %w", err)
	}
	if err := tc.rdb.Set(ctx, tokenListKey, data, tokenListTTL).Err(); err != nil {
		return fmt.Errorf("redis: set token list: %w", err)
	}
	return nil
}

// Get returns the cached token list, or ErrNotFound when absent or expired.
func (tc *TokenCache) Get(ctx context.Context) ([]domain.Token, error) {
	data, err := tc.rdb.Get(ctx, tokenListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get token list: %w", err)
	}

	var tokens []domain.Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("redis: unmarshal token list: %w", err)
	}
	return tokens, nil
}

// Clear drops the cached list, forcing the next read to refetch.
func (tc *TokenCache) Clear(ctx context.Context) error {
	if err := tc.rdb.Del(ctx, tokenListKey).Err(); err != nil {
		return fmt.Errorf("redis: clear token list: %w", err)
	}
	return nil
}

// RemainingTTL reports the time until the cached list expires, zero when no
// list is cached.
func (tc *TokenCache) RemainingTTL(ctx context.Context) (time.Duration, error) {
	ttl, err := tc.rdb.TTL(ctx, tokenListKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: token list ttl: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Compile-time interface check.
var _ domain.TokenCache = (*TokenCache)(nil)
