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

const credKey = "alphadesk:cred"

// CredCache implements domain.CredentialCache on a single Redis key. The
// stored credential carries its own expiry stamp; expiry is enforced on read
// against the injected clock, with the Redis key TTL as a backstop.
type CredCache struct {
	rdb *redis.Client
	now func() time.Time
}

// NewCredCache creates a CredCache backed by the given Client.
func NewCredCache(c *Client) *CredCache {
	return &CredCache{rdb: c.Underlying(), now: time.Now}
}

// WithClock overrides the cache's clock. Test use.
func (cc *CredCache) WithClock(now func() time.Time) *CredCache {
	cc.now = now
	return cc
}

// Set stores the credential for the remainder of its validity window.
func (cc *CredCache) Set(ctx context.Context, cred domain.Credential) error {
	remaining := cred.Remaining(cc.now())
	if remaining <= 0 {
		return fmt.Errorf("redis: set credential: %w", domain.ErrExpired)
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("redis: marshal credential: %w", err)
	}
	if err := cc.rdb.Set(ctx, credKey, data, remaining).Err(); err != nil {
		return fmt.Errorf("redis: set credential: %w", err)
	}
	return nil
}

// Get returns the stored credential. A missing key maps to ErrNotFound; a
// stored but stale credential maps to ErrExpired and the entry is removed.
func (cc *CredCache) Get(ctx context.Context) (domain.Credential, error) {
	data, err := cc.rdb.Get(ctx, credKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Credential{}, domain.ErrNotFound
		}
		return domain.Credential{}, fmt.Errorf("redis: get credential: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return domain.Credential{}, fmt.Errorf("redis: unmarshal credential: %w", err)
	}

	if !cred.Valid(cc.now()) {
		_ = cc.rdb.Del(ctx, credKey).Err()
		return domain.Credential{}, domain.ErrExpired
	}
	return cred, nil
}

// Clear removes the stored credential. Clearing an absent credential is not
// an error.
func (cc *CredCache) Clear(ctx context.Context) error {
	if err := cc.rdb.Del(ctx, credKey).Err(); err != nil {
		return fmt.Errorf("redis: clear credential: %w", err)
	}
	return nil
}

// RemainingTTL returns the time left on the stored credential, zero when it
// is absent or expired.
func (cc *CredCache) RemainingTTL(ctx context.Context) (time.Duration, error) {
	cred, err := cc.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrExpired) {
			return 0, nil
		}
		return 0, err
	}
	return cred.Remaining(cc.now()), nil
}

// Compile-time interface check.
var _ domain.CredentialCache = (*CredCache)(nil)
