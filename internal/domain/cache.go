package domain

import (
	"context"
	"time"
)

// CredentialCache stores the extracted exchange credential with its fixed
// expiry. Expiry is checked on read, never by background timers, so behavior
// is deterministic under an injected clock.
type CredentialCache interface {
	Set(ctx context.Context, cred Credential) error
	// Get returns ErrNotFound when nothing is stored and ErrExpired when the
	// stored credential's window has passed (the entry is cleared).
	Get(ctx context.Context) (Credential, error)
	Clear(ctx context.Context) error
	// RemainingTTL returns the time left before expiry, zero when absent or
	// expired.
	RemainingTTL(ctx context.Context) (time.Duration, error)
}

// TokenCache stores the fetched Alpha token list.
type TokenCache interface {
	Set(ctx context.Context, tokens []Token) error
	Get(ctx context.Context) ([]Token, error)
	Clear(ctx context.Context) error
	RemainingTTL(ctx context.Context) (time.Duration, error)
}

// PriceCache provides fast access to the latest traded price per symbol.
type PriceCache interface {
	SetPrice(ctx context.Context, symbol, price string, ts time.Time) error
	GetPrice(ctx context.Context, symbol string) (string, time.Time, error)
}

// PriceBus fans price updates out to websocket hubs, possibly across
// processes.
type PriceBus interface {
	Publish(ctx context.Context, update PriceUpdate) error
	Subscribe(ctx context.Context) (<-chan PriceUpdate, error)
}

// RateLimiter applies a per-key sliding-window request limit.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
