package feed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

type fakeSource struct {
	prices map[string]string
}

func (f *fakeSource) LatestPrice(ctx context.Context, symbol string) (string, time.Time, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return "", time.Time{}, domain.ErrNotFound
	}
	return price, time.Unix(1735000000, 0), nil
}

type fakePriceCache struct {
	set map[string]string
}

func (f *fakePriceCache) SetPrice(ctx context.Context, symbol, price string, ts time.Time) error {
	f.set[symbol] = price
	return nil
}

func (f *fakePriceCache) GetPrice(ctx context.Context, symbol string) (string, time.Time, error) {
	price, ok := f.set[symbol]
	if !ok {
		return "", time.Time{}, domain.ErrNotFound
	}
	return price, time.Time{}, nil
}

type fakeBus struct {
	published []domain.PriceUpdate
}

func (f *fakeBus) Publish(ctx context.Context, update domain.PriceUpdate) error {
	f.published = append(f.published, update)
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context) (<-chan domain.PriceUpdate, error) {
	return nil, nil
}

func newTestPoller(source *fakeSource, cache *fakePriceCache, bus *fakeBus, symbols []string) *Poller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPoller(source, cache, bus, symbols, time.Second, logger)
}

func TestPollerUpdatesCacheAndBus(t *testing.T) {
	source := &fakeSource{prices: map[string]string{"ALPHA_382USDT": "0.071"}}
	cache := &fakePriceCache{set: map[string]string{}}
	bus := &fakeBus{}

	p := newTestPoller(source, cache, bus, []string{"ALPHA_382USDT"})
	p.pollAll(context.Background())

	assert.Equal(t, "0.071", cache.set["ALPHA_382USDT"])
	require.Len(t, bus.published, 1)
	assert.Equal(t, "ALPHA_382USDT", bus.published[0].Symbol)
	assert.Equal(t, "0.071", bus.published[0].Price)
}

func TestPollerSkipsUnchangedPrice(t *testing.T) {
	source := &fakeSource{prices: map[string]string{"ALPHA_382USDT": "0.071"}}
	cache := &fakePriceCache{set: map[string]string{}}
	bus := &fakeBus{}

	p := newTestPoller(source, cache, bus, []string{"ALPHA_382USDT"})
	p.pollAll(context.Background())
	p.pollAll(context.Background())
	assert.Len(t, bus.published, 1)

	source.prices["ALPHA_382USDT"] = "0.072"
	p.pollAll(context.Background())
	require.Len(t, bus.published, 2)
	assert.Equal(t, "0.072", bus.published[1].Price)
}

func TestPollerOneFailureDoesNotStopOthers(t *testing.T) {
	source := &fakeSource{prices: map[string]string{"ALPHA_119USDT": "1.5"}}
	cache := &fakePriceCache{set: map[string]string{}}
	bus := &fakeBus{}

	p := newTestPoller(source, cache, bus, []string{"MISSINGUSDT", "ALPHA_119USDT"})
	p.pollAll(context.Background())

	assert.Equal(t, "1.5", cache.set["ALPHA_119USDT"])
	assert.Len(t, bus.published, 1)
}

func TestPollerClampsInterval(t *testing.T) {
	p := newTestPoller(&fakeSource{}, &fakePriceCache{set: map[string]string{}}, &fakeBus{}, nil)
	assert.Equal(t, time.Second, p.interval)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p2 := NewPoller(&fakeSource{}, &fakePriceCache{set: map[string]string{}}, &fakeBus{}, nil, 200*time.Millisecond, logger)
	assert.Equal(t, time.Second, p2.interval)
}
