// Package feed polls the public aggregated-trade endpoint for configured
// symbols and fans the latest prices out through the price cache and the
// Redis price bus.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// PriceSource is the slice of the market-data client the poller needs.
type PriceSource interface {
	LatestPrice(ctx context.Context, symbol string) (string, time.Time, error)
}

// Poller reads the latest trade price for each configured symbol on a fixed
// interval. Unchanged prices are not republished.
type Poller struct {
	source   PriceSource
	cache    domain.PriceCache
	bus      domain.PriceBus
	symbols  []string
	interval time.Duration
	logger   *slog.Logger

	last map[string]string
}

// NewPoller creates a Poller. Intervals below one second are clamped to one
// second; the feed endpoint is public but not free.
func NewPoller(source PriceSource, cache domain.PriceCache, bus domain.PriceBus, symbols []string, interval time.Duration, logger *slog.Logger) *Poller {
	if interval < time.Second {
		interval = time.Second
	}
	return &Poller{
		source:   source,
		cache:    cache,
		bus:      bus,
		symbols:  symbols,
		interval: interval,
		logger:   logger.With(slog.String("component", "price_poller")),
		last:     make(map[string]string),
	}
}

// Run polls until the context is cancelled. One symbol failing does not stop
// the others.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("price poller started",
		slog.Int("symbols", len(p.symbols)),
		slog.Duration("interval", p.interval),
	)
	defer p.logger.Info("price poller stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately so consumers are not blind for a full interval.
	p.pollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

func (p *Poller) pollAll(ctx context.Context) {
	for _, symbol := range p.symbols {
		if err := p.pollOne(ctx, symbol); err != nil {
			p.logger.Debug("poll failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (p *Poller) pollOne(ctx context.Context, symbol string) error {
	price, ts, err := p.source.LatestPrice(ctx, symbol)
	if err != nil {
		return err
	}

	if p.last[symbol] == price {
		return nil
	}
	p.last[symbol] = price

	if err := p.cache.SetPrice(ctx, symbol, price, ts); err != nil {
		return err
	}

	update := domain.PriceUpdate{
		Symbol:    symbol,
		Price:     price,
		Timestamp: ts,
	}
	if err := p.bus.Publish(ctx, update); err != nil {
		return err
	}

	p.logger.Debug("price updated",
		slog.String("symbol", symbol),
		slog.String("price", price),
	)
	return nil
}
