package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// priceChannel is the Pub/Sub channel carrying price updates from the feed
// poller to websocket hubs, which may live in separate processes.
const priceChannel = "alphadesk:prices"

// PriceBus fans price updates out over Redis Pub/Sub.
type PriceBus struct {
	rdb *redis.Client
}

// NewPriceBus creates a PriceBus backed by the given Client.
func NewPriceBus(c *Client) *PriceBus {
	return &PriceBus{rdb: c.Underlying()}
}

// Publish broadcasts one price update. Delivery is ephemeral; subscribers
// that are offline miss the message and catch up from the price cache.
func (pb *PriceBus) Publish(ctx context.Context, update domain.PriceUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("redis: marshal price update: %w", err)
	}
	if err := pb.rdb.Publish(ctx, priceChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish price %s: %w", update.Symbol, err)
	}
	return nil
}

// Subscribe returns a channel of price updates. The subscription closes when
// the context is cancelled; malformed payloads are dropped.
func (pb *PriceBus) Subscribe(ctx context.Context) (<-chan domain.PriceUpdate, error) {
	pubsub := pb.rdb.Subscribe(ctx, priceChannel)

	// Confirm the subscription before handing back the channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe prices: %w", err)
	}

	out := make(chan domain.PriceUpdate, 128)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var update domain.PriceUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Compile-time interface check.
var _ domain.PriceBus = (*PriceBus)(nil)
