package notify

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// Event types the console emits. The configured event filter selects from
// these.
const (
	EventOrderPlaced    = "order.placed"
	EventOrderFailed    = "order.failed"
	EventOrderCancelled = "order.cancelled"
	EventOrderFilled    = "order.filled"
	EventSwapSubmitted  = "swap.submitted"
	EventSwapFailed     = "swap.failed"
	EventCredExpired    = "credential.expired"
)

// OrderPlaced reports a successful order submission.
func (n *Notifier) OrderPlaced(ctx context.Context, rec domain.OrderRecord) error {
	return n.Notify(ctx, EventOrderPlaced,
		fmt.Sprintf("Order placed: %s %s", rec.Side, rec.Symbol),
		fmt.Sprintf("qty %s @ %s (amount %s), upstream id %s", rec.Quantity, rec.Price, rec.Amount, rec.UpstreamOrderID),
	)
}

// OrderFailed reports a rejected or errored order submission.
func (n *Notifier) OrderFailed(ctx context.Context, symbol string, side domain.Side, cause error) error {
	return n.Notify(ctx, EventOrderFailed,
		fmt.Sprintf("Order failed: %s %s", side, symbol),
		cause.Error(),
	)
}

// OrderCancelled reports a successful cancel.
func (n *Notifier) OrderCancelled(ctx context.Context, orderID string) error {
	return n.Notify(ctx, EventOrderCancelled,
		"Order cancelled",
		fmt.Sprintf("upstream id %s", orderID),
	)
}

// OrderFilled reports a fill observed while refreshing order state.
func (n *Notifier) OrderFilled(ctx context.Context, rec domain.OrderRecord) error {
	return n.Notify(ctx, EventOrderFilled,
		fmt.Sprintf("Order filled: %s %s", rec.Side, rec.Symbol),
		fmt.Sprintf("executed %s of %s @ %s", rec.ExecutedQty, rec.Quantity, rec.Price),
	)
}

// SwapSubmitted reports an on-chain swap submission.
func (n *Notifier) SwapSubmitted(ctx context.Context, txHash string) error {
	return n.Notify(ctx, EventSwapSubmitted, "Swap submitted", txHash)
}

// SwapFailed reports a swap that could not be built or sent.
func (n *Notifier) SwapFailed(ctx context.Context, cause error) error {
	return n.Notify(ctx, EventSwapFailed, "Swap failed", cause.Error())
}

// CredentialExpired warns that the pasted session credential aged out.
func (n *Notifier) CredentialExpired(ctx context.Context) error {
	return n.Notify(ctx, EventCredExpired,
		"Session credential expired",
		"paste a fresh curl command to continue trading",
	)
}
