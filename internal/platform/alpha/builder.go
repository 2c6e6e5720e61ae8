package alpha

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/precision"
)

// BuildBuyOrder assembles a precision-correct BUY payload. The quantity is
// rounded to the price-derived precision and the payment amount is recomputed
// from the rounded quantity. The user-entered amount is never trusted, which
// keeps paymentAmount equal to price times quantity on the wire.
//
// payment defaults to BALANCE when unset, matching the console's visible
// default. (The original client had a second code path defaulting to CARD;
// that was a latent inconsistency, not behavior worth preserving.)
func BuildBuyOrder(token domain.Token, quoteAsset string, price, quantity decimal.Decimal, payment domain.PaymentMethod) (PlaceOrderRequest, error) {
	if err := token.Validate(); err != nil {
		return PlaceOrderRequest{}, err
	}

	rounded, err := precision.NormalizeQuantity(price, quantity)
	if err != nil {
		return PlaceOrderRequest{}, err
	}

	if payment == "" {
		payment = domain.PaymentBalance
	}
	switch payment {
	case domain.PaymentCard, domain.PaymentBalance, domain.PaymentBank:
	default:
		return PlaceOrderRequest{}, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, payment)
	}

	return PlaceOrderRequest{
		BaseAsset:       token.AlphaID,
		QuoteAsset:      quoteAsset,
		WorkingSide:     domain.SideBuy,
		WorkingPrice:    json.Number(price.String()),
		WorkingQuantity: json.Number(rounded.String()),
		PaymentDetails: []PaymentDetail{{
			Amount:            precision.RecomputeAmount(price, rounded),
			PaymentWalletType: payment,
		}},
		PendingPrice: json.Number(price.String()),
	}, nil
}

// BuildSellOrder assembles a precision-correct SELL payload. Sell proceeds
// always return to balance; there is no payment-method choice.
func BuildSellOrder(token domain.Token, quoteAsset string, price, quantity decimal.Decimal) (PlaceOrderRequest, error) {
	if err := token.Validate(); err != nil {
		return PlaceOrderRequest{}, err
	}

	rounded, err := precision.NormalizeQuantity(price, quantity)
	if err != nil {
		return PlaceOrderRequest{}, err
	}

	return PlaceOrderRequest{
		BaseAsset:       token.AlphaID,
		QuoteAsset:      quoteAsset,
		WorkingSide:     domain.SideSell,
		WorkingPrice:    json.Number(price.String()),
		WorkingQuantity: json.Number(rounded.String()),
		PaymentDetails: []PaymentDetail{{
			Amount:            precision.RecomputeAmount(price, rounded),
			PaymentWalletType: domain.PaymentBalance,
		}},
		PendingPrice: json.Number(price.String()),
	}, nil
}
