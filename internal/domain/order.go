package domain

import "time"

// Side indicates whether an order buys or sells the base asset.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// PaymentMethod selects the funding source for a BUY order. Sell proceeds
// always return to balance.
type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "CARD"
	PaymentBalance PaymentMethod = "BALANCE"
	PaymentBank    PaymentMethod = "BANK"
)

// OrderStatus mirrors the exchange-side order lifecycle. The set is open:
// unknown upstream statuses are passed through verbatim.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// Terminal reports whether the status can no longer change.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// OrderIntent is the ephemeral, user-supplied order input before
// normalization. PaymentAmount is advisory only: the builder recomputes it
// from the rounded quantity and never trusts the raw value.
type OrderIntent struct {
	Side          Side
	Price         string // decimal string, > 0
	Quantity      string // decimal string, > 0
	PaymentAmount string // BUY only, recomputed before submission
	PaymentMethod PaymentMethod
}

// OrderRecord is the locally persisted trace of a submitted order. The
// exchange owns the authoritative record; this one exists so the console can
// show history without re-querying the private API.
type OrderRecord struct {
	ID              string        `json:"id"` // local uuid
	UpstreamOrderID string        `json:"upstreamOrderId"`
	BaseAsset       string        `json:"baseAsset"` // alphaId
	QuoteAsset      string        `json:"quoteAsset"`
	Symbol          string        `json:"symbol"`
	Side            Side          `json:"side"`
	Price           string        `json:"price"`
	Quantity        string        `json:"quantity"` // normalized quantity as submitted
	Amount          string        `json:"amount"`   // recomputed payment amount as submitted
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Status          OrderStatus   `json:"status"`
	ExecutedQty     string        `json:"executedQty,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ListOpts carries standard pagination parameters.
type ListOpts struct {
	Limit  int
	Offset int
}
