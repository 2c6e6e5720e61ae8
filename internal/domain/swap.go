package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxPayload is an executable transaction triple handed to the wallet layer.
// It is the only currency between the swap encoder, the aggregator client,
// and the wallet.
type TxPayload struct {
	To    common.Address `json:"to"`
	Data  []byte         `json:"data"`
	Value *big.Int       `json:"value"`
}

// SwapPlan describes one swap in minor units (already scaled by token
// decimals). MinReturn is the slippage-adjusted minimum acceptable output,
// computed in integer arithmetic.
type SwapPlan struct {
	FromToken     common.Address
	ToToken       common.Address
	FromAmount    *big.Int // input amount, minor units
	MinReturn     *big.Int // slippage-adjusted minimum output, minor units
	Recipient     common.Address
	InnerCallData []byte // nested downstream DEX call, may be empty
}

// RouteOrder is the aggregator's route-ranking preference.
type RouteOrder string

const (
	RouteCheapest RouteOrder = "CHEAPEST"
	RouteFastest  RouteOrder = "FASTEST"
	RouteSafest   RouteOrder = "SAFEST"
)
