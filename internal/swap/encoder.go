// Package swap builds and inspects the call data for the on-chain proxy
// router. The proxy contract forwards a swap to a downstream DEX router,
// optionally applying fees; incorrect packing here reverts on-chain or loses
// funds, so every encoding path validates its inputs and all slippage math is
// integer-only.
package swap

import (
	"bytes"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// Variant selects the outer proxy-router encoding. Different deployed router
// versions expect different outer signatures, so the choice is always the
// caller's, never inferred from incidental code order.
type Variant string

const (
	// VariantSwap is the single-call form: the proxy executes the swap itself
	// and the nested call data may be empty.
	VariantSwap Variant = "swap"

	// VariantProxySwapV2 is the nested-call form: the proxy forwards an inner
	// DEX call packed as bytes.
	VariantProxySwapV2 Variant = "proxy_swap_v2"
)

// deadlineWindow is how far in the future inner DEX calls are valid. The
// deadline is computed at encode time and must be regenerated on retry; a
// stale deadline reverts deterministically.
const deadlineWindow = 20 * time.Minute

func mustType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("swap: abi type %q: %v", t, err))
	}
	return ty
}

var (
	addressType   = mustType("address")
	uint256Type   = mustType("uint256")
	bytesType     = mustType("bytes")
	addressesType = mustType("address[]")
)

// outerArgs is the 6-field tuple both proxy-router variants take:
// (router, fromToken, toToken, fromAmount, minReturn, callData).
var outerArgs = abi.Arguments{
	{Name: "router", Type: addressType},
	{Name: "fromToken", Type: addressType},
	{Name: "toToken", Type: addressType},
	{Name: "fromAmount", Type: uint256Type},
	{Name: "minReturn", Type: uint256Type},
	{Name: "callData", Type: bytesType},
}

// innerArgs matches swapExactTokensForTokens(uint256,uint256,address[],address,uint256).
var innerArgs = abi.Arguments{
	{Name: "amountIn", Type: uint256Type},
	{Name: "amountOutMin", Type: uint256Type},
	{Name: "path", Type: addressesType},
	{Name: "to", Type: addressType},
	{Name: "deadline", Type: uint256Type},
}

// approveArgs matches approve(address,uint256).
var approveArgs = abi.Arguments{
	{Name: "spender", Type: addressType},
	{Name: "amount", Type: uint256Type},
}

// Encoder builds proxy-router call data. Router addresses come from
// configuration, never from constants picked by code path.
type Encoder struct {
	proxyRouter common.Address
	dexRouter   common.Address
	wnative     common.Address
	now         func() time.Time
}

// NewEncoder creates an Encoder targeting the given proxy-router contract,
// downstream DEX router, and the chain's wrapped-native token address.
func NewEncoder(proxyRouter, dexRouter, wnative common.Address) *Encoder {
	return &Encoder{
		proxyRouter: proxyRouter,
		dexRouter:   dexRouter,
		wnative:     wnative,
		now:         time.Now,
	}
}

// WithClock overrides the encoder's clock. Deadlines in tests need a fixed
// time base.
func (e *Encoder) WithClock(now func() time.Time) *Encoder {
	e.now = now
	return e
}

// DexRouter returns the downstream router address, which is also the spender
// for ERC-20 allowance checks.
func (e *Encoder) DexRouter() common.Address {
	return e.dexRouter
}

// ProxyRouter returns the proxy-router contract the outer call targets. It is
// the transferFrom caller on the locally encoded path, so approvals for that
// path name it as spender.
func (e *Encoder) ProxyRouter() common.Address {
	return e.proxyRouter
}

func (e *Encoder) validate(plan domain.SwapPlan) error {
	if plan.FromToken == (common.Address{}) {
		return fmt.Errorf("%w: fromToken is the zero address", domain.ErrEncoding)
	}
	if plan.ToToken == (common.Address{}) {
		return fmt.Errorf("%w: toToken is the zero address", domain.ErrEncoding)
	}
	if plan.FromAmount == nil || plan.FromAmount.Sign() <= 0 {
		return fmt.Errorf("%w: fromAmount must be positive", domain.ErrEncoding)
	}
	if plan.MinReturn == nil || plan.MinReturn.Sign() < 0 {
		return fmt.Errorf("%w: minReturn must not be negative", domain.ErrEncoding)
	}
	if plan.FromAmount.BitLen() > maxUint256Bits || plan.MinReturn.BitLen() > maxUint256Bits {
		return fmt.Errorf("%w: amount overflows uint256", domain.ErrEncoding)
	}
	return nil
}

// EncodeProxySwap packs the outer proxy-router call for the selected variant
// and returns the executable payload. Value carries the input amount if and
// only if the input token is the chain's wrapped-native token.
func (e *Encoder) EncodeProxySwap(plan domain.SwapPlan, variant Variant) (domain.TxPayload, error) {
	if err := e.validate(plan); err != nil {
		return domain.TxPayload{}, err
	}

	var selector []byte
	switch variant {
	case VariantSwap:
		selector = selectorBytes(SelectorSwap)
	case VariantProxySwapV2:
		if len(plan.InnerCallData) == 0 {
			return domain.TxPayload{}, fmt.Errorf("%w: proxySwapV2 requires nested call data", domain.ErrEncoding)
		}
		selector = selectorBytes(SelectorProxySwapV2)
	default:
		return domain.TxPayload{}, fmt.Errorf("%w: unknown encoding variant %q", domain.ErrEncoding, variant)
	}

	inner := plan.InnerCallData
	if inner == nil {
		inner = []byte{}
	}

	packed, err := outerArgs.Pack(
		e.dexRouter,
		plan.FromToken,
		plan.ToToken,
		plan.FromAmount,
		plan.MinReturn,
		inner,
	)
	if err != nil {
		return domain.TxPayload{}, fmt.Errorf("%w: pack outer call: %v", domain.ErrEncoding, err)
	}

	value := big.NewInt(0)
	if plan.FromToken == e.wnative {
		value = new(big.Int).Set(plan.FromAmount)
	}

	return domain.TxPayload{
		To:    e.proxyRouter,
		Data:  append(selector, packed...),
		Value: value,
	}, nil
}

// EncodeInnerDexCall packs the downstream swapExactTokensForTokens call with
// path [fromToken, toToken] and a fresh deadline of now + 20 minutes. The
// deadline belongs to encode time: callers retrying a swap must re-encode.
func (e *Encoder) EncodeInnerDexCall(plan domain.SwapPlan) ([]byte, error) {
	if err := e.validate(plan); err != nil {
		return nil, err
	}
	if plan.Recipient == (common.Address{}) {
		return nil, fmt.Errorf("%w: recipient is the zero address", domain.ErrEncoding)
	}

	deadline := big.NewInt(e.now().Add(deadlineWindow).Unix())
	packed, err := innerArgs.Pack(
		plan.FromAmount,
		plan.MinReturn,
		[]common.Address{plan.FromToken, plan.ToToken},
		plan.Recipient,
		deadline,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: pack inner call: %v", domain.ErrEncoding, err)
	}

	return append(sigSelector("swapExactTokensForTokens(uint256,uint256,address[],address,uint256)"), packed...), nil
}

// EncodeApprove packs an ERC-20 approve granting the downstream router
// spending rights over the input token.
func EncodeApprove(token, spender common.Address, amount *big.Int) (domain.TxPayload, error) {
	if token == (common.Address{}) || spender == (common.Address{}) {
		return domain.TxPayload{}, fmt.Errorf("%w: approve needs non-zero token and spender", domain.ErrEncoding)
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.TxPayload{}, fmt.Errorf("%w: approve amount must not be negative", domain.ErrEncoding)
	}

	packed, err := approveArgs.Pack(spender, amount)
	if err != nil {
		return domain.TxPayload{}, fmt.Errorf("%w: pack approve: %v", domain.ErrEncoding, err)
	}

	return domain.TxPayload{
		To:    token,
		Data:  append(sigSelector("approve(address,uint256)"), packed...),
		Value: big.NewInt(0),
	}, nil
}

// DecodedSwap is the recovered outer proxy-router call.
type DecodedSwap struct {
	Variant    Variant
	Router     common.Address
	FromToken  common.Address
	ToToken    common.Address
	FromAmount *big.Int
	MinReturn  *big.Int
	CallData   []byte
}

// DecodeProxySwap unpacks outer proxy-router call data produced by either
// variant, recovering the original six fields exactly.
func DecodeProxySwap(data []byte) (DecodedSwap, error) {
	if len(data) < 4 {
		return DecodedSwap{}, fmt.Errorf("%w: call data shorter than a selector", domain.ErrEncoding)
	}

	var variant Variant
	switch {
	case bytes.Equal(data[:4], selectorBytes(SelectorSwap)):
		variant = VariantSwap
	case bytes.Equal(data[:4], selectorBytes(SelectorProxySwapV2)):
		variant = VariantProxySwapV2
	default:
		return DecodedSwap{}, fmt.Errorf("%w: unknown selector %s", domain.ErrEncoding, ParseMethod(data).Selector)
	}

	vals, err := outerArgs.Unpack(data[4:])
	if err != nil {
		return DecodedSwap{}, fmt.Errorf("%w: unpack outer call: %v", domain.ErrEncoding, err)
	}

	return DecodedSwap{
		Variant:    variant,
		Router:     vals[0].(common.Address),
		FromToken:  vals[1].(common.Address),
		ToToken:    vals[2].(common.Address),
		FromAmount: vals[3].(*big.Int),
		MinReturn:  vals[4].(*big.Int),
		CallData:   vals[5].([]byte),
	}, nil
}
