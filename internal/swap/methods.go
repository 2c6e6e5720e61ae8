package swap

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Known 4-byte selectors observed on the chains this console targets. The
// proxy-router selectors are fixed by the deployed contracts; the PancakeSwap
// and ERC-20 selectors are derivable from their canonical signatures.
const (
	SelectorSwap        = "0x810c705b" // swap (proxy router, single call)
	SelectorProxySwapV2 = "0x25356bc7" // proxySwapV2 (proxy router, nested call)

	SelectorSwapExactTokensForTokens = "0x38ed1739" // PancakeSwap V2
	SelectorSwapExactETHForTokens    = "0x7ff36ab5"
	SelectorSwapExactTokensForETH    = "0x18cbafe5"
	SelectorApprove                  = "0x095ea7b3" // ERC-20
)

// methodNames maps selectors to a human-readable description, used when
// inspecting transaction payloads returned by aggregators.
var methodNames = map[string]string{
	SelectorSwap:                     "swap (proxy router)",
	SelectorProxySwapV2:              "proxySwapV2 (proxy router)",
	SelectorSwapExactTokensForTokens: "swapExactTokensForTokens (PancakeSwap V2)",
	SelectorSwapExactETHForTokens:    "swapExactETHForTokens (PancakeSwap V2)",
	SelectorSwapExactTokensForETH:    "swapExactTokensForETH (PancakeSwap V2)",
	"0x8803dbee":                     "swapTokensForExactTokens (PancakeSwap V2)",
	"0x5fd9ae2e":                     "swapTokensMultipleV3ERC20ToERC20 (LI.FI)",
	"0x4666fc80":                     "swapTokensSingleV3ERC20ToERC20 (KyberSwap)",
	SelectorApprove:                  "approve (ERC-20)",
}

// Method describes the selector at the head of a call-data payload.
type Method struct {
	Selector    string
	Description string
	Known       bool
}

// ParseMethod inspects the first four bytes of call data.
func ParseMethod(data []byte) Method {
	if len(data) < 4 {
		return Method{Selector: "0x" + hex.EncodeToString(data)}
	}
	sel := "0x" + hex.EncodeToString(data[:4])
	desc, ok := methodNames[sel]
	if !ok {
		desc = "unknown method"
	}
	return Method{Selector: sel, Description: desc, Known: ok}
}

// selectorBytes decodes a "0x"-prefixed 4-byte selector constant.
func selectorBytes(sel string) []byte {
	b, err := hex.DecodeString(sel[2:])
	if err != nil || len(b) != 4 {
		panic(fmt.Sprintf("swap: bad selector constant %q", sel))
	}
	return b
}

// sigSelector derives a selector from a canonical method signature.
func sigSelector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}
