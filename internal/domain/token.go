package domain

import (
	"fmt"
	"strings"
)

// Token describes a tradable Alpha asset: its on-chain identity plus the
// exchange-side identifier used to build trading-pair symbols on the private
// API.
type Token struct {
	AlphaID         string `json:"alphaId"`         // e.g. "ALPHA_382"
	ContractAddress string `json:"contractAddress"` // 20-byte EVM address, hex
	ChainID         string `json:"chainId"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Decimals        int    `json:"decimals"`
	Price           string `json:"price"`
	Volume24h       string `json:"volume24h"`
	PercentChange24 string `json:"percentChange24h"`
	Liquidity       string `json:"liquidity"`
	Offline         bool   `json:"offline"`
	ListingCex      bool   `json:"listingCex"`
	HotTag          bool   `json:"hotTag"`
}

// DeriveAlphaID builds a synthetic alphaId from the last six characters of a
// contract address. It exists only for demo token lists; live trading must use
// the alphaId assigned by the exchange.
func DeriveAlphaID(contractAddress string) string {
	addr := strings.TrimPrefix(strings.ToLower(contractAddress), "0x")
	if len(addr) > 6 {
		addr = addr[len(addr)-6:]
	}
	return "ALPHA_" + addr
}

// TradingPair builds the synthetic market-data symbol for a token against a
// quote asset, e.g. "ALPHA_382USDT".
func TradingPair(alphaID, quoteAsset string) string {
	return alphaID + quoteAsset
}

// Validate checks the fields required before any order call.
func (t Token) Validate() error {
	if strings.TrimSpace(t.AlphaID) == "" {
		return fmt.Errorf("%w: token %s has no alphaId", ErrValidation, t.Symbol)
	}
	return nil
}
