package alpha

import (
	"encoding/json"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// successCode is the application-level success code the exchange returns in
// every response envelope. Anything else is a failure even under HTTP 200.
const successCode = "000000"

// envelope is the exchange's standard response wrapper.
type envelope struct {
	Code          string          `json:"code"`
	Message       *string         `json:"message"`
	MessageDetail *string         `json:"messageDetail"`
	Data          json.RawMessage `json:"data"`
}

// PaymentDetail is one funding-source entry on a place-order request. Amount
// is the recomputed payment amount string produced by the normalizer.
type PaymentDetail struct {
	Amount            string               `json:"amount"`
	PaymentWalletType domain.PaymentMethod `json:"paymentWalletType"`
}

// PlaceOrderRequest is the outbound order payload. Price and quantity are
// json.Number so the normalized decimal values reach the wire without
// float64 round-tripping.
type PlaceOrderRequest struct {
	BaseAsset       string          `json:"baseAsset"` // alphaId, e.g. "ALPHA_382"
	QuoteAsset      string          `json:"quoteAsset"`
	WorkingSide     domain.Side     `json:"workingSide"`
	WorkingPrice    json.Number     `json:"workingPrice"`
	WorkingQuantity json.Number     `json:"workingQuantity"`
	PaymentDetails  []PaymentDetail `json:"paymentDetails"`
	PendingPrice    json.Number     `json:"pendingPrice,omitempty"`
}

// Symbol returns the market-data symbol for this order's pair.
func (r PlaceOrderRequest) Symbol() string {
	return domain.TradingPair(r.BaseAsset, r.QuoteAsset)
}

// CancelOrderRequest cancels a single working order.
type CancelOrderRequest struct {
	OrderID string `json:"orderId"`
}

// QueryOrdersParams filters the order-list endpoint. Zero values are omitted
// from the query string.
type QueryOrdersParams struct {
	BaseAsset  string
	QuoteAsset string
	Side       domain.Side
	Status     string
	StartTime  int64
	EndTime    int64
	Limit      int
	Page       int
}

// APIOrder is the exchange's order representation.
type APIOrder struct {
	OrderID          string      `json:"orderId"`
	Status           string      `json:"status"`
	BaseAsset        string      `json:"baseAsset"`
	QuoteAsset       string      `json:"quoteAsset"`
	WorkingSide      string      `json:"workingSide"`
	WorkingPrice     json.Number `json:"workingPrice"`
	WorkingQuantity  json.Number `json:"workingQuantity"`
	ExecutedQuantity json.Number `json:"executedQuantity"`
	ExecutedPrice    json.Number `json:"executedPrice"`
	CreateTime       int64       `json:"createTime"`
	UpdateTime       int64       `json:"updateTime"`
}

// ToDomain converts an exchange order into the local record shape. The
// exchange remains the authoritative owner; unknown statuses pass through
// verbatim.
func (o APIOrder) ToDomain() domain.OrderRecord {
	return domain.OrderRecord{
		UpstreamOrderID: o.OrderID,
		BaseAsset:       o.BaseAsset,
		QuoteAsset:      o.QuoteAsset,
		Symbol:          domain.TradingPair(o.BaseAsset, o.QuoteAsset),
		Side:            domain.Side(o.WorkingSide),
		Price:           o.WorkingPrice.String(),
		Quantity:        o.WorkingQuantity.String(),
		Status:          domain.OrderStatus(o.Status),
		ExecutedQty:     o.ExecutedQuantity.String(),
		CreatedAt:       time.UnixMilli(o.CreateTime),
		UpdatedAt:       time.UnixMilli(o.UpdateTime),
	}
}

// orderListData is the paged order-list payload.
type orderListData struct {
	Orders []APIOrder `json:"orders"`
	Total  int        `json:"total"`
	Page   int        `json:"page"`
	Limit  int        `json:"limit"`
}

// AssetBalance is one entry of the account-balance payload.
type AssetBalance struct {
	Asset     string      `json:"asset"`
	Free      json.Number `json:"free"`
	Locked    json.Number `json:"locked"`
	Valuation json.Number `json:"valuation"`
}

// rawAggTrade is the compact wire form of an aggregated trade.
type rawAggTrade struct {
	AggregateID  int64  `json:"a"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	FirstTradeID int64  `json:"f"`
	LastTradeID  int64  `json:"l"`
	Timestamp    int64  `json:"T"`
	SellerMaker  bool   `json:"m"`
}

func (t rawAggTrade) toDomain() domain.AggTrade {
	return domain.AggTrade{
		AggregateID:  t.AggregateID,
		Price:        t.Price,
		Quantity:     t.Quantity,
		FirstTradeID: t.FirstTradeID,
		LastTradeID:  t.LastTradeID,
		Timestamp:    time.UnixMilli(t.Timestamp),
		SellerMaker:  t.SellerMaker,
	}
}

// apiToken is the exchange's token-list entry. Only the fields the console
// uses are decoded.
type apiToken struct {
	AlphaID         string `json:"alphaId"`
	TokenID         string `json:"tokenId"`
	ChainID         string `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        int    `json:"decimals"`
	Price           string `json:"price"`
	Volume24h       string `json:"volume24h"`
	PercentChange24 string `json:"percentChange24h"`
	Liquidity       string `json:"liquidity"`
	Offline         bool   `json:"offline"`
	ListingCex      bool   `json:"listingCex"`
	HotTag          bool   `json:"hotTag"`
}

func (t apiToken) toDomain() domain.Token {
	return domain.Token{
		AlphaID:         t.AlphaID,
		ContractAddress: t.ContractAddress,
		ChainID:         t.ChainID,
		Symbol:          t.Symbol,
		Name:            t.Name,
		Decimals:        t.Decimals,
		Price:           t.Price,
		Volume24h:       t.Volume24h,
		PercentChange24: t.PercentChange24,
		Liquidity:       t.Liquidity,
		Offline:         t.Offline,
		ListingCex:      t.ListingCex,
		HotTag:          t.HotTag,
	}
}
