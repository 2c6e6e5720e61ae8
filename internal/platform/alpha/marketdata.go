package alpha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

const pathAggTrades = "/bapi/defi/v1/public/alpha-trade/agg-trades"

// MarketDataClient reads the public aggregated-trade feed. No credential is
// required.
type MarketDataClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMarketDataClient creates a market-data client for the given host.
func NewMarketDataClient(baseURL string) *MarketDataClient {
	return &MarketDataClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AggTradeParams filters the agg-trades feed. Zero values are omitted.
type AggTradeParams struct {
	FromID    int64
	StartTime int64
	EndTime   int64
	Limit     int
}

// GetAggTrades fetches aggregated trades for a synthetic symbol
// ("<alphaId><quoteAsset>", e.g. "ALPHA_382USDT"). The endpoint answers in
// two shapes, a bare array or the standard envelope, and both are handled.
func (c *MarketDataClient) GetAggTrades(ctx context.Context, symbol string, params AggTradeParams) ([]domain.AggTrade, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	if params.FromID > 0 {
		q.Set("fromId", strconv.FormatInt(params.FromID, 10))
	}
	if params.StartTime > 0 {
		q.Set("startTime", strconv.FormatInt(params.StartTime, 10))
	}
	if params.EndTime > 0 {
		q.Set("endTime", strconv.FormatInt(params.EndTime, 10))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAggTrades+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("alpha: create agg-trades request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha: agg-trades request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpha: read agg-trades response: %w", err)
	}
	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, fmt.Errorf("alpha: agg-trades %s: %w", symbol, err)
	}

	raw, err := extractAggTradePayload(body)
	if err != nil {
		return nil, fmt.Errorf("alpha: agg-trades %s: %w", symbol, err)
	}

	trades := make([]domain.AggTrade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, t.toDomain())
	}
	return trades, nil
}

// LatestPrice returns the price of the most recent aggregated trade, or
// ErrNotFound when the symbol has no trades.
func (c *MarketDataClient) LatestPrice(ctx context.Context, symbol string) (string, time.Time, error) {
	trades, err := c.GetAggTrades(ctx, symbol, AggTradeParams{Limit: 1})
	if err != nil {
		return "", time.Time{}, err
	}
	if len(trades) == 0 {
		return "", time.Time{}, fmt.Errorf("alpha: latest price %s: %w", symbol, domain.ErrNotFound)
	}
	last := trades[len(trades)-1]
	return last.Price, last.Timestamp, nil
}

// extractAggTradePayload accepts both response forms of the feed.
func extractAggTradePayload(body []byte) ([]rawAggTrade, error) {
	var direct []rawAggTrade
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	data, err := unwrapEnvelope(body)
	if err != nil {
		return nil, err
	}
	var wrapped []rawAggTrade
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return wrapped, nil
}
