package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/platform/alpha"
)

// TradeHandler serves the public market-data feed and latest prices.
type TradeHandler struct {
	market *alpha.MarketDataClient
	prices domain.PriceCache
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler. prices may be nil, in which case
// latest-price lookups always go straight to the feed.
func NewTradeHandler(market *alpha.MarketDataClient, prices domain.PriceCache, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{market: market, prices: prices, logger: logger}
}

// AggTrades returns aggregated trades for a synthetic symbol.
// GET /api/trades
func (h *TradeHandler) AggTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var params alpha.AggTradeParams
	if v := q.Get("fromId"); v != "" {
		params.FromID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("startTime"); v != "" {
		params.StartTime, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("endTime"); v != "" {
		params.EndTime, _ = strconv.ParseInt(v, 10, 64)
	}
	params.Limit = parseListOpts(r).Limit

	trades, err := h.market.GetAggTrades(r.Context(), symbol, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"trades": trades,
		"count":  len(trades),
	})
}

// LatestPrice returns the most recent traded price for a symbol, preferring
// the cache populated by the price poller and falling back to the feed.
// GET /api/price/{symbol}
func (h *TradeHandler) LatestPrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	price, ts, err := h.lookupPrice(r, symbol)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":    symbol,
		"price":     price,
		"timestamp": ts.UTC().Format(time.RFC3339Nano),
	})
}

func (h *TradeHandler) lookupPrice(r *http.Request, symbol string) (string, time.Time, error) {
	if h.prices != nil {
		price, ts, err := h.prices.GetPrice(r.Context(), symbol)
		if err == nil {
			return price, ts, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "price cache read failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}
	return h.market.LatestPrice(r.Context(), symbol)
}
