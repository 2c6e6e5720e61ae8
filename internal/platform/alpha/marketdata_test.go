package alpha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

const sampleTrades = `[
	{"a": 1001, "p": "0.071", "q": "120", "f": 5000, "l": 5003, "T": 1735000000000, "m": false},
	{"a": 1002, "p": "0.072", "q": "50", "f": 5004, "l": 5004, "T": 1735000001000, "m": true}
]`

func TestGetAggTradesBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathAggTrades, r.URL.Path)
		assert.Equal(t, "ALPHA_382USDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))
		w.Write([]byte(sampleTrades))
	}))
	defer srv.Close()

	client := NewMarketDataClient(srv.URL)
	trades, err := client.GetAggTrades(context.Background(), "ALPHA_382USDT", AggTradeParams{Limit: 500})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, int64(1001), trades[0].AggregateID)
	assert.Equal(t, "0.071", trades[0].Price)
	assert.True(t, trades[1].SellerMaker)
}

func TestGetAggTradesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Same feed, wrapped form.
		w.Write([]byte(`{"code": "000000", "data": ` + sampleTrades + `}`))
	}))
	defer srv.Close()

	client := NewMarketDataClient(srv.URL)
	trades, err := client.GetAggTrades(context.Background(), "ALPHA_382USDT", AggTradeParams{})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "0.072", trades[1].Price)
}

func TestGetAggTradesEnvelopeFailureCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := "symbol not found"
		json.NewEncoder(w).Encode(envelope{Code: "100001", Message: &msg})
	}))
	defer srv.Close()

	client := NewMarketDataClient(srv.URL)
	_, err := client.GetAggTrades(context.Background(), "BOGUSUSDT", AggTradeParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestLatestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleTrades))
	}))
	defer srv.Close()

	client := NewMarketDataClient(srv.URL)
	price, ts, err := client.LatestPrice(context.Background(), "ALPHA_382USDT")
	require.NoError(t, err)
	assert.Equal(t, "0.072", price)
	assert.Equal(t, int64(1735000001000), ts.UnixMilli())
}

func TestLatestPriceNoTrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewMarketDataClient(srv.URL)
	_, _, err := client.LatestPrice(context.Background(), "ALPHA_382USDT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
