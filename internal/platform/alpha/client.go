// Package alpha integrates the exchange's Alpha trading surface: the private
// order API (credentialed with a pasted csrftoken/Cookie pair), the public
// aggregated-trade feed, and the token list. All clients are thin
// request/response wrappers with no retries and no concurrency control; a
// second call before the first resolves is simply a second HTTP request.
package alpha

import (
	"bytes"
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

// Private API paths, relative to the exchange host.
const (
	pathPlaceOrder  = "/bapi/defi/v1/private/alpha-trade/order/place"
	pathCancelOrder = "/bapi/defi/v1/private/alpha-trade/order/cancel"
	pathOrderList   = "/bapi/defi/v1/private/alpha-trade/order/list"
	pathOrderDetail = "/bapi/defi/v1/private/alpha-trade/order/detail"
	pathBalance     = "/bapi/asset/v1/private/alpha-trade/account/balance"
)

// TradingClient is the REST client for the private Alpha trading API. The
// credential is passed by value into every call; there is no ambient auth
// state.
type TradingClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTradingClient creates a client for the given exchange host, e.g.
// "https://www.binance.com".
func NewTradingClient(baseURL string) *TradingClient {
	return &TradingClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PlaceOrder submits a normalized order and returns the exchange's record.
func (c *TradingClient) PlaceOrder(ctx context.Context, cred domain.Credential, req PlaceOrderRequest) (APIOrder, error) {
	data, err := c.doAuthenticated(ctx, cred, http.MethodPost, pathPlaceOrder, req)
	if err != nil {
		return APIOrder{}, fmt.Errorf("alpha: place order: %w", err)
	}

	var order APIOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return APIOrder{}, fmt.Errorf("alpha: decode place-order response: %w", err)
	}
	return order, nil
}

// CancelOrder cancels a working order by its upstream id.
func (c *TradingClient) CancelOrder(ctx context.Context, cred domain.Credential, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("alpha: %w: orderId required", domain.ErrValidation)
	}
	_, err := c.doAuthenticated(ctx, cred, http.MethodPost, pathCancelOrder, CancelOrderRequest{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("alpha: cancel order %s: %w", orderID, err)
	}
	return nil
}

// QueryOrders lists orders matching the given filters.
func (c *TradingClient) QueryOrders(ctx context.Context, cred domain.Credential, params QueryOrdersParams) ([]APIOrder, error) {
	q := url.Values{}
	if params.BaseAsset != "" {
		q.Set("baseAsset", params.BaseAsset)
	}
	if params.QuoteAsset != "" {
		q.Set("quoteAsset", params.QuoteAsset)
	}
	if params.Side != "" {
		q.Set("workingSide", string(params.Side))
	}
	if params.Status != "" {
		q.Set("status", params.Status)
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
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}

	path := pathOrderList
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	data, err := c.doAuthenticated(ctx, cred, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("alpha: query orders: %w", err)
	}

	var list orderListData
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("alpha: decode order list: %w", err)
	}
	return list.Orders, nil
}

// GetOrderDetail fetches a single order by its upstream id.
func (c *TradingClient) GetOrderDetail(ctx context.Context, cred domain.Credential, orderID string) (APIOrder, error) {
	if orderID == "" {
		return APIOrder{}, fmt.Errorf("alpha: %w: orderId required", domain.ErrValidation)
	}

	data, err := c.doAuthenticated(ctx, cred, http.MethodGet, pathOrderDetail+"?orderId="+url.QueryEscape(orderID), nil)
	if err != nil {
		return APIOrder{}, fmt.Errorf("alpha: order detail %s: %w", orderID, err)
	}

	var order APIOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return APIOrder{}, fmt.Errorf("alpha: decode order detail: %w", err)
	}
	return order, nil
}

// GetAccountBalance fetches the Alpha account's per-asset balances.
func (c *TradingClient) GetAccountBalance(ctx context.Context, cred domain.Credential) ([]AssetBalance, error) {
	data, err := c.doAuthenticated(ctx, cred, http.MethodGet, pathBalance, nil)
	if err != nil {
		return nil, fmt.Errorf("alpha: account balance: %w", err)
	}

	var balances []AssetBalance
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("alpha: decode balances: %w", err)
	}
	return balances, nil
}

// doAuthenticated builds, sends, and unwraps a private-API request. It
// returns the envelope's data field, or an error when the HTTP status or the
// application code signals failure.
func (c *TradingClient) doAuthenticated(ctx context.Context, cred domain.Credential, method, path string, body any) (json.RawMessage, error) {
	if cred.CSRFToken == "" || cred.Cookie == "" {
		return nil, fmt.Errorf("%w: missing credential", domain.ErrUnauthorized)
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// The exchange expects its native auth headers plus the fixed web client
	// type on every private call.
	req.Header.Set("clienttype", "web")
	req.Header.Set("csrftoken", cred.CSRFToken)
	req.Header.Set("Cookie", cred.Cookie)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return unwrapEnvelope(respBody)
}

// unwrapEnvelope decodes the exchange envelope and enforces the application
// success code. A 200 with a non-success code is still a failure; the
// upstream message is surfaced verbatim when present.
func unwrapEnvelope(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Code != successCode {
		msg := "request rejected"
		if env.Message != nil && *env.Message != "" {
			msg = *env.Message
		}
		return nil, fmt.Errorf("%w: code %s: %s", domain.ErrUpstream, env.Code, msg)
	}
	return env.Data, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUnauthorized, statusCode, bodyStr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrNotFound, statusCode, bodyStr)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, statusCode, bodyStr)
	}
}
