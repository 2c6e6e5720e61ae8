// Package aggregator is a quote client for a LI.FI-style swap aggregation
// API. It supplies executable swap transactions when available; callers fall
// back to local call-data encoding when no route exists.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// Client queries the aggregation API for swap quotes and routes.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an aggregator client. apiKey is optional; when set it is
// sent as the x-lifi-api-key header.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// QuoteParams describes the swap to quote. FromChain and ToChain must match;
// cross-chain routing is out of scope for the console.
type QuoteParams struct {
	FromChain   int64
	ToChain     int64
	FromToken   string
	ToToken     string
	FromAmount  *big.Int
	FromAddress string
	Slippage    string // fractional, e.g. "0.005" for 0.5%
	Order       domain.RouteOrder
}

func (p QuoteParams) validate() error {
	if p.FromChain != p.ToChain {
		return fmt.Errorf("%w: cross-chain swap %d -> %d not supported", domain.ErrValidation, p.FromChain, p.ToChain)
	}
	if p.FromToken == "" || p.ToToken == "" {
		return fmt.Errorf("%w: fromToken and toToken required", domain.ErrValidation)
	}
	if p.FromAmount == nil || p.FromAmount.Sign() <= 0 {
		return fmt.Errorf("%w: fromAmount must be positive", domain.ErrValidation)
	}
	if p.FromAddress == "" {
		return fmt.Errorf("%w: fromAddress required", domain.ErrValidation)
	}
	switch p.Order {
	case "", domain.RouteCheapest, domain.RouteFastest, domain.RouteSafest:
	default:
		return fmt.Errorf("%w: unknown route order %q", domain.ErrValidation, p.Order)
	}
	return nil
}

// Quote is an executable swap quote: the estimated output plus the
// transaction request to submit as-is.
type Quote struct {
	Tool            string
	FromAmount      *big.Int
	ToAmount        *big.Int
	ToAmountMin     *big.Int
	ApprovalAddress string
	Tx              domain.TxPayload
	GasLimit        uint64
}

// rawQuote mirrors the API's quote response. Amounts arrive as decimal
// strings; the transaction value as 0x-hex.
type rawQuote struct {
	Tool     string `json:"tool"`
	Estimate struct {
		FromAmount      string `json:"fromAmount"`
		ToAmount        string `json:"toAmount"`
		ToAmountMin     string `json:"toAmountMin"`
		ApprovalAddress string `json:"approvalAddress"`
	} `json:"estimate"`
	TransactionRequest struct {
		To       string `json:"to"`
		Data     string `json:"data"`
		Value    string `json:"value"`
		GasLimit string `json:"gasLimit"`
	} `json:"transactionRequest"`
	Message string `json:"message"`
}

// GetQuote fetches the single best quote under the requested route ordering.
// An answer without a transaction request maps to ErrNoRoute so the caller
// can fall back to the local encoder.
func (c *Client) GetQuote(ctx context.Context, params QuoteParams) (Quote, error) {
	if err := params.validate(); err != nil {
		return Quote{}, fmt.Errorf("aggregator: quote: %w", err)
	}

	order := params.Order
	if order == "" {
		order = domain.RouteCheapest
	}

	q := url.Values{}
	q.Set("fromChain", fmt.Sprintf("%d", params.FromChain))
	q.Set("toChain", fmt.Sprintf("%d", params.ToChain))
	q.Set("fromToken", params.FromToken)
	q.Set("toToken", params.ToToken)
	q.Set("fromAmount", params.FromAmount.String())
	q.Set("fromAddress", params.FromAddress)
	q.Set("order", string(order))
	if params.Slippage != "" {
		q.Set("slippage", params.Slippage)
	}

	body, err := c.get(ctx, "/v1/quote?"+q.Encode())
	if err != nil {
		return Quote{}, fmt.Errorf("aggregator: quote: %w", err)
	}

	var raw rawQuote
	if err := json.Unmarshal(body, &raw); err != nil {
		return Quote{}, fmt.Errorf("aggregator: decode quote: %w", err)
	}
	if raw.TransactionRequest.To == "" || raw.TransactionRequest.Data == "" {
		return Quote{}, fmt.Errorf("aggregator: quote %s -> %s: %w", params.FromToken, params.ToToken, domain.ErrNoRoute)
	}

	return raw.toQuote()
}

// CountRoutes reports how many routes the API can build for the swap. Zero
// routes maps to ErrNoRoute.
func (c *Client) CountRoutes(ctx context.Context, params QuoteParams) (int, error) {
	if err := params.validate(); err != nil {
		return 0, fmt.Errorf("aggregator: routes: %w", err)
	}

	reqBody, err := json.Marshal(map[string]any{
		"fromChainId":      params.FromChain,
		"toChainId":        params.ToChain,
		"fromTokenAddress": params.FromToken,
		"toTokenAddress":   params.ToToken,
		"fromAmount":       params.FromAmount.String(),
		"fromAddress":      params.FromAddress,
	})
	if err != nil {
		return 0, fmt.Errorf("aggregator: marshal routes request: %w", err)
	}

	body, err := c.post(ctx, "/v1/advanced/routes", reqBody)
	if err != nil {
		return 0, fmt.Errorf("aggregator: routes: %w", err)
	}

	var resp struct {
		Routes []json.RawMessage `json:"routes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("aggregator: decode routes: %w", err)
	}
	if len(resp.Routes) == 0 {
		return 0, fmt.Errorf("aggregator: routes %s -> %s: %w", params.FromToken, params.ToToken, domain.ErrNoRoute)
	}
	return len(resp.Routes), nil
}

func (r rawQuote) toQuote() (Quote, error) {
	toAmount, ok := new(big.Int).SetString(r.Estimate.ToAmount, 10)
	if !ok {
		return Quote{}, fmt.Errorf("aggregator: bad toAmount %q", r.Estimate.ToAmount)
	}
	toAmountMin, ok := new(big.Int).SetString(r.Estimate.ToAmountMin, 10)
	if !ok {
		return Quote{}, fmt.Errorf("aggregator: bad toAmountMin %q", r.Estimate.ToAmountMin)
	}
	fromAmount, ok := new(big.Int).SetString(r.Estimate.FromAmount, 10)
	if !ok {
		return Quote{}, fmt.Errorf("aggregator: bad fromAmount %q", r.Estimate.FromAmount)
	}

	if !common.IsHexAddress(r.TransactionRequest.To) {
		return Quote{}, fmt.Errorf("aggregator: bad transaction target %q", r.TransactionRequest.To)
	}
	data, err := hexutil.Decode(r.TransactionRequest.Data)
	if err != nil {
		return Quote{}, fmt.Errorf("aggregator: decode transaction data: %w", err)
	}

	value := new(big.Int)
	if r.TransactionRequest.Value != "" {
		value, err = hexutil.DecodeBig(r.TransactionRequest.Value)
		if err != nil {
			return Quote{}, fmt.Errorf("aggregator: decode transaction value: %w", err)
		}
	}

	var gasLimit uint64
	if r.TransactionRequest.GasLimit != "" {
		gasLimit, err = hexutil.DecodeUint64(r.TransactionRequest.GasLimit)
		if err != nil {
			return Quote{}, fmt.Errorf("aggregator: decode gas limit: %w", err)
		}
	}

	return Quote{
		Tool:            r.Tool,
		FromAmount:      fromAmount,
		ToAmount:        toAmount,
		ToAmountMin:     toAmountMin,
		ApprovalAddress: r.Estimate.ApprovalAddress,
		Tx: domain.TxPayload{
			To:    common.HexToAddress(r.TransactionRequest.To),
			Data:  data,
			Value: value,
		},
		GasLimit: gasLimit,
	}, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-lifi-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The API answers 404 when it cannot build any route.
		return nil, domain.ErrNoRoute
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, resp.StatusCode, string(body))
	}
	return body, nil
}
