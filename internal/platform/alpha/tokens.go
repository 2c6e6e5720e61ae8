package alpha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

const pathTokenList = "/bapi/defi/v1/public/wallet-direct/buw/wallet/cex/alpha/all/token/list"

// TokenListClient fetches the exchange's full Alpha token list.
type TokenListClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTokenListClient creates a token-list client for the given host.
func NewTokenListClient(baseURL string) *TokenListClient {
	return &TokenListClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchTokenList retrieves every listed Alpha token. Tokens come back with
// their exchange-assigned alphaId; callers must not fall back to
// domain.DeriveAlphaID for live trading.
func (c *TokenListClient) FetchTokenList(ctx context.Context) ([]domain.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathTokenList, nil)
	if err != nil {
		return nil, fmt.Errorf("alpha: create token-list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha: token-list request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpha: read token-list response: %w", err)
	}
	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, fmt.Errorf("alpha: token list: %w", err)
	}

	data, err := unwrapEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("alpha: token list: %w", err)
	}

	var raw []apiToken
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("alpha: decode token list: %w", err)
	}

	tokens := make([]domain.Token, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, t.toDomain())
	}
	return tokens, nil
}

// SortTokensByVolume filters out offline tokens and orders the rest by 24h
// volume, descending. limit caps the result when positive.
func SortTokensByVolume(tokens []domain.Token, limit int) []domain.Token {
	active := make([]domain.Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.Offline {
			active = append(active, t)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return parseVolume(active[i].Volume24h) > parseVolume(active[j].Volume24h)
	})

	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active
}

func parseVolume(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
