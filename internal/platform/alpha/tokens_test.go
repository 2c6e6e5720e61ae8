package alpha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

func TestFetchTokenList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathTokenList, r.URL.Path)
		w.Write([]byte(`{
			"code": "000000",
			"data": [
				{"alphaId": "ALPHA_382", "symbol": "AIOT", "contractAddress": "0xabc", "decimals": 18, "volume24h": "5000000", "offline": false},
				{"alphaId": "ALPHA_119", "symbol": "KOGE", "contractAddress": "0xdef", "decimals": 18, "volume24h": "9000000", "offline": false},
				{"alphaId": "ALPHA_007", "symbol": "DEAD", "contractAddress": "0x123", "decimals": 18, "volume24h": "99000000", "offline": true}
			]
		}`))
	}))
	defer srv.Close()

	client := NewTokenListClient(srv.URL)
	tokens, err := client.FetchTokenList(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "ALPHA_382", tokens[0].AlphaID)
	assert.Equal(t, "AIOT", tokens[0].Symbol)
}

func TestSortTokensByVolume(t *testing.T) {
	tokens := []domain.Token{
		{AlphaID: "ALPHA_382", Volume24h: "5000000"},
		{AlphaID: "ALPHA_119", Volume24h: "9000000"},
		{AlphaID: "ALPHA_007", Volume24h: "99000000", Offline: true},
		{AlphaID: "ALPHA_200", Volume24h: "not-a-number"},
	}

	sorted := SortTokensByVolume(tokens, 0)
	require.Len(t, sorted, 3)
	assert.Equal(t, "ALPHA_119", sorted[0].AlphaID)
	assert.Equal(t, "ALPHA_382", sorted[1].AlphaID)
	assert.Equal(t, "ALPHA_200", sorted[2].AlphaID)

	top := SortTokensByVolume(tokens, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "ALPHA_119", top[0].AlphaID)
}

func TestDeriveAlphaID(t *testing.T) {
	got := domain.DeriveAlphaID("0x921fa5e25c0b63301280f03de55f1c7b3c67e0ab")
	assert.Equal(t, "ALPHA_67e0ab", got)
}
