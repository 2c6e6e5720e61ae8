package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

func TestTokenListCacheFirst(t *testing.T) {
	lister := &fakeTokenLister{tokens: []domain.Token{{AlphaID: "ALPHA_382"}}}
	cache := &memTokenCache{}
	svc := NewTokenService(lister, cache, testLogger())

	// Cold cache: fetch and populate.
	tokens, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
	assert.Equal(t, 1, lister.fetches)

	// Warm cache: no second fetch.
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lister.fetches)
}

func TestTokenRefreshBypassesCache(t *testing.T) {
	lister := &fakeTokenLister{tokens: []domain.Token{{AlphaID: "ALPHA_382"}}}
	cache := &memTokenCache{}
	svc := NewTokenService(lister, cache, testLogger())

	_, err := svc.List(context.Background())
	require.NoError(t, err)

	lister.tokens = append(lister.tokens, domain.Token{AlphaID: "ALPHA_119"})
	tokens, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	assert.Equal(t, 2, lister.fetches)

	cached, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestTokenTopFiltersAndRanks(t *testing.T) {
	lister := &fakeTokenLister{tokens: []domain.Token{
		{AlphaID: "ALPHA_1", Volume24h: "100"},
		{AlphaID: "ALPHA_2", Volume24h: "300", Offline: true},
		{AlphaID: "ALPHA_3", Volume24h: "200"},
	}}
	svc := NewTokenService(lister, &memTokenCache{}, testLogger())

	top, err := svc.Top(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "ALPHA_3", top[0].AlphaID)
}

func TestGetByAlphaID(t *testing.T) {
	lister := &fakeTokenLister{tokens: []domain.Token{{AlphaID: "ALPHA_382", Symbol: "AIOT"}}}
	svc := NewTokenService(lister, &memTokenCache{}, testLogger())

	tok, err := svc.GetByAlphaID(context.Background(), "ALPHA_382")
	require.NoError(t, err)
	assert.Equal(t, "AIOT", tok.Symbol)

	_, err = svc.GetByAlphaID(context.Background(), "ALPHA_999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
