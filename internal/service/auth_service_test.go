package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

const sampleCurlCmd = `curl 'https://www.example-exchange.com/bapi/defi/v1/private/alpha-trade/order/place' \
  --header 'csrftoken: d41d8cd98f00b204e9800998ecf8427e' \
  --header 'Cookie: cr00=ABC123; p20t=ey.jwt.token' \
  --data-raw '{"baseAsset":"ALPHA_382"}'`

func TestExtractFromCurlStoresCredential(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	creds := newMemCredCache()
	creds.now = func() time.Time { return base }
	svc := NewAuthService(creds, testLogger()).WithClock(func() time.Time { return base })

	cred, err := svc.ExtractFromCurl(context.Background(), sampleCurlCmd)
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", cred.CSRFToken)
	assert.Equal(t, base.Add(24*time.Hour), cred.ExpiresAt)

	stored, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cred.CSRFToken, stored.CSRFToken)

	ok, remaining, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, remaining)
}

func TestExtractFromCurlNeverStoresPartial(t *testing.T) {
	creds := newMemCredCache()
	svc := NewAuthService(creds, testLogger())

	_, err := svc.ExtractFromCurl(context.Background(), "curl 'https://x' --header 'csrftoken: abc'")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))

	_, err = svc.Current(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClearCredential(t *testing.T) {
	creds := newMemCredCache()
	svc := NewAuthService(creds, testLogger())

	_, err := svc.ExtractFromCurl(context.Background(), sampleCurlCmd)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background()))

	ok, remaining, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, remaining)
}
