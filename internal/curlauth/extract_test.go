package curlauth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

const sampleCurl = `curl 'https://www.example-exchange.com/bapi/defi/v1/private/alpha-trade/order/place' \
--header 'clienttype: web' \
--header 'csrftoken: d41d8cd98f00b204e9800998ecf8427e' \
--header 'Cookie: cr00=AAAA; logined=y; p20t=web.12345' \
--header 'Content-Type: application/json' \
--data '{"baseAsset":"ALPHA_382","quoteAsset":"USDT","workingSide":"BUY","workingPrice":0.07,"workingQuantity":14.28}'`

func TestExtract(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cred, err := Extract(sampleCurl, now)
	require.NoError(t, err)

	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", cred.CSRFToken)
	assert.Equal(t, "cr00=AAAA; logined=y; p20t=web.12345", cred.Cookie)
	assert.Equal(t, now, cred.ExtractedAt)
	assert.Equal(t, now.Add(domain.CredentialTTL), cred.ExpiresAt)
	assert.True(t, cred.Valid(now))
}

func TestExtractShortFlagForm(t *testing.T) {
	raw := `curl 'https://x' -H 'csrftoken: tok' -H 'Cookie: a=b'`
	cred, err := Extract(raw, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.CSRFToken)
	assert.Equal(t, "a=b", cred.Cookie)
}

func TestExtractMissingCookieFails(t *testing.T) {
	raw := `curl 'https://x' --header 'csrftoken: tok'`
	_, err := Extract(raw, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
}

func TestExtractMissingTokenFails(t *testing.T) {
	raw := `curl 'https://x' --header 'Cookie: a=b'`
	_, err := Extract(raw, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
}

func TestExtractNeverReturnsPartialCredential(t *testing.T) {
	cred, err := Extract(`curl 'https://x' --header 'csrftoken: tok'`, time.Now())
	require.Error(t, err)
	assert.Empty(t, cred.CSRFToken)
	assert.Empty(t, cred.Cookie)
}

func TestParseOrderBody(t *testing.T) {
	body, err := ParseOrderBody(sampleCurl)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA_382", body["baseAsset"])
	assert.Equal(t, "BUY", body["workingSide"])
	assert.InDelta(t, 0.07, body["workingPrice"], 1e-12)
}

func TestParseOrderBodyMissingData(t *testing.T) {
	_, err := ParseOrderBody(`curl 'https://x' --header 'csrftoken: tok'`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
}

func TestParseOrderBodyBadJSON(t *testing.T) {
	_, err := ParseOrderBody(`curl 'https://x' --data '{broken'`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
}
