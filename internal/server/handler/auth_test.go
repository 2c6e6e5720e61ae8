package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/service"
)

const sampleCurl = `curl 'https://www.example-exchange.com/bapi/defi/v1/private/alpha-trade/order/place' \
  --header 'csrftoken: d41d8cd98f00b204e9800998ecf8427e' \
  --header 'Cookie: cr00=ABC123; p20t=ey.jwt.token' \
  --data-raw '{"baseAsset":"ALPHA_382"}'`

func newAuthFixture() (*AuthHandler, *memCredCache) {
	creds := newMemCredCache()
	svc := service.NewAuthService(creds, testLogger())
	return NewAuthHandler(svc, testLogger()), creds
}

func TestExtractCredential(t *testing.T) {
	h, creds := newAuthFixture()

	body, _ := json.Marshal(map[string]string{"curl": sampleCurl})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/curl", strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	h.ExtractCredential(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		ExpiresAt        time.Time `json:"expiresAt"`
		RemainingSeconds int64     `json:"remainingSeconds"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Greater(t, resp.RemainingSeconds, int64(23*3600))
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", creds.cred.CSRFToken)
}

func TestExtractCredentialMalformedCurl(t *testing.T) {
	h, creds := newAuthFixture()

	body, _ := json.Marshal(map[string]string{"curl": "curl 'https://x' --header 'csrftoken: abc'"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/curl", strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	h.ExtractCredential(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, creds.cred.CSRFToken)
}

func TestExtractCredentialEmptyBody(t *testing.T) {
	h, _ := newAuthFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/curl", strings.NewReader(`{"curl":""}`))
	rr := httptest.NewRecorder()
	h.ExtractCredential(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPrefillOrder(t *testing.T) {
	h, _ := newAuthFixture()

	body, _ := json.Marshal(map[string]string{"curl": sampleCurl})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/curl/order", strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	h.PrefillOrder(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ALPHA_382", resp["baseAsset"])
}

func TestPrefillOrderNoDataPayload(t *testing.T) {
	h, _ := newAuthFixture()

	body, _ := json.Marshal(map[string]string{"curl": "curl 'https://x' --header 'csrftoken: abc'"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/curl/order", strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	h.PrefillOrder(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthStatusLifecycle(t *testing.T) {
	h, _ := newAuthFixture()

	status := func() (bool, int64) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
		rr := httptest.NewRecorder()
		h.Status(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Authenticated    bool  `json:"authenticated"`
			RemainingSeconds int64 `json:"remainingSeconds"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp.Authenticated, resp.RemainingSeconds
	}

	ok, remaining := status()
	assert.False(t, ok)
	assert.Zero(t, remaining)

	body, _ := json.Marshal(map[string]string{"curl": sampleCurl})
	rr := httptest.NewRecorder()
	h.ExtractCredential(rr, httptest.NewRequest(http.MethodPost, "/api/auth/curl", strings.NewReader(string(body))))
	require.Equal(t, http.StatusOK, rr.Code)

	ok, remaining = status()
	assert.True(t, ok)
	assert.Greater(t, remaining, int64(0))

	rr = httptest.NewRecorder()
	h.ClearCredential(rr, httptest.NewRequest(http.MethodDelete, "/api/auth", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	ok, _ = status()
	assert.False(t, ok)
}
