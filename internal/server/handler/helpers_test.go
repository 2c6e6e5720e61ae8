package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

func TestStatusFromErr(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrParse, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrExpired, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrNoRoute, http.StatusNotFound},
		{domain.ErrUpstream, http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFromErr(tc.err), tc.err.Error())
		// Wrapped errors must map the same way.
		wrapped := fmt.Errorf("handler: %w: detail", tc.err)
		assert.Equal(t, tc.want, statusFromErr(wrapped), wrapped.Error())
	}
}

func TestParseListOpts(t *testing.T) {
	opts := parseListOpts(httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, 50, opts.Limit)
	assert.Equal(t, 0, opts.Offset)

	opts = parseListOpts(httptest.NewRequest(http.MethodGet, "/api/orders?limit=25&offset=100", nil))
	assert.Equal(t, 25, opts.Limit)
	assert.Equal(t, 100, opts.Offset)

	opts = parseListOpts(httptest.NewRequest(http.MethodGet, "/api/orders?limit=9999", nil))
	assert.Equal(t, 500, opts.Limit)

	opts = parseListOpts(httptest.NewRequest(http.MethodGet, "/api/orders?limit=-3&offset=-1", nil))
	assert.Equal(t, 50, opts.Limit)
	assert.Equal(t, 0, opts.Offset)
}
