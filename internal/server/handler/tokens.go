package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/alphadesk/internal/service"
)

// TokenHandler exposes the Alpha token catalog.
type TokenHandler struct {
	tokens *service.TokenService
	logger *slog.Logger
}

// NewTokenHandler creates a TokenHandler.
func NewTokenHandler(tokens *service.TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// List returns the token catalog, cache-first.
// GET /api/tokens
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.tokens.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": tokens,
		"count":  len(tokens),
	})
}

// Top returns the n highest-volume tradable tokens.
// GET /api/tokens/top
func (h *TokenHandler) Top(w http.ResponseWriter, r *http.Request) {
	n := 20
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}

	tokens, err := h.tokens.Top(r.Context(), n)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": tokens,
		"count":  len(tokens),
	})
}

// Refresh re-fetches the catalog from the exchange, bypassing the cache.
// POST /api/tokens/refresh
func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.tokens.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": tokens,
		"count":  len(tokens),
	})
}

// Get looks up one token by its alphaId.
// GET /api/tokens/{alphaId}
func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	alphaID := r.PathValue("alphaId")
	if alphaID == "" {
		writeError(w, http.StatusBadRequest, "alphaId is required")
		return
	}
	token, err := h.tokens.GetByAlphaID(r.Context(), alphaID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}
