package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/curlauth"
	"github.com/alanyoungcy/alphadesk/internal/service"
)

// AuthHandler manages the pasted session credential.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type extractCredentialRequest struct {
	Curl string `json:"curl"`
}

// ExtractCredential parses a pasted curl command and stores the credential.
// POST /api/auth/curl
func (h *AuthHandler) ExtractCredential(w http.ResponseWriter, r *http.Request) {
	var req extractCredentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Curl == "" {
		writeError(w, http.StatusBadRequest, "curl command is required")
		return
	}

	cred, err := h.auth.ExtractFromCurl(r.Context(), req.Curl)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expiresAt":        cred.ExpiresAt.UTC().Format(time.RFC3339),
		"remainingSeconds": int64(time.Until(cred.ExpiresAt).Seconds()),
	})
}

// PrefillOrder extracts the JSON body of a pasted place-order request so the
// console can prefill the order form from a captured request.
// POST /api/auth/curl/order
func (h *AuthHandler) PrefillOrder(w http.ResponseWriter, r *http.Request) {
	var req extractCredentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Curl == "" {
		writeError(w, http.StatusBadRequest, "curl command is required")
		return
	}

	body, err := curlauth.ParseOrderBody(req.Curl)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Status reports whether a usable credential exists and how long it lasts.
// GET /api/auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	ok, remaining, err := h.auth.Status(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated":    ok,
		"remainingSeconds": int64(remaining.Seconds()),
	})
}

// ClearCredential drops the stored credential.
// DELETE /api/auth
func (h *AuthHandler) ClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Clear(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
