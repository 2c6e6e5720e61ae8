package domain

import "time"

// CredentialTTL is the fixed validity window of an extracted credential,
// measured from extraction time.
const CredentialTTL = 24 * time.Hour

// Credential is an opaque pair of exchange session secrets extracted from a
// pasted request: a CSRF-style token and a cookie header blob. No content
// validation is performed locally; the exchange is the judge of validity.
type Credential struct {
	CSRFToken   string    `json:"csrfToken"`
	Cookie      string    `json:"cookie"`
	ExtractedAt time.Time `json:"extractedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewCredential stamps a token/cookie pair with the fixed 24h expiry window.
func NewCredential(csrfToken, cookie string, now time.Time) Credential {
	return Credential{
		CSRFToken:   csrfToken,
		Cookie:      cookie,
		ExtractedAt: now,
		ExpiresAt:   now.Add(CredentialTTL),
	}
}

// Valid reports whether the credential is populated and unexpired at now.
func (c Credential) Valid(now time.Time) bool {
	if c.CSRFToken == "" || c.Cookie == "" {
		return false
	}
	return now.Before(c.ExpiresAt)
}

// Remaining returns the time left before expiry, clamped at zero.
func (c Credential) Remaining(now time.Time) time.Duration {
	if !now.Before(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
