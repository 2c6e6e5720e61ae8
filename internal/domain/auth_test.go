package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialExpiryWindow(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cred := NewCredential("tok", "cookie", base)

	assert.Equal(t, base.Add(24*time.Hour), cred.ExpiresAt)

	assert.True(t, cred.Valid(base))
	assert.True(t, cred.Valid(base.Add(24*time.Hour-time.Second)))
	// The boundary itself is expired.
	assert.False(t, cred.Valid(base.Add(24*time.Hour)))
	assert.False(t, cred.Valid(base.Add(25*time.Hour)))
}

func TestCredentialRemaining(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cred := NewCredential("tok", "cookie", base)

	assert.Equal(t, 24*time.Hour, cred.Remaining(base))
	assert.Equal(t, time.Hour, cred.Remaining(base.Add(23*time.Hour)))
	assert.Equal(t, time.Duration(0), cred.Remaining(base.Add(24*time.Hour)))
	assert.Equal(t, time.Duration(0), cred.Remaining(base.Add(48*time.Hour)))
}

func TestCredentialEmptyNeverValid(t *testing.T) {
	base := time.Now()
	assert.False(t, Credential{}.Valid(base))
	assert.False(t, NewCredential("tok", "", base).Valid(base))
	assert.False(t, NewCredential("", "cookie", base).Valid(base))
}
