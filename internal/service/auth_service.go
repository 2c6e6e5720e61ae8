// Package service holds the console's use cases, sitting between the HTTP
// handlers and the platform clients, caches, and stores.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/curlauth"
	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// AuthService manages the pasted session credential: extraction from a raw
// curl command, storage with its 24-hour window, and read-time expiry.
type AuthService struct {
	creds  domain.CredentialCache
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(creds domain.CredentialCache, logger *slog.Logger) *AuthService {
	return &AuthService{
		creds:  creds,
		logger: logger.With(slog.String("component", "auth_service")),
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Test use.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// ExtractFromCurl parses a pasted curl command, stamps the credential's
// validity window, and stores it. Extraction is all-or-nothing; a partial
// credential is never stored.
func (s *AuthService) ExtractFromCurl(ctx context.Context, raw string) (domain.Credential, error) {
	cred, err := curlauth.Extract(raw, s.now())
	if err != nil {
		return domain.Credential{}, err
	}

	if err := s.creds.Set(ctx, cred); err != nil {
		return domain.Credential{}, err
	}

	s.logger.InfoContext(ctx, "credential extracted",
		slog.Time("expires_at", cred.ExpiresAt),
	)
	return cred, nil
}

// Current returns the stored credential for use on private API calls. It
// surfaces ErrNotFound or ErrExpired from the cache untouched.
func (s *AuthService) Current(ctx context.Context) (domain.Credential, error) {
	return s.creds.Get(ctx)
}

// Status reports whether a usable credential exists and how long it remains
// valid.
func (s *AuthService) Status(ctx context.Context) (bool, time.Duration, error) {
	remaining, err := s.creds.RemainingTTL(ctx)
	if err != nil {
		return false, 0, err
	}
	return remaining > 0, remaining, nil
}

// Clear drops the stored credential.
func (s *AuthService) Clear(ctx context.Context) error {
	s.logger.InfoContext(ctx, "credential cleared")
	return s.creds.Clear(ctx)
}
