package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/platform/alpha"
)

// TokenLister fetches the full Alpha token list from the exchange.
type TokenLister interface {
	FetchTokenList(ctx context.Context) ([]domain.Token, error)
}

// TokenService serves the token list cache-first, refetching on miss or on
// explicit refresh.
type TokenService struct {
	api    TokenLister
	cache  domain.TokenCache
	logger *slog.Logger
}

// NewTokenService creates a TokenService.
func NewTokenService(api TokenLister, cache domain.TokenCache, logger *slog.Logger) *TokenService {
	return &TokenService{
		api:    api,
		cache:  cache,
		logger: logger.With(slog.String("component", "token_service")),
	}
}

// List returns all listed tokens, from cache when fresh.
func (s *TokenService) List(ctx context.Context) ([]domain.Token, error) {
	tokens, err := s.cache.Get(ctx)
	if err == nil {
		return tokens, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.Refresh(ctx)
}

// Refresh refetches the token list and replaces the cache.
func (s *TokenService) Refresh(ctx context.Context) ([]domain.Token, error) {
	tokens, err := s.api.FetchTokenList(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, tokens); err != nil {
		// A cache write failure should not hide a successful fetch.
		s.logger.WarnContext(ctx, "token cache write failed",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "token list refreshed",
		slog.Int("count", len(tokens)),
	)
	return tokens, nil
}

// Top returns active tokens ranked by 24h volume, capped at limit.
func (s *TokenService) Top(ctx context.Context, limit int) ([]domain.Token, error) {
	tokens, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return alpha.SortTokensByVolume(tokens, limit), nil
}

// GetByAlphaID looks a token up by its exchange-assigned alphaId.
func (s *TokenService) GetByAlphaID(ctx context.Context, alphaID string) (domain.Token, error) {
	tokens, err := s.List(ctx)
	if err != nil {
		return domain.Token{}, err
	}
	for _, t := range tokens {
		if t.AlphaID == alphaID {
			return t, nil
		}
	}
	return domain.Token{}, fmt.Errorf("token_service: %s: %w", alphaID, domain.ErrNotFound)
}
