// Package server assembles the HTTP + WebSocket API for the trading console.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/server/handler"
	"github.com/alanyoungcy/alphadesk/internal/server/middleware"
	"github.com/alanyoungcy/alphadesk/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimiter applies a per-client sliding window when set. The exchange
	// session behind the proxy is easy to burn through; the limiter shields it.
	RateLimiter     domain.RateLimiter
	RateLimit       int
	RateLimitWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Orders *handler.OrderHandler
	Tokens *handler.TokenHandler
	Trades *handler.TradeHandler
	Swap   *handler.SwapHandler
}

// Server is the headless HTTP + WebSocket API server for the console.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (rate limiting, auth, logging, CORS) and attaches
// the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Credential endpoints.
	mux.HandleFunc("POST /api/auth/curl", handlers.Auth.ExtractCredential)
	mux.HandleFunc("POST /api/auth/curl/order", handlers.Auth.PrefillOrder)
	mux.HandleFunc("GET /api/auth/status", handlers.Auth.Status)
	mux.HandleFunc("DELETE /api/auth", handlers.Auth.ClearCredential)

	// Token catalog endpoints.
	mux.HandleFunc("GET /api/tokens", handlers.Tokens.List)
	mux.HandleFunc("GET /api/tokens/top", handlers.Tokens.Top)
	mux.HandleFunc("POST /api/tokens/refresh", handlers.Tokens.Refresh)
	mux.HandleFunc("GET /api/tokens/{alphaId}", handlers.Tokens.Get)

	// Order endpoints.
	mux.HandleFunc("POST /api/orders", handlers.Orders.PlaceOrder)
	mux.HandleFunc("GET /api/orders", handlers.Orders.QueryOrders)
	mux.HandleFunc("GET /api/orders/history", handlers.Orders.History)
	mux.HandleFunc("GET /api/orders/{id}", handlers.Orders.GetOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", handlers.Orders.CancelOrder)
	mux.HandleFunc("GET /api/balance", handlers.Orders.GetBalance)

	// Market-data endpoints.
	mux.HandleFunc("GET /api/trades", handlers.Trades.AggTrades)
	mux.HandleFunc("GET /api/price/{symbol}", handlers.Trades.LatestPrice)

	// Swap endpoints.
	mux.HandleFunc("POST /api/swap/build", handlers.Swap.BuildSwap)
	mux.HandleFunc("POST /api/swap/approve", handlers.Swap.ApproveSwap)
	mux.HandleFunc("POST /api/swap/execute", handlers.Swap.ExecuteSwap)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	if cfg.RateLimiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Second
		}
		h = middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit, window)(h)
	}

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
