package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/alphadesk/internal/aggregator"
	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/feed"
	"github.com/alanyoungcy/alphadesk/internal/platform/alpha"
	"github.com/alanyoungcy/alphadesk/internal/server"
	"github.com/alanyoungcy/alphadesk/internal/server/handler"
	"github.com/alanyoungcy/alphadesk/internal/server/ws"
	"github.com/alanyoungcy/alphadesk/internal/service"
	"github.com/alanyoungcy/alphadesk/internal/swap"
	"github.com/alanyoungcy/alphadesk/internal/wallet"
)

// services bundles the use-case layer built on top of the wired dependencies.
type services struct {
	auth   *service.AuthService
	tokens *service.TokenService
	orders *service.OrderService
	swaps  *service.SwapService
	market *alpha.MarketDataClient
}

// buildServices constructs the platform clients and services shared by the
// serve and full modes.
func (a *App) buildServices(ctx context.Context, deps *Dependencies) (*services, error) {
	trading := alpha.NewTradingClient(a.cfg.Exchange.BaseURL)
	tokenList := alpha.NewTokenListClient(a.cfg.Exchange.BaseURL)
	market := alpha.NewMarketDataClient(a.cfg.Exchange.BaseURL)

	authSvc := service.NewAuthService(deps.CredCache, a.logger)
	tokenSvc := service.NewTokenService(tokenList, deps.TokenCache, a.logger)
	orderSvc := service.NewOrderService(trading, authSvc, tokenSvc, deps.OrderStore, deps.Notifier, a.logger)

	quoter := aggregator.NewClient(a.cfg.Aggregator.BaseURL, a.cfg.Aggregator.APIKey)
	encoder := swap.NewEncoder(
		common.HexToAddress(a.cfg.Swap.ProxyRouter),
		common.HexToAddress(a.cfg.Swap.DexRouter),
		common.HexToAddress(a.cfg.Swap.WrappedNative),
	)

	var sender service.TxSender
	if a.cfg.Wallet.Enabled() {
		keyHex, err := wallet.LoadKey(wallet.KeyConfig{
			RawPrivateKey:    a.cfg.Wallet.PrivateKey,
			EncryptedKeyPath: a.cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      a.cfg.Wallet.KeyPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("app: load wallet key: %w", err)
		}
		w, err := wallet.New(ctx, keyHex, a.cfg.Wallet.RPCURL, a.cfg.Swap.ChainID)
		if err != nil {
			return nil, fmt.Errorf("app: connect wallet: %w", err)
		}
		sender = w
		a.logger.InfoContext(ctx, "wallet ready",
			slog.String("address", w.Address().Hex()),
		)
	} else {
		a.logger.InfoContext(ctx, "no wallet configured, swap execution disabled")
	}

	swapSvc := service.NewSwapService(quoter, encoder, sender, a.cfg.Swap.ChainID, deps.Notifier, a.logger)

	return &services{
		auth:   authSvc,
		tokens: tokenSvc,
		orders: orderSvc,
		swaps:  swapSvc,
		market: market,
	}, nil
}

// ServeMode runs the HTTP + WebSocket API without the price poller.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	svcs, err := a.buildServices(ctx, deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps, svcs)
	a.startBackground(ctx, g, deps, svcs)
	return g.Wait()
}

// FeedMode runs only the price poller, publishing updates onto the bus for
// other processes to serve.
func (a *App) FeedMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting feed mode")

	market := alpha.NewMarketDataClient(a.cfg.Exchange.BaseURL)
	tokenSvc := service.NewTokenService(alpha.NewTokenListClient(a.cfg.Exchange.BaseURL), deps.TokenCache, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	a.startPoller(ctx, g, deps, market, tokenSvc)
	return g.Wait()
}

// FullMode runs the API server and the price poller in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	svcs, err := a.buildServices(ctx, deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps, svcs)
	a.startPoller(ctx, g, deps, svcs.market, svcs.tokens)
	a.startBackground(ctx, g, deps, svcs)
	return g.Wait()
}

// startServer registers handlers and runs the HTTP server plus WebSocket hub
// on the group.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	if !a.cfg.Server.Enabled {
		a.logger.InfoContext(ctx, "server disabled by config")
		return
	}

	hub := ws.NewHub(deps.PriceBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(a.logger),
		Auth:   handler.NewAuthHandler(svcs.auth, a.logger),
		Orders: handler.NewOrderHandler(svcs.orders, a.logger),
		Tokens: handler.NewTokenHandler(svcs.tokens, a.logger),
		Trades: handler.NewTradeHandler(svcs.market, deps.PriceCache, a.logger),
		Swap: handler.NewSwapHandler(svcs.swaps, svcs.tokens, handler.SwapDefaults{
			SlippagePct: a.cfg.Swap.DefaultSlippagePct,
			Variant:     swap.Variant(a.cfg.Swap.DefaultVariant),
		}, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimiter:     deps.RateLimiter,
		RateLimit:       a.cfg.Server.RateLimit,
		RateLimitWindow: a.cfg.Server.RateLimitWindow.Duration,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// startPoller resolves the watch list and runs the price poller on the group.
func (a *App) startPoller(ctx context.Context, g *errgroup.Group, deps *Dependencies, market *alpha.MarketDataClient, tokens *service.TokenService) {
	if !a.cfg.Feed.Enabled {
		a.logger.InfoContext(ctx, "feed disabled by config")
		return
	}

	symbols := a.cfg.Feed.Symbols
	if len(symbols) == 0 {
		top, err := tokens.Top(ctx, 10)
		if err != nil {
			a.logger.WarnContext(ctx, "feed: could not resolve watch list, poller idle",
				slog.String("error", err.Error()),
			)
			return
		}
		for _, t := range top {
			symbols = append(symbols, domain.TradingPair(t.AlphaID, a.cfg.Exchange.QuoteAsset))
		}
	}

	poller := feed.NewPoller(market, deps.PriceCache, deps.PriceBus, symbols, a.cfg.Feed.Interval.Duration, a.logger)
	g.Go(func() error {
		return poller.Run(ctx)
	})
}

// startBackground runs the credential-expiry watcher and, when configured,
// the order archive loop.
func (a *App) startBackground(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	g.Go(func() error {
		return a.watchCredential(ctx, deps, svcs.auth)
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return a.runArchiveLoop(ctx, deps)
		})
	}
}

// watchCredential polls the credential status and fires a single notification
// when a previously valid session ages out.
func (a *App) watchCredential(ctx context.Context, deps *Dependencies, auth *service.AuthService) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	wasValid := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ok, _, err := auth.Status(ctx)
			if err != nil {
				continue
			}
			if wasValid && !ok {
				a.logger.WarnContext(ctx, "session credential expired")
				_ = deps.Notifier.CredentialExpired(ctx)
			}
			wasValid = ok
		}
	}
}

// runArchiveLoop exports aged terminal orders to blob storage once a day.
func (a *App) runArchiveLoop(ctx context.Context, deps *Dependencies) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	archive := func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Archive.RetentionDays)
		n, err := deps.Archiver.ArchiveOrders(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "order archive failed",
				slog.String("error", err.Error()),
			)
			return
		}
		if n > 0 {
			a.logger.InfoContext(ctx, "orders archived",
				slog.Int("count", n),
				slog.Time("cutoff", cutoff),
			)
		}
	}

	archive()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			archive()
		}
	}
}
