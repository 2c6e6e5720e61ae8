package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/notify"
	"github.com/alanyoungcy/alphadesk/internal/platform/alpha"
)

// TradingAPI is the slice of the exchange trading client the order service
// uses. The credential travels with every call; the service owns no auth
// state of its own.
type TradingAPI interface {
	PlaceOrder(ctx context.Context, cred domain.Credential, req alpha.PlaceOrderRequest) (alpha.APIOrder, error)
	CancelOrder(ctx context.Context, cred domain.Credential, orderID string) error
	QueryOrders(ctx context.Context, cred domain.Credential, params alpha.QueryOrdersParams) ([]alpha.APIOrder, error)
	GetOrderDetail(ctx context.Context, cred domain.Credential, orderID string) (alpha.APIOrder, error)
	GetAccountBalance(ctx context.Context, cred domain.Credential) ([]alpha.AssetBalance, error)
}

// OrderService proxies the private trading API, keeping a local history
// record of everything it submits. The exchange stays authoritative; the
// local store only spares the console from re-querying for its own history.
type OrderService struct {
	trading  TradingAPI
	auth     *AuthService
	tokens   *TokenService
	store    domain.OrderStore
	notifier *notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates an OrderService.
func NewOrderService(
	trading TradingAPI,
	auth *AuthService,
	tokens *TokenService,
	store domain.OrderStore,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		trading:  trading,
		auth:     auth,
		tokens:   tokens,
		store:    store,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "order_service")),
		now:      time.Now,
	}
}

// PlaceOrder normalizes and submits an order for the given token pair. The
// quantity is rounded to the price-derived precision and the payment amount
// recomputed before anything reaches the wire.
func (s *OrderService) PlaceOrder(ctx context.Context, alphaID, quoteAsset string, intent domain.OrderIntent) (domain.OrderRecord, error) {
	cred, err := s.auth.Current(ctx)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	token, err := s.tokens.GetByAlphaID(ctx, alphaID)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	price, err := decimal.NewFromString(intent.Price)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("order_service: %w: bad price %q", domain.ErrValidation, intent.Price)
	}
	quantity, err := decimal.NewFromString(intent.Quantity)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("order_service: %w: bad quantity %q", domain.ErrValidation, intent.Quantity)
	}

	var req alpha.PlaceOrderRequest
	switch intent.Side {
	case domain.SideBuy:
		req, err = alpha.BuildBuyOrder(token, quoteAsset, price, quantity, intent.PaymentMethod)
	case domain.SideSell:
		req, err = alpha.BuildSellOrder(token, quoteAsset, price, quantity)
	default:
		err = fmt.Errorf("order_service: %w: unknown side %q", domain.ErrValidation, intent.Side)
	}
	if err != nil {
		return domain.OrderRecord{}, err
	}

	upstream, err := s.trading.PlaceOrder(ctx, cred, req)
	if err != nil {
		_ = s.notifier.OrderFailed(ctx, req.Symbol(), intent.Side, err)
		return domain.OrderRecord{}, err
	}

	rec := domain.OrderRecord{
		ID:              uuid.NewString(),
		UpstreamOrderID: upstream.OrderID,
		BaseAsset:       token.AlphaID,
		QuoteAsset:      quoteAsset,
		Symbol:          req.Symbol(),
		Side:            intent.Side,
		Price:           req.WorkingPrice.String(),
		Quantity:        req.WorkingQuantity.String(),
		Amount:          req.PaymentDetails[0].Amount,
		PaymentMethod:   req.PaymentDetails[0].PaymentWalletType,
		Status:          domain.OrderStatusPending,
		CreatedAt:       s.now().UTC(),
		UpdatedAt:       s.now().UTC(),
	}
	if upstream.Status != "" {
		rec.Status = domain.OrderStatus(upstream.Status)
	}

	if err := s.store.Create(ctx, rec); err != nil {
		// The order is live upstream; losing history is the lesser failure.
		s.logger.ErrorContext(ctx, "order placed but history write failed",
			slog.String("upstream_order_id", upstream.OrderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("symbol", rec.Symbol),
		slog.String("side", string(rec.Side)),
		slog.String("quantity", rec.Quantity),
		slog.String("price", rec.Price),
		slog.String("upstream_order_id", rec.UpstreamOrderID),
	)
	_ = s.notifier.OrderPlaced(ctx, rec)

	return rec, nil
}

// CancelOrder cancels an order by its upstream id and reflects the change in
// local history when a matching record exists.
func (s *OrderService) CancelOrder(ctx context.Context, upstreamID string) error {
	cred, err := s.auth.Current(ctx)
	if err != nil {
		return err
	}

	if err := s.trading.CancelOrder(ctx, cred, upstreamID); err != nil {
		return err
	}

	if rec, lookupErr := s.store.GetByUpstreamID(ctx, upstreamID); lookupErr == nil {
		_ = s.store.UpdateStatus(ctx, rec.ID, domain.OrderStatusCancelled, "")
	}

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("upstream_order_id", upstreamID),
	)
	_ = s.notifier.OrderCancelled(ctx, upstreamID)
	return nil
}

// QueryOrders proxies the exchange's order list.
func (s *OrderService) QueryOrders(ctx context.Context, params alpha.QueryOrdersParams) ([]domain.OrderRecord, error) {
	cred, err := s.auth.Current(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.trading.QueryOrders(ctx, cred, params)
	if err != nil {
		return nil, err
	}

	records := make([]domain.OrderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, o.ToDomain())
	}
	return records, nil
}

// GetOrderDetail fetches one order from the exchange and syncs the local
// record's status. A fill observed here triggers a notification.
func (s *OrderService) GetOrderDetail(ctx context.Context, upstreamID string) (domain.OrderRecord, error) {
	cred, err := s.auth.Current(ctx)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	upstream, err := s.trading.GetOrderDetail(ctx, cred, upstreamID)
	if err != nil {
		return domain.OrderRecord{}, err
	}
	fresh := upstream.ToDomain()

	local, lookupErr := s.store.GetByUpstreamID(ctx, upstreamID)
	if lookupErr == nil && local.Status != fresh.Status {
		_ = s.store.UpdateStatus(ctx, local.ID, fresh.Status, fresh.ExecutedQty)
		if fresh.Status == domain.OrderStatusFilled {
			_ = s.notifier.OrderFilled(ctx, fresh)
		}
	}

	return fresh, nil
}

// GetBalance proxies the account balance endpoint.
func (s *OrderService) GetBalance(ctx context.Context) ([]alpha.AssetBalance, error) {
	cred, err := s.auth.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.trading.GetAccountBalance(ctx, cred)
}

// History lists locally recorded orders, optionally filtered by symbol.
func (s *OrderService) History(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	if symbol != "" {
		return s.store.ListBySymbol(ctx, symbol, opts)
	}
	return s.store.ListRecent(ctx, opts)
}
