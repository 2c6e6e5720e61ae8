package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/notify"
	"github.com/alanyoungcy/alphadesk/internal/platform/alpha"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testNotifier() *notify.Notifier {
	return notify.NewNotifier(nil, nil, testLogger())
}

type memCredCache struct {
	cred domain.Credential
	now  func() time.Time
}

func newMemCredCache() *memCredCache {
	return &memCredCache{now: time.Now}
}

func (m *memCredCache) Set(_ context.Context, cred domain.Credential) error {
	m.cred = cred
	return nil
}

func (m *memCredCache) Get(_ context.Context) (domain.Credential, error) {
	if m.cred.CSRFToken == "" {
		return domain.Credential{}, domain.ErrNotFound
	}
	if !m.cred.Valid(m.now()) {
		return domain.Credential{}, domain.ErrExpired
	}
	return m.cred, nil
}

func (m *memCredCache) Clear(_ context.Context) error {
	m.cred = domain.Credential{}
	return nil
}

func (m *memCredCache) RemainingTTL(_ context.Context) (time.Duration, error) {
	return m.cred.Remaining(m.now()), nil
}

type memTokenCache struct {
	tokens []domain.Token
	set    bool
}

func (m *memTokenCache) Set(_ context.Context, tokens []domain.Token) error {
	m.tokens = tokens
	m.set = true
	return nil
}

func (m *memTokenCache) Get(_ context.Context) ([]domain.Token, error) {
	if !m.set {
		return nil, domain.ErrNotFound
	}
	return m.tokens, nil
}

func (m *memTokenCache) Clear(_ context.Context) error {
	m.tokens = nil
	m.set = false
	return nil
}

func (m *memTokenCache) RemainingTTL(_ context.Context) (time.Duration, error) {
	if !m.set {
		return 0, nil
	}
	return time.Hour, nil
}

type fakeTokenLister struct {
	tokens []domain.Token
	err    error
}

func (f *fakeTokenLister) FetchTokenList(_ context.Context) ([]domain.Token, error) {
	return f.tokens, f.err
}

type memOrderStore struct {
	records []domain.OrderRecord
}

func (m *memOrderStore) Create(_ context.Context, rec domain.OrderRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memOrderStore) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, executedQty string) error {
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = status
			if executedQty != "" {
				m.records[i].ExecutedQty = executedQty
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memOrderStore) GetByUpstreamID(_ context.Context, upstreamID string) (domain.OrderRecord, error) {
	for _, rec := range m.records {
		if rec.UpstreamOrderID == upstreamID {
			return rec, nil
		}
	}
	return domain.OrderRecord{}, domain.ErrNotFound
}

func (m *memOrderStore) ListBySymbol(_ context.Context, symbol string, _ domain.ListOpts) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	for _, rec := range m.records {
		if rec.Symbol == symbol {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memOrderStore) ListRecent(_ context.Context, _ domain.ListOpts) ([]domain.OrderRecord, error) {
	return m.records, nil
}

func (m *memOrderStore) ListTerminalBefore(_ context.Context, before time.Time) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	for _, rec := range m.records {
		if rec.Status.Terminal() && rec.UpdatedAt.Before(before) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeTrading struct {
	placeResp  alpha.APIOrder
	placeErr   error
	detailResp alpha.APIOrder
	detailErr  error
	queryResp  []alpha.APIOrder
	balances   []alpha.AssetBalance
	placed     []alpha.PlaceOrderRequest
	cancelled  []string
}

func (f *fakeTrading) PlaceOrder(_ context.Context, _ domain.Credential, req alpha.PlaceOrderRequest) (alpha.APIOrder, error) {
	if f.placeErr != nil {
		return alpha.APIOrder{}, f.placeErr
	}
	f.placed = append(f.placed, req)
	return f.placeResp, nil
}

func (f *fakeTrading) CancelOrder(_ context.Context, _ domain.Credential, orderID string) error {
	f.cancelled = append(f.cancelled, orderID)
	return nil
}

func (f *fakeTrading) QueryOrders(_ context.Context, _ domain.Credential, _ alpha.QueryOrdersParams) ([]alpha.APIOrder, error) {
	return f.queryResp, nil
}

func (f *fakeTrading) GetOrderDetail(_ context.Context, _ domain.Credential, orderID string) (alpha.APIOrder, error) {
	if f.detailErr != nil {
		return alpha.APIOrder{}, f.detailErr
	}
	if f.detailResp.OrderID != orderID {
		return alpha.APIOrder{}, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return f.detailResp, nil
}

func (f *fakeTrading) GetAccountBalance(_ context.Context, _ domain.Credential) ([]alpha.AssetBalance, error) {
	return f.balances, nil
}
