package service

import (
	"context"
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

// memCredCache is an in-memory domain.CredentialCache with read-time expiry.
type memCredCache struct {
	cred domain.Credential
	set  bool
	now  func() time.Time
}

func newMemCredCache() *memCredCache {
	return &memCredCache{now: time.Now}
}

func (m *memCredCache) Set(ctx context.Context, cred domain.Credential) error {
	m.cred = cred
	m.set = true
	return nil
}

func (m *memCredCache) Get(ctx context.Context) (domain.Credential, error) {
	if !m.set {
		return domain.Credential{}, domain.ErrNotFound
	}
	if !m.cred.Valid(m.now()) {
		m.set = false
		return domain.Credential{}, domain.ErrExpired
	}
	return m.cred, nil
}

func (m *memCredCache) Clear(ctx context.Context) error {
	m.set = false
	return nil
}

func (m *memCredCache) RemainingTTL(ctx context.Context) (time.Duration, error) {
	if !m.set {
		return 0, nil
	}
	return m.cred.Remaining(m.now()), nil
}

// memTokenCache is an in-memory domain.TokenCache without TTL semantics.
type memTokenCache struct {
	tokens []domain.Token
	set    bool
}

func (m *memTokenCache) Set(ctx context.Context, tokens []domain.Token) error {
	m.tokens = tokens
	m.set = true
	return nil
}

func (m *memTokenCache) Get(ctx context.Context) ([]domain.Token, error) {
	if !m.set {
		return nil, domain.ErrNotFound
	}
	return m.tokens, nil
}

func (m *memTokenCache) Clear(ctx context.Context) error {
	m.set = false
	return nil
}

func (m *memTokenCache) RemainingTTL(ctx context.Context) (time.Duration, error) {
	if !m.set {
		return 0, nil
	}
	return time.Hour, nil
}

// memOrderStore is an in-memory domain.OrderStore.
type memOrderStore struct {
	records []domain.OrderRecord
}

func (m *memOrderStore) Create(ctx context.Context, rec domain.OrderRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memOrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, executedQty string) error {
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

func (m *memOrderStore) GetByUpstreamID(ctx context.Context, upstreamID string) (domain.OrderRecord, error) {
	for _, rec := range m.records {
		if rec.UpstreamOrderID == upstreamID {
			return rec, nil
		}
	}
	return domain.OrderRecord{}, domain.ErrNotFound
}

func (m *memOrderStore) ListBySymbol(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	for _, rec := range m.records {
		if rec.Symbol == symbol {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memOrderStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	return m.records, nil
}

func (m *memOrderStore) ListTerminalBefore(ctx context.Context, before time.Time) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	for _, rec := range m.records {
		if rec.Status.Terminal() && rec.UpdatedAt.Before(before) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeTrading is a scripted TradingAPI.
type fakeTrading struct {
	placed     []alpha.PlaceOrderRequest
	placeResp  alpha.APIOrder
	placeErr   error
	cancelled  []string
	cancelErr  error
	detailResp alpha.APIOrder
	lastCred   domain.Credential
}

func (f *fakeTrading) PlaceOrder(ctx context.Context, cred domain.Credential, req alpha.PlaceOrderRequest) (alpha.APIOrder, error) {
	f.lastCred = cred
	f.placed = append(f.placed, req)
	return f.placeResp, f.placeErr
}

func (f *fakeTrading) CancelOrder(ctx context.Context, cred domain.Credential, orderID string) error {
	f.cancelled = append(f.cancelled, orderID)
	return f.cancelErr
}

func (f *fakeTrading) QueryOrders(ctx context.Context, cred domain.Credential, params alpha.QueryOrdersParams) ([]alpha.APIOrder, error) {
	return []alpha.APIOrder{f.detailResp}, nil
}

func (f *fakeTrading) GetOrderDetail(ctx context.Context, cred domain.Credential, orderID string) (alpha.APIOrder, error) {
	return f.detailResp, nil
}

func (f *fakeTrading) GetAccountBalance(ctx context.Context, cred domain.Credential) ([]alpha.AssetBalance, error) {
	return nil, nil
}

// fakeTokenLister serves a fixed token list.
type fakeTokenLister struct {
	tokens  []domain.Token
	fetches int
}

func (f *fakeTokenLister) FetchTokenList(ctx context.Context) ([]domain.Token, error) {
	f.fetches++
	return f.tokens, nil
}
