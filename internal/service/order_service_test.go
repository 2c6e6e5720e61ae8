package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/platform/alpha"
)

func newOrderFixture(t *testing.T) (*OrderService, *fakeTrading, *memCredCache, *memOrderStore) {
	t.Helper()

	creds := newMemCredCache()
	require.NoError(t, creds.Set(context.Background(), domain.NewCredential("tok", "cookie", time.Now())))

	tokens := &memTokenCache{}
	require.NoError(t, tokens.Set(context.Background(), []domain.Token{
		{AlphaID: "ALPHA_382", Symbol: "AIOT", ContractAddress: "0xabc", Decimals: 18},
	}))

	trading := &fakeTrading{
		placeResp: alpha.APIOrder{OrderID: "91554", Status: "NEW"},
	}
	store := &memOrderStore{}

	auth := NewAuthService(creds, testLogger())
	tokenSvc := NewTokenService(&fakeTokenLister{}, tokens, testLogger())
	svc := NewOrderService(trading, auth, tokenSvc, store, testNotifier(), testLogger())
	return svc, trading, creds, store
}

func TestPlaceOrderNormalizesAndRecords(t *testing.T) {
	svc, trading, _, store := newOrderFixture(t)

	rec, err := svc.PlaceOrder(context.Background(), "ALPHA_382", "USDT", domain.OrderIntent{
		Side:          domain.SideBuy,
		Price:         "0.07",
		Quantity:      "14.28",
		PaymentAmount: "999999", // advisory input, must be ignored
	})
	require.NoError(t, err)

	require.Len(t, trading.placed, 1)
	sent := trading.placed[0]
	assert.Equal(t, json.Number("14.28"), sent.WorkingQuantity)
	assert.Equal(t, "0.9996", sent.PaymentDetails[0].Amount)
	assert.Equal(t, domain.PaymentBalance, sent.PaymentDetails[0].PaymentWalletType)
	assert.Equal(t, "tok", trading.lastCred.CSRFToken)

	assert.Equal(t, "91554", rec.UpstreamOrderID)
	assert.Equal(t, "ALPHA_382USDT", rec.Symbol)
	assert.Equal(t, "0.9996", rec.Amount)
	assert.NotEmpty(t, rec.ID)

	require.Len(t, store.records, 1)
	assert.Equal(t, rec.ID, store.records[0].ID)
}

func TestPlaceOrderWithoutCredential(t *testing.T) {
	svc, trading, creds, _ := newOrderFixture(t)
	require.NoError(t, creds.Clear(context.Background()))

	_, err := svc.PlaceOrder(context.Background(), "ALPHA_382", "USDT", domain.OrderIntent{
		Side: domain.SideBuy, Price: "0.07", Quantity: "10",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, trading.placed)
}

func TestPlaceOrderExpiredCredential(t *testing.T) {
	svc, _, creds, _ := newOrderFixture(t)
	creds.cred = domain.NewCredential("tok", "cookie", time.Now().Add(-25*time.Hour))

	_, err := svc.PlaceOrder(context.Background(), "ALPHA_382", "USDT", domain.OrderIntent{
		Side: domain.SideBuy, Price: "0.07", Quantity: "10",
	})
	assert.True(t, errors.Is(err, domain.ErrExpired))
}

func TestPlaceOrderUnknownToken(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	_, err := svc.PlaceOrder(context.Background(), "ALPHA_999", "USDT", domain.OrderIntent{
		Side: domain.SideBuy, Price: "0.07", Quantity: "10",
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPlaceOrderBadDecimalInput(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	_, err := svc.PlaceOrder(context.Background(), "ALPHA_382", "USDT", domain.OrderIntent{
		Side: domain.SideBuy, Price: "not-a-price", Quantity: "10",
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestPlaceOrderUpstreamFailureNotRecorded(t *testing.T) {
	svc, trading, _, store := newOrderFixture(t)
	trading.placeErr = domain.ErrUpstream

	_, err := svc.PlaceOrder(context.Background(), "ALPHA_382", "USDT", domain.OrderIntent{
		Side: domain.SideSell, Price: "0.07", Quantity: "10",
	})
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Empty(t, store.records)
}

func TestCancelOrderSyncsLocalRecord(t *testing.T) {
	svc, trading, _, store := newOrderFixture(t)
	store.records = []domain.OrderRecord{{
		ID: "local-1", UpstreamOrderID: "91554", Status: domain.OrderStatusPending,
	}}

	require.NoError(t, svc.CancelOrder(context.Background(), "91554"))
	assert.Equal(t, []string{"91554"}, trading.cancelled)
	assert.Equal(t, domain.OrderStatusCancelled, store.records[0].Status)
}

func TestGetOrderDetailSyncsFill(t *testing.T) {
	svc, trading, _, store := newOrderFixture(t)
	store.records = []domain.OrderRecord{{
		ID: "local-1", UpstreamOrderID: "91554", Status: domain.OrderStatusPending,
	}}
	trading.detailResp = alpha.APIOrder{
		OrderID:          "91554",
		Status:           "FILLED",
		BaseAsset:        "ALPHA_382",
		QuoteAsset:       "USDT",
		ExecutedQuantity: "14.28",
	}

	rec, err := svc.GetOrderDetail(context.Background(), "91554")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFilled, rec.Status)

	assert.Equal(t, domain.OrderStatusFilled, store.records[0].Status)
	assert.Equal(t, "14.28", store.records[0].ExecutedQty)
}
