package service

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/alphadesk/internal/aggregator"
	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/notify"
	"github.com/alanyoungcy/alphadesk/internal/swap"
)

type fakeQuoter struct {
	quote      aggregator.Quote
	err        error
	params     aggregator.QuoteParams
	routes     int
	routesErr  error
	routeCalls int
}

func (f *fakeQuoter) GetQuote(ctx context.Context, params aggregator.QuoteParams) (aggregator.Quote, error) {
	f.params = params
	return f.quote, f.err
}

func (f *fakeQuoter) CountRoutes(ctx context.Context, params aggregator.QuoteParams) (int, error) {
	f.routeCalls++
	return f.routes, f.routesErr
}

type fakeSender struct {
	sent []domain.TxPayload
	err  error
}

func (f *fakeSender) SendTx(ctx context.Context, payload domain.TxPayload) (common.Hash, error) {
	f.sent = append(f.sent, payload)
	return common.HexToHash("0xbeef"), f.err
}

func (f *fakeSender) Address() common.Address {
	return common.HexToAddress("0x9999999999999999999999999999999999999999")
}

// minedSender also answers receipt queries, exercising the background watch.
type minedSender struct {
	fakeSender
	receipt *types.Receipt
	waitErr error
	waits   chan struct{}
}

func (m *minedSender) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if m.waits != nil {
		m.waits <- struct{}{}
	}
	return m.receipt, m.waitErr
}

// recordingSender captures notifications for assertions.
type recordingSender struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingSender) Send(ctx context.Context, title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingSender) Name() string { return "recorder" }

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

func testEncoder() *swap.Encoder {
	return swap.NewEncoder(
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
	)
}

func swapRequest() SwapRequest {
	return SwapRequest{
		FromToken:   domain.Token{ContractAddress: "0x55d398326f99059ff775485246999027b3197955", Decimals: 18},
		ToToken:     domain.Token{ContractAddress: "0x921fa5e25c0b63301280f03de55f1c7b3c67e0ab", Decimals: 18},
		Amount:      "1.5",
		SlippagePct: "0.5",
		Order:       domain.RouteCheapest,
	}
}

func TestBuildSwapPrefersAggregator(t *testing.T) {
	quoter := &fakeQuoter{quote: aggregator.Quote{
		Tool:            "pancakeswap",
		ToAmountMin:     big.NewInt(995000),
		ApprovalAddress: "0x1231deb6f5749ef6ce6943a275a1d3e7486f4eae",
		Tx: domain.TxPayload{
			To:    common.HexToAddress("0x1231deb6f5749ef6ce6943a275a1d3e7486f4eae"),
			Data:  []byte{0x46, 0x66, 0xfc, 0x80},
			Value: big.NewInt(0),
		},
	}}
	sender := &fakeSender{}
	svc := NewSwapService(quoter, testEncoder(), sender, 56, testNotifier(), testLogger())

	result, err := svc.BuildSwap(context.Background(), swapRequest())
	require.NoError(t, err)

	assert.Equal(t, "aggregator", result.Source)
	assert.Equal(t, "pancakeswap", result.Tool)
	assert.Equal(t, "0x1231deb6f5749ef6ce6943a275a1d3e7486f4eae", result.ApprovalAddress)
	assert.Equal(t, "1500000000000000000", result.FromAmount.String())
	assert.Equal(t, big.NewInt(995000), result.MinReturn)

	// Percent slippage converts to the aggregator's fractional form.
	assert.Equal(t, "0.005", quoter.params.Slippage)
	assert.Equal(t, int64(56), quoter.params.FromChain)
	assert.Equal(t, sender.Address().Hex(), quoter.params.FromAddress)
}

func TestBuildSwapFallsBackToLocalEncoder(t *testing.T) {
	quoter := &fakeQuoter{err: domain.ErrNoRoute}
	svc := NewSwapService(quoter, testEncoder(), &fakeSender{}, 56, testNotifier(), testLogger())

	req := swapRequest()
	req.ExpectedOut = big.NewInt(1_000_000)
	req.Variant = swap.VariantSwap

	result, err := svc.BuildSwap(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "local", result.Source)
	// 0.5% slippage on 1,000,000 floors to 995,000.
	assert.Equal(t, big.NewInt(995000), result.MinReturn)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), result.Tx.To)
	// The proxy router pulls the input token, so it is the approval target.
	assert.Equal(t, result.Tx.To.Hex(), result.ApprovalAddress)

	decoded, err := swap.DecodeProxySwap(result.Tx.Data)
	require.NoError(t, err)
	assert.Equal(t, swap.VariantSwap, decoded.Variant)
	assert.Equal(t, "1500000000000000000", decoded.FromAmount.String())
}

func TestBuildSwapLocalNestedVariant(t *testing.T) {
	quoter := &fakeQuoter{err: domain.ErrNoRoute}
	svc := NewSwapService(quoter, testEncoder(), &fakeSender{}, 56, testNotifier(), testLogger())

	req := swapRequest()
	req.ExpectedOut = big.NewInt(1_000_000)
	req.Variant = swap.VariantProxySwapV2

	result, err := svc.BuildSwap(context.Background(), req)
	require.NoError(t, err)

	decoded, err := swap.DecodeProxySwap(result.Tx.Data)
	require.NoError(t, err)
	assert.Equal(t, swap.VariantProxySwapV2, decoded.Variant)
	assert.NotEmpty(t, decoded.CallData)
}

func TestBuildSwapNoRouteNoExpectedOut(t *testing.T) {
	quoter := &fakeQuoter{err: domain.ErrNoRoute, routes: 2}
	svc := NewSwapService(quoter, testEncoder(), &fakeSender{}, 56, testNotifier(), testLogger())

	_, err := svc.BuildSwap(context.Background(), swapRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoRoute))
	// The routes endpoint is consulted for the diagnostic log.
	assert.Equal(t, 1, quoter.routeCalls)
}

func TestBuildSwapRejectsMalformedSlippage(t *testing.T) {
	for _, bad := range []string{"0..5", "", "abc", "-1", "250"} {
		quoter := &fakeQuoter{}
		svc := NewSwapService(quoter, testEncoder(), &fakeSender{}, 56, testNotifier(), testLogger())

		req := swapRequest()
		req.SlippagePct = bad
		_, err := svc.BuildSwap(context.Background(), req)
		require.Error(t, err, "slippage %q", bad)
		assert.True(t, errors.Is(err, domain.ErrValidation), "slippage %q", bad)
		// Rejection happens before any quote request leaves.
		assert.Nil(t, quoter.params.FromAmount, "slippage %q reached the quoter", bad)
	}
}

func TestBuildSwapAggregatorHardFailure(t *testing.T) {
	quoter := &fakeQuoter{err: domain.ErrUpstream}
	svc := NewSwapService(quoter, testEncoder(), &fakeSender{}, 56, testNotifier(), testLogger())

	req := swapRequest()
	req.ExpectedOut = big.NewInt(1_000_000)

	// Only ErrNoRoute triggers the fallback; upstream failures surface.
	_, err := svc.BuildSwap(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestExecute(t *testing.T) {
	sender := &fakeSender{}
	svc := NewSwapService(&fakeQuoter{}, testEncoder(), sender, 56, testNotifier(), testLogger())

	payload := domain.TxPayload{
		To:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Data:  []byte{0x01},
		Value: big.NewInt(0),
	}
	hash, err := svc.Execute(context.Background(), SwapResult{Tx: payload})
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	require.Len(t, sender.sent, 1)
}

func TestExecuteWithoutWallet(t *testing.T) {
	svc := NewSwapService(&fakeQuoter{}, testEncoder(), nil, 56, testNotifier(), testLogger())

	_, err := svc.Execute(context.Background(), SwapResult{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestExecuteWatchesReceipt(t *testing.T) {
	sender := &minedSender{
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(42),
		},
		waits: make(chan struct{}, 1),
	}
	svc := NewSwapService(&fakeQuoter{}, testEncoder(), sender, 56, testNotifier(), testLogger())

	payload := domain.TxPayload{
		To:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Data:  []byte{0x01},
		Value: big.NewInt(0),
	}
	_, err := svc.Execute(context.Background(), SwapResult{Tx: payload})
	require.NoError(t, err)

	select {
	case <-sender.waits:
	case <-time.After(time.Second):
		t.Fatal("receipt watch never ran")
	}
}

func TestExecuteNotifiesOnRevert(t *testing.T) {
	rec := &recordingSender{}
	notifier := notify.NewNotifier([]notify.Sender{rec}, nil, testLogger())
	sender := &minedSender{waitErr: errors.New("tx 0xbeef reverted")}
	svc := NewSwapService(&fakeQuoter{}, testEncoder(), sender, 56, notifier, testLogger())

	payload := domain.TxPayload{
		To:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Data:  []byte{0x01},
		Value: big.NewInt(0),
	}
	_, err := svc.Execute(context.Background(), SwapResult{Tx: payload})
	require.NoError(t, err)

	// Submission notifies once synchronously; the revert adds a second.
	assert.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, 10*time.Millisecond)
}

func TestBuildApproveDefaultsToProxyRouter(t *testing.T) {
	svc := NewSwapService(&fakeQuoter{}, testEncoder(), nil, 56, testNotifier(), testLogger())
	token := domain.Token{ContractAddress: "0x55d398326f99059ff775485246999027b3197955", Decimals: 18}

	payload, err := svc.BuildApprove(context.Background(), token, "", "")
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress(token.ContractAddress), payload.To)
	assert.Equal(t, swap.SelectorApprove, swap.ParseMethod(payload.Data).Selector)
	// Spender word carries the proxy router.
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111").Bytes(), payload.Data[16:36])
	// Empty amount grants the unlimited allowance, a word of all ones.
	for _, b := range payload.Data[36:68] {
		require.EqualValues(t, 0xff, b)
	}
}

func TestBuildApproveExplicitSpenderAndAmount(t *testing.T) {
	svc := NewSwapService(&fakeQuoter{}, testEncoder(), nil, 56, testNotifier(), testLogger())
	token := domain.Token{ContractAddress: "0x55d398326f99059ff775485246999027b3197955", Decimals: 6}

	payload, err := svc.BuildApprove(context.Background(), token, "0x2222222222222222222222222222222222222222", "1.5")
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0x2222222222222222222222222222222222222222").Bytes(), payload.Data[16:36])
	allowance := new(big.Int).SetBytes(payload.Data[36:68])
	assert.Equal(t, big.NewInt(1_500_000), allowance)

	_, err = svc.BuildApprove(context.Background(), token, "not-an-address", "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
