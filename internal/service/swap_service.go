package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/alphadesk/internal/aggregator"
	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/notify"
	"github.com/alanyoungcy/alphadesk/internal/swap"
)

// Quoter is the slice of the aggregator client the swap service uses.
type Quoter interface {
	GetQuote(ctx context.Context, params aggregator.QuoteParams) (aggregator.Quote, error)
	CountRoutes(ctx context.Context, params aggregator.QuoteParams) (int, error)
}

// TxSender submits a prepared transaction. Nil sender means quote/build only.
type TxSender interface {
	SendTx(ctx context.Context, payload domain.TxPayload) (common.Hash, error)
	Address() common.Address
}

// ReceiptWaiter is implemented by senders that can block until a submitted
// transaction is mined. Execute follows such transactions in the background.
type ReceiptWaiter interface {
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// receiptWaitTimeout bounds the background receipt watch. BSC blocks land in
// seconds; five minutes means the mempool dropped the transaction.
const receiptWaitTimeout = 5 * time.Minute

// maxAllowance is the unlimited ERC-20 allowance, 2^256 - 1.
var maxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// SwapRequest describes a swap in human units.
type SwapRequest struct {
	FromToken   domain.Token
	ToToken     domain.Token
	Amount      string // human units of FromToken, decimal string
	SlippagePct string // percent, e.g. "0.5"
	Order       domain.RouteOrder
	// ExpectedOut is the anticipated output in minor units, used for the
	// local-encoder fallback when the aggregator has no route. BUY quotes
	// normally supply it from the latest aggregator or market price.
	ExpectedOut *big.Int
	Variant     swap.Variant
}

// SwapResult is a built, executable swap. ApprovalAddress is the contract
// that needs an ERC-20 allowance on the input token before Tx can succeed.
type SwapResult struct {
	Tx              domain.TxPayload `json:"tx"`
	FromAmount      *big.Int         `json:"fromAmount"`
	MinReturn       *big.Int         `json:"minReturn"`
	Source          string           `json:"source"` // "aggregator" or "local"
	Tool            string           `json:"tool,omitempty"`
	ApprovalAddress string           `json:"approvalAddress,omitempty"`
}

// SwapService builds swap transactions aggregator-first, falling back to the
// local proxy-router encoder when no route exists, and optionally submits
// them through the wallet.
type SwapService struct {
	quoter   Quoter
	encoder  *swap.Encoder
	sender   TxSender
	chainID  int64
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewSwapService creates a SwapService. sender may be nil, in which case
// Execute returns an error and the service only quotes and builds.
func NewSwapService(
	quoter Quoter,
	encoder *swap.Encoder,
	sender TxSender,
	chainID int64,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *SwapService {
	return &SwapService{
		quoter:   quoter,
		encoder:  encoder,
		sender:   sender,
		chainID:  chainID,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "swap_service")),
	}
}

// BuildSwap produces an executable swap transaction. The slippage string is
// validated before anything leaves the process. The aggregator is asked
// first; when it has no route the local encoder packs the proxy-router call
// itself using the request's expected output for slippage.
func (s *SwapService) BuildSwap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	slippage, err := decimal.NewFromString(req.SlippagePct)
	if err != nil || slippage.Sign() < 0 || slippage.GreaterThan(decimal.NewFromInt(100)) {
		return SwapResult{}, fmt.Errorf("swap_service: %w: bad slippage %q", domain.ErrValidation, req.SlippagePct)
	}

	fromAmount, err := swap.ToMinorUnits(req.Amount, req.FromToken.Decimals)
	if err != nil {
		return SwapResult{}, err
	}

	recipient := common.Address{}
	if s.sender != nil {
		recipient = s.sender.Address()
	}

	params := aggregator.QuoteParams{
		FromChain:   s.chainID,
		ToChain:     s.chainID,
		FromToken:   req.FromToken.ContractAddress,
		ToToken:     req.ToToken.ContractAddress,
		FromAmount:  fromAmount,
		FromAddress: recipient.Hex(),
		Slippage:    slippage.Div(decimal.NewFromInt(100)).String(),
		Order:       req.Order,
	}

	quote, err := s.quoter.GetQuote(ctx, params)
	if err == nil {
		s.logger.InfoContext(ctx, "swap routed via aggregator",
			slog.String("tool", quote.Tool),
			slog.String("min_return", quote.ToAmountMin.String()),
		)
		return SwapResult{
			Tx:              quote.Tx,
			FromAmount:      fromAmount,
			MinReturn:       quote.ToAmountMin,
			Source:          "aggregator",
			Tool:            quote.Tool,
			ApprovalAddress: quote.ApprovalAddress,
		}, nil
	}
	if !errors.Is(err, domain.ErrNoRoute) {
		return SwapResult{}, err
	}

	if req.ExpectedOut == nil || req.ExpectedOut.Sign() <= 0 {
		s.logNoRoute(ctx, params)
		return SwapResult{}, fmt.Errorf("swap_service: %w: local fallback needs an expected output", domain.ErrNoRoute)
	}
	return s.buildLocal(ctx, req, slippage, fromAmount, recipient)
}

// logNoRoute asks the routes endpoint how many candidates exist for a pair
// the quote endpoint refused, so a dead pair can be told apart from a
// quote-shape problem.
func (s *SwapService) logNoRoute(ctx context.Context, params aggregator.QuoteParams) {
	n, err := s.quoter.CountRoutes(ctx, params)
	if err != nil {
		return
	}
	s.logger.WarnContext(ctx, "no executable quote despite candidate routes",
		slog.Int("routes", n),
		slog.String("from", params.FromToken),
		slog.String("to", params.ToToken),
	)
}

// buildLocal packs the proxy-router call directly.
func (s *SwapService) buildLocal(ctx context.Context, req SwapRequest, slippage decimal.Decimal, fromAmount *big.Int, recipient common.Address) (SwapResult, error) {
	minReturn, err := swap.ComputeMinReturn(req.ExpectedOut, slippage)
	if err != nil {
		return SwapResult{}, err
	}

	plan := domain.SwapPlan{
		FromToken:  common.HexToAddress(req.FromToken.ContractAddress),
		ToToken:    common.HexToAddress(req.ToToken.ContractAddress),
		FromAmount: fromAmount,
		MinReturn:  minReturn,
		Recipient:  recipient,
	}

	variant := req.Variant
	if variant == "" {
		variant = swap.VariantSwap
	}
	if variant == swap.VariantProxySwapV2 {
		inner, err := s.encoder.EncodeInnerDexCall(plan)
		if err != nil {
			return SwapResult{}, err
		}
		plan.InnerCallData = inner
	}

	payload, err := s.encoder.EncodeProxySwap(plan, variant)
	if err != nil {
		return SwapResult{}, err
	}

	s.logger.InfoContext(ctx, "swap encoded locally",
		slog.String("variant", string(variant)),
		slog.String("min_return", minReturn.String()),
	)
	return SwapResult{
		Tx:              payload,
		FromAmount:      fromAmount,
		MinReturn:       minReturn,
		Source:          "local",
		ApprovalAddress: payload.To.Hex(),
	}, nil
}

// BuildApprove packs the ERC-20 approve a swap needs before the router may
// pull the input token. An empty spender targets the proxy router, the puller
// on the locally encoded path; an empty amount grants the unlimited
// allowance.
func (s *SwapService) BuildApprove(ctx context.Context, token domain.Token, spender, amount string) (domain.TxPayload, error) {
	target := s.encoder.ProxyRouter()
	if spender != "" {
		if !common.IsHexAddress(spender) {
			return domain.TxPayload{}, fmt.Errorf("swap_service: %w: bad spender %q", domain.ErrValidation, spender)
		}
		target = common.HexToAddress(spender)
	}

	allowance := maxAllowance
	if amount != "" {
		var err error
		allowance, err = swap.ToMinorUnits(amount, token.Decimals)
		if err != nil {
			return domain.TxPayload{}, err
		}
	}

	payload, err := swap.EncodeApprove(common.HexToAddress(token.ContractAddress), target, allowance)
	if err != nil {
		return domain.TxPayload{}, err
	}

	s.logger.InfoContext(ctx, "approval encoded",
		slog.String("token", token.ContractAddress),
		slog.String("spender", target.Hex()),
	)
	return payload, nil
}

// Execute submits a built swap through the wallet.
func (s *SwapService) Execute(ctx context.Context, result SwapResult) (string, error) {
	if s.sender == nil {
		return "", fmt.Errorf("swap_service: %w: no wallet configured", domain.ErrValidation)
	}

	hash, err := s.sender.SendTx(ctx, result.Tx)
	if err != nil {
		_ = s.notifier.SwapFailed(ctx, err)
		return "", err
	}

	s.logger.InfoContext(ctx, "swap submitted",
		slog.String("tx_hash", hash.Hex()),
		slog.String("source", result.Source),
	)
	_ = s.notifier.SwapSubmitted(ctx, hash.Hex())

	if waiter, ok := s.sender.(ReceiptWaiter); ok {
		go s.watchReceipt(waiter, hash)
	}
	return hash.Hex(), nil
}

// watchReceipt follows a submitted swap to its receipt and raises the failure
// notification when it reverts. It outlives the request context on purpose;
// the transaction is already on its way regardless of the caller.
func (s *SwapService) watchReceipt(waiter ReceiptWaiter, hash common.Hash) {
	ctx, cancel := context.WithTimeout(context.Background(), receiptWaitTimeout)
	defer cancel()

	receipt, err := waiter.WaitMined(ctx, hash)
	if err != nil {
		s.logger.ErrorContext(ctx, "swap not confirmed",
			slog.String("tx_hash", hash.Hex()),
			slog.String("error", err.Error()),
		)
		_ = s.notifier.SwapFailed(ctx, err)
		return
	}
	s.logger.InfoContext(ctx, "swap mined",
		slog.String("tx_hash", hash.Hex()),
		slog.Uint64("block", receipt.BlockNumber.Uint64()),
		slog.Uint64("gas_used", receipt.GasUsed),
	)
}
