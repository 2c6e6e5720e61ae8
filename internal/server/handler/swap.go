package handler

import (
	"fmt"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/service"
	"github.com/alanyoungcy/alphadesk/internal/swap"
)

// SwapDefaults are applied to build requests that leave the corresponding
// fields empty.
type SwapDefaults struct {
	SlippagePct string
	Variant     swap.Variant
}

// SwapHandler builds and submits on-chain swaps.
type SwapHandler struct {
	swaps    *service.SwapService
	tokens   *service.TokenService
	defaults SwapDefaults
	logger   *slog.Logger
}

// NewSwapHandler creates a SwapHandler.
func NewSwapHandler(swaps *service.SwapService, tokens *service.TokenService, defaults SwapDefaults, logger *slog.Logger) *SwapHandler {
	if defaults.SlippagePct == "" {
		defaults.SlippagePct = "0.5"
	}
	if defaults.Variant == "" {
		defaults.Variant = swap.VariantSwap
	}
	return &SwapHandler{swaps: swaps, tokens: tokens, defaults: defaults, logger: logger}
}

type buildSwapRequest struct {
	FromAlphaID string `json:"fromAlphaId"`
	ToAlphaID   string `json:"toAlphaId"`
	Amount      string `json:"amount"`
	SlippagePct string `json:"slippagePct"`
	Order       string `json:"order"`
	ExpectedOut string `json:"expectedOut"` // minor units, local fallback only
	Variant     string `json:"variant"`
}

type txPayloadDTO struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

type swapResultDTO struct {
	Tx              txPayloadDTO `json:"tx"`
	FromAmount      string       `json:"fromAmount"`
	MinReturn       string       `json:"minReturn"`
	Source          string       `json:"source"`
	Tool            string       `json:"tool,omitempty"`
	ApprovalAddress string       `json:"approvalAddress,omitempty"`
}

// BuildSwap resolves both tokens and produces an executable swap transaction.
// POST /api/swap/build
func (h *SwapHandler) BuildSwap(w http.ResponseWriter, r *http.Request) {
	var req buildSwapRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	fromToken, err := h.tokens.GetByAlphaID(r.Context(), req.FromAlphaID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	toToken, err := h.tokens.GetByAlphaID(r.Context(), req.ToAlphaID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if req.SlippagePct == "" {
		req.SlippagePct = h.defaults.SlippagePct
	}
	if req.Variant == "" {
		req.Variant = string(h.defaults.Variant)
	}

	svcReq := service.SwapRequest{
		FromToken:   fromToken,
		ToToken:     toToken,
		Amount:      req.Amount,
		SlippagePct: req.SlippagePct,
		Order:       domain.RouteOrder(req.Order),
		Variant:     swap.Variant(req.Variant),
	}
	if req.ExpectedOut != "" {
		out, ok := new(big.Int).SetString(req.ExpectedOut, 10)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("expectedOut %q is not a base-10 integer", req.ExpectedOut))
			return
		}
		svcReq.ExpectedOut = out
	}

	result, err := h.swaps.BuildSwap(r.Context(), svcReq)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSwapResultDTO(result))
}

type approveSwapRequest struct {
	AlphaID string `json:"alphaId"`
	Spender string `json:"spender"` // empty targets the proxy router
	Amount  string `json:"amount"`  // human units; empty grants unlimited
}

// ApproveSwap packs the ERC-20 allowance transaction a swap needs before the
// router may pull the input token.
// POST /api/swap/approve
func (h *SwapHandler) ApproveSwap(w http.ResponseWriter, r *http.Request) {
	var req approveSwapRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, err := h.tokens.GetByAlphaID(r.Context(), req.AlphaID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payload, err := h.swaps.BuildApprove(r.Context(), token, req.Spender, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tx": toTxPayloadDTO(payload)})
}

type executeSwapRequest struct {
	Tx txPayloadDTO `json:"tx"`
}

// ExecuteSwap signs and submits a previously built swap transaction.
// POST /api/swap/execute
func (h *SwapHandler) ExecuteSwap(w http.ResponseWriter, r *http.Request) {
	var req executeSwapRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	payload, err := fromTxPayloadDTO(req.Tx)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := h.swaps.Execute(r.Context(), service.SwapResult{Tx: payload})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

func toSwapResultDTO(result service.SwapResult) swapResultDTO {
	return swapResultDTO{
		Tx:              toTxPayloadDTO(result.Tx),
		FromAmount:      result.FromAmount.String(),
		MinReturn:       result.MinReturn.String(),
		Source:          result.Source,
		Tool:            result.Tool,
		ApprovalAddress: result.ApprovalAddress,
	}
}

func toTxPayloadDTO(payload domain.TxPayload) txPayloadDTO {
	value := "0"
	if payload.Value != nil {
		value = payload.Value.String()
	}
	return txPayloadDTO{
		To:    payload.To.Hex(),
		Data:  hexutil.Encode(payload.Data),
		Value: value,
	}
}

func fromTxPayloadDTO(dto txPayloadDTO) (domain.TxPayload, error) {
	if !common.IsHexAddress(dto.To) {
		return domain.TxPayload{}, fmt.Errorf("tx.to %q is not a valid address", dto.To)
	}
	data, err := hexutil.Decode(dto.Data)
	if err != nil {
		return domain.TxPayload{}, fmt.Errorf("tx.data: %w", err)
	}
	value := big.NewInt(0)
	if dto.Value != "" {
		parsed, ok := new(big.Int).SetString(dto.Value, 10)
		if !ok {
			return domain.TxPayload{}, fmt.Errorf("tx.value %q is not a base-10 integer", dto.Value)
		}
		value = parsed
	}
	return domain.TxPayload{
		To:    common.HexToAddress(dto.To),
		Data:  data,
		Value: value,
	}, nil
}
