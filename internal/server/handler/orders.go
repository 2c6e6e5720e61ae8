package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/alphadesk/internal/domain"
	"github.com/alanyoungcy/alphadesk/internal/platform/alpha"
	"github.com/alanyoungcy/alphadesk/internal/service"
)

// OrderHandler exposes order placement, cancellation, and history.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type placeOrderRequest struct {
	AlphaID       string `json:"alphaId"`
	QuoteAsset    string `json:"quoteAsset"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	PaymentAmount string `json:"paymentAmount"`
	PaymentMethod string `json:"paymentMethod"`
}

// PlaceOrder normalizes and submits a limit order.
// POST /api/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.QuoteAsset == "" {
		req.QuoteAsset = "USDT"
	}

	rec, err := h.orders.PlaceOrder(r.Context(), req.AlphaID, req.QuoteAsset, domain.OrderIntent{
		Side:          domain.Side(req.Side),
		Price:         req.Price,
		Quantity:      req.Quantity,
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// CancelOrder cancels an order by its upstream id.
// DELETE /api/orders/{id}
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "order id is required")
		return
	}
	if err := h.orders.CancelOrder(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled", "orderId": id})
}

// GetOrder fetches one order from the exchange, syncing local history.
// GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "order id is required")
		return
	}
	rec, err := h.orders.GetOrderDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// QueryOrders proxies the exchange's order listing.
// GET /api/orders
func (h *OrderHandler) QueryOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := alpha.QueryOrdersParams{
		BaseAsset:  q.Get("baseAsset"),
		QuoteAsset: q.Get("quoteAsset"),
		Side:       domain.Side(q.Get("side")),
		Status:     q.Get("status"),
	}
	if v := q.Get("startTime"); v != "" {
		params.StartTime, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("endTime"); v != "" {
		params.EndTime, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("page"); v != "" {
		params.Page, _ = strconv.Atoi(v)
	}
	params.Limit = parseListOpts(r).Limit

	records, err := h.orders.QueryOrders(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": records,
		"count":  len(records),
	})
}

// History lists locally recorded orders.
// GET /api/orders/history
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.orders.History(r.Context(), r.URL.Query().Get("symbol"), parseListOpts(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": records,
		"count":  len(records),
	})
}

// GetBalance proxies the account balance endpoint.
// GET /api/balance
func (h *OrderHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balances, err := h.orders.GetBalance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": balances})
}
