package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, req *domain.CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Actor, q domain.OrderQuery) (*domain.PagedResult[domain.OrderSummary], error)
	CancelOrder(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, actor domain.Actor, id int64, req *domain.UpdateStatusRequest) (*domain.Order, error)
	ForceOrderStatus(ctx context.Context, actor domain.Actor, id int64, req *domain.UpdateStatusRequest) (*domain.Order, error)
	StatusHistory(ctx context.Context, actor domain.Actor, id int64) ([]domain.StatusAudit, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	q := newQueryParams(r.URL.Query())
	query := domain.OrderQuery{
		Status:        domain.OrderStatus(q.string("status")),
		PaymentStatus: domain.PaymentStatus(q.string("paymentStatus")),
		FromDate:      q.timePtr("fromDate"),
		ToDate:        q.timePtr("toDate"),
		MinAmount:     q.decimalPtr("minAmount"),
		MaxAmount:     q.decimalPtr("maxAmount"),
		Search:        q.string("search"),
		SortBy:        q.string("sortBy"),
		SortOrder:     q.string("sortOrder"),
		Page:          q.int("page"),
		PageSize:      q.int("pageSize"),
	}
	if query.Status != "" && !query.Status.Valid() {
		q.fail("status")
	}
	if query.PaymentStatus != "" && !query.PaymentStatus.Valid() {
		q.fail("paymentStatus")
	}
	if q.err != nil {
		handleServiceError(w, r, q.err)
		return
	}

	orders, err := h.orders.ListOrders(ctx, actor, query)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/orders/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(ctx, actor, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// POST /api/orders checks out the caller's cart.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req domain.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.orders.CreateOrder(ctx, actor.UserID, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/orders/%d", o.ID))
	respondJSON(w, http.StatusCreated, o)
}

// POST /api/orders/{id}/cancel
func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.orders.CancelOrder(ctx, actor, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// GET /api/orders/{id}/history
func (h *OrdersHandler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	history, err := h.orders.StatusHistory(ctx, actor, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// PUT /api/orders/{id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.orders.UpdateOrderStatus)
}

// PUT /api/orders/{id}/status/force
func (h *OrdersHandler) ForceStatus(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.orders.ForceOrderStatus)
}

func (h *OrdersHandler) changeStatus(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, domain.Actor, int64, *domain.UpdateStatusRequest) (*domain.Order, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := apply(ctx, actor, id, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
