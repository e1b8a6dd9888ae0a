package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/cache"
	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

const (
	maxOrderNumberAttempts = 3
	defaultOrderPageSize   = 10
)

type OrderService struct {
	store       OrderStore
	cache       cache.ProductCache
	now         func() time.Time
	orderNumber func(time.Time) string
}

func NewOrderService(store OrderStore, cache cache.ProductCache) *OrderService {
	return &OrderService{
		store:       store,
		cache:       cache,
		now:         time.Now,
		orderNumber: domain.GenerateOrderNumber,
	}
}

// CreateOrder checks out the user's whole cart. Stock, the order and the
// emptied cart commit together; a clashing order number retries the checkout
// with a fresh one.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req *domain.CreateOrderRequest) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		now := s.now().UTC()
		number := s.orderNumber(now)
		o, err := s.store.PlaceOrder(ctx, userID, func(lines []domain.CartLine) (*domain.Order, error) {
			return domain.NewOrder(userID, req, lines, number, now)
		})
		if errors.Is(err, domain.ErrDuplicateOrderNumber) && attempt < maxOrderNumberAttempts {
			slog.WarnContext(ctx, "order number taken, retrying", "order_number", number, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		slog.InfoContext(ctx, "order placed",
			"order_id", o.ID, "order_number", o.OrderNumber, "user_id", userID, "total", o.TotalAmount.String())
		s.invalidateProducts(ctx, o)
		return o, nil
	}
}

// GetOrder hides orders the caller does not own behind not found.
func (s *OrderService) GetOrder(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && o.UserID != actor.UserID {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// ListOrders pages through orders. Customers only ever see their own.
func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor, q domain.OrderQuery) (*domain.PagedResult[domain.OrderSummary], error) {
	if !actor.IsAdmin() {
		q.UserID = actor.UserID
	}
	q.Page, q.PageSize = domain.NormalizePage(q.Page, q.PageSize, defaultOrderPageSize)

	orders, total, err := s.store.ListOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	return domain.NewPagedResult(orders, total, q.Page, q.PageSize), nil
}

// StatusHistory returns the audited status changes of an order. Admin only.
func (s *OrderService) StatusHistory(ctx context.Context, actor domain.Actor, id int64) ([]domain.StatusAudit, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	if _, err := s.store.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.store.StatusHistory(ctx, id)
}

// CancelOrder cancels an order of the caller, or any order for admins, and
// returns its units to stock.
func (s *OrderService) CancelOrder(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	owner := actor.UserID
	if actor.IsAdmin() {
		owner = 0
	}
	o, err := s.store.ModifyOrder(ctx, id, owner, actor.UserID, func(o *domain.Order) (*domain.StatusChange, error) {
		return o.Cancel(s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order cancelled", "order_id", o.ID, "actor_id", actor.UserID, "payment_status", o.PaymentStatus)
	s.invalidateProducts(ctx, o)
	return o, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor domain.Actor, id int64,
	req *domain.UpdateStatusRequest) (*domain.Order, error) {
	return s.changeStatus(ctx, actor, id, req, (*domain.Order).Transition)
}

// ForceOrderStatus sets any status regardless of the transition table. The
// change is audited as forced.
func (s *OrderService) ForceOrderStatus(ctx context.Context, actor domain.Actor, id int64,
	req *domain.UpdateStatusRequest) (*domain.Order, error) {
	return s.changeStatus(ctx, actor, id, req, (*domain.Order).ForceStatus)
}

func (s *OrderService) changeStatus(ctx context.Context, actor domain.Actor, id int64, req *domain.UpdateStatusRequest,
	apply func(o *domain.Order, req *domain.UpdateStatusRequest, now time.Time) (*domain.StatusChange, error)) (*domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var change *domain.StatusChange
	o, err := s.store.ModifyOrder(ctx, id, 0, actor.UserID, func(o *domain.Order) (*domain.StatusChange, error) {
		c, err := apply(o, req, s.now().UTC())
		change = c
		return c, err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order status changed",
		"order_id", o.ID, "from", change.From, "to", change.To, "forced", change.Forced, "actor_id", actor.UserID)
	if len(change.Adjustments) > 0 {
		s.invalidateProducts(ctx, o)
	}
	return o, nil
}

// invalidateProducts drops cached products whose stock the order moved.
// Failures only leave a stale entry until its TTL runs out.
func (s *OrderService) invalidateProducts(ctx context.Context, o *domain.Order) {
	ids := make([]int64, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	deleteCached(ctx, s.cache, ids...)
}

func deleteCached(ctx context.Context, c cache.ProductCache, ids ...int64) {
	if len(ids) == 0 {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := c.Delete(dctx, ids...); err != nil {
		slog.WarnContext(ctx, "product cache invalidation failed", "product_ids", ids, "error", err)
	}
}
