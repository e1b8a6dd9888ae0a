package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the outbox payload published for order lifecycle changes.
type OrderEvent struct {
	Type           string           `json:"type"`
	OrderID        int64            `json:"order_id"`
	OrderNumber    string           `json:"order_number"`
	UserID         int64            `json:"user_id"`
	Status         OrderStatus      `json:"status"`
	PreviousStatus OrderStatus      `json:"previous_status,omitempty"`
	PaymentStatus  PaymentStatus    `json:"payment_status"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Forced         bool             `json:"forced,omitempty"`
	ActorID        int64            `json:"actor_id,omitempty"`
	Items          []OrderEventItem `json:"items,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func NewOrderEvent(eventType string, o *Order, change *StatusChange, actorID int64) OrderEvent {
	ev := OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		ActorID:       actorID,
		OccurredAt:    o.UpdatedAt,
	}
	if change != nil {
		ev.PreviousStatus = change.From
		ev.Forced = change.Forced
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return ev
}
