package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusRefunded   OrderStatus = "Refunded"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether the owner may still cancel.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// holdsStock is false for orders whose units went back on the shelf.
func (s OrderStatus) holdsStock() bool {
	return s != OrderStatusCancelled && s != OrderStatusRefunded
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentMethodCreditCard settles immediately at order creation.
const PaymentMethodCreditCard = "CreditCard"

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (a *Address) Validate(label string) error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"first name", a.FirstName, 50},
		{"last name", a.LastName, 50},
		{"address", a.Address, 200},
		{"city", a.City, 50},
		{"state", a.State, 50},
		{"zip code", a.ZipCode, 20},
		{"country", a.Country, 50},
	} {
		if err := requireLength(label+" "+f.name, f.value, f.max); err != nil {
			return err
		}
	}
	return maxLength(label+" phone", a.Phone, 20)
}

// Value stores the address as a JSON document.
func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Address) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan address: unsupported type %T", src)
	}
	return json.Unmarshal(data, a)
}

// orEmpty fills every blank field of a from fallback.
func (a Address) orEmpty(fallback Address) Address {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	return Address{
		FirstName: pick(a.FirstName, fallback.FirstName),
		LastName:  pick(a.LastName, fallback.LastName),
		Address:   pick(a.Address, fallback.Address),
		City:      pick(a.City, fallback.City),
		State:     pick(a.State, fallback.State),
		ZipCode:   pick(a.ZipCode, fallback.ZipCode),
		Country:   pick(a.Country, fallback.Country),
		Phone:     pick(a.Phone, fallback.Phone),
	}
}

type Order struct {
	ID              int64           `db:"order_id" json:"id"`
	OrderNumber     string          `db:"order_number" json:"orderNumber"`
	UserID          int64           `db:"user_id" json:"userId"`
	Status          OrderStatus     `db:"status" json:"status"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	PaymentMethod   string          `db:"payment_method" json:"paymentMethod"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subTotal"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"taxAmount"`
	ShippingAmount  decimal.Decimal `db:"shipping_amount" json:"shippingAmount"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
	CouponCode      string          `db:"coupon_code" json:"couponCode"`
	Notes           string          `db:"notes" json:"notes"`
	TrackingNumber  string          `db:"tracking_number" json:"trackingNumber"`
	ShippingAddress Address         `db:"shipping_address" json:"shippingAddress"`
	BillingAddress  Address         `db:"billing_address" json:"billingAddress"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
	ShippedAt       *time.Time      `db:"shipped_at" json:"shippedAt"`
	DeliveredAt     *time.Time      `db:"delivered_at" json:"deliveredAt"`
	Items           []OrderItem     `db:"-" json:"items"`
}

// OrderItem is a snapshot of a product at purchase time.
type OrderItem struct {
	ID          int64           `db:"order_item_id" json:"id"`
	OrderID     int64           `db:"order_id" json:"orderId"`
	ProductID   int64           `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	ProductSKU  *string         `db:"product_sku" json:"productSku"`
	ImageURL    string          `db:"product_image_url" json:"productImageUrl"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Quantity    int             `db:"quantity" json:"quantity"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"totalPrice"`
}

func (o *Order) Totals() Totals {
	return Totals{
		Subtotal: o.Subtotal,
		Tax:      o.TaxAmount,
		Shipping: o.ShippingAmount,
		Discount: o.DiscountAmount,
		Total:    o.TotalAmount,
	}
}

// OrderSummary is the list view of an order.
type OrderSummary struct {
	ID             int64           `db:"order_id" json:"id"`
	OrderNumber    string          `db:"order_number" json:"orderNumber"`
	UserID         int64           `db:"user_id" json:"userId"`
	CustomerName   string          `db:"customer_name" json:"customerName"`
	Status         OrderStatus     `db:"status" json:"status"`
	PaymentStatus  PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"totalAmount"`
	ItemCount      int             `db:"item_count" json:"itemCount"`
	TrackingNumber string          `db:"tracking_number" json:"trackingNumber"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
}

type CreateOrderRequest struct {
	ShippingAddress *Address `json:"shippingAddress"`
	BillingAddress  *Address `json:"billingAddress"`
	CouponCode      string   `json:"couponCode"`
	Notes           string   `json:"notes"`
	PaymentMethod   string   `json:"paymentMethod"`
}

func (r *CreateOrderRequest) Validate() error {
	if r.ShippingAddress == nil {
		return Validationf("Shipping address is required.")
	}
	if err := r.ShippingAddress.Validate("Shipping"); err != nil {
		return err
	}
	if r.BillingAddress != nil {
		billing := r.BillingAddress.orEmpty(*r.ShippingAddress)
		if err := billing.Validate("Billing"); err != nil {
			return err
		}
	}
	if err := requireLength("Payment method", r.PaymentMethod, 50); err != nil {
		return err
	}
	if err := maxLength("Coupon code", r.CouponCode, 100); err != nil {
		return err
	}
	return maxLength("Notes", r.Notes, 1000)
}

// GenerateOrderNumber formats ORD-yyyyMMddHHmmss-NNNN. Uniqueness is enforced
// by the store, not here.
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.UTC().Format("20060102150405"), 1000+rand.IntN(9000))
}

// NewOrder builds a pending order from a locked snapshot of the cart. It fails
// without side effects when the cart is empty or any line is stale.
func NewOrder(userID int64, req *CreateOrderRequest, lines []CartLine, number string, now time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	if v := ValidateCart(lines); !v.IsValid {
		return nil, &CartValidationError{Issues: v.Issues}
	}

	items := make([]OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		total := LineTotal(l.UnitPrice, l.Quantity)
		items = append(items, OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			ProductSKU:  l.ProductSKU,
			ImageURL:    l.ImageURL,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			TotalPrice:  total,
		})
		subtotal = subtotal.Add(total)
	}

	totals := ComputeTotals(subtotal)
	shipping := *req.ShippingAddress
	billing := shipping
	if req.BillingAddress != nil {
		billing = req.BillingAddress.orEmpty(shipping)
	}

	o := &Order{
		OrderNumber:     number,
		UserID:          userID,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.Tax,
		ShippingAmount:  totals.Shipping,
		DiscountAmount:  totals.Discount,
		TotalAmount:     totals.Total,
		CouponCode:      strings.TrimSpace(req.CouponCode),
		Notes:           req.Notes,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
	}
	if req.PaymentMethod == PaymentMethodCreditCard {
		o.PaymentStatus = PaymentStatusPaid
		o.Status = OrderStatusProcessing
	}
	return o, nil
}

// StockAdjustment is a change to a product's stock. Negative deltas must be
// applied conditionally so stock never drops below zero.
type StockAdjustment struct {
	ProductID int64
	Delta     int
}

// StatusAudit is one recorded status change of an order.
type StatusAudit struct {
	ID             int64       `db:"audit_id" json:"id"`
	OrderID        int64       `db:"order_id" json:"orderId"`
	ActorID        int64       `db:"actor_id" json:"actorId"`
	FromStatus     OrderStatus `db:"from_status" json:"fromStatus"`
	ToStatus       OrderStatus `db:"to_status" json:"toStatus"`
	Forced         bool        `db:"forced" json:"forced"`
	TrackingNumber string      `db:"tracking_number" json:"trackingNumber"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
}

// StatusChange describes what a status operation did to an order.
type StatusChange struct {
	From        OrderStatus
	To          OrderStatus
	Forced      bool
	Adjustments []StockAdjustment
	Event       string
}

func (o *Order) adjustments(sign int) []StockAdjustment {
	adj := make([]StockAdjustment, 0, len(o.Items))
	for _, it := range o.Items {
		adj = append(adj, StockAdjustment{ProductID: it.ProductID, Delta: sign * it.Quantity})
	}
	return adj
}

// Cancel moves a pending or processing order to Cancelled and returns every
// unit to stock. Paid orders are marked refunded.
func (o *Order) Cancel(now time.Time) (*StatusChange, error) {
	if !o.Status.Cancellable() {
		return nil, ErrOrderNotCancellable
	}
	change := &StatusChange{From: o.Status, To: OrderStatusCancelled, Event: EventOrderCancelled}
	o.release(OrderStatusCancelled, now)
	change.Adjustments = o.adjustments(+1)
	return change, nil
}

func (o *Order) release(to OrderStatus, now time.Time) {
	o.Status = to
	if o.PaymentStatus == PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.UpdatedAt = now
}

type UpdateStatusRequest struct {
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"trackingNumber"`
	Notes          *string     `json:"notes"`
}

func (r *UpdateStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return Validationf("Unknown order status '%s'.", r.Status)
	}
	if err := maxLength("Tracking number", r.TrackingNumber, 100); err != nil {
		return err
	}
	if r.Notes != nil {
		return maxLength("Notes", *r.Notes, 1000)
	}
	return nil
}

// Transition applies an admin status change allowed by the transition table.
// Cancelling goes through the same path as an owner cancellation. Re-applying
// the current status only updates tracking and notes.
func (o *Order) Transition(req *UpdateStatusRequest, now time.Time) (*StatusChange, error) {
	if req.Status == OrderStatusCancelled {
		change, err := o.Cancel(now)
		if err != nil {
			return nil, err
		}
		o.annotate(req)
		return change, nil
	}
	if req.Status != o.Status && o.Status.IsTerminal() {
		return nil, Because(ErrInvalidTransition, "Order is %s and its status can no longer change.", o.Status)
	}
	if req.Status != o.Status && !o.Status.CanTransitionTo(req.Status) {
		return nil, Because(ErrInvalidTransition, "Cannot change order status from %s to %s.", o.Status, req.Status)
	}
	change := &StatusChange{From: o.Status, To: req.Status, Event: EventOrderStatusChanged}
	o.setStatus(req.Status, now)
	o.annotate(req)
	return change, nil
}

// ForceStatus sets any status, bypassing the transition table. Stock follows
// the order in and out of Cancelled and Refunded so every decrement keeps
// exactly one matching increment.
func (o *Order) ForceStatus(req *UpdateStatusRequest, now time.Time) (*StatusChange, error) {
	change := &StatusChange{From: o.Status, To: req.Status, Forced: true, Event: EventOrderStatusChanged}
	switch {
	case o.Status.holdsStock() && !req.Status.holdsStock():
		o.release(req.Status, now)
		change.Adjustments = o.adjustments(+1)
		if req.Status == OrderStatusCancelled {
			change.Event = EventOrderCancelled
		}
	case !o.Status.holdsStock() && req.Status.holdsStock():
		o.setStatus(req.Status, now)
		change.Adjustments = o.adjustments(-1)
	default:
		o.setStatus(req.Status, now)
	}
	o.annotate(req)
	return change, nil
}

func (o *Order) setStatus(to OrderStatus, now time.Time) {
	o.Status = to
	o.UpdatedAt = now
	if to == OrderStatusShipped && o.ShippedAt == nil {
		t := now
		o.ShippedAt = &t
	}
	if to == OrderStatusDelivered && o.DeliveredAt == nil {
		t := now
		o.DeliveredAt = &t
	}
}

func (o *Order) annotate(req *UpdateStatusRequest) {
	if tn := strings.TrimSpace(req.TrackingNumber); tn != "" {
		o.TrackingNumber = tn
	}
	if req.Notes != nil {
		o.Notes = *req.Notes
	}
}

type OrderQuery struct {
	UserID        int64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	FromDate      *time.Time
	ToDate        *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	Search        string
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}
