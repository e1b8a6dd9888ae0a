package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a cart row joined with the live state of its product.
type CartLine struct {
	ItemID        int64           `db:"cart_item_id"`
	UserID        int64           `db:"user_id"`
	ProductID     int64           `db:"product_id"`
	Quantity      int             `db:"quantity"`
	ProductName   string          `db:"product_name"`
	ProductSKU    *string         `db:"product_sku"`
	ImageURL      string          `db:"image_url"`
	UnitPrice     decimal.Decimal `db:"price"`
	StockQuantity int             `db:"stock_quantity"`
	ProductActive bool            `db:"product_active"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Available reports whether the line could be purchased as it stands.
func (l *CartLine) Available() bool {
	return l.ProductActive && l.StockQuantity >= l.Quantity
}

type CartItemView struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductSKU    *string         `json:"productSku"`
	ImageURL      string          `json:"productImageUrl"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	StockQuantity int             `json:"stockQuantity"`
	IsAvailable   bool            `json:"isAvailable"`
	AddedAt       time.Time       `json:"addedAt"`
}

type CartSummary struct {
	UserID              int64           `json:"userId"`
	Items               []CartItemView  `json:"items"`
	TotalItems          int             `json:"totalItems"`
	Subtotal            decimal.Decimal `json:"subTotal"`
	EstimatedTax        decimal.Decimal `json:"estimatedTax"`
	EstimatedTotal      decimal.Decimal `json:"estimatedTotal"`
	HasUnavailableItems bool            `json:"hasUnavailableItems"`
	LastUpdated         time.Time       `json:"lastUpdated"`
}

func viewOf(l *CartLine) CartItemView {
	v := CartItemView{
		ID:            l.ItemID,
		ProductID:     l.ProductID,
		ProductName:   l.ProductName,
		ProductSKU:    l.ProductSKU,
		ImageURL:      l.ImageURL,
		UnitPrice:     l.UnitPrice,
		Quantity:      l.Quantity,
		TotalPrice:    decimal.Zero,
		StockQuantity: l.StockQuantity,
		IsAvailable:   l.Available(),
		AddedAt:       l.CreatedAt,
	}
	if v.IsAvailable {
		v.TotalPrice = LineTotal(l.UnitPrice, l.Quantity)
	}
	return v
}

// BuildCartSummary materializes the cart. Lines keep the order they are given in,
// which callers load oldest first. Unavailable lines are listed but not priced.
func BuildCartSummary(userID int64, lines []CartLine, now time.Time) *CartSummary {
	s := &CartSummary{
		UserID:       userID,
		Items:        make([]CartItemView, 0, len(lines)),
		Subtotal:     decimal.Zero,
		EstimatedTax: decimal.Zero,
		LastUpdated:  now,
	}
	var newest time.Time
	for i := range lines {
		v := viewOf(&lines[i])
		s.Items = append(s.Items, v)
		if lines[i].UpdatedAt.After(newest) {
			newest = lines[i].UpdatedAt
		}
		if !v.IsAvailable {
			s.HasUnavailableItems = true
			continue
		}
		s.TotalItems += v.Quantity
		s.Subtotal = s.Subtotal.Add(v.TotalPrice)
	}
	if !newest.IsZero() {
		s.LastUpdated = newest
	}
	s.EstimatedTax = Tax(s.Subtotal)
	s.EstimatedTotal = s.Subtotal.Add(s.EstimatedTax)
	return s
}

type CartValidation struct {
	IsValid          bool           `json:"isValid"`
	Issues           []string       `json:"issues"`
	UnavailableItems []CartItemView `json:"unavailableItems"`
	OutOfStockItems  []CartItemView `json:"outOfStockItems"`
}

// ValidateCart lists every line that would block checkout. Read only.
func ValidateCart(lines []CartLine) *CartValidation {
	v := &CartValidation{
		Issues:           []string{},
		UnavailableItems: []CartItemView{},
		OutOfStockItems:  []CartItemView{},
	}
	for i := range lines {
		l := &lines[i]
		switch {
		case !l.ProductActive:
			v.Issues = append(v.Issues, fmt.Sprintf("Product '%s' is no longer available.", l.ProductName))
			v.UnavailableItems = append(v.UnavailableItems, viewOf(l))
		case l.StockQuantity < l.Quantity:
			v.Issues = append(v.Issues, fmt.Sprintf("Only %d items available for '%s', but you have %d in cart.",
				l.StockQuantity, l.ProductName, l.Quantity))
			v.OutOfStockItems = append(v.OutOfStockItems, viewOf(l))
		}
	}
	v.IsValid = len(v.Issues) == 0
	return v
}

type AddCartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type GuestCartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddQuantity returns the row quantity after adding qty units of p to a cart
// that already holds existing units of it.
func AddQuantity(p *Product, existing, qty int) (int, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}
	if p == nil || !p.IsActive {
		return 0, ErrProductUnavailable
	}
	combined := existing + qty
	if p.InStock(combined) {
		return combined, nil
	}
	if existing == 0 {
		return 0, Because(ErrInsufficientStock, "Only %d items available in stock.", p.StockQuantity)
	}
	more := p.StockQuantity - existing
	if more < 0 {
		more = 0
	}
	return 0, Because(ErrInsufficientStock, "Cannot add %d more items. Only %d more available.", qty, more)
}

// SetQuantity checks an absolute quantity for an existing cart row.
func SetQuantity(l *CartLine, qty int) (int, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}
	if !l.ProductActive {
		return 0, ErrProductUnavailable
	}
	if qty > l.StockQuantity {
		return 0, Because(ErrInsufficientStock, "Only %d items available in stock.", l.StockQuantity)
	}
	return qty, nil
}

// MergeQuantity folds incoming guest units into a row holding existing units.
// Missing or inactive products and non-positive quantities are skipped, and the
// result is clamped to stock. ok is false when the row stays as it is; a zero
// qty with ok means the existing row has to go because the product sold out.
func MergeQuantity(p *Product, existing, incoming int) (qty int, ok bool) {
	if p == nil || !p.IsActive || incoming < 1 {
		return 0, false
	}
	qty = max(min(existing+incoming, p.StockQuantity), 0)
	if qty == existing {
		return 0, false
	}
	return qty, true
}
