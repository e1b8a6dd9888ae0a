package repository

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

const orderColumns = `order_id, order_number, user_id, status, payment_status, payment_method, subtotal,
	tax_amount, shipping_amount, discount_amount, total_amount, coupon_code, notes, tracking_number,
	shipping_address, billing_address, created_at, updated_at, shipped_at, delivered_at`

const orderItemColumns = `order_item_id, order_id, product_id, product_name, product_sku, product_image_url,
	unit_price, quantity, total_price`

// PlaceOrder turns the user's cart into an order in a single transaction. The
// cart's products are locked, build prices the locked snapshot, and then the
// order, its items, the stock decrements, the cart deletion and the outbox
// event commit together or not at all.
func (r *Repository) PlaceOrder(ctx context.Context, userID int64,
	build func(lines []domain.CartLine) (*domain.Order, error)) (*domain.Order, error) {
	var order *domain.Order
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		// Lock in id order so concurrent checkouts of overlapping carts cannot deadlock.
		_, err := tx.ExecContext(ctx,
			`SELECT product_id FROM products
			 WHERE product_id IN (SELECT product_id FROM cart_items WHERE user_id = $1)
			 ORDER BY product_id FOR UPDATE`, userID)
		if err != nil {
			return fmt.Errorf("lock cart products: %w", err)
		}

		lines, err := cartLines(ctx, tx, userID)
		if err != nil {
			return err
		}

		o, err := build(lines)
		if err != nil {
			return err
		}

		if err := insertOrder(ctx, tx, o); err != nil {
			return err
		}

		adjustments := make([]domain.StockAdjustment, 0, len(o.Items))
		for _, it := range o.Items {
			adjustments = append(adjustments, domain.StockAdjustment{ProductID: it.ProductID, Delta: -it.Quantity})
		}
		if err := applyStock(ctx, tx, adjustments); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		if err := insertEvent(ctx, tx, domain.NewOrderEvent(domain.EventOrderCreated, o, nil, userID)); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func insertOrder(ctx context.Context, tx *sqlx.Tx, o *domain.Order) error {
	query := `INSERT INTO orders (order_number, user_id, status, payment_status, payment_method, subtotal,
	              tax_amount, shipping_amount, discount_amount, total_amount, coupon_code, notes,
	              shipping_address, billing_address, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	          RETURNING order_id`

	err := tx.QueryRowxContext(ctx, query,
		o.OrderNumber,
		o.UserID,
		o.Status,
		o.PaymentStatus,
		o.PaymentMethod,
		o.Subtotal,
		o.TaxAmount,
		o.ShippingAmount,
		o.DiscountAmount,
		o.TotalAmount,
		o.CouponCode,
		o.Notes,
		o.ShippingAddress,
		o.BillingAddress,
		o.CreatedAt).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, product_sku, product_image_url,
			     unit_price, quantity, total_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING order_item_id`,
			it.OrderID,
			it.ProductID,
			it.ProductName,
			it.ProductSKU,
			it.ImageURL,
			it.UnitPrice,
			it.Quantity,
			it.TotalPrice).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// applyStock applies adjustments in product id order. Decrements only succeed
// while enough stock is left.
func applyStock(ctx context.Context, tx *sqlx.Tx, adjustments []domain.StockAdjustment) error {
	sorted := slices.Clone(adjustments)
	slices.SortFunc(sorted, func(a, b domain.StockAdjustment) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	for _, adj := range sorted {
		switch {
		case adj.Delta > 0:
			_, err := tx.ExecContext(ctx,
				`UPDATE products SET stock_quantity = stock_quantity + $1, updated_at = NOW() WHERE product_id = $2`,
				adj.Delta, adj.ProductID)
			if err != nil {
				return fmt.Errorf("restock product %d: %w", adj.ProductID, err)
			}
		case adj.Delta < 0:
			qty := -adj.Delta
			res, err := tx.ExecContext(ctx,
				`UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
				 WHERE product_id = $2 AND stock_quantity >= $1`,
				qty, adj.ProductID)
			if err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", adj.ProductID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			if n == 0 {
				return domain.Because(domain.ErrInsufficientStock,
					"Insufficient stock for product %d to fulfil %d units.", adj.ProductID, qty)
			}
		}
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return getOrder(ctx, r.db, id, "")
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, id int64, lock string) (*domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, q, &o, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`+lock, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	o.Items = []domain.OrderItem{}
	err = sqlx.SelectContext(ctx, q, &o.Items,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY order_item_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	return &o, nil
}

// ModifyOrder locks an order, lets change mutate it, and persists the result
// with its stock adjustments, an audit row and an outbox event. A non-zero
// ownerID scopes the lookup to that user's orders.
func (r *Repository) ModifyOrder(ctx context.Context, orderID, ownerID, actorID int64,
	change func(o *domain.Order) (*domain.StatusChange, error)) (*domain.Order, error) {
	var order *domain.Order
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		o, err := getOrder(ctx, tx, orderID, ` FOR UPDATE`)
		if err != nil {
			return err
		}
		if ownerID != 0 && o.UserID != ownerID {
			return domain.ErrOrderNotFound
		}

		c, err := change(o)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders
			 SET status = $2, payment_status = $3, tracking_number = $4, notes = $5,
			     shipped_at = $6, delivered_at = $7, updated_at = $8
			 WHERE order_id = $1`,
			o.ID, o.Status, o.PaymentStatus, o.TrackingNumber, o.Notes, o.ShippedAt, o.DeliveredAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if err := applyStock(ctx, tx, c.Adjustments); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_status_audit (order_id, actor_id, from_status, to_status, forced, tracking_number)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, actorID, c.From, c.To, c.Forced, o.TrackingNumber)
		if err != nil {
			return fmt.Errorf("insert status audit: %w", err)
		}

		if err := insertEvent(ctx, tx, domain.NewOrderEvent(c.Event, o, c, actorID)); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// StatusHistory lists the recorded status changes of an order, oldest first.
func (r *Repository) StatusHistory(ctx context.Context, orderID int64) ([]domain.StatusAudit, error) {
	history := []domain.StatusAudit{}
	err := r.db.SelectContext(ctx, &history,
		`SELECT audit_id, order_id, actor_id, from_status, to_status, forced, tracking_number, created_at
		 FROM order_status_audit WHERE order_id = $1 ORDER BY audit_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	return history, nil
}

var orderSorts = map[string]string{
	"ordernumber": "o.order_number",
	"status":      "o.status",
	"totalamount": "o.total_amount",
	"createdat":   "o.created_at",
}

const orderSummaryColumns = `o.order_id, o.order_number, o.user_id,
	u.first_name || ' ' || u.last_name AS customer_name, o.status, o.payment_status, o.total_amount,
	(SELECT COALESCE(SUM(oi.quantity), 0) FROM order_items oi WHERE oi.order_id = o.order_id) AS item_count,
	o.tracking_number, o.created_at`

const orderSummaryFrom = ` FROM orders o JOIN users u ON u.user_id = o.user_id`

func (r *Repository) ListOrders(ctx context.Context, q domain.OrderQuery) ([]domain.OrderSummary, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.UserID != 0 {
		add("o.user_id = $%d", q.UserID)
	}
	if q.Status != "" {
		add("o.status = $%d", q.Status)
	}
	if q.PaymentStatus != "" {
		add("o.payment_status = $%d", q.PaymentStatus)
	}
	if q.FromDate != nil {
		add("o.created_at >= $%d", *q.FromDate)
	}
	if q.ToDate != nil {
		add("o.created_at <= $%d", *q.ToDate)
	}
	if q.MinAmount != nil {
		add("o.total_amount >= $%d", *q.MinAmount)
	}
	if q.MaxAmount != nil {
		add("o.total_amount <= $%d", *q.MaxAmount)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		add(`(o.order_number ILIKE $%[1]d
			OR o.shipping_address->>'firstName' ILIKE $%[1]d
			OR o.shipping_address->>'lastName' ILIKE $%[1]d
			OR o.tracking_number ILIKE $%[1]d)`, containsPattern(s))
	}
	clause := whereClause(where)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+orderSummaryFrom+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	column, ok := orderSorts[strings.ToLower(q.SortBy)]
	if !ok {
		column = "o.created_at"
	}
	order := sortDirection(q.SortOrder, "DESC")

	args = append(args, q.PageSize, domain.Offset(q.Page, q.PageSize))
	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY %s %s, o.order_id %s LIMIT $%d OFFSET $%d`,
		orderSummaryColumns, orderSummaryFrom, clause, column, order, order, len(args)-1, len(args))

	orders := []domain.OrderSummary{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	return orders, total, nil
}
