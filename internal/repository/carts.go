package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

const cartLineQuery = `SELECT ci.cart_item_id, ci.user_id, ci.product_id, ci.quantity,
	p.name AS product_name, p.sku AS product_sku, p.image_url, p.price, p.stock_quantity,
	p.is_active AS product_active, ci.created_at, ci.updated_at
	FROM cart_items ci JOIN products p ON p.product_id = ci.product_id`

// CartLines returns the user's cart joined with live product rows, oldest first.
func (r *Repository) CartLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return cartLines(ctx, r.db, userID)
}

func cartLines(ctx context.Context, q sqlx.QueryerContext, userID int64) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	err := sqlx.SelectContext(ctx, q, &lines,
		cartLineQuery+` WHERE ci.user_id = $1 ORDER BY ci.created_at, ci.cart_item_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	return lines, nil
}

func (r *Repository) CountCartItems(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return count, nil
}

// lockProduct takes a row lock on the product for the rest of the transaction.
func lockProduct(ctx context.Context, tx *sqlx.Tx, productID int64) (*domain.Product, error) {
	var p domain.Product
	err := tx.GetContext(ctx, &p,
		`SELECT `+productColumns+productFrom+` WHERE p.product_id = $1 FOR UPDATE OF p`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return &p, nil
}

func cartQuantity(ctx context.Context, tx *sqlx.Tx, userID, productID int64) (int, error) {
	var qty int
	err := tx.GetContext(ctx, &qty,
		`SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query cart quantity: %w", err)
	}
	return qty, nil
}

func writeCartQuantity(ctx context.Context, tx *sqlx.Tx, userID, productID int64, qty int) error {
	var err error
	if qty == 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
			userID, productID, qty)
	}
	if err != nil {
		return fmt.Errorf("write cart item: %w", err)
	}
	return nil
}

// AddCartItem locks the product, asks plan for the new row quantity given what
// the cart already holds, and writes it. A nil product is passed when it does
// not exist.
func (r *Repository) AddCartItem(ctx context.Context, userID, productID int64,
	plan func(p *domain.Product, existing int) (int, error)) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		p, err := lockProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		existing := 0
		if p != nil {
			if existing, err = cartQuantity(ctx, tx, userID, productID); err != nil {
				return err
			}
		}
		qty, err := plan(p, existing)
		if err != nil {
			return err
		}
		return writeCartQuantity(ctx, tx, userID, productID, qty)
	})
}

// UpdateCartItem sets the quantity of one of the user's cart rows.
func (r *Repository) UpdateCartItem(ctx context.Context, userID, itemID int64,
	plan func(l *domain.CartLine) (int, error)) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		var l domain.CartLine
		err := tx.GetContext(ctx, &l,
			cartLineQuery+` WHERE ci.cart_item_id = $1 AND ci.user_id = $2 FOR UPDATE OF ci, p`, itemID, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCartItemNotFound
		}
		if err != nil {
			return fmt.Errorf("lock cart item: %w", err)
		}
		qty, err := plan(&l)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE cart_item_id = $1`, itemID, qty)
		if err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}
		return nil
	})
}

func (r *Repository) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_item_id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return expectRow(res, domain.ErrCartItemNotFound)
}

func (r *Repository) ClearCart(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MergeCart folds guest items into the user's cart in one transaction. Products
// are locked in id order; plan decides each resulting quantity.
func (r *Repository) MergeCart(ctx context.Context, userID int64, items []domain.GuestCartItem,
	plan func(p *domain.Product, existing, incoming int) (int, bool)) error {
	incoming := make(map[int64]int, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if _, seen := incoming[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		incoming[it.ProductID] += it.Quantity
	}
	slices.Sort(ids)

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range ids {
			p, err := lockProduct(ctx, tx, id)
			if err != nil {
				return err
			}
			if p == nil {
				continue
			}
			existing, err := cartQuantity(ctx, tx, userID, id)
			if err != nil {
				return err
			}
			qty, ok := plan(p, existing, incoming[id])
			if !ok {
				continue
			}
			if err := writeCartQuantity(ctx, tx, userID, id, qty); err != nil {
				return err
			}
		}
		return nil
	})
}
