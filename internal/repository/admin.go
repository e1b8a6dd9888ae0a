package repository

import (
	"context"
	"fmt"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

func (r *Repository) Dashboard(ctx context.Context, lowStockFallback int) (*domain.Dashboard, error) {
	d := &domain.Dashboard{}
	err := r.db.QueryRowxContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM users WHERE is_active),
		     (SELECT COUNT(*) FROM orders),
		     (SELECT COUNT(*) FROM products WHERE is_active),
		     (SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> $1)`,
		domain.OrderStatusCancelled).
		Scan(&d.TotalUsers, &d.TotalOrders, &d.TotalProducts, &d.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("query dashboard totals: %w", err)
	}

	d.RecentOrders = []domain.OrderSummary{}
	err = r.db.SelectContext(ctx, &d.RecentOrders,
		`SELECT `+orderSummaryColumns+orderSummaryFrom+` ORDER BY o.created_at DESC, o.order_id DESC LIMIT $1`,
		domain.DashboardRecentOrders)
	if err != nil {
		return nil, fmt.Errorf("query recent orders: %w", err)
	}

	if d.LowStockProducts, err = r.LowStockProducts(ctx, lowStockFallback); err != nil {
		return nil, err
	}
	return d, nil
}
