package domain

import "github.com/shopspring/decimal"

const (
	DefaultLowStockThreshold = 10
	DashboardRecentOrders    = 10
)

type Dashboard struct {
	TotalUsers       int             `json:"totalUsers"`
	TotalOrders      int             `json:"totalOrders"`
	TotalProducts    int             `json:"totalProducts"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	RecentOrders     []OrderSummary  `json:"recentOrders"`
	LowStockProducts []Product       `json:"lowStockProducts"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role"`
}
