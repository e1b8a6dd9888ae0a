package service

import (
	"context"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

// CartStore persists carts. Plan callbacks run inside the store's transaction
// with the product row locked.
type CartStore interface {
	CartLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	CountCartItems(ctx context.Context, userID int64) (int, error)
	AddCartItem(ctx context.Context, userID, productID int64, plan func(p *domain.Product, existing int) (int, error)) error
	UpdateCartItem(ctx context.Context, userID, itemID int64, plan func(l *domain.CartLine) (int, error)) error
	RemoveCartItem(ctx context.Context, userID, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error
	MergeCart(ctx context.Context, userID int64, items []domain.GuestCartItem,
		plan func(p *domain.Product, existing, incoming int) (int, bool)) error
}

type OrderStore interface {
	PlaceOrder(ctx context.Context, userID int64, build func(lines []domain.CartLine) (*domain.Order, error)) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ModifyOrder(ctx context.Context, orderID, ownerID, actorID int64,
		change func(o *domain.Order) (*domain.StatusChange, error)) (*domain.Order, error)
	ListOrders(ctx context.Context, q domain.OrderQuery) ([]domain.OrderSummary, int, error)
	StatusHistory(ctx context.Context, orderID int64) ([]domain.StatusAudit, error)
}

type CatalogStore interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) (bool, error)
	CategoryProductIDs(ctx context.Context, categoryID int64) ([]int64, error)

	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	FeaturedProducts(ctx context.Context, count int) ([]domain.Product, error)
	SKUExists(ctx context.Context, sku string, excludeID int64) (bool, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeactivateProduct(ctx context.Context, id int64) error
	DeleteProduct(ctx context.Context, id int64) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
	SetUserActive(ctx context.Context, userID int64, active bool) error
	SetUserRole(ctx context.Context, userID int64, role domain.Role) error
	ListUsers(ctx context.Context, q domain.UserQuery) ([]domain.User, int, error)
}

type DashboardStore interface {
	Dashboard(ctx context.Context, lowStockFallback int) (*domain.Dashboard, error)
}
