package http

import (
	"context"
	"net/http"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
	"github.com/jz3el/luxemart-ecommerce/internal/service"
)

func asUser(r *http.Request, id int64, role domain.Role) *http.Request {
	return r.WithContext(withActor(r.Context(), domain.Actor{UserID: id, Role: role}))
}

type MockAccountService struct {
	Result     *service.AuthResult
	User       *domain.User
	Err        error
	UserID     int64
	LoggedIn   *domain.LoginRequest
	Registered *domain.RegisterRequest
	Password   *domain.ChangePasswordRequest
}

func (m *MockAccountService) Register(_ context.Context, req *domain.RegisterRequest) (*service.AuthResult, error) {
	m.Registered = req
	return m.Result, m.Err
}

func (m *MockAccountService) Login(_ context.Context, req *domain.LoginRequest) (*service.AuthResult, error) {
	m.LoggedIn = req
	return m.Result, m.Err
}

func (m *MockAccountService) GetProfile(_ context.Context, userID int64) (*domain.User, error) {
	m.UserID = userID
	return m.User, m.Err
}

func (m *MockAccountService) UpdateProfile(_ context.Context, userID int64, _ *domain.UpdateProfileRequest) (*domain.User, error) {
	m.UserID = userID
	return m.User, m.Err
}

func (m *MockAccountService) ChangePassword(_ context.Context, userID int64, req *domain.ChangePasswordRequest) error {
	m.UserID = userID
	m.Password = req
	return m.Err
}

type MockCatalogService struct {
	Categories []domain.Category
	Category   *domain.Category
	Products   []domain.Product
	Product    *domain.Product
	Soft       bool
	Err        error

	IncludeInactive bool
	Filter          domain.ProductFilter
	ID              int64
	Count           int
	Page, PageSize  int
}

func (m *MockCatalogService) ListCategories(_ context.Context, includeInactive bool) ([]domain.Category, error) {
	m.IncludeInactive = includeInactive
	return m.Categories, m.Err
}

func (m *MockCatalogService) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	m.ID = id
	return m.Category, m.Err
}

func (m *MockCatalogService) CategoryProducts(_ context.Context, id int64, page, pageSize int) (*domain.PagedResult[domain.Product], error) {
	m.ID, m.Page, m.PageSize = id, page, pageSize
	if m.Err != nil {
		return nil, m.Err
	}
	return domain.NewPagedResult(m.Products, len(m.Products), 1, 12), nil
}

func (m *MockCatalogService) CreateCategory(_ context.Context, _ *domain.CategoryInput) (*domain.Category, error) {
	return m.Category, m.Err
}

func (m *MockCatalogService) UpdateCategory(_ context.Context, id int64, _ *domain.CategoryInput) (*domain.Category, error) {
	m.ID = id
	return m.Category, m.Err
}

func (m *MockCatalogService) DeleteCategory(_ context.Context, id int64) (bool, error) {
	m.ID = id
	return m.Soft, m.Err
}

func (m *MockCatalogService) ListProducts(_ context.Context, f domain.ProductFilter) (*domain.PagedResult[domain.Product], error) {
	m.Filter = f
	if m.Err != nil {
		return nil, m.Err
	}
	return domain.NewPagedResult(m.Products, len(m.Products), 1, 12), nil
}

func (m *MockCatalogService) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.ID = id
	return m.Product, m.Err
}

func (m *MockCatalogService) FeaturedProducts(_ context.Context, count int) ([]domain.Product, error) {
	m.Count = count
	return m.Products, m.Err
}

func (m *MockCatalogService) CreateProduct(_ context.Context, _ *domain.ProductInput) (*domain.Product, error) {
	return m.Product, m.Err
}

func (m *MockCatalogService) UpdateProduct(_ context.Context, id int64, _ *domain.ProductInput) (*domain.Product, error) {
	m.ID = id
	return m.Product, m.Err
}

func (m *MockCatalogService) DeactivateProduct(_ context.Context, id int64) error {
	m.ID = id
	return m.Err
}

func (m *MockCatalogService) DeleteProduct(_ context.Context, id int64) error {
	m.ID = id
	return m.Err
}

type MockCartService struct {
	Cart       *domain.CartSummary
	Count      int
	Validation *domain.CartValidation
	Err        error

	UserID int64
	ItemID int64
	Added  *domain.AddCartItemRequest
	Merged []domain.GuestCartItem
}

func (m *MockCartService) GetCart(_ context.Context, userID int64) (*domain.CartSummary, error) {
	m.UserID = userID
	return m.Cart, m.Err
}

func (m *MockCartService) CountItems(_ context.Context, userID int64) (int, error) {
	m.UserID = userID
	return m.Count, m.Err
}

func (m *MockCartService) AddItem(_ context.Context, userID int64, req *domain.AddCartItemRequest) (*domain.CartSummary, error) {
	m.UserID = userID
	m.Added = req
	return m.Cart, m.Err
}

func (m *MockCartService) UpdateItemQuantity(_ context.Context, userID, itemID int64, _ *domain.UpdateCartItemRequest) (*domain.CartSummary, error) {
	m.UserID, m.ItemID = userID, itemID
	return m.Cart, m.Err
}

func (m *MockCartService) RemoveItem(_ context.Context, userID, itemID int64) error {
	m.UserID, m.ItemID = userID, itemID
	return m.Err
}

func (m *MockCartService) ClearCart(_ context.Context, userID int64) error {
	m.UserID = userID
	return m.Err
}

func (m *MockCartService) ValidateCart(_ context.Context, userID int64) (*domain.CartValidation, error) {
	m.UserID = userID
	return m.Validation, m.Err
}

func (m *MockCartService) MergeGuestCart(_ context.Context, userID int64, items []domain.GuestCartItem) (*domain.CartSummary, error) {
	m.UserID = userID
	m.Merged = items
	return m.Cart, m.Err
}

type MockOrderService struct {
	Order     *domain.Order
	Summaries []domain.OrderSummary
	History   []domain.StatusAudit
	Err       error

	Actor   domain.Actor
	UserID  int64
	ID      int64
	Query   domain.OrderQuery
	Request *domain.UpdateStatusRequest
	Forced  bool
}

func (m *MockOrderService) CreateOrder(_ context.Context, userID int64, _ *domain.CreateOrderRequest) (*domain.Order, error) {
	m.UserID = userID
	return m.Order, m.Err
}

func (m *MockOrderService) GetOrder(_ context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	m.Actor, m.ID = actor, id
	return m.Order, m.Err
}

func (m *MockOrderService) ListOrders(_ context.Context, actor domain.Actor, q domain.OrderQuery) (*domain.PagedResult[domain.OrderSummary], error) {
	m.Actor, m.Query = actor, q
	if m.Err != nil {
		return nil, m.Err
	}
	return domain.NewPagedResult(m.Summaries, len(m.Summaries), 1, 10), nil
}

func (m *MockOrderService) CancelOrder(_ context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	m.Actor, m.ID = actor, id
	return m.Order, m.Err
}

func (m *MockOrderService) UpdateOrderStatus(_ context.Context, actor domain.Actor, id int64, req *domain.UpdateStatusRequest) (*domain.Order, error) {
	m.Actor, m.ID, m.Request = actor, id, req
	return m.Order, m.Err
}

func (m *MockOrderService) ForceOrderStatus(_ context.Context, actor domain.Actor, id int64, req *domain.UpdateStatusRequest) (*domain.Order, error) {
	m.Actor, m.ID, m.Request, m.Forced = actor, id, req, true
	return m.Order, m.Err
}

func (m *MockOrderService) StatusHistory(_ context.Context, actor domain.Actor, id int64) ([]domain.StatusAudit, error) {
	m.Actor, m.ID = actor, id
	return m.History, m.Err
}

type MockAdminService struct {
	Stats *domain.Dashboard
	Users []domain.User
	User  *domain.User
	Err   error

	Query  domain.UserQuery
	Actor  domain.Actor
	UserID int64
	Role   domain.Role
}

func (m *MockAdminService) Dashboard(context.Context) (*domain.Dashboard, error) {
	return m.Stats, m.Err
}

func (m *MockAdminService) ListUsers(_ context.Context, q domain.UserQuery) (*domain.PagedResult[domain.User], error) {
	m.Query = q
	if m.Err != nil {
		return nil, m.Err
	}
	return domain.NewPagedResult(m.Users, len(m.Users), 1, 10), nil
}

func (m *MockAdminService) ToggleUserStatus(_ context.Context, userID int64) (*domain.User, error) {
	m.UserID = userID
	return m.User, m.Err
}

func (m *MockAdminService) ChangeRole(_ context.Context, actor domain.Actor, userID int64, req *domain.UpdateRoleRequest) (*domain.User, error) {
	m.Actor, m.UserID, m.Role = actor, userID, req.Role
	return m.User, m.Err
}
