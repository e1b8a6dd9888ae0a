package service

import (
	"context"
	"sync"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/cache"
	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

// MockCartStore keeps one user's cart in memory and runs plans against the
// products it knows about.
type MockCartStore struct {
	Products map[int64]*domain.Product
	Lines    []domain.CartLine
	Err      error

	MergedItems []domain.GuestCartItem
	Written     map[int64]int // product id -> quantity written by the last plan
}

func (m *MockCartStore) CartLines(context.Context, int64) ([]domain.CartLine, error) {
	return m.Lines, m.Err
}

func (m *MockCartStore) CountCartItems(context.Context, int64) (int, error) {
	total := 0
	for _, l := range m.Lines {
		total += l.Quantity
	}
	return total, m.Err
}

func (m *MockCartStore) existing(productID int64) int {
	for _, l := range m.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func (m *MockCartStore) write(productID int64, qty int) {
	if m.Written == nil {
		m.Written = map[int64]int{}
	}
	m.Written[productID] = qty
}

func (m *MockCartStore) AddCartItem(_ context.Context, _ int64, productID int64,
	plan func(p *domain.Product, existing int) (int, error)) error {
	if m.Err != nil {
		return m.Err
	}
	qty, err := plan(m.Products[productID], m.existing(productID))
	if err != nil {
		return err
	}
	m.write(productID, qty)
	return nil
}

func (m *MockCartStore) UpdateCartItem(_ context.Context, _ int64, itemID int64,
	plan func(l *domain.CartLine) (int, error)) error {
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Lines {
		if m.Lines[i].ItemID == itemID {
			qty, err := plan(&m.Lines[i])
			if err != nil {
				return err
			}
			m.write(m.Lines[i].ProductID, qty)
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

func (m *MockCartStore) RemoveCartItem(context.Context, int64, int64) error {
	return m.Err
}

func (m *MockCartStore) ClearCart(context.Context, int64) error {
	return m.Err
}

func (m *MockCartStore) MergeCart(_ context.Context, _ int64, items []domain.GuestCartItem,
	plan func(p *domain.Product, existing, incoming int) (int, bool)) error {
	m.MergedItems = items
	if m.Err != nil {
		return m.Err
	}
	for _, it := range items {
		if qty, ok := plan(m.Products[it.ProductID], m.existing(it.ProductID), it.Quantity); ok {
			m.write(it.ProductID, qty)
		}
	}
	return nil
}

// MockOrderStore runs build and change callbacks the way the repository does,
// without persistence.
type MockOrderStore struct {
	m sync.Mutex

	Lines  []domain.CartLine
	Orders map[int64]*domain.Order

	PlaceErrs   []error // returned by successive PlaceOrder calls before build runs
	PlaceCalls  int
	Numbers     []string
	Modified    []*domain.StatusChange
	ModifyOwner int64
	Query       domain.OrderQuery
	Summaries   []domain.OrderSummary
	History     map[int64][]domain.StatusAudit
	Err         error
}

func (m *MockOrderStore) PlaceOrder(_ context.Context, _ int64,
	build func(lines []domain.CartLine) (*domain.Order, error)) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.PlaceCalls++

	o, err := build(m.Lines)
	if err != nil {
		return nil, err
	}
	m.Numbers = append(m.Numbers, o.OrderNumber)
	if len(m.PlaceErrs) > 0 {
		err, m.PlaceErrs = m.PlaceErrs[0], m.PlaceErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	o.ID = int64(100 + m.PlaceCalls)
	return o, nil
}

func (m *MockOrderStore) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.Orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockOrderStore) ModifyOrder(_ context.Context, orderID, ownerID, _ int64,
	change func(o *domain.Order) (*domain.StatusChange, error)) (*domain.Order, error) {
	m.ModifyOwner = ownerID
	o, ok := m.Orders[orderID]
	if !ok || (ownerID != 0 && o.UserID != ownerID) {
		return nil, domain.ErrOrderNotFound
	}
	c, err := change(o)
	if err != nil {
		return nil, err
	}
	m.Modified = append(m.Modified, c)
	return o, nil
}

func (m *MockOrderStore) ListOrders(_ context.Context, q domain.OrderQuery) ([]domain.OrderSummary, int, error) {
	m.Query = q
	return m.Summaries, len(m.Summaries), m.Err
}

func (m *MockOrderStore) StatusHistory(_ context.Context, orderID int64) ([]domain.StatusAudit, error) {
	return m.History[orderID], m.Err
}

// MockCatalogStore holds categories and products in maps.
type MockCatalogStore struct {
	m sync.Mutex

	Categories map[int64]*domain.Category
	Products   map[int64]*domain.Product

	NameTaken bool
	SKUTaken  bool
	Filter    domain.ProductFilter
	GetCalls  int
	Entered   chan struct{} // signalled when GetProduct starts
	Hold      chan struct{} // GetProduct waits for it, or for ctx, when set
	Created   *domain.Product
	Updated   *domain.Product
	Err       error
}

func (m *MockCatalogStore) ListCategories(context.Context, bool) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range m.Categories {
		out = append(out, *c)
	}
	return out, m.Err
}

func (m *MockCatalogStore) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := m.Categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCatalogStore) CategoryNameExists(context.Context, string, int64) (bool, error) {
	return m.NameTaken, m.Err
}

func (m *MockCatalogStore) CreateCategory(_ context.Context, c *domain.Category) error {
	if m.Err != nil {
		return m.Err
	}
	c.ID = int64(len(m.Categories) + 1)
	m.Categories[c.ID] = c
	return nil
}

func (m *MockCatalogStore) UpdateCategory(_ context.Context, c *domain.Category) error {
	if m.Err != nil {
		return m.Err
	}
	m.Categories[c.ID] = c
	return nil
}

func (m *MockCatalogStore) DeleteCategory(context.Context, int64) (bool, error) {
	return false, m.Err
}

func (m *MockCatalogStore) CategoryProductIDs(_ context.Context, categoryID int64) ([]int64, error) {
	ids := []int64{}
	for _, p := range m.Products {
		if p.CategoryID == categoryID {
			ids = append(ids, p.ID)
		}
	}
	return ids, m.Err
}

func (m *MockCatalogStore) ListProducts(_ context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	m.Filter = f
	out := []domain.Product{}
	for _, p := range m.Products {
		out = append(out, *p)
	}
	return out, len(out), m.Err
}

func (m *MockCatalogStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if m.Entered != nil {
		select {
		case m.Entered <- struct{}{}:
		default:
		}
	}
	if m.Hold != nil {
		select {
		case <-m.Hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.GetCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockCatalogStore) FeaturedProducts(_ context.Context, count int) ([]domain.Product, error) {
	return make([]domain.Product, 0, count), m.Err
}

func (m *MockCatalogStore) SKUExists(context.Context, string, int64) (bool, error) {
	return m.SKUTaken, m.Err
}

func (m *MockCatalogStore) CreateProduct(_ context.Context, p *domain.Product) error {
	if m.Err != nil {
		return m.Err
	}
	p.ID = int64(len(m.Products) + 1)
	m.Created = p
	m.Products[p.ID] = p
	return nil
}

func (m *MockCatalogStore) UpdateProduct(_ context.Context, p *domain.Product) error {
	if m.Err != nil {
		return m.Err
	}
	m.Updated = p
	m.Products[p.ID] = p
	return nil
}

func (m *MockCatalogStore) DeactivateProduct(context.Context, int64) error {
	return m.Err
}

func (m *MockCatalogStore) DeleteProduct(context.Context, int64) error {
	return m.Err
}

// MockCache implements cache.ProductCache.
type MockCache struct {
	m       sync.Mutex
	items   map[int64]*domain.Product
	Deleted []int64
	GetErr  error
	DelErr  error
}

func newMockCache() *MockCache {
	return &MockCache{items: map[int64]*domain.Product{}}
}

func (m *MockCache) Get(_ context.Context, id int64) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.items[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (m *MockCache) Set(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.items[p.ID] = p
	return nil
}

func (m *MockCache) Delete(_ context.Context, ids ...int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.Deleted = append(m.Deleted, ids...)
	for _, id := range ids {
		delete(m.items, id)
	}
	return m.DelErr
}

func (m *MockCache) cached(id int64) bool {
	m.m.Lock()
	defer m.m.Unlock()
	_, ok := m.items[id]
	return ok
}

// MockUserStore keeps users by id.
type MockUserStore struct {
	Users      map[int64]*domain.User
	EmailTaken bool
	NewHash    string
	ActiveSet  *bool
	RoleSet    domain.Role
	Query      domain.UserQuery
	UpdateErr  error
	Err        error
}

func (m *MockUserStore) CreateUser(_ context.Context, u *domain.User) error {
	if m.Err != nil {
		return m.Err
	}
	u.ID = int64(len(m.Users) + 1)
	m.Users[u.ID] = u
	return nil
}

func (m *MockUserStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.Users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserStore) EmailExists(context.Context, string) (bool, error) {
	return m.EmailTaken, m.Err
}

func (m *MockUserStore) UpdateProfile(_ context.Context, u *domain.User) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Users[u.ID] = u
	return nil
}

func (m *MockUserStore) UpdatePasswordHash(_ context.Context, _ int64, hash string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.NewHash = hash
	return nil
}

func (m *MockUserStore) SetUserActive(_ context.Context, _ int64, active bool) error {
	m.ActiveSet = &active
	return m.UpdateErr
}

func (m *MockUserStore) SetUserRole(_ context.Context, _ int64, role domain.Role) error {
	m.RoleSet = role
	return m.UpdateErr
}

func (m *MockUserStore) ListUsers(_ context.Context, q domain.UserQuery) ([]domain.User, int, error) {
	m.Query = q
	out := []domain.User{}
	for _, u := range m.Users {
		out = append(out, *u)
	}
	return out, len(out), m.Err
}

type MockTokens struct {
	Issued *domain.User
}

func (m *MockTokens) Issue(u *domain.User) (string, time.Time, error) {
	m.Issued = u
	return "token-for-" + u.Email, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

type MockDashboardStore struct {
	Fallback int
}

func (m *MockDashboardStore) Dashboard(_ context.Context, fallback int) (*domain.Dashboard, error) {
	m.Fallback = fallback
	return &domain.Dashboard{TotalUsers: 3}, nil
}
