package service

import (
	"context"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

const defaultUserPageSize = 10

var (
	errDeactivateAdmin = domain.Conflictf("Cannot deactivate admin users.")
	errChangeOwnRole   = domain.Conflictf("Cannot change your own role.")
)

type AdminService struct {
	users     UserStore
	dashboard DashboardStore
}

func NewAdminService(users UserStore, dashboard DashboardStore) *AdminService {
	return &AdminService{
		users:     users,
		dashboard: dashboard,
	}
}

func (s *AdminService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	return s.dashboard.Dashboard(ctx, domain.DefaultLowStockThreshold)
}

func (s *AdminService) ListUsers(ctx context.Context, q domain.UserQuery) (*domain.PagedResult[domain.User], error) {
	if q.Role != "" && !q.Role.Valid() {
		return nil, domain.Validationf("Unknown role '%s'.", q.Role)
	}
	q.Page, q.PageSize = domain.NormalizePage(q.Page, q.PageSize, defaultUserPageSize)

	users, total, err := s.users.ListUsers(ctx, q)
	if err != nil {
		return nil, err
	}
	return domain.NewPagedResult(users, total, q.Page, q.PageSize), nil
}

// ToggleUserStatus flips a customer's active flag and returns the user.
func (s *AdminService) ToggleUserStatus(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == domain.RoleAdmin {
		return nil, errDeactivateAdmin
	}

	u.IsActive = !u.IsActive
	if err := s.users.SetUserActive(ctx, u.ID, u.IsActive); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AdminService) ChangeRole(ctx context.Context, actor domain.Actor, userID int64, req *domain.UpdateRoleRequest) (*domain.User, error) {
	if !req.Role.Valid() {
		return nil, domain.Validationf("Role must be Customer or Admin.")
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ID == actor.UserID {
		return nil, errChangeOwnRole
	}

	u.Role = req.Role
	if err := s.users.SetUserRole(ctx, u.ID, u.Role); err != nil {
		return nil, err
	}
	return u, nil
}
