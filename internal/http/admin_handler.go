package http

import (
	"context"
	"net/http"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

type AdminService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	ListUsers(ctx context.Context, q domain.UserQuery) (*domain.PagedResult[domain.User], error)
	ToggleUserStatus(ctx context.Context, userID int64) (*domain.User, error)
	ChangeRole(ctx context.Context, actor domain.Actor, userID int64, req *domain.UpdateRoleRequest) (*domain.User, error)
}

// AdminHandler serves /api/admin. Routes are mounted behind RequireAdmin.
type AdminHandler struct {
	admin   AdminService
	timeout time.Duration
}

func NewAdminHandler(admin AdminService, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		timeout: timeout,
	}
}

// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	d, err := h.admin.Dashboard(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := newQueryParams(r.URL.Query())
	query := domain.UserQuery{
		Search:   q.string("search"),
		Role:     domain.Role(q.string("role")),
		Page:     q.int("page"),
		PageSize: q.int("pageSize"),
	}
	if q.err != nil {
		handleServiceError(w, r, q.err)
		return
	}

	users, err := h.admin.ListUsers(ctx, query)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// PUT /api/admin/users/{id}/toggle-status
func (h *AdminHandler) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	u, err := h.admin.ToggleUserStatus(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	state := "deactivated"
	if u.IsActive {
		state = "activated"
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "User " + state + " successfully."})
}

// PUT /api/admin/users/{id}/role
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.admin.ChangeRole(ctx, actor, id, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "User role updated successfully."})
}
