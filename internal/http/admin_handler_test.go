package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	admin := &MockAdminService{Stats: &domain.Dashboard{
		TotalUsers:   4,
		TotalRevenue: decimal.RequireFromString("1520.75"),
	}}
	handler := NewAdminHandler(admin, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.Dashboard(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil), 1, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "1520.75", resp["totalRevenue"])
}

func TestListUsers_Query(t *testing.T) {
	admin := &MockAdminService{Users: []domain.User{{ID: 2}}}
	handler := NewAdminHandler(admin, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.ListUsers(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/admin/users?search=ada&role=Customer&pageSize=20", nil),
		1, domain.RoleAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.UserQuery{Search: "ada", Role: domain.RoleCustomer, PageSize: 20}, admin.Query)
}

func TestToggleUserStatus(t *testing.T) {
	admin := &MockAdminService{User: &domain.User{ID: 2, IsActive: false}}
	handler := NewAdminHandler(admin, 5*time.Second)

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/admin/users/2/toggle-status", nil), 1, domain.RoleAdmin)
	rec := serve(http.MethodPut, "/api/admin/users/{id}/toggle-status", handler.ToggleUserStatus, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "User deactivated successfully.", resp.Message)
	assert.Equal(t, int64(2), admin.UserID)
}

func TestToggleUserStatus_AdminTarget(t *testing.T) {
	handler := NewAdminHandler(&MockAdminService{Err: domain.Conflictf("Cannot deactivate admin users.")}, 5*time.Second)

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/admin/users/1/toggle-status", nil), 1, domain.RoleAdmin)
	rec := serve(http.MethodPut, "/api/admin/users/{id}/toggle-status", handler.ToggleUserStatus, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot deactivate admin users.", decodeError(t, rec).Error)
}

func TestChangeRole(t *testing.T) {
	admin := &MockAdminService{User: &domain.User{ID: 2, Role: domain.RoleAdmin}}
	handler := NewAdminHandler(admin, 5*time.Second)

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/admin/users/2/role",
		jsonBody(t, domain.UpdateRoleRequest{Role: domain.RoleAdmin})), 1, domain.RoleAdmin)
	rec := serve(http.MethodPut, "/api/admin/users/{id}/role", handler.ChangeRole, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, int64(1), admin.Actor.UserID)
	assert.Equal(t, int64(2), admin.UserID)
}
