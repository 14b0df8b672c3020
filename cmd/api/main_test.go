package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachhub/coachhub-api/internal/config"
	"github.com/coachhub/coachhub-api/internal/domain/admin"
	"github.com/coachhub/coachhub-api/internal/domain/navigation"
	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/pkg/health"
	"github.com/coachhub/coachhub-api/internal/pkg/jwt"
	"github.com/coachhub/coachhub-api/internal/pkg/metrics"
)

// accountsRepo only knows the admins it was built with
type accountsRepo map[uuid.UUID]*admin.AdminUser

func (accountsRepo) CreateAdmin(context.Context, *admin.AdminUser) error { return nil }
func (r accountsRepo) GetAdminByID(_ context.Context, id uuid.UUID) (*admin.AdminUser, error) {
	return r[id], nil
}
func (accountsRepo) GetAdminByEmail(context.Context, string) (*admin.AdminUser, error) {
	return nil, nil
}
func (accountsRepo) ListAdmins(context.Context) ([]*admin.AdminUser, error) { return nil, nil }
func (accountsRepo) UpdateAdmin(context.Context, *admin.AdminUser) error   { return nil }
func (accountsRepo) UpdateLastLogin(context.Context, uuid.UUID, string) error {
	return nil
}
func (accountsRepo) CreateAuditLog(context.Context, *admin.AuditLog) error { return nil }
func (accountsRepo) ListAuditLogs(context.Context, admin.AuditFilter) ([]*admin.AuditLog, int, error) {
	return nil, 0, nil
}

type testAccounts struct {
	repo accountsRepo
	jwt  *jwt.Service
}

// token issues a session for a new active account holding role
func (a testAccounts) token(t *testing.T, role rbac.Role) string {
	t.Helper()
	id := uuid.New()
	a.repo[id] = &admin.AdminUser{ID: id, Email: string(role) + "@coachhub.app", Role: role, IsActive: true}
	token, _, _, err := a.jwt.GenerateAccessToken(id, a.repo[id].Email, string(role))
	require.NoError(t, err)
	return token
}

func testRouter(t *testing.T) (http.Handler, testAccounts) {
	t.Helper()
	repo := accountsRepo{}
	registry := prometheus.NewRegistry()
	jwtSvc := jwt.NewService("test-secret", time.Hour)
	return newRouter(routerDeps{
		Config:       &config.Config{AllowedOrigins: []string{"http://localhost:8081"}},
		JWT:          jwtSvc,
		Repo:         repo,
		Destinations: navigation.DefaultDestinations(),
		Metrics:      metrics.NewMetrics(registry),
		Registry:     registry,
		Health:       health.NewChecker(nil, nil, rbac.DefaultMatrix(), "test"),
	}), testAccounts{repo: repo, jwt: jwtSvc}
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthAndMetrics(t *testing.T) {
	r, _ := testRouter(t)

	assert.Equal(t, http.StatusOK, get(r, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/health/ready", "").Code)

	rr := get(r, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "coachhub_")
}

func TestRouterNavigationRequiresSession(t *testing.T) {
	r, accounts := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/admin/navigation", "").Code)

	rr := get(r, "/api/admin/navigation", accounts.token(t, rbac.RoleBranchAdmin))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Index(body, `"users"`) < strings.Index(body, `"branches"`))
	assert.NotContains(t, body, `"finance"`)
}

func TestRouterPermissionGate(t *testing.T) {
	r, accounts := testRouter(t)

	token := accounts.token(t, rbac.RoleComplianceAdmin)

	assert.Equal(t, http.StatusForbidden, get(r, "/api/admin/permissions", token).Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/admin/audit/logs", token).Code)
}

func TestRouterRejectsUnknownRoleSession(t *testing.T) {
	r, accounts := testRouter(t)

	token, _, _, err := accounts.jwt.GenerateAccessToken(uuid.New(), "old@coachhub.app", "moderator")
	require.NoError(t, err)

	rr := get(r, "/api/admin/navigation", token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_INVALID")
}

func TestRouterRejectsSessionWithoutAccount(t *testing.T) {
	r, accounts := testRouter(t)

	token, _, _, err := accounts.jwt.GenerateAccessToken(uuid.New(), "branch@coachhub.app", "branch_admin")
	require.NoError(t, err)

	for _, path := range []string{"/api/admin/admins/", "/api/admin/navigation"} {
		rr := get(r, path, token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "SESSION_INVALID", path)
	}
}

func TestRouterRejectsDeactivatedAccount(t *testing.T) {
	r, accounts := testRouter(t)

	token := accounts.token(t, rbac.RoleBranchAdmin)
	require.Equal(t, http.StatusOK, get(r, "/api/admin/admins/", token).Code)

	for _, a := range accounts.repo {
		a.IsActive = false
	}
	rr := get(r, "/api/admin/admins/", token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_INVALID")
}
