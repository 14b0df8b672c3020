package admin

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/pkg/password"
)

type fakeRepo struct {
	mu     sync.Mutex
	admins map[uuid.UUID]*AdminUser
	audit  []*AuditLog
	err    error
}

func newFakeRepo(admins ...*AdminUser) *fakeRepo {
	f := &fakeRepo{admins: map[uuid.UUID]*AdminUser{}}
	for _, a := range admins {
		f.admins[a.ID] = a
	}
	return f
}

func (f *fakeRepo) CreateAdmin(_ context.Context, a *AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.admins[a.ID] = a
	return nil
}

func (f *fakeRepo) GetAdminByID(_ context.Context, id uuid.UUID) (*AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.admins[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetAdminByEmail(_ context.Context, email string) (*AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.admins {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListAdmins(_ context.Context) ([]*AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*AdminUser, 0, len(f.admins))
	for _, a := range f.admins {
		out = append(out, a)
	}
	return out, f.err
}

func (f *fakeRepo) UpdateAdmin(_ context.Context, a *AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.admins[a.ID] = a
	return nil
}

func (f *fakeRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (f *fakeRepo) CreateAuditLog(_ context.Context, l *AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audit = append(f.audit, l)
	return nil
}

func (f *fakeRepo) ListAuditLogs(_ context.Context, _ AuditFilter) ([]*AuditLog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audit, len(f.audit), f.err
}

func (f *fakeRepo) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.audit))
	for i, l := range f.audit {
		out[i] = l.Action
	}
	return out
}

func newAdmin(t *testing.T, email string, role rbac.Role, pwd string) *AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	require.NoError(t, err)
	return &AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         "Test Admin",
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func newSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client), mr
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestLogin(t *testing.T) {
	active := newAdmin(t, "ops@coachhub.app", rbac.RoleBranchAdmin, "correct-horse")
	inactive := newAdmin(t, "gone@coachhub.app", rbac.RoleFinanceAdmin, "correct-horse")
	inactive.IsActive = false
	repo := newFakeRepo(active, inactive)
	svc := NewService(repo, nil)
	ctx := context.Background()

	got, err := svc.Login(ctx, "  OPS@coachhub.app ", "correct-horse", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
	assert.Equal(t, []string{ActionLogin}, repo.actions())

	_, err = svc.Login(ctx, "ops@coachhub.app", "wrong-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@coachhub.app", "correct-horse", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "gone@coachhub.app", "correct-horse", "")
	assert.ErrorIs(t, err, ErrAdminInactive)
}

func TestLoginRepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("db down")
	svc := NewService(repo, nil)

	_, err := svc.Login(context.Background(), "ops@coachhub.app", "correct-horse", "")
	assert.EqualError(t, err, "db down")
}

func TestLogoutRevokesSession(t *testing.T) {
	actor := newAdmin(t, "ops@coachhub.app", rbac.RoleBranchAdmin, "correct-horse")
	repo := newFakeRepo(actor)
	store, mr := newSessionStore(t)
	svc := NewService(repo, store)
	ctx := context.Background()

	revoked, err := svc.Logout(ctx, actor.ID, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, []string{ActionLogout}, repo.actions())

	mr.FastForward(time.Hour + time.Second)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCreateAdmin(t *testing.T) {
	super := newAdmin(t, "root@coachhub.app", rbac.RoleSuperAdmin, "correct-horse")
	branch := newAdmin(t, "branch@coachhub.app", rbac.RoleBranchAdmin, "correct-horse")
	repo := newFakeRepo(super, branch)
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.CreateAdmin(ctx, super.ID, rbac.RoleSuperAdmin, &CreateAdminRequest{
		Email:    "Finance@CoachHub.app",
		Password: "long-enough",
		Role:     "finance_admin",
		Name:     "Finance",
	})
	require.NoError(t, err)
	assert.Equal(t, "finance@coachhub.app", created.Email)
	assert.Equal(t, rbac.RoleFinanceAdmin, created.Role)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "long-enough", created.PasswordHash)
	assert.Contains(t, repo.actions(), ActionAdminCreate)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.CreateAdmin(ctx, super.ID, rbac.RoleSuperAdmin, &CreateAdminRequest{
			Email: "finance@coachhub.app", Password: "long-enough", Role: "finance_admin", Name: "Dup",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("peer role cannot be granted", func(t *testing.T) {
		_, err := svc.CreateAdmin(ctx, branch.ID, rbac.RoleBranchAdmin, &CreateAdminRequest{
			Email: "peer@coachhub.app", Password: "long-enough", Role: "finance_admin", Name: "Peer",
		})
		assert.ErrorIs(t, err, ErrCannotManageRole)
	})

	t.Run("super admin cannot be granted", func(t *testing.T) {
		_, err := svc.CreateAdmin(ctx, super.ID, rbac.RoleSuperAdmin, &CreateAdminRequest{
			Email: "root2@coachhub.app", Password: "long-enough", Role: "super_admin", Name: "Root",
		})
		assert.ErrorIs(t, err, ErrCannotManageRole)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.CreateAdmin(ctx, super.ID, rbac.RoleSuperAdmin, &CreateAdminRequest{
			Email: "x@coachhub.app", Password: "long-enough", Role: "janitor", Name: "X",
		})
		assert.ErrorIs(t, err, rbac.ErrUnknownRole)
	})
}

func TestUpdateAdmin(t *testing.T) {
	super := newAdmin(t, "root@coachhub.app", rbac.RoleSuperAdmin, "correct-horse")
	branch := newAdmin(t, "branch@coachhub.app", rbac.RoleBranchAdmin, "correct-horse")
	finance := newAdmin(t, "finance@coachhub.app", rbac.RoleFinanceAdmin, "correct-horse")
	repo := newFakeRepo(super, branch, finance)
	svc := NewService(repo, nil)
	ctx := context.Background()

	updated, err := svc.UpdateAdmin(ctx, super.ID, rbac.RoleSuperAdmin, finance.ID, &UpdateAdminRequest{
		Role:     strPtr("compliance_admin"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleComplianceAdmin, updated.Role)
	assert.False(t, updated.IsActive)
	assert.Contains(t, repo.actions(), ActionAdminUpdate)

	t.Run("self role change", func(t *testing.T) {
		_, err := svc.UpdateAdmin(ctx, branch.ID, rbac.RoleBranchAdmin, branch.ID, &UpdateAdminRequest{
			Role: strPtr("finance_admin"),
		})
		assert.ErrorIs(t, err, ErrCannotModifySelf)
	})

	t.Run("self rename", func(t *testing.T) {
		got, err := svc.UpdateAdmin(ctx, branch.ID, rbac.RoleBranchAdmin, branch.ID, &UpdateAdminRequest{
			Name: strPtr("Branch Lead"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Branch Lead", got.Name)
	})

	t.Run("peer", func(t *testing.T) {
		_, err := svc.UpdateAdmin(ctx, branch.ID, rbac.RoleBranchAdmin, finance.ID, &UpdateAdminRequest{
			Name: strPtr("Renamed"),
		})
		assert.ErrorIs(t, err, ErrCannotManageRole)
	})

	t.Run("promote to super admin", func(t *testing.T) {
		_, err := svc.UpdateAdmin(ctx, super.ID, rbac.RoleSuperAdmin, branch.ID, &UpdateAdminRequest{
			Role: strPtr("super_admin"),
		})
		assert.ErrorIs(t, err, ErrCannotManageRole)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := svc.UpdateAdmin(ctx, super.ID, rbac.RoleSuperAdmin, uuid.New(), &UpdateAdminRequest{})
		assert.ErrorIs(t, err, ErrAdminNotFound)
	})
}

func TestSessionStoreNilClient(t *testing.T) {
	var store *SessionStore
	ctx := context.Background()

	revoked, err := store.Revoke(ctx, "jti", time.Minute)
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLogoutWithoutStoreReportsNoRevocation(t *testing.T) {
	actor := newAdmin(t, "ops@coachhub.app", rbac.RoleBranchAdmin, "correct-horse")
	repo := newFakeRepo(actor)
	ctx := context.Background()

	revoked, err := NewService(repo, nil).Logout(ctx, actor.ID, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = NewService(repo, NewSessionStore(nil)).Logout(ctx, actor.ID, "jti-2", time.Hour)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, []string{ActionLogout, ActionLogout}, repo.actions())
}

func TestSessionAccount(t *testing.T) {
	active := newAdmin(t, "ops@coachhub.app", rbac.RoleBranchAdmin, "correct-horse")
	inactive := newAdmin(t, "gone@coachhub.app", rbac.RoleFinanceAdmin, "correct-horse")
	inactive.IsActive = false
	repo := newFakeRepo(active, inactive)
	svc := NewService(repo, nil)
	ctx := context.Background()

	account, err := svc.SessionAccount(ctx, active.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, rbac.RoleBranchAdmin, account.Role)
	assert.True(t, account.Active)

	account, err = svc.SessionAccount(ctx, inactive.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.False(t, account.Active)

	account, err = svc.SessionAccount(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, account)

	repo.err = errors.New("db down")
	_, err = svc.SessionAccount(ctx, active.ID)
	assert.EqualError(t, err, "db down")
}

func TestSessionStoreRedisError(t *testing.T) {
	store, mr := newSessionStore(t)
	mr.SetError("LOADING")

	_, err := store.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

func TestSeedSuperAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, ok, err := svc.SeedSuperAdmin(ctx, "Root@CoachHub.app", "long-enough", "Root")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rbac.RoleSuperAdmin, created.Role)
	assert.Equal(t, "root@coachhub.app", created.Email)

	again, ok, err := svc.SeedSuperAdmin(ctx, "root@coachhub.app", "long-enough", "Root")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, created.ID, again.ID)

	_, _, err = svc.SeedSuperAdmin(ctx, "other@coachhub.app", "short", "Other")
	assert.ErrorIs(t, err, password.ErrTooShort)
}
