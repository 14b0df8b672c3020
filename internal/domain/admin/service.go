package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/middleware"
	"github.com/coachhub/coachhub-api/internal/pkg/password"
)

// Revoker invalidates session tokens before they expire
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}

// Service handles admin business logic
type Service struct {
	repo     Repository
	sessions Revoker
	now      func() time.Time
}

// NewService creates admin service
func NewService(repo Repository, sessions Revoker) *Service {
	return &Service{repo: repo, sessions: sessions, now: time.Now}
}

// --- Authentication ---

// Login authenticates admin by email and password
func (s *Service) Login(ctx context.Context, email, pwd, ip string) (*AdminUser, error) {
	admin, err := s.repo.GetAdminByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if admin == nil || !password.Verify(pwd, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	if err := s.repo.UpdateLastLogin(ctx, admin.ID, ip); err != nil {
		log.Warn().Err(err).Str("admin_id", admin.ID.String()).Msg("Failed to record last login")
	}
	s.logAction(ctx, admin.ID, admin.Email, ActionLogin, admin.ID, ip, nil, nil)

	return admin, nil
}

// Logout revokes the current session token. revoked is false when no
// revocation store is configured.
func (s *Service) Logout(ctx context.Context, actorID uuid.UUID, tokenID string, ttl time.Duration) (revoked bool, err error) {
	if s.sessions != nil {
		revoked, err = s.sessions.Revoke(ctx, tokenID, ttl)
		if err != nil {
			return false, err
		}
	}
	if !revoked {
		log.Warn().Str("admin_id", actorID.String()).Msg("Session revocation unavailable, token stays valid until expiry")
	}
	s.logAction(ctx, actorID, "", ActionLogout, actorID, "", nil, nil)
	return revoked, nil
}

// SessionAccount returns the stored role and status of the admin a session
// belongs to, or nil when the account no longer exists.
func (s *Service) SessionAccount(ctx context.Context, adminID uuid.UUID) (*middleware.Account, error) {
	admin, err := s.repo.GetAdminByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, nil
	}
	return &middleware.Account{Role: admin.Role, Active: admin.IsActive}, nil
}

// GetAdminByID returns admin by ID
func (s *Service) GetAdminByID(ctx context.Context, id uuid.UUID) (*AdminUser, error) {
	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// --- Admin Management ---

// ListAdmins returns all admins
func (s *Service) ListAdmins(ctx context.Context) ([]*AdminUser, error) {
	return s.repo.ListAdmins(ctx)
}

// CreateAdmin creates a new admin account. The actor must outrank the
// role being granted.
func (s *Service) CreateAdmin(ctx context.Context, actorID uuid.UUID, actorRole rbac.Role, req *CreateAdminRequest) (*AdminUser, error) {
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if !rbac.CanManage(actorRole, role) {
		return nil, ErrCannotManageRole
	}

	existing, err := s.repo.GetAdminByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	admin := &AdminUser{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		Name:         req.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	s.logAction(ctx, actorID, "", ActionAdminCreate, admin.ID, "", nil, AdminResponseFromEntity(admin))

	return admin, nil
}

// UpdateAdmin changes another admin's name, role or status. The actor must
// outrank both the current and the requested role.
func (s *Service) UpdateAdmin(ctx context.Context, actorID uuid.UUID, actorRole rbac.Role, targetID uuid.UUID, req *UpdateAdminRequest) (*AdminUser, error) {
	admin, err := s.GetAdminByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if actorID == targetID && (req.Role != nil || req.IsActive != nil) {
		return nil, ErrCannotModifySelf
	}
	if actorID != targetID && !rbac.CanManage(actorRole, admin.Role) {
		return nil, ErrCannotManageRole
	}

	oldValue := AdminResponseFromEntity(admin)

	if req.Name != nil {
		admin.Name = *req.Name
	}
	if req.Role != nil {
		role, err := rbac.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if !rbac.CanManage(actorRole, role) {
			return nil, ErrCannotManageRole
		}
		admin.Role = role
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}
	admin.UpdatedAt = s.now()

	if err := s.repo.UpdateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	s.logAction(ctx, actorID, "", ActionAdminUpdate, admin.ID, "", oldValue, AdminResponseFromEntity(admin))

	return admin, nil
}

// SeedSuperAdmin creates the first super_admin account, which no API
// caller can create. It is a no-op when the email already exists.
func (s *Service) SeedSuperAdmin(ctx context.Context, email, pwd, name string) (*AdminUser, bool, error) {
	existing, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	hash, err := password.Hash(pwd)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	admin := &AdminUser{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         rbac.RoleSuperAdmin,
		Name:         name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, false, err
	}

	s.logAction(ctx, uuid.Nil, "seed", ActionAdminCreate, admin.ID, "", nil, AdminResponseFromEntity(admin))
	return admin, true, nil
}

// --- Audit Logs ---

// ListAuditLogs returns audit logs
func (s *Service) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]*AuditLog, int, error) {
	return s.repo.ListAuditLogs(ctx, filter)
}

// logAction creates an audit log entry; failures are logged, not returned
func (s *Service) logAction(ctx context.Context, actorID uuid.UUID, actorEmail, action string, entityID uuid.UUID, ip string, oldValue, newValue interface{}) {
	if actorEmail == "" && actorID != uuid.Nil {
		if actor, err := s.repo.GetAdminByID(ctx, actorID); err == nil && actor != nil {
			actorEmail = actor.Email
		}
	}

	entry := &AuditLog{
		ID:         uuid.New(),
		AdminID:    uuid.NullUUID{UUID: actorID, Valid: actorID != uuid.Nil},
		AdminEmail: actorEmail,
		Action:     action,
		EntityType: "admin",
		EntityID:   uuid.NullUUID{UUID: entityID, Valid: entityID != uuid.Nil},
		OldValue:   marshalOptional(oldValue),
		NewValue:   marshalOptional(newValue),
		IPAddress:  sql.NullString{String: ip, Valid: ip != ""},
		CreatedAt:  s.now(),
	}

	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to create audit log")
	}
}

func marshalOptional(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
