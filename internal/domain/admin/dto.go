package admin

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/coachhub/coachhub-api/internal/domain/navigation"
	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

// LoginRequest for POST /admin/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse after successful login
type LoginResponse struct {
	AccessToken string                   `json:"access_token"`
	ExpiresAt   string                   `json:"expires_at"`
	Admin       *AdminResponse           `json:"admin"`
	Navigation  []navigation.Destination `json:"navigation"`
}

// MeResponse for GET /admin/auth/me
type MeResponse struct {
	Admin      *AdminResponse           `json:"admin"`
	Navigation []navigation.Destination `json:"navigation"`
}

// AdminResponse represents admin in API
type AdminResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	Permissions []string  `json:"permissions"`
	LastLoginAt *string   `json:"last_login_at,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// AdminResponseFromEntity converts entity to response. An admin whose
// stored role is unknown gets an empty permission list.
func AdminResponseFromEntity(a *AdminUser) *AdminResponse {
	resp := &AdminResponse{
		ID:          a.ID,
		Email:       a.Email,
		Role:        string(a.Role),
		Name:        a.Name,
		IsActive:    a.IsActive,
		Permissions: []string{},
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}

	if a.LastLoginAt.Valid {
		s := a.LastLoginAt.Time.Format(time.RFC3339)
		resp.LastLoginAt = &s
	}

	if perms, err := a.Permissions(); err == nil {
		resp.Permissions = perms.Strings()
	}

	return resp
}

// CreateAdminRequest for POST /admin/admins
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,admin_role"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// UpdateAdminRequest for PATCH /admin/admins/{id}
type UpdateAdminRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Role     *string `json:"role,omitempty" validate:"omitempty,admin_role"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// AuditLogResponse represents audit log in API
type AuditLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	AdminID    *uuid.UUID      `json:"admin_id,omitempty"`
	AdminEmail string          `json:"admin_email"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// AuditLogResponseFromEntity converts entity to response
func AuditLogResponseFromEntity(l *AuditLog) *AuditLogResponse {
	resp := &AuditLogResponse{
		ID:         l.ID,
		AdminEmail: l.AdminEmail,
		Action:     l.Action,
		EntityType: l.EntityType,
		OldValue:   l.OldValue,
		NewValue:   l.NewValue,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.AdminID.Valid {
		id := l.AdminID.UUID
		resp.AdminID = &id
	}
	if l.EntityID.Valid {
		id := l.EntityID.UUID
		resp.EntityID = &id
	}
	if l.IPAddress.Valid {
		resp.IPAddress = &l.IPAddress.String
	}
	return resp
}

// RolePermissionsResponse is one row of the permission matrix
type RolePermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// PermissionMatrixResponse for GET /admin/permissions
type PermissionMatrixResponse struct {
	Permissions []string                  `json:"permissions"`
	Roles       []RolePermissionsResponse `json:"roles"`
}

// PermissionMatrixFrom renders m in catalog and role order
func PermissionMatrixFrom(m *rbac.Matrix) (*PermissionMatrixResponse, error) {
	all := rbac.AllPermissions()
	resp := &PermissionMatrixResponse{
		Permissions: make([]string, len(all)),
	}
	for i, p := range all {
		resp.Permissions[i] = string(p)
	}

	for _, role := range m.Roles() {
		set, err := m.Permissions(role)
		if err != nil {
			return nil, err
		}
		resp.Roles = append(resp.Roles, RolePermissionsResponse{
			Role:        string(role),
			Permissions: set.Strings(),
		})
	}
	return resp, nil
}
