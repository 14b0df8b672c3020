package rbac

import "context"

type contextKey string

const roleContextKey contextKey = "rbac_role"

// WithRole stores the session role in ctx
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleContextKey, role)
}

// RoleFromContext extracts the session role from ctx
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleContextKey).(Role)
	return role, ok
}

// CanFromContext checks perm for the role stored in ctx
func CanFromContext(ctx context.Context, perm Permission) (bool, error) {
	role, ok := RoleFromContext(ctx)
	if !ok {
		return false, ErrRoleNotInContext
	}
	return RoleHasPermission(role, perm)
}
