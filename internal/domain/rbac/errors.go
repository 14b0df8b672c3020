package rbac

import "errors"

var (
	ErrUnknownRole         = errors.New("unknown role")
	ErrUnknownPermission   = errors.New("unknown permission")
	ErrDuplicatePermission = errors.New("duplicate permission")
	ErrEmptyRole           = errors.New("role has no permissions")
	ErrRoleNotInContext    = errors.New("role not in context")
	ErrInvariant           = errors.New("permission matrix invariant violated")
)
