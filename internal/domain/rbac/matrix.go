package rbac

import (
	"fmt"
	"sort"
)

// rolePermissions is the authoritative role table. super_admin is kept as
// an explicit list; Validate checks that it still covers every other role.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermManageUsers, PermViewFinancialReports, PermManageBranches, PermViewAuditLogs,
		PermManageSecurity, PermSendNotifications, PermManageContent, PermSuspendAccounts,
		PermManageOperations, PermExportData, PermManageSupport, PermManageAnalytics,
	},
	RoleBranchAdmin: {
		PermManageUsers, PermManageBranches,
		PermSendNotifications,
		PermManageOperations,
		PermManageSupport,
	},
	RoleFinanceAdmin: {
		PermViewFinancialReports, PermExportData,
		PermManageOperations,
	},
	RoleAcademicCoordinator: {
		PermManageContent,
		PermSendNotifications,
		PermManageOperations,
	},
	RoleComplianceAdmin: {
		PermViewAuditLogs, PermViewFinancialReports, PermExportData,
	},
}

// PermissionSet is an immutable set of permissions
type PermissionSet struct {
	members map[Permission]struct{}
}

// Has reports whether p is in the set
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s.members[p]
	return ok
}

// Len returns the number of permissions in the set
func (s PermissionSet) Len() int {
	return len(s.members)
}

// List returns the members in catalog order
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s.members))
	for p := range s.members {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return catalogIndex[out[i]] < catalogIndex[out[j]]
	})
	return out
}

// Strings returns the members in catalog order as plain strings
func (s PermissionSet) Strings() []string {
	list := s.List()
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = string(p)
	}
	return out
}

// Matrix maps every role to its permission set. A Matrix is never
// mutated after construction and is safe for concurrent reads.
type Matrix struct {
	sets map[Role]PermissionSet
}

// NewMatrix builds a Matrix from a role table. Every role must be known
// and non-empty, and every entry must be a known, non-repeated permission.
func NewMatrix(table map[Role][]Permission) (*Matrix, error) {
	sets := make(map[Role]PermissionSet, len(table))
	for role, perms := range table {
		if !role.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		if len(perms) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRole, role)
		}

		members := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			if !p.Valid() {
				return nil, fmt.Errorf("%s: %w: %q", role, ErrUnknownPermission, p)
			}
			if _, dup := members[p]; dup {
				return nil, fmt.Errorf("%s: %w: %s", role, ErrDuplicatePermission, p)
			}
			members[p] = struct{}{}
		}
		sets[role] = PermissionSet{members: members}
	}
	return &Matrix{sets: sets}, nil
}

var defaultMatrix = mustMatrix(rolePermissions)

// DefaultMatrix returns the process-wide matrix built from the role table
func DefaultMatrix() *Matrix {
	return defaultMatrix
}

func mustMatrix(table map[Role][]Permission) *Matrix {
	m, err := NewMatrix(table)
	if err != nil {
		panic(fmt.Sprintf("rbac: invalid role table: %v", err))
	}
	return m
}

// Permissions returns the permission set of role
func (m *Matrix) Permissions(role Role) (PermissionSet, error) {
	set, ok := m.sets[role]
	if !ok {
		return PermissionSet{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return set, nil
}

// Roles returns the roles present in the matrix in declaration order
func (m *Matrix) Roles() []Role {
	out := make([]Role, 0, len(m.sets))
	for _, r := range roles {
		if _, ok := m.sets[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// HasPermission answers whether role holds perm. A false result with a nil
// error is an ordinary denial; unknown roles or permissions return an error.
func (m *Matrix) HasPermission(role Role, perm Permission) (bool, error) {
	set, err := m.Permissions(role)
	if err != nil {
		return false, err
	}
	if !perm.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownPermission, perm)
	}
	return set.Has(perm), nil
}

// PermissionsFor returns the permission set of role in the default matrix
func PermissionsFor(role Role) (PermissionSet, error) {
	return defaultMatrix.Permissions(role)
}

// RoleHasPermission checks perm against the default matrix
func RoleHasPermission(role Role, perm Permission) (bool, error) {
	return defaultMatrix.HasPermission(role, perm)
}
