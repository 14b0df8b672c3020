package rbac

import "fmt"

// Role represents an admin role
type Role string

const (
	RoleSuperAdmin          Role = "super_admin"
	RoleBranchAdmin         Role = "branch_admin"
	RoleFinanceAdmin        Role = "finance_admin"
	RoleAcademicCoordinator Role = "academic_coordinator"
	RoleComplianceAdmin     Role = "compliance_admin"
)

var roles = []Role{
	RoleSuperAdmin,
	RoleBranchAdmin,
	RoleFinanceAdmin,
	RoleAcademicCoordinator,
	RoleComplianceAdmin,
}

// roleLevels defines role levels (higher = more authority)
var roleLevels = map[Role]int{
	RoleSuperAdmin:          100,
	RoleBranchAdmin:         50,
	RoleFinanceAdmin:        50,
	RoleAcademicCoordinator: 50,
	RoleComplianceAdmin:     50,
}

// AllRoles returns every known role. The returned slice is a copy.
func AllRoles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// IsRole reports whether s names a known role
func IsRole(s string) bool {
	for _, r := range roles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// RoleLevel returns the authority level of r (higher = more authority)
func RoleLevel(r Role) (int, bool) {
	if !r.Valid() {
		return 0, false
	}
	level, ok := roleLevels[r]
	return level, ok
}

// ParseRole converts a raw string into a Role
func ParseRole(s string) (Role, error) {
	if !IsRole(s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return Role(s), nil
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return IsRole(string(r))
}

func (r Role) String() string {
	return string(r)
}

// CanManage checks if actor can manage accounts holding target.
// Unknown roles never manage and are never manageable.
func CanManage(actor, target Role) bool {
	a, ok := RoleLevel(actor)
	if !ok {
		return false
	}
	t, ok := RoleLevel(target)
	if !ok {
		return false
	}
	return a > t
}
