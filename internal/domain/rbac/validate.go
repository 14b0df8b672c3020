package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// Rule names reported by Validate
const (
	RuleRoleMissing = "role_missing"
	RuleSuperset    = "super_admin_superset"
	RuleViewOnly    = "compliance_view_only"
)

// mutatingPrefixes mark permissions that change state
var mutatingPrefixes = []string{"manage_", "create_", "delete_"}

// Violation describes a broken matrix invariant
type Violation struct {
	Rule       string     `json:"rule"`
	Role       Role       `json:"role"`
	Permission Permission `json:"permission,omitempty"`
	Message    string     `json:"message"`
}

func (v Violation) Error() string {
	return v.Message
}

// IsMutating reports whether p names a state-changing action
func IsMutating(p Permission) bool {
	for _, prefix := range mutatingPrefixes {
		if strings.HasPrefix(string(p), prefix) {
			return true
		}
	}
	return false
}

// Violations lists every policy rule the matrix breaks.
// Set-level rules (known values, no duplicates, non-empty) are enforced by NewMatrix.
func (m *Matrix) Violations() []Violation {
	var out []Violation

	for _, r := range roles {
		if _, ok := m.sets[r]; !ok {
			out = append(out, Violation{
				Rule:    RuleRoleMissing,
				Role:    r,
				Message: fmt.Sprintf("role %s has no permission set", r),
			})
		}
	}

	if super, ok := m.sets[RoleSuperAdmin]; ok {
		for _, r := range roles {
			if r == RoleSuperAdmin {
				continue
			}
			set, ok := m.sets[r]
			if !ok {
				continue
			}
			for _, p := range set.List() {
				if !super.Has(p) {
					out = append(out, Violation{
						Rule:       RuleSuperset,
						Role:       r,
						Permission: p,
						Message:    fmt.Sprintf("%s holds %s but %s does not", r, p, RoleSuperAdmin),
					})
				}
			}
		}
	}

	if set, ok := m.sets[RoleComplianceAdmin]; ok {
		for _, p := range set.List() {
			if IsMutating(p) {
				out = append(out, Violation{
					Rule:       RuleViewOnly,
					Role:       RoleComplianceAdmin,
					Permission: p,
					Message:    fmt.Sprintf("%s must be view-only but holds %s", RoleComplianceAdmin, p),
				})
			}
		}
	}

	return out
}

// Validate returns nil when the matrix satisfies every policy rule
func (m *Matrix) Validate() error {
	violations := m.Violations()
	if len(violations) == 0 {
		return nil
	}
	errs := make([]error, 0, len(violations)+1)
	errs = append(errs, ErrInvariant)
	for _, v := range violations {
		errs = append(errs, v)
	}
	return errors.Join(errs...)
}
