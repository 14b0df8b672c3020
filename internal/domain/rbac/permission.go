package rbac

import "fmt"

// Permission represents an admin capability
type Permission string

const (
	// People
	PermManageUsers       Permission = "manage_users"
	PermSuspendAccounts   Permission = "suspend_accounts"
	PermSendNotifications Permission = "send_notifications"
	PermManageSupport     Permission = "manage_support"

	// Finance
	PermViewFinancialReports Permission = "view_financial_reports"
	PermExportData           Permission = "export_data"

	// Organization
	PermManageBranches   Permission = "manage_branches"
	PermManageOperations Permission = "manage_operations"
	PermManageContent    Permission = "manage_content"

	// System
	PermViewAuditLogs   Permission = "view_audit_logs"
	PermManageSecurity  Permission = "manage_security"
	PermManageAnalytics Permission = "manage_analytics"
)

// catalog lists every known permission in display order
var catalog = []Permission{
	PermManageUsers,
	PermViewFinancialReports,
	PermManageBranches,
	PermViewAuditLogs,
	PermManageSecurity,
	PermSendNotifications,
	PermManageContent,
	PermSuspendAccounts,
	PermManageOperations,
	PermExportData,
	PermManageSupport,
	PermManageAnalytics,
}

var catalogIndex = func() map[Permission]int {
	idx := make(map[Permission]int, len(catalog))
	for i, p := range catalog {
		idx[p] = i
	}
	return idx
}()

// AllPermissions returns the full catalog in display order.
// The returned slice is a copy.
func AllPermissions() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// IsPermission reports whether s names a known permission
func IsPermission(s string) bool {
	_, ok := catalogIndex[Permission(s)]
	return ok
}

// ParsePermission converts a raw string into a Permission
func ParsePermission(s string) (Permission, error) {
	if !IsPermission(s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return Permission(s), nil
}

// Valid reports whether p is part of the catalog
func (p Permission) Valid() bool {
	return IsPermission(string(p))
}

func (p Permission) String() string {
	return string(p)
}
