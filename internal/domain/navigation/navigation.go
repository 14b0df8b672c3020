package navigation

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

var (
	ErrDuplicateKey = errors.New("duplicate destination key")
	ErrMissingKey   = errors.New("destination key is required")
)

// Destination is a top-level section of the admin app
type Destination struct {
	Key        string          `json:"key" yaml:"key"`
	Title      string          `json:"title" yaml:"title"`
	Path       string          `json:"path" yaml:"path"`
	Permission rbac.Permission `json:"permission" yaml:"permission"`
}

var defaultDestinations = []Destination{
	{Key: "users", Title: "Users", Path: "/users", Permission: rbac.PermManageUsers},
	{Key: "finance", Title: "Financial Reports", Path: "/finance", Permission: rbac.PermViewFinancialReports},
	{Key: "branches", Title: "Branches", Path: "/branches", Permission: rbac.PermManageBranches},
	{Key: "audit", Title: "Audit Logs", Path: "/audit", Permission: rbac.PermViewAuditLogs},
	{Key: "security", Title: "Security", Path: "/security", Permission: rbac.PermManageSecurity},
	{Key: "notifications", Title: "Notifications", Path: "/notifications", Permission: rbac.PermSendNotifications},
	{Key: "content", Title: "Content", Path: "/content", Permission: rbac.PermManageContent},
	{Key: "suspensions", Title: "Account Suspensions", Path: "/suspensions", Permission: rbac.PermSuspendAccounts},
	{Key: "operations", Title: "Operations", Path: "/operations", Permission: rbac.PermManageOperations},
	{Key: "exports", Title: "Data Export", Path: "/exports", Permission: rbac.PermExportData},
	{Key: "support", Title: "Support Tickets", Path: "/support", Permission: rbac.PermManageSupport},
	{Key: "analytics", Title: "Analytics", Path: "/analytics", Permission: rbac.PermManageAnalytics},
}

// DefaultDestinations returns the built-in navigation table. The returned
// slice is a copy.
func DefaultDestinations() []Destination {
	out := make([]Destination, len(defaultDestinations))
	copy(out, defaultDestinations)
	return out
}

// Filter returns the destinations role may open, in their original order.
// Destinations the role lacks are dropped; an unknown role or an unknown
// required permission fails the whole call.
func Filter(role rbac.Role, dests []Destination) ([]Destination, error) {
	return FilterWith(rbac.DefaultMatrix(), role, dests)
}

// FilterWith is Filter against an explicit matrix
func FilterWith(m *rbac.Matrix, role rbac.Role, dests []Destination) ([]Destination, error) {
	visible := make([]Destination, 0, len(dests))
	for _, d := range dests {
		ok, err := m.HasPermission(role, d.Permission)
		if err != nil {
			return nil, fmt.Errorf("destination %s: %w", d.Key, err)
		}
		if ok {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

type file struct {
	Destinations []struct {
		Key        string `yaml:"key"`
		Title      string `yaml:"title"`
		Path       string `yaml:"path"`
		Permission string `yaml:"permission"`
	} `yaml:"destinations"`
}

// Parse decodes a YAML navigation table. Every permission must be in the
// rbac catalog and keys must be unique.
func Parse(data []byte) ([]Destination, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse navigation: %w", err)
	}

	seen := make(map[string]bool, len(f.Destinations))
	dests := make([]Destination, 0, len(f.Destinations))
	for i, raw := range f.Destinations {
		if raw.Key == "" {
			return nil, fmt.Errorf("destination #%d: %w", i, ErrMissingKey)
		}
		if seen[raw.Key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, raw.Key)
		}
		seen[raw.Key] = true

		perm, err := rbac.ParsePermission(raw.Permission)
		if err != nil {
			return nil, fmt.Errorf("destination %s: %w", raw.Key, err)
		}

		dests = append(dests, Destination{
			Key:        raw.Key,
			Title:      raw.Title,
			Path:       raw.Path,
			Permission: perm,
		})
	}
	return dests, nil
}

// LoadFile reads a navigation table from path.
// An empty path yields the built-in table.
func LoadFile(path string) ([]Destination, error) {
	if path == "" {
		return DefaultDestinations(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
