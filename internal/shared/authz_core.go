package shared

import "strings"

// Console permissions.
const (
	PermDashboardView = "dashboard.view"

	PermLOVView = "lov.view"
	PermLOVEdit = "lov.edit"

	PermJobsView = "jobs.view"
)

var rolePermissions = map[string][]string{
	RoleAdmin:    {PermDashboardView, PermLOVView, PermLOVEdit, PermJobsView},
	RoleManager:  {PermDashboardView, PermLOVView, PermLOVEdit},
	RoleOperator: {PermDashboardView, PermLOVView},
	RoleViewer:   {PermDashboardView},
}

// RolePermissions returns the permissions granted to a role.
func RolePermissions(role string) []string {
	perms := rolePermissions[strings.ToLower(strings.TrimSpace(role))]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

