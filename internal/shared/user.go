package shared

import "strings"

// Roles known to the console.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// User is the signed-in user cached in the session. It is read-only for
// handlers; only the identity middleware writes it.
type User struct {
	Name  string `json:"name"`
	OrgID string `json:"org_id"`
	Role  string `json:"role"`
}

// IsZero reports whether no user is signed in.
func (u User) IsZero() bool {
	return strings.TrimSpace(u.Name) == ""
}
