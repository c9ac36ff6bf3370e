package auth

import "errors"

// Headers set by the SSO proxy in front of the console.
const (
	HeaderUser  = "X-Forwarded-User"
	HeaderOrgID = "X-Org-Id"
	HeaderRole  = "X-User-Role"
)

// ErrInvalidIdentity indicates identity headers that fail validation.
var ErrInvalidIdentity = errors.New("invalid identity headers")

// Identity is the caller as asserted by the proxy.
type Identity struct {
	Name  string `validate:"required,max=128"`
	OrgID string `validate:"required,max=64"`
	Role  string `validate:"required,oneof=admin manager operator viewer"`
}
