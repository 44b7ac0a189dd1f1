package auth

import (
	"slices"
	"time"
)

// Method records which credential produced an Identity.
type Method string

const (
	MethodJWT       Method = "jwt"
	MethodAPIKey    Method = "api_key"
	MethodAnonymous Method = "anonymous"
)

const (
	// RoleAdmin opens the admin routes.
	RoleAdmin = "admin"

	// DefaultAdminClaim is the boolean token claim checked by IsAdmin.
	DefaultAdminClaim = "admin"
)

// Identity is an authenticated caller. Claims holds the verified token
// claims for bearer tokens and a small descriptor map for API keys.
type Identity struct {
	Principal string
	Roles     []string
	Method    Method
	Claims    map[string]any
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// IsAdmin is true for RoleAdmin or a claim named claim whose value is the
// boolean true. Truthy strings such as "yes" do not count.
func (id *Identity) IsAdmin(claim string) bool {
	if id == nil {
		return false
	}
	if claim == "" {
		claim = DefaultAdminClaim
	}
	if flag, ok := id.Claims[claim].(bool); ok && flag {
		return true
	}
	return id.HasRole(RoleAdmin)
}

// Expired reports whether ExpiresAt has passed. A zero ExpiresAt never expires.
func (id *Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// IsAnonymous is true for nil, anonymous or principal-less identities.
func (id *Identity) IsAnonymous() bool {
	return id == nil || id.Principal == "" || id.Method == MethodAnonymous
}
