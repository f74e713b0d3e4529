package domain

import "time"

// Role enumerates the access levels issued by the upstream backend.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// SessionUser is the minimal user record held alongside the bearer token.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the user carries the given role.
func (u SessionUser) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthSession binds an upstream bearer token and tenant slug to an opaque
// session ID carried in a cookie. Created at login, destroyed at logout; no
// expiry tracking beyond the store TTL — token validity is enforced upstream.
type AuthSession struct {
	ID         string      `json:"id"`
	Token      string      `json:"token"`
	TenantSlug string      `json:"tenant_slug"`
	User       SessionUser `json:"user"`
	CreatedAt  time.Time   `json:"created_at"`
}
