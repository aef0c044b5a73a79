package domain

import "strings"

// Role is the authenticated principal's role as reported by the account service.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps the service's role string to a Role. Anything other than
// "admin" is a plain user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin reports whether r grants access to the administrator views.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Credential is the bearer token and role obtained at sign-in.
type Credential struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// Valid reports whether the credential can authorize a request.
func (c Credential) Valid() bool {
	return c.Token != ""
}
