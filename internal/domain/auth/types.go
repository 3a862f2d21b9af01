// Package auth contains domain-level types for authentication and sessions:
// roles, the signed-in identity, auth state snapshots and role home routes.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"fmt"
	"strings"
)

// Role represents an application's authorization role.
// The string form matches what the academic API emits.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Roles returns the known roles in display order.
func Roles() []Role { return []Role{RoleStudent, RoleTeacher, RoleAdmin} }

// Known reports whether r is one of the roles the application can route.
func (r Role) Known() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalizes s (trim, upper case) and reports whether it names a known role.
// The normalized value is returned even when unknown so callers can log it.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Known()
}

// Label is the human-readable role name used in page chrome.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleTeacher:
		return "Teacher"
	case RoleAdmin:
		return "Administrator"
	default:
		return string(r)
	}
}

// UserIdentity is the authenticated principal as reported by the academic API.
// Values are treated as immutable snapshots; the store replaces them wholesale.
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// SignupProfile is the registration form submitted by a new user.
// ConfirmPassword never leaves the process.
type SignupProfile struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            Role   `json:"role"`
}

// AuthState is a snapshot of the client-side authentication state.
type AuthState struct {
	User    *UserIdentity `json:"user"`
	Loading bool          `json:"loading"`
	Error   string        `json:"error,omitempty"`
}

// IsAuthenticated is derived from User; it is never stored.
func (s AuthState) IsAuthenticated() bool { return s.User != nil }

// Role returns the signed-in user's role, or "" when signed out.
func (s AuthState) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// UnknownRolePolicy decides what happens when an authenticated user carries a
// role that has no dashboard home.
type UnknownRolePolicy string

const (
	// UnknownRoleLogin sends the user back to the login page.
	UnknownRoleLogin UnknownRolePolicy = "login"
	// UnknownRoleSupport renders a "contact support" page.
	UnknownRoleSupport UnknownRolePolicy = "support"
)

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (p *UnknownRolePolicy) UnmarshalText(text []byte) error {
	switch v := UnknownRolePolicy(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case "":
		*p = UnknownRoleLogin
	case UnknownRoleLogin, UnknownRoleSupport:
		*p = v
	default:
		return fmt.Errorf("invalid unknown role policy %q (want login or support)", string(text))
	}
	return nil
}
