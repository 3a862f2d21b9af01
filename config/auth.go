package config

import (
	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// UnknownRolePolicy decides what signed-in users whose role has no dashboard see:
	// "login" sends them to the login page, "support" shows a contact-support page.
	UnknownRolePolicy domainauth.UnknownRolePolicy `env:"AUTH_UNKNOWN_ROLE_POLICY" envDefault:"login"`

	// WaitForSessionCheck restores an existing API session before serving traffic.
	// When false the check runs in the background and early requests see the loading page.
	WaitForSessionCheck bool `env:"AUTH_WAIT_FOR_SESSION_CHECK" envDefault:"true"`
}
