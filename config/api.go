package config

import (
	"fmt"
	"strings"
)

// APIMode selects which academic API the client talks to.
type APIMode string

const (
	// APIModeRemote talks to the academic API at API_BASE_URL.
	APIModeRemote APIMode = "remote"
	// APIModeMock starts the in-process development API (for development only).
	APIModeMock APIMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for APIMode.
func (m *APIMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "remote", "mock":
		*m = APIMode(v)
		return nil
	default:
		return fmt.Errorf("invalid APIMode: %q (valid options: remote, mock)", v)
	}
}

// APIConfig locates the academic API and its identity endpoints.
type APIConfig struct {
	// BaseURL is ignored in mock mode, where the dev API picks its own address.
	BaseURL string  `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	Mode    APIMode `env:"API_MODE"     envDefault:"remote"`

	WhoAmIPath string `env:"API_WHOAMI_PATH" envDefault:"/auth/me"`
	LoginPath  string `env:"API_LOGIN_PATH"  envDefault:"/auth/login"`
	SignupPath string `env:"API_SIGNUP_PATH" envDefault:"/auth/register"`
	LogoutPath string `env:"API_LOGOUT_PATH" envDefault:"/auth/logout"`

	// MaxConcurrency caps parallel fetches while loading one dashboard page.
	MaxConcurrency int `env:"API_MAX_CONCURRENCY" envDefault:"4"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	a.WhoAmIPath = endpointPath(a.WhoAmIPath)
	a.LoginPath = endpointPath(a.LoginPath)
	a.SignupPath = endpointPath(a.SignupPath)
	a.LogoutPath = endpointPath(a.LogoutPath)
	if a.MaxConcurrency < 1 {
		a.MaxConcurrency = 1
	}
	if a.MaxConcurrency > 16 {
		a.MaxConcurrency = 16
	}
}

// IsMock reports whether the in-process dev API should be started.
func (a *APIConfig) IsMock() bool {
	return a.Mode == APIModeMock
}

// endpointPath trims p and gives it a leading slash. Empty stays empty so the
// client falls back to its default.
func endpointPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
