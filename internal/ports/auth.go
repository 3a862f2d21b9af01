package ports

// Package ports defines interfaces (hexagonal ports) for talking to the academic API.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"net/http"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// SessionClient performs the identity operations against the academic API.
// Every error it returns is an *apperrors.AuthError.
type SessionClient interface {
	// CheckSession asks the API who the current session belongs to.
	CheckSession(ctx context.Context) (domainauth.UserIdentity, error)
	// Login exchanges credentials for a session and returns the identity.
	Login(ctx context.Context, email, password string) (domainauth.UserIdentity, error)
	// Signup validates the profile locally, registers it and returns the identity.
	Signup(ctx context.Context, profile domainauth.SignupProfile) (domainauth.UserIdentity, error)
	// Logout ends the remote session. Callers treat failures as best effort.
	Logout(ctx context.Context) error
}

// CookieStore persists the API session cookies between process restarts.
type CookieStore interface {
	Save(ctx context.Context, key string, cookies []*http.Cookie) error
	Load(ctx context.Context, key string) ([]*http.Cookie, error)
	Delete(ctx context.Context, key string) error
}

// UnauthorizedEvent describes an API response with status 401.
type UnauthorizedEvent struct {
	Method string
	Path   string
}

// UnauthorizedListener is notified for every 401 the transport receives. ctx is
// the context of the request that produced it.
type UnauthorizedListener func(ctx context.Context, ev UnauthorizedEvent)
