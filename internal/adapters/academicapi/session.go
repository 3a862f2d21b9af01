package academicapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/ports"
	"github.com/acadify/acadify-web/internal/validation"
)

// Endpoints are the identity paths, relative to the API base URL.
type Endpoints struct {
	WhoAmI string
	Login  string
	Signup string
	Logout string
}

// DefaultEndpoints returns the paths served by the academic API.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		WhoAmI: "/auth/me",
		Login:  "/auth/login",
		Signup: "/auth/register",
		Logout: "/auth/logout",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	if e.WhoAmI == "" {
		e.WhoAmI = d.WhoAmI
	}
	if e.Login == "" {
		e.Login = d.Login
	}
	if e.Signup == "" {
		e.Signup = d.Signup
	}
	if e.Logout == "" {
		e.Logout = d.Logout
	}
	return e
}

// SessionClient implements ports.SessionClient over a Transport.
type SessionClient struct {
	transport *Transport
	endpoints Endpoints
	logger    *slog.Logger
}

var _ ports.SessionClient = (*SessionClient)(nil)

// NewSessionClient builds a SessionClient; zero-valued endpoints use the defaults.
func NewSessionClient(t *Transport, endpoints Endpoints, logger *slog.Logger) *SessionClient {
	return &SessionClient{transport: t, endpoints: endpoints.withDefaults(), logger: logger}
}

func (c *SessionClient) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// CheckSession asks the API for the identity bound to the current cookies.
// A 401 is the normal "signed out" answer and is not logged as an error.
func (c *SessionClient) CheckSession(ctx context.Context) (domainauth.UserIdentity, error) {
	resp, err := c.transport.send(ctx, http.MethodGet, c.endpoints.WhoAmI, nil, nil)
	if err != nil {
		return domainauth.UserIdentity{}, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.log().DebugContext(ctx, "no active session")
		return domainauth.UserIdentity{}, &apperrors.AuthError{
			Kind:    apperrors.KindUnauthenticated,
			Message: apperrors.MsgNotSignedIn,
			Status:  http.StatusUnauthorized,
		}
	}
	data, err := decode(resp, apperrors.MsgNotSignedIn)
	if err != nil {
		return domainauth.UserIdentity{}, err
	}
	user, err := decodeIdentity(data)
	if err != nil {
		return domainauth.UserIdentity{}, malformedIdentity(resp.StatusCode(), apperrors.MsgNotSignedIn, err)
	}
	return user, nil
}

// Login posts the credentials. Rejections are reported as InvalidCredentials with
// the API's message; a missing response stays a NetworkFailure.
func (c *SessionClient) Login(ctx context.Context, email, password string) (domainauth.UserIdentity, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	resp, err := c.transport.send(ctx, http.MethodPost, c.endpoints.Login, body, nil)
	if err != nil {
		return domainauth.UserIdentity{}, err
	}
	data, err := decode(resp, apperrors.MsgLoginFailed)
	if err != nil {
		return domainauth.UserIdentity{}, apperrors.WithKind(apperrors.Normalize(err), apperrors.KindInvalidCredentials)
	}
	user, err := decodeIdentity(data)
	if err != nil {
		return domainauth.UserIdentity{}, malformedIdentity(resp.StatusCode(), apperrors.MsgLoginFailed, err)
	}
	// The login response carries only the id and role.
	if user.Email == "" {
		user.Email = body["email"]
	}
	return user, nil
}

// Signup validates the profile before any request is made, then registers it.
func (c *SessionClient) Signup(ctx context.Context, profile domainauth.SignupProfile) (domainauth.UserIdentity, error) {
	if fields := validation.ValidateSignup(profile); len(fields) > 0 {
		return domainauth.UserIdentity{}, apperrors.Validation(fields, validation.SignupFields...)
	}
	role, _ := domainauth.ParseRole(string(profile.Role))
	if role == "" {
		role = domainauth.RoleStudent
	}
	body := map[string]string{
		"name":     strings.TrimSpace(profile.Name),
		"email":    strings.TrimSpace(profile.Email),
		"password": profile.Password,
		"role":     string(role),
	}
	resp, err := c.transport.send(ctx, http.MethodPost, c.endpoints.Signup, body, nil)
	if err != nil {
		return domainauth.UserIdentity{}, err
	}
	data, err := decode(resp, apperrors.MsgSignupFailed)
	if err != nil {
		return domainauth.UserIdentity{}, apperrors.WithKind(apperrors.Normalize(err), apperrors.KindSignupFailure)
	}
	user, err := decodeIdentity(data)
	if err != nil {
		return domainauth.UserIdentity{}, malformedIdentity(resp.StatusCode(), apperrors.MsgSignupFailed, err)
	}
	// The register response echoes only the id and role.
	if user.Name == "" {
		user.Name = body["name"]
	}
	if user.Email == "" {
		user.Email = body["email"]
	}
	if user.Role == "" {
		user.Role = role
	}
	return user, nil
}

// Logout ends the remote session.
func (c *SessionClient) Logout(ctx context.Context) error {
	resp, err := c.transport.send(ctx, http.MethodPost, c.endpoints.Logout, nil, nil)
	if err != nil {
		return err
	}
	if _, err := decode(resp, "Logout failed"); err != nil {
		return err
	}
	return nil
}

func malformedIdentity(status int, msg string, cause error) error {
	return &apperrors.AuthError{
		Kind:    apperrors.KindServerError,
		Message: msg,
		Status:  status,
		Cause:   cause,
	}
}
