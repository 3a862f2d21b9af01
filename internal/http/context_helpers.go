package httpx

import (
	"context"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// authStateKey is an unexported context key type to avoid collisions across packages.
type authStateKey struct{}

// SetAuthStateInContext returns a child context that carries the auth snapshot.
func SetAuthStateInContext(ctx context.Context, st domainauth.AuthState) context.Context {
	return context.WithValue(ctx, authStateKey{}, st)
}

// AuthStateFromContext returns the snapshot taken for this request and whether one was set.
func AuthStateFromContext(ctx context.Context) (domainauth.AuthState, bool) {
	st, ok := ctx.Value(authStateKey{}).(domainauth.AuthState)
	return st, ok
}

// UserFromContext returns the signed-in user for this request, if any.
func UserFromContext(ctx context.Context) (domainauth.UserIdentity, bool) {
	st, ok := AuthStateFromContext(ctx)
	if !ok || st.User == nil {
		return domainauth.UserIdentity{}, false
	}
	return *st.User, true
}
