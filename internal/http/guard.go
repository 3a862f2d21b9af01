package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	"github.com/acadify/acadify-web/internal/observability/metrics"
	"github.com/acadify/acadify-web/internal/observability/statsd"
)

// DecisionKind enumerates the outcomes of a route guard evaluation.
type DecisionKind int

const (
	// DecisionRender lets the protected page render.
	DecisionRender DecisionKind = iota
	// DecisionLoading shows the neutral loading page without redirecting.
	DecisionLoading
	// DecisionLogin redirects to the login page.
	DecisionLogin
	// DecisionRoleHome redirects to the user's own dashboard.
	DecisionRoleHome
	// DecisionUnroutable means the user is signed in with a role that has no dashboard.
	DecisionUnroutable
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRender:
		return "render"
	case DecisionLoading:
		return "loading"
	case DecisionLogin:
		return "login"
	case DecisionRoleHome:
		return "role_home"
	case DecisionUnroutable:
		return "unroutable"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a route guard.
type Decision struct {
	Kind DecisionKind
	// Location is the redirect target for DecisionLogin and DecisionRoleHome.
	Location string
	// Role is the signed-in user's role, empty when signed out.
	Role domainauth.Role
}

// LoginLocation returns the login URL that brings the user back to target after signing in.
func LoginLocation(target string) string {
	target = safeRedirectPath(target)
	if target == "/" {
		return domainauth.PathLogin
	}
	return domainauth.PathLogin + "?redirect_uri=" + url.QueryEscape(target)
}

// Evaluate decides what a request for target should see given the auth state.
// The first matching rule wins: loading, signed out, role not allowed, render.
// An empty allowed list admits any signed-in user.
func Evaluate(state domainauth.AuthState, allowed []domainauth.Role, target string) Decision {
	if state.Loading {
		return Decision{Kind: DecisionLoading, Role: state.Role()}
	}
	if !state.IsAuthenticated() {
		return Decision{Kind: DecisionLogin, Location: LoginLocation(target)}
	}
	role := state.User.Role
	if len(allowed) == 0 || slices.Contains(allowed, role) {
		return Decision{Kind: DecisionRender, Role: role}
	}
	return homeDecision(role)
}

// RoleBasedRedirect decides where the role-agnostic dashboard entry point sends the user.
func RoleBasedRedirect(state domainauth.AuthState) Decision {
	if state.Loading {
		return Decision{Kind: DecisionLoading, Role: state.Role()}
	}
	if !state.IsAuthenticated() {
		return Decision{Kind: DecisionLogin, Location: domainauth.PathLogin}
	}
	return homeDecision(state.User.Role)
}

func homeDecision(role domainauth.Role) Decision {
	if path, ok := domainauth.RoleHome(role).Found(); ok {
		return Decision{Kind: DecisionRoleHome, Location: path, Role: role}
	}
	return Decision{Kind: DecisionUnroutable, Role: role}
}

// AuthStateSource provides the current authentication snapshot.
type AuthStateSource interface {
	State() domainauth.AuthState
}

// Guard applies route guard decisions to HTTP requests.
type Guard struct {
	Store AuthStateSource
	// Policy handles signed-in users whose role has no dashboard.
	Policy  domainauth.UnknownRolePolicy
	UI      *UIHandlers
	Metrics statsd.Sink
	Logger  *slog.Logger
}

func (g *Guard) logger() *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Guard) state(r *http.Request) domainauth.AuthState {
	if st, ok := AuthStateFromContext(r.Context()); ok {
		return st
	}
	return g.Store.State()
}

// Require protects next so only users with one of the allowed roles reach it.
// area names the protected section in logs and metrics.
func (g *Guard) Require(area string, allowed ...domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := g.state(r)
			d := Evaluate(st, allowed, redirectPathForRequest(r))
			g.record(area, d)
			if d.Kind == DecisionRender {
				next.ServeHTTP(w, r.WithContext(SetAuthStateInContext(r.Context(), st)))
				return
			}
			g.respond(w, r, d)
		})
	}
}

// DashboardIndex sends /dashboard to the signed-in user's role home.
func (g *Guard) DashboardIndex(w http.ResponseWriter, r *http.Request) {
	d := RoleBasedRedirect(g.state(r))
	g.record("index", d)
	g.respond(w, r, d)
}

func (g *Guard) record(area string, d Decision) {
	metrics.EmitGuardDecision(g.Metrics, metrics.GuardMetric{Area: area, Decision: d.Kind.String()})
}

func (g *Guard) respond(w http.ResponseWriter, r *http.Request, d Decision) {
	switch d.Kind {
	case DecisionLoading:
		g.UI.Loading(w, r)
	case DecisionLogin, DecisionRoleHome:
		navigate(w, r, d.Location)
	case DecisionUnroutable:
		g.unknownRole(w, r, d.Role)
	case DecisionRender:
		// handled by the caller
	}
}

func (g *Guard) unknownRole(w http.ResponseWriter, r *http.Request, role domainauth.Role) {
	g.logger().WarnContext(r.Context(), "signed-in user has no dashboard",
		"role", string(role), "path", r.URL.Path, "policy", string(g.Policy))
	if g.Policy == domainauth.UnknownRoleSupport {
		g.UI.Support(w, r, role)
		return
	}
	navigate(w, r, domainauth.PathLogin)
}

// navigate redirects the browser, using Hx-Redirect for htmx requests so the
// whole page changes instead of a fragment swap.
func navigate(w http.ResponseWriter, r *http.Request, location string) {
	if IsHTMX(r) {
		SetHXRedirect(w, location)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
