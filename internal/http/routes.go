package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"

	acadify "github.com/acadify/acadify-web"
	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	"github.com/acadify/acadify-web/internal/observability/statsd"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Store     AuthStoreInterface
	Dashboard DashboardService
	// UnknownRolePolicy decides what signed-in users without a dashboard see.
	UnknownRolePolicy domainauth.UnknownRolePolicy
	CookieDomain      string
	Metrics           statsd.Sink
	// TemplateFS overrides where templates are parsed from (tests).
	TemplateFS fs.FS
	IsDev      bool         // Development mode flag for hot reloading, etc.
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router with browser middleware.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Store == nil {
		return nil, errors.New("auth store is required")
	}
	if services.Dashboard == nil {
		return nil, errors.New("dashboard service is required")
	}

	ui, err := setupUIHandlers(services)
	if err != nil {
		return nil, err
	}
	guard := &Guard{
		Store:   services.Store,
		Policy:  services.UnknownRolePolicy,
		UI:      ui,
		Metrics: services.Metrics,
		Logger:  services.Logger,
	}
	authHandlers := &AuthHandlers{Store: services.Store, UI: ui, Logger: services.Logger}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.HandlerFunc(ui.Landing))
	mux.Handle("GET /healthz", healthHandler(services.Store))
	mux.Handle("HEAD /healthz", healthHandler(services.Store))

	// Static assets at /static
	// Dev mode: serve from disk for hot reloading
	// Prod mode: serve from embedded FS
	mux.Handle("GET /static/", staticWithFallback(services.IsDev))

	registerAuthRoutes(mux, authHandlers)
	registerDashboardRoutes(mux, ui, guard)

	// Anything else goes back to the landing page.
	mux.Handle("/", http.HandlerFunc(ui.NotFound))

	var handler http.Handler = mux
	handler = AuthContext(services.Store)(handler)
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
	return BrowserDetection()(handler), nil
}

// setupUIHandlers creates UI handlers with the template renderer.
// In dev mode templates are loaded from disk for hot reloading, otherwise from the embedded FS.
func setupUIHandlers(services RouterServices) (*UIHandlers, error) {
	templateFS := services.TemplateFS
	if templateFS == nil {
		templateFS = defaultTemplateFS(services.IsDev, services.Logger)
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Logger:     services.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	return &UIHandlers{
		T:         tr,
		Dashboard: services.Dashboard,
		IsDev:     services.IsDev,
		Logger:    services.Logger,
	}, nil
}

func defaultTemplateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(acadify.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("failed to create sub-filesystem for templates; falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.Handle("GET /login", http.HandlerFunc(h.LoginPage))
	mux.Handle("POST /login", http.HandlerFunc(h.Login))
	mux.Handle("GET /signup", http.HandlerFunc(h.SignupPage))
	mux.Handle("POST /signup", http.HandlerFunc(h.Signup))
	mux.Handle("POST /logout", http.HandlerFunc(h.Logout))
	mux.Handle("GET /auth/status", http.HandlerFunc(h.Status))
}

// registerDashboardRoutes mounts /dashboard and every role area behind the guard.
// Protected handlers run inside a NavigationBoundary so an expired API session
// mid-request turns into a redirect to the login page.
func registerDashboardRoutes(mux *http.ServeMux, ui *UIHandlers, guard *Guard) {
	mux.Handle("GET "+domainauth.PathDashboard, http.HandlerFunc(guard.DashboardIndex))
	mux.Handle("GET "+domainauth.PathDashboard+"/{$}", http.HandlerFunc(guard.DashboardIndex))

	for _, role := range domainauth.Roles() {
		home, ok := domainauth.RoleHome(role).Found()
		if !ok {
			continue
		}
		area := strings.ToLower(string(role))
		protect := func(h http.Handler) http.Handler {
			return NavigationBoundary()(guard.Require(area, role)(h))
		}

		mux.Handle("GET "+home, protect(ui.DashboardHome(role)))
		mux.Handle(home+"/", protect(ui.DashboardHome(role)))
		mux.Handle("GET "+home+"/{page}", protect(ui.DashboardPage(role)))
		mux.Handle("POST "+home+"/{page}/{action}", protect(ui.DashboardAction(role)))
	}
}

// staticWithFallback serves /static/* assets.
// In dev mode (isDev=true), serves from disk for hot reloading.
// In production mode (isDev=false), serves from embedded FS.
func staticWithFallback(isDev bool) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}

	staticSub, err := fs.Sub(acadify.StaticFS, "frontend/static")
	if err != nil {
		slog.Default().Error("failed to create sub-filesystem for static assets", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
}

// hashedFilePattern matches content-hashed filenames (e.g. app.abc12345.css).
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}
