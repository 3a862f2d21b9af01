package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"net/url"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	"github.com/acadify/acadify-web/internal/http/ui/viewmodel"
	"github.com/acadify/acadify-web/internal/service"
)

const errMsgFixBelow = "Please fix the errors below."

// loadingRefreshSeconds is how long the loading page waits before retrying.
const loadingRefreshSeconds = 1

// DashboardService is the UI's view of the dashboard page service.
type DashboardService interface {
	Load(ctx context.Context, role domainauth.Role, slug string, query url.Values) (service.PageView, error)
	Submit(ctx context.Context, role domainauth.Role, slug, action string, form url.Values) (string, error)
	Nav(role domainauth.Role, active string) []service.NavItem
}

var _ DashboardService = (*service.DashboardService)(nil)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Dashboard DashboardService
	IsDev     bool // Development mode flag for enhanced error reporting
	Logger    *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request's auth snapshot.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}

	if user, ok := UserFromContext(r.Context()); ok {
		home, _ := domainauth.RoleHome(user.Role).Found()
		layout.User = &viewmodel.User{
			Name:      user.Name,
			Email:     user.Email,
			Role:      string(user.Role),
			RoleLabel: user.Role.Label(),
			Home:      home,
		}
		layout.IsAuthenticated = true
	}

	return layout
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"CSRFToken":       layout.CSRFToken,
		"Errors":          map[string]string{},
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	return data
}

// renderPage renders data as a full page, or for htmx swaps only the content
// block (which carries the out-of-band title updates).
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	partial := WantsPartial(r)
	if partial {
		// Hint client JS to update nav active state based on current path
		SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})
	}
	if err := h.T.Render(w, partial, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

// Landing serves the public home page.
func (h *UIHandlers) Landing(w http.ResponseWriter, r *http.Request) {
	data := basePageData(r, PageMeta{Title: pageTitle(""), PageTitle: AppName, CurrentPage: PageLanding})
	h.renderPage(w, r, http.StatusOK, data)
}

// Loading is shown while the auth state is still being resolved. The page
// refreshes itself instead of redirecting so the guard runs again once ready.
func (h *UIHandlers) Loading(w http.ResponseWriter, r *http.Request) {
	data := basePageData(r, PageMeta{Title: pageTitle("Loading"), PageTitle: "Loading", CurrentPage: PageLoading})
	data["RefreshSeconds"] = loadingRefreshSeconds
	data["RefreshURL"] = r.URL.RequestURI()
	w.Header().Set("Cache-Control", "no-store")
	h.renderPage(w, r, http.StatusOK, data)
}

// Support tells a signed-in user whose role has no dashboard to contact support.
func (h *UIHandlers) Support(w http.ResponseWriter, r *http.Request, role domainauth.Role) {
	data := basePageData(r, PageMeta{
		Title:       pageTitle("Contact support"),
		PageTitle:   "Contact support",
		CurrentPage: PageSupport,
	})
	data["Role"] = string(role)
	h.renderPage(w, r, http.StatusForbidden, data)
}

// NotFound sends unmatched paths to the landing page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	navigate(w, r, "/")
}

// renderErrorPage renders the generic error page with a user-facing message.
func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := NewTemplateData(r, PageMeta{
		Title:       pageTitle("Error"),
		PageTitle:   "Something went wrong",
		CurrentPage: PageError,
	}).WithError(message).Build()
	h.renderPage(w, r, status, data)
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().Error("template rendering failed",
		"error", err,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		body := `<div class="dev-error"><h2>Template Rendering Error</h2><p><strong>Path:</strong> ` +
			html.EscapeString(r.URL.Path) + `</p><pre>` + html.EscapeString(err.Error()) + `</pre></div>`
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
