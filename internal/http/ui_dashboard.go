package httpx

import (
	"errors"
	"net/http"
	"net/url"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/http/ui/viewmodel"
	"github.com/acadify/acadify-web/internal/service"
)

// noticeParam carries the flash message across the post-submit redirect.
const noticeParam = "notice"

func dashboardPath(role domainauth.Role, slug string) string {
	return domainauth.RoleHome(role).OrElse(domainauth.PathDashboard) + "/" + slug
}

// DashboardHome sends a role's dashboard root to its default page.
// GET /dashboard/{role}.
func (h *UIHandlers) DashboardHome(role domainauth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		navigate(w, r, dashboardPath(role, service.DefaultPage))
	}
}

// DashboardPage renders one of the role's dashboard pages. Unknown pages go to the default page.
// GET /dashboard/{role}/{page}.
func (h *UIHandlers) DashboardPage(role domainauth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("page")
		view, err := h.Dashboard.Load(r.Context(), role, slug, r.URL.Query())
		if err != nil {
			h.dashboardLoadFailed(w, r, role, err)
			return
		}
		b := h.dashboardData(r, view).
			WithError(view.Error).
			With("Notice", r.URL.Query().Get(noticeParam))
		h.renderPage(w, r, http.StatusOK, b.Build())
	}
}

// DashboardAction applies a page form action and shows the page again.
// POST /dashboard/{role}/{page}/{action}.
func (h *UIHandlers) DashboardAction(role domainauth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("page")
		action := r.PathValue("action")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		msg, err := h.Dashboard.Submit(r.Context(), role, slug, action, r.PostForm)
		if errors.Is(err, service.ErrUnknownPage) {
			h.NotFound(w, r)
			return
		}
		if err != nil {
			h.dashboardActionFailed(w, r, role, err)
			return
		}

		h.logger().InfoContext(r.Context(), "dashboard action applied",
			"role", string(role), "page", slug, "action", action)
		target := dashboardPath(role, slug)
		if !IsHTMX(r) {
			http.Redirect(w, r, target+"?"+url.Values{noticeParam: {msg}}.Encode(), http.StatusSeeOther)
			return
		}
		view, loadErr := h.Dashboard.Load(r.Context(), role, slug, nil)
		if loadErr != nil {
			h.dashboardLoadFailed(w, r, role, loadErr)
			return
		}
		triggerToast(w, msg, "success")
		w.Header().Set("Hx-Push-Url", target)
		h.renderPage(w, r, http.StatusOK, h.dashboardData(r, view).WithError(view.Error).Build())
	}
}

func (h *UIHandlers) dashboardActionFailed(w http.ResponseWriter, r *http.Request, role domainauth.Role, err error) {
	slug := r.PathValue("page")
	if apperrors.IsUnauthenticated(err) {
		// the session expiry listener has already scheduled the login redirect
		h.logger().DebugContext(r.Context(), "dashboard action unauthenticated", "role", string(role), "page", slug)
	} else if !apperrors.IsValidation(err) {
		h.logger().WarnContext(r.Context(), "dashboard action failed",
			"role", string(role), "page", slug, "action", r.PathValue("action"), "error", err)
	}

	view, loadErr := h.Dashboard.Load(r.Context(), role, slug, nil)
	if loadErr != nil {
		h.dashboardLoadFailed(w, r, role, loadErr)
		return
	}
	b := h.dashboardData(r, view).With("Values", formValues(r.PostForm))
	applyFormError(b, err, apperrors.MsgRequestFailed)
	if IsHTMX(r) {
		triggerToast(w, apperrors.MessageOf(err, apperrors.MsgRequestFailed), "error")
	}
	h.renderPage(w, r, formErrorStatus(r), b.Build())
}

func (h *UIHandlers) dashboardLoadFailed(w http.ResponseWriter, r *http.Request, role domainauth.Role, err error) {
	if errors.Is(err, service.ErrUnknownPage) {
		navigate(w, r, dashboardPath(role, service.DefaultPage))
		return
	}
	h.logger().ErrorContext(r.Context(), "dashboard page failed", "role", string(role), "error", err)
	h.renderErrorPage(w, r, http.StatusInternalServerError, service.MsgLoadFailed)
}

func (h *UIHandlers) dashboardData(r *http.Request, view service.PageView) *TemplateDataBuilder {
	heading := view.Page.Title
	nav := make([]viewmodel.NavItem, 0, len(view.Nav))
	for _, item := range view.Nav {
		nav = append(nav, viewmodel.NavItem{Title: item.Title, Href: item.Href, Active: item.Active})
	}
	return NewTemplateData(r, PageMeta{
		Title:       pageTitle(heading + " | " + view.Role.Label()),
		PageTitle:   heading,
		CurrentPage: PageDashboard,
	}).
		With("View", view).
		With("Nav", nav).
		With("Action", dashboardPath(view.Role, view.Page.Slug)).
		With("Values", map[string]string{})
}

// formValues flattens a submitted form for re-display. Password fields are dropped.
func formValues(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		if k == "password" || k == DefaultCSRFCookieName {
			continue
		}
		out[k] = form.Get(k)
	}
	return out
}
