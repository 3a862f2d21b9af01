package httpx

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/service"
	"github.com/acadify/acadify-web/internal/validation"
)

// AuthStoreInterface defines the auth store operations the auth pages drive.
type AuthStoreInterface interface {
	State() domainauth.AuthState
	Login(ctx context.Context, email, password string) (domainauth.UserIdentity, error)
	Signup(ctx context.Context, profile domainauth.SignupProfile) (domainauth.UserIdentity, error)
	Logout(ctx context.Context)
}

var _ AuthStoreInterface = (*service.AuthStore)(nil)

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Store  AuthStoreInterface
	UI     *UIHandlers
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirect_uri,omitempty"`
}

type signupRequest struct {
	domainauth.SignupProfile
	RedirectTo string `json:"redirect_uri,omitempty"`
}

// LoginPage renders the login form.
// GET /login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if home, ok := h.signedInHome(r); ok {
		navigate(w, r, home)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginRequest{RedirectTo: r.URL.Query().Get("redirect_uri")}, nil)
}

// Login signs in with the submitted credentials.
// POST /login (form or JSON body).
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	jsonBody := isJSONRequest(r)
	var in loginRequest
	if jsonBody {
		if !DecodeJSON(w, r, &in) {
			return
		}
	} else {
		in = loginRequest{
			Email:      strings.TrimSpace(r.PostFormValue("email")),
			Password:   r.PostFormValue("password"),
			RedirectTo: r.PostFormValue("redirect_uri"),
		}
	}

	if fields := validation.ValidateLogin(in.Email, in.Password); len(fields) > 0 {
		h.loginFailed(w, r, jsonBody, in, apperrors.Validation(fields, validation.LoginFields...))
		return
	}

	user, err := h.Store.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.loginFailed(w, r, jsonBody, in, err)
		return
	}
	h.signedIn(w, r, jsonBody, user, in.RedirectTo)
}

func (h *AuthHandlers) loginFailed(w http.ResponseWriter, r *http.Request, jsonBody bool, in loginRequest, err error) {
	if jsonBody {
		WriteAuthError(w, err)
		return
	}
	in.Password = ""
	h.renderLogin(w, r, formErrorStatus(r), in, err)
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, in loginRequest, err error) {
	b := NewTemplateData(r, PageMeta{Title: pageTitle("Sign in"), PageTitle: "Sign in", CurrentPage: PageLogin}).
		With("Email", in.Email).
		With("RedirectURI", safeRedirectPath(in.RedirectTo))
	applyFormError(b, err, apperrors.MsgLoginFailed)
	h.UI.renderPage(w, r, status, b.Build())
}

// SignupPage renders the registration form.
// GET /signup.
func (h *AuthHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	if home, ok := h.signedInHome(r); ok {
		navigate(w, r, home)
		return
	}
	h.renderSignup(w, r, http.StatusOK, signupRequest{
		SignupProfile: domainauth.SignupProfile{Role: domainauth.RoleStudent},
		RedirectTo:    r.URL.Query().Get("redirect_uri"),
	}, nil)
}

// Signup registers a new account and signs it in.
// POST /signup (form or JSON body).
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	jsonBody := isJSONRequest(r)
	var in signupRequest
	if jsonBody {
		if !DecodeJSON(w, r, &in) {
			return
		}
	} else {
		in = signupRequest{
			SignupProfile: domainauth.SignupProfile{
				Name:            strings.TrimSpace(r.PostFormValue("name")),
				Email:           strings.TrimSpace(r.PostFormValue("email")),
				Password:        r.PostFormValue("password"),
				ConfirmPassword: r.PostFormValue("confirmPassword"),
				Role:            domainauth.Role(r.PostFormValue("role")),
			},
			RedirectTo: r.PostFormValue("redirect_uri"),
		}
	}
	if strings.TrimSpace(string(in.Role)) == "" {
		in.Role = domainauth.RoleStudent
	}
	if role, ok := domainauth.ParseRole(string(in.Role)); ok {
		in.Role = role
	}

	if fields := validation.ValidateSignup(in.SignupProfile); len(fields) > 0 {
		h.signupFailed(w, r, jsonBody, in, apperrors.Validation(fields, validation.SignupFields...))
		return
	}

	user, err := h.Store.Signup(r.Context(), in.SignupProfile)
	if err != nil {
		h.signupFailed(w, r, jsonBody, in, err)
		return
	}
	h.signedIn(w, r, jsonBody, user, in.RedirectTo)
}

func (h *AuthHandlers) signupFailed(w http.ResponseWriter, r *http.Request, jsonBody bool, in signupRequest, err error) {
	if jsonBody {
		WriteAuthError(w, err)
		return
	}
	in.Password, in.ConfirmPassword = "", ""
	h.renderSignup(w, r, formErrorStatus(r), in, err)
}

func (h *AuthHandlers) renderSignup(w http.ResponseWriter, r *http.Request, status int, in signupRequest, err error) {
	b := NewTemplateData(r, PageMeta{Title: pageTitle("Create account"), PageTitle: "Create account", CurrentPage: PageSignup}).
		With("Form", in.SignupProfile).
		With("RedirectURI", safeRedirectPath(in.RedirectTo))
	applyFormError(b, err, apperrors.MsgSignupFailed)
	h.UI.renderPage(w, r, status, b.Build())
}

// Logout ends the session and returns to the login page.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Store.Logout(r.Context())

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": domainauth.PathLogin,
		})
		return
	}
	navigate(w, r, domainauth.PathLogin)
}

// Status returns the current authentication state.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, _ *http.Request) {
	st := h.Store.State()
	resp := map[string]any{
		"authenticated": st.IsAuthenticated(),
		"loading":       st.Loading,
		"user":          st.User,
	}
	if st.Error != "" {
		resp["error"] = st.Error
	}
	if home, ok := domainauth.RoleHome(st.Role()).Found(); ok {
		resp["home"] = home
	}
	WriteJSON(w, http.StatusOK, resp)
}

// signedIn finishes a successful login or signup.
func (h *AuthHandlers) signedIn(
	w http.ResponseWriter,
	r *http.Request,
	jsonBody bool,
	user domainauth.UserIdentity,
	redirectTo string,
) {
	target := postLoginRedirect(user.Role, redirectTo)
	h.logger().DebugContext(r.Context(), "post-login redirect", "role", string(user.Role), "target", target)
	if jsonBody {
		WriteJSON(w, http.StatusOK, map[string]any{"user": user, "redirect_to": target})
		return
	}
	navigate(w, r, target)
}

// signedInHome returns the dashboard of an already signed-in visitor. Users
// whose role has no home stay on the form so they can switch accounts.
func (h *AuthHandlers) signedInHome(r *http.Request) (string, bool) {
	st, ok := AuthStateFromContext(r.Context())
	if !ok {
		st = h.Store.State()
	}
	if !st.IsAuthenticated() {
		return "", false
	}
	return domainauth.RoleHome(st.Role()).Found()
}

// postLoginRedirect prefers a safe redirect_uri, then the role's home, then /dashboard.
func postLoginRedirect(role domainauth.Role, redirectTo string) string {
	if target := safeRedirectPath(redirectTo); target != "/" && !isAuthPage(target) {
		return target
	}
	return domainauth.RoleHome(role).OrElse(domainauth.PathDashboard)
}

func isAuthPage(path string) bool {
	p, _, _ := strings.Cut(path, "?")
	return p == domainauth.PathLogin || p == "/signup"
}

// applyFormError maps err onto the banner and per-field messages.
func applyFormError(b *TemplateDataBuilder, err error, fallback string) {
	if err == nil {
		return
	}
	ae := apperrors.Normalize(err)
	if ae.Kind == apperrors.KindValidation && len(ae.Fields) > 0 {
		b.WithFieldErrors(ae.Fields).WithError(errMsgFixBelow)
		return
	}
	b.WithError(apperrors.MessageOf(ae, fallback))
}

// formErrorStatus keeps htmx swaps on 200 since htmx ignores 4xx bodies by default.
func formErrorStatus(r *http.Request) int {
	if IsHTMX(r) {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func isJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return isJSONRequest(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}
