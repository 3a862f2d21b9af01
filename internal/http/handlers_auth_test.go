package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/testutil"
)

func newAuthHandlers(t *testing.T, store *fakeAuthStore) *AuthHandlers {
	t.Helper()
	return &AuthHandlers{Store: store, UI: newTestUI(t, &fakeDashboard{})}
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(t *testing.T, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandlers_LoginPage(t *testing.T) {
	h := newAuthHandlers(t, &fakeAuthStore{})
	rr := httptest.NewRecorder()
	h.LoginPage(rr, httptest.NewRequest(http.MethodGet, "/login?redirect_uri=%2Fdashboard%2Fstudent%2Fmarks", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `action="/login"`)
	assert.Contains(t, body, `name="redirect_uri" value="/dashboard/student/marks"`)
}

func TestAuthHandlers_LoginPage_DropsUnsafeRedirect(t *testing.T) {
	h := newAuthHandlers(t, &fakeAuthStore{})
	rr := httptest.NewRecorder()
	h.LoginPage(rr, httptest.NewRequest(http.MethodGet, "/login?redirect_uri=https%3A%2F%2Fevil.example", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "evil.example")
}

func TestAuthHandlers_LoginPage_SignedInGoesHome(t *testing.T) {
	h := newAuthHandlers(t, &fakeAuthStore{state: signedIn(testutil.Admin())})
	rr := httptest.NewRecorder()
	h.LoginPage(rr, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard/admin", rr.Header().Get("Location"))
}

func TestAuthHandlers_LoginPage_UnknownRoleSeesForm(t *testing.T) {
	h := newAuthHandlers(t, &fakeAuthStore{state: signedIn(testutil.NewUser().WithRole("JANITOR").Build())})
	rr := httptest.NewRecorder()
	h.LoginPage(rr, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/login"`)
}

func TestAuthHandlers_Login(t *testing.T) {
	tests := []struct {
		name     string
		user     domainauth.UserIdentity
		redirect string
		want     string
	}{
		{name: "student goes home", user: testutil.Student(), want: "/dashboard/student"},
		{name: "teacher goes home", user: testutil.Teacher(), want: "/dashboard/teacher"},
		{name: "admin goes home", user: testutil.Admin(), want: "/dashboard/admin"},
		{name: "safe redirect wins", user: testutil.Student(), redirect: "/dashboard/student/marks", want: "/dashboard/student/marks"},
		{name: "unsafe redirect ignored", user: testutil.Admin(), redirect: "//evil.example", want: "/dashboard/admin"},
		{name: "login page redirect ignored", user: testutil.Teacher(), redirect: "/login", want: "/dashboard/teacher"},
		{name: "unknown role falls back to dashboard", user: testutil.NewUser().WithRole("JANITOR").Build(), want: "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeAuthStore{loginUser: tt.user}
			h := newAuthHandlers(t, store)
			form := url.Values{"email": {"someone@acadify.dev"}, "password": {"pw"}}
			if tt.redirect != "" {
				form.Set("redirect_uri", tt.redirect)
			}
			rr := httptest.NewRecorder()
			h.Login(rr, formRequest("/login", form))

			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, tt.want, rr.Header().Get("Location"))
			assert.Equal(t, []string{"someone@acadify.dev"}, store.logins)
		})
	}
}

func TestAuthHandlers_Login_ValidationNeverCallsStore(t *testing.T) {
	store := &fakeAuthStore{}
	h := newAuthHandlers(t, store)
	rr := httptest.NewRecorder()
	h.Login(rr, formRequest("/login", url.Values{"email": {"not-an-email"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Empty(t, store.logins)
	body := rr.Body.String()
	assert.Contains(t, body, errMsgFixBelow)
	assert.Contains(t, body, `class="field-error"`)
	assert.Contains(t, body, `value="not-an-email"`)
}

func TestAuthHandlers_Login_StoreErrorShownAsBanner(t *testing.T) {
	store := &fakeAuthStore{loginErr: apperrors.FromStatus(http.StatusUnauthorized, "Invalid credentials", apperrors.MsgLoginFailed)}
	h := newAuthHandlers(t, store)
	req := formRequest("/login", url.Values{"email": {"a@b.co"}, "password": {"bad"}})
	req.Header.Set("Hx-Request", "true")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "htmx swaps need a 200")
	assert.Contains(t, rr.Body.String(), "Invalid credentials")
	assert.NotContains(t, rr.Body.String(), "<html")
}

func TestAuthHandlers_Login_JSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newAuthHandlers(t, &fakeAuthStore{loginUser: testutil.Teacher()})
		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, "/login", map[string]string{"email": "t@acadify.dev", "password": "pw"}))

		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			User       domainauth.UserIdentity `json:"user"`
			RedirectTo string                  `json:"redirect_to"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, domainauth.RoleTeacher, body.User.Role)
		assert.Equal(t, "/dashboard/teacher", body.RedirectTo)
	})

	t.Run("validation", func(t *testing.T) {
		h := newAuthHandlers(t, &fakeAuthStore{})
		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, "/login", map[string]string{"email": "", "password": ""}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "validation", body["kind"])
		assert.Contains(t, body, "fields")
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		h := newAuthHandlers(t, &fakeAuthStore{})
		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, "/login", map[string]string{"user": "x"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandlers_SignupPage_DefaultsToStudent(t *testing.T) {
	h := newAuthHandlers(t, &fakeAuthStore{})
	rr := httptest.NewRecorder()
	h.SignupPage(rr, httptest.NewRequest(http.MethodGet, "/signup", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<option value="STUDENT" selected>`)
	assert.Contains(t, body, `<option value="TEACHER">`)
	assert.Contains(t, body, `<option value="ADMIN">`)
}

func TestAuthHandlers_Signup(t *testing.T) {
	valid := url.Values{
		"name":            {"Nia New"},
		"email":           {"nia@acadify.dev"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	}

	t.Run("missing role defaults to student", func(t *testing.T) {
		store := &fakeAuthStore{}
		h := newAuthHandlers(t, store)
		rr := httptest.NewRecorder()
		h.Signup(rr, formRequest("/signup", valid))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/dashboard/student", rr.Header().Get("Location"))
		require.Len(t, store.signups, 1)
		assert.Equal(t, domainauth.RoleStudent, store.signups[0].Role)
	})

	t.Run("chosen role is kept", func(t *testing.T) {
		store := &fakeAuthStore{}
		h := newAuthHandlers(t, store)
		form := url.Values{}
		for k, v := range valid {
			form[k] = v
		}
		form.Set("role", "TEACHER")
		rr := httptest.NewRecorder()
		h.Signup(rr, formRequest("/signup", form))

		assert.Equal(t, "/dashboard/teacher", rr.Header().Get("Location"))
	})

	t.Run("lower-case role is normalized", func(t *testing.T) {
		store := &fakeAuthStore{}
		h := newAuthHandlers(t, store)
		form := url.Values{}
		for k, v := range valid {
			form[k] = v
		}
		form.Set("role", "student")
		rr := httptest.NewRecorder()
		h.Signup(rr, formRequest("/signup", form))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/dashboard/student", rr.Header().Get("Location"))
		require.Len(t, store.signups, 1)
		assert.Equal(t, domainauth.RoleStudent, store.signups[0].Role)
	})

	t.Run("mismatched passwords", func(t *testing.T) {
		store := &fakeAuthStore{}
		h := newAuthHandlers(t, store)
		form := url.Values{}
		for k, v := range valid {
			form[k] = v
		}
		form.Set("confirmPassword", "different")
		rr := httptest.NewRecorder()
		h.Signup(rr, formRequest("/signup", form))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Empty(t, store.signups)
		assert.Contains(t, rr.Body.String(), `value="Nia New"`)
		assert.NotContains(t, rr.Body.String(), "secret1")
	})

	t.Run("api refusal", func(t *testing.T) {
		store := &fakeAuthStore{loginErr: apperrors.New(apperrors.KindSignupFailure, "Email already registered")}
		h := newAuthHandlers(t, store)
		rr := httptest.NewRecorder()
		h.Signup(rr, formRequest("/signup", valid))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "Email already registered")
	})
}

func TestAuthHandlers_Logout(t *testing.T) {
	t.Run("browser", func(t *testing.T) {
		store := &fakeAuthStore{state: signedIn(testutil.Student())}
		h := newAuthHandlers(t, store)
		rr := httptest.NewRecorder()
		h.Logout(rr, httptest.NewRequest(http.MethodPost, "/logout", nil))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
		assert.Equal(t, 1, store.logouts)
		assert.False(t, store.State().IsAuthenticated())
	})

	t.Run("json", func(t *testing.T) {
		store := &fakeAuthStore{state: signedIn(testutil.Student())}
		h := newAuthHandlers(t, store)
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Accept", "application/json")
		rr := httptest.NewRecorder()
		h.Logout(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"success","redirect_to":"/login"}`, rr.Body.String())
	})
}

func TestAuthHandlers_Status(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		h := newAuthHandlers(t, &fakeAuthStore{state: signedIn(testutil.Admin())})
		rr := httptest.NewRecorder()
		h.Status(rr, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{
			"authenticated": true,
			"loading": false,
			"home": "/dashboard/admin",
			"user": {"id": "3", "name": "Test Admin", "email": "admin@example.com", "role": "ADMIN"}
		}`, rr.Body.String())
	})

	t.Run("signed out with error", func(t *testing.T) {
		h := newAuthHandlers(t, &fakeAuthStore{state: domainauth.AuthState{Error: "Login failed"}})
		rr := httptest.NewRecorder()
		h.Status(rr, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

		assert.JSONEq(t, `{"authenticated": false, "loading": false, "user": null, "error": "Login failed"}`, rr.Body.String())
	})
}
