package httpx

import (
	"context"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	"github.com/acadify/acadify-web/internal/service"
)

func testTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: os.DirFS(TemplatePathFromTest)})
	require.NoError(t, err)
	return tr
}

func newTestUI(t *testing.T, dash DashboardService) *UIHandlers {
	t.Helper()
	return &UIHandlers{T: testTemplateRenderer(t), Dashboard: dash}
}

type submitCall struct {
	Role   domainauth.Role
	Slug   string
	Action string
	Form   url.Values
}

// fakeDashboard serves canned page views for the role page tables.
type fakeDashboard struct {
	mu sync.Mutex

	cards     []service.CardView
	pageError string
	loadErr   error
	submitMsg string
	submitErr error

	loads   []string
	submits []submitCall
}

var _ DashboardService = (*fakeDashboard)(nil)

func (f *fakeDashboard) Load(_ context.Context, role domainauth.Role, slug string, query url.Values) (service.PageView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, string(role)+"/"+slug)
	if f.loadErr != nil {
		return service.PageView{}, f.loadErr
	}
	page, ok := service.FindPage(role, slug)
	if !ok {
		return service.PageView{}, service.ErrUnknownPage
	}
	params := map[string]string{}
	for _, name := range page.Filters {
		if v := query.Get(name); v != "" {
			params[name] = v
		}
	}
	return service.PageView{
		Role:   role,
		Page:   page,
		Nav:    f.Nav(role, slug),
		Cards:  f.cards,
		Params: params,
		Error:  f.pageError,
	}, nil
}

func (f *fakeDashboard) Submit(_ context.Context, role domainauth.Role, slug, action string, form url.Values) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, submitCall{Role: role, Slug: slug, Action: action, Form: form})
	if _, ok := service.FindPage(role, slug); !ok {
		return "", service.ErrUnknownPage
	}
	return f.submitMsg, f.submitErr
}

func (f *fakeDashboard) Nav(role domainauth.Role, active string) []service.NavItem {
	var out []service.NavItem
	for _, p := range service.Pages(role) {
		out = append(out, service.NavItem{
			Slug:   p.Slug,
			Title:  p.Title,
			Href:   dashboardPath(role, p.Slug),
			Active: p.Slug == active,
		})
	}
	return out
}

// fakeAuthStore is an in-memory AuthStoreInterface.
type fakeAuthStore struct {
	mu sync.Mutex

	state     domainauth.AuthState
	loginUser domainauth.UserIdentity
	loginErr  error
	logouts   int
	logins    []string
	signups   []domainauth.SignupProfile
}

var _ AuthStoreInterface = (*fakeAuthStore)(nil)

func (s *fakeAuthStore) State() domainauth.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeAuthStore) Login(_ context.Context, email, _ string) (domainauth.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins = append(s.logins, email)
	if s.loginErr != nil {
		return domainauth.UserIdentity{}, s.loginErr
	}
	u := s.loginUser
	s.state = domainauth.AuthState{User: &u}
	return u, nil
}

func (s *fakeAuthStore) Signup(_ context.Context, profile domainauth.SignupProfile) (domainauth.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signups = append(s.signups, profile)
	if s.loginErr != nil {
		return domainauth.UserIdentity{}, s.loginErr
	}
	u := domainauth.UserIdentity{ID: "99", Name: profile.Name, Email: profile.Email, Role: profile.Role}
	s.state = domainauth.AuthState{User: &u}
	return u, nil
}

func (s *fakeAuthStore) Logout(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	s.state = domainauth.AuthState{}
}
