// Package mocks provides mock implementations of the ports used by the web client.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockSessionClient(ctrl)
//	client.EXPECT().CheckSession(gomock.Any()).Return(user, nil)
package mocks

// Generate mock for SessionClient interface from internal/ports package.
// This creates MockSessionClient with methods: CheckSession, Login, Signup, Logout
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_client_mock.go github.com/acadify/acadify-web/internal/ports SessionClient

// Generate mock for CookieStore interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cookie_store_mock.go github.com/acadify/acadify-web/internal/ports CookieStore

// Generate mock for DashboardAPI interface from internal/ports package.
// This creates MockDashboardAPI with methods: Fetch, SubmitGrades, CreateUser, UpdateUser, DeleteUser, UpdateProfile
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=dashboard_api_mock.go github.com/acadify/acadify-web/internal/ports DashboardAPI
