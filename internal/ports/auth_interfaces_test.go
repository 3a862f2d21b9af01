package ports_test

import (
	"testing"

	"github.com/acadify/acadify-web/internal/mocks"
	"github.com/acadify/acadify-web/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.SessionClient = (*mocks.MockSessionClient)(nil)
	var _ ports.CookieStore = (*mocks.MockCookieStore)(nil)
	var _ ports.DashboardAPI = (*mocks.MockDashboardAPI)(nil)
}
