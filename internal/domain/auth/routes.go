package auth

const (
	// PathLogin is where unauthenticated visitors are sent.
	PathLogin = "/login"
	// PathDashboard is the role-agnostic dashboard entry point.
	PathDashboard = "/dashboard"
)

var roleHomes = map[Role]string{
	RoleStudent: "/dashboard/student",
	RoleTeacher: "/dashboard/teacher",
	RoleAdmin:   "/dashboard/admin",
}

// HomeRoute is the result of resolving a role to its dashboard.
// It is either found (a path) or unknown (the role has no home); the zero value is unknown.
type HomeRoute struct {
	role Role
	path string
}

// RoleHome resolves role to its dashboard root. It never fails; an unmapped role
// yields an Unknown result and the caller picks the fallback.
func RoleHome(role Role) HomeRoute {
	return HomeRoute{role: role, path: roleHomes[role]}
}

// Found returns the home path and true when the role is mapped.
func (h HomeRoute) Found() (string, bool) {
	return h.path, h.path != ""
}

// Unknown reports whether the role has no home.
func (h HomeRoute) Unknown() bool { return h.path == "" }

// Role is the role that was resolved.
func (h HomeRoute) Role() Role { return h.role }

// OrElse returns the home path, or fallback when the role is unknown.
func (h HomeRoute) OrElse(fallback string) string {
	if h.path == "" {
		return fallback
	}
	return h.path
}
