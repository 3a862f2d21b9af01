package viewmodel

// User represents the signed-in user exposed to templates.
type User struct {
	Name      string
	Email     string
	Role      string
	RoleLabel string
	// Home is the user's dashboard root, empty when the role has none.
	Home string
}

// NavItem is one sidebar link.
type NavItem struct {
	Title  string
	Href   string
	Active bool
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	User            *User
	Nav             []NavItem
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}
