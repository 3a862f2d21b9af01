package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageLanding   = "landing"
	PageLogin     = "login"
	PageSignup    = "signup"
	PageLoading   = "loading"
	PageSupport   = "support"
	PageDashboard = "dashboard"
	PageError     = "error"
)

// AppName is used in document titles.
const AppName = "Acadify"

// Template directory paths.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// contentTemplates maps CurrentPage to the template rendered inside the layout.
//
//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLanding:   "landing-content",
	PageLogin:     "login-content",
	PageSignup:    "signup-content",
	PageLoading:   "loading-content",
	PageSupport:   "support-content",
	PageDashboard: "dashboard-content",
	PageError:     "error-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Unknown pages fall back to the error content.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "error-content"
}

// pageTitle builds the document title for a page heading.
func pageTitle(heading string) string {
	if heading == "" {
		return AppName
	}
	return heading + " - " + AppName
}
