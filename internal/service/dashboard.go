package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/errgroup"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/ports"
	"github.com/acadify/acadify-web/internal/validation"
)

// ErrUnknownPage is returned for a page slug the role does not have.
var ErrUnknownPage = errors.New("unknown dashboard page")

// MsgLoadFailed is shown when a page's data could not be fetched and the API gave no reason.
const MsgLoadFailed = "Failed to load dashboard data"

// Placeholder shown for values that are missing from the API payload.
const emptyValue = "—"

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	API       ports.DashboardAPI
	Evaluator JMESPathEvaluator
	Logger    *slog.Logger
	// MaxConcurrency caps parallel source fetches per page (default 4).
	MaxConcurrency int
}

// DashboardService loads role dashboard pages and applies their form actions.
type DashboardService struct {
	api    ports.DashboardAPI
	jems   JMESPathEvaluator
	logger *slog.Logger
	limit  int
}

// NewDashboardService constructs a DashboardService. Every expression in the
// page tables is validated up front.
func NewDashboardService(opts DashboardServiceOptions) (*DashboardService, error) {
	if opts.API == nil {
		return nil, errors.New("dashboard api is required")
	}
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = 4
	}
	s := &DashboardService{api: opts.API, jems: jems, logger: opts.Logger, limit: limit}
	if err := s.validatePages(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DashboardService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *DashboardService) validatePages() error {
	var errs []error
	check := func(where, expr string) {
		if err := s.jems.Validate(expr); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
	}
	for _, role := range domainauth.Roles() {
		for _, p := range Pages(role) {
			prefix := string(role) + "/" + p.Slug
			for _, c := range p.Cards {
				check(prefix+" card "+c.Label, c.Expr)
			}
			for _, t := range p.Tables {
				check(prefix+" table "+t.Title, t.Expr)
				check(prefix+" table "+t.Title+" id", t.IDExpr)
				for _, col := range t.Columns {
					check(prefix+" column "+col.Label, col.Expr)
				}
			}
			for _, src := range p.Sources {
				for name, expr := range src.Defaults {
					check(prefix+" default "+name, expr)
				}
			}
		}
	}
	return errors.Join(errs...)
}

// NavItem is one entry in the role's sidebar.
type NavItem struct {
	Slug   string
	Title  string
	Href   string
	Active bool
}

// CardView is a rendered stat tile.
type CardView struct {
	Label string
	Value string
}

// RowView is one rendered table row.
type RowView struct {
	ID    string
	Cells []string
}

// TableView is a rendered table.
type TableView struct {
	Title   string
	Headers []string
	Rows    []RowView
	Empty   string
}

// PageView is everything a dashboard template needs.
type PageView struct {
	Role   domainauth.Role
	Page   PageSpec
	Nav    []NavItem
	Cards  []CardView
	Tables []TableView
	// Params holds the resolved page parameters (filters and placeholders).
	Params map[string]string
	// Data holds the raw payloads keyed by source.
	Data  map[string]any
	Error string
}

// Nav returns the sidebar for role with active highlighted.
func (s *DashboardService) Nav(role domainauth.Role, active string) []NavItem {
	home := domainauth.RoleHome(role).OrElse(domainauth.PathDashboard)
	pages := Pages(role)
	out := make([]NavItem, 0, len(pages))
	for _, p := range pages {
		out = append(out, NavItem{
			Slug:   p.Slug,
			Title:  p.Title,
			Href:   home + "/" + p.Slug,
			Active: p.Slug == active,
		})
	}
	return out
}

// Load fetches the page's sources concurrently and evaluates its cards and
// tables. Fetch failures are reported in PageView.Error, not as an error.
func (s *DashboardService) Load(ctx context.Context, role domainauth.Role, slug string, query url.Values) (PageView, error) {
	page, ok := FindPage(role, slug)
	if !ok {
		return PageView{}, ErrUnknownPage
	}
	view := PageView{
		Role:   role,
		Page:   page,
		Nav:    s.Nav(role, page.Slug),
		Params: map[string]string{},
		Data:   map[string]any{},
	}
	for _, f := range page.Filters {
		if v := strings.TrimSpace(query.Get(f)); v != "" {
			view.Params[f] = v
		}
	}

	ready, deferred := splitSources(page.Sources, view.Params)
	err := s.fetch(ctx, ready, view.Params, query, view.Data)
	if err == nil && len(deferred) > 0 {
		deferred = s.resolveDefaults(deferred, view.Params, view.Data)
		err = s.fetch(ctx, deferred, view.Params, query, view.Data)
	}
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			s.log().DebugContext(ctx, "dashboard fetch unauthenticated", "role", role, "page", slug)
		} else {
			s.log().WarnContext(ctx, "dashboard fetch failed", "role", role, "page", slug, "error", err)
		}
		view.Error = apperrors.MessageOf(err, MsgLoadFailed)
		return view, nil
	}

	for _, c := range page.Cards {
		view.Cards = append(view.Cards, CardView{Label: c.Label, Value: s.card(c, view.Data)})
	}
	for _, t := range page.Tables {
		view.Tables = append(view.Tables, s.table(t, view.Data))
	}
	return view, nil
}

var placeholderRE = regexp.MustCompile(`\{(\w+)\}`)

func placeholders(path string) []string {
	var out []string
	for _, m := range placeholderRE.FindAllStringSubmatch(path, -1) {
		out = append(out, m[1])
	}
	return out
}

// splitSources separates sources that can be fetched now from those waiting
// on a default computed from other sources. Sources with an unresolvable
// placeholder are dropped.
func splitSources(sources []Source, params map[string]string) (ready, deferred []Source) {
	for _, src := range sources {
		missing := false
		resolvable := true
		for _, name := range placeholders(src.Path) {
			if params[name] != "" {
				continue
			}
			missing = true
			if _, ok := src.Defaults[name]; !ok {
				resolvable = false
			}
		}
		switch {
		case !missing:
			ready = append(ready, src)
		case resolvable:
			deferred = append(deferred, src)
		}
	}
	return ready, deferred
}

func (s *DashboardService) resolveDefaults(sources []Source, params map[string]string, data map[string]any) []Source {
	out := sources[:0]
	for _, src := range sources {
		ok := true
		for _, name := range placeholders(src.Path) {
			if params[name] != "" {
				continue
			}
			v, err := s.jems.Evaluate(src.Defaults[name], data)
			if err != nil || v == nil {
				ok = false
				break
			}
			params[name] = formatValue(v)
		}
		if ok {
			out = append(out, src)
		}
	}
	return out
}

func expandPath(path string, params map[string]string) string {
	return placeholderRE.ReplaceAllStringFunc(path, func(m string) string {
		return url.PathEscape(params[m[1:len(m)-1]])
	})
}

func (s *DashboardService) fetch(
	ctx context.Context,
	sources []Source,
	params map[string]string,
	query url.Values,
	data map[string]any,
) error {
	if len(sources) == 0 {
		return nil
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for _, src := range sources {
		path := expandPath(src.Path, params)
		var q url.Values
		for _, name := range src.Forward {
			if v := strings.TrimSpace(query.Get(name)); v != "" {
				if q == nil {
					q = url.Values{}
				}
				q.Set(name, v)
			}
		}
		g.Go(func() error {
			v, err := s.api.Fetch(gctx, path, q)
			if err != nil {
				return err
			}
			mu.Lock()
			data[src.Key] = v
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (s *DashboardService) card(c Card, data map[string]any) string {
	v, err := s.jems.Evaluate(c.Expr, data)
	if err != nil {
		s.log().Debug("card expression failed", "card", c.Label, "error", err)
		return emptyValue
	}
	if v == nil {
		return emptyValue
	}
	return formatValue(v) + c.Suffix
}

func (s *DashboardService) table(t Table, data map[string]any) TableView {
	tv := TableView{Title: t.Title, Empty: t.Empty}
	for _, col := range t.Columns {
		tv.Headers = append(tv.Headers, col.Label)
	}
	v, err := s.jems.Evaluate(t.Expr, data)
	if err != nil {
		s.log().Debug("table expression failed", "table", t.Title, "error", err)
		return tv
	}
	rows, _ := v.([]any)
	for _, row := range rows {
		rv := RowView{Cells: make([]string, 0, len(t.Columns))}
		if t.IDExpr != "" {
			if id, idErr := s.jems.Evaluate(t.IDExpr, row); idErr == nil && id != nil {
				rv.ID = formatValue(id)
			}
		}
		for _, col := range t.Columns {
			cell, cellErr := s.jems.Evaluate(col.Expr, row)
			if cellErr != nil || cell == nil {
				rv.Cells = append(rv.Cells, emptyValue)
				continue
			}
			rv.Cells = append(rv.Cells, formatValue(cell))
		}
		tv.Rows = append(tv.Rows, rv)
	}
	return tv
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return emptyValue
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', 1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, formatValue(e))
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Submit applies a form action on a role's page and returns a flash message.
// Invalid input is reported as a validation AuthError before any API call.
func (s *DashboardService) Submit(
	ctx context.Context,
	role domainauth.Role,
	slug, action string,
	form url.Values,
) (string, error) {
	page, ok := FindPage(role, slug)
	if !ok {
		return "", ErrUnknownPage
	}
	switch {
	case page.Form == FormGrade && action == "submit":
		return s.submitGrade(ctx, form)
	case page.Form == FormUser && action == "create":
		return s.createUser(ctx, form)
	case page.Form == FormUser && action == "delete":
		return s.deleteUser(ctx, form)
	case page.Form == FormUser && action == "role":
		return s.changeRole(ctx, form)
	case page.Form == FormProfile && action == "update":
		return s.updateProfile(ctx, form)
	default:
		return "", apperrors.New(apperrors.KindBadRequest, "Unsupported action")
	}
}

func field(form url.Values, name string) string { return strings.TrimSpace(form.Get(name)) }

func (s *DashboardService) submitGrade(ctx context.Context, form url.Values) (string, error) {
	in := validation.GradeInput{
		ClassID:   field(form, "classId"),
		StudentID: field(form, "studentId"),
		Subject:   field(form, "subject"),
		Marks:     field(form, "marks"),
	}
	if fields := validation.Struct(in); fields != nil {
		return "", apperrors.Validation(fields, validation.GradeFields...)
	}
	payload := map[string]any{
		"classId":   in.ClassID,
		"studentId": in.StudentID,
		"subject":   in.Subject,
		"marks":     in.Marks,
	}
	if term := field(form, "term"); term != "" {
		payload["term"] = term
	}
	if err := s.api.SubmitGrades(ctx, payload); err != nil {
		return "", err
	}
	return "Grade submitted", nil
}

func (s *DashboardService) createUser(ctx context.Context, form url.Values) (string, error) {
	in := validation.NewUserInput{
		Name:     field(form, "name"),
		Email:    field(form, "email"),
		Password: form.Get("password"),
		Role:     field(form, "role"),
	}
	if fields := validation.Struct(in); fields != nil {
		return "", apperrors.Validation(fields, validation.NewUserFields...)
	}
	role, _ := domainauth.ParseRole(in.Role)
	err := s.api.CreateUser(ctx, map[string]any{
		"name":     in.Name,
		"email":    in.Email,
		"password": in.Password,
		"role":     string(role),
	})
	if err != nil {
		return "", err
	}
	return "User created", nil
}

func (s *DashboardService) deleteUser(ctx context.Context, form url.Values) (string, error) {
	id := field(form, "id")
	if id == "" {
		return "", apperrors.Validation(map[string]string{"id": "User is required"}, "id")
	}
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return "", err
	}
	return "User deleted", nil
}

func (s *DashboardService) changeRole(ctx context.Context, form url.Values) (string, error) {
	id := field(form, "id")
	role, ok := domainauth.ParseRole(form.Get("role"))
	fields := map[string]string{}
	if id == "" {
		fields["id"] = "User is required"
	}
	if !ok {
		fields["role"] = "Role must be one of STUDENT, TEACHER or ADMIN"
	}
	if len(fields) > 0 {
		return "", apperrors.Validation(fields, "id", "role")
	}
	if err := s.api.UpdateUser(ctx, id, map[string]any{"role": string(role)}); err != nil {
		return "", err
	}
	return "User updated", nil
}

func (s *DashboardService) updateProfile(ctx context.Context, form url.Values) (string, error) {
	in := validation.ProfileInput{Name: field(form, "name"), Email: field(form, "email")}
	if fields := validation.Struct(in); fields != nil {
		return "", apperrors.Validation(fields, validation.ProfileFields...)
	}
	if err := s.api.UpdateProfile(ctx, map[string]any{"name": in.Name, "email": in.Email}); err != nil {
		return "", err
	}
	return "Profile updated", nil
}
