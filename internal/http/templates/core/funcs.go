// Package core holds the template helpers shared by every page.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"strings"
	"unicode"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl": deps.ContentTemplateFor,
		"fieldError":  FieldError,
		"roleLabel":   func(role string) string { return domainauth.Role(role).Label() },
		"roles":       roleNames,
		"initials":    Initials,
		"lower":       strings.ToLower,
		"add":         func(a, b int) int { return a + b },
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - produced by our own html/template set; values were escaped on execution.
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// FieldError returns the message for field from a map of validation errors.
// It accepts the nil and untyped values templates tend to pass around.
func FieldError(errs any, field string) string {
	switch m := errs.(type) {
	case map[string]string:
		return m[field]
	case map[string]any:
		if s, ok := m[field].(string); ok {
			return s
		}
	}
	return ""
}

// Initials returns up to two upper-case initials for the avatar badge.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func roleNames() []string {
	roles := domainauth.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
