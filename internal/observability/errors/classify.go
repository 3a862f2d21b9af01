package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/acadify/acadify-web/internal/errors"
)

// Classify returns a normalized error name suitable for tagging metrics/logs.
// API failures report their kind (e.g. "invalid_credentials"); context endings
// report "canceled"; anything else reports the innermost concrete type in snake_case-ish form.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	if kind := apperrors.KindOf(err); kind != "" {
		if kind == apperrors.KindNetworkFailure && apperrors.IsCanceled(err) {
			return "canceled"
		}
		return string(kind)
	}
	if apperrors.IsCanceled(err) {
		return "canceled"
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
