// Package validation holds the client-side form rules that run before any
// request reaches the academic API.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// custom validation tags
const (
	notBlankTag   = "notblank"
	looseEmailTag = "loose_email"
	knownRoleTag  = "known_role"
)

// looseEmail is deliberately permissive: something@something.something anywhere in the value.
var looseEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

// Field order used to pick the headline message of a failed form.
var (
	LoginFields   = []string{"email", "password"}
	SignupFields  = []string{"name", "email", "password", "confirmPassword", "role"}
	NewUserFields = []string{"name", "email", "password", "role"}
	GradeFields   = []string{"studentId", "subject", "marks"}
	ProfileFields = []string{"name", "email"}
)

var labels = map[string]string{
	"name":            "Name",
	"email":           "Email",
	"password":        "Password",
	"confirmPassword": "Confirm password",
	"role":            "Role",
	"studentId":       "Student",
	"subject":         "Subject",
	"marks":           "Marks",
}

type loginForm struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required"`
}

type signupForm struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"required,loose_email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,known_role"`
}

// NewUserInput is the admin "create user" form.
type NewUserInput struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,known_role"`
}

// GradeInput is the teacher "submit grade" form.
type GradeInput struct {
	ClassID   string `json:"classId"`
	StudentID string `json:"studentId" validate:"notblank"`
	Subject   string `json:"subject" validate:"notblank"`
	Marks     string `json:"marks" validate:"required,numeric"`
}

// ProfileInput is the "edit profile" form shared by every role.
type ProfileInput struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,loose_email"`
}

type rules struct {
	validate *validator.Validate
	trans    ut.Translator
}

var defaultRules = sync.OnceValue(newRules)

func newRules() *rules {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	_ = v.RegisterValidation(looseEmailTag, looseEmailValidation)
	_ = v.RegisterValidation(knownRoleTag, knownRoleValidation)

	// The default registration already ran; a noop register func bypasses it.
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{"required", notBlankTag, looseEmailTag, knownRoleTag, "min", "eqfield"} {
		_ = v.RegisterTranslation(tag, trans, registerFn, translateFormErr)
	}
	return &rules{validate: v, trans: trans}
}

func translateFormErr(_ ut.Translator, fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required", notBlankTag:
		return label + " is required"
	case looseEmailTag:
		return label + " is invalid"
	case knownRoleTag:
		return label + " must be one of STUDENT, TEACHER or ADMIN"
	case "min":
		return label + " must be at least " + fe.Param() + " characters"
	case "eqfield":
		return "Passwords do not match"
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func looseEmailValidation(fl validator.FieldLevel) bool {
	return looseEmail.MatchString(fl.Field().String())
}

func knownRoleValidation(fl validator.FieldLevel) bool {
	_, ok := domainauth.ParseRole(fl.Field().String())
	return ok
}

// Struct validates v and returns per-field messages keyed by JSON field name.
// A nil map means v is valid.
func Struct(v any) map[string]string {
	r := defaultRules()
	err := r.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fe.Translate(r.trans)
	}
	return out
}

// ValidateLogin checks the login form: email present and well-formed, password present.
func ValidateLogin(email, password string) map[string]string {
	return Struct(loginForm{Email: email, Password: password})
}

// ValidateSignup checks the registration form. Every rule is evaluated
// independently, so a password mismatch is reported regardless of other fields.
func ValidateSignup(p domainauth.SignupProfile) map[string]string {
	return Struct(signupForm{
		Name:            p.Name,
		Email:           p.Email,
		Password:        p.Password,
		ConfirmPassword: p.ConfirmPassword,
		Role:            string(p.Role),
	})
}
