package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes a failure talking to the academic API or validating input for it.
type Kind string

const (
	// KindUnauthenticated means the API has no valid session for us (HTTP 401).
	KindUnauthenticated Kind = "unauthenticated"
	// KindInvalidCredentials means a login attempt was rejected.
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindSignupFailure means the API refused a registration.
	KindSignupFailure Kind = "signup_failure"
	// KindNetworkFailure means no response was received.
	KindNetworkFailure Kind = "network_failure"
	// KindForbidden means the session lacks the role for the resource (HTTP 403).
	KindForbidden Kind = "forbidden"
	// KindNotFound means the resource does not exist (HTTP 404).
	KindNotFound Kind = "not_found"
	// KindBadRequest means the API rejected the request payload (other 4xx).
	KindBadRequest Kind = "bad_request"
	// KindServerError means the API failed (5xx) or answered with something unreadable.
	KindServerError Kind = "server_error"
	// KindValidation means client-side validation failed before any request was sent.
	KindValidation Kind = "validation"
)

// Default user-facing messages when the API does not supply one.
const (
	MsgLoginFailed    = "Login failed"
	MsgSignupFailed   = "Signup failed"
	MsgNetworkFailure = "Unable to reach the server. Please check your connection."
	MsgNotSignedIn    = "Not authenticated"
	MsgRequestFailed  = "Request failed"
)

// AuthError is the uniform failure shape produced by the session client and the
// dashboard API client. Message is always safe to show to the user.
type AuthError struct {
	// Kind categorizes the failure
	Kind Kind
	// Message is the human-readable `{message}` payload
	Message string
	// Status is the HTTP status when a response was received, otherwise 0
	Status int
	// Fields holds per-field messages for validation failures (json field name -> message)
	Fields map[string]string
	// Cause is the underlying transport or decode error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AuthError) Unwrap() error { return e.Cause }

// Payload returns the `{message}` shape rendered to clients.
func (e *AuthError) Payload() map[string]string {
	return map[string]string{"message": e.Message}
}

// New creates an AuthError of the given kind.
func New(kind Kind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// Validation creates a validation failure carrying per-field messages.
// Message is the first field message in the order given by order, if any.
func Validation(fields map[string]string, order ...string) *AuthError {
	msg := "Please correct the highlighted fields"
	for _, f := range order {
		if m, ok := fields[f]; ok {
			msg = m
			break
		}
	}
	return &AuthError{Kind: KindValidation, Message: msg, Fields: fields}
}

// Network wraps a transport error that produced no response.
func Network(err error) *AuthError {
	return &AuthError{Kind: KindNetworkFailure, Message: MsgNetworkFailure, Cause: err}
}

// FromStatus builds an AuthError for an HTTP error response. An empty message
// falls back to fallback.
func FromStatus(status int, message, fallback string) *AuthError {
	if message == "" {
		message = fallback
	}
	return &AuthError{Kind: KindForStatus(status), Message: message, Status: status}
}

// KindForStatus maps an HTTP error status to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServerError
	case status >= 400:
		return KindBadRequest
	default:
		return KindServerError
	}
}

// WithKind returns a copy of err re-categorized as kind, keeping status and message.
func WithKind(err *AuthError, kind Kind) *AuthError {
	if err == nil {
		return nil
	}
	cp := *err
	cp.Kind = kind
	return &cp
}

// Normalize converts any error into an *AuthError. Existing AuthErrors pass
// through; anything else is treated as a failure to get a response.
func Normalize(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return Network(err)
}

// IsCanceled reports whether err stems from the caller's context ending.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// KindOf returns the Kind of err, or "" when err is not an AuthError.
func KindOf(err error) Kind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsKind reports whether err is an AuthError of the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// IsUnauthenticated checks if an error is an Unauthenticated error.
func IsUnauthenticated(err error) bool { return IsKind(err, KindUnauthenticated) }

// IsValidation checks if an error is a client-side Validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// MessageOf returns the user-facing message of err, or fallback when err carries none.
func MessageOf(err error, fallback string) string {
	var ae *AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}
