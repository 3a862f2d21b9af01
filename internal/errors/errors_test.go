package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAuthError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AuthError
		want string
	}{
		{
			name: "error without cause",
			err:  &AuthError{Kind: KindInvalidCredentials, Message: "Invalid email or password"},
			want: "Invalid email or password",
		},
		{
			name: "error with cause",
			err:  &AuthError{Kind: KindNetworkFailure, Message: "offline", Cause: errors.New("dial tcp: refused")},
			want: "offline: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AuthError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := Network(cause)
	if !errors.Is(err, cause) {
		t.Errorf("Network() should wrap %v", cause)
	}
	if !IsCanceled(err) {
		t.Errorf("IsCanceled() = false, want true")
	}
}

func TestKindForStatus(t *testing.T) {
	tests := map[int]Kind{
		http.StatusUnauthorized:        KindUnauthenticated,
		http.StatusForbidden:           KindForbidden,
		http.StatusNotFound:            KindNotFound,
		http.StatusConflict:            KindBadRequest,
		http.StatusBadRequest:          KindBadRequest,
		http.StatusInternalServerError: KindServerError,
		http.StatusBadGateway:          KindServerError,
	}
	for status, want := range tests {
		if got := KindForStatus(status); got != want {
			t.Errorf("KindForStatus(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestFromStatus_FallbackMessage(t *testing.T) {
	err := FromStatus(http.StatusInternalServerError, "", MsgLoginFailed)
	if err.Message != MsgLoginFailed {
		t.Errorf("Message = %q, want %q", err.Message, MsgLoginFailed)
	}
	if err.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", err.Status)
	}
	if got := err.Payload()["message"]; got != MsgLoginFailed {
		t.Errorf("Payload()[message] = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	if Normalize(nil) != nil {
		t.Fatal("Normalize(nil) should be nil")
	}

	orig := New(KindSignupFailure, "Email already registered")
	wrapped := fmt.Errorf("signup: %w", orig)
	if got := Normalize(wrapped); got != orig {
		t.Errorf("Normalize() should unwrap existing AuthError")
	}

	raw := errors.New("connection reset")
	got := Normalize(raw)
	if got.Kind != KindNetworkFailure || !errors.Is(got, raw) {
		t.Errorf("Normalize(raw) = %+v", got)
	}
}

func TestWithKind(t *testing.T) {
	orig := FromStatus(http.StatusUnauthorized, "Invalid email or password", MsgLoginFailed)
	got := WithKind(orig, KindInvalidCredentials)
	if got.Kind != KindInvalidCredentials || got.Status != http.StatusUnauthorized {
		t.Errorf("WithKind() = %+v", got)
	}
	if orig.Kind != KindUnauthenticated {
		t.Errorf("WithKind() must not mutate the original")
	}
	if WithKind(nil, KindForbidden) != nil {
		t.Errorf("WithKind(nil) should be nil")
	}
}

func TestValidation_MessageFollowsOrder(t *testing.T) {
	err := Validation(map[string]string{
		"email":    "Email is invalid",
		"password": "Password is required",
	}, "name", "email", "password")
	if err.Message != "Email is invalid" {
		t.Errorf("Message = %q", err.Message)
	}
	if !IsValidation(err) {
		t.Errorf("IsValidation() = false")
	}
}

func TestKindHelpers(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(KindUnauthenticated, MsgNotSignedIn))
	if !IsUnauthenticated(err) {
		t.Errorf("IsUnauthenticated() = false")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Errorf("KindOf(plain) should be empty")
	}
	if got := MessageOf(errors.New("plain"), "fallback"); got != "fallback" {
		t.Errorf("MessageOf(plain) = %q", got)
	}
	if got := MessageOf(err, "fallback"); got != MsgNotSignedIn {
		t.Errorf("MessageOf(auth) = %q", got)
	}
}
