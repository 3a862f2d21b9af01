package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

type staticState domainauth.AuthState

func (s staticState) State() domainauth.AuthState { return domainauth.AuthState(s) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name  string
		store AuthStateSource
		want  string
	}{
		{name: "no store", want: `{"status":"ok"}`},
		{name: "loading", store: staticState{Loading: true}, want: `{"status":"ok","auth":"loading"}`},
		{name: "ready", store: staticState{}, want: `{"status":"ok","auth":"ready"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthHandler(tt.store)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestHealthHandlerHEAD(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(staticState{})(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len())
}
