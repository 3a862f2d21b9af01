package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.False(t, IsHTMX(r))
	assert.False(t, WantsPartial(r))

	r.Header.Set("Hx-Request", "true")
	assert.True(t, IsHTMX(r))
	assert.True(t, WantsPartial(r))

	r.Header.Set("Hx-Boosted", "true")
	assert.True(t, IsBoosted(r))
	assert.False(t, WantsPartial(r), "boosted navigation renders the full layout")
}

func TestSetHXTrigger(t *testing.T) {
	w := httptest.NewRecorder()
	SetHXTrigger(w, "nav:activate", nil)
	assert.JSONEq(t, `{"nav:activate":true}`, w.Header().Get("Hx-Trigger"))

	w = httptest.NewRecorder()
	triggerToast(w, "Grade submitted", " success ")
	var got map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("Hx-Trigger")), &got))
	assert.Equal(t, map[string]string{"message": "Grade submitted", "type": "success"}, got["showToast"])

	w = httptest.NewRecorder()
	triggerToast(w, "  ", "info")
	assert.Empty(t, w.Header().Get("Hx-Trigger"))
}
