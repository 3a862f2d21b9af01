package httpx

import (
	"net/http"
)

type healthStatus struct {
	Status string `json:"status"`
	// Auth is "loading" until the startup session check settles.
	Auth string `json:"auth,omitempty"`
}

// healthHandler returns 200 for readiness/liveness checks along with the auth store phase.
func healthHandler(store AuthStateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := healthStatus{Status: "ok"}
		if store != nil {
			body.Auth = "ready"
			if store.State().Loading {
				body.Auth = "loading"
			}
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		WriteJSON(w, http.StatusOK, body)
	}
}
