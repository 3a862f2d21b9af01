package httpx

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	"github.com/acadify/acadify-web/internal/ports"
)

type navigationKey struct{}

type navigation struct {
	mu     sync.Mutex
	target string
}

func (n *navigation) set(target string) {
	n.mu.Lock()
	if n.target == "" {
		n.target = target
	}
	n.mu.Unlock()
}

func (n *navigation) pending() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target
}

// ForceNavigation replaces the response of the request that owns ctx with a
// redirect to target. The first call wins. It reports false when ctx is not
// inside a NavigationBoundary.
func ForceNavigation(ctx context.Context, target string) bool {
	nav, ok := ctx.Value(navigationKey{}).(*navigation)
	if !ok {
		return false
	}
	nav.set(target)
	return true
}

// NavigationBoundary buffers the handler's response so a forced navigation
// raised while it runs can discard whatever the handler produced.
func NavigationBoundary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nav := &navigation{}
			cw := newCaptureWriter(w)
			next.ServeHTTP(cw, r.WithContext(context.WithValue(r.Context(), navigationKey{}, nav)))
			if target := nav.pending(); target != "" {
				navigate(w, r, target)
				return
			}
			cw.flushTo(w)
		})
	}
}

// SessionExpirer drops the signed-in user and reports whether there was one.
type SessionExpirer interface {
	Expire() bool
}

// SessionExpiryListener turns an API 401 into a signed-out store and a forced
// navigation to the login page for the request that hit it. Every 401 redirects,
// including those raised by requests that started before the store was expired;
// requests outside a NavigationBoundary (the auth forms) keep their response.
func SessionExpiryListener(store SessionExpirer, logger *slog.Logger) ports.UnauthorizedListener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, ev ports.UnauthorizedEvent) {
		wasSignedIn := store.Expire()
		forced := ForceNavigation(ctx, domainauth.PathLogin)
		if !wasSignedIn && !forced {
			return
		}
		logger.InfoContext(ctx, "api session expired",
			"method", ev.Method, "path", ev.Path,
			"was_signed_in", wasSignedIn, "forced_navigation", forced)
	}
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	rw     http.ResponseWriter
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: w, header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		slog.Default().Debug("failed to write captured response", "error", err)
	}
}
