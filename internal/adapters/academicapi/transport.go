// Package academicapi is the HTTP client for the remote academic REST API.
// It owns the base URL, the credentials (cookie jar), the request timeout and the
// translation of responses into *apperrors.AuthError values.
package academicapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/ports"
)

// RequestTimeout bounds every request to the academic API.
const RequestTimeout = 30 * time.Second

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// TransportOptions groups dependencies for NewTransport.
type TransportOptions struct {
	BaseURL string
	// Jar carries the session cookies. Nil keeps resty's default in-memory jar.
	Jar    http.CookieJar
	Logger *slog.Logger
	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

// Transport is the single configured HTTP client for the academic API.
// It publishes every 401 response to the registered listeners.
type Transport struct {
	client *resty.Client
	base   *url.URL
	logger *slog.Logger

	mu        sync.RWMutex
	listeners map[uint64]ports.UnauthorizedListener
	nextID    uint64
}

// NewTransport validates the base URL and builds the resty client.
func NewTransport(opts TransportOptions) (*Transport, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("api base url %q has no host", raw)
	}

	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}
	client.
		SetBaseURL(base.String()).
		SetTimeout(RequestTimeout).
		SetHeader("Accept", "application/json")
	if opts.Jar != nil {
		client.SetCookieJar(opts.Jar)
	}

	t := &Transport{
		client:    client,
		base:      base,
		logger:    opts.Logger,
		listeners: make(map[uint64]ports.UnauthorizedListener),
	}
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})
	client.OnAfterResponse(t.afterResponse)
	return t, nil
}

func (t *Transport) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}

// BaseURL returns the parsed API base URL.
func (t *Transport) BaseURL() *url.URL {
	u := *t.base
	return &u
}

// SetCookieJar replaces the jar that carries the API session cookies.
func (t *Transport) SetCookieJar(jar http.CookieJar) {
	t.client.SetCookieJar(jar)
}

// OnUnauthorized registers l for 401 responses and returns a func that removes it.
func (t *Transport) OnUnauthorized(l ports.UnauthorizedListener) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = l
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

func (t *Transport) afterResponse(_ *resty.Client, resp *resty.Response) error {
	method, path := requestLine(resp)
	status := resp.StatusCode()
	attrs := []any{"method", method, "path", path, "status", status, "duration", resp.Time()}

	switch {
	case status == http.StatusUnauthorized:
		t.log().Debug("academic api unauthorized", attrs...)
		t.emitUnauthorized(resp.Request.Context(), ports.UnauthorizedEvent{Method: method, Path: path})
	case status == http.StatusForbidden:
		t.log().Warn("academic api access denied", attrs...)
	case status == http.StatusNotFound:
		t.log().Debug("academic api resource not found", attrs...)
	case status >= http.StatusInternalServerError:
		t.log().Error("academic api server error", attrs...)
	default:
		t.log().Debug("academic api request completed", attrs...)
	}
	return nil
}

func (t *Transport) emitUnauthorized(ctx context.Context, ev ports.UnauthorizedEvent) {
	t.mu.RLock()
	ls := make([]ports.UnauthorizedListener, 0, len(t.listeners))
	for _, l := range t.listeners {
		ls = append(ls, l)
	}
	t.mu.RUnlock()
	for _, l := range ls {
		l(ctx, ev)
	}
}

func requestLine(resp *resty.Response) (string, string) {
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		return resp.RawResponse.Request.Method, resp.RawResponse.Request.URL.Path
	}
	if resp.Request != nil {
		return resp.Request.Method, resp.Request.URL
	}
	return "", ""
}

// send executes one request. Only failures to obtain a response are returned as
// errors; HTTP error statuses are left to the caller.
func (t *Transport) send(ctx context.Context, method, path string, body any, query url.Values) (*resty.Response, error) {
	req := t.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		if apperrors.IsCanceled(err) && errors.Is(ctx.Err(), context.Canceled) {
			t.log().DebugContext(ctx, "academic api request canceled", "method", method, "path", path)
		} else {
			t.log().WarnContext(ctx, "academic api unreachable", "method", method, "path", path, "error", err)
		}
		return nil, apperrors.Network(err)
	}
	return resp, nil
}
