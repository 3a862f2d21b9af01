// Package cookiestore holds the credentials the web client presents to the
// academic API: an http.CookieJar whose contents are mirrored to a ports.CookieStore.
package cookiestore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/acadify/acadify-web/internal/ports"
)

const persistTimeout = 5 * time.Second

// JarOptions groups dependencies for NewJar.
type JarOptions struct {
	// APIURL scopes the persisted cookies; only cookies for this URL are saved.
	APIURL *url.URL
	// Store mirrors the cookies. Nil keeps them in process memory only.
	Store  ports.CookieStore
	Logger *slog.Logger
}

// Jar is an http.CookieJar for the academic API that survives restarts when
// backed by a persistent store.
type Jar struct {
	mu     sync.Mutex
	inner  *cookiejar.Jar
	store  ports.CookieStore
	apiURL *url.URL
	key    string
	logger *slog.Logger
}

var _ http.CookieJar = (*Jar)(nil)

// NewJar creates the jar and seeds it from the store.
func NewJar(ctx context.Context, opts JarOptions) (*Jar, error) {
	if opts.APIURL == nil {
		return nil, fmt.Errorf("cookie jar requires the api url")
	}
	inner, err := newInner()
	if err != nil {
		return nil, err
	}
	j := &Jar{
		inner:  inner,
		store:  opts.Store,
		apiURL: opts.APIURL,
		key:    opts.APIURL.Host,
		logger: opts.Logger,
	}
	if j.store == nil {
		return j, nil
	}
	cookies, err := j.store.Load(ctx, j.key)
	if err != nil {
		return nil, fmt.Errorf("load persisted cookies: %w", err)
	}
	if len(cookies) > 0 {
		for _, c := range cookies {
			if c.Path == "" {
				c.Path = "/"
			}
		}
		j.inner.SetCookies(j.apiURL, cookies)
		j.log().Debug("restored api cookies", "count", len(cookies), "host", j.key)
	}
	return j, nil
}

func newInner() (*cookiejar.Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return inner, nil
}

func (j *Jar) log() *slog.Logger {
	if j.logger != nil {
		return j.logger
	}
	return slog.Default()
}

// SetCookies implements http.CookieJar and mirrors the API cookies to the store.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	j.inner.SetCookies(u, cookies)
	snapshot := j.inner.Cookies(j.apiURL)
	j.mu.Unlock()

	if j.store == nil || u.Host != j.apiURL.Host {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := j.store.Save(ctx, j.key, snapshot); err != nil {
		j.log().Warn("persist api cookies failed", "host", j.key, "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Clear forgets every cookie locally and in the store.
func (j *Jar) Clear(ctx context.Context) error {
	inner, err := newInner()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
	if j.store == nil {
		return nil
	}
	return j.store.Delete(ctx, j.key)
}
