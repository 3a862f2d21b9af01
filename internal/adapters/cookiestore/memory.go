package cookiestore

import (
	"context"
	"net/http"
	"sync"

	"github.com/acadify/acadify-web/internal/ports"
)

// MemoryStore is a process-local ports.CookieStore.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string][]*http.Cookie
}

var _ ports.CookieStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]*http.Cookie)}
}

func (s *MemoryStore) Save(_ context.Context, key string, cookies []*http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(cookies) == 0 {
		delete(s.m, key)
		return nil
	}
	s.m[key] = cloneCookies(cookies)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]*http.Cookie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCookies(s.m[key]), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func cloneCookies(in []*http.Cookie) []*http.Cookie {
	if len(in) == 0 {
		return nil
	}
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		cp := *c
		out = append(out, &cp)
	}
	return out
}
