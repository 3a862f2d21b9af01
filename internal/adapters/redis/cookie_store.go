package redis

// Package redis provides Redis-based adapters for the web client.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acadify/acadify-web/internal/ports"
)

// DefaultCookieTTL bounds how long persisted API cookies survive without a refresh.
const DefaultCookieTTL = 24 * time.Hour

// CookieStore keeps the academic API session cookies in Redis so a restarted
// process (or the admin CLI) resumes the same remote session.
type CookieStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.CookieStore = (*CookieStore)(nil)

// storedCookie is the persisted subset of http.Cookie.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// NewCookieStore creates a new Redis-based cookie store.
func NewCookieStore(client redis.UniversalClient) *CookieStore {
	return &CookieStore{
		client: client,
		prefix: "acadify:cookies:",
		ttl:    DefaultCookieTTL,
	}
}

// NewCookieStoreWithPrefix creates a Redis cookie store with a custom key prefix and TTL.
func NewCookieStoreWithPrefix(client redis.UniversalClient, prefix string, ttl time.Duration) *CookieStore {
	if ttl <= 0 {
		ttl = DefaultCookieTTL
	}
	return &CookieStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *CookieStore) Save(ctx context.Context, key string, cookies []*http.Cookie) error {
	if key == "" {
		return errors.New("cookie key cannot be empty")
	}
	if len(cookies) == 0 {
		return s.Delete(ctx, key)
	}

	out := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		out = append(out, storedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

func (s *CookieStore) Load(ctx context.Context, key string) ([]*http.Cookie, error) {
	if key == "" {
		return nil, nil
	}

	data, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var stored []storedCookie
	if unmarshalErr := json.Unmarshal([]byte(data), &stored); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal cookies: %w", unmarshalErr)
	}

	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if !c.Expires.IsZero() && now.After(c.Expires) {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	return cookies, nil
}

func (s *CookieStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.prefix+key).Err()
}
