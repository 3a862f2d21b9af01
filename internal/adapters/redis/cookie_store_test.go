package redis

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadify/acadify-web/internal/testutil"
)

// setupTestRedis creates an in-process Redis for testing.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client, _ := testutil.SetupMiniRedis(t)
	return client
}

func TestCookieStore_SaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	store := NewCookieStore(client)
	ctx := context.Background()

	err := store.Save(ctx, "api.example.com", []*http.Cookie{
		{Name: "ACADIFY_SESSION", Value: "abc", Path: "/api"},
		{Name: "", Value: "skipped"},
	})
	require.NoError(t, err)

	got, err := store.Load(ctx, "api.example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ACADIFY_SESSION", got[0].Name)
	assert.Equal(t, "abc", got[0].Value)
	assert.Equal(t, "/api", got[0].Path)

	ttl := client.TTL(ctx, "acadify:cookies:api.example.com").Val()
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCookieStore_LoadMissing(t *testing.T) {
	store := NewCookieStore(setupTestRedis(t))

	got, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCookieStore_LoadDropsExpired(t *testing.T) {
	store := NewCookieStoreWithPrefix(setupTestRedis(t), "test:", time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", []*http.Cookie{
		{Name: "old", Value: "1", Expires: time.Now().Add(-time.Minute)},
		{Name: "fresh", Value: "2", Expires: time.Now().Add(time.Hour)},
	}))

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Name)
}

func TestCookieStore_SaveEmptyDeletes(t *testing.T) {
	client := setupTestRedis(t)
	store := NewCookieStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", []*http.Cookie{{Name: "a", Value: "b"}}))
	require.NoError(t, store.Save(ctx, "k", nil))

	exists := client.Exists(ctx, "acadify:cookies:k").Val()
	assert.Zero(t, exists)
}

func TestCookieStore_RejectsEmptyKey(t *testing.T) {
	store := NewCookieStore(setupTestRedis(t))
	assert.Error(t, store.Save(context.Background(), "", []*http.Cookie{{Name: "a"}}))
	assert.NoError(t, store.Delete(context.Background(), ""))
}
