package bootstrap

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadify/acadify-web/config"
	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	"github.com/acadify/acadify-web/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mockConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		API: config.APIConfig{Mode: config.APIModeMock},
		Auth: config.AuthConfig{
			UnknownRolePolicy:   domainauth.UnknownRoleLogin,
			WaitForSessionCheck: true,
		},
		CookieStore: config.CookieStoreMemory,
	}
	cfg.Sanitize()
	return cfg
}

func newTestApp(t *testing.T, cfg *config.AppConfig) *App {
	t.Helper()
	app, err := NewApp(context.Background(), AppDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })
	return app
}

func TestNewApp_RequiresConfig(t *testing.T) {
	_, err := NewApp(context.Background(), AppDeps{})
	assert.Error(t, err)
}

func TestNewApp_MockMode(t *testing.T) {
	app := newTestApp(t, mockConfig())
	ctx := context.Background()

	require.NotNil(t, app.MockAPI)
	assert.True(t, strings.HasSuffix(app.MockAPI.BaseURL, "/api"))
	assert.Equal(t, app.MockAPI.BaseURL, app.Client.Transport.BaseURL().String())
	assert.Nil(t, app.Metrics, "metrics are off by default")

	assert.True(t, app.Client.Store.State().Loading, "store starts loading")
	app.RestoreSession(ctx)
	st := app.Client.Store.State()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated())

	u, err := app.Client.Store.Login(ctx, "teacher@acadify.dev", "teacher123")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleTeacher, u.Role)

	view, err := app.Dashboard.Load(ctx, domainauth.RoleTeacher, "overview", nil)
	require.NoError(t, err)
	assert.Empty(t, view.Error)
}

func TestNewApp_ExpiredSessionSignsOut(t *testing.T) {
	app := newTestApp(t, mockConfig())
	ctx := context.Background()
	_, err := app.Client.Store.Login(ctx, "student@acadify.dev", "student123")
	require.NoError(t, err)

	app.MockAPI.Server.ExpireSessions()
	view, err := app.Dashboard.Load(ctx, domainauth.RoleStudent, "marks", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, view.Error)
	assert.False(t, app.Client.Store.IsAuthenticated(), "401 from any endpoint signs the store out")
}

func TestNewClient_RedisCookiesSurviveRestart(t *testing.T) {
	redisClient, mr := testutil.SetupMiniRedis(t)
	app := newTestApp(t, mockConfig())
	ctx := context.Background()
	redisCfg := config.RedisConfig{KeyPrefix: "test:cookies:", CookieTTL: time.Hour}

	first, err := NewClient(ctx, ClientDeps{
		BaseURL:     app.MockAPI.BaseURL,
		Redis:       redisCfg,
		RedisClient: redisClient,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	_, err = first.Store.Login(ctx, "admin@acadify.dev", "admin123")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "test:cookies:"))

	second, err := NewClient(ctx, ClientDeps{
		BaseURL:     app.MockAPI.BaseURL,
		Redis:       redisCfg,
		RedisClient: redisClient,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	second.Store.CheckSession(ctx)
	u, ok := second.Store.User()
	require.True(t, ok, "second client resumes the persisted session")
	assert.Equal(t, "admin@acadify.dev", u.Email)
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(context.Background(), ClientDeps{BaseURL: "ftp://nope", Logger: discardLogger()})
	assert.Error(t, err)
}

func TestNewDashboardService_RequiresClient(t *testing.T) {
	_, err := NewDashboardService(nil, config.APIConfig{}, discardLogger())
	assert.Error(t, err)
}

func TestBuildHTTPHandler(t *testing.T) {
	cfg := mockConfig()
	app := newTestApp(t, cfg)
	app.RestoreSession(context.Background())

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	h, err := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: routerServices(cfg, app, logger),
		HTTP:     config.HTTPConfig{CompressionEnabled: true, CompressionLevel: 5},
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","auth":"ready"}`, rr.Body.String())
	assert.Contains(t, logs.String(), "HTTP compression enabled")
	assert.Contains(t, logs.String(), `"path":"/healthz"`)
}

func TestStartHTTPServer_RequiresApp(t *testing.T) {
	_, err := StartHTTPServer(&HTTPServerConfig{})
	assert.Error(t, err)
}

func TestShutdownHTTPServer_NilServer(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(ShutdownConfig{}))
}

func TestInitLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := initLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	slog.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("API_MODE", "mock")
	t.Setenv("HTTP_COMPRESSION_LEVEL", "42")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.API.IsMock())
	assert.Equal(t, 9, cfg.HTTP.CompressionLevel)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("COOKIE_STORE", "floppy")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestWarnIfExposed(t *testing.T) {
	tests := []struct {
		addr string
		warn bool
	}{
		{addr: "127.0.0.1:3000"},
		{addr: "localhost:3000"},
		{addr: ""},
		{addr: ":3000", warn: true},
		{addr: "0.0.0.0:8080", warn: true},
	}
	for _, tt := range tests {
		var logs bytes.Buffer
		warnIfExposed(slog.New(slog.NewJSONHandler(&logs, nil)), config.HTTPConfig{Addr: tt.addr})
		if tt.warn {
			assert.Contains(t, logs.String(), "reachable beyond loopback", "addr %q", tt.addr)
		} else {
			assert.Empty(t, logs.String(), "addr %q", tt.addr)
		}
	}
}
