package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse() error = %v", err)
	}
	cfg.Sanitize()

	if cfg.IsDev {
		t.Errorf("IsDev = true, want false")
	}
	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Mode != APIModeRemote {
		t.Errorf("API.Mode = %q, want remote", cfg.API.Mode)
	}
	if cfg.API.WhoAmIPath != "/auth/me" || cfg.API.LoginPath != "/auth/login" ||
		cfg.API.SignupPath != "/auth/register" || cfg.API.LogoutPath != "/auth/logout" {
		t.Errorf("unexpected endpoint defaults: %+v", cfg.API)
	}
	if cfg.HTTP.Addr != "127.0.0.1:3000" {
		t.Errorf("HTTP.Addr = %q, want 127.0.0.1:3000", cfg.HTTP.Addr)
	}
	if cfg.Auth.UnknownRolePolicy != domainauth.UnknownRoleLogin {
		t.Errorf("Auth.UnknownRolePolicy = %q, want login", cfg.Auth.UnknownRolePolicy)
	}
	if cfg.CookieStore != CookieStoreMemory || cfg.UsesRedis() {
		t.Errorf("CookieStore = %q, want memory", cfg.CookieStore)
	}
	if cfg.Observability.Logging.SlogLevel() != slog.LevelInfo {
		t.Errorf("log level = %v, want info", cfg.Observability.Logging.SlogLevel())
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", " https://api.school.example/api/ ")
	t.Setenv("API_MODE", "MOCK")
	t.Setenv("API_WHOAMI_PATH", "session/me")
	t.Setenv("AUTH_UNKNOWN_ROLE_POLICY", "support")
	t.Setenv("COOKIE_STORE", "redis")
	t.Setenv("REDIS_URI", "redis://cache:6379/0")
	t.Setenv("REDIS_COOKIE_TTL", "2h")
	t.Setenv("REDIS_CLUSTER_NODES", "a:1,b:2")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "DEBUG")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse() error = %v", err)
	}
	cfg.Sanitize()

	if cfg.API.BaseURL != "https://api.school.example/api" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if !cfg.API.IsMock() {
		t.Errorf("API.IsMock() = false, want true")
	}
	if cfg.API.WhoAmIPath != "/session/me" {
		t.Errorf("API.WhoAmIPath = %q, want /session/me", cfg.API.WhoAmIPath)
	}
	if cfg.Auth.UnknownRolePolicy != domainauth.UnknownRoleSupport {
		t.Errorf("Auth.UnknownRolePolicy = %q, want support", cfg.Auth.UnknownRolePolicy)
	}
	if !cfg.UsesRedis() {
		t.Errorf("UsesRedis() = false, want true")
	}
	if cfg.Redis.CookieTTL != 2*time.Hour {
		t.Errorf("Redis.CookieTTL = %v, want 2h", cfg.Redis.CookieTTL)
	}
	if !reflect.DeepEqual(cfg.Redis.ClusterNodes, []string{"a:1", "b:2"}) {
		t.Errorf("Redis.ClusterNodes = %v", cfg.Redis.ClusterNodes)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("HTTP.Addr = %q, want :9000", cfg.HTTP.Addr)
	}
	if cfg.Observability.Logging.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.Observability.Logging.SlogLevel())
	}
}

func TestAppConfig_RejectsInvalidEnums(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "api mode", key: "API_MODE", value: "grpc"},
		{name: "cookie store", key: "COOKIE_STORE", value: "disk"},
		{name: "unknown role policy", key: "AUTH_UNKNOWN_ROLE_POLICY", value: "ignore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			var cfg AppConfig
			if err := env.Parse(&cfg); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	tests := []struct {
		nodeEnv string
		want    bool
	}{
		{nodeEnv: "development", want: true},
		{nodeEnv: "DEV", want: true},
		{nodeEnv: "production", want: false},
		{nodeEnv: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.nodeEnv, func(t *testing.T) {
			t.Setenv("NODE_ENV", tt.nodeEnv)
			cfg := AppConfig{}
			cfg.Sanitize()
			if cfg.IsDev != tt.want {
				t.Errorf("IsDev = %v, want %v", cfg.IsDev, tt.want)
			}
		})
	}
}

func TestAPIConfig_Sanitize(t *testing.T) {
	cfg := APIConfig{MaxConcurrency: 0, LoginPath: " login "}
	cfg.Sanitize()
	if cfg.MaxConcurrency != 1 {
		t.Errorf("MaxConcurrency = %d, want 1", cfg.MaxConcurrency)
	}
	if cfg.LoginPath != "/login" {
		t.Errorf("LoginPath = %q, want /login", cfg.LoginPath)
	}
	if cfg.LogoutPath != "" {
		t.Errorf("LogoutPath = %q, want empty", cfg.LogoutPath)
	}

	cfg = APIConfig{MaxConcurrency: 100}
	cfg.Sanitize()
	if cfg.MaxConcurrency != 16 {
		t.Errorf("MaxConcurrency = %d, want 16", cfg.MaxConcurrency)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 0, want: 1},
		{in: 6, want: 6},
		{in: 12, want: 9},
	}
	for _, tt := range tests {
		cfg := HTTPConfig{CompressionLevel: tt.in}
		cfg.Sanitize()
		if cfg.CompressionLevel != tt.want {
			t.Errorf("CompressionLevel(%d) = %d, want %d", tt.in, cfg.CompressionLevel, tt.want)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
		}
	}
}

func TestRedisConfig_Sanitize(t *testing.T) {
	cfg := RedisConfig{URI: "  localhost:6379 ", KeyPrefix: " "}
	cfg.Sanitize()
	if cfg.URI != "localhost:6379" {
		t.Errorf("URI = %q", cfg.URI)
	}
	if cfg.KeyPrefix != "acadify:cookies:" {
		t.Errorf("KeyPrefix = %q", cfg.KeyPrefix)
	}
	if cfg.CookieTTL != 24*time.Hour {
		t.Errorf("CookieTTL = %v, want 24h", cfg.CookieTTL)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name    string
		input   ObservabilityMetricsConfig
		enabled bool
	}{
		{
			name:    "disabled without address",
			input:   ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "},
			enabled: false,
		},
		{
			name:    "enabled with address",
			input:   ObservabilityMetricsConfig{Enabled: true, StatsdAddress: " 127.0.0.1:8125 "},
			enabled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.Sanitize()
			if cfg.IsEnabled() != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", cfg.IsEnabled(), tt.enabled)
			}
			if cfg.Prefix != defaultMetricsPrefix {
				t.Errorf("Prefix = %q, want %q", cfg.Prefix, defaultMetricsPrefix)
			}
		})
	}
}

func TestLoggingConfig_Sanitize(t *testing.T) {
	cfg := LoggingConfig{Level: "verbose"}
	cfg.Sanitize()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}

	cfg = LoggingConfig{Level: " WARN "}
	cfg.Sanitize()
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("SlogLevel() = %v, want warn", cfg.SlogLevel())
	}
}

func TestHTTPConfig_IsLoopback(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1:3000": true,
		"localhost:3000": true,
		"[::1]:3000":     true,
		":3000":          false,
		"0.0.0.0:3000":   false,
		"10.1.2.3:3000":  false,
		"example.com:80": false,
		"not-an-addr":    false,
	}
	for addr, want := range tests {
		c := HTTPConfig{Addr: addr}
		if got := c.IsLoopback(); got != want {
			t.Errorf("IsLoopback(%q) = %v, want %v", addr, got, want)
		}
	}
}

func TestHTTPConfig_SanitizeDefaultsAddr(t *testing.T) {
	c := HTTPConfig{Addr: "  "}
	c.Sanitize()
	if c.Addr != DefaultHTTPAddr {
		t.Errorf("Addr = %q, want %q", c.Addr, DefaultHTTPAddr)
	}
}
