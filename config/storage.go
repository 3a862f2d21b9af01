package config

import (
	"fmt"
	"strings"
	"time"
)

// CookieStoreMode selects where academic API cookies are persisted.
type CookieStoreMode string

const (
	// CookieStoreMemory keeps cookies in process memory; a restart signs the client out.
	CookieStoreMemory CookieStoreMode = "memory"
	// CookieStoreRedis persists cookies in Redis so restarts and the admin CLI share a session.
	CookieStoreRedis CookieStoreMode = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for CookieStoreMode.
func (m *CookieStoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*m = CookieStoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid CookieStoreMode: %q (valid options: memory, redis)", v)
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`

	// KeyPrefix namespaces the persisted cookie keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"acadify:cookies:"`
	// CookieTTL bounds how long persisted cookies live without a refresh.
	CookieTTL time.Duration `env:"COOKIE_TTL" envDefault:"24h"`
}

// Sanitize applies guardrails to Redis configuration values.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	r.KeyPrefix = strings.TrimSpace(r.KeyPrefix)
	if r.KeyPrefix == "" {
		r.KeyPrefix = "acadify:cookies:"
	}
	if r.CookieTTL <= 0 {
		r.CookieTTL = 24 * time.Hour
	}
}
