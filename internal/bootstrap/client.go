package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/acadify/acadify-web/config"
	"github.com/acadify/acadify-web/internal/adapters/academicapi"
	"github.com/acadify/acadify-web/internal/adapters/cookiestore"
	redisadapter "github.com/acadify/acadify-web/internal/adapters/redis"
	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	"github.com/acadify/acadify-web/internal/observability/metrics"
	"github.com/acadify/acadify-web/internal/observability/statsd"
	"github.com/acadify/acadify-web/internal/ports"
	"github.com/acadify/acadify-web/internal/service"
)

// ClientDeps groups what is needed to talk to the academic API.
type ClientDeps struct {
	API config.APIConfig
	// BaseURL overrides API.BaseURL (mock mode).
	BaseURL     string
	Redis       config.RedisConfig
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// Client is the academic API stack: one transport, its cookie jar, the session
// client and the auth store built on it.
type Client struct {
	Transport *academicapi.Transport
	Jar       *cookiestore.Jar
	Session   ports.SessionClient
	Store     *service.AuthStore

	unsubscribe func()
}

// NewClient wires the transport, jar, session client and auth store. Cookies
// are persisted in Redis when a client is given, otherwise in memory.
// The auth store starts in the loading state; callers run CheckSession.
func NewClient(ctx context.Context, deps ClientDeps) (*Client, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := deps.BaseURL
	if baseURL == "" {
		baseURL = deps.API.BaseURL
	}
	transport, err := academicapi.NewTransport(academicapi.TransportOptions{
		BaseURL: baseURL,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create academic api transport: %w", err)
	}

	jar, err := cookiestore.NewJar(ctx, cookiestore.JarOptions{
		APIURL: transport.BaseURL(),
		Store:  newCookieStore(deps.RedisClient, deps.Redis),
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	transport.SetCookieJar(jar)

	session := service.InstrumentSessionClient(
		academicapi.NewSessionClient(transport, endpointsFrom(deps.API), logger),
		deps.Metrics,
	)
	store := service.NewAuthStore(service.AuthStoreOptions{Client: session, Logger: logger})

	c := &Client{Transport: transport, Jar: jar, Session: session, Store: store}
	if deps.Metrics != nil {
		c.unsubscribe = store.Subscribe(func(st domainauth.AuthState) {
			metrics.EmitAuthState(deps.Metrics, st)
		})
	}
	return c, nil
}

// Close detaches the metrics subscriber.
func (c *Client) Close() {
	if c != nil && c.unsubscribe != nil {
		c.unsubscribe()
	}
}

//nolint:ireturn // the jar only needs the port.
func newCookieStore(client redis.UniversalClient, cfg config.RedisConfig) ports.CookieStore {
	if client == nil {
		return cookiestore.NewMemoryStore()
	}
	return redisadapter.NewCookieStoreWithPrefix(client, cfg.KeyPrefix, cfg.CookieTTL)
}

func endpointsFrom(cfg config.APIConfig) academicapi.Endpoints {
	return academicapi.Endpoints{
		WhoAmI: cfg.WhoAmIPath,
		Login:  cfg.LoginPath,
		Signup: cfg.SignupPath,
		Logout: cfg.LogoutPath,
	}
}

// NewDashboardService builds the dashboard page loader on the client's transport.
func NewDashboardService(c *Client, cfg config.APIConfig, logger *slog.Logger) (*service.DashboardService, error) {
	if c == nil || c.Transport == nil {
		return nil, errors.New("academic api client is required")
	}
	svc, err := service.NewDashboardService(service.DashboardServiceOptions{
		API:            academicapi.NewDashboardClient(c.Transport),
		Logger:         logger,
		MaxConcurrency: cfg.MaxConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("create dashboard service: %w", err)
	}
	return svc, nil
}
