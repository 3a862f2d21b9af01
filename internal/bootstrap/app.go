package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acadify/acadify-web/config"
	httpx "github.com/acadify/acadify-web/internal/http"
	"github.com/acadify/acadify-web/internal/observability/statsd"
	"github.com/acadify/acadify-web/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// App holds the wired web client.
type App struct {
	Client    *Client
	Dashboard *service.DashboardService
	// Metrics is nil when metrics are disabled.
	Metrics statsd.Sink
	MockAPI *MockAPI
	Redis   redis.UniversalClient

	statsdClient     *statsd.Client
	stopUnauthorized func()
	logger           *slog.Logger
}

// AppDeps groups dependencies for NewApp.
type AppDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
}

// NewApp connects infrastructure and builds the application services. The
// returned App must be closed.
func NewApp(ctx context.Context, deps AppDeps) (_ *App, err error) {
	if deps.Config == nil {
		return nil, errors.New("app config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{logger: logger}
	defer func() {
		if err != nil {
			app.Close(ctx)
		}
	}()

	app.statsdClient, app.Metrics = buildMetrics(logger, cfg.Observability.Metrics)

	if cfg.UsesRedis() {
		app.Redis, err = ConnectRedis(ctx, RedisOptions{Config: cfg.Redis, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	var baseURL string
	if cfg.API.IsMock() {
		app.MockAPI, err = StartMockAPI(ctx, logger)
		if err != nil {
			return nil, err
		}
		baseURL = app.MockAPI.BaseURL
	}

	app.Client, err = NewClient(ctx, ClientDeps{
		API:         cfg.API,
		BaseURL:     baseURL,
		Redis:       cfg.Redis,
		RedisClient: app.Redis,
		Metrics:     app.Metrics,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	app.stopUnauthorized = app.Client.Transport.OnUnauthorized(
		httpx.SessionExpiryListener(app.Client.Store, logger))

	app.Dashboard, err = NewDashboardService(app.Client, cfg.API, logger)
	if err != nil {
		return nil, err
	}
	return app, nil
}

//nolint:ireturn // the sink stays nil when metrics are off.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) (*statsd.Client, statsd.Sink) {
	if !cfg.IsEnabled() {
		return nil, nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil, nil
	}
	if !client.Enabled() {
		logger.Warn("metrics enabled without a statsd address; metrics are off")
		return nil, nil
	}
	return client, client
}

// Close releases everything NewApp acquired. It is safe on a partially built App.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.stopUnauthorized != nil {
		a.stopUnauthorized()
	}
	a.Client.Close()
	if a.MockAPI != nil {
		if err := a.MockAPI.Shutdown(ctx); err != nil {
			a.logger.ErrorContext(ctx, "stop mock academic API failed", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.ErrorContext(ctx, "close redis failed", "error", err)
		}
	}
	if a.statsdClient != nil {
		if err := a.statsdClient.Close(); err != nil {
			a.logger.ErrorContext(ctx, "close statsd failed", "error", err)
		}
	}
}

// RestoreSession runs the initial session check so the auth store leaves its
// loading state before the first request arrives.
func (a *App) RestoreSession(ctx context.Context) {
	a.Client.Store.CheckSession(ctx)
	st := a.Client.Store.State()
	if st.IsAuthenticated() {
		a.logger.InfoContext(ctx, "restored academic API session",
			"user_id", st.User.ID, "role", string(st.User.Role))
		return
	}
	a.logger.InfoContext(ctx, "no academic API session; waiting for sign-in")
}

// Run starts the HTTP server and blocks until a shutdown signal or a server error.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("app config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app, err := NewApp(ctx, AppDeps{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	if cfg.Auth.WaitForSessionCheck {
		app.RestoreSession(ctx)
	} else {
		go app.RestoreSession(ctx)
	}

	errCh := make(chan error, 1)
	server, err := StartHTTPServer(&HTTPServerConfig{Config: cfg, App: app, Logger: logger, ErrCh: errCh})
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	stop := func() error {
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.Background(),
			Server:  server,
			Timeout: cfg.HTTP.ShutdownTimeout,
			Logger:  logger,
		})
	}

	select {
	case <-quit:
		logger.Info("shutting down...")
		return stop()
	case <-ctx.Done():
		logger.Info("context canceled, shutting down...")
		return stop()
	case err := <-errCh:
		logger.Error("service error", "error", err)
		if stopErr := stop(); stopErr != nil {
			logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}
