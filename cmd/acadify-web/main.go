package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/acadify/acadify-web/config"
	"github.com/acadify/acadify-web/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger(slog.LevelInfo)
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	if level := cfg.Observability.Logging.SlogLevel(); level != slog.LevelInfo {
		logger = bootstrap.InitLogger(level)
	}
	logStartupInfo(ctx, logger, &cfg)

	return bootstrap.Run(ctx, &cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	apiBase := cfg.API.BaseURL
	if cfg.API.IsMock() {
		apiBase = "in-process mock"
	}
	logger.InfoContext(ctx, "starting acadify web client",
		"addr", cfg.HTTP.Addr,
		"api", apiBase,
		"cookie_store", string(cfg.CookieStore),
		"unknown_role_policy", string(cfg.Auth.UnknownRolePolicy),
		"dev", cfg.IsDev)
}
