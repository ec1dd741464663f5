package main

import (
	"fmt"
	"log/slog"

	"github.com/techbyhenry/acode-api/internal/config"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger configures the process-wide logger and logs the settings
// that are safe to print.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Any("allowed_origins", cfg.Server.AllowedOrigins))
	l.Debug("auth configuration",
		slog.Bool("jwt_secret_present", cfg.Auth.JWTSecret != ""),
		slog.Int("access_token_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes),
		slog.Int("refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes),
		slog.Bool("rotate_refresh_tokens", cfg.Auth.RotateRefreshTokens),
		slog.Bool("blacklist_after_rotation", cfg.Auth.BlacklistAfterRotation),
		slog.Bool("protect_account_routes", cfg.Auth.ProtectAccountRoutes))
	l.Debug("upstream configuration",
		slog.String("verify_url", cfg.Upstream.VerifyURL),
		slog.String("bank_list_url", cfg.Upstream.BankListURL),
		slog.Bool("api_key_present", cfg.Upstream.APIKey != ""))

	return l, nil
}
