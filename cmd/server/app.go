package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/techbyhenry/acode-api/internal/config"
	"github.com/techbyhenry/acode-api/internal/platform/nubapi"
	"github.com/techbyhenry/acode-api/internal/platform/postgres"
	"github.com/techbyhenry/acode-api/internal/service/auth"
	"github.com/techbyhenry/acode-api/internal/store"
	"github.com/techbyhenry/acode-api/internal/verification"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore      store.UserStore
	blacklistStore store.TokenBlacklistStore
	accountStore   store.AccountStore

	tokenService auth.TokenService
	authService  *auth.Service
	gateway      verification.Gateway
}

// newApplication wires stores, services and the provider client around an
// already connected database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.blacklistStore = postgres.NewPostgresTokenBlacklistStore(db, logger)
	app.accountStore = postgres.NewPostgresAccountStore(db, logger)

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth, app.blacklistStore)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		slog.Int("access_token_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes),
		slog.Int("refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes))

	credentials := auth.NewCredentials(
		app.userStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewPasswordPolicy(cfg.Auth.PasswordMinLength),
		logger,
		auth.WithTransactions(db),
		auth.WithLastLoginUpdates(cfg.Auth.UpdateLastLogin),
	)
	app.authService = auth.NewService(credentials, app.tokenService, logger)

	app.gateway, err = nubapi.NewClient(nubapi.Config{
		VerifyURL:   cfg.Upstream.VerifyURL,
		BankListURL: cfg.Upstream.BankListURL,
		APIKey:      cfg.Upstream.APIKey,
		Timeout:     cfg.Upstream.Timeout(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize verification client: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP and purges the token blacklist in the background until ctx
// is cancelled, then shuts both down and releases resources.
func (app *application) Run(ctx context.Context) error {
	router := newRouter(routerDeps{
		auth:            app.authService,
		tokens:          app.tokenService,
		gateway:         app.gateway,
		accounts:        app.accountStore,
		db:              app.db,
		allowedOrigins:  app.config.Server.AllowedOrigins,
		protectAccounts: app.config.Auth.ProtectAccountRoutes,
		logger:          app.logger,
	})

	purgeCtx, stopPurge := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runBlacklistPurge(purgeCtx, app.tokenService, blacklistPurgeInterval, app.logger)
	}()

	err := app.startHTTPServer(ctx, router)

	stopPurge()
	wg.Wait()
	app.cleanup()

	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
