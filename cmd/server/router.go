package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/techbyhenry/acode-api/internal/api"
	apiMiddleware "github.com/techbyhenry/acode-api/internal/api/middleware"
	"github.com/techbyhenry/acode-api/internal/api/shared"
	"github.com/techbyhenry/acode-api/internal/store"
	"github.com/techbyhenry/acode-api/internal/verification"
)

// routerDeps is everything the HTTP surface needs. It is separate from
// application so the router can be built over in-memory stores in tests.
type routerDeps struct {
	auth            api.AuthService
	tokens          apiMiddleware.TokenValidator
	gateway         verification.Gateway
	accounts        store.AccountStore
	db              api.Pinger
	allowedOrigins  []string
	protectAccounts bool
	logger          *slog.Logger
}

// newRouter creates and configures the application router with all routes
// and middleware. Every route answers with and without a trailing slash.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(d.logger))
	r.Use(apiMiddleware.Recover)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, api.MsgInvalidRequestMethod)
	})

	authHandler := api.NewAuthHandler(d.auth)
	accountHandler := api.NewAccountHandler(d.gateway, d.accounts, d.logger)
	healthHandler := api.NewHealthHandler(d.db)

	r.Post("/signup", authHandler.Signup)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Post("/token/refresh", authHandler.Refresh)

	r.Group(func(r chi.Router) {
		if d.protectAccounts {
			r.Use(apiMiddleware.NewAuthMiddleware(d.tokens).Authenticate)
		}
		r.Post("/verify-account", accountHandler.VerifyAccount)
		r.Get("/get-bank-list", accountHandler.ListBanks)
		r.Post("/save-account", accountHandler.SaveAccount)
		r.Get("/accounts", accountHandler.ListAccounts)
	})

	r.Get("/health", healthHandler.Health)

	return r
}
