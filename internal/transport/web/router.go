package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/finpanel/internal/transport/web/handler"
	"github.com/kislikjeka/finpanel/internal/transport/web/middleware"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger              *logger.Logger
	AllowedOrigins      []string
	Sessions            *middleware.SessionStore
	AuthHandler         *handler.AuthHandler
	TransactionsHandler *handler.TransactionsHandler
	HealthHandler       *handler.HealthHandler
	RateLimit           func(http.Handler) http.Handler
}

// NewRouter creates the front-end router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	rateLimit := cfg.RateLimit
	if rateLimit == nil {
		rateLimit = middleware.RateLimit()
	}

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(rateLimit)

	// Health checks (no session)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.Middleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/transactions", http.StatusFound)
		})

		r.Get("/login", cfg.AuthHandler.GetLogin)
		r.Post("/login", cfg.AuthHandler.PostLogin)
		r.Post("/logout", cfg.AuthHandler.PostLogout)

		// JSON state for script clients
		r.With(middleware.RequireSignInJSON).Get("/transactions/state", cfg.TransactionsHandler.GetState)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSignIn("/login"))

			r.Get("/transactions", cfg.TransactionsHandler.GetPage)
			r.Post("/transactions/retry", cfg.TransactionsHandler.PostRetry)
			r.Post("/transactions/{id}/delete", cfg.TransactionsHandler.PostDelete)
		})
	})

	return r
}
