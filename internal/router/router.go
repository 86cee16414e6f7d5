package router

import (
	"net/http"

	"poe-item-bank/internal/handler"
	"poe-item-bank/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	AuthHandler      *handler.AuthHandler
	BankHandler      *handler.BankHandler
	DepositHandler   *handler.DepositHandler
	AdminHandler     *handler.AdminHandler
	EditorMiddleware func(http.Handler) http.Handler
}

// New creates and configures the HTTP router. Read/display routes are
// public; every mutating route sits behind the editor middleware.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Session-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/status", cfg.Handler.Status)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.Handler.Health)
		r.Get("/ready", cfg.Handler.Ready)

		// Public read side
		r.Get("/bank/overview", cfg.BankHandler.Overview)
		r.Get("/bank/targets", cfg.BankHandler.Targets)
		r.Get("/bank/deposits", cfg.BankHandler.Deposits)

		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Editor-gated mutations
		r.Group(func(r chi.Router) {
			r.Use(cfg.EditorMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/session", cfg.AuthHandler.Session)

			r.Post("/bank/deposits", cfg.DepositHandler.Submit)
			r.Delete("/bank/deposits", cfg.DepositHandler.Delete)
			r.Get("/bank/pending", cfg.DepositHandler.Pending)
			r.Post("/bank/pending/{index}/confirm", cfg.DepositHandler.Confirm)
			r.Post("/bank/pending/{index}/decline", cfg.DepositHandler.Decline)

			r.Put("/admin/config", cfg.AdminHandler.UpdateConfig)
			r.Get("/admin/logs", cfg.AdminHandler.Logs)
			r.Get("/admin/stats", cfg.AdminHandler.Stats)
		})
	})

	return r
}
