/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/estimates      Draft task cost projection
  /api/completions    Reward application on task completion
  /api/ambassadors/*  Wallet and balance lookups
  /api/wallets/*      Ledger history and reconciliation

SECURITY NOTE:
  No authentication middleware. This surface sits behind the admin
  backend, which owns roles and permissions.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/estimates", h.Estimate)
		r.Post("/completions", h.Complete)

		r.Route("/ambassadors/{id}", func(r chi.Router) {
			r.Get("/wallets", h.ListWallets)
			r.Get("/wallets/{currency}", h.GetBalance)
		})

		r.Route("/wallets/{id}", func(r chi.Router) {
			r.Get("/entries", h.ListEntries)
			r.Post("/reconcile", h.Reconcile)
		})
	})

	return r
}
