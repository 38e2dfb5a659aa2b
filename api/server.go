/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the form frontend

SECURITY NOTE:
  No authentication middleware. The system this replaces had a
  placeholder credential check; a real auth model is out of scope.
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
		r.Route("/movements", func(r chi.Router) {
			r.Post("/", h.RecordMovement)
			r.Get("/", h.ListMovements)
		})

		r.Get("/stock", h.GetStock)

		r.Route("/clients/{id}", func(r chi.Router) {
			r.Get("/statement", h.GetStatement)
			r.Get("/statement.pdf", h.GetStatementPDF)
		})

		r.Get("/export/movements.xlsx", h.ExportWorkbook)
		r.Get("/catalog/products", h.ListProducts)
	})

	return r
}
