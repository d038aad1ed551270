/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request counters and latency
  5. RateLimit:  Token bucket over all requests (x/time/rate)
  6. CORS:       Cross-origin requests for a frontend

ROUTE GROUPS:
  /healthz        Liveness probe
  /metrics        Prometheus scrape endpoint
  /api/customers  Customers and their invoices

SECURITY NOTE:
  No authentication middleware. All endpoints are public and read-only.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowedOrigins     []string
	RateLimitPerSecond int
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(instrument)
	r.Use(rateLimit(opts.RateLimitPerSecond))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Get("/{id}", h.GetCustomer)
			r.Get("/{id}/invoices/{year}/{month}", h.GetInvoice)
			r.Get("/{id}/invoices/{year}/{month}/report", h.GetInvoiceReport)
		})
	})

	return r
}
