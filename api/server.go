/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/users/*          Users, holidays, time off, windows
  /api/generate         Full generation run
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/travelwindows/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures cross-origin access and the metrics source.
type RouterOptions struct {
	AllowedOrigins []string
	// Gatherer backs /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/holidays", h.ListHolidays)
				r.Post("/holidays", h.CreateHoliday)
				r.Post("/holidays/defaults", h.AddDefaultHolidays)
				r.Delete("/holidays/{date}", h.DeleteHoliday)

				r.Get("/time-off", h.GetTimeOff)
				r.Put("/time-off", h.SetTimeOff)

				r.Get("/windows", h.ListWindows)
				r.Delete("/windows", h.DeleteWindows)
				r.Post("/windows/preview", h.PreviewWindows)
				r.Post("/windows/generate", h.GenerateWindows)
			})
		})

		r.Post("/generate", h.RunGeneration)
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
