package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"phishguard/metrics"
)

// NewRouter wires the API routes. metricsHandler serves /metrics.
func NewRouter(h *Handler, m *metrics.Metrics, metricsHandler http.Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)
	r.Use(instrument(m))

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(cors)
		r.Post("/check_url", h.CheckURL)
		r.Post("/features", h.Features)
		r.Options("/check_url", func(http.ResponseWriter, *http.Request) {})
		r.Options("/features", func(http.ResponseWriter, *http.Request) {})
	})

	return r
}
