package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/cameras", func(r chi.Router) {
				r.Get("/", s.handleListCameras)

				r.Route("/{serial}", func(r chi.Router) {
					r.Get("/", s.handleGetCamera)
					r.Post("/commands", s.handleCameraCommand)
				})
			})

			r.Get("/audit", s.handleListAudit)
		})
	})

	return r
}

// handleHealth returns the bridge health. A bridge that has lost the broker
// or the cloud reports 503 so load balancers and probes can react.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := s.cameras.HealthStatus()
	status := http.StatusOK
	if h.Status == eufy.HealthDegraded || h.Status == eufy.HealthOffline {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h)
}
