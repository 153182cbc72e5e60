// Package httptransport is the thin HTTP layer over the broker façade. It
// parses and validates at the boundary, delegates to the broker, and
// translates domain errors to status codes. No business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pinksync/internal/broker"
	"pinksync/internal/platform/metrics"
	"pinksync/internal/platform/middleware"
)

// Handler holds the transport dependencies for every route.
type Handler struct {
	broker       *broker.Broker
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func NewHandler(
	b *broker.Broker,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
) *Handler {
	return &Handler{
		broker:       b,
		logger:       logger,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// NewRouter wires all public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.LatencyMiddleware(h.metrics))

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", h.handleSubmitEvent)
		r.Post("/events/batch", h.handleSubmitBatch)
		r.Get("/events/types", h.handleEventTypes)
		r.Get("/events/{appID}", h.handleListEvents)

		r.Post("/capabilities", h.handleDeclareCapability)
		r.Get("/capabilities", h.handleQueryCapabilities)

		r.Post("/subscribe", h.handleSubscribe)

		r.Get("/compliance/{appID}", h.handleGetCompliance)
		r.With(middleware.RequireAuth(h.jwtValidator, h.logger)).
			Post("/compliance/{appID}/violations", h.handleRecordViolation)
	})

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "pinksync-accessibility-broker",
		"version": "v1",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
