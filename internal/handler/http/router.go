package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rodrigo-augusto/customer-api/docs"
	"github.com/rodrigo-augusto/customer-api/internal/service"
	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
	"github.com/rodrigo-augusto/customer-api/pkg/health"
	"github.com/rodrigo-augusto/customer-api/pkg/middleware"
)

const serviceName = "customer-api"

// NewRouter creates a chi router with all customer routes registered. The
// same handlers are served under the versioned /api/v1/customers prefix and
// the legacy /cliente prefix.
func NewRouter(
	customerService *service.CustomerService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// API documentation
	ui := docs.UIHandler("Customer API", "/swagger/doc.json")
	r.Method(http.MethodGet, "/swagger/doc.json", docs.SpecHandler())
	r.Method(http.MethodGet, "/swagger-ui", ui)
	r.Method(http.MethodGet, "/swagger-ui/*", ui)

	customerHandler := NewCustomerHandler(customerService, logger)
	r.Route("/api/v1/customers", customerRoutes(customerHandler, "products"))
	r.Route("/cliente", customerRoutes(customerHandler.Legacy(), "produto"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusNotFound, apperrors.CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}

func customerRoutes(h *CustomerHandler, productSegment string) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{email}", h.Update)
		r.Delete("/{email}", h.Delete)
		r.Put("/{email}/"+productSegment+"/{productId}", h.AddFavorite)
	}
}
