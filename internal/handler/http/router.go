package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vipioko/vaxdog-commerce/pkg/health"
	"github.com/vipioko/vaxdog-commerce/pkg/middleware"
)

// RouterConfig carries the wiring the router needs beyond the handlers.
type RouterConfig struct {
	ServiceName    string
	Environment    string
	Logger         *slog.Logger
	Health         *health.Handler
	RequestTimeout time.Duration
	CORSOrigins    []string
	PprofCIDRs     []string
}

// NewRouter assembles the HTTP surface: operational endpoints at the root
// and the session-scoped commerce API under /api/v1.
func NewRouter(cfg RouterConfig, cart *CartHandler, wishlist *WishlistHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(CORS(CORSConfig{AllowedOrigins: cfg.CORSOrigins, Environment: cfg.Environment}))
		r.Use(ContentTypeJSON)
		r.Use(RequireSessionID)
		cart.RegisterRoutes(r)
		wishlist.RegisterRoutes(r)
	})

	return r
}
