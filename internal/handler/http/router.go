package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maticamisay/eldisco-ecommerce/internal/service"
	"github.com/maticamisay/eldisco-ecommerce/pkg/health"
	"github.com/maticamisay/eldisco-ecommerce/pkg/middleware"
)

// ServiceName labels metrics and traces.
const ServiceName = "catalog"

// Services bundles what the router exposes.
type Services struct {
	Products   *service.ProductService
	Categories *service.CategoryService
	Brands     *service.BrandService
	Images     ImageResolver
}

// RouterConfig holds the HTTP-surface settings.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	RateLimiter       *middleware.RateLimiter
	PprofAllowedCIDRs []string
	// CacheMaxAge is the public max-age of catalog responses, in seconds.
	CacheMaxAge int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svc Services,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	productHandler := NewProductHandler(svc.Products, logger)
	catalogHandler := NewCatalogHandler(svc.Categories, svc.Brands, logger)
	imageHandler := NewImageHandler(svc.Images, logger)

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CacheMaxAge))

			r.Get("/products", productHandler.ListProducts)
			r.Get("/products/{codigo}", productHandler.GetProduct)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/categories/{slug}", catalogHandler.GetCategory)
			r.Get("/brands", catalogHandler.ListBrands)
		})

		r.Get("/images", imageHandler.ListImages)
		r.Get("/images/{filename}", imageHandler.GetImageURL)
	})

	return r
}
