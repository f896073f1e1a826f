package api

import (
	"net/http"
	"time"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	_ "github.com/athebyme/autoparts-catalog/services/catalog-service/docs"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/api/handlers"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/api/middleware"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig параметры HTTP слоя
type RouterConfig struct {
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	// MetricsEndpoint путь для Prometheus; пустой путь или nil Gatherer отключают его
	MetricsEndpoint string
	Gatherer        prometheus.Gatherer
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(
	catalogService services.CatalogServiceInterface,
	logger interfaces.LoggerPort,
	m *metrics.Metrics,
	cfg RouterConfig,
) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if cfg.MetricsEndpoint != "" && cfg.Gatherer != nil {
		r.Method(http.MethodGet, cfg.MetricsEndpoint, promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger документация
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Маршруты для товаров
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{sku}", catalogHandler.GetProduct)
			r.Get("/{sku}/detail", catalogHandler.GetProductDetail)
		})

		r.Post("/catalog/cache/invalidate", catalogHandler.InvalidateCache)
	})

	return r
}
