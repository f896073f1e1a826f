package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Статусы обращения к поставщику
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics метрики сервиса каталога для Prometheus
type Metrics struct {
	SupplierRequests *prometheus.CounterVec
	SupplierDuration *prometheus.HistogramVec
	MergedProducts   prometheus.Gauge
	SkippedItems     *prometheus.CounterVec

	HTTPDurations  *prometheus.HistogramVec
	HTTPRequests   *prometheus.CounterVec
	ActiveRequests prometheus.Gauge

	CacheOperations *prometheus.CounterVec
}

// New регистрирует метрики в указанном реестре
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SupplierRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "supplier_requests_total",
			Help: "Количество обращений к API поставщиков",
		}, []string{"provider", "status"}),

		SupplierDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supplier_request_duration_seconds",
			Help:    "Длительность обращений к API поставщиков",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),

		MergedProducts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_merged_products",
			Help: "Количество товаров после последнего объединения каталогов",
		}),

		SkippedItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_skipped_items_total",
			Help: "Количество отброшенных записей поставщиков",
		}, []string{"provider", "reason"}),

		HTTPDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_durations_seconds",
			Help:    "Длительность HTTP запросов",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method", "status"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		}, []string{"path", "method", "status"}),

		ActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Количество активных HTTP запросов",
		}),

		CacheOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Количество операций с кэшем",
		}, []string{"operation", "status"}),
	}
}

// NewNop метрики в отдельном реестре, который никто не читает. Для тестов
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveSupplier учитывает одно обращение к поставщику
func (m *Metrics) ObserveSupplier(provider string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.SupplierRequests.WithLabelValues(provider, status).Inc()
	m.SupplierDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

// SkipItem учитывает запись поставщика, которую не удалось разобрать
func (m *Metrics) SkipItem(provider, reason string) {
	if m == nil {
		return
	}
	m.SkippedItems.WithLabelValues(provider, reason).Inc()
}

// SetMergedProducts запоминает размер последнего объединенного каталога
func (m *Metrics) SetMergedProducts(n int) {
	if m == nil {
		return
	}
	m.MergedProducts.Set(float64(n))
}

// CacheOperation учитывает операцию с кэшем каталога
func (m *Metrics) CacheOperation(operation, status string) {
	if m == nil {
		return
	}
	m.CacheOperations.WithLabelValues(operation, status).Inc()
}
