package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/athebyme/autoparts-catalog/pkg/errors"
	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/pkg/utils"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
)

const cacheKeyPrefix = "catalog:"

// CatalogServiceInterface операции каталога, доступные обработчикам HTTP
type CatalogServiceInterface interface {
	ListProducts(ctx context.Context, page, limit int, filters *models.CatalogFilters) (*models.CatalogPage, error)
	LookupBySKU(ctx context.Context, sku string) (*models.ProductSummary, error)
	GetProductDetail(ctx context.Context, sku string) (*models.ProductDetail, error)
	InvalidateCache(ctx context.Context) error
}

// EventPublisher публикует события объединения каталогов
type EventPublisher interface {
	CatalogFetched(ctx context.Context, catalog *models.UnifiedCatalog, filters map[string]string) error
}

// Options параметры выборки каталога
type Options struct {
	ListBatchSize   int // сколько объединенных товаров участвует в пагинации
	LookupBatchSize int // сколько товаров просматривается при поиске по SKU
	DefaultLimit    int
	MaxLimit        int
	CacheTTL        time.Duration
}

// CatalogService фасад каталога: пагинация и поиск поверх объединенного каталога
type CatalogService struct {
	source  CatalogSource
	cache   interfaces.CachePort
	events  EventPublisher
	logger  interfaces.LoggerPort
	metrics *metrics.Metrics
	opts    Options
}

// NewCatalogService создает фасад каталога. cache и events могут быть nil
func NewCatalogService(
	source CatalogSource,
	cache interfaces.CachePort,
	events EventPublisher,
	logger interfaces.LoggerPort,
	m *metrics.Metrics,
	opts Options,
) *CatalogService {
	if opts.ListBatchSize < 1 {
		opts.ListBatchSize = 500
	}
	if opts.LookupBatchSize < 1 {
		opts.LookupBatchSize = 200
	}
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = 12
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}

	return &CatalogService{
		source:  source,
		cache:   cache,
		events:  events,
		logger:  logger,
		metrics: m,
		opts:    opts,
	}
}

var _ CatalogServiceInterface = (*CatalogService)(nil)

// ListProducts возвращает страницу объединенного каталога.
// Пагинация выполняется в памяти по первым ListBatchSize объединенным товарам,
// номер страницы прижимается к диапазону [1, TotalPages].
func (s *CatalogService) ListProducts(ctx context.Context, page, limit int, filters *models.CatalogFilters) (*models.CatalogPage, error) {
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}

	catalog, err := s.unified(ctx, s.opts.ListBatchSize, filters)
	if err != nil {
		return nil, err
	}

	products := catalog.Products
	if len(products) > s.opts.ListBatchSize {
		products = products[:s.opts.ListBatchSize]
	}

	p := utils.NewPagination(page, limit, s.opts.DefaultLimit)
	items := utils.Paginate(products, p)

	return &models.CatalogPage{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		Providers:  catalog.Providers,
	}, nil
}

// LookupBySKU ищет товар по точному SKU среди первых LookupBatchSize объединенных товаров
func (s *CatalogService) LookupBySKU(ctx context.Context, sku string) (*models.ProductSummary, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, ErrProductNotFound
	}

	catalog, err := s.unified(ctx, s.opts.LookupBatchSize, nil)
	if err != nil {
		return nil, err
	}

	for i := range catalog.Products {
		if catalog.Products[i].SKU == sku {
			product := catalog.Products[i]
			return &product, nil
		}
	}

	if catalog.AllProvidersFailed() {
		return nil, ErrSuppliersUnavailable
	}
	return nil, ErrProductNotFound
}

// GetProductDetail возвращает карточку товара, собранную из ответов всех поставщиков
func (s *CatalogService) GetProductDetail(ctx context.Context, sku string) (*models.ProductDetail, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, ErrProductNotFound
	}

	detail, statuses, err := s.source.FetchProductDetail(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product detail: %w", err)
	}

	if detail == nil {
		if (&models.UnifiedCatalog{Providers: statuses}).AllProvidersFailed() {
			return nil, ErrSuppliersUnavailable
		}
		return nil, ErrProductNotFound
	}

	return detail, nil
}

// InvalidateCache удаляет все снимки каталога из кэша
func (s *CatalogService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeleteByPattern(ctx, cacheKeyPrefix+"*"); err != nil {
		s.metrics.CacheOperation("invalidate", "error")
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	s.metrics.CacheOperation("invalidate", "ok")
	s.logger.InfoWithContext(ctx, "Кэш каталога очищен")
	return nil
}

// Refresh заново запрашивает каталог без фильтров и перезаписывает снимки в кэше
// для пагинации и поиска по SKU. События не публикуются
func (s *CatalogService) Refresh(ctx context.Context) error {
	batches := []int{s.opts.ListBatchSize}
	if s.opts.LookupBatchSize != s.opts.ListBatchSize {
		batches = append(batches, s.opts.LookupBatchSize)
	}

	for _, batch := range batches {
		catalog, err := s.source.FetchUnifiedCatalog(ctx, 1, batch, nil)
		if err != nil {
			s.metrics.CacheOperation("refresh", "error")
			return fmt.Errorf("failed to refresh catalog snapshot: %w", err)
		}
		if catalog.AllProvidersFailed() {
			s.logger.ErrorWithContext(ctx, "Ни один поставщик не ответил",
				interfaces.LogField{Key: "batch", Value: batch})
		}
		s.toCache(ctx, cacheKey(batch, nil), catalog)
	}

	s.metrics.CacheOperation("refresh", "ok")
	return nil
}

// unified возвращает объединенный каталог из кэша или от поставщиков
func (s *CatalogService) unified(ctx context.Context, batch int, filters *models.CatalogFilters) (*models.UnifiedCatalog, error) {
	key := cacheKey(batch, filters)

	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	catalog, err := s.source.FetchUnifiedCatalog(ctx, 1, batch, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unified catalog: %w", err)
	}

	if catalog.AllProvidersFailed() {
		s.logger.ErrorWithContext(ctx, "Ни один поставщик не ответил")
	}

	s.toCache(ctx, key, catalog)
	s.publish(ctx, catalog, filters)

	return catalog, nil
}

func (s *CatalogService) fromCache(ctx context.Context, key string) *models.UnifiedCatalog {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrCacheMiss) {
			s.metrics.CacheOperation("get", "miss")
		} else {
			s.metrics.CacheOperation("get", "error")
			s.logger.WarnWithContext(ctx, "Ошибка чтения кэша каталога",
				interfaces.LogField{Key: "key", Value: key},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
		return nil
	}

	var catalog models.UnifiedCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		s.metrics.CacheOperation("get", "error")
		return nil
	}
	s.metrics.CacheOperation("get", "hit")
	return &catalog
}

// toCache сохраняет только полный снимок: частичный ответ не должен переживать сбой поставщика
func (s *CatalogService) toCache(ctx context.Context, key string, catalog *models.UnifiedCatalog) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	for _, p := range catalog.Providers {
		if !p.OK {
			return
		}
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		s.metrics.CacheOperation("set", "error")
		s.logger.WarnWithContext(ctx, "Ошибка записи кэша каталога",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return
	}
	s.metrics.CacheOperation("set", "ok")
}

func (s *CatalogService) publish(ctx context.Context, catalog *models.UnifiedCatalog, filters *models.CatalogFilters) {
	if s.events == nil {
		return
	}
	if err := s.events.CatalogFetched(ctx, catalog, filters.ToMap()); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось опубликовать событие каталога",
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

// cacheKey строит ключ снимка из размера выборки и нормализованных фильтров
func cacheKey(batch int, filters *models.CatalogFilters) string {
	fm := filters.ToMap()
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(cacheKeyPrefix)
	b.WriteString(strconv.Itoa(batch))
	for _, k := range keys {
		b.WriteString(":")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fm[k])
	}
	return b.String()
}
