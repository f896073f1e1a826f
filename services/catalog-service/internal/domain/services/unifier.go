package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/suppliers"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
	"github.com/sourcegraph/conc/iter"
)

// CatalogSource источник объединенного каталога
type CatalogSource interface {
	FetchUnifiedCatalog(ctx context.Context, page, limit int, filters *models.CatalogFilters) (*models.UnifiedCatalog, error)
	FetchProductDetail(ctx context.Context, sku string) (*models.ProductDetail, []models.ProviderStatus, error)
}

// Unifier опрашивает всех поставщиков параллельно и объединяет ответы по SKU
type Unifier struct {
	suppliers     []suppliers.Supplier
	logger        interfaces.LoggerPort
	metrics       *metrics.Metrics
	mergeBlankSKU bool
}

// UnifierOption настройка Unifier
type UnifierOption func(*Unifier)

// WithMergeBlankSKU включает объединение товаров с пустым SKU в одну запись.
// По умолчанию такие товары отбрасываются.
func WithMergeBlankSKU(enabled bool) UnifierOption {
	return func(u *Unifier) {
		u.mergeBlankSKU = enabled
	}
}

// NewUnifier создает Unifier. Порядок поставщиков определяет приоритет при объединении
func NewUnifier(list []suppliers.Supplier, logger interfaces.LoggerPort, m *metrics.Metrics, opts ...UnifierOption) *Unifier {
	u := &Unifier{
		suppliers: list,
		logger:    logger,
		metrics:   m,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

var _ CatalogSource = (*Unifier)(nil)

// settled результат вызова одного поставщика
type settled[T any] struct {
	value T
	err   error
}

// fanOut вызывает fn для каждого поставщика в своей горутине и дожидается всех.
// Результаты лежат в порядке поставщиков, а не в порядке ответов.
func fanOut[T any](list []suppliers.Supplier, fn func(suppliers.Supplier) (T, error)) []settled[T] {
	// по горутине на поставщика независимо от GOMAXPROCS
	mapper := iter.Mapper[suppliers.Supplier, settled[T]]{MaxGoroutines: len(list)}
	return mapper.Map(list, func(s *suppliers.Supplier) (res settled[T]) {
		defer func() {
			if r := recover(); r != nil {
				res = settled[T]{err: fmt.Errorf("panic in supplier %s: %v", (*s).ID(), r)}
			}
		}()
		value, err := fn(*s)
		return settled[T]{value: value, err: err}
	})
}

// FetchUnifiedCatalog запрашивает у всех поставщиков одну и ту же страницу,
// объединяет товары по SKU и применяет фильтры.
// Недоступный поставщик не приводит к ошибке: его статус попадает в Providers.
// Ошибка возвращается, только если контекст запроса завершен.
func (u *Unifier) FetchUnifiedCatalog(ctx context.Context, page, limit int, filters *models.CatalogFilters) (*models.UnifiedCatalog, error) {
	results := fanOut(u.suppliers, func(s suppliers.Supplier) ([]models.ProductSummary, error) {
		return s.FetchCatalog(ctx, page, limit)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	statuses := make([]models.ProviderStatus, 0, len(results))
	merged := newMerger()

	for i, res := range results {
		id := u.suppliers[i].ID()
		if res.err != nil {
			u.logger.WarnWithContext(ctx, "Поставщик недоступен",
				interfaces.LogField{Key: "provider", Value: string(id)},
				interfaces.LogField{Key: "error", Value: res.err.Error()},
			)
			statuses = append(statuses, models.ProviderStatus{Provider: id, Error: res.err.Error()})
			continue
		}

		statuses = append(statuses, models.ProviderStatus{Provider: id, OK: true, Products: len(res.value)})
		for j := range res.value {
			if !u.mergeBlankSKU && strings.TrimSpace(res.value[j].SKU) == "" {
				u.metrics.SkipItem(string(id), "blank_sku")
				continue
			}
			merged.add(&res.value[j])
		}
	}

	products := merged.products
	if !filters.IsEmpty() {
		filtered := make([]models.ProductSummary, 0, len(products))
		for i := range products {
			if filters.Matches(&products[i]) {
				filtered = append(filtered, products[i])
			}
		}
		products = filtered
	}

	u.metrics.SetMergedProducts(len(products))

	u.logger.DebugWithContext(ctx, "Каталоги объединены",
		interfaces.LogField{Key: "products", Value: len(products)},
		interfaces.LogField{Key: "filters", Value: filters.ToMap()},
	)

	return &models.UnifiedCatalog{Products: products, Providers: statuses}, nil
}

// FetchProductDetail ищет товар у всех поставщиков параллельно.
// Карточка берется у первого поставщика по приоритету, предложения остальных добавляются к ней,
// описание и характеристики берутся у первого поставщика, который их отдал.
// Если товар не найден, возвращается nil без ошибки.
func (u *Unifier) FetchProductDetail(ctx context.Context, sku string) (*models.ProductDetail, []models.ProviderStatus, error) {
	results := fanOut(u.suppliers, func(s suppliers.Supplier) (*models.ProductDetail, error) {
		return s.FetchBySKU(ctx, sku)
	})

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	statuses := make([]models.ProviderStatus, 0, len(results))
	var detail *models.ProductDetail

	for i, res := range results {
		id := u.suppliers[i].ID()
		if res.err != nil {
			u.logger.WarnWithContext(ctx, "Поставщик недоступен",
				interfaces.LogField{Key: "provider", Value: string(id)},
				interfaces.LogField{Key: "sku", Value: sku},
				interfaces.LogField{Key: "error", Value: res.err.Error()},
			)
			statuses = append(statuses, models.ProviderStatus{Provider: id, Error: res.err.Error()})
			continue
		}

		found := res.value
		status := models.ProviderStatus{Provider: id, OK: true}
		if found != nil {
			status.Products = 1
		}
		statuses = append(statuses, status)

		if found == nil {
			continue
		}
		if detail == nil {
			seed := *found
			seed.Offers = append([]models.ProviderOffer(nil), found.Offers...)
			detail = &seed
			continue
		}

		detail.Offers = append(detail.Offers, found.Offers...)
		if detail.Description == nil {
			detail.Description = found.Description
		}
		if len(detail.Specs) == 0 {
			detail.Specs = found.Specs
		}
	}

	return detail, statuses, nil
}

// merger объединяет товары по SKU с сохранением порядка первого появления
type merger struct {
	index    map[string]int
	products []models.ProductSummary
}

func newMerger() *merger {
	return &merger{index: make(map[string]int)}
}

// add добавляет товар. Первая запись с SKU задает все поля,
// следующие только добавляют свои предложения.
func (m *merger) add(p *models.ProductSummary) {
	if i, ok := m.index[p.SKU]; ok {
		m.products[i].Offers = append(m.products[i].Offers, p.Offers...)
		return
	}

	entry := *p
	entry.Offers = append([]models.ProviderOffer(nil), p.Offers...)
	m.index[p.SKU] = len(m.products)
	m.products = append(m.products, entry)
}
