package suppliers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/transport"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
)

// Supplier адаптер одного поставщика: запрашивает его API и приводит ответ к общей модели
type Supplier interface {
	ID() models.ProviderID

	// FetchCatalog возвращает страницу каталога поставщика
	FetchCatalog(ctx context.Context, page, limit int) ([]models.ProductSummary, error)

	// FetchBySKU возвращает карточку товара или nil, nil, если поставщик его не знает
	FetchBySKU(ctx context.Context, sku string) (*models.ProductDetail, error)
}

// NewDefault создает адаптеры всех поставщиков в порядке приоритета при объединении
func NewDefault(client transport.Getter, logger interfaces.LoggerPort, m *metrics.Metrics) []Supplier {
	return []Supplier{
		NewAutoPartsPlus(client, logger, m),
		NewRepuestosMax(client, logger, m),
		NewGlobalParts(client, logger, m),
	}
}

// base общая часть адаптеров
type base struct {
	id      models.ProviderID
	client  transport.Getter
	logger  interfaces.LoggerPort
	metrics *metrics.Metrics
	now     func() time.Time
}

func newBase(id models.ProviderID, client transport.Getter, logger interfaces.LoggerPort, m *metrics.Metrics) base {
	return base{
		id:      id,
		client:  client,
		logger:  logger.WithField("provider", string(id)),
		metrics: m,
		now:     time.Now,
	}
}

func (b *base) ID() models.ProviderID {
	return b.id
}

// fetch выполняет запрос и возвращает сырое тело ответа
func (b *base) fetch(ctx context.Context, path string) (json.RawMessage, error) {
	started := time.Now()
	var raw json.RawMessage
	err := b.client.Get(ctx, path, &raw)
	b.metrics.ObserveSupplier(string(b.id), started, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.id, err)
	}
	return raw, nil
}

// offer собирает предложение поставщика со значениями по умолчанию
func (b *base) offer(price Number, currency Text, stock Number, fetchedAt time.Time) models.ProviderOffer {
	cur := currency.String()
	if strings.TrimSpace(cur) == "" {
		cur = models.DefaultCurrency
	}

	qty := 0
	if v, ok := stock.Int(); ok && v > 0 {
		qty = v
	}

	return models.ProviderOffer{
		Provider:    b.id,
		Price:       price.Float(0),
		Currency:    cur,
		Stock:       qty,
		LastUpdated: fetchedAt,
	}
}

// decodeItems разбирает массив записей поштучно.
// Отсутствующий контейнер, null или не массив дают пустой результат.
// Запись, которая не является объектом, пропускается.
func decodeItems[T any](b *base, container json.RawMessage) []T {
	var raws []json.RawMessage
	if err := json.Unmarshal(container, &raws); err != nil {
		return nil
	}

	items := make([]T, 0, len(raws))
	for i, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			b.skip(i, errors.New("item is not an object"))
			continue
		}

		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			// Поле неверного типа остается пустым, остальные поля разобраны
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				b.skip(i, err)
				continue
			}
		}
		items = append(items, item)
	}
	return items
}

func (b *base) skip(index int, err error) {
	b.logger.Warn("Пропущена некорректная запись поставщика",
		interfaces.LogField{Key: "index", Value: index},
		interfaces.LogField{Key: "error", Value: err.Error()},
	)
	b.metrics.SkipItem(string(b.id), "malformed")
}

// dig спускается по ключам вложенных объектов.
// Если на пути встретился не объект, возвращает nil.
func dig(raw json.RawMessage, path ...string) json.RawMessage {
	current := raw
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil || obj == nil {
			return nil
		}
		next, ok := obj[key]
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// isArray сообщает, что JSON значение является массивом
func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
