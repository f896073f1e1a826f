package suppliers

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/transport"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
)

// autoPartsPlusItem запись каталога AutoPartsPlus
type autoPartsPlusItem struct {
	SKU          Text       `json:"sku"`
	Title        Text       `json:"title"`
	BrandName    Text       `json:"brand_name"`
	CategoryName Text       `json:"category_name"`
	UnitPrice    Number     `json:"unit_price"`
	CurrencyCode Text       `json:"currency_code"`
	QtyAvailable Number     `json:"qty_available"`
	FitsVehicles List[Text] `json:"fits_vehicles"`
	SpecKeys     List[Text] `json:"spec_keys"`
	SpecValues   List[Text] `json:"spec_values"`
	ImgURLs      List[Text] `json:"img_urls"`
	Desc         Text       `json:"desc"`
}

// AutoPartsPlus адаптер поставщика AutoPartsPlus
type AutoPartsPlus struct {
	base
}

// NewAutoPartsPlus создает адаптер AutoPartsPlus
func NewAutoPartsPlus(client transport.Getter, logger interfaces.LoggerPort, m *metrics.Metrics) *AutoPartsPlus {
	return &AutoPartsPlus{base: newBase(models.ProviderAutoPartsPlus, client, logger, m)}
}

// FetchCatalog запрашивает страницу каталога AutoPartsPlus
func (a *AutoPartsPlus) FetchCatalog(ctx context.Context, page, limit int) ([]models.ProductSummary, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	raw, err := a.fetch(ctx, "/api/autopartsplus/catalog?"+query.Encode())
	if err != nil {
		return nil, err
	}

	items := decodeItems[autoPartsPlusItem](&a.base, a.parts(raw))
	fetchedAt := a.now()

	products := make([]models.ProductSummary, 0, len(items))
	for i := range items {
		products = append(products, a.toSummary(&items[i], fetchedAt))
	}
	return products, nil
}

// FetchBySKU ищет товар по SKU
func (a *AutoPartsPlus) FetchBySKU(ctx context.Context, sku string) (*models.ProductDetail, error) {
	query := url.Values{}
	query.Set("sku", sku)

	raw, err := a.fetch(ctx, "/api/autopartsplus/parts?"+query.Encode())
	if err != nil {
		return nil, err
	}

	items := decodeItems[autoPartsPlusItem](&a.base, a.parts(raw))
	if len(items) == 0 {
		return nil, nil
	}

	item := &items[0]
	return &models.ProductDetail{
		ProductSummary: a.toSummary(item, a.now()),
		Description:    item.Desc.Ptr(),
		Specs:          zipSpecs(item.SpecKeys, item.SpecValues),
	}, nil
}

// parts возвращает контейнер записей. Поставщик иногда отдает массив без обертки
func (a *AutoPartsPlus) parts(raw []byte) []byte {
	if isArray(raw) {
		return raw
	}
	return dig(raw, "parts")
}

func (a *AutoPartsPlus) toSummary(item *autoPartsPlusItem, fetchedAt time.Time) models.ProductSummary {
	yearFrom, yearTo := yearsFromFitment(item.FitsVehicles)

	var thumbnail *string
	if img, ok := item.ImgURLs.First(); ok {
		thumbnail = img.Ptr()
	}

	return models.ProductSummary{
		SKU:          item.SKU.String(),
		Name:         item.Title.String(),
		Brand:        item.BrandName.Ptr(),
		Model:        item.CategoryName.Ptr(),
		YearFrom:     yearFrom,
		YearTo:       yearTo,
		ThumbnailURL: thumbnail,
		Offers:       []models.ProviderOffer{a.offer(item.UnitPrice, item.CurrencyCode, item.QtyAvailable, fetchedAt)},
	}
}

// zipSpecs собирает характеристики из параллельных списков ключей и значений.
// Списки разной длины игнорируются целиком.
func zipSpecs(keys, values List[Text]) map[string]string {
	if len(keys) == 0 || len(keys) != len(values) {
		return nil
	}

	specs := make(map[string]string, len(keys))
	for i := range keys {
		if !keys[i].Valid() || !values[i].Valid() {
			continue
		}
		specs[keys[i].String()] = values[i].String()
	}
	if len(specs) == 0 {
		return nil
	}
	return specs
}
