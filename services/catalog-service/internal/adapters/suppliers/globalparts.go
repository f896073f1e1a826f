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

type globalPartsVehicle struct {
	YearRange struct {
		StartYear Number `json:"StartYear"`
		EndYear   Number `json:"EndYear"`
	} `json:"YearRange"`
}

// globalPartsItem запись каталога GlobalParts
type globalPartsItem struct {
	ItemHeader struct {
		ExternalReferences struct {
			SKU struct {
				Value Text `json:"Value"`
			} `json:"SKU"`
		} `json:"ExternalReferences"`
	} `json:"ItemHeader"`

	ProductDetails struct {
		NameInfo struct {
			DisplayName Text `json:"DisplayName"`
			ShortName   Text `json:"ShortName"`
		} `json:"NameInfo"`
		BrandInfo struct {
			BrandName Text `json:"BrandName"`
		} `json:"BrandInfo"`
		CategoryInfo struct {
			PrimaryCategory struct {
				Name Text `json:"Name"`
			} `json:"PrimaryCategory"`
		} `json:"CategoryInfo"`
		Description struct {
			FullText Text `json:"FullText"`
		} `json:"Description"`
	} `json:"ProductDetails"`

	PricingInfo struct {
		ListPrice struct {
			Amount       Number `json:"Amount"`
			CurrencyCode Text   `json:"CurrencyCode"`
		} `json:"ListPrice"`
	} `json:"PricingInfo"`

	AvailabilityInfo struct {
		QuantityInfo struct {
			AvailableQuantity Number `json:"AvailableQuantity"`
		} `json:"QuantityInfo"`
	} `json:"AvailabilityInfo"`

	MediaAssets struct {
		Images List[struct {
			ImageURL Text `json:"ImageUrl"`
		}] `json:"Images"`
	} `json:"MediaAssets"`

	VehicleCompatibility struct {
		CompatibleVehicles List[globalPartsVehicle] `json:"CompatibleVehicles"`
	} `json:"VehicleCompatibility"`
}

// GlobalParts адаптер поставщика GlobalParts
type GlobalParts struct {
	base
}

// NewGlobalParts создает адаптер GlobalParts
func NewGlobalParts(client transport.Getter, logger interfaces.LoggerPort, m *metrics.Metrics) *GlobalParts {
	return &GlobalParts{base: newBase(models.ProviderGlobalParts, client, logger, m)}
}

// FetchCatalog запрашивает страницу каталога GlobalParts
func (g *GlobalParts) FetchCatalog(ctx context.Context, page, limit int) ([]models.ProductSummary, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("itemsPerPage", strconv.Itoa(limit))

	raw, err := g.fetch(ctx, "/api/globalparts/inventory/catalog?"+query.Encode())
	if err != nil {
		return nil, err
	}

	container := dig(raw, "ResponseEnvelope", "Body", "CatalogListing", "Items")
	items := decodeItems[globalPartsItem](&g.base, container)
	fetchedAt := g.now()

	products := make([]models.ProductSummary, 0, len(items))
	for i := range items {
		products = append(products, g.toSummary(&items[i], fetchedAt))
	}
	return products, nil
}

// FetchBySKU ищет товар по номеру детали
func (g *GlobalParts) FetchBySKU(ctx context.Context, sku string) (*models.ProductDetail, error) {
	query := url.Values{}
	query.Set("partNumber", sku)

	raw, err := g.fetch(ctx, "/api/globalparts/inventory/search?"+query.Encode())
	if err != nil {
		return nil, err
	}

	container := dig(raw, "ResponseEnvelope", "Body", "SearchResults", "Items")
	items := decodeItems[globalPartsItem](&g.base, container)
	if len(items) == 0 {
		return nil, nil
	}

	item := &items[0]
	return &models.ProductDetail{
		ProductSummary: g.toSummary(item, g.now()),
		Description:    item.ProductDetails.Description.FullText.Ptr(),
	}, nil
}

func (g *GlobalParts) toSummary(item *globalPartsItem, fetchedAt time.Time) models.ProductSummary {
	details := &item.ProductDetails

	// Полное название приоритетнее короткого
	name := details.NameInfo.DisplayName
	if !name.Valid() {
		name = details.NameInfo.ShortName
	}

	var yearFrom, yearTo *int
	if vehicle, ok := item.VehicleCompatibility.CompatibleVehicles.First(); ok {
		yearFrom, yearTo = yearsFromRange(vehicle.YearRange.StartYear, vehicle.YearRange.EndYear)
	}

	var thumbnail *string
	if img, ok := item.MediaAssets.Images.First(); ok {
		thumbnail = img.ImageURL.Ptr()
	}

	price := &item.PricingInfo.ListPrice
	return models.ProductSummary{
		SKU:          item.ItemHeader.ExternalReferences.SKU.Value.String(),
		Name:         name.String(),
		Brand:        details.BrandInfo.BrandName.Ptr(),
		Model:        details.CategoryInfo.PrimaryCategory.Name.Ptr(),
		YearFrom:     yearFrom,
		YearTo:       yearTo,
		ThumbnailURL: thumbnail,
		Offers: []models.ProviderOffer{
			g.offer(price.Amount, price.CurrencyCode, item.AvailabilityInfo.QuantityInfo.AvailableQuantity, fetchedAt),
		},
	}
}
