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

type repuestosMaxNamed struct {
	Nombre Text `json:"nombre"`
}

type repuestosMaxVehicle struct {
	Anios struct {
		Desde Number `json:"desde"`
		Hasta Number `json:"hasta"`
	} `json:"anios"`
}

// repuestosMaxItem запись каталога RepuestosMax
type repuestosMaxItem struct {
	Identificacion struct {
		SKU Text `json:"sku"`
	} `json:"identificacion"`

	InformacionBasica struct {
		Nombre      Text              `json:"nombre"`
		Marca       repuestosMaxNamed `json:"marca"`
		Categoria   repuestosMaxNamed `json:"categoria"`
		Descripcion Text              `json:"descripcion"`
	} `json:"informacionBasica"`

	Precio struct {
		Valor  Number `json:"valor"`
		Moneda Text   `json:"moneda"`
	} `json:"precio"`

	Inventario struct {
		Cantidad Number `json:"cantidad"`
	} `json:"inventario"`

	Multimedia struct {
		Imagenes List[struct {
			URL Text `json:"url"`
		}] `json:"imagenes"`
	} `json:"multimedia"`

	Compatibilidad struct {
		Vehiculos List[repuestosMaxVehicle] `json:"vehiculos"`
	} `json:"compatibilidad"`
}

// RepuestosMax адаптер поставщика RepuestosMax
type RepuestosMax struct {
	base
}

// NewRepuestosMax создает адаптер RepuestosMax
func NewRepuestosMax(client transport.Getter, logger interfaces.LoggerPort, m *metrics.Metrics) *RepuestosMax {
	return &RepuestosMax{base: newBase(models.ProviderRepuestosMax, client, logger, m)}
}

// FetchCatalog запрашивает страницу каталога RepuestosMax
func (r *RepuestosMax) FetchCatalog(ctx context.Context, page, limit int) ([]models.ProductSummary, error) {
	query := url.Values{}
	query.Set("pagina", strconv.Itoa(page))
	query.Set("limite", strconv.Itoa(limit))

	raw, err := r.fetch(ctx, "/api/repuestosmax/catalogo?"+query.Encode())
	if err != nil {
		return nil, err
	}

	items := decodeItems[repuestosMaxItem](&r.base, dig(raw, "productos"))
	fetchedAt := r.now()

	products := make([]models.ProductSummary, 0, len(items))
	for i := range items {
		products = append(products, r.toSummary(&items[i], fetchedAt))
	}
	return products, nil
}

// FetchBySKU ищет товар по коду. Поставщик принимает в codigo как SKU, так и OEM номер
func (r *RepuestosMax) FetchBySKU(ctx context.Context, sku string) (*models.ProductDetail, error) {
	query := url.Values{}
	query.Set("codigo", sku)

	raw, err := r.fetch(ctx, "/api/repuestosmax/productos?"+query.Encode())
	if err != nil {
		return nil, err
	}

	items := decodeItems[repuestosMaxItem](&r.base, dig(raw, "resultado", "productos"))
	if len(items) == 0 {
		return nil, nil
	}

	item := &items[0]
	return &models.ProductDetail{
		ProductSummary: r.toSummary(item, r.now()),
		Description:    item.InformacionBasica.Descripcion.Ptr(),
	}, nil
}

func (r *RepuestosMax) toSummary(item *repuestosMaxItem, fetchedAt time.Time) models.ProductSummary {
	var yearFrom, yearTo *int
	if vehicle, ok := item.Compatibilidad.Vehiculos.First(); ok {
		yearFrom, yearTo = yearsFromRange(vehicle.Anios.Desde, vehicle.Anios.Hasta)
	}

	var thumbnail *string
	if img, ok := item.Multimedia.Imagenes.First(); ok {
		thumbnail = img.URL.Ptr()
	}

	info := &item.InformacionBasica
	return models.ProductSummary{
		SKU:          item.Identificacion.SKU.String(),
		Name:         info.Nombre.String(),
		Brand:        info.Marca.Nombre.Ptr(),
		Model:        info.Categoria.Nombre.Ptr(),
		YearFrom:     yearFrom,
		YearTo:       yearTo,
		ThumbnailURL: thumbnail,
		Offers:       []models.ProviderOffer{r.offer(item.Precio.Valor, item.Precio.Moneda, item.Inventario.Cantidad, fetchedAt)},
	}
}
