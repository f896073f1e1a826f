package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// CatalogHandler обработчик запросов каталога
type CatalogHandler struct {
	catalogService services.CatalogServiceInterface
	logger         interfaces.LoggerPort
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService services.CatalogServiceInterface, logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// response представляет структуру успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// listMeta метаданные страницы каталога
type listMeta struct {
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	Total      int                     `json:"total"`
	TotalPages int                     `json:"totalPages"`
	Providers  []models.ProviderStatus `json:"providers"`
}

// ListProducts обрабатывает запрос на получение страницы объединенного каталога
// @Summary Страница объединенного каталога
// @Tags products
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(12)
// @Param search query string false "Поиск по SKU, названию, бренду и модели"
// @Param brand query string false "Бренд"
// @Param model query string false "Модель автомобиля"
// @Param yearFrom query int false "Год совместимости от"
// @Param yearTo query int false "Год совместимости до"
// @Success 200 {object} response{data=[]models.ProductSummary,meta=listMeta}
// @Failure 500 {object} errorResponse
// @Failure 504 {object} errorResponse
// @Router /products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	// 0 означает лимит по умолчанию
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 {
		limit = 0
	}

	filters := parseFilters(query)

	result, err := h.catalogService.ListProducts(r.Context(), page, limit, filters)
	if err != nil {
		h.writeError(w, r, err, "Ошибка получения каталога")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    result.Items,
		Meta: listMeta{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
			Providers:  result.Providers,
		},
	})
}

// GetProduct обрабатывает запрос на получение товара по SKU
// @Summary Товар по SKU
// @Tags products
// @Produce json
// @Param sku path string true "SKU товара"
// @Success 200 {object} response{data=models.ProductSummary}
// @Failure 404 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /products/{sku} [get]
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	sku, ok := h.skuParam(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.LookupBySKU(r.Context(), sku)
	if err != nil {
		h.writeError(w, r, err, "Ошибка поиска товара")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    product,
	})
}

// GetProductDetail обрабатывает запрос на получение карточки товара
// @Summary Карточка товара с описанием и характеристиками
// @Tags products
// @Produce json
// @Param sku path string true "SKU товара"
// @Success 200 {object} response{data=models.ProductDetail}
// @Failure 404 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /products/{sku}/detail [get]
func (h *CatalogHandler) GetProductDetail(w http.ResponseWriter, r *http.Request) {
	sku, ok := h.skuParam(w, r)
	if !ok {
		return
	}

	detail, err := h.catalogService.GetProductDetail(r.Context(), sku)
	if err != nil {
		h.writeError(w, r, err, "Ошибка получения карточки товара")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    detail,
	})
}

// InvalidateCache обрабатывает запрос на очистку кэша каталога
// @Summary Очистка кэша каталога
// @Tags catalog
// @Produce json
// @Success 200 {object} response
// @Failure 500 {object} errorResponse
// @Router /catalog/cache/invalidate [post]
func (h *CatalogHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.InvalidateCache(r.Context()); err != nil {
		h.writeError(w, r, err, "Ошибка очистки кэша")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    map[string]string{"message": "Кэш каталога очищен"},
	})
}

// skuParam достает SKU из пути. chi отдает сегмент из RawPath
// без раскодирования, только если RawPath задан
func (h *CatalogHandler) skuParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	sku := chi.URLParam(r, "sku")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(sku); err == nil {
			sku = decoded
		}
	}

	if strings.TrimSpace(sku) == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "SKU не указан",
		})
		return "", false
	}
	return sku, true
}

// writeError переводит ошибку сервиса в HTTP ответ
func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{
			Error:   "not_found",
			Code:    http.StatusNotFound,
			Message: "Товар не найден",
		})

	case errors.Is(err, services.ErrSuppliersUnavailable):
		h.logger.WarnWithContext(r.Context(), message,
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errorResponse{
			Error:   "suppliers_unavailable",
			Code:    http.StatusServiceUnavailable,
			Message: "Поставщики недоступны",
		})

	case errors.Is(err, context.DeadlineExceeded):
		h.logger.WarnWithContext(r.Context(), message,
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusGatewayTimeout)
		render.JSON(w, r, errorResponse{
			Error:   "timeout",
			Code:    http.StatusGatewayTimeout,
			Message: "Превышено время ожидания поставщиков",
		})

	default:
		h.logger.ErrorWithContext(r.Context(), message,
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: message,
		})
	}
}

// parseFilters собирает фильтры из строки запроса. Нечисловые годы игнорируются
func parseFilters(query url.Values) *models.CatalogFilters {
	filters := &models.CatalogFilters{
		Search: query.Get("search"),
		Brand:  query.Get("brand"),
		Model:  query.Get("model"),
	}

	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("yearFrom"))); err == nil {
		filters.YearFrom = &v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("yearTo"))); err == nil {
		filters.YearTo = &v
	}

	if filters.IsEmpty() {
		return nil
	}
	return filters
}
