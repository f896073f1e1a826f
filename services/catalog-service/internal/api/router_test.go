package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) ListProducts(ctx context.Context, page, limit int, filters *models.CatalogFilters) (*models.CatalogPage, error) {
	args := m.Called(ctx, page, limit, filters)
	result, _ := args.Get(0).(*models.CatalogPage)
	return result, args.Error(1)
}

func (m *mockCatalogService) LookupBySKU(ctx context.Context, sku string) (*models.ProductSummary, error) {
	args := m.Called(ctx, sku)
	result, _ := args.Get(0).(*models.ProductSummary)
	return result, args.Error(1)
}

func (m *mockCatalogService) GetProductDetail(ctx context.Context, sku string) (*models.ProductDetail, error) {
	args := m.Called(ctx, sku)
	result, _ := args.Get(0).(*models.ProductDetail)
	return result, args.Error(1)
}

func (m *mockCatalogService) InvalidateCache(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   string          `json:"error"`
	Code    int             `json:"code"`
}

func newTestRouter(svc services.CatalogServiceInterface) http.Handler {
	return SetupRouter(svc, logger.NewNopLogger(), metrics.NewNop(), RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		RequestTimeout:     time.Second,
		RateLimitRequests:  1000,
		RateLimitWindow:    time.Minute,
	})
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestListProducts(t *testing.T) {
	svc := &mockCatalogService{}
	year := 2010
	brand := "Bosch"
	svc.On("ListProducts", mock.Anything, 2, 5, &models.CatalogFilters{Brand: "Bosch", YearFrom: &year}).
		Return(&models.CatalogPage{
			Items:      []models.ProductSummary{{SKU: "F-1", Name: "Filtro", Brand: &brand, Offers: []models.ProviderOffer{}}},
			Page:       2,
			Limit:      5,
			Total:      6,
			TotalPages: 2,
			Providers:  []models.ProviderStatus{{Provider: models.ProviderAutoPartsPlus, OK: true, Products: 6}},
		}, nil)

	rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/v1/products?page=2&limit=5&brand=Bosch&yearFrom=2010&yearTo=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)

	var items []models.ProductSummary
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "F-1", items[0].SKU)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Meta, &meta))
	assert.EqualValues(t, 2, meta["page"])
	assert.EqualValues(t, 5, meta["limit"])
	assert.EqualValues(t, 6, meta["total"])
	assert.EqualValues(t, 2, meta["totalPages"])
	assert.Len(t, meta["providers"], 1)

	svc.AssertExpectations(t)
}

func TestListProductsInvalidParams(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("ListProducts", mock.Anything, 1, 0, (*models.CatalogFilters)(nil)).
		Return(&models.CatalogPage{Items: []models.ProductSummary{}, Page: 1, Limit: 12, TotalPages: 1}, nil)

	rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/v1/products?page=abc&limit=-4&yearFrom=x")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", string(body.Data))
	svc.AssertExpectations(t)
}

func TestGetProduct(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("LookupBySKU", mock.Anything, "BRK/1").Return(&models.ProductSummary{SKU: "BRK/1"}, nil)
	svc.On("LookupBySKU", mock.Anything, "AB%41").Return(&models.ProductSummary{SKU: "AB%41"}, nil)
	svc.On("LookupBySKU", mock.Anything, "MISSING").Return(nil, services.ErrProductNotFound)
	svc.On("LookupBySKU", mock.Anything, "DOWN").Return(nil, services.ErrSuppliersUnavailable)
	svc.On("LookupBySKU", mock.Anything, "SLOW").Return(nil, context.DeadlineExceeded)
	svc.On("LookupBySKU", mock.Anything, "BROKEN").Return(nil, errors.New("boom"))

	router := newTestRouter(svc)

	rec, body := do(t, router, http.MethodGet, "/api/v1/products/BRK%2F1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body.Data), `"sku":"BRK/1"`)

	// %25 раскодируется один раз, буквальный % остается в SKU
	rec, body = do(t, router, http.MethodGet, "/api/v1/products/AB%2541")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body.Data), `"sku":"AB%41"`)

	tests := []struct {
		sku    string
		status int
		code   string
	}{
		{"MISSING", http.StatusNotFound, "not_found"},
		{"DOWN", http.StatusServiceUnavailable, "suppliers_unavailable"},
		{"SLOW", http.StatusGatewayTimeout, "timeout"},
		{"BROKEN", http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.sku, func(t *testing.T) {
			rec, body := do(t, router, http.MethodGet, "/api/v1/products/"+tt.sku)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.status, body.Code)
			assert.False(t, body.Success)
		})
	}
}

func TestGetProductDetail(t *testing.T) {
	desc := "Pastillas cerámicas"
	svc := &mockCatalogService{}
	svc.On("GetProductDetail", mock.Anything, "BRK-1").Return(&models.ProductDetail{
		ProductSummary: models.ProductSummary{SKU: "BRK-1"},
		Description:    &desc,
		Specs:          map[string]string{"material": "cerámica"},
	}, nil)
	svc.On("GetProductDetail", mock.Anything, "NOPE").Return(nil, services.ErrProductNotFound)

	router := newTestRouter(svc)

	rec, body := do(t, router, http.MethodGet, "/api/v1/products/BRK-1/detail")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail models.ProductDetail
	require.NoError(t, json.Unmarshal(body.Data, &detail))
	assert.Equal(t, "BRK-1", detail.SKU)
	assert.Equal(t, "cerámica", detail.Specs["material"])

	rec, _ = do(t, router, http.MethodGet, "/api/v1/products/NOPE/detail")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidateCache(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("InvalidateCache", mock.Anything).Return(nil).Once()
	svc.On("InvalidateCache", mock.Anything).Return(errors.New("redis down")).Once()

	router := newTestRouter(svc)

	rec, body := do(t, router, http.MethodPost, "/api/v1/catalog/cache/invalidate")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/catalog/cache/invalidate")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/catalog/cache/invalidate")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := SetupRouter(&mockCatalogService{}, logger.NewNopLogger(), metrics.New(reg), RouterConfig{
		MetricsEndpoint: "/metrics",
		Gatherer:        reg,
	})

	rec, _ := do(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec, _ = do(t, router, http.MethodHead, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="HEAD",path="/health",status="200"} 1`)
}

func TestSwaggerDoc(t *testing.T) {
	router := newTestRouter(&mockCatalogService{})

	rec, _ := do(t, router, http.MethodGet, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/products/{sku}"`)
	assert.Contains(t, rec.Body.String(), "Autoparts Catalog API")
}

func TestRequestTimeoutReachesService(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("ListProducts", mock.Anything, 1, 0, (*models.CatalogFilters)(nil)).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok, "request context carries a deadline")
		}).
		Return(nil, context.DeadlineExceeded)

	rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/v1/products")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "timeout", body.Error)
}
