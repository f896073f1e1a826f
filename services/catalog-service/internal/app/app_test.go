package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/athebyme/autoparts-catalog/services/catalog-service/config"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/api"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suppliersStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/autopartsplus/catalog", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"parts":[
			{"sku":"BRK-1","title":"Pastillas de freno","brand_name":"Brembo","unit_price":25000,"currency_code":"CLP","qty_available":4,"fits_vehicles":["Toyota Corolla 2010-2015"]},
			{"sku":"FLT-9","title":"Filtro de aceite","brand_name":"Bosch","unit_price":"8990","qty_available":10}
		]}`))
	})
	mux.HandleFunc("/api/repuestosmax/catalogo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"productos":[
			{"identificacion":{"sku":"BRK-1"},"informacionBasica":{"nombre":"Pastillas freno delanteras"},"precio":{"valor":24000,"moneda":"CLP"},"inventario":{"cantidad":2}}
		]}`))
	})
	mux.HandleFunc("/api/globalparts/inventory/catalog", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{AppName: "catalog-service"}
	cfg.Suppliers.BaseURL = baseURL
	cfg.Suppliers.Timeout = 2 * time.Second
	cfg.Catalog.ListBatchSize = 500
	cfg.Catalog.LookupBatchSize = 200
	cfg.Catalog.DefaultLimit = 12
	cfg.Catalog.MaxLimit = 100
	return cfg
}

func TestBuildCatalog_EndToEnd(t *testing.T) {
	srv := suppliersStub(t)
	log := logger.NewNopLogger()
	m := metrics.NewNop()

	catalog, err := BuildCatalog(context.Background(), testConfig(srv.URL), log, m)
	require.NoError(t, err)
	defer catalog.Close(log)

	router := api.SetupRouter(catalog.Service, log, m, api.RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?brand=brembo", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                    `json:"success"`
		Data    []models.ProductSummary `json:"data"`
		Meta    struct {
			Total     int                     `json:"total"`
			Providers []models.ProviderStatus `json:"providers"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Data, 1)
	product := body.Data[0]
	assert.Equal(t, "BRK-1", product.SKU)
	assert.Equal(t, "Pastillas de freno", product.Name, "first supplier wins the summary")
	require.Len(t, product.Offers, 2)
	assert.Equal(t, models.ProviderAutoPartsPlus, product.Offers[0].Provider)
	assert.Equal(t, models.ProviderRepuestosMax, product.Offers[1].Provider)
	require.NotNil(t, product.YearFrom)
	assert.Equal(t, 2010, *product.YearFrom)

	assert.Equal(t, 1, body.Meta.Total)
	require.Len(t, body.Meta.Providers, 3)
	assert.True(t, body.Meta.Providers[0].OK)
	assert.True(t, body.Meta.Providers[1].OK)
	assert.False(t, body.Meta.Providers[2].OK)
	assert.NotEmpty(t, body.Meta.Providers[2].Error)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/FLT-9", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildCatalog_SuppliersUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	log := logger.NewNopLogger()

	catalog, err := BuildCatalog(context.Background(), testConfig(srv.URL), log, nil)
	require.NoError(t, err)
	defer catalog.Close(log)
	srv.Close()

	_, err = catalog.Service.LookupBySKU(context.Background(), "BRK-1")
	assert.Error(t, err)

	page, err := catalog.Service.ListProducts(context.Background(), 1, 12, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
}

func TestBuildCatalog_MemoryCache(t *testing.T) {
	srv := suppliersStub(t)
	log := logger.NewNopLogger()

	cfg := testConfig(srv.URL)
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "memory"
	cfg.Cache.TTL = time.Minute

	catalog, err := BuildCatalog(context.Background(), cfg, log, nil)
	require.NoError(t, err)
	defer catalog.Close(log)

	require.NoError(t, catalog.Service.Refresh(context.Background()))
	assert.NoError(t, catalog.Service.InvalidateCache(context.Background()))
}
