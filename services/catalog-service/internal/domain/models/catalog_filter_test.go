package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func product(sku, name, brand, model string, yearFrom, yearTo *int) *ProductSummary {
	p := &ProductSummary{SKU: sku, Name: name, YearFrom: yearFrom, YearTo: yearTo}
	if brand != "" {
		p.Brand = strPtr(brand)
	}
	if model != "" {
		p.Model = strPtr(model)
	}
	return p
}

func TestCatalogFilters_NilAndEmptyMatchEverything(t *testing.T) {
	p := product("SKU-1", "Filtro de aceite", "Bosch", "Filtros", nil, nil)

	var nilFilters *CatalogFilters
	assert.True(t, nilFilters.Matches(p))
	assert.True(t, nilFilters.IsEmpty())

	empty := &CatalogFilters{Search: "   "}
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.Matches(p))
}

func TestCatalogFilters_SearchAnyField(t *testing.T) {
	p := product("BRK-778", "Pastillas de freno", "Brembo", "Frenos", nil, nil)

	tests := []struct {
		name   string
		search string
		want   bool
	}{
		{"sku", "brk-7", true},
		{"name", "PASTILLAS", true},
		{"brand", "brem", true},
		{"model", " frenos ", true},
		{"no match", "amortiguador", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &CatalogFilters{Search: tt.search}
			assert.Equal(t, tt.want, f.Matches(p))
		})
	}
}

func TestCatalogFilters_BrandAndModelAbsentFields(t *testing.T) {
	p := product("X", "Bujía", "", "", nil, nil)

	assert.False(t, (&CatalogFilters{Brand: "ngk"}).Matches(p))
	assert.False(t, (&CatalogFilters{Model: "encendido"}).Matches(p))
}

func TestCatalogFilters_Conjunction(t *testing.T) {
	products := []*ProductSummary{
		product("A1", "Filtro de aire", "Mann", "Filtros", intPtr(2010), intPtr(2015)),
		product("A2", "Filtro de aire", "Bosch", "Filtros", intPtr(2010), intPtr(2015)),
		product("A3", "Filtro de aire", "Mann", "Motor", intPtr(2010), intPtr(2015)),
		product("A4", "Filtro de aire", "Mann", "Filtros", intPtr(2001), intPtr(2004)),
		product("A5", "Correa", "Mann", "Correas", intPtr(2010), intPtr(2015)),
	}
	f := &CatalogFilters{Search: "filtro", Brand: "mann", Model: "filtros", YearFrom: intPtr(2012)}

	var matched []string
	for _, p := range products {
		if f.Matches(p) {
			matched = append(matched, p.SKU)
		}
	}

	assert.Equal(t, []string{"A1"}, matched)
}

func TestCatalogFilters_YearOverlapBoundaries(t *testing.T) {
	p := product("K", "Kit", "", "", intPtr(2014), intPtr(2015))

	assert.True(t, (&CatalogFilters{YearFrom: intPtr(2015)}).Matches(p))
	assert.False(t, (&CatalogFilters{YearFrom: intPtr(2016)}).Matches(p))
	assert.True(t, (&CatalogFilters{YearTo: intPtr(2014)}).Matches(p))
	assert.False(t, (&CatalogFilters{YearTo: intPtr(2013)}).Matches(p))
	assert.True(t, (&CatalogFilters{YearFrom: intPtr(2000), YearTo: intPtr(2030)}).Matches(p))
}

func TestCatalogFilters_YearSingleBound(t *testing.T) {
	onlyFrom := product("F", "Kit", "", "", intPtr(2018), nil)
	assert.True(t, (&CatalogFilters{YearFrom: intPtr(2018)}).Matches(onlyFrom))
	assert.False(t, (&CatalogFilters{YearFrom: intPtr(2019)}).Matches(onlyFrom))
	assert.True(t, (&CatalogFilters{YearTo: intPtr(2018)}).Matches(onlyFrom))

	onlyTo := product("T", "Kit", "", "", nil, intPtr(2012))
	assert.True(t, (&CatalogFilters{YearTo: intPtr(2012)}).Matches(onlyTo))
	assert.False(t, (&CatalogFilters{YearTo: intPtr(2011)}).Matches(onlyTo))
}

func TestCatalogFilters_NoYearsPassesYearFilters(t *testing.T) {
	p := product("N", "Kit", "", "", nil, nil)

	assert.True(t, (&CatalogFilters{YearFrom: intPtr(2030)}).Matches(p))
	assert.True(t, (&CatalogFilters{YearTo: intPtr(1990)}).Matches(p))
	assert.False(t, (&CatalogFilters{YearFrom: intPtr(2030), Search: "zzz"}).Matches(p))
}

func TestCatalogFilters_ToMap(t *testing.T) {
	f := &CatalogFilters{Search: " Freno ", Brand: "", YearTo: intPtr(2020)}

	assert.Equal(t, map[string]string{"search": "freno", "yearTo": "2020"}, f.ToMap())
}

func TestUnifiedCatalog_AllProvidersFailed(t *testing.T) {
	c := &UnifiedCatalog{}
	assert.False(t, c.AllProvidersFailed())

	c.Providers = []ProviderStatus{{Provider: ProviderAutoPartsPlus}, {Provider: ProviderGlobalParts}}
	assert.True(t, c.AllProvidersFailed())

	c.Providers[1].OK = true
	assert.False(t, c.AllProvidersFailed())
}
