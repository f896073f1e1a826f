package models

import "time"

// ProviderID идентификатор поставщика каталога
type ProviderID string

const (
	ProviderAutoPartsPlus ProviderID = "autopartsplus"
	ProviderRepuestosMax  ProviderID = "repuestosmax"
	ProviderGlobalParts   ProviderID = "globalparts"
)

// DefaultCurrency валюта, если поставщик ее не указал
const DefaultCurrency = "CLP"

// ProviderOffer предложение одного поставщика по одному товару
type ProviderOffer struct {
	Provider ProviderID `json:"provider"`
	Price    float64    `json:"price"`
	Currency string     `json:"currency"`
	Stock    int        `json:"stock"`
	// LastUpdated момент получения данных сервисом, а не время изменения у поставщика
	LastUpdated time.Time `json:"lastUpdated"`
}

// ProductSummary объединенное представление товара по всем поставщикам
type ProductSummary struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Brand        *string         `json:"brand,omitempty"`
	Model        *string         `json:"model,omitempty"`
	YearFrom     *int            `json:"yearFrom,omitempty"`
	YearTo       *int            `json:"yearTo,omitempty"`
	ThumbnailURL *string         `json:"thumbnailUrl,omitempty"`
	Offers       []ProviderOffer `json:"offers"`
}

// ProductDetail карточка товара для поиска по одному SKU
type ProductDetail struct {
	ProductSummary
	Description *string           `json:"description,omitempty"`
	Specs       map[string]string `json:"specs,omitempty"`
}

// ProviderStatus результат обращения к одному поставщику в рамках запроса
type ProviderStatus struct {
	Provider ProviderID `json:"provider"`
	OK       bool       `json:"ok"`
	Products int        `json:"products"`
	Error    string     `json:"error,omitempty"`
}

// UnifiedCatalog результат объединения каталогов
type UnifiedCatalog struct {
	Products  []ProductSummary `json:"products"`
	Providers []ProviderStatus `json:"providers"`
}

// AllProvidersFailed сообщает, что ни один поставщик не ответил
func (c *UnifiedCatalog) AllProvidersFailed() bool {
	if len(c.Providers) == 0 {
		return false
	}
	for _, p := range c.Providers {
		if p.OK {
			return false
		}
	}
	return true
}

// CatalogPage страница каталога для фасада
type CatalogPage struct {
	Items      []ProductSummary `json:"items"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
	Providers  []ProviderStatus `json:"providers"`
}
