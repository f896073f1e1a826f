package messaging

import (
	"time"

	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
)

// EventType тип события каталога
type EventType = string

const (
	CatalogFetchedEvent      EventType = "catalog_fetched"
	SupplierUnavailableEvent EventType = "supplier_unavailable"
)

// CatalogFetched публикуется после каждого объединения каталогов
type CatalogFetched struct {
	Type      EventType               `json:"type"`
	ID        string                  `json:"id"`
	RequestID string                  `json:"request_id,omitempty"`
	Products  int                     `json:"products"`
	Filters   map[string]string       `json:"filters,omitempty"`
	Providers []models.ProviderStatus `json:"providers"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// SupplierUnavailable публикуется для каждого поставщика, который не ответил
type SupplierUnavailable struct {
	Type       EventType         `json:"type"`
	ID         string            `json:"id"`
	RequestID  string            `json:"request_id,omitempty"`
	Provider   models.ProviderID `json:"provider"`
	Error      string            `json:"error"`
	OccurredAt time.Time         `json:"occurred_at"`
}
