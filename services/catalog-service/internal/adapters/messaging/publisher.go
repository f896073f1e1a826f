package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/models"
	"github.com/google/uuid"
)

// CatalogEvents публикует события объединения каталогов в одну тему
type CatalogEvents struct {
	port  interfaces.MessagingPort
	topic string
	now   func() time.Time
}

// NewCatalogEvents создает публикатор событий каталога
func NewCatalogEvents(port interfaces.MessagingPort, topic string) *CatalogEvents {
	return &CatalogEvents{port: port, topic: topic, now: time.Now}
}

// CatalogFetched публикует итог объединения и по событию на каждого недоступного поставщика
func (e *CatalogEvents) CatalogFetched(ctx context.Context, catalog *models.UnifiedCatalog, filters map[string]string) error {
	requestID, _ := ctx.Value(logger.RequestIDKey{}).(string)
	now := e.now().UTC()

	if err := e.publish(ctx, CatalogFetchedEvent, CatalogFetched{
		Type:      CatalogFetchedEvent,
		ID:        uuid.New().String(),
		RequestID: requestID,
		Products:  len(catalog.Products),
		Filters:   filters,
		Providers: catalog.Providers,
		FetchedAt: now,
	}); err != nil {
		return err
	}

	for _, status := range catalog.Providers {
		if status.OK {
			continue
		}
		if err := e.publish(ctx, string(status.Provider), SupplierUnavailable{
			Type:       SupplierUnavailableEvent,
			ID:         uuid.New().String(),
			RequestID:  requestID,
			Provider:   status.Provider,
			Error:      status.Error,
			OccurredAt: now,
		}); err != nil {
			return err
		}
	}

	return nil
}

func (e *CatalogEvents) publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return e.port.PublishWithKey(ctx, e.topic, key, payload)
}
