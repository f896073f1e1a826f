package app

import (
	"context"
	"fmt"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/config"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/cache"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/messaging"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/suppliers"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/transport"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/services"
)

const cachePrefix = "autoparts:"

// Catalog собранный сервис каталога и ресурсы, которые нужно закрыть при остановке
type Catalog struct {
	Service *services.CatalogService

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// BuildCatalog создает поставщиков, объединитель и фасад каталога по конфигурации.
// Кэш и Kafka подключаются, только если включены
func BuildCatalog(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort, m *metrics.Metrics) (*Catalog, error) {
	c := &Catalog{}

	client := transport.NewProviderClient(cfg.Suppliers.BaseURL, cfg.Suppliers.Timeout)
	log.Info("Клиент поставщиков инициализирован",
		interfaces.LogField{Key: "base_url", Value: client.BaseURL()},
		interfaces.LogField{Key: "timeout", Value: cfg.Suppliers.Timeout.String()},
	)

	unifier := services.NewUnifier(
		suppliers.NewDefault(client, log, m),
		log,
		m,
		services.WithMergeBlankSKU(cfg.Catalog.MergeBlankSKU),
	)

	catalogCache, err := c.buildCache(ctx, cfg, log)
	if err != nil {
		c.Close(log)
		return nil, err
	}

	events, err := c.buildEvents(cfg, log)
	if err != nil {
		c.Close(log)
		return nil, err
	}

	c.Service = services.NewCatalogService(unifier, catalogCache, events, log, m, services.Options{
		ListBatchSize:   cfg.Catalog.ListBatchSize,
		LookupBatchSize: cfg.Catalog.LookupBatchSize,
		DefaultLimit:    cfg.Catalog.DefaultLimit,
		MaxLimit:        cfg.Catalog.MaxLimit,
		CacheTTL:        cfg.Cache.TTL,
	})
	log.Info("Сервис каталога инициализирован")

	return c, nil
}

func (c *Catalog) buildCache(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) (interfaces.CachePort, error) {
	if !cfg.Cache.Enabled {
		log.Info("Кэш каталога выключен")
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx,
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cachePrefix,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации кэша: %w", err)
		}
		c.closers = append(c.closers, namedCloser{"Redis", redisCache.Close})
		log.Info("Кэш Redis инициализирован",
			interfaces.LogField{Key: "ttl", Value: cfg.Cache.TTL.String()})
		return redisCache, nil

	default:
		memoryCache := cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
		c.closers = append(c.closers, namedCloser{"кэша в памяти", memoryCache.Close})
		log.Info("Кэш в памяти инициализирован",
			interfaces.LogField{Key: "ttl", Value: cfg.Cache.TTL.String()})
		return memoryCache, nil
	}
}

func (c *Catalog) buildEvents(cfg *config.Config, log interfaces.LoggerPort) (services.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		log.Info("Публикация событий каталога выключена")
		return messaging.NewCatalogEvents(messaging.NopMessaging{}, cfg.Kafka.Topic), nil
	}

	kafkaClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.AppName, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации системы обмена сообщениями: %w", err)
	}
	c.closers = append(c.closers, namedCloser{"Kafka", kafkaClient.Close})
	log.Info("Система обмена сообщениями инициализирована",
		interfaces.LogField{Key: "topic", Value: cfg.Kafka.Topic})

	return messaging.NewCatalogEvents(kafkaClient, cfg.Kafka.Topic), nil
}

// Close закрывает соединения с зависимостями в обратном порядке
func (c *Catalog) Close(log interfaces.LoggerPort) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].close(); err != nil {
			log.Error("Ошибка при закрытии "+c.closers[i].name,
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	c.closers = nil
}
