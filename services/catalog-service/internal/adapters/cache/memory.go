package cache

import (
	"context"
	"path"
	"time"

	pkgerrors "github.com/athebyme/autoparts-catalog/pkg/errors"
	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache кэш в памяти процесса для запуска без Redis
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache создает кэш со сроком жизни записей по умолчанию
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

var _ interfaces.CachePort = (*MemoryCache)(nil)

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return nil, pkgerrors.ErrCacheMiss
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, pkgerrors.ErrCacheMiss
	}
	return data, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	// копия, чтобы вызывающий код не мог изменить сохраненное значение
	data := make([]byte, len(value))
	copy(data, value)

	if expiration <= 0 {
		expiration = gocache.DefaultExpiration
	}
	m.store.Set(key, data, expiration)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// DeleteByPattern удаляет ключи по glob шаблону в стиле Redis ("catalog:*")
func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.store.Items() {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return err
		}
		if matched {
			m.store.Delete(key)
		}
	}
	return nil
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}
