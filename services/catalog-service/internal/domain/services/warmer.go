package services

import (
	"context"
	"time"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
)

// Refresher обновляет снимки каталога
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CatalogWarmer периодически обновляет снимки каталога, чтобы запросы к API
// читали их из общего кэша
type CatalogWarmer struct {
	refresher Refresher
	interval  time.Duration
	logger    interfaces.LoggerPort
}

// NewCatalogWarmer создает фоновый обновлятель каталога
func NewCatalogWarmer(refresher Refresher, interval time.Duration, logger interfaces.LoggerPort) *CatalogWarmer {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &CatalogWarmer{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// Run обновляет каталог сразу и затем каждые interval до отмены контекста.
// Ошибка обновления не останавливает цикл
func (w *CatalogWarmer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Обновление каталога остановлено")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *CatalogWarmer) refresh(ctx context.Context) {
	start := time.Now()
	if err := w.refresher.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("Ошибка обновления каталога",
			interfaces.LogField{Key: "error", Value: err.Error()})
		return
	}
	w.logger.Debug("Каталог обновлен",
		interfaces.LogField{Key: "duration", Value: time.Since(start).String()})
}
