package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/config"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/app"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/domain/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация воркера",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-warmer"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	// Снимки из памяти этого процесса не увидит ни один экземпляр API
	if !cfg.Cache.Enabled || cfg.Cache.Backend != "redis" {
		log.Fatal("Воркеру нужен общий кэш: включите cache.enabled и cache.backend=redis")
	}
	if cfg.Warmer.Interval >= cfg.Cache.TTL {
		log.Warn("Интервал обновления не меньше TTL кэша, снимки будут устаревать",
			interfaces.LogField{Key: "interval", Value: cfg.Warmer.Interval.String()},
			interfaces.LogField{Key: "ttl", Value: cfg.Cache.TTL.String()},
		)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)

		// Запускаем HTTP сервер для метрик
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
			})

			addr := fmt.Sprintf(":%d", cfg.Warmer.MetricsPort)
			log.Info("Запуск HTTP сервера для метрик",
				interfaces.LogField{Key: "addr", Value: addr})

			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error("Ошибка запуска HTTP сервера для метрик",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}()
	}

	catalog, err := app.BuildCatalog(ctx, cfg, log, m)
	if err != nil {
		log.Fatal("Ошибка инициализации каталога", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer catalog.Close(log)

	warmer := services.NewCatalogWarmer(catalog.Service, cfg.Warmer.Interval, log)

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		warmer.Run(ctx)
	}()

	// Обработка сигналов завершения
	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		cancel()
		wg.Wait()
		close(done)
	}()

	log.Info("Воркер запущен",
		interfaces.LogField{Key: "interval", Value: cfg.Warmer.Interval.String()})
	<-done
	log.Info("Воркер корректно завершил работу")
}
