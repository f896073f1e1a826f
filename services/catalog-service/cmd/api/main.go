package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/config"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/adapters/metrics"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/api"
	"github.com/athebyme/autoparts-catalog/services/catalog-service/internal/app"
	"github.com/prometheus/client_golang/prometheus"
)

// @title Autoparts Catalog API
// @version 1.0
// @description Объединенный каталог автозапчастей от нескольких поставщиков
// @BasePath /api/v1
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
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	catalog, err := app.BuildCatalog(ctx, cfg, log, m)
	if err != nil {
		log.Fatal("Ошибка инициализации каталога", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	routerCfg := api.RouterConfig{
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout,
		RateLimitRequests:  cfg.RateLimit.Requests,
		RateLimitWindow:    cfg.RateLimit.Window,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsEndpoint = cfg.Metrics.Endpoint
		routerCfg.Gatherer = prometheus.DefaultGatherer
	}

	router := api.SetupRouter(catalog.Service, log, m, routerCfg)
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")

		log.Info("Закрытие соединений с зависимостями...")
		catalog.Close(log)

		close(done)
	}()

	// Ожидаем завершения работы
	<-done
	log.Info("Сервер корректно завершил работу")
}
