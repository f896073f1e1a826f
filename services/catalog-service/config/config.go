package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSuppliersBaseURL адрес API поставщиков, если PROVIDERS_BASE_URL не задан
const DefaultSuppliersBaseURL = "https://web-production-84144.up.railway.app"

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration // таймаут обработки одного запроса
	}

	Suppliers struct {
		BaseURL string
		Timeout time.Duration // таймаут одного обращения к поставщику
	}

	Catalog struct {
		ListBatchSize   int // сколько объединенных товаров выбирается для пагинации
		LookupBatchSize int // сколько товаров просматривается при поиске по SKU
		DefaultLimit    int
		MaxLimit        int
		MergeBlankSKU   bool // объединять ли товары с пустым SKU в одну запись
	}

	Cache struct {
		Enabled bool
		Backend string // redis | memory
		TTL     time.Duration
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}

	Kafka struct {
		Enabled bool     `mapstructure:"enabled"`
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	}

	Metrics struct {
		Enabled  bool
		Endpoint string
	}

	Security struct {
		CORSAllowOrigins []string
	}

	RateLimit struct {
		Requests int
		Window   time.Duration
	}

	// Warmer фоновое обновление снимков каталога в кэше
	Warmer struct {
		Interval    time.Duration
		MetricsPort int
	}
}

// Load загружает конфигурацию из файла, .env и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	// .env необязателен
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Файла нет, работаем только на переменных окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = v.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	// Списки из переменных окружения приходят строкой через запятую
	cfg.Kafka.Brokers = splitAndTrim(strings.Join(cfg.Kafka.Brokers, ","))
	cfg.Security.CORSAllowOrigins = splitAndTrim(strings.Join(cfg.Security.CORSAllowOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет значения, без которых сервис не может работать
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Suppliers.BaseURL) == "" {
		return errors.New("suppliers.baseURL is empty")
	}
	if c.Catalog.ListBatchSize < 1 {
		return fmt.Errorf("catalog.listBatchSize must be positive, got %d", c.Catalog.ListBatchSize)
	}
	if c.Catalog.LookupBatchSize < 1 {
		return fmt.Errorf("catalog.lookupBatchSize must be positive, got %d", c.Catalog.LookupBatchSize)
	}
	if c.Catalog.DefaultLimit < 1 || c.Catalog.MaxLimit < c.Catalog.DefaultLimit {
		return fmt.Errorf("invalid catalog limits: default=%d max=%d", c.Catalog.DefaultLimit, c.Catalog.MaxLimit)
	}
	if c.Cache.Enabled && c.Cache.Backend != "redis" && c.Cache.Backend != "memory" {
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is empty")
	}
	return nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "catalog-service")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "35s")
	v.SetDefault("server.shutdownTimeout", "5s")
	v.SetDefault("server.requestTimeout", "30s")

	v.SetDefault("suppliers.baseURL", DefaultSuppliersBaseURL)
	v.SetDefault("suppliers.timeout", "10s")

	v.SetDefault("catalog.listBatchSize", 500)
	v.SetDefault("catalog.lookupBatchSize", 200)
	v.SetDefault("catalog.defaultLimit", 12)
	v.SetDefault("catalog.maxLimit", 100)
	v.SetDefault("catalog.mergeBlankSKU", false)

	// Кэш выключен: цены и остатки поставщиков должны читаться вживую
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "5s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "catalog-events")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.endpoint", "/metrics")

	v.SetDefault("security.corsAllowOrigins", []string{"*"})

	v.SetDefault("rateLimit.requests", 1000)
	v.SetDefault("rateLimit.window", "1m")

	v.SetDefault("warmer.interval", "4s")
	v.SetDefault("warmer.metricsPort", 9091)
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("appName", "APP_NAME")
	_ = v.BindEnv("version", "APP_VERSION")
	_ = v.BindEnv("logLevel", "LOG_LEVEL")
	_ = v.BindEnv("env", "APP_ENV")

	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	_ = v.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	_ = v.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("server.requestTimeout", "SERVER_REQUEST_TIMEOUT")

	_ = v.BindEnv("suppliers.baseURL", "PROVIDERS_BASE_URL")
	_ = v.BindEnv("suppliers.timeout", "PROVIDERS_TIMEOUT")

	_ = v.BindEnv("catalog.listBatchSize", "CATALOG_LIST_BATCH_SIZE")
	_ = v.BindEnv("catalog.lookupBatchSize", "CATALOG_LOOKUP_BATCH_SIZE")
	_ = v.BindEnv("catalog.defaultLimit", "CATALOG_DEFAULT_LIMIT")
	_ = v.BindEnv("catalog.maxLimit", "CATALOG_MAX_LIMIT")
	_ = v.BindEnv("catalog.mergeBlankSKU", "CATALOG_MERGE_BLANK_SKU")

	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("cache.ttl", "CACHE_TTL")

	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")

	_ = v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("kafka.topic", "KAFKA_TOPIC")

	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.endpoint", "METRICS_ENDPOINT")

	_ = v.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")

	_ = v.BindEnv("rateLimit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rateLimit.window", "RATE_LIMIT_WINDOW")

	_ = v.BindEnv("warmer.interval", "WARMER_INTERVAL")
	_ = v.BindEnv("warmer.metricsPort", "WARMER_METRICS_PORT")
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
