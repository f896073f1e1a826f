package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROVIDERS_BASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultSuppliersBaseURL, cfg.Suppliers.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Suppliers.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)

	assert.Equal(t, 500, cfg.Catalog.ListBatchSize)
	assert.Equal(t, 200, cfg.Catalog.LookupBatchSize)
	assert.Equal(t, 12, cfg.Catalog.DefaultLimit)
	assert.Equal(t, 100, cfg.Catalog.MaxLimit)
	assert.False(t, cfg.Catalog.MergeBlankSKU)

	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Security.CORSAllowOrigins)
	assert.Equal(t, 1000, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROVIDERS_BASE_URL", "http://suppliers.local:9000")
	t.Setenv("PROVIDERS_TIMEOUT", "3s")
	t.Setenv("CATALOG_MERGE_BLANK_SKU", "true")
	t.Setenv("CATALOG_DEFAULT_LIMIT", "24")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_BACKEND", "redis")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://suppliers.local:9000", cfg.Suppliers.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Suppliers.Timeout)
	assert.True(t, cfg.Catalog.MergeBlankSKU)
	assert.Equal(t, 24, cfg.Catalog.DefaultLimit)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowOrigins)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis", cfg.Cache.Backend)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Suppliers.BaseURL = DefaultSuppliersBaseURL
		cfg.Catalog.ListBatchSize = 500
		cfg.Catalog.LookupBatchSize = 200
		cfg.Catalog.DefaultLimit = 12
		cfg.Catalog.MaxLimit = 100
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"blank base url", func(c *Config) { c.Suppliers.BaseURL = "  " }, true},
		{"zero list batch", func(c *Config) { c.Catalog.ListBatchSize = 0 }, true},
		{"zero lookup batch", func(c *Config) { c.Catalog.LookupBatchSize = 0 }, true},
		{"max below default", func(c *Config) { c.Catalog.MaxLimit = 5 }, true},
		{"unknown cache backend", func(c *Config) { c.Cache.Enabled = true; c.Cache.Backend = "disk" }, true},
		{"disabled cache ignores backend", func(c *Config) { c.Cache.Backend = "disk" }, false},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
