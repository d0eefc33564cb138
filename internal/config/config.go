package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	"github.com/maticamisay/eldisco-ecommerce/pkg/httpclient"
)

// Catalog store backends.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration for the storefront catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Catalog store selection
	CatalogStore string `env:"CATALOG_STORE" envDefault:"mongo"`

	// Document store
	MongoURI            string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase       string        `env:"MONGO_DATABASE" envDefault:"eldisco"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MongoMaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"50"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"eldisco"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"eldisco"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"eldisco"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`

	// File storage
	FileManagerURL       string `env:"FILE_MANAGER_API_URL" envDefault:"https://file-manager-production-4c33.up.railway.app"`
	FileManagerTimeoutMs int    `env:"FILE_MANAGER_API_TIMEOUT" envDefault:"30000"`

	BreakerMinRequests  uint32        `env:"FILE_MANAGER_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerFailureRatio float64       `env:"FILE_MANAGER_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerOpenTimeout  time.Duration `env:"FILE_MANAGER_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	// Signed-URL cache
	SignedURLCacheEnabled bool          `env:"SIGNED_URL_CACHE_ENABLED" envDefault:"false"`
	SignedURLCacheMargin  time.Duration `env:"SIGNED_URL_CACHE_MARGIN" envDefault:"30s"`
	RedisHost             string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort             int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword         string        `env:"REDIS_PASSWORD"`
	RedisDB               int           `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Rate limiting for /api
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Cache-Control max-age in seconds for catalog reads; 0 disables the header
	CacheMaxAge int `env:"HTTP_CACHE_MAX_AGE" envDefault:"60"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.CatalogStore {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	case StorePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("CATALOG_STORE must be one of mongo, postgres, memory, got %q", c.CatalogStore)
	}
	if c.FileManagerURL == "" {
		return fmt.Errorf("FILE_MANAGER_API_URL is required")
	}
	if c.FileManagerTimeoutMs <= 0 {
		return fmt.Errorf("FILE_MANAGER_API_TIMEOUT must be positive, got %d", c.FileManagerTimeoutMs)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// FileManagerTimeout returns the file-storage request timeout.
func (c *Config) FileManagerTimeout() time.Duration {
	return time.Duration(c.FileManagerTimeoutMs) * time.Millisecond
}

// Postgres returns the pool configuration for the postgres store.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = c.DBMinConns
	return pg
}

// Mongo returns the document-store client configuration.
func (c *Config) Mongo() database.MongoConfig {
	return database.MongoConfig{
		URI:            c.MongoURI,
		Database:       c.MongoDatabase,
		ConnectTimeout: c.MongoConnectTimeout,
		MaxPoolSize:    c.MongoMaxPoolSize,
	}
}

// Redis returns the signed-URL cache connection configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Breaker returns the circuit breaker settings for the file-storage client.
func (c *Config) Breaker() httpclient.CircuitBreakerConfig {
	cb := httpclient.DefaultCircuitBreakerConfig("file-storage")
	cb.MinRequests = c.BreakerMinRequests
	cb.FailureRatio = c.BreakerFailureRatio
	cb.Timeout = c.BreakerOpenTimeout
	return cb
}
