package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port        string   `env:"SERVER_PORT" envDefault:"5250"`
		GinMode     string   `env:"GIN_MODE" envDefault:"release"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		// "sqlite" or "mysql"
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
		DSN    string `env:"DB_DSN" envDefault:"database/propfinder.db"`
	}

	Search struct {
		// Content store the engine fetches candidates from: "sql" or "meilisearch"
		Backend      string        `env:"SEARCH_BACKEND" envDefault:"sql"`
		PageSize     int           `env:"SEARCH_PAGE_SIZE" envDefault:"20"`
		FetchLimit   int           `env:"SEARCH_FETCH_LIMIT" envDefault:"1000"`
		FetchTimeout time.Duration `env:"SEARCH_FETCH_TIMEOUT" envDefault:"5s"`
	}

	Meilisearch struct {
		Host   string `env:"MEILI_HOST" envDefault:"http://localhost:7700"`
		APIKey string `env:"MEILI_API_KEY"`
	}

	Cache struct {
		Enabled       bool          `env:"CACHE_ENABLED" envDefault:"false"`
		RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		RedisPassword string        `env:"REDIS_PASSWORD"`
		RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
		TTL           time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	}

	// BatchProcessing tunes the export of store rows into the search index
	BatchProcessing struct {
		// Rows read from the store per batch
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Batches buffered between the reader and the processors
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"16"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	Indexing struct {
		// Cron spec for the periodic index sync; empty disables it
		Schedule  string `env:"INDEX_SCHEDULE" envDefault:"*/30 * * * *"`
		OnStartup bool   `env:"INDEX_ON_STARTUP" envDefault:"false"`
	}

	Logging struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	CatalogPath string `env:"CATALOG_PATH" envDefault:"config/markets.yaml"`
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", c.Database.Driver)
	}
	switch c.Search.Backend {
	case "sql", "meilisearch":
	default:
		return fmt.Errorf("SEARCH_BACKEND must be sql or meilisearch, got %q", c.Search.Backend)
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", c.Search.PageSize)
	}
	if c.Search.FetchTimeout <= 0 {
		return fmt.Errorf("SEARCH_FETCH_TIMEOUT must be positive, got %s", c.Search.FetchTimeout)
	}
	if c.BatchProcessing.MaxBatchSize < 1 {
		return fmt.Errorf("BATCH_MAX_SIZE must be positive, got %d", c.BatchProcessing.MaxBatchSize)
	}
	return nil
}
