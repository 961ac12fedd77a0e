package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propfinder/server/internal/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "sql", cfg.Search.Backend)
	assert.Equal(t, 20, cfg.Search.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Search.FetchTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 3, cfg.BatchProcessing.MaxRetries)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SEARCH_PAGE_SIZE", "12")
	t.Setenv("SEARCH_BACKEND", "meilisearch")
	t.Setenv("SEARCH_FETCH_TIMEOUT", "750ms")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Search.PageSize)
	assert.Equal(t, "meilisearch", cfg.Search.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Search.FetchTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Unknown driver", key: "DB_DRIVER", value: "postgres"},
		{name: "Unknown backend", key: "SEARCH_BACKEND", value: "elastic"},
		{name: "Zero page size", key: "SEARCH_PAGE_SIZE", value: "0"},
		{name: "Malformed timeout", key: "SEARCH_FETCH_TIMEOUT", value: "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_File(t *testing.T) {
	catalog, err := LoadCatalog("markets.yaml")
	require.NoError(t, err)

	assert.Equal(t, []models.Market{models.MarketHyderabad, models.MarketGoa, models.MarketDubai}, catalog.MarketIDs())
	assert.Equal(t, DefaultCatalog(), catalog, "shipped catalog matches the built-in one")
}

func TestLoadCatalog_MissingFileFallsBack(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, catalog.Markets, 3)
}

func TestLoadCatalog_Unreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markets: [oops"), 0644))
	_, err := LoadCatalog(path)
	assert.Error(t, err)
}

func TestCatalog_Bucket(t *testing.T) {
	catalog := DefaultCatalog()

	b, ok := catalog.Bucket(models.MarketHyderabad, "5CR-PLUS")
	require.True(t, ok)
	r := b.Range()
	assert.Equal(t, int64(50000000), r.Min)
	assert.Nil(t, r.Max, "top bucket is open-ended")
	assert.True(t, r.Contains(900000000))

	b, ok = catalog.Bucket(models.MarketDubai, "1m-3m")
	require.True(t, ok)
	require.NotNil(t, b.Max)
	assert.Equal(t, int64(3000000), *b.Max)

	_, ok = catalog.Bucket(models.MarketGoa, "under-50l")
	assert.False(t, ok)
	_, ok = catalog.Bucket(models.Market("paris"), "under-1m")
	assert.False(t, ok)
}

func TestCatalog_SearchIndexes(t *testing.T) {
	catalog := &Catalog{Markets: []MarketConfig{
		{ID: models.MarketGoa, SearchIndex: "goa_v2"},
		{ID: models.MarketDubai},
	}}
	assert.Equal(t, map[models.Market]string{
		models.MarketGoa:   "goa_v2",
		models.MarketDubai: "dubai_listings",
	}, catalog.SearchIndexes())
}

func TestCatalog_BucketNamesSortedByPrice(t *testing.T) {
	catalog := &Catalog{Markets: []MarketConfig{{
		ID: models.MarketGoa,
		PriceBuckets: []PriceBucket{
			{Name: "top", Min: 50},
			{Name: "bottom"},
			{Name: "middle", Min: 10},
		},
	}}}
	assert.Equal(t, []string{"bottom", "middle", "top"}, catalog.BucketNames(models.MarketGoa))
}

func TestParseCatalog_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "No markets", yaml: "markets: []"},
		{name: "Unknown market", yaml: "markets:\n  - id: paris"},
		{name: "Duplicate market", yaml: "markets:\n  - id: goa\n  - id: goa"},
		{name: "Unnamed bucket", yaml: "markets:\n  - id: goa\n    price_buckets:\n      - min: 1"},
		{name: "Duplicate bucket", yaml: "markets:\n  - id: goa\n    price_buckets:\n      - name: a\n      - name: a"},
		{name: "Inverted bucket", yaml: "markets:\n  - id: goa\n    price_buckets:\n      - name: a\n        min: 10\n        max: 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
