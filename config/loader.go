package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"propfinder/server/internal/models"
)

// PriceBucket is a named price filter offered by a market. A missing Max
// leaves the bucket open-ended.
type PriceBucket struct {
	Name  string `yaml:"name" json:"name"`
	Label string `yaml:"label" json:"label"`
	Min   int64  `yaml:"min" json:"min"`
	Max   *int64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Range converts the bucket into a filter price range
func (b PriceBucket) Range() models.PriceRange {
	return models.PriceRange{Min: b.Min, Max: b.Max}
}

type MarketConfig struct {
	ID           models.Market `yaml:"id" json:"id"`
	Name         string        `yaml:"name" json:"name"`
	Currency     string        `yaml:"currency" json:"currency"`
	SearchIndex  string        `yaml:"search_index" json:"search_index"`
	PriceBuckets []PriceBucket `yaml:"price_buckets" json:"price_buckets"`
}

// Catalog describes every market the server searches
type Catalog struct {
	Markets []MarketConfig `yaml:"markets" json:"markets"`
}

// LoadCatalog reads the market catalog from a YAML file. A missing file
// yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Catalog) Validate() error {
	if len(c.Markets) == 0 {
		return fmt.Errorf("catalog defines no markets")
	}
	seen := make(map[models.Market]bool, len(c.Markets))
	for _, m := range c.Markets {
		if !m.ID.IsValid() {
			return fmt.Errorf("unknown market %q in catalog", m.ID)
		}
		if seen[m.ID] {
			return fmt.Errorf("market %q is defined twice", m.ID)
		}
		seen[m.ID] = true

		names := make(map[string]bool, len(m.PriceBuckets))
		for _, b := range m.PriceBuckets {
			if b.Name == "" {
				return fmt.Errorf("market %q has a price bucket without a name", m.ID)
			}
			if names[b.Name] {
				return fmt.Errorf("market %q defines price bucket %q twice", m.ID, b.Name)
			}
			names[b.Name] = true
			if b.Min < 0 || (b.Max != nil && *b.Max < b.Min) {
				return fmt.Errorf("market %q price bucket %q has an invalid range", m.ID, b.Name)
			}
		}
	}
	return nil
}

// Market returns the configuration of one market
func (c *Catalog) Market(id models.Market) (*MarketConfig, bool) {
	for i := range c.Markets {
		if c.Markets[i].ID == id {
			return &c.Markets[i], true
		}
	}
	return nil, false
}

// Bucket looks up a named price bucket of a market, ignoring case
func (c *Catalog) Bucket(id models.Market, name string) (PriceBucket, bool) {
	m, ok := c.Market(id)
	if !ok {
		return PriceBucket{}, false
	}
	for _, b := range m.PriceBuckets {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return PriceBucket{}, false
}

// SearchIndexes maps each market onto its Meilisearch index uid
func (c *Catalog) SearchIndexes() map[models.Market]string {
	indexes := make(map[models.Market]string, len(c.Markets))
	for _, m := range c.Markets {
		uid := m.SearchIndex
		if uid == "" {
			uid = string(m.ID) + "_listings"
		}
		indexes[m.ID] = uid
	}
	return indexes
}

// MarketIDs returns the configured markets in catalog order
func (c *Catalog) MarketIDs() []models.Market {
	ids := make([]models.Market, 0, len(c.Markets))
	for _, m := range c.Markets {
		ids = append(ids, m.ID)
	}
	return ids
}

// BucketNames lists the bucket names of a market in ascending price order
func (c *Catalog) BucketNames(id models.Market) []string {
	m, ok := c.Market(id)
	if !ok {
		return nil
	}
	buckets := append([]PriceBucket(nil), m.PriceBuckets...)
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Min < buckets[j].Min })
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names
}
