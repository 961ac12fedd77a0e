package ranking

import (
	"fmt"
	"sort"
	"strings"

	"propfinder/server/internal/models"
)

// SortKey selects the result ordering. The zero value is Default.
type SortKey int

const (
	Default SortKey = iota
	PriceAscending
	PriceDescending
	Newest
)

var sortKeyNames = map[SortKey]string{
	Default:         "default",
	PriceAscending:  "price_asc",
	PriceDescending: "price_desc",
	Newest:          "newest",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// ParseSortKey maps a query-string value onto a SortKey. An empty value
// selects Default.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	for key, name := range sortKeyNames {
		if name == s {
			return key, nil
		}
	}
	return Default, fmt.Errorf("unknown sort key %q", s)
}

// Sort orders listings in place and returns them. Equal elements keep
// their relative order.
func Sort(listings []models.Listing, key SortKey) []models.Listing {
	var less func(a, b *models.Listing) bool
	switch key {
	case PriceAscending:
		less = func(a, b *models.Listing) bool { return a.Price < b.Price }
	case PriceDescending:
		less = func(a, b *models.Listing) bool { return a.Price > b.Price }
	case Newest:
		less = func(a, b *models.Listing) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b *models.Listing) bool {
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return less(&listings[i], &listings[j])
	})
	return listings
}
