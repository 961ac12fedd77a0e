package config

import "propfinder/server/internal/models"

func bound(v int64) *int64 {
	return &v
}

// DefaultCatalog is used when no catalog file is deployed
func DefaultCatalog() *Catalog {
	return &Catalog{Markets: []MarketConfig{
		{
			ID:          models.MarketHyderabad,
			Name:        "Hyderabad",
			Currency:    "INR",
			SearchIndex: "hyderabad_listings",
			PriceBuckets: []PriceBucket{
				{Name: "under-50l", Label: "Under ₹50 L", Max: bound(5000000)},
				{Name: "50l-1cr", Label: "₹50 L - ₹1 Cr", Min: 5000000, Max: bound(10000000)},
				{Name: "1cr-2cr", Label: "₹1 Cr - ₹2 Cr", Min: 10000000, Max: bound(20000000)},
				{Name: "2cr-5cr", Label: "₹2 Cr - ₹5 Cr", Min: 20000000, Max: bound(50000000)},
				{Name: "5cr-plus", Label: "₹5 Cr+", Min: 50000000},
			},
		},
		{
			ID:          models.MarketGoa,
			Name:        "Goa",
			Currency:    "INR",
			SearchIndex: "goa_listings",
			PriceBuckets: []PriceBucket{
				{Name: "under-1cr", Label: "Under ₹1 Cr", Max: bound(10000000)},
				{Name: "1cr-3cr", Label: "₹1 Cr - ₹3 Cr", Min: 10000000, Max: bound(30000000)},
				{Name: "3cr-5cr", Label: "₹3 Cr - ₹5 Cr", Min: 30000000, Max: bound(50000000)},
				{Name: "5cr-plus", Label: "₹5 Cr+", Min: 50000000},
			},
		},
		{
			ID:          models.MarketDubai,
			Name:        "Dubai",
			Currency:    "AED",
			SearchIndex: "dubai_listings",
			PriceBuckets: []PriceBucket{
				{Name: "under-1m", Label: "Under AED 1M", Max: bound(1000000)},
				{Name: "1m-3m", Label: "AED 1M - 3M", Min: 1000000, Max: bound(3000000)},
				{Name: "3m-10m", Label: "AED 3M - 10M", Min: 3000000, Max: bound(10000000)},
				{Name: "10m-plus", Label: "AED 10M+", Min: 10000000},
			},
		},
	}}
}
