package models

import "time"

// Market identifies one of the regional listing catalogues.
type Market string

const (
	MarketHyderabad Market = "hyderabad"
	MarketGoa       Market = "goa"
	MarketDubai     Market = "dubai"
)

// Markets lists every supported market in display order
var Markets = []Market{MarketHyderabad, MarketGoa, MarketDubai}

// IsValid reports whether m is one of the supported markets
func (m Market) IsValid() bool {
	switch m {
	case MarketHyderabad, MarketGoa, MarketDubai:
		return true
	}
	return false
}

// IndependentProject is the grouping key used for share listings without a project
const IndependentProject = "Independent"

// Row is a record exactly as the content store returned it.
// Only the normalize package reads it.
type Row map[string]interface{}

// ShareFlags marks Hyderabad resale and joint-development share listings
type ShareFlags struct {
	LandownerShare bool `json:"landowner_share"`
	InvestorShare  bool `json:"investor_share"`
	IsResale       bool `json:"is_resale"`
}

// Any reports whether at least one share flag is set
func (s ShareFlags) Any() bool {
	return s.LandownerShare || s.InvestorShare || s.IsResale
}

// Listing is the market-agnostic view of a property or project
type Listing struct {
	ID               string     `json:"id"`
	Market           Market     `json:"market"`
	Title            string     `json:"title"`
	Price            int64      `json:"price"`
	PriceDisplay     string     `json:"price_display"`
	PropertyType     string     `json:"property_type"`
	Bedrooms         *int       `json:"bedrooms"`
	Bathrooms        *int       `json:"bathrooms"`
	AreaSqft         *float64   `json:"area_sqft"`
	LocationLabel    string     `json:"location_label"`
	District         string     `json:"district,omitempty"`
	Developer        string     `json:"developer,omitempty"`
	City             string     `json:"city,omitempty"`
	ShortDescription string     `json:"short_description,omitempty"`
	Description      string     `json:"description,omitempty"`
	Amenities        []string   `json:"amenities"`
	IsFeatured       bool       `json:"is_featured"`
	CreatedAt        time.Time  `json:"created_at"`
	Status           *string    `json:"status"`
	Shares           ShareFlags `json:"shares"`
	ProjectName      *string    `json:"project_name"`
}

// ProjectKey returns the project name used to group share listings
func (l *Listing) ProjectKey() string {
	if l.ProjectName == nil || *l.ProjectName == "" {
		return IndependentProject
	}
	return *l.ProjectName
}
