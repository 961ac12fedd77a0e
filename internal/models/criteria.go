package models

// PriceRange is an inclusive price window. A nil Max leaves the range open-ended.
type PriceRange struct {
	Min int64  `json:"min"`
	Max *int64 `json:"max"`
}

// Contains reports whether price lies inside the range
func (r PriceRange) Contains(price int64) bool {
	if price < r.Min {
		return false
	}
	if r.Max != nil && price > *r.Max {
		return false
	}
	return true
}

// ShareKind selects one of the Hyderabad share flags
type ShareKind string

const (
	ShareLandowner ShareKind = "landowner"
	ShareInvestor  ShareKind = "investor"
	ShareResale    ShareKind = "resale"
)

// FilterCriteria holds every optional search predicate.
// A zero value field is inactive.
type FilterCriteria struct {
	PropertyTypes            []string    `json:"property_types,omitempty"`
	BedroomsIn               []int       `json:"bedrooms_in,omitempty"`
	MicroMarketsContains     []string    `json:"micro_markets_contains,omitempty"`
	PossessionStatus         *string     `json:"possession_status,omitempty"`
	PriceRange               *PriceRange `json:"price_range,omitempty"`
	AmenitiesAll             []string    `json:"amenities_all,omitempty"`
	Communities              []string    `json:"communities,omitempty"`
	FreeTextQuery            string      `json:"free_text_query,omitempty"`
	Region                   string      `json:"region,omitempty"`
	CompletionStatusContains string      `json:"completion_status_contains,omitempty"`
	IsNewProjectFlag         bool        `json:"is_new_project,omitempty"`
	ShareKinds               []ShareKind `json:"share_kinds,omitempty"`
}

// IsEmpty reports whether no predicate is active
func (c *FilterCriteria) IsEmpty() bool {
	if c == nil {
		return true
	}
	return len(c.PropertyTypes) == 0 &&
		len(c.BedroomsIn) == 0 &&
		len(c.MicroMarketsContains) == 0 &&
		c.PossessionStatus == nil &&
		c.PriceRange == nil &&
		len(c.AmenitiesAll) == 0 &&
		len(c.Communities) == 0 &&
		c.FreeTextQuery == "" &&
		c.Region == "" &&
		c.CompletionStatusContains == "" &&
		!c.IsNewProjectFlag &&
		len(c.ShareKinds) == 0
}
