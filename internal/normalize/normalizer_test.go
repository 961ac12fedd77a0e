package normalize

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propfinder/server/internal/filter"
	"propfinder/server/internal/models"
)

func newTestNormalizer() *Normalizer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewNormalizer(logger)
}

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected []string
	}{
		{name: "JSON encoded string", input: `["Pool","Gym"]`, expected: []string{"Pool", "Gym"}},
		{name: "Malformed JSON string", input: `["Pool",`, expected: []string{}},
		{name: "Native array", input: []interface{}{"Pool", " Gym ", ""}, expected: []string{"Pool", "Gym"}},
		{name: "Null", input: nil, expected: []string{}},
		{name: "Empty string", input: "", expected: []string{}},
		{name: "Bytes", input: []byte(`["Clubhouse"]`), expected: []string{"Clubhouse"}},
		{name: "Array of objects", input: []interface{}{map[string]interface{}{"name": "Spa"}}, expected: []string{"Spa"}},
		{name: "Unexpected scalar", input: 42, expected: []string{}},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := n.Normalize(models.MarketHyderabad, models.Row{
				"id":        "h1",
				"amenities": tt.input,
			})
			assert.Equal(t, tt.expected, listing.Amenities)
		})
	}
}

func TestNormalizeRelations(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{name: "Object", input: map[string]interface{}{"name": "Kokapet"}, expected: "Kokapet"},
		{name: "Single element array", input: []interface{}{map[string]interface{}{"name": "Gachibowli"}}, expected: "Gachibowli"},
		{name: "Empty array", input: []interface{}{}, expected: ""},
		{name: "Plain string", input: " Narsingi ", expected: "Narsingi"},
		{name: "Null", input: nil, expected: ""},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := n.Normalize(models.MarketHyderabad, models.Row{"micro_market": tt.input})
			assert.Equal(t, tt.expected, listing.LocationLabel)
		})
	}
}

func TestNormalizeHyderabad(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	row := models.Row{
		"id":                "hyd-1",
		"title":             "Skyra Towers",
		"price":             float64(12500000),
		"property_type":     "Apartment/Flat",
		"bedrooms":          int64(3),
		"bathrooms":         "3",
		"area_sqft":         "1850.5",
		"micro_market":      []interface{}{map[string]interface{}{"name": "Kokapet"}},
		"developer":         map[string]interface{}{"name": "Skyline Builders"},
		"project_name":      "Skyra",
		"amenities":         `["Pool","Gym"]`,
		"is_featured":       int64(1),
		"possession_status": "Ready to Move",
		"landowner_share":   "true",
		"investor_share":    int64(0),
		"is_resale":         false,
		"created_at":        "2024-03-01T10:00:00Z",
	}

	l := newTestNormalizer().Normalize(models.MarketHyderabad, row)

	assert.Equal(t, "hyd-1", l.ID)
	assert.Equal(t, models.MarketHyderabad, l.Market)
	assert.Equal(t, "Skyra Towers", l.Title)
	assert.Equal(t, int64(12500000), l.Price)
	assert.Equal(t, "₹1.25 Cr", l.PriceDisplay)
	require.NotNil(t, l.Bedrooms)
	assert.Equal(t, 3, *l.Bedrooms)
	require.NotNil(t, l.Bathrooms)
	assert.Equal(t, 3, *l.Bathrooms)
	require.NotNil(t, l.AreaSqft)
	assert.InDelta(t, 1850.5, *l.AreaSqft, 0.001)
	assert.Equal(t, "Kokapet", l.LocationLabel)
	assert.Equal(t, "Skyline Builders", l.Developer)
	require.NotNil(t, l.ProjectName)
	assert.Equal(t, "Skyra", *l.ProjectName)
	assert.Equal(t, []string{"Pool", "Gym"}, l.Amenities)
	assert.True(t, l.IsFeatured)
	require.NotNil(t, l.Status)
	assert.Equal(t, "Ready to Move", *l.Status)
	assert.True(t, l.Shares.LandownerShare)
	assert.False(t, l.Shares.InvestorShare)
	assert.True(t, l.CreatedAt.Equal(created))
}

func TestNormalizeGoa(t *testing.T) {
	row := models.Row{
		"id":                int64(77),
		"title":             "Sea Breeze Villas",
		"price":             int64(45000000),
		"property_type":     "Villa",
		"district":          "North Goa",
		"location_area":     "Assagao",
		"completion_status": "Under Construction",
		"created_at":        time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC),
	}

	l := newTestNormalizer().Normalize(models.MarketGoa, row)

	assert.Equal(t, "77", l.ID)
	assert.Equal(t, "North Goa", l.District)
	assert.Equal(t, "Assagao, North Goa", l.LocationLabel)
	assert.Equal(t, "₹4.5 Cr", l.PriceDisplay)
	require.NotNil(t, l.Status)
	assert.Equal(t, "Under Construction", *l.Status)
	assert.Equal(t, 2023, l.CreatedAt.Year())
}

func TestNormalizeDubai(t *testing.T) {
	row := models.Row{
		"id":                "dxb-9",
		"title":             "Marina Vista",
		"price":             "2450000",
		"community":         []interface{}{"Dubai Marina"},
		"city":              []interface{}{},
		"completion_status": "   ",
		"price_display":     "",
		"created_at":        "2024-01-15 08:30:00",
	}

	l := newTestNormalizer().Normalize(models.MarketDubai, row)

	assert.Equal(t, "Dubai Marina", l.LocationLabel)
	assert.Equal(t, "Dubai", l.City)
	assert.Equal(t, "AED 2,450,000", l.PriceDisplay)
	require.NotNil(t, l.Status, "a present but blank status is still a status")
	assert.Equal(t, "", *l.Status)
	assert.Equal(t, 2024, l.CreatedAt.Year())
}

func TestNormalizeStatusPresence(t *testing.T) {
	rows := []models.Row{
		{"id": "g-blank", "completion_status": ""},
		{"id": "g-null", "completion_status": nil},
		{"id": "g-missing"},
		{"id": "g-set", "completion_status": " Ready "},
	}
	listings := newTestNormalizer().NormalizeAll(models.MarketGoa, rows)

	require.NotNil(t, listings[0].Status)
	assert.Nil(t, listings[1].Status)
	assert.Nil(t, listings[2].Status)
	require.NotNil(t, listings[3].Status)
	assert.Equal(t, "Ready", *listings[3].Status)

	newProjects := filter.Apply(listings, models.FilterCriteria{IsNewProjectFlag: true})
	ids := make([]string, 0, len(newProjects))
	for _, l := range newProjects {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"g-blank", "g-set"}, ids)
}

func TestNormalizeNeverFails(t *testing.T) {
	row := models.Row{
		"id":           "broken",
		"price":        "1.2 Cr",
		"bedrooms":     "three",
		"is_featured":  "sometimes",
		"created_at":   "not a date",
		"amenities":    "{oops",
		"project_name": "",
	}

	var l models.Listing
	assert.NotPanics(t, func() {
		l = newTestNormalizer().Normalize(models.MarketHyderabad, row)
	})
	assert.Equal(t, "broken", l.ID)
	assert.Equal(t, int64(0), l.Price)
	assert.Nil(t, l.Bedrooms)
	assert.False(t, l.IsFeatured)
	assert.True(t, l.CreatedAt.IsZero())
	assert.Equal(t, []string{}, l.Amenities)
	assert.Nil(t, l.ProjectName)
	assert.Equal(t, "Independent", l.ProjectKey())
}

func TestNormalizeTitleFallsBackToProject(t *testing.T) {
	l := newTestNormalizer().Normalize(models.MarketHyderabad, models.Row{"project_name": "Aurum"})
	assert.Equal(t, "Aurum", l.Title)
}

func TestNormalizeAll(t *testing.T) {
	rows := []models.Row{{"id": "a"}, {"id": "b"}}
	listings := newTestNormalizer().NormalizeAll(models.MarketDubai, rows)
	require.Len(t, listings, 2)
	assert.Equal(t, "a", listings[0].ID)
	assert.Equal(t, models.MarketDubai, listings[1].Market)
}

func TestFormatPrices(t *testing.T) {
	tests := []struct {
		name     string
		format   func(int64) string
		input    int64
		expected string
	}{
		{"INR crore", FormatINR, 50000000, "₹5 Cr"},
		{"INR lakh", FormatINR, 8550000, "₹85.5 L"},
		{"INR small", FormatINR, 95000, "₹95,000"},
		{"INR zero", FormatINR, 0, "Price on request"},
		{"AED", FormatAED, 1250000, "AED 1,250,000"},
		{"AED short", FormatAED, 999, "AED 999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format(tt.input))
		})
	}
}
