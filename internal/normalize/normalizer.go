package normalize

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"propfinder/server/internal/models"
)

// Normalizer converts market-specific store rows into models.Listing.
// It never fails: unusable fields fall back to their zero value.
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a normalizer that reports repaired rows at debug level
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Normalizer{logger: logger}
}

// Normalize shapes one row of the given market
func (n *Normalizer) Normalize(market models.Market, row models.Row) models.Listing {
	var (
		listing models.Listing
		err     error
	)
	switch market {
	case models.MarketHyderabad:
		var raw hyderabadRow
		err = decodeRow(row, &raw)
		listing = raw.toListing()
	case models.MarketGoa:
		var raw goaRow
		err = decodeRow(row, &raw)
		listing = raw.toListing()
	case models.MarketDubai:
		var raw dubaiRow
		err = decodeRow(row, &raw)
		listing = raw.toListing()
	default:
		n.logger.WithField("market", market).Warn("Unknown market, row skipped")
		return models.Listing{Market: market, Amenities: []string{}}
	}
	if err != nil {
		n.logger.WithFields(logrus.Fields{
			"market": market,
			"id":     listing.ID,
		}).WithError(err).Debug("Repaired malformed fields while normalizing row")
	}
	return listing
}

// NormalizeAll shapes every row of a fetch result
func (n *Normalizer) NormalizeAll(market models.Market, rows []models.Row) []models.Listing {
	listings := make([]models.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, n.Normalize(market, row))
	}
	return listings
}

// baseRow holds the columns every market shares
type baseRow struct {
	ID               string     `mapstructure:"id"`
	Title            string     `mapstructure:"title"`
	Price            int64      `mapstructure:"price"`
	PriceDisplay     string     `mapstructure:"price_display"`
	PropertyType     string     `mapstructure:"property_type"`
	Bedrooms         *int       `mapstructure:"bedrooms"`
	Bathrooms        *int       `mapstructure:"bathrooms"`
	AreaSqft         *float64   `mapstructure:"area_sqft"`
	Developer        relation   `mapstructure:"developer"`
	ProjectName      *string    `mapstructure:"project_name"`
	Amenities        stringList `mapstructure:"amenities"`
	IsFeatured       bool       `mapstructure:"is_featured"`
	ShortDescription string     `mapstructure:"short_description"`
	Description      string     `mapstructure:"description"`
	CreatedAt        time.Time  `mapstructure:"created_at"`
}

func (b *baseRow) listing(market models.Market) models.Listing {
	amenities := []string(b.Amenities)
	if amenities == nil {
		amenities = []string{}
	}
	title := strings.TrimSpace(b.Title)
	if title == "" && b.ProjectName != nil {
		title = strings.TrimSpace(*b.ProjectName)
	}
	return models.Listing{
		ID:               b.ID,
		Market:           market,
		Title:            title,
		Price:            b.Price,
		PriceDisplay:     b.PriceDisplay,
		PropertyType:     strings.TrimSpace(b.PropertyType),
		Bedrooms:         b.Bedrooms,
		Bathrooms:        b.Bathrooms,
		AreaSqft:         b.AreaSqft,
		Developer:        b.Developer.Name,
		ShortDescription: b.ShortDescription,
		Description:      b.Description,
		Amenities:        amenities,
		IsFeatured:       b.IsFeatured,
		CreatedAt:        b.CreatedAt,
		ProjectName:      optionalString(b.ProjectName),
	}
}

// optionalString trims s and maps blank values to nil
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// trimmedStatus trims a status column. A present but blank status stays non-nil:
// only a missing value means the listing has no status.
func trimmedStatus(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func joinLabels(parts ...string) string {
	var labels []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return strings.Join(labels, ", ")
}
