package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"propfinder/server/config"
	apperrors "propfinder/server/internal/errors"
	"propfinder/server/internal/models"
	"propfinder/server/internal/ranking"
)

// listParam collects a multi-value query parameter. Both repeated keys and
// comma separated values are accepted.
func listParam(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// repeatedParam collects a multi-value query parameter from repeated keys
// only, for values that may themselves contain commas.
func repeatedParam(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		if raw = strings.TrimSpace(raw); raw != "" {
			out = append(out, raw)
		}
	}
	return out
}

func intParam(c *gin.Context, key string) (int64, bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, apperrors.InvalidCriteria("%s must be an integer, got %q", key, raw)
	}
	return v, true, nil
}

// parseCriteria turns the query string of a listings request into criteria
func parseCriteria(c *gin.Context, catalog *config.Catalog, market models.Market) (models.FilterCriteria, error) {
	criteria := models.FilterCriteria{
		PropertyTypes:            listParam(c, "type"),
		MicroMarketsContains:     listParam(c, "micro_market"),
		AmenitiesAll:             listParam(c, "amenities"),
		Communities:              repeatedParam(c, "community"),
		FreeTextQuery:            strings.TrimSpace(c.Query("q")),
		Region:                   strings.TrimSpace(c.Query("region")),
		CompletionStatusContains: strings.TrimSpace(c.Query("completion")),
	}

	for _, raw := range listParam(c, "bedrooms") {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, apperrors.InvalidCriteria("bedrooms must be integers, got %q", raw)
		}
		criteria.BedroomsIn = append(criteria.BedroomsIn, n)
	}

	// Possession status is matched exactly, so the value is kept verbatim
	if status, ok := c.GetQuery("possession"); ok && status != "" {
		criteria.PossessionStatus = &status
	}

	priceRange, err := parsePriceRange(c, catalog, market)
	if err != nil {
		return criteria, err
	}
	criteria.PriceRange = priceRange

	if raw := c.Query("new"); raw != "" {
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria, apperrors.InvalidCriteria("new must be a boolean, got %q", raw)
		}
		criteria.IsNewProjectFlag = flag
	}

	for _, kind := range listParam(c, "share") {
		criteria.ShareKinds = append(criteria.ShareKinds, models.ShareKind(strings.ToLower(kind)))
	}

	return criteria, nil
}

// parsePriceRange resolves either a named bucket of the market catalog or
// explicit price_min / price_max bounds.
func parsePriceRange(c *gin.Context, catalog *config.Catalog, market models.Market) (*models.PriceRange, error) {
	minPrice, hasMin, err := intParam(c, "price_min")
	if err != nil {
		return nil, err
	}
	maxPrice, hasMax, err := intParam(c, "price_max")
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(c.Query("price")); name != "" {
		if hasMin || hasMax {
			return nil, apperrors.InvalidCriteria("price bucket cannot be combined with price_min or price_max")
		}
		bucket, ok := catalog.Bucket(market, name)
		if !ok {
			return nil, apperrors.InvalidCriteria("unknown price bucket %q for %s", name, market)
		}
		r := bucket.Range()
		return &r, nil
	}

	if !hasMin && !hasMax {
		return nil, nil
	}
	r := models.PriceRange{Min: minPrice}
	if hasMax {
		r.Max = &maxPrice
	}
	return &r, nil
}

func parsePaging(c *gin.Context) (ranking.SortKey, int, error) {
	key, err := ranking.ParseSortKey(c.Query("sort"))
	if err != nil {
		return key, 0, apperrors.InvalidCriteria("%v", err)
	}
	page, _, err := intParam(c, "page")
	if err != nil {
		return key, 0, err
	}
	return key, int(page), nil
}
