package engine

import (
	apperrors "propfinder/server/internal/errors"
	"propfinder/server/internal/models"
	"propfinder/server/internal/ranking"
)

func validate(req Request) error {
	if !req.Market.IsValid() {
		return apperrors.InvalidCriteria("unknown market %q", req.Market)
	}
	if req.Page < 1 {
		return apperrors.InvalidCriteria("page must be 1 or greater, got %d", req.Page)
	}
	if req.Sort < ranking.Default || req.Sort > ranking.Newest {
		return apperrors.InvalidCriteria("unknown sort key %d", int(req.Sort))
	}
	return validateCriteria(req.Market, req.Criteria)
}

func validateCriteria(market models.Market, c models.FilterCriteria) error {
	if r := c.PriceRange; r != nil {
		if r.Min < 0 {
			return apperrors.InvalidCriteria("minimum price must not be negative")
		}
		if r.Max != nil && *r.Max < r.Min {
			return apperrors.InvalidCriteria("minimum price %d exceeds maximum %d", r.Min, *r.Max)
		}
	}
	for _, b := range c.BedroomsIn {
		if b < 0 {
			return apperrors.InvalidCriteria("bedroom count must not be negative, got %d", b)
		}
	}
	if c.Region != "" && market != models.MarketGoa {
		return apperrors.InvalidCriteria("region only applies to the goa market")
	}
	for _, k := range c.ShareKinds {
		switch k {
		case models.ShareLandowner, models.ShareInvestor, models.ShareResale:
		default:
			return apperrors.InvalidCriteria("unknown share kind %q", k)
		}
	}
	if len(c.ShareKinds) > 0 && market != models.MarketHyderabad {
		return apperrors.InvalidCriteria("share filters only apply to the hyderabad market")
	}
	return nil
}
