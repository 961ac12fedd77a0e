// Package filter applies FilterCriteria to normalized listings in memory.
// It is the source of truth for result correctness: whatever the store
// pushed down, every active criterion is evaluated again here.
package filter

import (
	"strings"

	"propfinder/server/internal/models"
)

// predicate reports whether a listing passes one criterion
type predicate func(l *models.Listing) bool

// Apply returns the listings matching every active criterion, preserving
// input order. No active criteria returns the candidates unchanged.
func Apply(candidates []models.Listing, criteria models.FilterCriteria) []models.Listing {
	predicates := compile(criteria)
	if len(predicates) == 0 || len(candidates) == 0 {
		return candidates
	}

	matched := make([]models.Listing, 0, len(candidates))
next:
	for i := range candidates {
		for _, p := range predicates {
			if !p(&candidates[i]) {
				continue next
			}
		}
		matched = append(matched, candidates[i])
	}
	return matched
}

// compile turns the active criteria into predicates, cheapest first
func compile(c models.FilterCriteria) []predicate {
	var predicates []predicate

	if c.PriceRange != nil {
		r := *c.PriceRange
		predicates = append(predicates, func(l *models.Listing) bool {
			return r.Contains(l.Price)
		})
	}
	if len(c.BedroomsIn) > 0 {
		predicates = append(predicates, bedroomsIn(c.BedroomsIn))
	}
	if c.PossessionStatus != nil {
		// Exact and case-sensitive, unlike the other text predicates.
		want := *c.PossessionStatus
		predicates = append(predicates, func(l *models.Listing) bool {
			return l.Status != nil && *l.Status == want
		})
	}
	if len(c.ShareKinds) > 0 {
		predicates = append(predicates, shareKinds(c.ShareKinds))
	}
	if c.Region != "" {
		region := c.Region
		predicates = append(predicates, func(l *models.Listing) bool {
			return strings.EqualFold(l.District, region)
		})
	}
	if len(c.Communities) > 0 {
		predicates = append(predicates, communities(c.Communities))
	}
	if len(c.PropertyTypes) > 0 {
		predicates = append(predicates, propertyTypes(c.PropertyTypes))
	}
	if len(c.MicroMarketsContains) > 0 {
		predicates = append(predicates, microMarkets(c.MicroMarketsContains))
	}
	if len(c.AmenitiesAll) > 0 {
		predicates = append(predicates, amenitiesAll(c.AmenitiesAll))
	}
	if c.CompletionStatusContains != "" {
		needle := strings.ToLower(c.CompletionStatusContains)
		predicates = append(predicates, func(l *models.Listing) bool {
			return l.Status != nil && strings.Contains(strings.ToLower(*l.Status), needle)
		})
	}
	if c.IsNewProjectFlag && c.FreeTextQuery == "" && c.CompletionStatusContains == "" {
		predicates = append(predicates, func(l *models.Listing) bool {
			return l.Status != nil
		})
	}
	if q := strings.TrimSpace(c.FreeTextQuery); q != "" {
		predicates = append(predicates, freeText(q))
	}
	return predicates
}

func bedroomsIn(values []int) predicate {
	allowed := make(map[int]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(l *models.Listing) bool {
		if l.Bedrooms == nil {
			return false
		}
		_, ok := allowed[*l.Bedrooms]
		return ok
	}
}

func shareKinds(kinds []models.ShareKind) predicate {
	return func(l *models.Listing) bool {
		for _, k := range kinds {
			switch k {
			case models.ShareLandowner:
				if l.Shares.LandownerShare {
					return true
				}
			case models.ShareInvestor:
				if l.Shares.InvestorShare {
					return true
				}
			case models.ShareResale:
				if l.Shares.IsResale {
					return true
				}
			}
		}
		return false
	}
}

// communities matches the Independent sentinel against listings without a
// project and every other value by case-insensitive equality.
func communities(values []string) predicate {
	return func(l *models.Listing) bool {
		project := ""
		if l.ProjectName != nil {
			project = strings.TrimSpace(*l.ProjectName)
		}
		for _, v := range values {
			if v == models.IndependentProject {
				if project == "" {
					return true
				}
				continue
			}
			if project != "" && strings.EqualFold(project, strings.TrimSpace(v)) {
				return true
			}
		}
		return false
	}
}

func propertyTypes(values []string) predicate {
	wanted := make([]string, 0, len(values))
	for _, v := range values {
		if v = canonicalType(v); v != "" {
			wanted = append(wanted, v)
		}
	}
	return func(l *models.Listing) bool {
		have := canonicalType(l.PropertyType)
		if have == "" {
			return false
		}
		for _, w := range wanted {
			if strings.Contains(have, w) || strings.Contains(w, have) {
				return true
			}
		}
		return false
	}
}

func microMarkets(values []string) predicate {
	needles := lowerAll(values)
	return func(l *models.Listing) bool {
		label := strings.ToLower(l.LocationLabel)
		for _, n := range needles {
			if n != "" && strings.Contains(label, n) {
				return true
			}
		}
		return false
	}
}

func amenitiesAll(values []string) predicate {
	required := lowerAll(values)
	return func(l *models.Listing) bool {
		have := make(map[string]struct{}, len(l.Amenities))
		for _, a := range l.Amenities {
			have[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
		}
		for _, r := range required {
			if _, ok := have[r]; !ok {
				return false
			}
		}
		return true
	}
}

func freeText(query string) predicate {
	phrase := strings.ToLower(query)
	keywords := Keywords(query)
	return func(l *models.Listing) bool {
		for _, field := range searchableFields(l) {
			if field == "" {
				continue
			}
			field = strings.ToLower(field)
			if strings.Contains(field, phrase) {
				return true
			}
			for _, k := range keywords {
				if strings.Contains(field, k) {
					return true
				}
			}
		}
		return false
	}
}

func searchableFields(l *models.Listing) []string {
	return []string{l.Title, l.LocationLabel, l.Developer, l.ShortDescription, l.Description}
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
