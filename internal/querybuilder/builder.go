// Package querybuilder splits FilterCriteria into constraints the content
// store evaluates and criteria left for the in-memory filter.
package querybuilder

import (
	"strings"
	"unicode/utf8"

	"propfinder/server/internal/models"
)

// schema names the columns a market table exposes for push-down
type schema struct {
	table          string
	locationCols   []string
	statusCol      string
	regionCol      string
	shareCols      map[models.ShareKind]string
	splitsLocation bool
}

var schemas = map[models.Market]schema{
	models.MarketHyderabad: {
		table:        models.HyderabadRecord{}.TableName(),
		locationCols: []string{"micro_market"},
		statusCol:    "possession_status",
		shareCols: map[models.ShareKind]string{
			models.ShareLandowner: "landowner_share",
			models.ShareInvestor:  "investor_share",
			models.ShareResale:    "is_resale",
		},
	},
	models.MarketGoa: {
		table:          models.GoaRecord{}.TableName(),
		locationCols:   []string{"location_area", "district"},
		statusCol:      "completion_status",
		regionCol:      "district",
		splitsLocation: true,
	},
	models.MarketDubai: {
		table:        models.DubaiRecord{}.TableName(),
		locationCols: []string{"community"},
		statusCol:    "completion_status",
	},
}

// TableFor returns the store table of a market
func TableFor(market models.Market) string {
	return schemas[market].table
}

// Build derives the store plan for a market. Anything the store cannot
// evaluate without risking a false negative is left in Residual.
func Build(market models.Market, c models.FilterCriteria, limit int) Plan {
	s := schemas[market]
	plan := Plan{Market: market, Table: s.table, Limit: limit}

	residual := func(name string) {
		plan.Residual = append(plan.Residual, name)
	}
	push := func(con Constraint) {
		plan.Constraints = append(plan.Constraints, con)
	}

	if c.PriceRange != nil {
		push(Constraint{Kind: KindRange, Columns: []string{"price"}, Min: c.PriceRange.Min, Max: c.PriceRange.Max})
	}
	if len(c.BedroomsIn) > 0 {
		push(Constraint{Kind: KindIn, Columns: []string{"bedrooms"}, Ints: c.BedroomsIn})
	}

	if len(c.MicroMarketsContains) > 0 {
		terms, ok := locationTerms(c.MicroMarketsContains, s.splitsLocation)
		if ok {
			push(Constraint{Kind: KindContainsAny, Columns: s.locationCols, Terms: terms})
		} else {
			residual("micro_markets_contains")
		}
	}

	// Status values are trimmed by the normalizer, so exact matches are
	// widened to a substring match on the raw column.
	if c.PossessionStatus != nil {
		if v := strings.TrimSpace(*c.PossessionStatus); v != "" && isASCII(v) {
			push(Constraint{Kind: KindContainsAny, Columns: []string{s.statusCol}, Terms: []string{v}})
		} else {
			residual("possession_status")
		}
	}
	if c.CompletionStatusContains != "" {
		if isASCII(c.CompletionStatusContains) {
			push(Constraint{Kind: KindContainsAny, Columns: []string{s.statusCol}, Terms: []string{c.CompletionStatusContains}})
		} else {
			residual("completion_status_contains")
		}
	}
	if c.IsNewProjectFlag && c.FreeTextQuery == "" && c.CompletionStatusContains == "" {
		push(Constraint{Kind: KindNotNull, Columns: []string{s.statusCol}})
	}

	if c.Region != "" {
		if region := strings.TrimSpace(c.Region); s.regionCol != "" && isASCII(region) {
			push(Constraint{Kind: KindEqualFold, Columns: []string{s.regionCol}, Value: region})
		} else {
			residual("region")
		}
	}

	if len(c.ShareKinds) > 0 {
		cols := shareColumns(s, c.ShareKinds)
		if len(cols) > 0 {
			push(Constraint{Kind: KindAnyTrue, Columns: cols})
		} else {
			residual("share_kinds")
		}
	}

	// Synonyms, JSON arrays, the Independent sentinel and cross-field
	// keyword search are evaluated in memory only.
	if len(c.PropertyTypes) > 0 {
		residual("property_types")
	}
	if len(c.AmenitiesAll) > 0 {
		residual("amenities_all")
	}
	if len(c.Communities) > 0 {
		residual("communities")
	}
	if strings.TrimSpace(c.FreeTextQuery) != "" {
		residual("free_text_query")
	}
	return plan
}

// locationTerms returns the trimmed substring terms. When the location label
// joins several columns, a term spanning the separator cannot be matched
// against a single column and the whole criterion stays in memory.
func locationTerms(values []string, joined bool) ([]string, bool) {
	terms := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			// an empty term matches nothing in memory; skipping it only widens
			continue
		}
		if joined && strings.Contains(v, ",") {
			return nil, false
		}
		if !isASCII(v) {
			return nil, false
		}
		terms = append(terms, v)
	}
	return terms, len(terms) > 0
}

// isASCII reports whether a term is safe to compare in the store. Store
// lower-casing (SQLite LOWER) only folds ASCII letters, while the in-memory
// filter folds all of Unicode.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func shareColumns(s schema, kinds []models.ShareKind) []string {
	cols := make([]string, 0, len(kinds))
	seen := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		col, ok := s.shareCols[k]
		if !ok {
			return nil
		}
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	return cols
}
