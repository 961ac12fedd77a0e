package filter

import (
	"strings"
	"unicode"
)

// minKeywordLen is the shortest token treated as a significant keyword
const minKeywordLen = 3

// typeSynonyms maps alias spellings onto one canonical property type
var typeSynonyms = map[string]string{
	"flat": "apartment",
}

// Keywords splits a free-text query into lower-cased significant tokens.
// Tokens of two characters or fewer ("in", "3") are dropped.
func Keywords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})

	seen := make(map[string]bool, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minKeywordLen || seen[f] {
			continue
		}
		seen[f] = true
		keywords = append(keywords, f)
	}
	return keywords
}

// canonicalType lower-cases a property type and rewrites synonyms so that
// "Flat", "Apartment" and "Apartment/Flat" share a common substring.
func canonicalType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	for alias, canonical := range typeSynonyms {
		t = strings.ReplaceAll(t, alias, canonical)
	}
	return t
}
