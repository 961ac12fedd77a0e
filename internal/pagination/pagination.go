package pagination

import (
	"fmt"

	"propfinder/server/internal/models"
)

// DefaultPageSize is used when configuration does not set one
const DefaultPageSize = 20

// Page is one slice of a result set plus the totals needed to render navigation
type Page struct {
	Items       []models.Listing `json:"items"`
	TotalItems  int              `json:"total_items"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
	PageSize    int              `json:"page_size"`
}

// Paginate returns the 1-indexed page of listings. A page past the end is
// empty but still reports the totals.
func Paginate(listings []models.Listing, pageSize, page int) (Page, error) {
	if pageSize < 1 {
		return Page{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if page < 1 {
		return Page{}, fmt.Errorf("page must be 1 or greater, got %d", page)
	}

	total := len(listings)
	result := Page{
		Items:       []models.Listing{},
		TotalItems:  total,
		TotalPages:  (total + pageSize - 1) / pageSize,
		CurrentPage: page,
		PageSize:    pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	result.Items = listings[start:end]
	return result, nil
}
