package services

import (
	"math"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// Paging defaults
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps Offset from overflowing for any limit up to MaxLimit
	MaxPage = math.MaxInt / MaxLimit
)

// Page is a normalised page request
type Page struct {
	Number int
	Limit  int
}

// NewPage applies defaults: non-positive values fall back to page 1 and
// DefaultLimit. The limit is capped at MaxLimit and the page at MaxPage.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if number > MaxPage {
		number = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination builds the metadata for a result set of total rows
func (p Page) Pagination(total int) models.Pagination {
	totalPages := (total + p.Limit - 1) / p.Limit
	return models.Pagination{
		CurrentPage:  p.Number,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNextPage:  p.Number < totalPages,
		HasPrevPage:  p.Number > 1,
	}
}
