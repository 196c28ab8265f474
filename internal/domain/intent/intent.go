// Package intent defines the structured interpretation of a free-text
// shopper query.
package intent

import "github.com/shopgrid/prodsearch/internal/domain/match"

// SortField is the catalog ordering a query asked for.
type SortField string

// Sort fields.
const (
	SortNone   SortField = ""
	SortPrice  SortField = "price"
	SortDate   SortField = "date"
	SortRating SortField = "rating"
)

// SortDirection is the ordering direction.
type SortDirection string

// Sort directions.
const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// TermMatch is a taxonomy term the analyzer matched a query token against.
type TermMatch struct {
	ID         int64
	Slug       string
	Name       string
	MatchType  match.Type
	Confidence float64
}

// Intent is the analyzer's structured output for one query.
// At most one sort field is set; when both price bounds are present
// PriceMin <= PriceMax; category and tag matches are independent.
type Intent struct {
	RawQuery     string
	CleanedQuery string

	SortBy        SortField
	SortDirection SortDirection

	PriceMin *float64
	PriceMax *float64
	OnSale   bool

	// Category is the single strongest category match. Categories carries
	// the top matches (up to three in the fallback-search variant) for
	// broader-category lookups.
	Category   *TermMatch
	Categories []TermMatch
	Tag        *TermMatch

	// PreserveFullText signals that a price intent was detected and the
	// catalog text search should see the original query, not the cleaned
	// one, so qualifying words still participate.
	PreserveFullText bool
}

// HasSort reports whether any sort directive was detected.
func (i Intent) HasSort() bool { return i.SortBy != SortNone }

// HasPriceBound reports whether a minimum or maximum price was detected.
func (i Intent) HasPriceBound() bool { return i.PriceMin != nil || i.PriceMax != nil }
