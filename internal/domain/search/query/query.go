// Package query defines the catalog-agnostic search query value.
package query

import "github.com/shopgrid/prodsearch/internal/domain/intent"

// Pagination limits, per the boundary contract.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// CatalogQuery is one request against the product catalog. It is a pure
// value: no identity, recreated for every fallback stage.
type CatalogQuery struct {
	FreeText      string
	CategorySlug  string // comma-joined slugs when stage 3 unions categories
	TagSlug       string
	SortBy        intent.SortField
	SortDirection intent.SortDirection
	PriceMin      *float64
	PriceMax      *float64
	OnSale        bool
	Page          int
	PerPage       int
}

// Build maps an intent plus pagination onto a CatalogQuery. Deterministic
// and side-effect-free: the same intent and page always yield the same
// query. Free text is the raw query when the intent asked to preserve it,
// otherwise the cleaned query; either way it may end up empty.
func Build(it intent.Intent, page, perPage int) CatalogQuery {
	q := CatalogQuery{
		FreeText:      it.CleanedQuery,
		SortBy:        it.SortBy,
		SortDirection: it.SortDirection,
		PriceMin:      it.PriceMin,
		PriceMax:      it.PriceMax,
		OnSale:        it.OnSale,
		Page:          page,
		PerPage:       perPage,
	}
	if it.PreserveFullText {
		q.FreeText = it.RawQuery
	}
	if it.Category != nil {
		q.CategorySlug = it.Category.Slug
	}
	if it.Tag != nil {
		q.TagSlug = it.Tag.Slug
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	return q
}
