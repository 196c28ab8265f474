package query

import (
	"reflect"
	"testing"

	"github.com/shopgrid/prodsearch/internal/domain/intent"
)

func TestBuild_UsesCleanedQueryByDefault(t *testing.T) {
	it := intent.Intent{RawQuery: "cheapest laptops", CleanedQuery: "laptops"}
	q := Build(it, 1, 20)
	if q.FreeText != "laptops" {
		t.Errorf("expected cleaned query, got %q", q.FreeText)
	}
}

func TestBuild_PreservesRawQueryForPriceIntents(t *testing.T) {
	it := intent.Intent{
		RawQuery:         "cheapest laptops",
		CleanedQuery:     "laptops",
		SortBy:           intent.SortPrice,
		SortDirection:    intent.Ascending,
		PreserveFullText: true,
	}
	q := Build(it, 1, 20)
	if q.FreeText != "cheapest laptops" {
		t.Errorf("expected raw query, got %q", q.FreeText)
	}
	if q.SortBy != intent.SortPrice || q.SortDirection != intent.Ascending {
		t.Errorf("sort not carried over: %+v", q)
	}
}

func TestBuild_MapsTaxonomyMatches(t *testing.T) {
	it := intent.Intent{
		Category: &intent.TermMatch{ID: 1, Slug: "laptops"},
		Tag:      &intent.TermMatch{ID: 2, Slug: "gaming"},
	}
	q := Build(it, 1, 20)
	if q.CategorySlug != "laptops" || q.TagSlug != "gaming" {
		t.Errorf("taxonomy slugs not mapped: %+v", q)
	}
}

func TestBuild_ClampsPagination(t *testing.T) {
	tests := []struct {
		page, perPage     int
		wantPage, wantPer int
	}{
		{0, 0, 1, DefaultPerPage},
		{-3, -1, 1, DefaultPerPage},
		{2, 50, 2, 50},
		{1, 500, 1, MaxPerPage},
	}
	for _, tt := range tests {
		q := Build(intent.Intent{}, tt.page, tt.perPage)
		if q.Page != tt.wantPage || q.PerPage != tt.wantPer {
			t.Errorf("Build(page=%d, perPage=%d): got (%d, %d), want (%d, %d)",
				tt.page, tt.perPage, q.Page, q.PerPage, tt.wantPage, tt.wantPer)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	pmax := 500.0
	it := intent.Intent{
		RawQuery:     "laptops under 500 on sale",
		CleanedQuery: "laptops",
		PriceMax:     &pmax,
		OnSale:       true,
		Category:     &intent.TermMatch{ID: 1, Slug: "laptops"},
	}
	a := Build(it, 2, 30)
	b := Build(it, 2, 30)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same intent and page produced different queries:\n%+v\n%+v", a, b)
	}
}
