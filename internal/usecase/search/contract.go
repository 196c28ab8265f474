package search

import (
	"context"

	"github.com/shopgrid/prodsearch/internal/domain"
	domintent "github.com/shopgrid/prodsearch/internal/domain/intent"
	"github.com/shopgrid/prodsearch/internal/domain/search/query"
)

// CatalogGateway is the external, read-only product catalog this core
// queries. Owned by the surrounding platform; this core never mutates it.
type CatalogGateway interface {
	Search(ctx context.Context, q query.CatalogQuery) (domain.ProductPage, error)
	ListCategories(ctx context.Context) ([]domain.Taxonomy, error)
	ListTags(ctx context.Context) ([]domain.Taxonomy, error)
	// ResolveParent returns the parent category, or nil for top-level terms.
	ResolveParent(ctx context.Context, categoryID int64) (*domain.Taxonomy, error)
}

// IntentAnalyzer produces a structured intent for a raw query.
type IntentAnalyzer interface {
	Analyze(q string, categories, tags []domain.Taxonomy) (domintent.Intent, error)
}

// Suggester generates alternative-search suggestions for the stage-5
// payload. Optional; static suggestions are used when absent or failing.
type Suggester interface {
	Suggest(ctx context.Context, q string, categories []domain.Taxonomy) ([]string, error)
}
