package intent

import (
	"context"

	"github.com/shopgrid/prodsearch/internal/domain"
)

// TaxonomyLister fetches the store's category and tag snapshot.
type TaxonomyLister interface {
	ListCategories(ctx context.Context) ([]domain.Taxonomy, error)
	ListTags(ctx context.Context) ([]domain.Taxonomy, error)
}
