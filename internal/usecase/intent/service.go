package intent

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/domain"
	domintent "github.com/shopgrid/prodsearch/internal/domain/intent"
)

// Service pairs an analyzer with the store's taxonomy source for the
// standalone intent-analysis endpoint.
type Service struct {
	analyzer *Analyzer
	taxa     TaxonomyLister
	logger   *zap.Logger
}

// NewService creates an intent service.
func NewService(analyzer *Analyzer, taxa TaxonomyLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{analyzer: analyzer, taxa: taxa, logger: logger}
}

// Analyze fetches the taxonomy snapshot and runs the analyzer. Taxonomy
// fetch failures degrade to empty lists: the intent still carries sort,
// price, and promotion signals, just no category or tag match.
func (s *Service) Analyze(ctx context.Context, query string) (domintent.Intent, error) {
	var categories, tags []domain.Taxonomy
	if s.taxa != nil {
		var err error
		if categories, err = s.taxa.ListCategories(ctx); err != nil {
			s.logger.Warn("category listing failed, matching without categories", zap.Error(err))
			categories = nil
		}
		if tags, err = s.taxa.ListTags(ctx); err != nil {
			s.logger.Warn("tag listing failed, matching without tags", zap.Error(err))
			tags = nil
		}
	}
	return s.analyzer.Analyze(query, categories, tags)
}
