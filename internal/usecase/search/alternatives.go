package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/domain"
	"github.com/shopgrid/prodsearch/internal/domain/search/outcome"
)

// Static fallback content for the stage-5 payload. An optional Suggester
// may replace the suggestions; the tips are always static.
var (
	staticSuggestions = []string{
		"Try a broader search term",
		"Check the spelling of product names",
		"Browse one of the available categories",
		"Remove price or sale qualifiers from your search",
	}

	staticSearchTips = []string{
		`Use simple product words like "laptop" or "desk"`,
		`Add "under $50" or "over $100" to bound the price`,
		`Add "on sale" to only see discounted items`,
		`Start with "cheapest" or "newest" to pick the ordering`,
	}
)

// alternatives builds the terminal no-results payload: up to ten stocked
// categories plus suggestions and search tips. No catalog search is issued.
func (s *Service) alternatives(
	ctx context.Context,
	p Params,
	categories []domain.Taxonomy,
	debug *outcome.Debug,
) outcome.Outcome {
	stocked := make([]domain.Taxonomy, 0, outcome.MaxAlternativeCategories)
	for _, c := range categories {
		if c.ProductCount <= 0 {
			continue
		}
		stocked = append(stocked, c)
		if len(stocked) == outcome.MaxAlternativeCategories {
			break
		}
	}

	o := outcome.Outcome{Alternatives: &outcome.Alternatives{
		Message:     "No products matched your search. Here are some alternatives.",
		Categories:  stocked,
		Suggestions: s.suggestions(ctx, p.Query, stocked),
		SearchTips:  staticSearchTips,
	}}
	if p.Debug {
		o.Debug = debug
	}
	return o
}

// suggestions asks the configured Suggester first and falls back to the
// static list on absence, failure, or an empty reply.
func (s *Service) suggestions(
	ctx context.Context, q string, categories []domain.Taxonomy,
) []string {
	if s.suggester == nil {
		return staticSuggestions
	}
	generated, err := s.suggester.Suggest(ctx, q, categories)
	if err != nil {
		s.logger.Warn("suggestion generation failed, using static suggestions",
			zap.Error(err))
		return staticSuggestions
	}
	if len(generated) == 0 {
		return staticSuggestions
	}
	return generated
}
