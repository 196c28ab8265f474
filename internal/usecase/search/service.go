// Package search runs the progressive fallback search: up to four
// increasingly relaxed catalog queries, then an alternatives payload when
// everything comes up empty.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/domain"
	domintent "github.com/shopgrid/prodsearch/internal/domain/intent"
	"github.com/shopgrid/prodsearch/internal/domain/search/outcome"
	"github.com/shopgrid/prodsearch/internal/domain/search/query"
	"github.com/shopgrid/prodsearch/internal/metrics"
)

// Stage names, reported to callers so tests and UIs can see which
// relaxation satisfied a request.
const (
	StageFullSearch        = "Stage 1: full search"
	StageCategoryOnly      = "Stage 2: category-only search"
	StageBroaderCategories = "Stage 3: broader category search"
	StageTextOnly          = "Stage 4: text-only search"
	StageAlternatives      = "Stage 5: alternatives"
)

// maxBroaderCategories caps how many categories stage 3 unions together.
const maxBroaderCategories = 3

// Params is one search invocation.
type Params struct {
	Query   string
	Page    int
	PerPage int
	Debug   bool
}

// Service is the fallback orchestrator. Stages run strictly in order and
// the first stage returning products terminates the run.
type Service struct {
	gateway   CatalogGateway
	analyzer  IntentAnalyzer
	suggester Suggester
	logger    *zap.Logger
}

// New creates the orchestrator. suggester may be nil.
func New(gateway CatalogGateway, analyzer IntentAnalyzer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: gateway, analyzer: analyzer, logger: logger}
}

// WithSuggester attaches an optional suggestion generator for the
// alternatives payload.
func (s *Service) WithSuggester(sg Suggester) *Service {
	s.suggester = sg
	return s
}

// stage is one planned relaxation. build derives the stage's catalog query
// when the fallback actually reaches it; returning false skips the stage
// (e.g. no categories to broaden). Deferring matters for stage 3, whose
// query needs parent-resolution catalog calls that must not run when an
// earlier stage already satisfied the request.
type stage struct {
	name  string
	build func(ctx context.Context) (query.CatalogQuery, bool)
}

// Search runs the fallback sequence for one query. It returns an error only
// for an empty query or a missing catalog; per-stage catalog failures are
// recovered as empty results and the run continues.
func (s *Service) Search(ctx context.Context, p Params) (outcome.Outcome, error) {
	if s.gateway == nil {
		metrics.SearchRunsTotal.WithLabelValues("rejected").Inc()
		return outcome.Outcome{}, domain.ErrCatalogUnavailable
	}
	if strings.TrimSpace(p.Query) == "" {
		metrics.SearchRunsTotal.WithLabelValues("rejected").Inc()
		return outcome.Outcome{}, domain.ErrMissingQuery
	}

	categories := s.listOrEmpty(ctx, "categories", s.gateway.ListCategories)
	tags := s.listOrEmpty(ctx, "tags", s.gateway.ListTags)

	it, err := s.analyzer.Analyze(p.Query, categories, tags)
	if err != nil {
		metrics.SearchRunsTotal.WithLabelValues("rejected").Inc()
		return outcome.Outcome{}, err
	}

	base := query.Build(it, p.Page, p.PerPage)
	debug := &outcome.Debug{}

	for _, st := range s.planStages(it, base, categories) {
		q, ok := st.build(ctx)
		if !ok {
			continue
		}
		page, err := s.gateway.Search(ctx, q)
		if err != nil {
			// Recovered locally: a failing stage counts as zero results.
			metrics.SearchStagesTotal.WithLabelValues(st.name, "error").Inc()
			s.logger.Warn("stage failed, continuing",
				zap.String("stage", st.name), zap.Error(err))
			debug.Stages = append(debug.Stages,
				outcome.StageRecord{Stage: st.name, Err: err.Error()})
			continue
		}
		if page.IsEmpty() {
			metrics.SearchStagesTotal.WithLabelValues(st.name, "empty").Inc()
			debug.Stages = append(debug.Stages, outcome.StageRecord{Stage: st.name})
			continue
		}

		metrics.SearchStagesTotal.WithLabelValues(st.name, "hit").Inc()
		metrics.SearchRunsTotal.WithLabelValues("found").Inc()
		debug.Stages = append(debug.Stages,
			outcome.StageRecord{Stage: st.name, Total: page.Total})
		return s.success(st.name, page, base.PerPage, p.Debug, debug), nil
	}

	debug.Stages = append(debug.Stages, outcome.StageRecord{Stage: StageAlternatives})
	metrics.SearchRunsTotal.WithLabelValues("alternatives").Inc()
	return s.alternatives(ctx, p, categories, debug), nil
}

// planStages derives the four catalog-query stages from the stage-1 query.
// Each stage is built from scratch off the base query, never from partial
// results of a prior stage.
func (s *Service) planStages(
	it domintent.Intent,
	base query.CatalogQuery,
	categories []domain.Taxonomy,
) []stage {
	ready := func(q query.CatalogQuery) func(context.Context) (query.CatalogQuery, bool) {
		return func(context.Context) (query.CatalogQuery, bool) { return q, true }
	}

	categoryOnly := base
	categoryOnly.OnSale = false
	categoryOnly.SortBy = domintent.SortNone
	categoryOnly.SortDirection = ""
	categoryOnly.PriceMin = nil
	categoryOnly.PriceMax = nil

	broader := func(ctx context.Context) (query.CatalogQuery, bool) {
		slugs := s.broadenCategories(ctx, it.Categories, categories)
		if len(slugs) == 0 {
			return query.CatalogQuery{}, false
		}
		return query.CatalogQuery{
			CategorySlug: strings.Join(slugs, ","),
			Page:         base.Page,
			PerPage:      base.PerPage,
		}, true
	}

	textOnly := query.CatalogQuery{
		// The cleaned query, not the raw one: qualifier words would only
		// add noise once every structured filter is gone.
		FreeText: it.CleanedQuery,
		Page:     base.Page,
		PerPage:  base.PerPage,
	}

	return []stage{
		{name: StageFullSearch, build: ready(base)},
		{name: StageCategoryOnly, build: ready(categoryOnly)},
		{name: StageBroaderCategories, build: broader},
		{name: StageTextOnly, build: ready(textOnly)},
	}
}

// broadenCategories resolves each matched category to its parent; matches
// without a parent fall back to every other top-level category. A flat
// taxonomy therefore broadens to sibling categories, which can be
// semantically distant; callers see the chosen set in the debug trace.
func (s *Service) broadenCategories(
	ctx context.Context,
	matched []domintent.TermMatch,
	snapshot []domain.Taxonomy,
) []string {
	if len(matched) == 0 {
		return nil
	}

	matchedIDs := make(map[int64]struct{}, len(matched))
	for _, m := range matched {
		matchedIDs[m.ID] = struct{}{}
	}

	var slugs []string
	seen := make(map[int64]struct{})
	add := func(t domain.Taxonomy) {
		if _, dup := seen[t.ID]; dup || len(slugs) >= maxBroaderCategories {
			return
		}
		seen[t.ID] = struct{}{}
		slugs = append(slugs, t.Slug)
	}

	for _, m := range matched {
		parent, err := s.gateway.ResolveParent(ctx, m.ID)
		if err != nil {
			s.logger.Warn("parent resolution failed",
				zap.Int64("category_id", m.ID), zap.Error(err))
			continue
		}
		if parent != nil {
			add(*parent)
			continue
		}
		for _, t := range snapshot {
			if !t.IsTopLevel() {
				continue
			}
			if _, isMatched := matchedIDs[t.ID]; isMatched {
				continue
			}
			add(t)
		}
	}
	return slugs
}

func (s *Service) success(
	stageName string,
	page domain.ProductPage,
	perPage int,
	withDebug bool,
	debug *outcome.Debug,
) outcome.Outcome {
	products := page.Products
	if len(products) > outcome.MaxProducts {
		products = products[:outcome.MaxProducts]
	}
	totalPages := page.TotalPages
	if totalPages == 0 && perPage > 0 {
		totalPages = (page.Total + perPage - 1) / perPage
	}
	o := outcome.Outcome{Results: &outcome.Results{
		Stage:         stageName,
		Products:      products,
		TotalProducts: page.Total,
		TotalPages:    totalPages,
		Message:       fmt.Sprintf("Found %d products (%s).", page.Total, stageName),
	}}
	if withDebug {
		o.Debug = debug
	}
	return o
}

func (s *Service) listOrEmpty(
	ctx context.Context,
	kind string,
	list func(context.Context) ([]domain.Taxonomy, error),
) []domain.Taxonomy {
	terms, err := list(ctx)
	if err != nil {
		s.logger.Warn("taxonomy listing failed, matching without it",
			zap.String("kind", kind), zap.Error(err))
		return nil
	}
	return terms
}
