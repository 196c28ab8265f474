package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopgrid/prodsearch/internal/domain"
	domintent "github.com/shopgrid/prodsearch/internal/domain/intent"
	"github.com/shopgrid/prodsearch/internal/domain/search/query"
	intentuc "github.com/shopgrid/prodsearch/internal/usecase/intent"
)

// --- Mocks ---

type searchResponse struct {
	page domain.ProductPage
	err  error
}

type mockGateway struct {
	categories []domain.Taxonomy
	tags       []domain.Taxonomy
	parents    map[int64]*domain.Taxonomy
	parentErr  error

	responses    []searchResponse
	searchCalls  []query.CatalogQuery
	resolveCalls int
}

func (m *mockGateway) Search(_ context.Context, q query.CatalogQuery) (domain.ProductPage, error) {
	m.searchCalls = append(m.searchCalls, q)
	if len(m.responses) == 0 {
		return domain.ProductPage{}, nil
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	return r.page, r.err
}

func (m *mockGateway) ListCategories(_ context.Context) ([]domain.Taxonomy, error) {
	return m.categories, nil
}

func (m *mockGateway) ListTags(_ context.Context) ([]domain.Taxonomy, error) {
	return m.tags, nil
}

func (m *mockGateway) ResolveParent(_ context.Context, id int64) (*domain.Taxonomy, error) {
	m.resolveCalls++
	if m.parentErr != nil {
		return nil, m.parentErr
	}
	return m.parents[id], nil
}

type mockSuggester struct {
	suggestions []string
	err         error
	called      bool
}

func (m *mockSuggester) Suggest(_ context.Context, _ string, _ []domain.Taxonomy) ([]string, error) {
	m.called = true
	return m.suggestions, m.err
}

func products(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{"id": i + 1}
	}
	return out
}

func newService(gw *mockGateway) *Service {
	analyzer := intentuc.NewRelaxed(domintent.DefaultVocabulary(), nil)
	return New(gw, analyzer, nil)
}

// --- Tests ---

func TestSearch_ShortCircuitsOnFirstHit(t *testing.T) {
	gw := &mockGateway{
		responses: []searchResponse{
			{page: domain.ProductPage{Products: products(3), Total: 3}},
		},
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "laptops"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.Found() {
		t.Fatal("expected a results outcome")
	}
	if o.Results.Stage != StageFullSearch {
		t.Errorf("expected %q, got %q", StageFullSearch, o.Results.Stage)
	}
	if len(gw.searchCalls) != 1 {
		t.Errorf("later stages must not run after a hit, got %d calls", len(gw.searchCalls))
	}
}

func TestSearch_NoParentLookupsBeforeStageThree(t *testing.T) {
	// A matched category means stage 3 would broaden via ResolveParent.
	// When stage 1 already satisfies the request, none of those catalog
	// calls may be issued.
	gw := &mockGateway{
		categories: []domain.Taxonomy{
			{ID: 1, Name: "Laptops", Slug: "laptops", ProductCount: 12},
		},
		responses: []searchResponse{
			{page: domain.ProductPage{Products: products(2), Total: 2}},
		},
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "laptops"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.Found() {
		t.Fatal("expected a results outcome")
	}
	if len(gw.searchCalls) != 1 {
		t.Errorf("expected a single stage-1 search, got %d calls", len(gw.searchCalls))
	}
	if gw.resolveCalls != 0 {
		t.Errorf("expected no parent lookups after a stage-1 hit, got %d", gw.resolveCalls)
	}
}

func TestSearch_ParentLookupsOnlyWhenStageThreeRuns(t *testing.T) {
	gw := &mockGateway{
		categories: []domain.Taxonomy{
			{ID: 4, Name: "Gaming Laptops", Slug: "gaming-laptops", ParentID: 1, ProductCount: 5},
		},
		parents: map[int64]*domain.Taxonomy{
			4: {ID: 1, Name: "Laptops", Slug: "laptops"},
		},
		responses: []searchResponse{
			{}, // stage 1 empty
			{page: domain.ProductPage{Products: products(1), Total: 1}}, // stage 2
		},
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "gaming laptops"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Results.Stage != StageCategoryOnly {
		t.Fatalf("expected stage 2, got %q", o.Results.Stage)
	}
	if gw.resolveCalls != 0 {
		t.Errorf("expected no parent lookups before stage 3, got %d", gw.resolveCalls)
	}
}

func TestSearch_StageOrdering(t *testing.T) {
	gw := &mockGateway{
		categories: []domain.Taxonomy{
			{ID: 1, Name: "Laptops", Slug: "laptops", ProductCount: 12},
			{ID: 2, Name: "Phones", Slug: "phones", ProductCount: 8},
			{ID: 4, Name: "Gaming Laptops", Slug: "gaming-laptops", ParentID: 1, ProductCount: 5},
		},
		parents: map[int64]*domain.Taxonomy{
			4: {ID: 1, Name: "Laptops", Slug: "laptops"},
		},
		responses: []searchResponse{
			{}, // stage 1 empty
			{}, // stage 2 empty
			{}, // stage 3 empty
			{page: domain.ProductPage{Products: products(2), Total: 2}}, // stage 4
		},
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "gaming laptops", Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.Found() {
		t.Fatal("expected a results outcome")
	}
	if !strings.Contains(o.Results.Stage, "Stage 4") {
		t.Errorf("expected stage 4, got %q", o.Results.Stage)
	}
	if len(gw.searchCalls) != 4 {
		t.Fatalf("expected stages 1-4 attempted exactly once, got %d calls", len(gw.searchCalls))
	}
	if gw.resolveCalls == 0 {
		t.Error("expected parent lookups once stage 3 actually ran")
	}
	want := []string{StageFullSearch, StageCategoryOnly, StageBroaderCategories, StageTextOnly}
	got := o.Debug.StageNames()
	if len(got) != len(want) {
		t.Fatalf("debug trace: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("debug trace[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearch_CapsReturnedProducts(t *testing.T) {
	gw := &mockGateway{
		responses: []searchResponse{
			{page: domain.ProductPage{Products: products(35), Total: 35}},
		},
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "desk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.Results.Products) != 20 {
		t.Errorf("expected 20 products in the payload, got %d", len(o.Results.Products))
	}
	if o.Results.TotalProducts != 35 {
		t.Errorf("expected actual total 35, got %d", o.Results.TotalProducts)
	}
}

func TestSearch_CheapestOnSaleResolvesAtStageTwo(t *testing.T) {
	gw := &mockGateway{
		categories: []domain.Taxonomy{
			{ID: 1, Name: "Laptops", Slug: "laptops", ProductCount: 12},
		},
		responses: []searchResponse{
			{}, // stage 1: on-sale + sorted query finds nothing
			{page: domain.ProductPage{Products: products(3), Total: 3}},
		},
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "cheapest laptops on sale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.Found() {
		t.Fatal("expected a results outcome")
	}
	if !strings.Contains(o.Results.Stage, "Stage 2") {
		t.Errorf("expected stage 2, got %q", o.Results.Stage)
	}
	if o.Results.TotalProducts != 3 {
		t.Errorf("expected total 3, got %d", o.Results.TotalProducts)
	}

	first, second := gw.searchCalls[0], gw.searchCalls[1]
	if !first.OnSale || first.SortBy != domintent.SortPrice {
		t.Errorf("stage 1 must keep promo and sort filters: %+v", first)
	}
	if second.OnSale || second.SortBy != domintent.SortNone || second.PriceMax != nil {
		t.Errorf("stage 2 must drop promo, sort, and price filters: %+v", second)
	}
	if second.CategorySlug != "laptops" {
		t.Errorf("stage 2 must keep the category, got %q", second.CategorySlug)
	}
}

func TestSearch_AlternativesWhenExhausted(t *testing.T) {
	categories := make([]domain.Taxonomy, 0, 14)
	for i := int64(1); i <= 12; i++ {
		categories = append(categories, domain.Taxonomy{
			ID: i, Name: "Cat", Slug: "cat", ProductCount: int(i),
		})
	}
	// Empty categories must never appear in the alternatives.
	categories = append(categories,
		domain.Taxonomy{ID: 13, Name: "Empty", Slug: "empty", ProductCount: 0})

	gw := &mockGateway{categories: categories}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "zzgarbage", Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Found() {
		t.Fatal("expected an alternatives outcome")
	}
	alt := o.Alternatives
	if len(alt.Categories) != 10 {
		t.Errorf("expected 10 alternative categories, got %d", len(alt.Categories))
	}
	for _, c := range alt.Categories {
		if c.ProductCount <= 0 {
			t.Errorf("category %d has no products", c.ID)
		}
	}
	if len(alt.Suggestions) == 0 || len(alt.SearchTips) == 0 {
		t.Error("alternatives must carry suggestions and search tips")
	}
	names := o.Debug.StageNames()
	if names[len(names)-1] != StageAlternatives {
		t.Errorf("debug trace must end with stage 5, got %v", names)
	}
}

func TestSearch_PerStageErrorsAreRecovered(t *testing.T) {
	gw := &mockGateway{
		responses: []searchResponse{
			{err: errors.New("catalog timeout")}, // stage 1 blows up
			{page: domain.ProductPage{Products: products(1), Total: 1}},
		},
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "laptops", Debug: true})
	if err != nil {
		t.Fatalf("per-stage errors must not surface: %v", err)
	}
	if !o.Found() || !strings.Contains(o.Results.Stage, "Stage 2") {
		t.Fatalf("expected stage 2 to satisfy the request, got %+v", o.Results)
	}
	if o.Debug.Stages[0].Err == "" {
		t.Error("recovered error must be recorded in the debug trace")
	}
}

func TestSearch_MissingQueryFailsFast(t *testing.T) {
	gw := &mockGateway{}
	svc := newService(gw)

	_, err := svc.Search(context.Background(), Params{Query: "   "})
	if !errors.Is(err, domain.ErrMissingQuery) {
		t.Fatalf("expected ErrMissingQuery, got %v", err)
	}
	if len(gw.searchCalls) != 0 {
		t.Error("no stage may run for an empty query")
	}
}

func TestSearch_NilGatewayIsFatal(t *testing.T) {
	analyzer := intentuc.NewRelaxed(domintent.DefaultVocabulary(), nil)
	svc := New(nil, analyzer, nil)

	_, err := svc.Search(context.Background(), Params{Query: "laptops"})
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestSearch_SkipsBroadeningWithoutCategoryMatch(t *testing.T) {
	gw := &mockGateway{} // no taxonomy at all, all stages empty
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "widget", Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Found() {
		t.Fatal("expected alternatives")
	}
	for _, name := range o.Debug.StageNames() {
		if name == StageBroaderCategories {
			t.Error("stage 3 must be skipped when no category matched")
		}
	}
	if len(gw.searchCalls) != 3 {
		t.Errorf("expected stages 1, 2, 4 only, got %d calls", len(gw.searchCalls))
	}
}

func TestSearch_BroadensToSiblingsForFlatTaxonomy(t *testing.T) {
	gw := &mockGateway{
		categories: []domain.Taxonomy{
			{ID: 1, Name: "Laptops", Slug: "laptops", ProductCount: 1},
			{ID: 2, Name: "Phones", Slug: "phones", ProductCount: 1},
			{ID: 3, Name: "Desks", Slug: "desks", ProductCount: 1},
			{ID: 4, Name: "Chairs", Slug: "chairs", ProductCount: 1},
			{ID: 5, Name: "Monitors", Slug: "monitors", ProductCount: 1},
		},
		parents: map[int64]*domain.Taxonomy{}, // flat: nobody has a parent
	}
	svc := newService(gw)

	o, err := svc.Search(context.Background(), Params{Query: "laptops", Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Found() {
		t.Fatal("expected alternatives, all stages are empty")
	}

	// Stage 3 is the third search call: siblings of the matched category in
	// snapshot order, matched one excluded, capped at three, comma-joined.
	if len(gw.searchCalls) != 4 {
		t.Fatalf("expected 4 stage queries, got %d", len(gw.searchCalls))
	}
	broader := gw.searchCalls[2]
	if broader.CategorySlug != "phones,desks,chairs" {
		t.Errorf("broadened categories: got %q, want %q",
			broader.CategorySlug, "phones,desks,chairs")
	}
	if broader.FreeText != "" || broader.OnSale || broader.SortBy != domintent.SortNone {
		t.Errorf("stage 3 must drop every other filter: %+v", broader)
	}
}

func TestSearch_SuggesterReplacesStaticSuggestions(t *testing.T) {
	gw := &mockGateway{}
	sg := &mockSuggester{suggestions: []string{"try office chairs"}}
	svc := newService(gw).WithSuggester(sg)

	o, _ := svc.Search(context.Background(), Params{Query: "zzgarbage"})
	if !sg.called {
		t.Fatal("expected the suggester to be consulted")
	}
	if len(o.Alternatives.Suggestions) != 1 || o.Alternatives.Suggestions[0] != "try office chairs" {
		t.Errorf("unexpected suggestions: %v", o.Alternatives.Suggestions)
	}
}

func TestSearch_SuggesterFailureFallsBackToStatic(t *testing.T) {
	gw := &mockGateway{}
	sg := &mockSuggester{err: errors.New("llm down")}
	svc := newService(gw).WithSuggester(sg)

	o, _ := svc.Search(context.Background(), Params{Query: "zzgarbage"})
	if len(o.Alternatives.Suggestions) != len(staticSuggestions) {
		t.Errorf("expected static suggestions, got %v", o.Alternatives.Suggestions)
	}
}
