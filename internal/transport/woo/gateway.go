// Package woo implements the catalog gateway against a WooCommerce REST API.
package woo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/domain"
	"github.com/shopgrid/prodsearch/internal/domain/search/query"
)

const apiBase = "/wp-json/wc/v3"

// Config holds the store connection settings.
type Config struct {
	// BaseURL is the store root, e.g. https://shop.example.com.
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
	Logger         *zap.Logger
}

// Gateway is a read-only WooCommerce catalog client.
type Gateway struct {
	baseURL string
	ck, cs  string
	client  *http.Client
	logger  *zap.Logger
}

// New creates a catalog gateway.
func New(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ck:      cfg.ConsumerKey,
		cs:      cfg.ConsumerSecret,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// wooTerm is the wire shape of a category or tag.
type wooTerm struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int64  `json:"parent"`
	Count  int    `json:"count"`
}

func (t wooTerm) toDomain() domain.Taxonomy {
	return domain.Taxonomy{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		ParentID:     t.Parent,
		ProductCount: t.Count,
	}
}

// Search runs one product query. Category and tag slugs are translated to
// term ids, since the products endpoint filters by id.
func (g *Gateway) Search(ctx context.Context, q query.CatalogQuery) (domain.ProductPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("status", "publish")

	if q.FreeText != "" {
		params.Set("search", q.FreeText)
	}
	if q.CategorySlug != "" {
		ids, err := g.termIDs(ctx, "/products/categories", q.CategorySlug)
		if err != nil {
			return domain.ProductPage{}, err
		}
		if ids != "" {
			params.Set("category", ids)
		}
	}
	if q.TagSlug != "" {
		ids, err := g.termIDs(ctx, "/products/tags", q.TagSlug)
		if err != nil {
			return domain.ProductPage{}, err
		}
		if ids != "" {
			params.Set("tag", ids)
		}
	}
	if q.SortBy != "" {
		params.Set("orderby", string(q.SortBy))
		params.Set("order", string(q.SortDirection))
	}
	if q.PriceMin != nil {
		params.Set("min_price", strconv.FormatFloat(*q.PriceMin, 'f', -1, 64))
	}
	if q.PriceMax != nil {
		params.Set("max_price", strconv.FormatFloat(*q.PriceMax, 'f', -1, 64))
	}
	if q.OnSale {
		params.Set("on_sale", "true")
	}

	var products []domain.Product
	header, err := g.get(ctx, "/products", params, &products)
	if err != nil {
		return domain.ProductPage{}, err
	}

	total, _ := strconv.Atoi(header.Get("X-WP-Total"))
	totalPages, _ := strconv.Atoi(header.Get("X-WP-TotalPages"))
	if total == 0 {
		total = len(products)
	}
	return domain.ProductPage{Products: products, Total: total, TotalPages: totalPages}, nil
}

// ListCategories fetches the category snapshot.
func (g *Gateway) ListCategories(ctx context.Context) ([]domain.Taxonomy, error) {
	return g.listTerms(ctx, "/products/categories")
}

// ListTags fetches the tag snapshot.
func (g *Gateway) ListTags(ctx context.Context) ([]domain.Taxonomy, error) {
	return g.listTerms(ctx, "/products/tags")
}

// ResolveParent returns the parent category of categoryID, or nil for
// top-level categories.
func (g *Gateway) ResolveParent(ctx context.Context, categoryID int64) (*domain.Taxonomy, error) {
	var term wooTerm
	path := fmt.Sprintf("/products/categories/%d", categoryID)
	if _, err := g.get(ctx, path, url.Values{}, &term); err != nil {
		return nil, err
	}
	if term.Parent == 0 {
		return nil, nil
	}

	var parent wooTerm
	path = fmt.Sprintf("/products/categories/%d", term.Parent)
	if _, err := g.get(ctx, path, url.Values{}, &parent); err != nil {
		return nil, err
	}
	t := parent.toDomain()
	return &t, nil
}

// Ping checks that the store answers at all.
func (g *Gateway) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("per_page", "1")
	var terms []wooTerm
	if _, err := g.get(ctx, "/products/categories", params, &terms); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	return nil
}

func (g *Gateway) listTerms(ctx context.Context, path string) ([]domain.Taxonomy, error) {
	params := url.Values{}
	params.Set("per_page", "100")
	params.Set("hide_empty", "false")

	var terms []wooTerm
	if _, err := g.get(ctx, path, params, &terms); err != nil {
		return nil, err
	}
	out := make([]domain.Taxonomy, len(terms))
	for i, t := range terms {
		out[i] = t.toDomain()
	}
	return out, nil
}

// termIDs maps comma-joined slugs to comma-joined term ids. Unknown slugs
// are dropped rather than failing the whole query.
func (g *Gateway) termIDs(ctx context.Context, path, slugs string) (string, error) {
	terms, err := g.listTerms(ctx, path)
	if err != nil {
		return "", err
	}
	bySlug := make(map[string]int64, len(terms))
	for _, t := range terms {
		bySlug[t.Slug] = t.ID
	}

	var ids []string
	for _, slug := range strings.Split(slugs, ",") {
		if id, ok := bySlug[strings.TrimSpace(slug)]; ok {
			ids = append(ids, strconv.FormatInt(id, 10))
		} else {
			g.logger.Debug("unknown taxonomy slug dropped", zap.String("slug", slug))
		}
	}
	return strings.Join(ids, ","), nil
}

// get performs one API request and decodes the JSON body into out.
func (g *Gateway) get(
	ctx context.Context, path string, params url.Values, out any,
) (http.Header, error) {
	u := g.baseURL + apiBase + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if g.ck != "" {
		req.SetBasicAuth(g.ck, g.cs)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return resp.Header, nil
}
