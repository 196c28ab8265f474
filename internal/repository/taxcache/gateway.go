// Package taxcache wraps a catalog gateway with a TTL cache for taxonomy
// listings. The search core itself stays cache-free; this decorator is the
// platform-side cache around the gateway it hands to the core.
package taxcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/db"
	"github.com/shopgrid/prodsearch/internal/domain"
	"github.com/shopgrid/prodsearch/internal/domain/search/query"
)

const (
	categoriesKey = "prodsearch:taxcache:categories"
	tagsKey       = "prodsearch:taxcache:tags"
)

// store is the consumer interface for the cache backend.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// gateway is the wrapped catalog surface.
type gateway interface {
	Search(ctx context.Context, q query.CatalogQuery) (domain.ProductPage, error)
	ListCategories(ctx context.Context) ([]domain.Taxonomy, error)
	ListTags(ctx context.Context) ([]domain.Taxonomy, error)
	ResolveParent(ctx context.Context, categoryID int64) (*domain.Taxonomy, error)
}

// Gateway caches ListCategories and ListTags; Search and ResolveParent pass
// through untouched.
type Gateway struct {
	inner      gateway
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates the caching decorator. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"); nil disables counting.
func New(
	inner gateway,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{inner: inner, store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Search passes through to the catalog.
func (g *Gateway) Search(ctx context.Context, q query.CatalogQuery) (domain.ProductPage, error) {
	return g.inner.Search(ctx, q) //nolint:wrapcheck // pure pass-through
}

// ResolveParent passes through to the catalog.
func (g *Gateway) ResolveParent(ctx context.Context, categoryID int64) (*domain.Taxonomy, error) {
	return g.inner.ResolveParent(ctx, categoryID) //nolint:wrapcheck // pure pass-through
}

// ListCategories returns cached categories or fetches and caches them.
func (g *Gateway) ListCategories(ctx context.Context) ([]domain.Taxonomy, error) {
	return g.cached(ctx, categoriesKey, g.inner.ListCategories)
}

// ListTags returns cached tags or fetches and caches them.
func (g *Gateway) ListTags(ctx context.Context) ([]domain.Taxonomy, error) {
	return g.cached(ctx, tagsKey, g.inner.ListTags)
}

func (g *Gateway) cached(
	ctx context.Context,
	key string,
	fetch func(context.Context) ([]domain.Taxonomy, error),
) ([]domain.Taxonomy, error) {
	if terms, ok := g.fromCache(ctx, key); ok {
		g.incCache("hit")
		return terms, nil
	}
	g.incCache("miss")

	terms, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("list taxonomy: %w", err)
	}

	g.put(ctx, key, terms)
	return terms, nil
}

func (g *Gateway) fromCache(ctx context.Context, key string) ([]domain.Taxonomy, bool) {
	data, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			g.logger.Warn("taxonomy cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var terms []domain.Taxonomy
	if err := json.Unmarshal(data, &terms); err != nil {
		g.logger.Warn("taxonomy cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return terms, true
}

func (g *Gateway) put(ctx context.Context, key string, terms []domain.Taxonomy) {
	data, err := json.Marshal(terms)
	if err != nil {
		g.logger.Warn("taxonomy cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := g.store.SetWithTTL(ctx, key, data, g.ttl); err != nil {
		g.logger.Warn("taxonomy cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (g *Gateway) incCache(result string) {
	if g.cacheTotal != nil {
		g.cacheTotal.WithLabelValues(result).Inc()
	}
}
