package domain

import "errors"

var (
	// ErrMissingQuery signals an empty search query.
	ErrMissingQuery = errors.New("search query is required")
	// ErrCatalogUnavailable signals that no catalog gateway is configured or reachable.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrTaxonomyNotFound signals a missing category or tag.
	ErrTaxonomyNotFound = errors.New("taxonomy term not found")
)
