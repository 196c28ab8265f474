package prodsearch

import "fmt"

// Error codes returned by the API.
const (
	CodeMissingQuery       = "missing_query"
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeBadRequest         = "bad_request"
	CodeInternalError      = "internal_error"
)

// APIError is a structured error returned by the service.
// Use errors.As to inspect the code.
type APIError struct {
	Status     int
	Code       string
	Message    string
	Suggestion string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prodsearch: %s (%d): %s", e.Code, e.Status, e.Message)
}
