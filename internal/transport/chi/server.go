package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/domain"
	domintent "github.com/shopgrid/prodsearch/internal/domain/intent"
	"github.com/shopgrid/prodsearch/internal/domain/search/outcome"
	healthuc "github.com/shopgrid/prodsearch/internal/usecase/health"
	intentuc "github.com/shopgrid/prodsearch/internal/usecase/intent"
	searchuc "github.com/shopgrid/prodsearch/internal/usecase/search"
)

// Error codes returned in the {error: {code, message}} envelope.
const (
	codeBadRequest         = "bad_request"
	codeMissingQuery       = "missing_query"
	codeCatalogUnavailable = "catalog_unavailable"
	codeInternalError      = "internal_error"
)

const missingQuerySuggestion = "Provide a search phrase, e.g. \"cheapest laptops under $500\"."

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the fallback search and intent analysis over HTTP.
type Server struct {
	search        *searchuc.Service
	intent        *intentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	intent *intentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		intent: intent,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		missingQueryHandler,
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, codeCatalogUnavailable),
	}
	return s
}

type searchRequest struct {
	Query   string `json:"query"`
	PerPage int    `json:"perPage"`
	Page    int    `json:"page"`
	Debug   bool   `json:"debug"`
}

type searchResultsResponse struct {
	Success            bool             `json:"success"`
	SearchStrategyUsed string           `json:"searchStrategyUsed"`
	Products           []domain.Product `json:"products"`
	TotalProducts      int              `json:"totalProducts"`
	TotalPages         int              `json:"totalPages"`
	Message            string           `json:"message"`
	Debug              *debugResponse   `json:"debug,omitempty"`
}

type alternativesResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Alternatives alternativesBlock `json:"alternatives"`
	Debug        *debugResponse    `json:"debug,omitempty"`
}

type alternativesBlock struct {
	AvailableCategories []taxonomyResponse `json:"availableCategories"`
	Suggestions         []string           `json:"suggestions"`
	SearchTips          []string           `json:"searchTips"`
}

type taxonomyResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"productCount"`
}

type debugResponse struct {
	StagesAttempted []string              `json:"stagesAttempted"`
	Stages          []stageRecordResponse `json:"stages,omitempty"`
}

type stageRecordResponse struct {
	Stage string `json:"stage"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// SearchProducts handles POST /search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.search.Search(r.Context(), searchuc.Params{
		Query:   req.Query,
		Page:    req.Page,
		PerPage: req.PerPage,
		Debug:   req.Debug,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if out.Found() {
		writeJSON(w, http.StatusOK, resultsToResponse(out.Results, out.Debug))
		return
	}
	writeJSON(w, http.StatusOK, alternativesToResponse(out.Alternatives, out.Debug))
}

type intentRequest struct {
	Query string `json:"query"`
}

type intentResponse struct {
	RawQuery         string               `json:"rawQuery"`
	CleanedQuery     string               `json:"cleanedQuery"`
	SortBy           string               `json:"sortBy,omitempty"`
	SortDirection    string               `json:"sortDirection,omitempty"`
	PriceMin         *float64             `json:"priceMin,omitempty"`
	PriceMax         *float64             `json:"priceMax,omitempty"`
	OnSale           bool                 `json:"onSale"`
	Category         *termMatchResponse   `json:"category,omitempty"`
	Categories       []termMatchResponse  `json:"categories,omitempty"`
	Tag              *termMatchResponse   `json:"tag,omitempty"`
	PreserveFullText bool                 `json:"preserveFullText"`
}

type termMatchResponse struct {
	ID         int64   `json:"id"`
	Slug       string  `json:"slug"`
	Name       string  `json:"name"`
	MatchType  string  `json:"matchType"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeIntent handles POST /intent.
func (s *Server) AnalyzeIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	it, err := s.intent.Analyze(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, intentToResponse(it))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func resultsToResponse(res *outcome.Results, dbg *outcome.Debug) searchResultsResponse {
	products := res.Products
	if products == nil {
		products = []domain.Product{}
	}
	return searchResultsResponse{
		Success:            true,
		SearchStrategyUsed: res.Stage,
		Products:           products,
		TotalProducts:      res.TotalProducts,
		TotalPages:         res.TotalPages,
		Message:            res.Message,
		Debug:              debugToResponse(dbg),
	}
}

func alternativesToResponse(alt *outcome.Alternatives, dbg *outcome.Debug) alternativesResponse {
	categories := make([]taxonomyResponse, len(alt.Categories))
	for i, c := range alt.Categories {
		categories[i] = taxonomyResponse{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			ProductCount: c.ProductCount,
		}
	}
	return alternativesResponse{
		Success: false,
		Message: alt.Message,
		Alternatives: alternativesBlock{
			AvailableCategories: categories,
			Suggestions:         alt.Suggestions,
			SearchTips:          alt.SearchTips,
		},
		Debug: debugToResponse(dbg),
	}
}

func debugToResponse(dbg *outcome.Debug) *debugResponse {
	if dbg == nil {
		return nil
	}
	stages := make([]stageRecordResponse, len(dbg.Stages))
	for i, rec := range dbg.Stages {
		stages[i] = stageRecordResponse{
			Stage: rec.Stage,
			Total: rec.Total,
			Error: rec.Err,
		}
	}
	return &debugResponse{
		StagesAttempted: dbg.StageNames(),
		Stages:          stages,
	}
}

func intentToResponse(it domintent.Intent) intentResponse {
	resp := intentResponse{
		RawQuery:         it.RawQuery,
		CleanedQuery:     it.CleanedQuery,
		SortBy:           string(it.SortBy),
		SortDirection:    string(it.SortDirection),
		PriceMin:         it.PriceMin,
		PriceMax:         it.PriceMax,
		OnSale:           it.OnSale,
		Category:         termMatchToResponse(it.Category),
		Tag:              termMatchToResponse(it.Tag),
		PreserveFullText: it.PreserveFullText,
	}
	if len(it.Categories) > 0 {
		resp.Categories = make([]termMatchResponse, len(it.Categories))
		for i := range it.Categories {
			resp.Categories[i] = *termMatchToResponse(&it.Categories[i])
		}
	}
	return resp
}

func termMatchToResponse(m *domintent.TermMatch) *termMatchResponse {
	if m == nil {
		return nil
	}
	return &termMatchResponse{
		ID:         m.ID,
		Slug:       m.Slug,
		Name:       m.Name,
		MatchType:  string(m.MatchType),
		Confidence: m.Confidence,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorEnvelope is the {error: {code, message}, suggestion?} error shape.
type errorEnvelope struct {
	Error      errorBody `json:"error"`
	Suggestion string    `json:"suggestion,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// missingQueryHandler returns the 400 envelope with a usage suggestion.
func missingQueryHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrMissingQuery) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorEnvelope{
		Error:      errorBody{Code: codeMissingQuery, Message: "Search query is required"},
		Suggestion: missingQuerySuggestion,
	})
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
