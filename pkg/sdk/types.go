package prodsearch

// Product is an opaque catalog record. The shape (name, price, permalink,
// images) is defined by the store, not by this client.
type Product map[string]any

// SearchRequest is one search invocation.
type SearchRequest struct {
	Query   string `json:"query"`
	PerPage int    `json:"perPage,omitempty"`
	Page    int    `json:"page,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// Results is the payload when some fallback stage found products.
type Results struct {
	SearchStrategyUsed string    `json:"searchStrategyUsed"`
	Products           []Product `json:"products"`
	TotalProducts      int       `json:"totalProducts"`
	TotalPages         int       `json:"totalPages"`
	Message            string    `json:"message"`
}

// Alternatives is the payload when every stage came up empty.
type Alternatives struct {
	Message             string     `json:"message"`
	AvailableCategories []Taxonomy `json:"availableCategories"`
	Suggestions         []string   `json:"suggestions"`
	SearchTips          []string   `json:"searchTips"`
}

// Taxonomy is a category or tag term.
type Taxonomy struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"productCount"`
}

// Debug is the optional per-run stage trace.
type Debug struct {
	StagesAttempted []string      `json:"stagesAttempted"`
	Stages          []StageRecord `json:"stages,omitempty"`
}

// StageRecord is one attempted stage.
type StageRecord struct {
	Stage string `json:"stage"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// SearchOutcome is a tagged union: exactly one of Results or Alternatives
// is non-nil.
type SearchOutcome struct {
	Results      *Results
	Alternatives *Alternatives
	Debug        *Debug
}

// Found reports whether the search produced products.
func (o *SearchOutcome) Found() bool { return o.Results != nil }

// TermMatch is a taxonomy term the analyzer matched.
type TermMatch struct {
	ID         int64   `json:"id"`
	Slug       string  `json:"slug"`
	Name       string  `json:"name"`
	MatchType  string  `json:"matchType"`
	Confidence float64 `json:"confidence"`
}

// Intent is the analyzer's structured interpretation of a query.
type Intent struct {
	RawQuery         string      `json:"rawQuery"`
	CleanedQuery     string      `json:"cleanedQuery"`
	SortBy           string      `json:"sortBy,omitempty"`
	SortDirection    string      `json:"sortDirection,omitempty"`
	PriceMin         *float64    `json:"priceMin,omitempty"`
	PriceMax         *float64    `json:"priceMax,omitempty"`
	OnSale           bool        `json:"onSale"`
	Category         *TermMatch  `json:"category,omitempty"`
	Categories       []TermMatch `json:"categories,omitempty"`
	Tag              *TermMatch  `json:"tag,omitempty"`
	PreserveFullText bool        `json:"preserveFullText"`
}
