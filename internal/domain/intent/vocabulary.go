package intent

// Vocabulary holds the keyword tables the analyzer detects intents with.
// It is injected rather than hard-coded so stores can localize the
// vocabulary or tests can swap in a minimal one.
type Vocabulary struct {
	// PriceAscending triggers sort by price, low to high ("cheapest laptops").
	PriceAscending []string
	// PriceDescending triggers sort by price, high to low.
	PriceDescending []string
	// UpperBound phrases precede a maximum price ("under $500").
	UpperBound []string
	// LowerBound phrases precede a minimum price ("over 100 euros").
	LowerBound []string
	// Temporal triggers sort by date, newest first.
	Temporal []string
	// Promotional flags on-sale filtering.
	Promotional []string
	// Currencies are symbols, codes, and names stripped around price
	// numbers and removed from the cleaned query.
	Currencies []string
	// Stopwords are filler words removed from the cleaned query.
	Stopwords []string
}

// DefaultVocabulary returns the built-in English vocabulary.
// Upper-bound phrases are matched before lower-bound ones; only the first
// bound found is kept. Range queries ("between $10 and $50") deliberately
// capture a single bound.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		PriceAscending: []string{
			"cheapest", "cheap", "low price", "affordable", "budget", "lowest",
		},
		PriceDescending: []string{
			"most expensive", "expensive", "premium", "luxury", "costly", "highest",
		},
		UpperBound: []string{
			"under", "below", "less than", "maximum", "max",
		},
		LowerBound: []string{
			"over", "above", "more than", "minimum", "min",
		},
		Temporal: []string{
			"newest", "latest", "recent", "new", "fresh", "just arrived",
		},
		Promotional: []string{
			"special offer", "sale", "discount", "promo", "offer", "deal",
			"reduced", "clearance",
		},
		Currencies: []string{
			"$", "€", "£", "¥", "₹", "₽", "zł",
			"usd", "eur", "gbp", "jpy", "inr", "aud", "cad", "chf", "cny",
			"sek", "nzd", "pln", "rub", "brl", "mxn",
			"dollar", "dollars", "euro", "euros", "pound", "pounds",
			"yen", "rupee", "rupees", "franc", "francs", "yuan",
			"krona", "kronor", "zloty", "ruble", "rubles", "real", "reais",
			"peso", "pesos", "bucks",
		},
		Stopwords: []string{"in", "with", "the", "a", "an"},
	}
}
