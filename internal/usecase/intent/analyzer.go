// Package intent analyzes free-text shopper queries into structured
// search directives.
package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/domain"
	domintent "github.com/shopgrid/prodsearch/internal/domain/intent"
	"github.com/shopgrid/prodsearch/internal/domain/match"
)

// Analyzer turns a raw query plus a taxonomy snapshot into an Intent.
// Detectors run in a fixed order; the order is load-bearing: the price-sort
// detector runs before the temporal one and an already-set sort field is
// never overwritten, so "cheapest new laptops" sorts by price, and within
// price sorting the ascending keyword set is checked before the descending
// one.
type Analyzer struct {
	vocab   domintent.Vocabulary
	matcher match.Config

	// keepCategories is how many ranked category matches survive: one for
	// the standalone intent analysis, three for the fallback search so
	// stage 3 has material for broader-category lookups.
	keepCategories int
	// tagsRequireNoCategory gates tag matching on the absence of a
	// category match (standalone analysis reports a single strongest
	// signal).
	tagsRequireNoCategory bool

	upperRe     *regexp.Regexp
	lowerRe     *regexp.Regexp
	filterWords map[string]struct{}
	detectors   []detector
	logger      *zap.Logger
}

// detector is one step of the analysis pipeline.
type detector struct {
	name string
	run  func(*analysis)
}

// analysis is the mutable state threaded through one Analyze call. It is
// local to the call and never shared.
type analysis struct {
	lower      string
	categories []domain.Taxonomy
	tags       []domain.Taxonomy
	intent     domintent.Intent
}

// NewRelaxed creates the analyzer variant used by the fallback product
// search: relaxed fuzzy threshold, top-3 category matches, tags always
// attempted.
func NewRelaxed(vocab domintent.Vocabulary, logger *zap.Logger) *Analyzer {
	return newAnalyzer(vocab, match.Relaxed(), 3, false, logger)
}

// NewStrict creates the standalone intent-analysis variant: strict fuzzy
// threshold, single best category, tags only when no category matched.
func NewStrict(vocab domintent.Vocabulary, logger *zap.Logger) *Analyzer {
	return newAnalyzer(vocab, match.Strict(), 1, true, logger)
}

// NewRelaxedWithMatcher is NewRelaxed with an explicit matcher
// configuration, for stores tuning their own thresholds.
func NewRelaxedWithMatcher(
	vocab domintent.Vocabulary, matcher match.Config, logger *zap.Logger,
) *Analyzer {
	return newAnalyzer(vocab, matcher, 3, false, logger)
}

// NewStrictWithMatcher is NewStrict with an explicit matcher configuration.
func NewStrictWithMatcher(
	vocab domintent.Vocabulary, matcher match.Config, logger *zap.Logger,
) *Analyzer {
	return newAnalyzer(vocab, matcher, 1, true, logger)
}

func newAnalyzer(
	vocab domintent.Vocabulary,
	matcher match.Config,
	keepCategories int,
	tagsRequireNoCategory bool,
	logger *zap.Logger,
) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{
		vocab:                 vocab,
		matcher:               matcher,
		keepCategories:        keepCategories,
		tagsRequireNoCategory: tagsRequireNoCategory,
		upperRe:               boundPattern(vocab.UpperBound, vocab.Currencies),
		lowerRe:               boundPattern(vocab.LowerBound, vocab.Currencies),
		filterWords:           buildFilterWords(vocab),
		logger:                logger,
	}
	a.detectors = []detector{
		{"price_sort", a.detectPriceSort},
		{"price_bound", a.detectPriceBound},
		{"temporal_sort", a.detectTemporalSort},
		{"promotion", a.detectPromotion},
		{"category_match", a.matchCategories},
		{"tag_match", a.matchTags},
		{"clean_query", a.cleanQuery},
	}
	return a
}

// Analyze produces the structured intent for one query. The taxonomy
// snapshot is supplied by the caller and read only for the duration of the
// call. Empty taxonomy lists are fine; only an empty query is an error.
func (a *Analyzer) Analyze(
	query string, categories, tags []domain.Taxonomy,
) (domintent.Intent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domintent.Intent{}, domain.ErrMissingQuery
	}

	st := &analysis{
		lower:      strings.ToLower(query),
		categories: categories,
		tags:       tags,
		intent:     domintent.Intent{RawQuery: query},
	}
	for _, d := range a.detectors {
		d.run(st)
	}

	a.logger.Debug("query analyzed",
		zap.String("query", query),
		zap.String("sort_by", string(st.intent.SortBy)),
		zap.Bool("on_sale", st.intent.OnSale),
		zap.Bool("preserve_full_text", st.intent.PreserveFullText),
	)
	return st.intent, nil
}

// detectPriceSort checks the ascending keyword set first; the first set to
// match wins and the other is not consulted.
func (a *Analyzer) detectPriceSort(st *analysis) {
	switch {
	case containsAny(st.lower, a.vocab.PriceAscending):
		st.intent.SortBy = domintent.SortPrice
		st.intent.SortDirection = domintent.Ascending
	case containsAny(st.lower, a.vocab.PriceDescending):
		st.intent.SortBy = domintent.SortPrice
		st.intent.SortDirection = domintent.Descending
	default:
		return
	}
	st.intent.PreserveFullText = true
}

// detectPriceBound extracts at most one absolute bound: the upper-bound
// pattern is tried first and wins over a lower bound in the same query.
func (a *Analyzer) detectPriceBound(st *analysis) {
	if m := a.upperRe.FindStringSubmatch(st.lower); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			st.intent.PriceMax = &v
			st.intent.PreserveFullText = true
		}
		return
	}
	if m := a.lowerRe.FindStringSubmatch(st.lower); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			st.intent.PriceMin = &v
			st.intent.PreserveFullText = true
		}
	}
}

// detectTemporalSort never overwrites a sort set by an earlier detector.
func (a *Analyzer) detectTemporalSort(st *analysis) {
	if st.intent.SortBy != domintent.SortNone {
		return
	}
	if containsAny(st.lower, a.vocab.Temporal) {
		st.intent.SortBy = domintent.SortDate
		st.intent.SortDirection = domintent.Descending
	}
}

func (a *Analyzer) detectPromotion(st *analysis) {
	if containsAny(st.lower, a.vocab.Promotional) {
		st.intent.OnSale = true
	}
}

func (a *Analyzer) matchCategories(st *analysis) {
	matches := a.matchTaxonomies(st.lower, st.categories)
	if len(matches) == 0 {
		return
	}
	if len(matches) > a.keepCategories {
		matches = matches[:a.keepCategories]
	}
	st.intent.Categories = matches
	st.intent.Category = &matches[0]
}

func (a *Analyzer) matchTags(st *analysis) {
	if a.tagsRequireNoCategory && st.intent.Category != nil {
		return
	}
	matches := a.matchTaxonomies(st.lower, st.tags)
	if len(matches) > 0 {
		st.intent.Tag = &matches[0]
	}
}

// matchTaxonomies runs every query token against every term's name and
// slug, de-duplicates by term id (last match wins), and ranks by
// confidence descending. Iteration order is fixed (tokens, then terms) so
// the result is deterministic for a given query and snapshot.
func (a *Analyzer) matchTaxonomies(
	lower string, terms []domain.Taxonomy,
) []domintent.TermMatch {
	var ordered []domintent.TermMatch
	byID := make(map[int64]int)

	for _, token := range strings.Fields(lower) {
		token = trimToken(token)
		if token == "" {
			continue
		}
		for _, term := range terms {
			m, ok := a.matcher.Match(token, term.Name)
			if !ok {
				m, ok = a.matcher.Match(token, term.Slug)
			}
			if !ok {
				continue
			}
			tm := domintent.TermMatch{
				ID:         term.ID,
				Slug:       term.Slug,
				Name:       term.Name,
				MatchType:  m.Type,
				Confidence: m.Confidence,
			}
			if idx, seen := byID[term.ID]; seen {
				ordered[idx] = tm
				continue
			}
			byID[term.ID] = len(ordered)
			ordered = append(ordered, tm)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})
	return ordered
}

// cleanQuery strips intent keywords, currency tokens, stopwords, and
// purely numeric tokens from the original query.
func (a *Analyzer) cleanQuery(st *analysis) {
	var kept []string
	for _, token := range strings.Fields(st.intent.RawQuery) {
		norm := trimToken(strings.ToLower(token))
		if norm == "" {
			continue
		}
		if _, drop := a.filterWords[norm]; drop {
			continue
		}
		if isNumeric(norm) {
			continue
		}
		kept = append(kept, token)
	}
	st.intent.CleanedQuery = strings.Join(kept, " ")
}

// boundPattern compiles a price-bound regex from vocabulary phrases, e.g.
// "under $500", "less than 100 eur". Phrases are alternated in vocabulary
// order, so longer variants must precede their prefixes ("maximum" before
// "max").
func boundPattern(phrases, currencies []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(p))
	}
	curQuoted := make([]string, len(currencies))
	for i, c := range currencies {
		curQuoted[i] = regexp.QuoteMeta(strings.ToLower(c))
	}
	pattern := `\b(?:` + strings.Join(quoted, "|") + `)\s*(?:` +
		strings.Join(curQuoted, "|") + `)?\s*([0-9]+(?:[.,][0-9]+)?)`
	return regexp.MustCompile(pattern)
}

func buildFilterWords(vocab domintent.Vocabulary) map[string]struct{} {
	words := make(map[string]struct{})
	add := func(phrases []string) {
		for _, p := range phrases {
			for _, w := range strings.Fields(strings.ToLower(p)) {
				words[w] = struct{}{}
			}
		}
	}
	add(vocab.PriceAscending)
	add(vocab.PriceDescending)
	add(vocab.UpperBound)
	add(vocab.LowerBound)
	add(vocab.Temporal)
	add(vocab.Promotional)
	add(vocab.Currencies)
	add(vocab.Stopwords)
	return words
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// trimToken strips punctuation and currency decorations from token edges.
func trimToken(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}
