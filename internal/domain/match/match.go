// Package match scores free-text query tokens against taxonomy labels.
package match

import "strings"

// Type classifies how a token matched a label.
type Type string

// Match types, strongest first.
const (
	Exact         Type = "exact"
	Pluralization Type = "pluralization"
	Fuzzy         Type = "fuzzy"
)

// Fuzzy similarity thresholds. Acceptance is strict greater-than.
const (
	// RelaxedFuzzyThreshold is used by the fallback product search.
	RelaxedFuzzyThreshold = 0.6
	// StrictFuzzyThreshold is used by the standalone intent analysis.
	StrictFuzzyThreshold = 0.8
)

// Token length limits. Shorter tokens are too noisy to match at all;
// fuzzy and pluralization need a bit more signal than exact.
const (
	minTokenLen  = 3
	minPluralLen = 4
	minFuzzyLen  = 4
)

// Confidence values for the non-fuzzy match types.
const (
	exactConfidence  = 1.0
	pluralConfidence = 0.9
)

// Config holds matcher tuning. The zero value is unusable; use Relaxed or
// Strict, or set FuzzyThreshold explicitly for alternate vocabularies.
type Config struct {
	FuzzyThreshold float64
}

// Relaxed returns the matcher configuration for fallback product search.
func Relaxed() Config { return Config{FuzzyThreshold: RelaxedFuzzyThreshold} }

// Strict returns the matcher configuration for standalone intent analysis.
func Strict() Config { return Config{FuzzyThreshold: StrictFuzzyThreshold} }

// Match is one accepted token/label pairing.
type Match struct {
	Type       Type
	Confidence float64
}

// Match scores token against label (a category or tag name or slug).
// Checks run strongest first: equality, pluralized equality, substring
// containment, pluralized containment, then edit-distance similarity.
// Pluralized equality runs before containment so that "shoe" against
// "Shoes" reports pluralization rather than a bare substring hit.
func (c Config) Match(token, label string) (Match, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	label = strings.ToLower(strings.TrimSpace(label))
	if len(token) < minTokenLen || label == "" {
		return Match{}, false
	}

	if token == label {
		return Match{Type: Exact, Confidence: exactConfidence}, true
	}

	plural, hasPlural := pluralize(token)
	if hasPlural && plural == label {
		return Match{Type: Pluralization, Confidence: pluralConfidence}, true
	}

	if strings.Contains(label, token) || strings.Contains(token, label) {
		return Match{Type: Exact, Confidence: exactConfidence}, true
	}

	if hasPlural && (strings.Contains(label, plural) || strings.Contains(plural, label)) {
		return Match{Type: Pluralization, Confidence: pluralConfidence}, true
	}

	if len(token) >= minFuzzyLen {
		if sim := Similarity(token, label); sim > c.FuzzyThreshold {
			return Match{Type: Fuzzy, Confidence: sim}, true
		}
	}

	return Match{}, false
}

// pluralize flips a trailing "s" on tokens long enough to carry one.
func pluralize(token string) (string, bool) {
	if len(token) < minPluralLen {
		return "", false
	}
	if strings.HasSuffix(token, "s") {
		return strings.TrimSuffix(token, "s"), true
	}
	return token + "s", true
}

// Similarity returns the normalized edit-distance ratio between a and b:
// (maxLen - distance) / maxLen, in [0, 1].
func Similarity(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-Levenshtein(a, b)) / float64(maxLen)
}

// Levenshtein computes the edit distance between two strings using a
// single-row DP table.
func Levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}
	return prev[lb]
}
