// Package outcome defines the tagged result of one fallback search run.
package outcome

import "github.com/shopgrid/prodsearch/internal/domain"

// MaxProducts caps how many products a successful stage returns in its
// payload, regardless of how many the catalog found.
const MaxProducts = 20

// MaxAlternativeCategories caps the category list in an alternatives payload.
const MaxAlternativeCategories = 10

// Results is a successful stage outcome.
type Results struct {
	Stage         string // which fallback stage satisfied the request
	Products      []domain.Product
	TotalProducts int // actual catalog total, may exceed len(Products)
	TotalPages    int
	Message       string
}

// Alternatives is the terminal payload when every search stage came up empty.
type Alternatives struct {
	Message     string
	Categories  []domain.Taxonomy
	Suggestions []string
	SearchTips  []string
}

// StageRecord is one attempted stage in the debug trace.
type StageRecord struct {
	Stage string
	Total int
	Err   string // recovered gateway error, if any
}

// Debug is the optional per-run trace.
type Debug struct {
	Stages []StageRecord
}

// StageNames lists the attempted stage names in order.
func (d *Debug) StageNames() []string {
	names := make([]string, len(d.Stages))
	for i, s := range d.Stages {
		names[i] = s.Stage
	}
	return names
}

// Outcome is a tagged union: exactly one of Results or Alternatives is set.
// Callers switch on the populated variant instead of probing map keys.
type Outcome struct {
	Results      *Results
	Alternatives *Alternatives
	Debug        *Debug
}

// Found reports whether any stage produced products.
func (o Outcome) Found() bool { return o.Results != nil }
