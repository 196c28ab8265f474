package domain

// Taxonomy is a named classification term (category or tag) in the catalog.
// A snapshot of taxonomy terms is fetched per search call and treated as
// immutable for the duration of that call.
type Taxonomy struct {
	ID           int64
	Name         string
	Slug         string
	ParentID     int64 // 0 means top-level
	ProductCount int
}

// IsTopLevel reports whether the term has no parent.
func (t Taxonomy) IsTopLevel() bool { return t.ParentID == 0 }
