package domain

// Product is an opaque catalog record. The catalog owns the shape; this core
// only passes products through and checks for presence.
type Product map[string]any

// ProductPage is one page of catalog search results.
type ProductPage struct {
	Products   []Product
	Total      int
	TotalPages int
}

// IsEmpty reports whether the page carries no products.
func (p ProductPage) IsEmpty() bool { return len(p.Products) == 0 }
