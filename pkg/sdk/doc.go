// Package prodsearch provides a Go client for the prodsearch HTTP API:
// natural-language product search with progressive fallback over a
// WooCommerce catalog.
//
//	client, _ := prodsearch.New("https://search.example.com",
//	    prodsearch.WithAPIKey("secret"),
//	)
//	out, _ := client.Search(ctx, prodsearch.SearchRequest{Query: "cheapest laptops under $500"})
//	if out.Results != nil {
//	    fmt.Println(out.Results.SearchStrategyUsed, len(out.Results.Products))
//	} else {
//	    fmt.Println(out.Alternatives.Message)
//	}
package prodsearch
