// Package facetdex is a Go client for the module catalog API that backs the
// facetdex filter panel.
//
//	client, _ := facetdex.New("https://catalog.example.com")
//	schema, _ := client.SearchFields(ctx)
//	hits, _ := client.SearchModules(ctx, facetdex.Query{
//	    {Field: "arch", Op: "=", Values: []string{"ARM Cortex-M0"}},
//	})
//	_ = client.AddToBench(ctx, hits[0].ID)
//
// Calls made on behalf of a browser session can carry the session's cookie and
// authorization header:
//
//	ctx = facetdex.ContextWithForwardedHeaders(ctx, r.Header)
package facetdex
