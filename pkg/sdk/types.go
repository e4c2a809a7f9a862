package facetdex

import (
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/record"
)

// Catalog types re-exported from the domain layer.
type (
	// Schema is the ordered facet schema returned by the search-fields endpoint.
	Schema = facet.Schema
	// Facet is one facet of a Schema.
	Facet = facet.Facet
	// FacetInfo is the display metadata of one facet.
	FacetInfo = facet.Info
	// Query is a conjunction of filter operations.
	Query = filter.Query
	// Op is one filter operation.
	Op = filter.Op
	// Record is one search hit.
	Record = record.Record
)

// Endpoints are the catalog API paths, relative to the base URL.
// BenchAdd must contain the "{id}" placeholder.
type Endpoints struct {
	SearchFields string
	Filters      string
	SearchModule string
	BenchAdd     string
}

// DefaultEndpoints returns the paths served by the catalog.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SearchFields: "/api/search_fields",
		Filters:      "/api/filters",
		SearchModule: "/api/search_module",
		BenchAdd:     "/bench/add/{id}",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	if e.SearchFields == "" {
		e.SearchFields = d.SearchFields
	}
	if e.Filters == "" {
		e.Filters = d.Filters
	}
	if e.SearchModule == "" {
		e.SearchModule = d.SearchModule
	}
	if e.BenchAdd == "" {
		e.BenchAdd = d.BenchAdd
	}
	return e
}
