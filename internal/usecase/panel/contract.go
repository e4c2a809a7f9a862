package panel

import (
	"context"

	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/record"
)

// SchemaSource supplies the facet schema and the optional facet display metadata.
type SchemaSource interface {
	SearchFields(ctx context.Context) (facet.Schema, error)
	Filters(ctx context.Context) ([]facet.Info, error)
}

// Searcher executes a filter query against the catalog.
type Searcher interface {
	SearchModules(ctx context.Context, q filter.Query) ([]record.Record, error)
}

// BenchAdder adds a record to the user's working set.
type BenchAdder interface {
	AddToBench(ctx context.Context, id string) error
}

// BenchCounter persists the per-session count of records added to the bench.
type BenchCounter interface {
	Incr(ctx context.Context, session string) (int64, error)
	Get(ctx context.Context, session string) (int64, error)
}

// Renderer presents an applied result batch. Implementations build the batch completely
// before making it visible.
type Renderer interface {
	Render(b Batch) error
}

// Deps groups the collaborators of a panel. Counter may be nil.
type Deps struct {
	Schema   SchemaSource
	Searcher Searcher
	Bench    BenchAdder
	Counter  BenchCounter
}
