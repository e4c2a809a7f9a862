package health

import "context"

// DBPinger checks KV store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogChecker checks that the catalog API answers.
type CatalogChecker interface {
	Ping(ctx context.Context) error
}
