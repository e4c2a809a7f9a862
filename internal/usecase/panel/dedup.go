package panel

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/facetdex/internal/domain/facet"
)

// dedupSource collapses concurrent schema fetches from many sessions into one upstream call.
type dedupSource struct {
	inner SchemaSource
	group singleflight.Group
}

func newDedupSource(inner SchemaSource) *dedupSource {
	return &dedupSource{inner: inner}
}

func (d *dedupSource) SearchFields(ctx context.Context) (facet.Schema, error) {
	v, err, _ := d.group.Do("search_fields", func() (any, error) {
		return d.inner.SearchFields(context.WithoutCancel(ctx))
	})
	if err != nil {
		return facet.Schema{}, fmt.Errorf("shared search fields: %w", err)
	}
	return v.(facet.Schema), nil
}

func (d *dedupSource) Filters(ctx context.Context) ([]facet.Info, error) {
	v, err, _ := d.group.Do("filters", func() (any, error) {
		return d.inner.Filters(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, fmt.Errorf("shared filters: %w", err)
	}
	return v.([]facet.Info), nil
}
