// Package schemacache caches the catalog's facet schema and metadata in the key-value store.
package schemacache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
)

const (
	fieldsKey  = "schema:search_fields"
	filtersKey = "schema:filters"
)

// Source is the upstream the cache decorates.
type Source interface {
	SearchFields(ctx context.Context) (facet.Schema, error)
	Filters(ctx context.Context) ([]facet.Info, error)
}

// store is the consumer interface for the schema cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource serves the facet schema from the store and refreshes it from the
// catalog after ttl. Store failures degrade to direct catalog calls.
type CachedSource struct {
	inner      Source
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. cacheTotal has label "result" ("hit"/"miss") and may be nil.
func New(
	inner Source,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSource {
	return &CachedSource{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// SearchFields returns the cached schema or fetches it. The cached form keeps key order.
func (c *CachedSource) SearchFields(ctx context.Context) (facet.Schema, error) {
	key := c.prefix + fieldsKey

	var cached facet.Schema
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	schema, err := c.inner.SearchFields(ctx)
	if err != nil {
		return facet.Schema{}, fmt.Errorf("fetch search fields: %w", err)
	}
	if !schema.IsEmpty() {
		c.save(ctx, key, schema)
	}
	return schema, nil
}

// Filters returns the cached facet metadata or fetches it.
func (c *CachedSource) Filters(ctx context.Context) ([]facet.Info, error) {
	key := c.prefix + filtersKey

	var cached []facet.Info
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	infos, err := c.inner.Filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch filters: %w", err)
	}
	c.save(ctx, key, infos)
	return infos, nil
}

func (c *CachedSource) load(ctx context.Context, key string, dest any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cached schema", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Failed to parse cached schema", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return false
	}
	c.inc("hit")
	return true
}

func (c *CachedSource) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode schema for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache schema", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedSource) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
